package interpreter

import "github.com/zurustar/evrun/pkg/game"

// WaitMode names the condition an interpreter is suspended on.
type WaitMode int

const (
	WaitNone WaitMode = iota
	WaitMessage
	WaitTransfer
	WaitScroll
	WaitRoute
	WaitAnimation
	WaitBalloon
	WaitGather
	WaitAction
	WaitVideo
	WaitImage
)

var waitModeNames = [...]string{"", "message", "transfer", "scroll", "route", "animation", "balloon", "gather", "action", "video", "image"}

func (m WaitMode) String() string {
	if m >= 0 && int(m) < len(waitModeNames) {
		return waitModeNames[m]
	}
	return "unknown"
}

// WaitPredicate reports whether the wait must continue. target is the
// character the suspending command addressed, or nil for global waits.
type WaitPredicate func(target game.Character) bool

// DefaultWaitPredicates builds one predicate per wait mode from ctx.
// A mode whose collaborator is missing never waits.
func DefaultWaitPredicates(ctx *game.Context) map[WaitMode]WaitPredicate {
	p := make(map[WaitMode]WaitPredicate)
	if ctx.Message != nil {
		p[WaitMessage] = func(game.Character) bool { return ctx.Message.IsBusy() }
	}
	if ctx.Player != nil {
		p[WaitTransfer] = func(game.Character) bool { return ctx.Player.IsTransferring() }
		p[WaitGather] = func(game.Character) bool { return ctx.Player.AreFollowersGathering() }
	}
	if ctx.Map != nil {
		p[WaitScroll] = func(game.Character) bool { return ctx.Map.IsScrolling() }
	}
	p[WaitRoute] = func(c game.Character) bool { return c != nil && c.IsMoveRouteForcing() }
	p[WaitAnimation] = func(c game.Character) bool { return c != nil && c.IsAnimationPlaying() }
	p[WaitBalloon] = func(c game.Character) bool { return c != nil && c.IsBalloonPlaying() }
	if ctx.Battle != nil {
		p[WaitAction] = func(game.Character) bool { return ctx.Battle.IsActionForced() }
	}
	if ctx.Video != nil {
		p[WaitVideo] = func(game.Character) bool { return ctx.Video.IsPlaying() }
	}
	if ctx.Images != nil {
		p[WaitImage] = func(game.Character) bool { return !ctx.Images.IsReady() }
	}
	return p
}

// wait requests a frame countdown.
func (in *Interpreter) wait(frames int) {
	in.waitCount = frames
}

func (in *Interpreter) setWaitMode(mode WaitMode) {
	in.waitMode = mode
	in.log.Debug("wait mode set", "mode", mode.String(), "index", in.index)
}

// updateWait reports whether this tick is spent waiting. The frame countdown
// is consumed before the named predicate is consulted.
func (in *Interpreter) updateWait() bool {
	return in.updateWaitCount() || in.updateWaitMode()
}

func (in *Interpreter) updateWaitCount() bool {
	if in.waitCount > 0 {
		in.waitCount--
		return true
	}
	return false
}

func (in *Interpreter) updateWaitMode() bool {
	if in.waitMode == WaitNone {
		return false
	}
	waiting := false
	if pred, ok := in.predicates[in.waitMode]; ok {
		waiting = pred(in.character)
	}
	if !waiting {
		in.log.Debug("wait mode cleared", "mode", in.waitMode.String())
		in.waitMode = WaitNone
	}
	return waiting
}

// WaitCount returns the remaining frame countdown.
func (in *Interpreter) WaitCount() int { return in.waitCount }

// WaitMode returns the active wait mode.
func (in *Interpreter) WaitMode() WaitMode { return in.waitMode }
