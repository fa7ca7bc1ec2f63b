// Package interpreter runs event command lists.
// It implements a resumable, frame-stepped execution model with support for:
// - indent-structured control flow (branches, loops, labels, choices)
// - suspension on frame countdowns and named wait predicates
// - nested common-event calls with a bounded call depth
// - a freeze guard against runaway loops within one host frame
package interpreter

import (
	"log/slog"
	"math/rand/v2"

	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/logger"
	"github.com/zurustar/evrun/pkg/opcode"
)

// MaxDepth is the nesting depth at which constructing an interpreter fails.
const MaxDepth = 100

// FreezeLimit is the number of commands one interpreter may run within a
// single host frame before the tick is abandoned.
const FreezeLimit = 100000

// FadeSpeed is the frame length of fade-in and fade-out commands.
const FadeSpeed = 24

// Interpreter walks one command list. It is not safe for concurrent use;
// the host calls Update once per frame.
type Interpreter struct {
	ctx   *game.Context
	depth int

	mapID   int
	eventID int
	list    opcode.List
	index   int
	indent  int
	branch  map[int]BranchValue

	waitCount int
	waitMode  WaitMode
	character game.Character

	comments []string
	child    *Interpreter

	frameCount    int
	freezeChecker int

	predicates map[WaitMode]WaitPredicate
	rng        *rand.Rand
	onError    func(*RuntimeError)
	opts       []Option
	log        *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(in *Interpreter) {
		in.log = log
	}
}

// WithRand sets the random source used by random variable operands.
func WithRand(r *rand.Rand) Option {
	return func(in *Interpreter) {
		in.rng = r
	}
}

// WithWaitPredicate replaces the predicate consulted for mode.
func WithWaitPredicate(mode WaitMode, pred WaitPredicate) Option {
	return func(in *Interpreter) {
		in.predicates[mode] = pred
	}
}

// WithErrorHandler receives every non-fatal error after it has been logged.
func WithErrorHandler(h func(*RuntimeError)) Option {
	return func(in *Interpreter) {
		in.onError = h
	}
}

// New creates an empty interpreter at the given call depth.
// It fails with a fatal error wrapping ErrCallStackOverflow when depth >= MaxDepth.
// Children created by the interpreter inherit opts.
func New(ctx *game.Context, depth int, opts ...Option) (*Interpreter, error) {
	if depth >= MaxDepth {
		return nil, NewCallStackOverflowError(depth)
	}
	in := &Interpreter{
		ctx:        ctx,
		depth:      depth,
		branch:     make(map[int]BranchValue),
		predicates: DefaultWaitPredicates(ctx),
		opts:       opts,
		log:        logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.rng == nil {
		in.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	in.log = in.log.With("depth", depth)
	return in, nil
}

// Setup loads list for the event eventID (0 for none) and resets all state
// except the depth.
func (in *Interpreter) Setup(list opcode.List, eventID int) {
	in.clear()
	if in.ctx.Map != nil {
		in.mapID = in.ctx.Map.MapID()
	}
	in.eventID = eventID
	in.list = list
	in.log.Debug("interpreter setup", "event", eventID, "map", in.mapID, "commands", len(list))
}

func (in *Interpreter) clear() {
	in.mapID = 0
	in.eventID = 0
	in.list = nil
	in.index = 0
	in.indent = 0
	clear(in.branch)
	in.waitCount = 0
	in.waitMode = WaitNone
	in.character = nil
	in.comments = nil
	in.child = nil
	in.frameCount = 0
	in.freezeChecker = 0
}

// SetupReservedCommonEvent starts the common event reserved on Temp, if any,
// and clears the reservation.
func (in *Interpreter) SetupReservedCommonEvent() bool {
	if in.ctx.Temp == nil || !in.ctx.Temp.IsCommonEventReserved() {
		return false
	}
	id := in.ctx.Temp.ReservedCommonEventID()
	in.ctx.Temp.ClearCommonEvent()
	ce := in.commonEvent(id)
	if ce == nil {
		return false
	}
	in.Setup(ce.List, 0)
	return true
}

// IsRunning reports whether a list is loaded.
func (in *Interpreter) IsRunning() bool {
	return in.list != nil
}

// Terminate discards the list. Collaborator state already changed stays changed.
func (in *Interpreter) Terminate() {
	in.list = nil
	in.comments = nil
	in.child = nil
}

// Update runs commands until the interpreter suspends, ends, or trips the
// freeze guard. Only fatal errors are returned.
func (in *Interpreter) Update() error {
	for in.IsRunning() {
		busy, err := in.updateChild()
		if err != nil {
			return err
		}
		if busy || in.updateWait() {
			break
		}
		if in.ctx.Scene != nil && in.ctx.Scene.IsChanging() {
			break
		}
		cont, err := in.executeCommand()
		if err != nil {
			return err
		}
		if !cont {
			break
		}
		if in.checkFreeze() {
			break
		}
	}
	return nil
}

// updateChild delegates the tick to a running child and reclaims control on
// the same tick once it finishes.
func (in *Interpreter) updateChild() (bool, error) {
	if in.child == nil {
		return false, nil
	}
	if err := in.child.Update(); err != nil {
		return true, err
	}
	if in.child.IsRunning() {
		return true, nil
	}
	in.child = nil
	return false, nil
}

func (in *Interpreter) executeCommand() (bool, error) {
	if in.index >= len(in.list) {
		in.Terminate()
		return true, nil
	}
	cmd := in.list[in.index]
	in.indent = cmd.Indent
	if h := lookup(cmd.Code); h != nil {
		in.log.Debug("execute command", "code", int(cmd.Code), "index", in.index, "indent", cmd.Indent)
		ok, err := h(in, cmd.Parameters)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	in.index++
	return true, nil
}

func (in *Interpreter) checkFreeze() bool {
	frame := 0
	if in.ctx.Frames != nil {
		frame = in.ctx.Frames.FrameCount()
	}
	if in.frameCount != frame {
		in.frameCount = frame
		in.freezeChecker = 0
	}
	in.freezeChecker++
	if in.freezeChecker > FreezeLimit {
		in.log.Warn("freeze guard tripped", "frame", frame, "index", in.index, "event", in.eventID)
		in.freezeChecker = 0
		return true
	}
	return false
}

func (in *Interpreter) setupChild(list opcode.List, eventID int) error {
	child, err := New(in.ctx, in.depth+1, in.opts...)
	if err != nil {
		in.log.Error("common event call overflow", "event", eventID, "error", err)
		return err
	}
	child.Setup(list, eventID)
	in.child = child
	return nil
}

// isOnCurrentMap reports whether the map the list was set up on is still current.
func (in *Interpreter) isOnCurrentMap() bool {
	return in.ctx.Map != nil && in.mapID == in.ctx.Map.MapID()
}

func (in *Interpreter) nextCode() opcode.Code {
	if in.index+1 < len(in.list) {
		return in.list[in.index+1].Code
	}
	return opcode.End
}

func (in *Interpreter) commonEvent(id int) *game.CommonEvent {
	if in.ctx.Data == nil {
		return nil
	}
	return in.ctx.Data.CommonEvent(id)
}

func (in *Interpreter) inBattle() bool {
	return in.ctx.Party != nil && in.ctx.Party.InBattle()
}

func (in *Interpreter) messageBusy() bool {
	return in.ctx.Message != nil && in.ctx.Message.IsBusy()
}

// Depth returns the call depth.
func (in *Interpreter) Depth() int { return in.depth }

// Index returns the cursor position.
func (in *Interpreter) Index() int { return in.index }

// EventID returns the owning event id.
func (in *Interpreter) EventID() int { return in.eventID }

// Child returns the running child interpreter, or nil.
func (in *Interpreter) Child() *Interpreter { return in.child }

// Comments returns the comment lines gathered by the last comment command.
func (in *Interpreter) Comments() []string { return in.comments }
