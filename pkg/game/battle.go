package game

import "log/slog"

// BattleResultFunc decides how an unattended battle ends.
type BattleResultFunc func(troop *TroopState, party *PartyState, canEscape, canLose bool) int

// DefaultBattleResult loses when the whole party is dead and wins otherwise.
func DefaultBattleResult(_ *TroopState, party *PartyState, _, _ bool) int {
	for _, a := range party.Members() {
		if a.IsAlive() {
			return BattleWin
		}
	}
	return BattleLose
}

// ForcedAction is a forced action the battle has carried out.
type ForcedAction struct {
	Battler     Battler
	SkillID     int
	TargetIndex int
}

// BattleManager is the in-memory Battle. A battle opened by the scene stack
// runs for the stack's scene duration, then ends with the result Policy picks.
type BattleManager struct {
	w *World

	Policy BattleResultFunc

	troopID   int
	canEscape bool
	canLose   bool
	callback  func(result int)
	forced    []Battler
	aborted   bool
	held      bool

	// Actions lists the forced actions in the order they ran.
	Actions []ForcedAction
	// Results lists every finished battle's result.
	Results []int

	log *slog.Logger
}

func newBattleManager(w *World) *BattleManager {
	return &BattleManager{w: w, Policy: DefaultBattleResult, log: w.log}
}

func (b *BattleManager) Setup(troopID int, canEscape, canLose bool) {
	b.troopID = troopID
	b.canEscape = canEscape
	b.canLose = canLose
	b.callback = nil
	b.forced = nil
	b.aborted = false
	b.w.Troop.setup(troopID, b.w.seed.Troops[troopID], b.w.seed.Enemies)
}

func (b *BattleManager) SetEventCallback(cb func(result int)) { b.callback = cb }
func (b *BattleManager) IsActionForced() bool                 { return len(b.forced) > 0 }
func (b *BattleManager) ForceAction(battler Battler)          { b.forced = append(b.forced, battler) }
func (b *BattleManager) Abort()                               { b.aborted = true }

// TroopID returns the troop of the current or last battle.
func (b *BattleManager) TroopID() int { return b.troopID }

// Hold keeps the battle from ending on its own while troop events run.
func (b *BattleManager) Hold(held bool) { b.held = held }

// Troop returns the troop data of the current battle, or nil.
func (b *BattleManager) Troop() *TroopData { return b.w.seed.Troops[b.troopID] }

func (b *BattleManager) start() {
	b.w.Party.inBattle = true
	b.w.System.battleCount++
	b.log.Debug("battle started", "troop", b.troopID)
}

// resolve runs one battle frame and reports whether the battle is over.
func (b *BattleManager) resolve(timeUp bool) bool {
	if len(b.forced) > 0 {
		battler := b.forced[0]
		b.forced = b.forced[1:]
		if t, ok := battler.(interface{ takeForcedAction() *forcedAction }); ok {
			if f := t.takeForcedAction(); f != nil {
				b.Actions = append(b.Actions, ForcedAction{Battler: battler, SkillID: f.SkillID, TargetIndex: f.TargetIndex})
			}
		}
		return false
	}
	if b.aborted {
		b.end(BattleEscape)
		return true
	}
	if !timeUp || b.held {
		return false
	}
	result := b.Policy(b.w.Troop, b.w.Party, b.canEscape, b.canLose)
	if result == BattleEscape && !b.canEscape {
		result = BattleWin
	}
	b.end(result)
	return true
}

func (b *BattleManager) end(result int) {
	sys := b.w.System
	switch result {
	case BattleWin:
		sys.winCount++
	case BattleEscape:
		sys.escapeCount++
	}
	b.Results = append(b.Results, result)
	b.log.Debug("battle ended", "troop", b.troopID, "result", result)
	if cb := b.callback; cb != nil {
		b.callback = nil
		cb(result)
	}
	b.w.Party.inBattle = false
	b.w.Troop.clear()
	b.aborted = false
	b.held = false
	if result == BattleLose && !b.canLose {
		b.w.Scene.Goto(SceneGameover)
	}
}
