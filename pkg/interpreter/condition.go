package interpreter

import (
	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/opcode"
)

// Conditional branch condition types.
const (
	condSwitch = iota
	condVariable
	condSelfSwitch
	condTimer
	condActor
	condEnemy
	condCharacter
	condGold
	condItem
	condWeapon
	condArmor
	condButton
	condScript
	condVehicle
)

// Actor sub-conditions.
const (
	actorInParty = iota
	actorName
	actorClass
	actorSkill
	actorWeapon
	actorArmor
	actorState
)

// Button condition modes.
const (
	buttonPressed = iota
	buttonTriggered
	buttonRepeated
)

// compare applies one of the six relational operators
// (0 ==, 1 >=, 2 <=, 3 >, 4 <, 5 !=).
func compare(a, b, op int) bool {
	switch op {
	case 0:
		return a == b
	case 1:
		return a >= b
	case 2:
		return a <= b
	case 3:
		return a > b
	case 4:
		return a < b
	case 5:
		return a != b
	}
	return false
}

func (in *Interpreter) evaluateCondition(p opcode.Params) bool {
	ctx := in.ctx
	switch p.Int(0) {
	case condSwitch:
		return ctx.Switches != nil && ctx.Switches.Value(p.Int(1)) == (p.Int(2) == 0)

	case condVariable:
		if ctx.Variables == nil {
			return false
		}
		a := ctx.Variables.Value(p.Int(1))
		b := p.Int(3)
		if p.Int(2) != 0 {
			b = ctx.Variables.Value(p.Int(3))
		}
		return compare(a, b, p.Int(4))

	case condSelfSwitch:
		if in.eventID <= 0 || ctx.SelfSwitches == nil {
			return false
		}
		key := game.SelfSwitchKey{MapID: in.mapID, EventID: in.eventID, Channel: p.String(1)}
		return ctx.SelfSwitches.Value(key) == (p.Int(2) == 0)

	case condTimer:
		if ctx.Timer == nil || !ctx.Timer.IsWorking() {
			return false
		}
		// compared in frames so a partial second counts
		limit := p.Int(1) * 60
		if p.Int(2) == 0 {
			return ctx.Timer.Frames() >= limit
		}
		return ctx.Timer.Frames() <= limit

	case condActor:
		return in.evaluateActorCondition(p)

	case condEnemy:
		enemy := in.enemy(p.Int(1))
		if enemy == nil {
			return false
		}
		if p.Int(2) == 0 {
			return enemy.IsAlive()
		}
		return enemy.IsStateAffected(p.Int(3))

	case condCharacter:
		c := in.characterFor(p.Int(1))
		return c != nil && c.Direction() == p.Int(2)

	case condGold:
		if ctx.Party == nil {
			return false
		}
		gold := ctx.Party.Gold()
		switch p.Int(2) {
		case 0:
			return gold >= p.Int(1)
		case 1:
			return gold <= p.Int(1)
		case 2:
			return gold < p.Int(1)
		}
		return false

	case condItem:
		return ctx.Party != nil && ctx.Party.HasItem(game.KindItem, p.Int(1), false)
	case condWeapon:
		return ctx.Party != nil && ctx.Party.HasItem(game.KindWeapon, p.Int(1), p.Bool(2))
	case condArmor:
		return ctx.Party != nil && ctx.Party.HasItem(game.KindArmor, p.Int(1), p.Bool(2))

	case condButton:
		if ctx.Input == nil {
			return false
		}
		switch p.Int(2) {
		case buttonTriggered:
			return ctx.Input.IsTriggered(p.String(1))
		case buttonRepeated:
			return ctx.Input.IsRepeated(p.String(1))
		}
		return ctx.Input.IsPressed(p.String(1))

	case condScript:
		return truthy(in.evaluate(p.String(1)))

	case condVehicle:
		return ctx.Player != nil && ctx.Player.VehicleType() == p.Int(1)
	}
	return false
}

func (in *Interpreter) evaluateActorCondition(p opcode.Params) bool {
	if in.ctx.Actors == nil {
		return false
	}
	actor := in.ctx.Actors.Actor(p.Int(1))
	if actor == nil {
		return false
	}
	n := p.Int(3)
	switch p.Int(2) {
	case actorInParty:
		if in.ctx.Party == nil {
			return false
		}
		for _, m := range in.ctx.Party.Members() {
			if m.ID() == actor.ID() {
				return true
			}
		}
		return false
	case actorName:
		return actor.Name() == p.String(3)
	case actorClass:
		return actor.ClassID() == n
	case actorSkill:
		return actor.HasSkill(n)
	case actorWeapon:
		return actor.HasWeapon(n)
	case actorArmor:
		return actor.HasArmor(n)
	case actorState:
		return actor.IsStateAffected(n)
	}
	return false
}

// truthy mirrors loose boolean coercion of script results.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int, int64, float64:
		return opcode.ToFloat(x) != 0
	}
	return true
}
