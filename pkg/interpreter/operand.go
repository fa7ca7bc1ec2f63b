package interpreter

import (
	"fmt"
	"math"

	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/opcode"
)

// evaluate runs inline script. Evaluation failures are logged and read as nil.
func (in *Interpreter) evaluate(src string) any {
	return in.evaluateWith(src, nil, nil)
}

func (in *Interpreter) evaluateWith(src string, subject, target any) any {
	if in.ctx.Eval == nil {
		in.recoverError(ErrorEvalFailed, "no script evaluator configured", nil)
		return nil
	}
	v, err := in.ctx.Eval.Evaluate(src, game.Bindings{
		Subject:   subject,
		Target:    target,
		Variables: in.ctx.Variables,
		Switches:  in.ctx.Switches,
	})
	if err != nil {
		in.recoverError(ErrorEvalFailed, fmt.Sprintf("script evaluation failed: %v", err), err)
		return nil
	}
	return v
}

func (in *Interpreter) variable(id int) int {
	if in.ctx.Variables == nil {
		return 0
	}
	return in.ctx.Variables.Value(id)
}

// operateValue resolves a constant-or-variable operand, negated for decreases.
func (in *Interpreter) operateValue(operation, operandType, operand int) int {
	value := operand
	if operandType != 0 {
		value = in.variable(operand)
	}
	if operation == 0 {
		return value
	}
	return -value
}

// Variable operations.
const (
	opSet = iota
	opAdd
	opSub
	opMul
	opDiv
	opMod
)

// operateVariable applies operation to variable id. Division or modulo by
// zero stores 0.
func (in *Interpreter) operateVariable(id, operation, value int) {
	vars := in.ctx.Variables
	if vars == nil {
		return
	}
	old := vars.Value(id)
	var result int
	switch operation {
	case opSet:
		result = value
	case opAdd:
		result = old + value
	case opSub:
		result = old - value
	case opMul:
		result = old * value
	case opDiv:
		if value == 0 {
			in.recoverError(ErrorDivisionByZero, fmt.Sprintf("variable %d divided by zero", id), nil)
			break
		}
		result = int(math.Floor(float64(old) / float64(value)))
	case opMod:
		if value == 0 {
			in.recoverError(ErrorDivisionByZero, fmt.Sprintf("variable %d modulo zero", id), nil)
			break
		}
		result = old % value
	default:
		return
	}
	vars.SetValue(id, result)
}

// Game data operand kinds.
const (
	dataItem = iota
	dataWeapon
	dataArmor
	dataActor
	dataEnemy
	dataCharacter
	dataParty
	dataOther
)

// gameDataOperand reads a value from collaborator state. Anything that
// cannot be resolved reads as 0.
func (in *Interpreter) gameDataOperand(kind, param1, param2 int) int {
	ctx := in.ctx
	switch kind {
	case dataItem:
		if ctx.Party != nil {
			return ctx.Party.NumItems(game.KindItem, param1)
		}
	case dataWeapon:
		if ctx.Party != nil {
			return ctx.Party.NumItems(game.KindWeapon, param1)
		}
	case dataArmor:
		if ctx.Party != nil {
			return ctx.Party.NumItems(game.KindArmor, param1)
		}
	case dataActor:
		if ctx.Actors == nil {
			return 0
		}
		actor := ctx.Actors.Actor(param1)
		if actor == nil {
			return 0
		}
		switch param2 {
		case 0:
			return actor.Level()
		case 1:
			return actor.CurrentExp()
		case 2:
			return actor.HP()
		case 3:
			return actor.MP()
		default:
			if param2 >= 4 && param2 <= 11 {
				return actor.Param(param2 - 4)
			}
		}
	case dataEnemy:
		enemy := in.enemy(param1)
		if enemy == nil {
			return 0
		}
		switch param2 {
		case 0:
			return enemy.HP()
		case 1:
			return enemy.MP()
		default:
			if param2 >= 2 && param2 <= 9 {
				return enemy.Param(param2 - 2)
			}
		}
	case dataCharacter:
		c := in.characterFor(param1)
		if c == nil {
			return 0
		}
		switch param2 {
		case 0:
			return c.X()
		case 1:
			return c.Y()
		case 2:
			return c.Direction()
		case 3:
			return c.ScreenX()
		case 4:
			return c.ScreenY()
		}
	case dataParty:
		if ctx.Party == nil {
			return 0
		}
		members := ctx.Party.Members()
		if param1 >= 0 && param1 < len(members) {
			return members[param1].ID()
		}
	case dataOther:
		return in.otherData(param1)
	}
	return 0
}

func (in *Interpreter) otherData(which int) int {
	ctx := in.ctx
	switch which {
	case 0:
		if ctx.Map != nil {
			return ctx.Map.MapID()
		}
	case 1:
		if ctx.Party != nil {
			return ctx.Party.Size()
		}
	case 2:
		if ctx.Party != nil {
			return ctx.Party.Gold()
		}
	case 3:
		if ctx.Party != nil {
			return ctx.Party.Steps()
		}
	case 4:
		if ctx.System != nil {
			return ctx.System.PlaytimeSeconds()
		}
	case 5:
		if ctx.Timer != nil {
			return ctx.Timer.Seconds()
		}
	case 6:
		if ctx.System != nil {
			return ctx.System.SaveCount()
		}
	case 7:
		if ctx.System != nil {
			return ctx.System.BattleCount()
		}
	case 8:
		if ctx.System != nil {
			return ctx.System.WinCount()
		}
	case 9:
		if ctx.System != nil {
			return ctx.System.EscapeCount()
		}
	}
	return 0
}

// characterFor resolves a character operand: -1 is the player, 0 this event,
// n event n. Nothing resolves in battle or once the map has changed.
func (in *Interpreter) characterFor(param int) game.Character {
	if in.inBattle() {
		return nil
	}
	if param < 0 {
		if in.ctx.Player == nil {
			return nil
		}
		return in.ctx.Player
	}
	if !in.isOnCurrentMap() {
		return nil
	}
	id := param
	if id == 0 {
		id = in.eventID
	}
	return in.ctx.Map.Event(id)
}

func (in *Interpreter) enemy(index int) game.Enemy {
	if in.ctx.Troop == nil {
		return nil
	}
	members := in.ctx.Troop.Members()
	if index < 0 || index >= len(members) {
		return nil
	}
	return members[index]
}

func (in *Interpreter) actor(id int) game.Actor {
	if in.ctx.Actors == nil {
		return nil
	}
	return in.ctx.Actors.Actor(id)
}

// iterateActorID visits actor id, or every party member when id is 0.
func (in *Interpreter) iterateActorID(id int, f func(game.Actor)) {
	if id == 0 {
		if in.ctx.Party == nil {
			return
		}
		for _, a := range in.ctx.Party.Members() {
			f(a)
		}
		return
	}
	if a := in.actor(id); a != nil {
		f(a)
	}
}

// iterateActorEx resolves the actor operand as fixed (0) or variable-held (1).
func (in *Interpreter) iterateActorEx(kind, param int, f func(game.Actor)) {
	if kind == 0 {
		in.iterateActorID(param, f)
		return
	}
	in.iterateActorID(in.variable(param), f)
}

// iterateEnemyIndex visits troop member index, or the whole troop when negative.
func (in *Interpreter) iterateEnemyIndex(index int, f func(game.Enemy)) {
	if index < 0 {
		if in.ctx.Troop == nil {
			return
		}
		for _, e := range in.ctx.Troop.Members() {
			f(e)
		}
		return
	}
	if e := in.enemy(index); e != nil {
		f(e)
	}
}

// iterateBattler visits enemies (kind 0) or actors (kind 1); battle only.
func (in *Interpreter) iterateBattler(kind, param int, f func(game.Battler)) {
	if !in.inBattle() {
		return
	}
	if kind == 0 {
		in.iterateEnemyIndex(param, func(e game.Enemy) { f(e) })
		return
	}
	in.iterateActorID(param, func(a game.Actor) { f(a) })
}

// changeHP applies value to a living battler; without allowDeath the result
// never drops below 1.
func changeHP(b game.Battler, value int, allowDeath bool) {
	if !b.IsAlive() {
		return
	}
	if !allowDeath && b.HP() <= -value {
		value = 1 - b.HP()
	}
	b.GainHP(value)
}

// location resolves a direct (0) or variable-held (1) coordinate triple.
func (in *Interpreter) location(designation int, p opcode.Params, first int) (int, int, int) {
	a, b, c := p.Int(first), p.Int(first+1), p.Int(first+2)
	if designation != 0 {
		return in.variable(a), in.variable(b), in.variable(c)
	}
	return a, b, c
}
