package interpreter

import (
	"math"

	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/opcode"
)

func init() {
	register(opcode.ControlSwitches, simple(cmdControlSwitches))
	register(opcode.ControlVariables, simple(cmdControlVariables))
	register(opcode.ControlSelfSwitch, simple(cmdControlSelfSwitch))
	register(opcode.ControlTimer, simple(cmdControlTimer))
	register(opcode.ChangeGold, simple(cmdChangeGold))
	register(opcode.ChangeItems, simple(changeInventory(game.KindItem)))
	register(opcode.ChangeWeapons, simple(changeInventory(game.KindWeapon)))
	register(opcode.ChangeArmors, simple(changeInventory(game.KindArmor)))
	register(opcode.ChangePartyMember, simple(cmdChangePartyMember))

	register(opcode.ChangeHP, simple(cmdChangeHP))
	register(opcode.ChangeMP, simple(cmdChangeMP))
	register(opcode.ChangeTP, simple(cmdChangeTP))
	register(opcode.ChangeState, simple(cmdChangeState))
	register(opcode.RecoverAll, simple(cmdRecoverAll))
	register(opcode.ChangeEXP, simple(cmdChangeEXP))
	register(opcode.ChangeLevel, simple(cmdChangeLevel))
	register(opcode.ChangeParameter, simple(cmdChangeParameter))
	register(opcode.ChangeSkill, simple(cmdChangeSkill))
	register(opcode.ChangeEquipment, simple(cmdChangeEquipment))
	register(opcode.ChangeName, simple(func(in *Interpreter, p opcode.Params) {
		if a := in.actor(p.Int(0)); a != nil {
			a.SetName(p.String(1))
		}
	}))
	register(opcode.ChangeNickname, simple(func(in *Interpreter, p opcode.Params) {
		if a := in.actor(p.Int(0)); a != nil {
			a.SetNickname(p.String(1))
		}
	}))
	register(opcode.ChangeProfile, simple(func(in *Interpreter, p opcode.Params) {
		if a := in.actor(p.Int(0)); a != nil {
			a.SetProfile(p.String(1))
		}
	}))
	register(opcode.ChangeClass, simple(cmdChangeClass))
	register(opcode.ChangeActorImages, simple(cmdChangeActorImages))
}

func cmdControlSwitches(in *Interpreter, p opcode.Params) {
	if in.ctx.Switches == nil {
		return
	}
	for id := p.Int(0); id <= p.Int(1); id++ {
		in.ctx.Switches.SetValue(id, p.Int(2) == 0)
	}
}

// Variable operand types.
const (
	operandConstant = iota
	operandVariable
	operandRandom
	operandGameData
	operandScript
)

func cmdControlVariables(in *Interpreter, p opcode.Params) {
	first, last, operation := p.Int(0), p.Int(1), p.Int(2)
	value := 0
	switch p.Int(3) {
	case operandConstant:
		value = p.Int(4)
	case operandVariable:
		value = in.variable(p.Int(4))
	case operandRandom:
		lo, hi := p.Int(4), p.Int(5)
		span := hi - lo + 1
		for id := first; id <= last; id++ {
			n := lo
			if span > 0 {
				n += in.rng.IntN(span)
			}
			in.operateVariable(id, operation, n)
		}
		return
	case operandGameData:
		value = in.gameDataOperand(p.Int(4), p.Int(5), p.Int(6))
	case operandScript:
		v := in.evaluate(p.String(4))
		value = floorValue(v)
	}
	for id := first; id <= last; id++ {
		in.operateVariable(id, operation, value)
	}
}

// floorValue coerces a script result to an integer, rounding down; anything
// non-numeric is 0.
func floorValue(v any) int {
	f := math.Floor(opcode.ToFloat(v))
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func cmdControlSelfSwitch(in *Interpreter, p opcode.Params) {
	if in.eventID <= 0 || in.ctx.SelfSwitches == nil {
		return
	}
	key := game.SelfSwitchKey{MapID: in.mapID, EventID: in.eventID, Channel: p.String(0)}
	in.ctx.SelfSwitches.SetValue(key, p.Int(1) == 0)
}

func cmdControlTimer(in *Interpreter, p opcode.Params) {
	if in.ctx.Timer == nil {
		return
	}
	if p.Int(0) == 0 {
		in.ctx.Timer.Start(p.Int(1) * 60)
		return
	}
	in.ctx.Timer.Stop()
}

func cmdChangeGold(in *Interpreter, p opcode.Params) {
	if in.ctx.Party != nil {
		in.ctx.Party.GainGold(in.operateValue(p.Int(0), p.Int(1), p.Int(2)))
	}
}

func changeInventory(kind game.ItemKind) func(*Interpreter, opcode.Params) {
	return func(in *Interpreter, p opcode.Params) {
		if in.ctx.Party == nil {
			return
		}
		value := in.operateValue(p.Int(1), p.Int(2), p.Int(3))
		in.ctx.Party.GainItem(kind, p.Int(0), value, kind != game.KindItem && p.Bool(4))
	}
}

func cmdChangePartyMember(in *Interpreter, p opcode.Params) {
	actor := in.actor(p.Int(0))
	if actor == nil || in.ctx.Party == nil {
		return
	}
	if p.Int(1) == 0 {
		if p.Bool(2) {
			actor.Setup(p.Int(0))
		}
		in.ctx.Party.AddActor(p.Int(0))
		return
	}
	in.ctx.Party.RemoveActor(p.Int(0))
}

func cmdChangeHP(in *Interpreter, p opcode.Params) {
	value := in.operateValue(p.Int(2), p.Int(3), p.Int(4))
	in.iterateActorEx(p.Int(0), p.Int(1), func(a game.Actor) {
		changeHP(a, value, p.Bool(5))
	})
}

func cmdChangeMP(in *Interpreter, p opcode.Params) {
	value := in.operateValue(p.Int(2), p.Int(3), p.Int(4))
	in.iterateActorEx(p.Int(0), p.Int(1), func(a game.Actor) {
		a.GainMP(value)
	})
}

func cmdChangeTP(in *Interpreter, p opcode.Params) {
	value := in.operateValue(p.Int(2), p.Int(3), p.Int(4))
	in.iterateActorEx(p.Int(0), p.Int(1), func(a game.Actor) {
		a.GainTP(value)
	})
}

func cmdChangeState(in *Interpreter, p opcode.Params) {
	in.iterateActorEx(p.Int(0), p.Int(1), func(a game.Actor) {
		if p.Int(2) == 0 {
			a.AddState(p.Int(3))
		} else {
			a.RemoveState(p.Int(3))
		}
	})
}

func cmdRecoverAll(in *Interpreter, p opcode.Params) {
	in.iterateActorEx(p.Int(0), p.Int(1), func(a game.Actor) {
		a.RecoverAll()
	})
}

func cmdChangeEXP(in *Interpreter, p opcode.Params) {
	value := in.operateValue(p.Int(2), p.Int(3), p.Int(4))
	in.iterateActorEx(p.Int(0), p.Int(1), func(a game.Actor) {
		a.ChangeExp(a.CurrentExp()+value, p.Bool(5))
	})
}

func cmdChangeLevel(in *Interpreter, p opcode.Params) {
	value := in.operateValue(p.Int(2), p.Int(3), p.Int(4))
	in.iterateActorEx(p.Int(0), p.Int(1), func(a game.Actor) {
		a.ChangeLevel(a.Level()+value, p.Bool(5))
	})
}

func cmdChangeParameter(in *Interpreter, p opcode.Params) {
	value := in.operateValue(p.Int(3), p.Int(4), p.Int(5))
	in.iterateActorEx(p.Int(0), p.Int(1), func(a game.Actor) {
		a.AddParam(p.Int(2), value)
	})
}

func cmdChangeSkill(in *Interpreter, p opcode.Params) {
	in.iterateActorEx(p.Int(0), p.Int(1), func(a game.Actor) {
		if p.Int(2) == 0 {
			a.LearnSkill(p.Int(3))
		} else {
			a.ForgetSkill(p.Int(3))
		}
	})
}

func cmdChangeEquipment(in *Interpreter, p opcode.Params) {
	if a := in.actor(p.Int(0)); a != nil {
		a.ChangeEquipByID(p.Int(1), p.Int(2))
	}
}

func cmdChangeClass(in *Interpreter, p opcode.Params) {
	a := in.actor(p.Int(0))
	if a == nil || in.ctx.Data == nil || !in.ctx.Data.HasClass(p.Int(1)) {
		return
	}
	a.ChangeClass(p.Int(1), p.Bool(2))
}

func cmdChangeActorImages(in *Interpreter, p opcode.Params) {
	a := in.actor(p.Int(0))
	if a == nil {
		return
	}
	a.SetCharacterImage(p.String(1), p.Int(2))
	a.SetFaceImage(p.String(3), p.Int(4))
	a.SetBattlerImage(p.String(5))
	if in.ctx.Player != nil {
		in.ctx.Player.Refresh()
	}
}
