package interpreter

import (
	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/opcode"
)

func init() {
	register(opcode.ChangeEnemyHP, simple(func(in *Interpreter, p opcode.Params) {
		value := in.operateValue(p.Int(1), p.Int(2), p.Int(3))
		in.iterateEnemyIndex(p.Int(0), func(e game.Enemy) {
			changeHP(e, value, p.Bool(4))
		})
	}))
	register(opcode.ChangeEnemyMP, simple(func(in *Interpreter, p opcode.Params) {
		value := in.operateValue(p.Int(1), p.Int(2), p.Int(3))
		in.iterateEnemyIndex(p.Int(0), func(e game.Enemy) { e.GainMP(value) })
	}))
	register(opcode.ChangeEnemyTP, simple(func(in *Interpreter, p opcode.Params) {
		value := in.operateValue(p.Int(1), p.Int(2), p.Int(3))
		in.iterateEnemyIndex(p.Int(0), func(e game.Enemy) { e.GainTP(value) })
	}))
	register(opcode.ChangeEnemyState, simple(func(in *Interpreter, p opcode.Params) {
		in.iterateEnemyIndex(p.Int(0), func(e game.Enemy) {
			if p.Int(1) == 0 {
				e.AddState(p.Int(2))
			} else {
				e.RemoveState(p.Int(2))
			}
		})
	}))
	register(opcode.EnemyRecoverAll, simple(func(in *Interpreter, p opcode.Params) {
		in.iterateEnemyIndex(p.Int(0), func(e game.Enemy) { e.RecoverAll() })
	}))
	register(opcode.EnemyAppear, simple(func(in *Interpreter, p opcode.Params) {
		in.iterateEnemyIndex(p.Int(0), func(e game.Enemy) {
			e.Appear()
			in.ctx.Troop.MakeUniqueNames()
		})
	}))
	register(opcode.EnemyTransform, simple(func(in *Interpreter, p opcode.Params) {
		in.iterateEnemyIndex(p.Int(0), func(e game.Enemy) {
			e.Transform(p.Int(1))
			in.ctx.Troop.MakeUniqueNames()
		})
	}))
	register(opcode.ShowBattleAnimation, simple(cmdShowBattleAnimation))
	register(opcode.ForceAction, simple(cmdForceAction))
	register(opcode.AbortBattle, simple(func(in *Interpreter, _ opcode.Params) {
		if in.ctx.Battle != nil {
			in.ctx.Battle.Abort()
		}
	}))
}

func cmdShowBattleAnimation(in *Interpreter, p opcode.Params) {
	target := p.Int(0)
	if p.Bool(2) {
		target = -1
	}
	in.iterateEnemyIndex(target, func(e game.Enemy) {
		if e.IsAlive() {
			e.StartAnimation(p.Int(1))
		}
	})
}

// cmdForceAction queues a skill for a living battler and waits for the
// battle to resolve it.
func cmdForceAction(in *Interpreter, p opcode.Params) {
	if in.ctx.Battle == nil {
		return
	}
	in.iterateBattler(p.Int(0), p.Int(1), func(b game.Battler) {
		if b.IsDeathStateAffected() {
			return
		}
		b.ForceAction(p.Int(2), p.Int(3))
		in.ctx.Battle.ForceAction(b)
		in.setWaitMode(WaitAction)
	})
}
