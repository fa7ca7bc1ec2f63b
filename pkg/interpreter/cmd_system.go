package interpreter

import (
	"fmt"
	"strings"

	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/opcode"
)

func init() {
	register(opcode.ChangeBattleBGM, systemCommand(func(s game.System, p opcode.Params) { s.SetBattleBGM(p.Audio(0)) }))
	register(opcode.ChangeVictoryME, systemCommand(func(s game.System, p opcode.Params) { s.SetVictoryME(p.Audio(0)) }))
	register(opcode.ChangeDefeatME, systemCommand(func(s game.System, p opcode.Params) { s.SetDefeatME(p.Audio(0)) }))
	register(opcode.ChangeSaveAccess, systemCommand(func(s game.System, p opcode.Params) { s.SetSaveEnabled(p.Int(0) != 0) }))
	register(opcode.ChangeMenuAccess, systemCommand(func(s game.System, p opcode.Params) { s.SetMenuEnabled(p.Int(0) != 0) }))
	register(opcode.ChangeEncounter, systemCommand(func(s game.System, p opcode.Params) { s.SetEncounterEnabled(p.Int(0) != 0) }))
	register(opcode.ChangeFormationAccess, systemCommand(func(s game.System, p opcode.Params) { s.SetFormationEnabled(p.Int(0) != 0) }))
	register(opcode.ChangeWindowColor, systemCommand(func(s game.System, p opcode.Params) { s.SetWindowTone(p.Tone(0)) }))
	register(opcode.SaveBGM, systemCommand(func(s game.System, _ opcode.Params) { s.SaveBGM() }))
	register(opcode.ResumeBGM, systemCommand(func(s game.System, _ opcode.Params) { s.ReplayBGM() }))

	register(opcode.PlayBGM, audioCommand(func(a game.Audio, p opcode.Params) { a.PlayBGM(p.Audio(0)) }))
	register(opcode.FadeoutBGM, audioCommand(func(a game.Audio, p opcode.Params) { a.FadeOutBGM(p.Int(0)) }))
	register(opcode.PlayBGS, audioCommand(func(a game.Audio, p opcode.Params) { a.PlayBGS(p.Audio(0)) }))
	register(opcode.FadeoutBGS, audioCommand(func(a game.Audio, p opcode.Params) { a.FadeOutBGS(p.Int(0)) }))
	register(opcode.PlayME, audioCommand(func(a game.Audio, p opcode.Params) { a.PlayME(p.Audio(0)) }))
	register(opcode.PlaySE, audioCommand(func(a game.Audio, p opcode.Params) { a.PlaySE(p.Audio(0)) }))
	register(opcode.StopSE, audioCommand(func(a game.Audio, _ opcode.Params) { a.StopSE() }))
	register(opcode.PlayMovie, cmdPlayMovie)

	register(opcode.BattleProcessing, simple(cmdBattleProcessing))
	register(opcode.ShopProcessing, simple(cmdShopProcessing))
	register(opcode.NameInput, simple(cmdNameInput))
	register(opcode.OpenMenu, simple(outsideBattle(game.SceneMenu)))
	register(opcode.OpenSave, simple(outsideBattle(game.SceneSave)))
	register(opcode.GameOver, simple(gotoScene(game.SceneGameover)))
	register(opcode.ReturnToTitle, simple(gotoScene(game.SceneTitle)))

	register(opcode.Script, simple(cmdScript))
	register(opcode.PluginCommand, simple(cmdPluginCommand))
}

func systemCommand(f func(game.System, opcode.Params)) handler {
	return simple(func(in *Interpreter, p opcode.Params) {
		if in.ctx.System != nil {
			f(in.ctx.System, p)
		}
	})
}

func audioCommand(f func(game.Audio, opcode.Params)) handler {
	return simple(func(in *Interpreter, p opcode.Params) {
		if in.ctx.Audio != nil {
			f(in.ctx.Audio, p)
		}
	})
}

func cmdPlayMovie(in *Interpreter, p opcode.Params) (bool, error) {
	if in.ctx.Video == nil {
		return true, nil
	}
	if in.messageBusy() {
		return false, nil
	}
	if name := p.String(0); name != "" {
		in.ctx.Video.Play(name)
		in.setWaitMode(WaitVideo)
	}
	return true, nil
}

// Troop designations for battle processing.
const (
	troopDirect = iota
	troopVariable
	troopEncounter
)

func cmdBattleProcessing(in *Interpreter, p opcode.Params) {
	ctx := in.ctx
	if in.inBattle() || ctx.Battle == nil || ctx.Scene == nil {
		return
	}
	var troopID int
	switch p.Int(0) {
	case troopDirect:
		troopID = p.Int(1)
	case troopVariable:
		troopID = in.variable(p.Int(1))
	case troopEncounter:
		if ctx.Player != nil {
			troopID = ctx.Player.EncounterTroopID()
		}
	}
	if ctx.Data == nil || !ctx.Data.HasTroop(troopID) {
		in.recoverError(ErrorMissingReference, fmt.Sprintf("troop %d not found", troopID), nil)
		return
	}
	ctx.Battle.Setup(troopID, p.Bool(2), p.Bool(3))
	ctx.Battle.SetEventCallback(in.ResultCallback())
	if ctx.Player != nil {
		ctx.Player.MakeEncounterCount()
	}
	ctx.Scene.Push(game.SceneBattle, nil)
}

func cmdShopProcessing(in *Interpreter, p opcode.Params) {
	if in.inBattle() || in.ctx.Scene == nil {
		return
	}
	req := game.ShopRequest{PurchaseOnly: p.Bool(4)}
	req.Goods = append(req.Goods, shopGood(p))
	for in.nextCode() == opcode.ShopGoods {
		in.index++
		req.Goods = append(req.Goods, shopGood(in.list[in.index].Parameters))
	}
	in.ctx.Scene.Push(game.SceneShop, req)
}

func shopGood(p opcode.Params) game.ShopGood {
	return game.ShopGood{
		Kind:      game.ItemKind(p.Int(0)),
		ID:        p.Int(1),
		PriceType: p.Int(2),
		Price:     p.Int(3),
	}
}

func cmdNameInput(in *Interpreter, p opcode.Params) {
	if in.inBattle() || in.ctx.Scene == nil || in.ctx.Data == nil || !in.ctx.Data.HasActor(p.Int(0)) {
		return
	}
	in.ctx.Scene.Push(game.SceneName, game.NameRequest{ActorID: p.Int(0), MaxLength: p.Int(1)})
}

func outsideBattle(kind game.SceneKind) func(*Interpreter, opcode.Params) {
	return func(in *Interpreter, _ opcode.Params) {
		if !in.inBattle() && in.ctx.Scene != nil {
			in.ctx.Scene.Push(kind, nil)
		}
	}
}

func gotoScene(kind game.SceneKind) func(*Interpreter, opcode.Params) {
	return func(in *Interpreter, _ opcode.Params) {
		if in.ctx.Scene != nil {
			in.ctx.Scene.Goto(kind)
		}
	}
}

// cmdScript joins the script line with its continuation lines and evaluates it.
func cmdScript(in *Interpreter, p opcode.Params) {
	var sb strings.Builder
	sb.WriteString(p.String(0))
	sb.WriteByte('\n')
	for in.nextCode() == opcode.ScriptLine {
		in.index++
		sb.WriteString(in.list[in.index].Parameters.String(0))
		sb.WriteByte('\n')
	}
	in.evaluate(sb.String())
}

func cmdPluginCommand(in *Interpreter, p opcode.Params) {
	if in.ctx.Plugins == nil {
		return
	}
	args := strings.Split(p.String(0), " ")
	in.ctx.Plugins.Command(args[0], args[1:])
}
