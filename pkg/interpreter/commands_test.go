package interpreter

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/opcode"
)

func TestControlVariablesOperations(t *testing.T) {
	tests := []struct {
		name      string
		initial   int
		operation int
		operand   int
		want      int
	}{
		{"set", 3, opSet, 7, 7},
		{"add", 3, opAdd, 7, 10},
		{"sub", 3, opSub, 7, -4},
		{"mul", 3, opMul, 7, 21},
		{"div", 7, opDiv, 2, 3},
		{"div floors negatives", -7, opDiv, 2, -4},
		{"div by zero stores zero", 7, opDiv, 0, 0},
		{"mod", 7, opMod, 3, 1},
		{"mod keeps dividend sign", -7, opMod, 3, -1},
		{"mod by zero stores zero", 7, opMod, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testSeed())
			h.world.Variables.SetValue(1, tt.initial)
			in := h.interpreter(list(cmd(opcode.ControlVariables, 0, 1, 1, tt.operation, operandConstant, tt.operand)))
			if _, err := h.run(in, 1); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if got := h.world.Variables.Value(1); got != tt.want {
				t.Errorf("variable 1 = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestControlVariablesOperands(t *testing.T) {
	h := newHarness(t, testSeed())
	h.ctx.Eval = evalFunc(func(src string, b game.Bindings) (any, error) {
		switch src {
		case "v[10] * 1.5":
			return float64(b.Variables.Value(10)) * 1.5, nil
		case "boom":
			return nil, errors.New("ReferenceError: boom is not defined")
		}
		return "not a number", nil
	})
	h.world.Variables.SetValue(10, 5)
	h.world.Party.GainGold(250)
	in := h.interpreter(list(
		cmd(opcode.ControlVariables, 0, 1, 1, opSet, operandVariable, 10),
		cmd(opcode.ControlVariables, 0, 2, 4, opSet, operandRandom, 3, 5),
		cmd(opcode.ControlVariables, 0, 5, 5, opSet, operandGameData, dataOther, 2, 0),
		cmd(opcode.ControlVariables, 0, 6, 6, opSet, operandGameData, dataActor, 1, 0),
		cmd(opcode.ControlVariables, 0, 7, 7, opSet, operandScript, "v[10] * 1.5"),
		cmd(opcode.ControlVariables, 0, 8, 8, opSet, operandConstant, 9),
		cmd(opcode.ControlVariables, 0, 8, 8, opSet, operandScript, "boom"),
		cmd(opcode.ControlVariables, 0, 9, 9, opSet, operandScript, "text"),
	), WithRand(rand.New(rand.NewPCG(1, 2))))
	if _, err := h.run(in, 1); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	v := h.world.Variables
	if v.Value(1) != 5 {
		t.Errorf("variable operand = %d, want 5", v.Value(1))
	}
	for id := 2; id <= 4; id++ {
		if n := v.Value(id); n < 3 || n > 5 {
			t.Errorf("random variable %d = %d, want 3..5", id, n)
		}
	}
	if v.Value(5) != 250 {
		t.Errorf("gold operand = %d, want 250", v.Value(5))
	}
	if v.Value(6) != 1 {
		t.Errorf("actor level operand = %d, want 1", v.Value(6))
	}
	if v.Value(7) != 7 {
		t.Errorf("script operand = %d, want 7", v.Value(7))
	}
	if v.Value(8) != 0 {
		t.Errorf("failing script operand = %d, want 0", v.Value(8))
	}
	if v.Value(9) != 0 {
		t.Errorf("non-numeric script operand = %d, want 0", v.Value(9))
	}
}

func TestScriptConditionErrorIsFalse(t *testing.T) {
	h := newHarness(t, testSeed())
	h.ctx.Eval = evalFunc(func(string, game.Bindings) (any, error) {
		return nil, errors.New("SyntaxError")
	})
	in := h.interpreter(list(
		cmd(opcode.ConditionalBranch, 0, condScript, "((("),
		cmd(opcode.ControlSwitches, 1, 1, 1, 0),
		cmd(opcode.End, 1),
		cmd(opcode.Else, 0),
		cmd(opcode.ControlSwitches, 1, 2, 2, 0),
		cmd(opcode.End, 1),
		cmd(opcode.BranchEnd, 0),
	))
	if _, err := h.run(in, 1); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if h.world.Switches.Value(1) || !h.world.Switches.Value(2) {
		t.Error("failing script condition did not take the else branch")
	}
}

func TestConditionKinds(t *testing.T) {
	tests := []struct {
		name  string
		setup func(w *game.World)
		p     []any
		want  bool
	}{
		{"switch off", nil, []any{condSwitch, 4, 1}, true},
		{"variable >= other", func(w *game.World) {
			w.Variables.SetValue(1, 5)
			w.Variables.SetValue(2, 5)
		}, []any{condVariable, 1, 1, 2, 1}, true},
		{"variable != constant", nil, []any{condVariable, 1, 0, 0, 5}, false},
		{"timer stopped", nil, []any{condTimer, 0, 0}, false},
		{"timer running", func(w *game.World) { w.Timer.Start(600) }, []any{condTimer, 5, 0}, true},
		{"actor in party", nil, []any{condActor, 1, actorInParty}, true},
		{"actor not in party", nil, []any{condActor, 3, actorInParty}, false},
		{"actor name", nil, []any{condActor, 2, actorName, "Therese"}, true},
		{"gold below", nil, []any{condGold, 10, 2}, true},
		{"item owned", func(w *game.World) { w.Party.GainItem(game.KindItem, 3, 1, false) }, []any{condItem, 3}, true},
		{"button", func(w *game.World) { w.Input.Set("ok", true) }, []any{condButton, "ok"}, true},
		{"button triggered", func(w *game.World) { w.Input.Set("ok", true) }, []any{condButton, "ok", buttonTriggered}, true},
		{"held button not triggered", holdKey("ok", 3), []any{condButton, "ok", buttonTriggered}, false},
		{"held button pressed", holdKey("ok", 3), []any{condButton, "ok", buttonPressed}, true},
		{"held button not repeated yet", holdKey("ok", 3), []any{condButton, "ok", buttonRepeated}, false},
		{"held button repeats", holdKey("ok", game.KeyRepeatWait+1), []any{condButton, "ok", buttonRepeated}, true},
		{"player facing down", nil, []any{condCharacter, -1, game.DirDown}, true},
		{"no vehicle", nil, []any{condVehicle, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testSeed())
			if tt.setup != nil {
				tt.setup(h.world)
			}
			in := h.interpreter(nil)
			if got := in.evaluateCondition(opcode.Params(tt.p)); got != tt.want {
				t.Errorf("evaluateCondition(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

// holdKey presses key and keeps it down for frames world frames.
func holdKey(key string, frames int) func(w *game.World) {
	return func(w *game.World) {
		w.Input.Set(key, true)
		for range frames {
			w.Update()
		}
	}
}

// choiceList shows Yes/No and records the branch taken in variable 1
// (1 for Yes, 2 for No, 3 for cancel).
func choiceList(cancelType int) opcode.List {
	return list(
		cmd(opcode.ShowChoices, 0, []any{"Yes", "No"}, cancelType, 0, 2, 0),
		cmd(opcode.When, 0, 0, "Yes"),
		cmd(opcode.ControlVariables, 1, 1, 1, opSet, operandConstant, 1),
		cmd(opcode.End, 1),
		cmd(opcode.When, 0, 1, "No"),
		cmd(opcode.ControlVariables, 1, 1, 1, opSet, operandConstant, 2),
		cmd(opcode.End, 1),
		cmd(opcode.WhenCancel, 0),
		cmd(opcode.ControlVariables, 1, 1, 1, opSet, operandConstant, 3),
		cmd(opcode.End, 1),
		cmd(opcode.ChoicesEnd, 0),
	)
}

func TestChoiceBranches(t *testing.T) {
	tests := []struct {
		name       string
		cancelType int
		pick       func(choices []string, defaultType, cancelType int) int
		want       int
	}{
		{"first", 2, func([]string, int, int) int { return 0 }, 1},
		{"second", 2, func([]string, int, int) int { return 1 }, 2},
		{"cancel branch", 2, func(_ []string, _, cancelType int) int { return cancelType }, 3},
		{"cancel mapped to choice", 1, func(_ []string, _, cancelType int) int { return cancelType }, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testSeed(), game.WithChoicePolicy(tt.pick))
			in := h.interpreter(choiceList(tt.cancelType))
			if _, err := h.run(in, 10); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if got := h.world.Variables.Value(1); got != tt.want {
				t.Errorf("branch taken = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWhenCancelSkipsWithoutResult(t *testing.T) {
	h := newHarness(t, testSeed())
	in := h.interpreter(list(
		cmd(opcode.WhenCancel, 0),
		cmd(opcode.ControlSwitches, 1, 1, 1, 0),
		cmd(opcode.ChoicesEnd, 0),
	))
	if _, err := h.run(in, 1); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if h.world.Switches.Value(1) {
		t.Error("cancel branch ran with a null register")
	}
}

func TestShowTextSpeakerName(t *testing.T) {
	h := newHarness(t, testSeed())
	in := h.interpreter(list(
		cmd(opcode.ShowText, 0, "Actor1", 0, 0, 2, "Harold"),
		cmd(opcode.TextLine, 0, "Hi"),
		text(0, "Bye"),
	))
	if _, err := h.run(in, 10); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	pages := h.world.Message.Transcript()
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if pages[0].Speaker != "Harold" || pages[1].Speaker != "" {
		t.Errorf("speakers = %q, %q; want Harold then none", pages[0].Speaker, pages[1].Speaker)
	}
}

func TestShowTextFoldsChoices(t *testing.T) {
	h := newHarness(t, testSeed())
	in := h.interpreter(list(
		text(0, "Shall we?", "Really?"),
		cmd(opcode.ShowChoices, 0, []any{"Go", "Stay"}, -1, 1, 2, 0),
		cmd(opcode.When, 0, 0, "Go"),
		cmd(opcode.ControlSwitches, 1, 1, 1, 0),
		cmd(opcode.End, 1),
		cmd(opcode.When, 0, 1, "Stay"),
		cmd(opcode.ControlSwitches, 1, 2, 2, 0),
		cmd(opcode.End, 1),
		cmd(opcode.ChoicesEnd, 0),
	))
	if _, err := h.run(in, 10); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	want := []game.Page{{Lines: []string{"Shall we?", "Really?"}, Choices: []string{"Go", "Stay"}, Chosen: 1}}
	if diff := cmp.Diff(want, h.world.Message.Transcript()); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
	if h.world.Switches.Value(1) || !h.world.Switches.Value(2) {
		t.Error("default choice branch not taken")
	}
}

func TestNumberInputWritesVariable(t *testing.T) {
	h := newHarness(t, testSeed())
	in := h.interpreter(list(cmd(opcode.InputNumber, 0, 12, 3)))
	h.world.Variables.SetValue(12, 99)
	if _, err := h.run(in, 10); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := h.world.Variables.Value(12); got != 0 {
		t.Errorf("number input variable = %d, want 0", got)
	}
}

// battleList fights troop 1 and records the result branch in variable 1
// (1 win, 2 escape, 3 lose).
func battleList(canEscape, canLose bool) opcode.List {
	return list(
		cmd(opcode.BattleProcessing, 0, troopDirect, 1, canEscape, canLose),
		cmd(opcode.IfWin, 0),
		cmd(opcode.ControlVariables, 1, 1, 1, opSet, operandConstant, 1),
		cmd(opcode.End, 1),
		cmd(opcode.IfEscape, 0),
		cmd(opcode.ControlVariables, 1, 1, 1, opSet, operandConstant, 2),
		cmd(opcode.End, 1),
		cmd(opcode.IfLose, 0),
		cmd(opcode.ControlVariables, 1, 1, 1, opSet, operandConstant, 3),
		cmd(opcode.End, 1),
		cmd(opcode.BattleEnd, 0),
	)
}

func TestBattleResultBranches(t *testing.T) {
	lose := func(*game.TroopState, *game.PartyState, bool, bool) int { return game.BattleLose }
	escape := func(*game.TroopState, *game.PartyState, bool, bool) int { return game.BattleEscape }
	tests := []struct {
		name      string
		opts      []game.WorldOption
		canEscape bool
		abort     bool
		want      int
	}{
		{"win", nil, false, false, 1},
		{"escape", []game.WorldOption{game.WithBattleResult(escape)}, true, false, 2},
		{"escape not allowed wins", []game.WorldOption{game.WithBattleResult(escape)}, false, false, 1},
		{"lose", []game.WorldOption{game.WithBattleResult(lose)}, false, false, 3},
		{"abort", nil, false, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testSeed(), tt.opts...)
			h.data.troops[1] = true
			in := h.interpreter(battleList(tt.canEscape, true))
			if tt.abort {
				h.world.Update()
				if err := in.Update(); err != nil {
					t.Fatal(err)
				}
				h.world.Battle.Abort()
			}
			if _, err := h.run(in, 20); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if got := h.world.Variables.Value(1); got != tt.want {
				t.Errorf("result branch = %d, want %d", got, tt.want)
			}
			if h.world.System.BattleCount() != 1 {
				t.Errorf("battle count = %d, want 1", h.world.System.BattleCount())
			}
			if h.world.Party.InBattle() {
				t.Error("party still in battle")
			}
		})
	}
}

func TestBattleWithUnknownTroopIsSkipped(t *testing.T) {
	h := newHarness(t, testSeed())
	in := h.interpreter(battleList(false, false))
	if _, err := h.run(in, 5); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if h.world.System.BattleCount() != 0 || h.world.Variables.Value(1) != 0 {
		t.Error("battle ran for a troop missing from the database")
	}
}

func TestLosingWithoutCanLoseEndsGame(t *testing.T) {
	lose := func(*game.TroopState, *game.PartyState, bool, bool) int { return game.BattleLose }
	h := newHarness(t, testSeed(), game.WithBattleResult(lose))
	h.data.troops[1] = true
	in := h.interpreter(battleList(false, false))
	for i := 0; i < 10 && !h.world.Ended(); i++ {
		h.world.Update()
		if h.world.Scene.Current() == game.SceneMap {
			if err := in.Update(); err != nil {
				t.Fatal(err)
			}
		}
	}
	if !h.world.Ended() {
		t.Error("losing a battle that cannot be lost did not reach game over")
	}
}

func TestEnemyCommandsInBattle(t *testing.T) {
	h := newHarness(t, testSeed())
	h.world.Battle.Setup(1, false, false)
	h.world.Scene.Push(game.SceneBattle, nil)
	h.world.Update()
	if !h.world.Party.InBattle() {
		t.Fatal("battle did not start")
	}
	in := h.interpreter(list(
		cmd(opcode.ChangeEnemyHP, 0, 0, 1, 0, 500, false),
		cmd(opcode.ChangeEnemyHP, 0, 1, 1, 0, 500, true),
		cmd(opcode.ChangeEnemyState, 0, -1, 0, 5),
	))
	if err := in.Update(); err != nil {
		t.Fatal(err)
	}
	members := h.world.Troop.Members()
	if len(members) != 2 {
		t.Fatalf("troop size = %d, want 2", len(members))
	}
	if members[0].HP() != 1 {
		t.Errorf("enemy 0 HP = %d, want 1 without allow death", members[0].HP())
	}
	if members[1].HP() != 0 {
		t.Errorf("enemy 1 HP = %d, want 0 with allow death", members[1].HP())
	}
	for i, e := range members {
		if !e.IsStateAffected(5) {
			t.Errorf("enemy %d missing state 5", i)
		}
	}
}

func TestForceActionWaitsForBattle(t *testing.T) {
	h := newHarness(t, testSeed(), game.WithSceneFrames(30))
	h.world.Battle.Setup(1, false, false)
	h.world.Scene.Push(game.SceneBattle, nil)
	h.world.Update()
	in := h.interpreter(list(
		cmd(opcode.ForceAction, 0, 0, 0, 3, -1),
		cmd(opcode.ControlSwitches, 0, 1, 1, 0),
	))
	if err := in.Update(); err != nil {
		t.Fatal(err)
	}
	if in.WaitMode() != WaitAction {
		t.Fatalf("wait mode = %v, want action", in.WaitMode())
	}
	h.world.Update()
	if err := in.Update(); err != nil {
		t.Fatal(err)
	}
	if !h.world.Switches.Value(1) {
		t.Error("interpreter did not resume after the forced action ran")
	}
	if len(h.world.Battle.Actions) != 1 || h.world.Battle.Actions[0].SkillID != 3 {
		t.Errorf("forced actions = %+v, want one with skill 3", h.world.Battle.Actions)
	}
}

func TestActorCommands(t *testing.T) {
	h := newHarness(t, testSeed())
	in := h.interpreter(list(
		cmd(opcode.ChangeHP, 0, 0, 1, 1, 0, 9999, false),
		cmd(opcode.ChangeHP, 0, 0, 2, 1, 0, 9999, true),
		cmd(opcode.ChangeLevel, 0, 0, 1, 0, 0, 4, false),
		cmd(opcode.ChangeSkill, 0, 0, 0, 0, 10),
		cmd(opcode.ChangeName, 0, 1, "Hal"),
		cmd(opcode.ChangePartyMember, 0, 3, 0, true),
		cmd(opcode.ChangePartyMember, 0, 2, 1),
	))
	if _, err := h.run(in, 1); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	a1 := h.world.Actors.State(1)
	a2 := h.world.Actors.State(2)
	if a1.HP() != 1 {
		t.Errorf("actor 1 HP = %d, want 1", a1.HP())
	}
	if a2.HP() != 0 {
		t.Errorf("actor 2 HP = %d, want 0", a2.HP())
	}
	if a1.Level() != 5 {
		t.Errorf("actor 1 level = %d, want 5", a1.Level())
	}
	if !a1.HasSkill(10) || !a2.HasSkill(10) {
		t.Error("whole-party skill change missed a member")
	}
	if a1.Name() != "Hal" {
		t.Errorf("actor 1 name = %q, want Hal", a1.Name())
	}
	if diff := cmp.Diff([]int{1, 3}, h.world.Party.MemberIDs()); diff != "" {
		t.Errorf("party mismatch (-want +got):\n%s", diff)
	}
}

func TestSelfSwitchNeedsEvent(t *testing.T) {
	h := newHarness(t, testSeed())
	l := list(cmd(opcode.ControlSelfSwitch, 0, "A", 0))

	in := h.interpreter(l)
	if _, err := h.run(in, 1); err != nil {
		t.Fatal(err)
	}
	key := game.SelfSwitchKey{MapID: 1, EventID: 1, Channel: "A"}
	if h.world.SelfSwitches.Value(key) {
		t.Fatal("self switch set without an owning event")
	}

	in.Setup(l, 1)
	if _, err := h.run(in, 1); err != nil {
		t.Fatal(err)
	}
	if !h.world.SelfSwitches.Value(key) {
		t.Error("self switch not set for event 1")
	}
}

func TestPluginCommandSplitsArguments(t *testing.T) {
	h := newHarness(t, testSeed())
	var got []string
	h.world.Plugins.Register("Quest", func(args []string) { got = args })
	in := h.interpreter(list(
		cmd(opcode.PluginCommand, 0, "Quest add 12"),
		cmd(opcode.PluginCommand, 0, "Unknown x"),
	))
	if _, err := h.run(in, 1); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"add", "12"}, got); diff != "" {
		t.Errorf("plugin args mismatch (-want +got):\n%s", diff)
	}
}

func TestScriptCommandJoinsLines(t *testing.T) {
	h := newHarness(t, testSeed())
	var src string
	h.ctx.Eval = evalFunc(func(s string, _ game.Bindings) (any, error) {
		src = s
		return nil, errors.New("ignored")
	})
	in := h.interpreter(list(
		cmd(opcode.Script, 0, "local x = 1"),
		cmd(opcode.ScriptLine, 0, "v[1] = x"),
		cmd(opcode.ControlSwitches, 0, 1, 1, 0),
	))
	if _, err := h.run(in, 1); err != nil {
		t.Fatal(err)
	}
	if src != "local x = 1\nv[1] = x\n" {
		t.Errorf("script source = %q", src)
	}
	if !h.world.Switches.Value(1) {
		t.Error("script failure stopped the list")
	}
}

func TestShopAndSceneCommands(t *testing.T) {
	h := newHarness(t, testSeed())
	h.data.actors[1] = true
	in := h.interpreter(list(
		cmd(opcode.ShopProcessing, 0, 0, 1, 0, 0, true),
		cmd(opcode.ShopGoods, 0, 1, 2, 1, 50),
		cmd(opcode.NameInput, 0, 1, 8),
		cmd(opcode.OpenSave, 0),
	))
	if _, err := h.run(in, 20); err != nil {
		t.Fatal(err)
	}
	want := []game.SceneKind{game.SceneShop, game.SceneName, game.SceneSave}
	if diff := cmp.Diff(want, h.world.Scene.Visited); diff != "" {
		t.Errorf("scenes mismatch (-want +got):\n%s", diff)
	}
	shop, ok := h.world.Scene.Requests[0].(game.ShopRequest)
	if !ok || len(shop.Goods) != 2 || !shop.PurchaseOnly || shop.Goods[1].Price != 50 {
		t.Errorf("shop request = %+v", h.world.Scene.Requests[0])
	}
	if h.world.System.SaveCount() != 1 {
		t.Errorf("save count = %d, want 1", h.world.System.SaveCount())
	}
}

func TestChangeTilesetWaitsForImages(t *testing.T) {
	h := newHarness(t, testSeed())
	h.world.Images.Latency = 3
	in := h.interpreter(list(cmd(opcode.ChangeTileset, 0, 4)))
	if _, err := h.run(in, 10); err != nil {
		t.Fatal(err)
	}
	if h.world.Map.TilesetID() != 4 {
		t.Errorf("tileset = %d, want 4", h.world.Map.TilesetID())
	}
}

func TestTimerConditionCountsFrames(t *testing.T) {
	tests := []struct {
		name    string
		frames  int
		seconds int
		op      int
		want    bool
	}{
		{"60 frames <= 1s", 60, 1, 1, true},
		{"61 frames <= 1s", 61, 1, 1, false},
		{"119 frames <= 1s", 119, 1, 1, false},
		{"60 frames >= 1s", 60, 1, 0, true},
		{"59 frames >= 1s", 59, 1, 0, false},
		{"119 frames >= 2s", 119, 2, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testSeed())
			h.world.Timer.Start(tt.frames)
			in := h.interpreter(list(
				cmd(opcode.ConditionalBranch, 0, condTimer, tt.seconds, tt.op),
				cmd(opcode.ControlVariables, 1, 1, 1, opSet, operandConstant, 7),
				cmd(opcode.End, 1),
				cmd(opcode.BranchEnd, 0),
			))
			if err := in.Update(); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if got := h.world.Variables.Value(1) == 7; got != tt.want {
				t.Errorf("branch taken = %v, want %v", got, tt.want)
			}
		})
	}
}
