package interpreter

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/opcode"
)

func TestConditionalBranchShowsOnlyTakenText(t *testing.T) {
	tests := []struct {
		name    string
		switch1 bool
		want    []string
	}{
		{"switch on", true, []string{"A"}},
		{"switch off", false, []string{"B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testSeed())
			h.world.Switches.SetValue(1, tt.switch1)
			in := h.interpreter(list(
				cmd(opcode.ConditionalBranch, 0, 0, 1, 0),
				text(1, "A"),
				cmd(opcode.Else, 0),
				text(1, "B"),
				cmd(opcode.BranchEnd, 0),
			))
			if _, err := h.run(in, 10); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, h.world.Message.Texts()); diff != "" {
				t.Errorf("displayed text mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoopCountsToFiveAndHalts(t *testing.T) {
	h := newHarness(t, testSeed())
	in := h.interpreter(list(
		cmd(opcode.Loop, 0),
		cmd(opcode.ControlVariables, 1, 1, 1, opAdd, operandConstant, 1),
		cmd(opcode.ConditionalBranch, 1, condVariable, 1, 0, 5, 0),
		cmd(opcode.BreakLoop, 2),
		cmd(opcode.End, 2),
		cmd(opcode.BranchEnd, 1),
		cmd(opcode.End, 1),
		cmd(opcode.RepeatAbove, 0),
	))
	ticks, err := h.run(in, 5)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := h.world.Variables.Value(1); got != 5 {
		t.Errorf("variable 1 = %d, want 5", got)
	}
	if ticks > 5 {
		t.Errorf("ticks = %d, want at most 5", ticks)
	}
}

func TestRecursiveCommonEventOverflowsAtDepth100(t *testing.T) {
	h := newHarness(t, testSeed())
	h.data.add(1, list(cmd(opcode.CommonEvent, 0, 1), cmd(opcode.ControlSwitches, 0, 9, 9, 0)))
	in := h.interpreter(list(cmd(opcode.CommonEvent, 0, 1)))

	h.world.Update()
	err := in.Update()
	if err == nil {
		t.Fatal("Update() error = nil, want call stack overflow")
	}
	if !errors.Is(err, ErrCallStackOverflow) {
		t.Errorf("errors.Is(err, ErrCallStackOverflow) = false, err = %v", err)
	}
	if !IsFatal(err) {
		t.Errorf("IsFatal(%v) = false, want true", err)
	}
	var rerr *RuntimeError
	if errors.As(err, &rerr) && rerr.Depth != MaxDepth {
		t.Errorf("overflow depth = %d, want %d", rerr.Depth, MaxDepth)
	}

	deepest := in
	for deepest.Child() != nil {
		deepest = deepest.Child()
	}
	if deepest.Depth() != MaxDepth-1 {
		t.Errorf("deepest interpreter depth = %d, want %d", deepest.Depth(), MaxDepth-1)
	}
	if h.world.Switches.Value(9) {
		t.Error("commands after the failing call ran")
	}
}

func TestNewDepthBound(t *testing.T) {
	ctx := game.NewWorld(nil).Context(newFakeData(), nil)
	if _, err := New(ctx, MaxDepth-1); err != nil {
		t.Errorf("New(depth %d) error = %v, want nil", MaxDepth-1, err)
	}
	_, err := New(ctx, MaxDepth)
	if !errors.Is(err, ErrCallStackOverflow) {
		t.Errorf("New(depth %d) error = %v, want ErrCallStackOverflow", MaxDepth, err)
	}
}

func TestFreezeGuardTripsWithinOneUpdate(t *testing.T) {
	h := newHarness(t, testSeed())
	in := h.interpreter(list(
		cmd(opcode.Label, 0, "top"),
		cmd(opcode.JumpToLabel, 0, "top"),
	))
	for frame := 0; frame < 2; frame++ {
		h.world.Update()
		if err := in.Update(); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if !in.IsRunning() {
			t.Fatal("self-jumping list stopped running")
		}
	}
}

func TestUnknownCodesAreSkipped(t *testing.T) {
	h := newHarness(t, testSeed())
	in := h.interpreter(list(
		cmd(opcode.Code(998), 0, "whatever"),
		cmd(opcode.Code(5000), 0),
		cmd(opcode.Code(-3), 0),
		cmd(opcode.ControlSwitches, 0, 1, 1, 0),
	))
	if _, err := h.run(in, 1); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !h.world.Switches.Value(1) {
		t.Error("command after unknown codes did not run")
	}
	if Handles(998) {
		t.Error("Handles(998) = true, want false")
	}
	if !Handles(opcode.ShowText) {
		t.Error("Handles(ShowText) = false, want true")
	}
}

func TestMissingLabelFallsThrough(t *testing.T) {
	h := newHarness(t, testSeed())
	in := h.interpreter(list(
		cmd(opcode.JumpToLabel, 0, "nowhere"),
		cmd(opcode.ControlSwitches, 0, 1, 1, 0),
	))
	if _, err := h.run(in, 1); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !h.world.Switches.Value(1) {
		t.Error("command after missing jump target did not run")
	}
}

func TestExitEventProcessing(t *testing.T) {
	h := newHarness(t, testSeed())
	in := h.interpreter(list(
		cmd(opcode.ExitEventProcessing, 0),
		cmd(opcode.ControlSwitches, 0, 1, 1, 0),
	))
	if _, err := h.run(in, 1); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if h.world.Switches.Value(1) {
		t.Error("command after exit ran")
	}
}

func TestBusyMessageRetriesSameCommand(t *testing.T) {
	h := newHarness(t, testSeed())
	h.world.Message.AutoAdvance = false
	h.world.Message.Add("already showing")
	in := h.interpreter(list(text(0, "next")))

	h.world.Update()
	if err := in.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if in.Index() != 0 {
		t.Fatalf("index = %d while message busy, want 0", in.Index())
	}

	h.world.Message.Advance()
	h.world.Update()
	if err := in.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if diff := cmp.Diff([]string{"next"}, h.world.Message.Lines()); diff != "" {
		t.Errorf("shown lines mismatch (-want +got):\n%s", diff)
	}
	if in.WaitMode() != WaitMessage {
		t.Errorf("wait mode = %v, want message", in.WaitMode())
	}
}

func TestChildResumesParentOnSameTick(t *testing.T) {
	h := newHarness(t, testSeed())
	h.data.add(2, list(cmd(opcode.ControlSwitches, 0, 1, 1, 0)))
	in := h.interpreter(list(
		cmd(opcode.CommonEvent, 0, 2),
		cmd(opcode.ControlSwitches, 0, 2, 2, 0),
	))
	h.world.Update()
	if err := in.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !h.world.Switches.Value(1) || !h.world.Switches.Value(2) {
		t.Errorf("switches = %v, %v; want both on after one tick", h.world.Switches.Value(1), h.world.Switches.Value(2))
	}
	if in.IsRunning() {
		t.Error("parent still running")
	}
	if in.Child() != nil {
		t.Error("finished child was not discarded")
	}
}

func TestChildWaitSuspendsParent(t *testing.T) {
	h := newHarness(t, testSeed())
	h.data.add(2, list(cmd(opcode.Wait, 0, 3)))
	in := h.interpreter(list(
		cmd(opcode.CommonEvent, 0, 2),
		cmd(opcode.ControlSwitches, 0, 1, 1, 0),
	))
	ticks, err := h.run(in, 10)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if ticks != 4 {
		t.Errorf("ticks = %d, want 4", ticks)
	}
	if !h.world.Switches.Value(1) {
		t.Error("parent did not resume")
	}
}

func TestCommentsKeptUntilTermination(t *testing.T) {
	h := newHarness(t, testSeed())
	in := h.interpreter(list(
		cmd(opcode.Comment, 0, "first"),
		cmd(opcode.CommentLine, 0, "second"),
		cmd(opcode.Wait, 0, 2),
	))
	h.world.Update()
	if err := in.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if diff := cmp.Diff([]string{"first", "second"}, in.Comments()); diff != "" {
		t.Errorf("comments mismatch (-want +got):\n%s", diff)
	}
	if _, err := h.run(in, 5); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if in.Comments() != nil {
		t.Errorf("comments = %v after termination, want nil", in.Comments())
	}
}

func TestSetupReservedCommonEvent(t *testing.T) {
	h := newHarness(t, testSeed())
	h.data.add(4, list(cmd(opcode.ControlSwitches, 0, 3, 3, 0)))
	in, err := New(h.ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if in.SetupReservedCommonEvent() {
		t.Fatal("SetupReservedCommonEvent() = true with nothing reserved")
	}
	h.world.Temp.ReserveCommonEvent(4)
	if !in.SetupReservedCommonEvent() {
		t.Fatal("SetupReservedCommonEvent() = false, want true")
	}
	if h.world.Temp.IsCommonEventReserved() {
		t.Error("reservation not cleared")
	}
	if _, err := h.run(in, 1); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !h.world.Switches.Value(3) {
		t.Error("reserved common event did not run")
	}
}

func TestSetupResetsStateButKeepsDepth(t *testing.T) {
	h := newHarness(t, testSeed())
	in, err := New(h.ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	in.Setup(list(cmd(opcode.Wait, 0, 10)), 1)
	h.world.Update()
	if err := in.Update(); err != nil {
		t.Fatal(err)
	}
	in.setBranch(0, BoolBranch(true))

	in.Setup(list(cmd(opcode.ControlSwitches, 0, 1, 1, 0)), 0)
	if in.WaitCount() != 0 || in.Index() != 0 || !in.Branch(0).IsNull() {
		t.Errorf("after Setup: wait %d, index %d, branch %v", in.WaitCount(), in.Index(), in.Branch(0))
	}
	if in.Depth() != 3 {
		t.Errorf("Depth() = %d, want 3", in.Depth())
	}
}

func TestSceneChangeEndsTick(t *testing.T) {
	h := newHarness(t, testSeed())
	in := h.interpreter(list(
		cmd(opcode.OpenMenu, 0),
		cmd(opcode.ControlVariables, 0, 1, 1, opAdd, operandConstant, 7),
	))

	h.world.Update()
	if err := in.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got := h.world.Variables.Value(1); got != 0 {
		t.Fatalf("variable 1 = %d during the scene change, want 0", got)
	}
	if in.Index() != 1 {
		t.Fatalf("index = %d, want 1", in.Index())
	}

	if _, err := h.run(in, 10); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := h.world.Variables.Value(1); got != 7 {
		t.Errorf("variable 1 = %d after the menu closed, want 7", got)
	}
	if diff := cmp.Diff([]game.SceneKind{game.SceneMenu}, h.world.Scene.Visited); diff != "" {
		t.Errorf("scenes mismatch (-want +got):\n%s", diff)
	}
}

func TestFinishedWaitContinuesOnSameTick(t *testing.T) {
	tests := []struct {
		name string
		cmds opcode.List
	}{
		{"text without lines", list(cmd(opcode.ShowText, 0, "", 0, 0, 2))},
		{"movie without a name", list(cmd(opcode.PlayMovie, 0, ""))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testSeed())
			l := append(tt.cmds, cmd(opcode.ControlVariables, 0, 1, 1, opSet, operandConstant, 7))
			in := h.interpreter(l)

			h.world.Update()
			if err := in.Update(); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if got := h.world.Variables.Value(1); got != 7 {
				t.Errorf("variable 1 = %d after one tick, want 7", got)
			}
			if in.IsRunning() {
				t.Errorf("still running at index %d", in.Index())
			}
		})
	}
}

func TestRecoveredErrorsReachHandler(t *testing.T) {
	tests := []struct {
		name  string
		cmds  opcode.List
		eval  game.Evaluator
		want  ErrorType
		code  opcode.Code
		cause bool
	}{
		{
			name: "missing label",
			cmds: list(cmd(opcode.JumpToLabel, 0, "nowhere")),
			want: ErrorLabelNotFound,
			code: opcode.JumpToLabel,
		},
		{
			name: "division by zero",
			cmds: list(cmd(opcode.ControlVariables, 0, 1, 1, opDiv, operandConstant, 0)),
			want: ErrorDivisionByZero,
			code: opcode.ControlVariables,
		},
		{
			name: "script failure",
			cmds: list(cmd(opcode.ControlVariables, 0, 1, 1, opSet, operandScript, "boom")),
			eval: evalFunc(func(string, game.Bindings) (any, error) {
				return nil, errors.New("ReferenceError: boom is not defined")
			}),
			want:  ErrorEvalFailed,
			code:  opcode.ControlVariables,
			cause: true,
		},
		{
			name: "missing common event",
			cmds: list(cmd(opcode.CommonEvent, 0, 42)),
			want: ErrorMissingReference,
			code: opcode.CommonEvent,
		},
		{
			name: "missing troop",
			cmds: list(cmd(opcode.BattleProcessing, 0, troopDirect, 9, false, false)),
			want: ErrorMissingReference,
			code: opcode.BattleProcessing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testSeed())
			h.ctx.Eval = tt.eval
			var got []*RuntimeError
			l := append(tt.cmds, cmd(opcode.ControlSwitches, 0, 1, 1, 0))
			in := h.interpreter(l, WithErrorHandler(func(e *RuntimeError) { got = append(got, e) }))
			if _, err := h.run(in, 5); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("recovered errors = %v, want one", got)
			}
			e := got[0]
			if e.Type != tt.want || e.Code != int(tt.code) || e.Index != 0 || e.IsFatal() {
				t.Errorf("error = %+v, want non-fatal %s from code %d at index 0", e, tt.want, tt.code)
			}
			if (e.Err != nil) != tt.cause {
				t.Errorf("cause = %v, want present %v", e.Err, tt.cause)
			}
			if !h.world.Switches.Value(1) {
				t.Error("list stopped after a recovered error")
			}
		})
	}
}
