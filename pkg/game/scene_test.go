package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenePushOpensOnNextFrame(t *testing.T) {
	w := NewWorld(testSeed(), WithSceneFrames(2))
	w.Scene.Push(SceneShop, ShopRequest{PurchaseOnly: true})

	assert.True(t, w.Scene.IsChanging())
	assert.Equal(t, SceneMap, w.Scene.Current())

	w.Update()
	assert.False(t, w.Scene.IsChanging())
	assert.Equal(t, SceneShop, w.Scene.Current())
	require.Len(t, w.Scene.Requests, 1)
	assert.Equal(t, ShopRequest{PurchaseOnly: true}, w.Scene.Requests[0])

	w.Update()
	assert.Equal(t, SceneShop, w.Scene.Current())
	w.Update()
	assert.Equal(t, SceneMap, w.Scene.Current())
}

func TestSaveSceneCountsSaves(t *testing.T) {
	w := NewWorld(testSeed())
	w.Scene.Push(SceneSave, nil)
	w.Update()
	w.Update()

	assert.Equal(t, 1, w.System.SaveCount())
	assert.Equal(t, []SceneKind{SceneSave}, w.Scene.Visited)
}

func TestGotoTerminalScenesEndSession(t *testing.T) {
	for _, kind := range []SceneKind{SceneGameover, SceneTitle} {
		t.Run(kind.String(), func(t *testing.T) {
			w := NewWorld(testSeed())
			w.Scene.Push(SceneMenu, nil)
			w.Update()
			w.Scene.Goto(kind)
			w.Update()

			assert.True(t, w.Ended())
			assert.Equal(t, kind, w.Scene.Current())
			assert.Len(t, w.Scene.stack, 1, "goto replaces the stack")
		})
	}
}

func TestSceneKindString(t *testing.T) {
	assert.Equal(t, "battle", SceneBattle.String())
	assert.Equal(t, "unknown", SceneKind(42).String())
}

// startBattle pushes a battle against troop 1 and opens it.
func startBattle(t *testing.T, w *World, canEscape, canLose bool) *[]int {
	t.Helper()
	var results []int
	w.Battle.Setup(1, canEscape, canLose)
	w.Battle.SetEventCallback(func(r int) { results = append(results, r) })
	w.Scene.Push(SceneBattle, nil)
	w.Update()
	require.Equal(t, SceneBattle, w.Scene.Current())
	require.True(t, w.Party.InBattle())
	return &results
}

func TestBattleResolvesWithPolicy(t *testing.T) {
	lose := func(*TroopState, *PartyState, bool, bool) int { return BattleLose }
	escape := func(*TroopState, *PartyState, bool, bool) int { return BattleEscape }
	tests := []struct {
		name      string
		policy    BattleResultFunc
		canEscape bool
		canLose   bool
		want      int
		gameover  bool
	}{
		{"default wins", nil, false, false, BattleWin, false},
		{"escape", escape, true, false, BattleEscape, false},
		{"escape disallowed", escape, false, false, BattleWin, false},
		{"lose allowed", lose, false, true, BattleLose, false},
		{"lose ends game", lose, false, false, BattleLose, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []WorldOption
			if tt.policy != nil {
				opts = append(opts, WithBattleResult(tt.policy))
			}
			w := NewWorld(testSeed(), opts...)
			results := startBattle(t, w, tt.canEscape, tt.canLose)

			w.Update()
			assert.Equal(t, []int{tt.want}, *results)
			assert.False(t, w.Party.InBattle())
			assert.Empty(t, w.Troop.Members())
			assert.Equal(t, 1, w.System.BattleCount())

			w.Update()
			assert.Equal(t, tt.gameover, w.Ended())
		})
	}
}

func TestDefaultBattleResultLosesWithDeadParty(t *testing.T) {
	w := NewWorld(testSeed())
	for _, a := range w.Party.Members() {
		a.AddState(DeathState)
	}
	assert.Equal(t, BattleLose, DefaultBattleResult(w.Troop, w.Party, false, false))
}

func TestBattleHoldAndAbort(t *testing.T) {
	w := NewWorld(testSeed())
	results := startBattle(t, w, false, false)
	w.Battle.Hold(true)

	for i := 0; i < 5; i++ {
		w.Update()
	}
	assert.Empty(t, *results, "a held battle stays open")
	assert.Equal(t, SceneBattle, w.Scene.Current())

	w.Battle.Abort()
	w.Update()
	assert.Equal(t, []int{BattleEscape}, *results)
	assert.Equal(t, 1, w.System.EscapeCount())
	assert.Equal(t, SceneMap, w.Scene.Current())
}

func TestBattleRunsForcedActionsFirst(t *testing.T) {
	w := NewWorld(testSeed())
	results := startBattle(t, w, false, false)
	enemies := w.Troop.Members()
	require.Len(t, enemies, 2)

	for i, e := range enemies {
		e.ForceAction(10+i, -1)
		w.Battle.ForceAction(e)
	}
	require.True(t, w.Battle.IsActionForced())

	w.Update()
	w.Update()
	assert.Empty(t, *results, "forced actions run before the battle ends")
	assert.False(t, w.Battle.IsActionForced())
	require.Len(t, w.Battle.Actions, 2)
	assert.Equal(t, 10, w.Battle.Actions[0].SkillID)
	assert.Equal(t, 11, w.Battle.Actions[1].SkillID)

	w.Update()
	assert.Equal(t, []int{BattleWin}, *results)
}

func TestTroopUniqueNames(t *testing.T) {
	w := NewWorld(testSeed())
	w.Battle.Setup(1, false, false)
	w.Troop.MakeUniqueNames()

	enemies := w.Troop.members
	require.Len(t, enemies, 2)
	assert.Equal(t, "BatA", enemies[0].Name())
	assert.Equal(t, "BatB", enemies[1].Name())
}
