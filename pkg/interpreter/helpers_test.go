package interpreter

import (
	"sort"
	"testing"

	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/opcode"
)

// cmd builds one command record.
func cmd(code opcode.Code, indent int, params ...any) opcode.Command {
	return opcode.Command{Code: code, Indent: indent, Parameters: opcode.Params(params)}
}

// text builds a ShowText command followed by its lines at indent.
func text(indent int, lines ...string) []opcode.Command {
	out := []opcode.Command{cmd(opcode.ShowText, indent, "", 0, 0, 2)}
	for _, l := range lines {
		out = append(out, cmd(opcode.TextLine, indent, l))
	}
	return out
}

// list flattens commands and command groups into a list.
func list(parts ...any) opcode.List {
	var out opcode.List
	for _, p := range parts {
		switch v := p.(type) {
		case opcode.Command:
			out = append(out, v)
		case []opcode.Command:
			out = append(out, v...)
		}
	}
	return out
}

type fakeData struct {
	events map[int]*game.CommonEvent
	actors map[int]bool
	troops map[int]bool
}

func newFakeData() *fakeData {
	return &fakeData{
		events: make(map[int]*game.CommonEvent),
		actors: make(map[int]bool),
		troops: make(map[int]bool),
	}
}

func (d *fakeData) CommonEvent(id int) *game.CommonEvent { return d.events[id] }
func (d *fakeData) HasActor(id int) bool                 { return d.actors[id] }
func (d *fakeData) HasClass(int) bool                    { return true }
func (d *fakeData) HasTroop(id int) bool                 { return d.troops[id] }

func (d *fakeData) CommonEvents() []*game.CommonEvent {
	out := make([]*game.CommonEvent, 0, len(d.events))
	for _, ce := range d.events {
		out = append(out, ce)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *fakeData) add(id int, l opcode.List) {
	d.events[id] = &game.CommonEvent{ID: id, List: l}
}

// evalFunc adapts a function to game.Evaluator.
type evalFunc func(src string, b game.Bindings) (any, error)

func (f evalFunc) Evaluate(src string, b game.Bindings) (any, error) { return f(src, b) }

type harness struct {
	t     *testing.T
	world *game.World
	data  *fakeData
	ctx   *game.Context
}

func newHarness(t *testing.T, seed *game.Seed, opts ...game.WorldOption) *harness {
	t.Helper()
	opts = append([]game.WorldOption{game.WithAutoAdvance(1)}, opts...)
	w := game.NewWorld(seed, opts...)
	d := newFakeData()
	return &harness{t: t, world: w, data: d, ctx: w.Context(d, nil)}
}

func (h *harness) interpreter(l opcode.List, opts ...Option) *Interpreter {
	h.t.Helper()
	in, err := New(h.ctx, 0, opts...)
	if err != nil {
		h.t.Fatalf("New() error = %v", err)
	}
	in.Setup(l, 0)
	return in
}

// run ticks the world and the interpreter until the interpreter stops or
// frames run out, and returns the number of ticks used. Like a map scene, the
// interpreter only runs while no other scene is on top.
func (h *harness) run(in *Interpreter, frames int) (int, error) {
	h.t.Helper()
	for i := 1; i <= frames; i++ {
		h.world.Update()
		if h.world.Scene.Current() != game.SceneMap {
			continue
		}
		if err := in.Update(); err != nil {
			return i, err
		}
		if !in.IsRunning() {
			return i, nil
		}
	}
	h.t.Fatalf("interpreter still running after %d frames (index %d)", frames, in.Index())
	return frames, nil
}

// testSeed has two actors in the party and one troop.
func testSeed() *game.Seed {
	return &game.Seed{
		Actors: map[int]*game.ActorData{
			1: {ID: 1, Name: "Harold", ClassID: 1, InitialLevel: 1, MaxLevel: 99, Params: [8]int{500, 100, 20, 20, 20, 20, 20, 20}},
			2: {ID: 2, Name: "Therese", ClassID: 1, InitialLevel: 1, MaxLevel: 99, Params: [8]int{400, 120, 15, 15, 25, 25, 20, 20}},
			3: {ID: 3, Name: "Marsha", ClassID: 1, InitialLevel: 1, MaxLevel: 99, Params: [8]int{350, 150, 10, 10, 30, 30, 20, 20}},
		},
		Enemies: map[int]*game.EnemyData{
			1: {ID: 1, Name: "Bat", Params: [8]int{200, 0, 10, 10, 10, 10, 10, 10}},
		},
		Troops: map[int]*game.TroopData{
			1: {ID: 1, Name: "Bat*2", Members: []game.TroopMember{{EnemyID: 1}, {EnemyID: 1}}},
		},
		Maps: map[int]*game.MapData{
			1: {ID: 1, Width: 10, Height: 10, Events: []*game.EventData{{ID: 1, Name: "EV001", X: 3, Y: 4}}},
			2: {ID: 2, Width: 10, Height: 10},
		},
		StartMapID: 1,
		StartX:     5,
		StartY:     5,
		Party:      []int{1, 2},
	}
}
