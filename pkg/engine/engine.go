// Package engine schedules the root interpreters of a running game once per
// host frame.
//
// Each frame the world advances first. Then, while the map scene is on top,
// the map interpreter runs (reserved common event, starting map events,
// autorun common events), followed by parallel common events and parallel
// map events. While a battle is on top only the troop interpreter runs.
package engine

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/interpreter"
	"github.com/zurustar/evrun/pkg/logger"
)

// ErrTerminated is returned when the engine is terminated.
var ErrTerminated = errors.New("engine terminated")

// Data is the project data an engine runs on.
type Data interface {
	game.Database
	// Seed builds the static world data; startMap overrides the start map
	// when positive.
	Seed(startMap int) *game.Seed
}

// Engine runs the interpreters of one world. It is not safe for concurrent
// use except for Reload and Terminate.
type Engine struct {
	world *game.World
	ctx   *game.Context
	opts  []interpreter.Option
	log   *slog.Logger

	mapInterpreter   *interpreter.Interpreter
	troopInterpreter *interpreter.Interpreter
	commonEvents     map[int]*interpreter.Interpreter
	mapEvents        map[int]*interpreter.Interpreter

	mapID       int
	battleCount int
	troopPages  []int
	starting    []int

	mu      sync.Mutex
	pending Data

	terminated atomic.Bool
	timeout    time.Duration
	startTime  time.Time
	frames     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger of the engine and its interpreters.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithInterpreterOptions adds options applied to every root interpreter.
func WithInterpreterOptions(opts ...interpreter.Option) Option {
	return func(e *Engine) {
		e.opts = append(e.opts, opts...)
	}
}

// WithTimeout terminates the engine once d has passed since the first frame.
// Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// New creates an engine over world. data answers database lookups and eval
// runs inline script; either may be nil.
func New(world *game.World, data game.Database, eval game.Evaluator, opts ...Option) (*Engine, error) {
	e := &Engine{
		world:        world,
		ctx:          world.Context(data, eval),
		log:          logger.GetLogger(),
		commonEvents: make(map[int]*interpreter.Interpreter),
		mapEvents:    make(map[int]*interpreter.Interpreter),
		mapID:        world.Map.MapID(),
		battleCount:  world.System.BattleCount(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.opts = append([]interpreter.Option{interpreter.WithLogger(e.log)}, e.opts...)

	var err error
	if e.mapInterpreter, err = e.newInterpreter(); err != nil {
		return nil, err
	}
	if e.troopInterpreter, err = e.newInterpreter(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) newInterpreter() (*interpreter.Interpreter, error) {
	return interpreter.New(e.ctx, 0, e.opts...)
}

// World returns the world the engine drives.
func (e *Engine) World() *game.World { return e.world }

// Context returns the collaborator handle shared by the interpreters.
func (e *Engine) Context() *game.Context { return e.ctx }

// MapInterpreter returns the interpreter running map and autorun events.
func (e *Engine) MapInterpreter() *interpreter.Interpreter { return e.mapInterpreter }

// Frames returns the number of frames Update has run.
func (e *Engine) Frames() int { return e.frames }

// Terminate stops the engine; the next Update returns ErrTerminated.
func (e *Engine) Terminate() {
	if !e.terminated.Swap(true) {
		e.log.Info("engine termination requested")
	}
}

// IsTerminated reports whether the engine has been terminated.
func (e *Engine) IsTerminated() bool {
	return e.terminated.Load()
}

// CheckTermination reports whether the engine should stop, terminating it
// when the timeout has passed.
func (e *Engine) CheckTermination() bool {
	if e.terminated.Load() {
		return true
	}
	if e.timeout > 0 && !e.startTime.IsZero() {
		if elapsed := time.Since(e.startTime); elapsed >= e.timeout {
			e.log.Info("timeout exceeded", "elapsed", elapsed)
			e.Terminate()
			return true
		}
	}
	return false
}

// StartEvent makes map event id start on the map interpreter, as if the
// player pressed the action button in front of it. It reports false when the
// event is missing or has no active page.
func (e *Engine) StartEvent(id int) bool {
	ev := e.world.Map.EventState(id)
	if ev == nil || e.activePage(ev) == nil {
		return false
	}
	e.starting = append(e.starting, id)
	return true
}

// StartCommonEvent reserves common event id for the map interpreter.
func (e *Engine) StartCommonEvent(id int) bool {
	if e.ctx.Data == nil || e.ctx.Data.CommonEvent(id) == nil {
		return false
	}
	e.world.Temp.ReserveCommonEvent(id)
	return true
}

// Reload replaces the project data before the next frame. Running
// interpreters keep their lists.
func (e *Engine) Reload(data Data) {
	e.mu.Lock()
	e.pending = data
	e.mu.Unlock()
}

func (e *Engine) applyReload() {
	e.mu.Lock()
	data := e.pending
	e.pending = nil
	e.mu.Unlock()
	if data == nil {
		return
	}
	e.ctx.Data = data
	e.world.SetSeed(data.Seed(0))
	e.log.Info("project data reloaded")
}

// Update advances the world and every root interpreter by one frame.
// It returns ErrTerminated once the engine stopped or the session ended, and
// any fatal interpreter error.
func (e *Engine) Update() error {
	if e.startTime.IsZero() {
		e.startTime = time.Now()
	}
	if e.CheckTermination() {
		return ErrTerminated
	}
	e.applyReload()

	e.frames++
	e.world.Update()
	if e.world.Ended() {
		e.log.Info("session ended", "frame", e.frames)
		e.Terminate()
		return ErrTerminated
	}

	if id := e.world.Map.MapID(); id != e.mapID {
		e.mapID = id
		clear(e.mapEvents)
	}
	if n := e.world.System.BattleCount(); n != e.battleCount {
		e.battleCount = n
		e.setupTroopPages()
	}

	switch e.world.Scene.Current() {
	case game.SceneMap:
	case game.SceneBattle:
		return e.updateTroop()
	default:
		return nil
	}

	if err := e.updateMapInterpreter(); err != nil {
		return err
	}
	if err := e.updateParallelCommonEvents(); err != nil {
		return err
	}
	return e.updateParallelMapEvents()
}

// updateMapInterpreter runs the map interpreter and starts the next waiting
// event each time it finishes within the frame. Autorun events and autorun
// common events start at most once per frame.
func (e *Engine) updateMapInterpreter() error {
	started := make(map[int]bool)
	for {
		if err := e.mapInterpreter.Update(); err != nil {
			return err
		}
		if e.mapInterpreter.IsRunning() {
			return nil
		}
		if !e.setupStartingEvent(started) {
			return nil
		}
	}
}

// setupStartingEvent loads the next event into the map interpreter. Keys of
// started are event ids, negated for common events.
func (e *Engine) setupStartingEvent(started map[int]bool) bool {
	in := e.mapInterpreter
	if in.SetupReservedCommonEvent() {
		return true
	}
	for len(e.starting) > 0 {
		id := e.starting[0]
		e.starting = e.starting[1:]
		ev := e.world.Map.EventState(id)
		if ev == nil {
			continue
		}
		if page := e.activePage(ev); page != nil {
			in.Setup(page.List, id)
			return true
		}
	}
	for _, ev := range e.world.Map.Events() {
		page := e.activePage(ev)
		if page == nil || page.Trigger != game.PageAutorun || started[ev.ID()] {
			continue
		}
		started[ev.ID()] = true
		in.Setup(page.List, ev.ID())
		return true
	}
	if e.ctx.Data == nil {
		return false
	}
	for _, ce := range e.ctx.Data.CommonEvents() {
		if ce.Trigger != game.TriggerAutorun || !e.world.Switches.Value(ce.SwitchID) || started[-ce.ID] {
			continue
		}
		started[-ce.ID] = true
		in.Setup(ce.List, 0)
		return true
	}
	return false
}

// updateParallelCommonEvents runs one interpreter per parallel common event
// whose switch is on, restarting it when its list ends. Turning the switch
// off drops the interpreter.
func (e *Engine) updateParallelCommonEvents() error {
	active := make(map[int]bool)
	if e.ctx.Data != nil {
		for _, ce := range e.ctx.Data.CommonEvents() {
			if ce.Trigger != game.TriggerParallel || !e.world.Switches.Value(ce.SwitchID) {
				continue
			}
			active[ce.ID] = true
			in, err := e.parallel(e.commonEvents, ce.ID)
			if err != nil {
				return err
			}
			if !in.IsRunning() {
				in.Setup(ce.List, 0)
			}
			if err := in.Update(); err != nil {
				return err
			}
		}
	}
	for id := range e.commonEvents {
		if !active[id] {
			delete(e.commonEvents, id)
		}
	}
	return nil
}

// updateParallelMapEvents runs one interpreter per map event whose active
// page has the parallel trigger.
func (e *Engine) updateParallelMapEvents() error {
	active := make(map[int]bool)
	for _, ev := range e.world.Map.Events() {
		page := e.activePage(ev)
		if page == nil || page.Trigger != game.PageParallel {
			continue
		}
		active[ev.ID()] = true
		in, err := e.parallel(e.mapEvents, ev.ID())
		if err != nil {
			return err
		}
		if !in.IsRunning() {
			in.Setup(page.List, ev.ID())
		}
		if err := in.Update(); err != nil {
			return err
		}
		if e.world.Map.MapID() != e.mapID {
			// A transfer inside a parallel event replaces the events.
			break
		}
	}
	for id := range e.mapEvents {
		if !active[id] {
			delete(e.mapEvents, id)
		}
	}
	return nil
}

func (e *Engine) parallel(set map[int]*interpreter.Interpreter, id int) (*interpreter.Interpreter, error) {
	if in := set[id]; in != nil {
		return in, nil
	}
	in, err := e.newInterpreter()
	if err != nil {
		return nil, err
	}
	set[id] = in
	return in, nil
}

// setupTroopPages queues the once-per-battle pages of the battle that just
// started and holds the battle open until they have run.
func (e *Engine) setupTroopPages() {
	e.troopInterpreter.Terminate()
	e.troopPages = e.troopPages[:0]
	troop := e.world.Battle.Troop()
	if troop == nil {
		return
	}
	for i, page := range troop.Pages {
		if page.Span == 0 {
			e.troopPages = append(e.troopPages, i)
		}
	}
	if len(e.troopPages) > 0 {
		e.world.Battle.Hold(true)
		e.log.Debug("troop pages queued", "troop", troop.ID, "pages", len(e.troopPages))
	}
}

// updateTroop runs the troop interpreter and releases the battle once no
// page is left.
func (e *Engine) updateTroop() error {
	in := e.troopInterpreter
	for {
		if err := in.Update(); err != nil {
			return err
		}
		if in.IsRunning() {
			return nil
		}
		if !e.setupNextTroopPage() {
			e.world.Battle.Hold(false)
			return nil
		}
	}
}

func (e *Engine) setupNextTroopPage() bool {
	troop := e.world.Battle.Troop()
	if troop == nil {
		e.troopPages = e.troopPages[:0]
		return false
	}
	for len(e.troopPages) > 0 {
		i := e.troopPages[0]
		e.troopPages = e.troopPages[1:]
		if i < len(troop.Pages) && e.troopPageMet(&troop.Pages[i].Conditions) {
			e.troopInterpreter.Setup(troop.Pages[i].List, 0)
			return true
		}
	}
	return false
}
