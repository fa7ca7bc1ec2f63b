package game

import (
	"log/slog"

	"github.com/zurustar/evrun/pkg/logger"
)

// World is a headless game world. Every collaborator an interpreter needs is
// backed by deterministic in-memory state that advances once per Update.
type World struct {
	Switches     *SwitchTable
	Variables    *VariableTable
	SelfSwitches *SelfSwitchTable
	Timer        *CountdownTimer
	Temp         *TempState
	Actors       *ActorTable
	Party        *PartyState
	Troop        *TroopState
	Map          *MapState
	Player       *PlayerState
	Message      *MessageBox
	Screen       *ScreenState
	Audio        Audio
	System       *SystemState
	Battle       *BattleManager
	Scene        *SceneStack
	Input        *InputState
	Video        *VideoPlayer
	Images       *ImageLoader
	Plugins      *PluginRegistry

	// EncounterTroopID is the troop a random-encounter battle fights.
	EncounterTroopID int

	seed  *Seed
	frame int
	log   *slog.Logger
}

// WorldOption configures a World.
type WorldOption func(*World)

// WithWorldLogger sets the logger.
func WithWorldLogger(log *slog.Logger) WorldOption {
	return func(w *World) { w.log = log }
}

// WithAudio replaces the headless audio log.
func WithAudio(a Audio) WorldOption {
	return func(w *World) { w.Audio = a }
}

// WithAutoAdvance makes the message box close itself after frames frames.
func WithAutoAdvance(frames int) WorldOption {
	return func(w *World) {
		w.Message.AutoAdvance = true
		w.Message.AdvanceFrames = max(frames, 1)
	}
}

// WithChoicePolicy sets how an unattended message box answers choices.
func WithChoicePolicy(p ChoicePolicy) WorldOption {
	return func(w *World) { w.Message.Policy = p }
}

// WithBattleResult sets how an unattended battle ends.
func WithBattleResult(f BattleResultFunc) WorldOption {
	return func(w *World) { w.Battle.Policy = f }
}

// WithSceneFrames sets how long pushed scenes stay open.
func WithSceneFrames(frames int) WorldOption {
	return func(w *World) { w.Scene.Frames = max(frames, 1) }
}

// NewWorld creates a world from seed with the party assembled and the
// player placed on the start map.
func NewWorld(seed *Seed, opts ...WorldOption) *World {
	if seed == nil {
		seed = &Seed{}
	}
	w := &World{
		Switches:     NewSwitchTable(),
		Variables:    NewVariableTable(),
		SelfSwitches: NewSelfSwitchTable(),
		Timer:        &CountdownTimer{},
		Temp:         &TempState{},
		Troop:        &TroopState{},
		Screen:       newScreenState(),
		Audio:        &AudioLog{},
		Input:        NewInputState(),
		Video:        &VideoPlayer{Frames: 60},
		Images:       &ImageLoader{Latency: 1},
		seed:         seed,
		log:          logger.GetLogger(),
	}
	w.Message = NewMessageBox(w.Variables)
	w.Battle = newBattleManager(w)
	w.Scene = newSceneStack(w)
	for _, opt := range opts {
		opt(w)
	}
	// Components created before the options ran keep the default logger.
	w.Battle.log = w.log
	w.Scene.log = w.log
	w.Plugins = NewPluginRegistry(w.log)
	w.System = newSystemState(w.Audio, w)
	w.Actors = newActorTable(seed)
	w.Party = newPartyState(w.Actors, seed.Party)
	w.Map = newMapState(w)
	w.Player = &PlayerState{
		charState:        charState{m: w.Map, direction: DirDown},
		world:            w,
		vehicleType:      vehicleNone,
		followersVisible: true,
	}
	if seed.StartMapID > 0 {
		w.setupMap(seed.StartMapID)
		w.Player.Locate(seed.StartX, seed.StartY)
	}
	return w
}

// Context bundles the world's collaborators with data and eval.
func (w *World) Context(data Database, eval Evaluator) *Context {
	return &Context{
		Switches:     w.Switches,
		Variables:    w.Variables,
		SelfSwitches: w.SelfSwitches,
		Timer:        w.Timer,
		Party:        w.Party,
		Actors:       w.Actors,
		Troop:        w.Troop,
		Map:          w.Map,
		Player:       w.Player,
		Message:      w.Message,
		Screen:       w.Screen,
		Audio:        w.Audio,
		System:       w.System,
		Battle:       w.Battle,
		Scene:        w.Scene,
		Input:        w.Input,
		Video:        w.Video,
		Images:       w.Images,
		Frames:       w,
		Plugins:      w.Plugins,
		Temp:         w.Temp,
		Data:         data,
		Eval:         eval,
	}
}

// FrameCount returns the number of frames the world has advanced.
func (w *World) FrameCount() int { return w.frame }

// Seed returns the static data the world reads.
func (w *World) Seed() *Seed { return w.seed }

// SetSeed swaps the static data. The current map keeps its events until the
// next transfer.
func (w *World) SetSeed(seed *Seed) {
	if seed != nil {
		w.seed = seed
	}
}

// Ended reports whether the session reached a gameover or title scene.
func (w *World) Ended() bool { return w.Scene.Ended() }

// setupMap loads map id. An unknown id yields an empty map.
func (w *World) setupMap(id int) {
	data := w.seed.Maps[id]
	if data == nil {
		w.log.Warn("map not found", "map", id)
	}
	w.Map.setup(id, data)
	w.log.Debug("map loaded", "map", id)
}

// Update advances the world by one frame.
func (w *World) Update() {
	w.frame++
	w.Scene.update()
	w.Timer.update()
	w.Input.update()
	w.Message.update()
	w.Map.update()
	w.Player.update()
	w.Player.performTransfer()
	w.Video.update()
	w.Images.update()
	w.Screen.update()
}
