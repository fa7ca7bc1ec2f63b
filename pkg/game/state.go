package game

import (
	"log/slog"
	"sort"
	"sync"
)

// SwitchTable is an in-memory Switches.
type SwitchTable struct {
	values map[int]bool
}

// NewSwitchTable creates an empty table; every switch starts OFF.
func NewSwitchTable() *SwitchTable {
	return &SwitchTable{values: make(map[int]bool)}
}

func (t *SwitchTable) Value(id int) bool { return t.values[id] }

func (t *SwitchTable) SetValue(id int, value bool) {
	if id <= 0 {
		return
	}
	t.values[id] = value
}

// VariableTable is an in-memory Variables.
type VariableTable struct {
	values map[int]int
}

// NewVariableTable creates an empty table; every variable starts at 0.
func NewVariableTable() *VariableTable {
	return &VariableTable{values: make(map[int]int)}
}

func (t *VariableTable) Value(id int) int { return t.values[id] }

func (t *VariableTable) SetValue(id int, value int) {
	if id <= 0 {
		return
	}
	t.values[id] = value
}

// Snapshot returns the non-zero variables.
func (t *VariableTable) Snapshot() map[int]int {
	out := make(map[int]int, len(t.values))
	for k, v := range t.values {
		if v != 0 {
			out[k] = v
		}
	}
	return out
}

// SelfSwitchTable is an in-memory SelfSwitches.
type SelfSwitchTable struct {
	values map[SelfSwitchKey]bool
}

// NewSelfSwitchTable creates an empty table.
func NewSelfSwitchTable() *SelfSwitchTable {
	return &SelfSwitchTable{values: make(map[SelfSwitchKey]bool)}
}

func (t *SelfSwitchTable) Value(key SelfSwitchKey) bool { return t.values[key] }

func (t *SelfSwitchTable) SetValue(key SelfSwitchKey, value bool) {
	if value {
		t.values[key] = true
		return
	}
	delete(t.values, key)
}

// CountdownTimer is a frame-driven Timer.
type CountdownTimer struct {
	frames  int
	working bool
}

func (t *CountdownTimer) Start(frames int) {
	t.frames = frames
	t.working = true
}

func (t *CountdownTimer) Stop()           { t.working = false }
func (t *CountdownTimer) IsWorking() bool { return t.working }
func (t *CountdownTimer) Frames() int     { return t.frames }
func (t *CountdownTimer) Seconds() int    { return t.frames / 60 }

func (t *CountdownTimer) update() {
	if t.working && t.frames > 0 {
		t.frames--
	}
}

// TempState holds the reserved common event.
type TempState struct {
	reserved int
}

func (t *TempState) ReserveCommonEvent(id int)   { t.reserved = id }
func (t *TempState) IsCommonEventReserved() bool { return t.reserved > 0 }
func (t *TempState) ReservedCommonEventID() int  { return t.reserved }
func (t *TempState) ClearCommonEvent()           { t.reserved = 0 }

// Key repeat timing in frames.
const (
	KeyRepeatWait     = 24
	KeyRepeatInterval = 6
)

// InputState is a settable Input. It is safe for concurrent use so a window
// host can feed it from its own goroutine. A key counts as triggered during
// the frame it went down and repeats after KeyRepeatWait frames.
type InputState struct {
	mu   sync.RWMutex
	held map[string]*heldKey
}

type heldKey struct {
	frames int
	seen   bool
}

// NewInputState creates an InputState with nothing pressed.
func NewInputState() *InputState {
	return &InputState{held: make(map[string]*heldKey)}
}

func (s *InputState) IsPressed(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.held[key] != nil
}

func (s *InputState) IsTriggered(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k := s.held[key]
	return k != nil && k.frames == 0
}

func (s *InputState) IsRepeated(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k := s.held[key]
	if k == nil {
		return false
	}
	return k.frames == 0 || (k.frames >= KeyRepeatWait && k.frames%KeyRepeatInterval == 0)
}

// Set records the state of key. Setting a held key again keeps its timing.
func (s *InputState) Set(key string, pressed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !pressed:
		delete(s.held, key)
	case s.held[key] == nil:
		s.held[key] = &heldKey{}
	}
}

// update ages keys that were already down before this frame.
func (s *InputState) update() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.held {
		if k.seen {
			k.frames++
		}
		k.seen = true
	}
}

// VideoPlayer pretends to play a movie for a fixed number of frames.
type VideoPlayer struct {
	Frames int
	rest   int
	Played []string
}

func (v *VideoPlayer) Play(name string) {
	v.Played = append(v.Played, name)
	v.rest = v.Frames
}

func (v *VideoPlayer) IsPlaying() bool { return v.rest > 0 }

func (v *VideoPlayer) update() {
	if v.rest > 0 {
		v.rest--
	}
}

// ImageLoader loads a tileset a fixed number of frames after it is first
// requested. Loaded tilesets stay cached.
type ImageLoader struct {
	Latency int
	pending int
	loading int
	loaded  map[int]bool
}

func (l *ImageLoader) RequestTileset(id int) {
	if l.loaded[id] || l.pending > 0 {
		return
	}
	if l.Latency <= 0 {
		l.markLoaded(id)
		return
	}
	l.loading = id
	l.pending = l.Latency
}

func (l *ImageLoader) IsReady() bool { return l.pending == 0 }

func (l *ImageLoader) markLoaded(id int) {
	if l.loaded == nil {
		l.loaded = make(map[int]bool)
	}
	l.loaded[id] = true
}

func (l *ImageLoader) update() {
	if l.pending > 0 {
		l.pending--
		if l.pending == 0 {
			l.markLoaded(l.loading)
		}
	}
}

// PluginFunc handles one plugin command.
type PluginFunc func(args []string)

// PluginRegistry dispatches plugin commands by name.
type PluginRegistry struct {
	handlers map[string]PluginFunc
	log      *slog.Logger
}

// NewPluginRegistry creates an empty registry.
func NewPluginRegistry(log *slog.Logger) *PluginRegistry {
	return &PluginRegistry{handlers: make(map[string]PluginFunc), log: log}
}

// Register installs fn for name.
func (r *PluginRegistry) Register(name string, fn PluginFunc) {
	r.handlers[name] = fn
}

// Names returns the registered command names in order.
func (r *PluginRegistry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *PluginRegistry) Command(name string, args []string) {
	fn, ok := r.handlers[name]
	if !ok {
		r.log.Debug("unhandled plugin command", "name", name, "args", args)
		return
	}
	fn(args)
}
