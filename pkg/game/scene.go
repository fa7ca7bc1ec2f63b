package game

import "log/slog"

type sceneEntry struct {
	kind    SceneKind
	request any
	rest    int
}

// SceneStack is the in-memory Scene. A push or goto is applied on the next
// world frame; until then IsChanging reports true. Pushed scenes close by
// themselves after Frames frames. Gameover and title end the session.
type SceneStack struct {
	w *World

	Frames int

	stack   []*sceneEntry
	pending *sceneEntry
	replace bool
	ended   bool

	// Visited lists every scene that was opened, in order.
	Visited []SceneKind
	// Requests lists the shop and name requests in the order they were opened.
	Requests []any

	log *slog.Logger
}

func newSceneStack(w *World) *SceneStack {
	return &SceneStack{w: w, Frames: 1, log: w.log}
}

func (s *SceneStack) IsChanging() bool { return s.pending != nil }

func (s *SceneStack) Push(kind SceneKind, request any) {
	s.pending = &sceneEntry{kind: kind, request: request}
	s.replace = false
}

func (s *SceneStack) Goto(kind SceneKind) {
	s.pending = &sceneEntry{kind: kind}
	s.replace = true
}

// Current returns the scene on top; the map when the stack is empty.
func (s *SceneStack) Current() SceneKind {
	if len(s.stack) == 0 {
		return SceneMap
	}
	return s.stack[len(s.stack)-1].kind
}

// Ended reports whether a gameover or title scene was reached.
func (s *SceneStack) Ended() bool { return s.ended }

func (s *SceneStack) update() {
	if s.pending != nil {
		s.open(s.pending)
		return
	}
	if len(s.stack) == 0 || s.ended {
		return
	}
	top := s.stack[len(s.stack)-1]
	if top.rest > 0 {
		top.rest--
	}
	if top.kind == SceneBattle {
		if s.w.Battle.resolve(top.rest == 0) {
			s.pop(top)
		}
		return
	}
	if top.rest == 0 {
		s.close(top)
	}
}

func (s *SceneStack) open(e *sceneEntry) {
	s.pending = nil
	e.rest = s.Frames
	if s.replace {
		s.stack = s.stack[:0]
	}
	if e.kind != SceneMap {
		s.stack = append(s.stack, e)
	}
	s.Visited = append(s.Visited, e.kind)
	s.log.Debug("scene opened", "scene", e.kind.String(), "goto", s.replace)
	switch e.kind {
	case SceneBattle:
		s.w.Battle.start()
	case SceneShop, SceneName:
		s.Requests = append(s.Requests, e.request)
	case SceneGameover, SceneTitle:
		s.ended = true
	}
}

func (s *SceneStack) close(e *sceneEntry) {
	if e.kind == SceneSave {
		s.w.System.saveCount++
	}
	s.pop(e)
}

func (s *SceneStack) pop(e *sceneEntry) {
	if n := len(s.stack); n > 0 && s.stack[n-1] == e {
		s.stack = s.stack[:n-1]
	}
	s.log.Debug("scene closed", "scene", e.kind.String())
}
