package game

import "sort"

// Vehicle types.
const (
	VehicleBoat = iota
	VehicleShip
	VehicleAirship
)

// MapState is the in-memory Map.
type MapState struct {
	world *World

	id        int
	data      *MapData
	tilesetID int
	events    map[int]*EventState
	order     []int
	vehicles  [3]*VehicleState

	displayX, displayY  int
	scrollDirection     int
	scrollRestFrames    int
	scrollFramesPerTile int
	scrollTiles         int

	nameDisplay bool
	Battleback1 string
	Battleback2 string
	Parallax    string
}

func newMapState(w *World) *MapState {
	m := &MapState{world: w, events: make(map[int]*EventState), nameDisplay: true}
	for i := range m.vehicles {
		m.vehicles[i] = &VehicleState{charState: charState{m: m, direction: DirLeft}}
	}
	return m
}

// setup loads map id from the seed, replacing all events.
func (m *MapState) setup(id int, data *MapData) {
	m.id = id
	m.data = data
	m.events = make(map[int]*EventState)
	m.order = m.order[:0]
	m.displayX, m.displayY = 0, 0
	m.scrollRestFrames = 0
	m.tilesetID = 0
	if data == nil {
		return
	}
	m.tilesetID = data.TilesetID
	for _, ev := range data.Events {
		if ev == nil {
			continue
		}
		m.events[ev.ID] = &EventState{
			charState: charState{m: m, x: ev.X, y: ev.Y, direction: DirDown},
			data:      ev,
		}
		m.order = append(m.order, ev.ID)
	}
	sort.Ints(m.order)
}

func (m *MapState) MapID() int { return m.id }

// Event returns the event with id, or nil when missing or erased.
func (m *MapState) Event(id int) Character {
	if e := m.EventState(id); e != nil {
		return e
	}
	return nil
}

// EventState returns the concrete event, or nil when missing or erased.
func (m *MapState) EventState(id int) *EventState {
	e, ok := m.events[id]
	if !ok || e.erased {
		return nil
	}
	return e
}

// Events returns the live events in id order.
func (m *MapState) Events() []*EventState {
	out := make([]*EventState, 0, len(m.order))
	for _, id := range m.order {
		if e := m.EventState(id); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (m *MapState) EraseEvent(id int) {
	if e, ok := m.events[id]; ok {
		e.erased = true
	}
}

func (m *MapState) Vehicle(vehicleType int) Vehicle {
	if vehicleType < 0 || vehicleType >= len(m.vehicles) {
		return nil
	}
	return m.vehicles[vehicleType]
}

func (m *MapState) IsScrolling() bool { return m.scrollRestFrames > 0 }

// StartScroll scrolls distance tiles; speed 1..6 doubles the rate per step.
func (m *MapState) StartScroll(direction, distance, speed int) {
	speed = clamp(speed, 1, 6)
	m.scrollDirection = direction
	m.scrollFramesPerTile = 256 >> speed
	m.scrollTiles = distance
	m.scrollRestFrames = distance * m.scrollFramesPerTile
}

func (m *MapState) updateScroll() {
	if m.scrollRestFrames == 0 {
		return
	}
	m.scrollRestFrames--
	if m.scrollRestFrames%m.scrollFramesPerTile != 0 {
		return
	}
	switch m.scrollDirection {
	case DirDown:
		m.displayY++
	case DirLeft:
		m.displayX--
	case DirRight:
		m.displayX++
	case DirUp:
		m.displayY--
	}
}

func (m *MapState) ChangeTileset(tilesetID int) { m.tilesetID = tilesetID }

// TilesetID returns the active tileset.
func (m *MapState) TilesetID() int { return m.tilesetID }

func (m *MapState) ChangeBattleback(name1, name2 string) {
	m.Battleback1, m.Battleback2 = name1, name2
}

func (m *MapState) ChangeParallax(name string, _, _ bool, _, _ int) { m.Parallax = name }

func (m *MapState) EnableNameDisplay()  { m.nameDisplay = true }
func (m *MapState) DisableNameDisplay() { m.nameDisplay = false }

// NameDisplay reports whether the map name is shown on entry.
func (m *MapState) NameDisplay() bool { return m.nameDisplay }

func (m *MapState) RefreshIfNeeded() {}

// tile reads layer z of the map data at (x, y); layers 0-3 are tiles,
// 4 shadows and 5 regions.
func (m *MapState) tile(x, y, z int) int {
	d := m.data
	if d == nil || x < 0 || y < 0 || x >= d.Width || y >= d.Height {
		return 0
	}
	i := (z*d.Height+y)*d.Width + x
	if i >= len(d.Data) {
		return 0
	}
	return d.Data[i]
}

func (m *MapState) TileID(x, y, layer int) int { return m.tile(x, y, layer) }
func (m *MapState) RegionID(x, y int) int      { return m.tile(x, y, 5) }

// TerrainTag returns the highest terrain tag among the tiles at (x, y).
func (m *MapState) TerrainTag(x, y int) int {
	ts := m.world.seed.Tilesets[m.tilesetID]
	if ts == nil {
		return 0
	}
	for z := 3; z >= 0; z-- {
		id := m.tile(x, y, z)
		if id < len(ts.Flags) {
			if tag := ts.Flags[id] >> 12; tag > 0 {
				return tag
			}
		}
	}
	return 0
}

func (m *MapState) EventIDXY(x, y int) int {
	for _, e := range m.Events() {
		if e.x == x && e.y == y {
			return e.ID()
		}
	}
	return 0
}

func (m *MapState) update() {
	m.updateScroll()
	for _, e := range m.events {
		e.update()
	}
	for _, v := range m.vehicles {
		v.update()
	}
}
