package game

import "github.com/zurustar/evrun/pkg/opcode"

// Directions.
const (
	DirDown  = 2
	DirLeft  = 4
	DirRight = 6
	DirUp    = 8
)

// Tile size in pixels.
const TileSize = 48

// Frame lengths of timed character effects.
const (
	FramesPerStep   = 16
	AnimationFrames = 30
	BalloonFrames   = 64
	GatherFrames    = 16
)

// Move route command codes understood by the headless world.
const (
	routeEnd       = 0
	routeMoveDown  = 1
	routeMoveLeft  = 2
	routeMoveRight = 3
	routeMoveUp    = 4
	routeForward   = 12
	routeBackward  = 13
	routeJump      = 14
	routeWait      = 15
	routeTurnDown  = 16
	routeTurnLeft  = 17
	routeTurnRight = 18
	routeTurnUp    = 19
)

// charState is what every map character has.
type charState struct {
	m         *MapState
	x, y      int
	direction int

	route      *opcode.MoveRoute
	routeIndex int
	routeWait  int

	animationRest int
	balloonRest   int

	Animations []int
	Balloons   []int
}

func (c *charState) X() int             { return c.x }
func (c *charState) Y() int             { return c.y }
func (c *charState) Direction() int     { return c.direction }
func (c *charState) Locate(x, y int)    { c.x, c.y = x, y }
func (c *charState) SetDirection(d int) { c.direction = d }

func (c *charState) ScreenX() int {
	dx := 0
	if c.m != nil {
		dx = c.m.displayX
	}
	return (c.x-dx)*TileSize + TileSize/2
}

func (c *charState) ScreenY() int {
	dy := 0
	if c.m != nil {
		dy = c.m.displayY
	}
	return (c.y-dy)*TileSize + TileSize
}

func (c *charState) Swap(other Character) {
	ox, oy := other.X(), other.Y()
	other.Locate(c.x, c.y)
	c.Locate(ox, oy)
}

func (c *charState) ForceMoveRoute(route opcode.MoveRoute) {
	r := route
	c.route = &r
	c.routeIndex = 0
	c.routeWait = 0
}

func (c *charState) IsMoveRouteForcing() bool { return c.route != nil }

func (c *charState) RequestAnimation(animationID int) {
	c.Animations = append(c.Animations, animationID)
	c.animationRest = AnimationFrames
}

func (c *charState) IsAnimationPlaying() bool { return c.animationRest > 0 }

func (c *charState) RequestBalloon(balloonID int) {
	c.Balloons = append(c.Balloons, balloonID)
	c.balloonRest = BalloonFrames
}

func (c *charState) IsBalloonPlaying() bool { return c.balloonRest > 0 }

func (c *charState) update() {
	if c.animationRest > 0 {
		c.animationRest--
	}
	if c.balloonRest > 0 {
		c.balloonRest--
	}
	c.updateRoute()
}

// updateRoute runs one route command per step; movement and waits take time.
func (c *charState) updateRoute() {
	if c.route == nil {
		return
	}
	if c.routeWait > 0 {
		c.routeWait--
		return
	}
	if c.routeIndex >= len(c.route.List) {
		c.finishRoute()
		return
	}
	cmd := c.route.List[c.routeIndex]
	c.routeIndex++
	switch cmd.Code {
	case routeEnd:
		c.finishRoute()
	case routeMoveDown:
		c.move(DirDown)
	case routeMoveLeft:
		c.move(DirLeft)
	case routeMoveRight:
		c.move(DirRight)
	case routeMoveUp:
		c.move(DirUp)
	case routeForward:
		c.move(c.direction)
	case routeBackward:
		d := c.direction
		c.move(10 - d)
		c.direction = d
	case routeJump:
		c.x += cmd.Parameters.Int(0)
		c.y += cmd.Parameters.Int(1)
		c.routeWait = FramesPerStep - 1
	case routeWait:
		c.routeWait = max(cmd.Parameters.Int(0)-1, 0)
	case routeTurnDown:
		c.direction = DirDown
	case routeTurnLeft:
		c.direction = DirLeft
	case routeTurnRight:
		c.direction = DirRight
	case routeTurnUp:
		c.direction = DirUp
	}
}

func (c *charState) finishRoute() {
	if c.route.Repeat && len(c.route.List) > 1 {
		c.routeIndex = 0
		return
	}
	c.route = nil
}

func (c *charState) move(d int) {
	c.direction = d
	switch d {
	case DirDown:
		c.y++
	case DirLeft:
		c.x--
	case DirRight:
		c.x++
	case DirUp:
		c.y--
	}
	c.routeWait = FramesPerStep - 1
}

// EventState is a map event on the current map.
type EventState struct {
	charState
	data   *EventData
	erased bool
}

// ID returns the event id.
func (e *EventState) ID() int { return e.data.ID }

// Data returns the event's static data.
func (e *EventState) Data() *EventData { return e.data }

// Erased reports whether the event was erased for the rest of the map visit.
func (e *EventState) Erased() bool { return e.erased }

// PlayerState is the in-memory Player.
type PlayerState struct {
	charState
	world *World

	transferring     bool
	newMapID         int
	newX, newY       int
	newDirection     int
	vehicleType      int
	transparent      bool
	followersVisible bool
	gatherRest       int
	encounterCount   int
}

const vehicleNone = -1

func (p *PlayerState) IsTransferring() bool { return p.transferring }

func (p *PlayerState) ReserveTransfer(mapID, x, y, direction, _ int) {
	p.transferring = true
	p.newMapID = mapID
	p.newX, p.newY = x, y
	p.newDirection = direction
}

// GetOnOffVehicle boards a vehicle standing on the player's tile, or leaves
// the current one.
func (p *PlayerState) GetOnOffVehicle() {
	if p.vehicleType != vehicleNone {
		p.vehicleType = vehicleNone
		return
	}
	for t, v := range p.world.Map.vehicles {
		if v.mapID == p.world.Map.id && v.x == p.x && v.y == p.y {
			p.vehicleType = t
			return
		}
	}
}

func (p *PlayerState) VehicleType() int                { return p.vehicleType }
func (p *PlayerState) SetTransparent(transparent bool) { p.transparent = transparent }
func (p *PlayerState) Transparent() bool               { return p.transparent }
func (p *PlayerState) ShowFollowers()                  { p.followersVisible = true }
func (p *PlayerState) HideFollowers()                  { p.followersVisible = false }
func (p *PlayerState) GatherFollowers()                { p.gatherRest = GatherFrames }
func (p *PlayerState) AreFollowersGathering() bool     { return p.gatherRest > 0 }
func (p *PlayerState) Refresh()                        {}
func (p *PlayerState) MakeEncounterCount()             { p.encounterCount = 20 }
func (p *PlayerState) EncounterTroopID() int           { return p.world.EncounterTroopID }

func (p *PlayerState) update() {
	p.charState.update()
	if p.gatherRest > 0 {
		p.gatherRest--
	}
}

// performTransfer completes a reserved transfer.
func (p *PlayerState) performTransfer() {
	if !p.transferring {
		return
	}
	if p.newMapID != p.world.Map.id {
		p.world.setupMap(p.newMapID)
	}
	p.Locate(p.newX, p.newY)
	if p.newDirection > 0 {
		p.direction = p.newDirection
	}
	p.transferring = false
}

// VehicleState is a boat, ship or airship.
type VehicleState struct {
	charState
	mapID     int
	BGM       opcode.AudioFile
	ImageName string
	ImageIdx  int
}

func (v *VehicleState) SetLocation(mapID, x, y int) {
	v.mapID = mapID
	v.Locate(x, y)
}

func (v *VehicleState) SetBGM(bgm opcode.AudioFile) { v.BGM = bgm }

func (v *VehicleState) SetImage(name string, index int) {
	v.ImageName, v.ImageIdx = name, index
}

// MapID returns the map the vehicle is parked on.
func (v *VehicleState) MapID() int { return v.mapID }
