package game

import "github.com/zurustar/evrun/pkg/opcode"

// ActorData is an actor's database entry.
type ActorData struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Nickname     string `json:"nickname"`
	Profile      string `json:"profile"`
	ClassID      int    `json:"classId"`
	InitialLevel int    `json:"initialLevel"`
	MaxLevel     int    `json:"maxLevel"`
	Equips       []int  `json:"equips"`
	// Params are fallback values of mhp, mmp, atk, def, mat, mdf, agi, luk
	// used when the class carries no parameter curve.
	Params [8]int `json:"-"`
}

// Learning is a skill a class learns at a level.
type Learning struct {
	Level   int `json:"level"`
	SkillID int `json:"skillId"`
}

// ClassData is a class's database entry.
type ClassData struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Params    [][]int    `json:"params"` // [param][level]
	Learnings []Learning `json:"learnings"`
}

// EnemyData is an enemy's database entry.
type EnemyData struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Params [8]int `json:"params"`
}

// TroopMember places one enemy in a troop.
type TroopMember struct {
	EnemyID int  `json:"enemyId"`
	Hidden  bool `json:"hidden"`
}

// TroopConditions gate a battle event page. A page with no valid condition
// never runs.
type TroopConditions struct {
	TurnEnding  bool `json:"turnEnding"`
	TurnValid   bool `json:"turnValid"`
	TurnA       int  `json:"turnA"`
	TurnB       int  `json:"turnB"`
	EnemyValid  bool `json:"enemyValid"`
	EnemyIndex  int  `json:"enemyIndex"`
	EnemyHP     int  `json:"enemyHp"`
	ActorValid  bool `json:"actorValid"`
	ActorID     int  `json:"actorId"`
	ActorHP     int  `json:"actorHp"`
	SwitchValid bool `json:"switchValid"`
	SwitchID    int  `json:"switchId"`
}

// TroopPage is a battle event page. Only pages with span 0 (once per battle)
// run, at battle start; turn conditions hold only for turn 0.
type TroopPage struct {
	Conditions TroopConditions `json:"conditions"`
	Span       int             `json:"span"`
	List       opcode.List     `json:"list"`
}

// TroopData is a troop's database entry.
type TroopData struct {
	ID      int           `json:"id"`
	Name    string        `json:"name"`
	Members []TroopMember `json:"members"`
	Pages   []TroopPage   `json:"pages"`
}

// PageConditions gate a map event page.
type PageConditions struct {
	Switch1Valid    bool   `json:"switch1Valid"`
	Switch1ID       int    `json:"switch1Id"`
	Switch2Valid    bool   `json:"switch2Valid"`
	Switch2ID       int    `json:"switch2Id"`
	VariableValid   bool   `json:"variableValid"`
	VariableID      int    `json:"variableId"`
	VariableValue   int    `json:"variableValue"`
	SelfSwitchValid bool   `json:"selfSwitchValid"`
	SelfSwitchCh    string `json:"selfSwitchCh"`
	ItemValid       bool   `json:"itemValid"`
	ItemID          int    `json:"itemId"`
	ActorValid      bool   `json:"actorValid"`
	ActorID         int    `json:"actorId"`
}

// Map event page triggers.
const (
	PageActionButton = 0
	PagePlayerTouch  = 1
	PageEventTouch   = 2
	PageAutorun      = 3
	PageParallel     = 4
)

// EventPage is one page of a map event.
type EventPage struct {
	Conditions PageConditions `json:"conditions"`
	Trigger    int            `json:"trigger"`
	List       opcode.List    `json:"list"`
}

// EventData is a map event.
type EventData struct {
	ID    int         `json:"id"`
	Name  string      `json:"name"`
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Pages []EventPage `json:"pages"`
}

// MapData is a map file.
type MapData struct {
	ID        int          `json:"-"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	TilesetID int          `json:"tilesetId"`
	Data      []int        `json:"data"`
	Events    []*EventData `json:"events"`
}

// TilesetData is a tileset's database entry.
type TilesetData struct {
	ID    int   `json:"id"`
	Flags []int `json:"flags"`
}

// Seed is the static data a World starts from.
type Seed struct {
	Actors   map[int]*ActorData
	Classes  map[int]*ClassData
	Enemies  map[int]*EnemyData
	Troops   map[int]*TroopData
	Maps     map[int]*MapData
	Tilesets map[int]*TilesetData

	StartMapID int
	StartX     int
	StartY     int
	Party      []int
}
