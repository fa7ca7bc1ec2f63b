// Package game defines the collaborators an event interpreter drives, the
// Context handle that bundles them, and a headless in-memory World that
// implements every contract for tests and for running without a window.
package game

import "github.com/zurustar/evrun/pkg/opcode"

// Switches holds the global boolean switches.
type Switches interface {
	Value(id int) bool
	SetValue(id int, value bool)
}

// Variables holds the global integer variables.
type Variables interface {
	Value(id int) int
	SetValue(id int, value int)
}

// SelfSwitchKey addresses one self switch of one event.
type SelfSwitchKey struct {
	MapID   int
	EventID int
	Channel string
}

// SelfSwitches holds per-event switches.
type SelfSwitches interface {
	Value(key SelfSwitchKey) bool
	SetValue(key SelfSwitchKey, value bool)
}

// Timer is the on-screen countdown timer.
type Timer interface {
	Start(frames int)
	Stop()
	IsWorking() bool
	Frames() int
	Seconds() int
}

// ItemKind selects the item table an id refers to.
type ItemKind int

const (
	KindItem ItemKind = iota
	KindWeapon
	KindArmor
)

// Battler is what actors and enemies have in common.
type Battler interface {
	HP() int
	MP() int
	TP() int
	GainHP(value int)
	GainMP(value int)
	GainTP(value int)
	IsAlive() bool
	IsDead() bool
	Param(id int) int
	IsStateAffected(stateID int) bool
	IsDeathStateAffected() bool
	AddState(stateID int)
	RemoveState(stateID int)
	RecoverAll()
	ForceAction(skillID, targetIndex int)
}

// Actor is a party member candidate.
type Actor interface {
	Battler
	ID() int
	Name() string
	SetName(name string)
	SetNickname(name string)
	SetProfile(text string)
	Level() int
	ChangeLevel(level int, show bool)
	CurrentExp() int
	ChangeExp(exp int, show bool)
	AddParam(id, value int)
	ClassID() int
	ChangeClass(classID int, keepExp bool)
	HasSkill(skillID int) bool
	LearnSkill(skillID int)
	ForgetSkill(skillID int)
	HasWeapon(weaponID int) bool
	HasArmor(armorID int) bool
	ChangeEquipByID(slotID, itemID int)
	SetCharacterImage(name string, index int)
	SetFaceImage(name string, index int)
	SetBattlerImage(name string)
	Setup(actorID int)
}

// Actors resolves actors by database id.
type Actors interface {
	Actor(id int) Actor
}

// Party is the player's party and inventory.
type Party interface {
	InBattle() bool
	Gold() int
	GainGold(amount int)
	Steps() int
	Members() []Actor
	Size() int
	AddActor(actorID int)
	RemoveActor(actorID int)
	NumItems(kind ItemKind, id int) int
	HasItem(kind ItemKind, id int, includeEquip bool) bool
	GainItem(kind ItemKind, id, amount int, includeEquip bool)
}

// Enemy is a troop member.
type Enemy interface {
	Battler
	Appear()
	Transform(enemyID int)
	StartAnimation(animationID int)
}

// Troop is the enemy group of the current battle.
type Troop interface {
	Members() []Enemy
	MakeUniqueNames()
}

// Character is anything that stands on the map.
type Character interface {
	X() int
	Y() int
	Direction() int
	ScreenX() int
	ScreenY() int
	Locate(x, y int)
	SetDirection(d int)
	Swap(other Character)
	ForceMoveRoute(route opcode.MoveRoute)
	IsMoveRouteForcing() bool
	RequestAnimation(animationID int)
	IsAnimationPlaying() bool
	RequestBalloon(balloonID int)
	IsBalloonPlaying() bool
}

// Player is the character the user controls.
type Player interface {
	Character
	IsTransferring() bool
	ReserveTransfer(mapID, x, y, direction, fadeType int)
	GetOnOffVehicle()
	VehicleType() int
	SetTransparent(transparent bool)
	ShowFollowers()
	HideFollowers()
	GatherFollowers()
	AreFollowersGathering() bool
	Refresh()
	MakeEncounterCount()
	EncounterTroopID() int
}

// Vehicle is a boat, ship or airship.
type Vehicle interface {
	Character
	SetLocation(mapID, x, y int)
	SetBGM(bgm opcode.AudioFile)
	SetImage(name string, index int)
}

// Map is the current game map.
type Map interface {
	MapID() int
	Event(id int) Character
	EraseEvent(id int)
	Vehicle(vehicleType int) Vehicle
	IsScrolling() bool
	StartScroll(direction, distance, speed int)
	ChangeTileset(tilesetID int)
	ChangeBattleback(name1, name2 string)
	ChangeParallax(name string, loopX, loopY bool, sx, sy int)
	EnableNameDisplay()
	DisableNameDisplay()
	TerrainTag(x, y int) int
	EventIDXY(x, y int) int
	TileID(x, y, layer int) int
	RegionID(x, y int) int
	RefreshIfNeeded()
}

// Message is the message window state.
type Message interface {
	IsBusy() bool
	Add(text string)
	SetFaceImage(name string, index int)
	SetSpeakerName(name string)
	SetBackground(background int)
	SetPositionType(positionType int)
	SetChoices(choices []string, defaultType, cancelType int)
	SetChoiceBackground(background int)
	SetChoicePositionType(positionType int)
	SetChoiceCallback(cb func(n int))
	SetNumberInput(variableID, maxDigits int)
	SetItemChoice(variableID, itemType int)
	SetScroll(speed int, noFast bool)
}

// Picture describes a picture placement.
type Picture struct {
	Name      string
	Origin    int
	X, Y      int
	ScaleX    int
	ScaleY    int
	Opacity   int
	BlendMode int
}

// Screen holds screen effects and pictures.
type Screen interface {
	StartFadeOut(duration int)
	StartFadeIn(duration int)
	StartTint(tone [4]int, duration int)
	StartFlash(color [4]int, duration int)
	StartShake(power, speed, duration int)
	ShowPicture(id int, p Picture)
	MovePicture(id int, p Picture, duration int)
	RotatePicture(id, speed int)
	TintPicture(id int, tone [4]int, duration int)
	ErasePicture(id int)
	ChangeWeather(weatherType, power, duration int)
}

// Audio plays music and sounds.
type Audio interface {
	PlayBGM(bgm opcode.AudioFile)
	FadeOutBGM(seconds int)
	PlayBGS(bgs opcode.AudioFile)
	FadeOutBGS(seconds int)
	PlayME(me opcode.AudioFile)
	PlaySE(se opcode.AudioFile)
	StopSE()
	CurrentBGM() opcode.AudioFile
	ReplayBGM(bgm opcode.AudioFile)
}

// System holds system settings and statistics.
type System interface {
	SetBattleBGM(bgm opcode.AudioFile)
	SetVictoryME(me opcode.AudioFile)
	SetDefeatME(me opcode.AudioFile)
	SetSaveEnabled(enabled bool)
	SetMenuEnabled(enabled bool)
	SetEncounterEnabled(enabled bool)
	SetFormationEnabled(enabled bool)
	SetWindowTone(tone [4]int)
	SaveBGM()
	ReplayBGM()
	PlaytimeSeconds() int
	SaveCount() int
	BattleCount() int
	WinCount() int
	EscapeCount() int
}

// Battle results reported to the battle event callback.
const (
	BattleWin    = 0
	BattleEscape = 1
	BattleLose   = 2
)

// Battle manages the current battle.
type Battle interface {
	Setup(troopID int, canEscape, canLose bool)
	SetEventCallback(cb func(result int))
	IsActionForced() bool
	ForceAction(b Battler)
	Abort()
}

// SceneKind identifies a scene the interpreter can open.
type SceneKind int

const (
	SceneMap SceneKind = iota
	SceneBattle
	SceneShop
	SceneName
	SceneMenu
	SceneSave
	SceneGameover
	SceneTitle
)

var sceneNames = [...]string{"map", "battle", "shop", "name", "menu", "save", "gameover", "title"}

func (k SceneKind) String() string {
	if int(k) < len(sceneNames) {
		return sceneNames[k]
	}
	return "unknown"
}

// ShopGood is one row of a shop's goods.
type ShopGood struct {
	Kind      ItemKind
	ID        int
	PriceType int
	Price     int
}

// ShopRequest prepares the shop scene.
type ShopRequest struct {
	Goods        []ShopGood
	PurchaseOnly bool
}

// NameRequest prepares the name input scene.
type NameRequest struct {
	ActorID   int
	MaxLength int
}

// Scene is the scene stack.
type Scene interface {
	IsChanging() bool
	Push(kind SceneKind, request any)
	Goto(kind SceneKind)
}

// Input reports button state.
type Input interface {
	IsPressed(key string) bool
	IsTriggered(key string) bool
	IsRepeated(key string) bool
}

// Video plays movies.
type Video interface {
	Play(name string)
	IsPlaying() bool
}

// Images is the image loader.
type Images interface {
	RequestTileset(tilesetID int)
	IsReady() bool
}

// Frames exposes the host frame counter.
type Frames interface {
	FrameCount() int
}

// Plugins receives plugin commands.
type Plugins interface {
	Command(name string, args []string)
}

// Temp holds per-session transient state.
type Temp interface {
	ReserveCommonEvent(id int)
	IsCommonEventReserved() bool
	ReservedCommonEventID() int
	ClearCommonEvent()
}

// Common event triggers.
const (
	TriggerNone     = 0
	TriggerAutorun  = 1
	TriggerParallel = 2
)

// CommonEvent is a reusable command list.
type CommonEvent struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	Trigger  int         `json:"trigger"`
	SwitchID int         `json:"switchId"`
	List     opcode.List `json:"list"`
}

// Database answers lookups into static project data.
type Database interface {
	CommonEvent(id int) *CommonEvent
	CommonEvents() []*CommonEvent
	HasActor(id int) bool
	HasClass(id int) bool
	HasTroop(id int) bool
}

// Bindings are the names visible to inline script.
type Bindings struct {
	Subject   any
	Target    any
	Variables Variables
	Switches  Switches
}

// Evaluator runs author supplied inline script.
type Evaluator interface {
	Evaluate(src string, b Bindings) (any, error)
}
