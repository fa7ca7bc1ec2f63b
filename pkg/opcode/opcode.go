// Package opcode defines the event command set executed by the interpreter.
// This package is the foundation that both the data loader and the interpreter depend on.
// The data loader decodes command lists, and the interpreter walks them.
package opcode

import "strconv"

// Code identifies an event command.
// Each Code corresponds to a specific handler in the interpreter's dispatch table.
type Code int

// Event command codes, numbered as they appear in map and common-event data.
const (
	// End closes a block. It carries no operands.
	End Code = 0

	// ShowText opens a message window.
	// Params: [faceName, faceIndex, background, positionType]
	ShowText Code = 101
	// ShowChoices presents a choice list.
	// Params: [choices []string, cancelType, defaultType, positionType, background]
	ShowChoices Code = 102
	// InputNumber asks for a number into a variable.
	// Params: [variableID, maxDigits]
	InputNumber Code = 103
	// SelectItem asks for a key item into a variable.
	// Params: [variableID, itemType]
	SelectItem Code = 104
	// ShowScrollingText starts scrolling text.
	// Params: [speed, noFast]
	ShowScrollingText Code = 105
	// Comment is an author note; the interpreter keeps it in its comment buffer.
	// Params: [text]
	Comment Code = 108
	// ConditionalBranch evaluates a condition and records it in the branch register.
	// Params: [conditionType, ...]
	ConditionalBranch Code = 111
	// Loop marks the head of a loop body.
	Loop Code = 112
	// BreakLoop leaves the innermost enclosing loop.
	BreakLoop Code = 113
	// ExitEventProcessing ends the current list.
	ExitEventProcessing Code = 115
	// CommonEvent calls a common event as a child interpreter.
	// Params: [commonEventID]
	CommonEvent Code = 117
	// Label marks a jump target.
	// Params: [name]
	Label Code = 118
	// JumpToLabel moves the cursor to the label with the given name.
	// Params: [name]
	JumpToLabel Code = 119
	// ControlSwitches sets a range of switches.
	// Params: [startID, endID, value(0=ON,1=OFF)]
	ControlSwitches Code = 121
	// ControlVariables operates on a range of variables.
	// Params: [startID, endID, operationType, operandType, ...]
	ControlVariables Code = 122
	// ControlSelfSwitch sets a self switch of the running event.
	// Params: [channel, value(0=ON,1=OFF)]
	ControlSelfSwitch Code = 123
	// ControlTimer starts or stops the timer.
	// Params: [0=start/1=stop, seconds]
	ControlTimer Code = 124
	// ChangeGold adds or removes gold.
	// Params: [operation, operandType, operand]
	ChangeGold Code = 125
	// ChangeItems adds or removes items.
	// Params: [itemID, operation, operandType, operand]
	ChangeItems Code = 126
	// ChangeWeapons adds or removes weapons.
	// Params: [weaponID, operation, operandType, operand, includeEquip]
	ChangeWeapons Code = 127
	// ChangeArmors adds or removes armors.
	// Params: [armorID, operation, operandType, operand, includeEquip]
	ChangeArmors Code = 128
	// ChangePartyMember adds or removes an actor.
	// Params: [actorID, 0=add/1=remove, initialize]
	ChangePartyMember Code = 129

	ChangeBattleBGM       Code = 132
	ChangeVictoryME       Code = 133
	ChangeSaveAccess      Code = 134
	ChangeMenuAccess      Code = 135
	ChangeEncounter       Code = 136
	ChangeFormationAccess Code = 137
	ChangeWindowColor     Code = 138
	ChangeDefeatME        Code = 139
	ChangeVehicleBGM      Code = 140

	// TransferPlayer moves the player to another map.
	// Params: [designation, mapID, x, y, direction, fadeType]
	TransferPlayer Code = 201
	// SetVehicleLocation places a vehicle.
	// Params: [vehicleType, designation, mapID, x, y]
	SetVehicleLocation Code = 202
	// SetEventLocation places or swaps an event.
	// Params: [characterID, designation, x|other, y, direction]
	SetEventLocation Code = 203
	// ScrollMap scrolls the map view.
	// Params: [direction, distance, speed]
	ScrollMap Code = 204
	// SetMovementRoute forces a move route on a character.
	// Params: [characterID, route]
	SetMovementRoute Code = 205
	// GetOnOffVehicle toggles riding the vehicle in front of the player.
	GetOnOffVehicle Code = 206

	ChangeTransparency    Code = 211
	ShowAnimation         Code = 212
	ShowBalloon           Code = 213
	EraseEvent            Code = 214
	ChangePlayerFollowers Code = 216
	GatherFollowers       Code = 217

	FadeoutScreen Code = 221
	FadeinScreen  Code = 222
	TintScreen    Code = 223
	FlashScreen   Code = 224
	ShakeScreen   Code = 225
	Wait          Code = 230
	ShowPicture   Code = 231
	MovePicture   Code = 232
	RotatePicture Code = 233
	TintPicture   Code = 234
	ErasePicture  Code = 235
	SetWeather    Code = 236

	PlayBGM    Code = 241
	FadeoutBGM Code = 242
	SaveBGM    Code = 243
	ResumeBGM  Code = 244
	PlayBGS    Code = 245
	FadeoutBGS Code = 246
	PlayME     Code = 249
	PlaySE     Code = 250
	StopSE     Code = 251
	PlayMovie  Code = 261

	ChangeMapNameDisplay Code = 281
	ChangeTileset        Code = 282
	ChangeBattleBack     Code = 283
	ChangeParallax       Code = 284
	GetLocationInfo      Code = 285

	// BattleProcessing starts a battle.
	// Params: [designation, troopID|variableID, canEscape, canLose]
	BattleProcessing Code = 301
	// ShopProcessing opens a shop. Extra goods follow as ShopGoods rows.
	// Params: [itemType, itemID, priceType, price, purchaseOnly]
	ShopProcessing Code = 302
	// NameInput opens the name input scene.
	// Params: [actorID, maxLength]
	NameInput Code = 303

	ChangeHP           Code = 311
	ChangeMP           Code = 312
	ChangeState        Code = 313
	RecoverAll         Code = 314
	ChangeEXP          Code = 315
	ChangeLevel        Code = 316
	ChangeParameter    Code = 317
	ChangeSkill        Code = 318
	ChangeEquipment    Code = 319
	ChangeName         Code = 320
	ChangeClass        Code = 321
	ChangeActorImages  Code = 322
	ChangeVehicleImage Code = 323
	ChangeNickname     Code = 324
	ChangeProfile      Code = 325
	ChangeTP           Code = 326

	ChangeEnemyHP       Code = 331
	ChangeEnemyMP       Code = 332
	ChangeEnemyState    Code = 333
	EnemyRecoverAll     Code = 334
	EnemyAppear         Code = 335
	EnemyTransform      Code = 336
	ShowBattleAnimation Code = 337
	ForceAction         Code = 339
	AbortBattle         Code = 340
	ChangeEnemyTP       Code = 342

	OpenMenu      Code = 351
	OpenSave      Code = 352
	GameOver      Code = 353
	ReturnToTitle Code = 354

	// Script evaluates inline script. Extra lines follow as ScriptLine rows.
	// Params: [source]
	Script Code = 355
	// PluginCommand forwards a space separated command line to plugins.
	// Params: [line]
	PluginCommand Code = 356

	// Continuation and block-end codes.
	TextLine          Code = 401
	When              Code = 402
	WhenCancel        Code = 403
	ChoicesEnd        Code = 404
	ScrollingTextLine Code = 405
	CommentLine       Code = 408
	Else              Code = 411
	BranchEnd         Code = 412
	RepeatAbove       Code = 413
	RouteLine         Code = 505
	IfWin             Code = 601
	IfEscape          Code = 602
	IfLose            Code = 603
	BattleEnd         Code = 604
	ShopGoods         Code = 605
	ScriptLine        Code = 655
)

// String returns the decimal code.
func (c Code) String() string {
	return strconv.Itoa(int(c))
}

// Command is one record of a command list.
type Command struct {
	Code       Code   `json:"code"`
	Indent     int    `json:"indent"`
	Parameters Params `json:"parameters"`
}

// List is an ordered command list. The interpreter never mutates it.
type List []Command
