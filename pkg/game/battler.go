package game

import "maps"

// DeathState is the state id that marks a battler as dead.
const DeathState = 1

// Parameter ids.
const (
	ParamMaxHP = iota
	ParamMaxMP
)

const (
	maxTP       = 100
	expPerLevel = 100
	maxItems    = 99
	maxGold     = 99999999
)

// battler holds the state actors and enemies share.
type battler struct {
	hp, mp, tp int
	states     map[int]bool
	plus       [8]int
	forced     *forcedAction
	base       func(id int) int
}

type forcedAction struct {
	SkillID     int
	TargetIndex int
}

func newBattler(base func(id int) int) battler {
	b := battler{states: make(map[int]bool), base: base}
	b.hp = b.Param(ParamMaxHP)
	b.mp = b.Param(ParamMaxMP)
	return b
}

func (b *battler) Param(id int) int {
	if id < 0 || id >= len(b.plus) {
		return 0
	}
	v := b.base(id) + b.plus[id]
	if v < 0 {
		return 0
	}
	return v
}

func (b *battler) HP() int { return b.hp }
func (b *battler) MP() int { return b.mp }
func (b *battler) TP() int { return b.tp }

func (b *battler) GainHP(value int) {
	b.hp = clamp(b.hp+value, 0, b.Param(ParamMaxHP))
	if b.hp == 0 {
		b.states[DeathState] = true
	}
}

func (b *battler) GainMP(value int) { b.mp = clamp(b.mp+value, 0, b.Param(ParamMaxMP)) }
func (b *battler) GainTP(value int) { b.tp = clamp(b.tp+value, 0, maxTP) }

func (b *battler) IsDeathStateAffected() bool { return b.states[DeathState] }
func (b *battler) IsAlive() bool              { return !b.IsDeathStateAffected() }
func (b *battler) IsDead() bool               { return b.IsDeathStateAffected() }

func (b *battler) IsStateAffected(stateID int) bool { return b.states[stateID] }

func (b *battler) AddState(stateID int) {
	b.states[stateID] = true
	if stateID == DeathState {
		b.hp = 0
	}
}

// RemoveState clears stateID; removing death revives with 1 HP.
func (b *battler) RemoveState(stateID int) {
	delete(b.states, stateID)
	if stateID == DeathState && b.hp == 0 {
		b.hp = 1
	}
}

func (b *battler) RecoverAll() {
	clear(b.states)
	b.hp = b.Param(ParamMaxHP)
	b.mp = b.Param(ParamMaxMP)
}

func (b *battler) ForceAction(skillID, targetIndex int) {
	b.forced = &forcedAction{SkillID: skillID, TargetIndex: targetIndex}
}

// takeForcedAction returns and clears the queued forced action.
func (b *battler) takeForcedAction() *forcedAction {
	f := b.forced
	b.forced = nil
	return f
}

func (b *battler) States() map[int]bool { return maps.Clone(b.states) }

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// ActorState is an in-memory Actor.
type ActorState struct {
	battler
	data    *ActorData
	classes map[int]*ClassData

	id       int
	name     string
	nickname string
	profile  string
	classID  int
	level    int
	exp      int
	skills   map[int]bool
	equips   []int

	CharacterName  string
	CharacterIndex int
	FaceName       string
	FaceIndex      int
	BattlerName    string
}

func newActorState(data *ActorData, classes map[int]*ClassData) *ActorState {
	a := &ActorState{data: data, classes: classes}
	a.battler = newBattler(a.baseParam)
	a.Setup(data.ID)
	return a
}

// Setup resets the actor to its database entry.
func (a *ActorState) Setup(int) {
	d := a.data
	a.id = d.ID
	a.name = d.Name
	a.nickname = d.Nickname
	a.profile = d.Profile
	a.classID = d.ClassID
	a.level = max(d.InitialLevel, 1)
	a.exp = a.expForLevel(a.level)
	a.skills = make(map[int]bool)
	a.equips = append([]int(nil), d.Equips...)
	a.plus = [8]int{}
	a.learnClassSkills()
	a.RecoverAll()
}

func (a *ActorState) baseParam(id int) int {
	if c := a.classes[a.classID]; c != nil && id < len(c.Params) {
		curve := c.Params[id]
		if a.level < len(curve) {
			return curve[a.level]
		}
	}
	return a.data.Params[id]
}

func (a *ActorState) maxLevel() int {
	if a.data.MaxLevel > 0 {
		return a.data.MaxLevel
	}
	return 99
}

func (a *ActorState) expForLevel(level int) int { return (level - 1) * expPerLevel }

func (a *ActorState) learnClassSkills() {
	c := a.classes[a.classID]
	if c == nil {
		return
	}
	for _, l := range c.Learnings {
		if l.Level <= a.level {
			a.skills[l.SkillID] = true
		}
	}
}

func (a *ActorState) ID() int                   { return a.id }
func (a *ActorState) Name() string              { return a.name }
func (a *ActorState) SetName(name string)       { a.name = name }
func (a *ActorState) Nickname() string          { return a.nickname }
func (a *ActorState) SetNickname(name string)   { a.nickname = name }
func (a *ActorState) Profile() string           { return a.profile }
func (a *ActorState) SetProfile(text string)    { a.profile = text }
func (a *ActorState) Level() int                { return a.level }
func (a *ActorState) CurrentExp() int           { return a.exp }
func (a *ActorState) ClassID() int              { return a.classID }
func (a *ActorState) HasSkill(skillID int) bool { return a.skills[skillID] }
func (a *ActorState) LearnSkill(skillID int)    { a.skills[skillID] = true }
func (a *ActorState) ForgetSkill(skillID int)   { delete(a.skills, skillID) }

func (a *ActorState) ChangeLevel(level int, _ bool) {
	a.level = clamp(level, 1, a.maxLevel())
	a.exp = a.expForLevel(a.level)
	a.learnClassSkills()
	a.refresh()
}

func (a *ActorState) ChangeExp(exp int, _ bool) {
	a.exp = max(exp, 0)
	a.level = clamp(a.exp/expPerLevel+1, 1, a.maxLevel())
	a.learnClassSkills()
	a.refresh()
}

func (a *ActorState) AddParam(id, value int) {
	if id < 0 || id >= len(a.plus) {
		return
	}
	a.plus[id] += value
	a.refresh()
}

func (a *ActorState) ChangeClass(classID int, keepExp bool) {
	exp := a.exp
	a.classID = classID
	if keepExp {
		a.ChangeExp(exp, false)
		return
	}
	a.learnClassSkills()
	a.refresh()
}

func (a *ActorState) refresh() {
	a.hp = min(a.hp, a.Param(ParamMaxHP))
	a.mp = min(a.mp, a.Param(ParamMaxMP))
}

// Equips returns the equipped item id per slot; slot 0 holds the weapon.
func (a *ActorState) Equips() []int { return append([]int(nil), a.equips...) }

func (a *ActorState) HasWeapon(weaponID int) bool {
	return len(a.equips) > 0 && a.equips[0] == weaponID && weaponID > 0
}

func (a *ActorState) HasArmor(armorID int) bool {
	for i := 1; i < len(a.equips); i++ {
		if a.equips[i] == armorID && armorID > 0 {
			return true
		}
	}
	return false
}

func (a *ActorState) ChangeEquipByID(slotID, itemID int) {
	slot := slotID - 1
	if slot < 0 {
		return
	}
	for len(a.equips) <= slot {
		a.equips = append(a.equips, 0)
	}
	a.equips[slot] = itemID
}

func (a *ActorState) SetCharacterImage(name string, index int) {
	a.CharacterName, a.CharacterIndex = name, index
}

func (a *ActorState) SetFaceImage(name string, index int) {
	a.FaceName, a.FaceIndex = name, index
}

func (a *ActorState) SetBattlerImage(name string) { a.BattlerName = name }

// ActorTable is an in-memory Actors.
type ActorTable struct {
	actors map[int]*ActorState
}

func newActorTable(seed *Seed) *ActorTable {
	t := &ActorTable{actors: make(map[int]*ActorState)}
	for id, d := range seed.Actors {
		t.actors[id] = newActorState(d, seed.Classes)
	}
	return t
}

func (t *ActorTable) Actor(id int) Actor {
	if a, ok := t.actors[id]; ok {
		return a
	}
	return nil
}

// State returns the concrete actor, or nil.
func (t *ActorTable) State(id int) *ActorState { return t.actors[id] }

// PartyState is an in-memory Party.
type PartyState struct {
	actors   *ActorTable
	members  []int
	gold     int
	steps    int
	items    [3]map[int]int
	inBattle bool
}

func newPartyState(actors *ActorTable, members []int) *PartyState {
	p := &PartyState{actors: actors}
	for i := range p.items {
		p.items[i] = make(map[int]int)
	}
	for _, id := range members {
		p.AddActor(id)
	}
	return p
}

func (p *PartyState) InBattle() bool { return p.inBattle }
func (p *PartyState) Gold() int      { return p.gold }
func (p *PartyState) Steps() int     { return p.steps }
func (p *PartyState) Size() int      { return len(p.members) }

func (p *PartyState) GainGold(amount int) { p.gold = clamp(p.gold+amount, 0, maxGold) }

func (p *PartyState) Members() []Actor {
	out := make([]Actor, 0, len(p.members))
	for _, id := range p.members {
		if a := p.actors.State(id); a != nil {
			out = append(out, a)
		}
	}
	return out
}

// MemberIDs returns the actor ids in party order.
func (p *PartyState) MemberIDs() []int { return append([]int(nil), p.members...) }

func (p *PartyState) AddActor(actorID int) {
	if p.actors.State(actorID) == nil {
		return
	}
	for _, id := range p.members {
		if id == actorID {
			return
		}
	}
	p.members = append(p.members, actorID)
}

func (p *PartyState) RemoveActor(actorID int) {
	for i, id := range p.members {
		if id == actorID {
			p.members = append(p.members[:i], p.members[i+1:]...)
			return
		}
	}
}

func (p *PartyState) NumItems(kind ItemKind, id int) int {
	if kind < 0 || int(kind) >= len(p.items) {
		return 0
	}
	return p.items[kind][id]
}

func (p *PartyState) HasItem(kind ItemKind, id int, includeEquip bool) bool {
	if p.NumItems(kind, id) > 0 {
		return true
	}
	if !includeEquip {
		return false
	}
	for _, id2 := range p.members {
		a := p.actors.State(id2)
		if a == nil {
			continue
		}
		if (kind == KindWeapon && a.HasWeapon(id)) || (kind == KindArmor && a.HasArmor(id)) {
			return true
		}
	}
	return false
}

// GainItem changes the stock of an item. When removing more than is held and
// includeEquip is set, the shortfall is taken from members' equipment.
func (p *PartyState) GainItem(kind ItemKind, id, amount int, includeEquip bool) {
	if kind < 0 || int(kind) >= len(p.items) || id <= 0 {
		return
	}
	after := p.items[kind][id] + amount
	if after < 0 && includeEquip && kind != KindItem {
		p.discardMembersEquip(kind, id, -after)
	}
	after = clamp(after, 0, maxItems)
	if after == 0 {
		delete(p.items[kind], id)
		return
	}
	p.items[kind][id] = after
}

func (p *PartyState) discardMembersEquip(kind ItemKind, id, count int) {
	for _, actorID := range p.members {
		if count == 0 {
			return
		}
		a := p.actors.State(actorID)
		if a == nil {
			continue
		}
		for slot, equipped := range a.equips {
			isWeapon := slot == 0
			if equipped == id && isWeapon == (kind == KindWeapon) {
				a.equips[slot] = 0
				count--
				break
			}
		}
	}
}

// EnemyState is an in-memory Enemy.
type EnemyState struct {
	battler
	data       map[int]*EnemyData
	enemyID    int
	hidden     bool
	name       string
	letter     string
	Animations []int
}

func newEnemyState(data map[int]*EnemyData, m TroopMember) *EnemyState {
	e := &EnemyState{data: data, enemyID: m.EnemyID, hidden: m.Hidden}
	e.battler = newBattler(e.baseParam)
	if d := data[m.EnemyID]; d != nil {
		e.name = d.Name
	}
	return e
}

func (e *EnemyState) baseParam(id int) int {
	if d := e.data[e.enemyID]; d != nil {
		return d.Params[id]
	}
	return 0
}

// IsAlive is false while hidden.
func (e *EnemyState) IsAlive() bool { return !e.hidden && e.battler.IsAlive() }

func (e *EnemyState) Appear() { e.hidden = false }

func (e *EnemyState) Transform(enemyID int) {
	e.enemyID = enemyID
	if d := e.data[enemyID]; d != nil {
		e.name = d.Name
	}
	e.letter = ""
	e.refreshLimits()
}

func (e *EnemyState) refreshLimits() {
	e.hp = min(e.hp, e.Param(ParamMaxHP))
	e.mp = min(e.mp, e.Param(ParamMaxMP))
}

func (e *EnemyState) StartAnimation(animationID int) {
	e.Animations = append(e.Animations, animationID)
}

// Name returns the display name including the disambiguating letter.
func (e *EnemyState) Name() string { return e.name + e.letter }

// EnemyID returns the current database id.
func (e *EnemyState) EnemyID() int { return e.enemyID }

// TroopState is an in-memory Troop.
type TroopState struct {
	members []*EnemyState
	troopID int
}

func (t *TroopState) Members() []Enemy {
	out := make([]Enemy, len(t.members))
	for i, e := range t.members {
		out[i] = e
	}
	return out
}

// MakeUniqueNames gives visible enemies sharing a name the letters A, B, C...
func (t *TroopState) MakeUniqueNames() {
	counts := make(map[string]int)
	for _, e := range t.members {
		if !e.hidden {
			counts[e.name]++
		}
	}
	next := make(map[string]int)
	for _, e := range t.members {
		if e.hidden || e.letter != "" || counts[e.name] < 2 {
			continue
		}
		for {
			letter := string(rune('A' + next[e.name]))
			next[e.name]++
			if !t.letterUsed(e.name, letter) {
				e.letter = letter
				break
			}
		}
	}
}

func (t *TroopState) letterUsed(name, letter string) bool {
	for _, e := range t.members {
		if e.name == name && e.letter == letter {
			return true
		}
	}
	return false
}

func (t *TroopState) setup(troopID int, data *TroopData, enemies map[int]*EnemyData) {
	t.troopID = troopID
	t.members = t.members[:0]
	if data == nil {
		return
	}
	for _, m := range data.Members {
		t.members = append(t.members, newEnemyState(enemies, m))
	}
	t.MakeUniqueNames()
}

func (t *TroopState) clear() {
	t.members = nil
	t.troopID = 0
}
