package engine

import "github.com/zurustar/evrun/pkg/game"

// activePage returns the last page of ev whose conditions hold, or nil.
func (e *Engine) activePage(ev *game.EventState) *game.EventPage {
	pages := ev.Data().Pages
	for i := len(pages) - 1; i >= 0; i-- {
		if e.pageMet(ev.ID(), &pages[i].Conditions) {
			return &pages[i]
		}
	}
	return nil
}

func (e *Engine) pageMet(eventID int, c *game.PageConditions) bool {
	w := e.world
	if c.Switch1Valid && !w.Switches.Value(c.Switch1ID) {
		return false
	}
	if c.Switch2Valid && !w.Switches.Value(c.Switch2ID) {
		return false
	}
	if c.VariableValid && w.Variables.Value(c.VariableID) < c.VariableValue {
		return false
	}
	if c.SelfSwitchValid {
		key := game.SelfSwitchKey{MapID: w.Map.MapID(), EventID: eventID, Channel: c.SelfSwitchCh}
		if !w.SelfSwitches.Value(key) {
			return false
		}
	}
	if c.ItemValid && !w.Party.HasItem(game.KindItem, c.ItemID, false) {
		return false
	}
	if c.ActorValid && !e.inParty(c.ActorID) {
		return false
	}
	return true
}

func (e *Engine) inParty(actorID int) bool {
	for _, id := range e.world.Party.MemberIDs() {
		if id == actorID {
			return true
		}
	}
	return false
}

// troopPageMet checks a troop page at battle start, when the turn count is 0.
func (e *Engine) troopPageMet(c *game.TroopConditions) bool {
	w := e.world
	if !c.TurnEnding && !c.TurnValid && !c.EnemyValid && !c.ActorValid && !c.SwitchValid {
		return false
	}
	if c.TurnEnding {
		return false
	}
	if c.TurnValid && (c.TurnA != 0 || c.TurnB != 0) {
		return false
	}
	if c.EnemyValid {
		members := w.Troop.Members()
		if c.EnemyIndex < 0 || c.EnemyIndex >= len(members) {
			return false
		}
		if hpRate(members[c.EnemyIndex]) > c.EnemyHP {
			return false
		}
	}
	if c.ActorValid {
		if !e.inParty(c.ActorID) {
			return false
		}
		a := w.Actors.Actor(c.ActorID)
		if a == nil || hpRate(a) > c.ActorHP {
			return false
		}
	}
	if c.SwitchValid && !w.Switches.Value(c.SwitchID) {
		return false
	}
	return true
}

// hpRate returns b's HP as a percentage of its max HP.
func hpRate(b game.Battler) int {
	mhp := b.Param(0)
	if mhp <= 0 {
		return 0
	}
	return b.HP() * 100 / mhp
}
