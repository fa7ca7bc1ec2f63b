package interpreter

import (
	"github.com/zurustar/evrun/pkg/opcode"
)

func init() {
	register(opcode.TransferPlayer, cmdTransferPlayer)
	register(opcode.SetVehicleLocation, simple(cmdSetVehicleLocation))
	register(opcode.SetEventLocation, simple(cmdSetEventLocation))
	register(opcode.ScrollMap, cmdScrollMap)
	register(opcode.SetMovementRoute, simple(cmdSetMovementRoute))
	register(opcode.GetOnOffVehicle, simple(func(in *Interpreter, _ opcode.Params) {
		if in.ctx.Player != nil {
			in.ctx.Player.GetOnOffVehicle()
		}
	}))
	register(opcode.ChangeTransparency, simple(func(in *Interpreter, p opcode.Params) {
		if in.ctx.Player != nil {
			in.ctx.Player.SetTransparent(p.Int(0) == 0)
		}
	}))
	register(opcode.ShowAnimation, simple(cmdShowAnimation))
	register(opcode.ShowBalloon, simple(cmdShowBalloon))
	register(opcode.EraseEvent, simple(cmdEraseEvent))
	register(opcode.ChangePlayerFollowers, simple(cmdChangePlayerFollowers))
	register(opcode.GatherFollowers, simple(cmdGatherFollowers))

	register(opcode.ChangeMapNameDisplay, simple(func(in *Interpreter, p opcode.Params) {
		if in.ctx.Map == nil {
			return
		}
		if p.Int(0) == 0 {
			in.ctx.Map.EnableNameDisplay()
		} else {
			in.ctx.Map.DisableNameDisplay()
		}
	}))
	register(opcode.ChangeTileset, cmdChangeTileset)
	register(opcode.ChangeBattleBack, simple(func(in *Interpreter, p opcode.Params) {
		if in.ctx.Map != nil {
			in.ctx.Map.ChangeBattleback(p.String(0), p.String(1))
		}
	}))
	register(opcode.ChangeParallax, simple(func(in *Interpreter, p opcode.Params) {
		if in.ctx.Map != nil {
			in.ctx.Map.ChangeParallax(p.String(0), p.Bool(1), p.Bool(2), p.Int(3), p.Int(4))
		}
	}))
	register(opcode.GetLocationInfo, simple(cmdGetLocationInfo))

	register(opcode.ChangeVehicleBGM, simple(func(in *Interpreter, p opcode.Params) {
		if in.ctx.Map == nil {
			return
		}
		if v := in.ctx.Map.Vehicle(p.Int(0)); v != nil {
			v.SetBGM(p.Audio(1))
		}
	}))
	register(opcode.ChangeVehicleImage, simple(func(in *Interpreter, p opcode.Params) {
		if in.ctx.Map == nil {
			return
		}
		if v := in.ctx.Map.Vehicle(p.Int(0)); v != nil {
			v.SetImage(p.String(1), p.Int(2))
		}
	}))
}

// cmdTransferPlayer reserves a transfer once no message is showing and waits
// for it to complete. Ignored in battle.
func cmdTransferPlayer(in *Interpreter, p opcode.Params) (bool, error) {
	if in.ctx.Player == nil {
		return true, nil
	}
	if in.inBattle() || in.messageBusy() {
		return false, nil
	}
	mapID, x, y := in.location(p.Int(0), p, 1)
	in.ctx.Player.ReserveTransfer(mapID, x, y, p.Int(4), p.Int(5))
	in.setWaitMode(WaitTransfer)
	return true, nil
}

func cmdSetVehicleLocation(in *Interpreter, p opcode.Params) {
	if in.ctx.Map == nil {
		return
	}
	mapID, x, y := in.location(p.Int(1), p, 2)
	if v := in.ctx.Map.Vehicle(p.Int(0)); v != nil {
		v.SetLocation(mapID, x, y)
	}
}

func cmdSetEventLocation(in *Interpreter, p opcode.Params) {
	c := in.characterFor(p.Int(0))
	if c == nil {
		return
	}
	switch p.Int(1) {
	case 0:
		c.Locate(p.Int(2), p.Int(3))
	case 1:
		c.Locate(in.variable(p.Int(2)), in.variable(p.Int(3)))
	default:
		if other := in.characterFor(p.Int(2)); other != nil {
			c.Swap(other)
		}
	}
	if d := p.Int(4); d > 0 {
		c.SetDirection(d)
	}
}

func cmdScrollMap(in *Interpreter, p opcode.Params) (bool, error) {
	if in.inBattle() || in.ctx.Map == nil {
		return true, nil
	}
	if in.ctx.Map.IsScrolling() {
		in.setWaitMode(WaitScroll)
		return false, nil
	}
	in.ctx.Map.StartScroll(p.Int(0), p.Int(1), p.Int(2))
	return true, nil
}

func cmdSetMovementRoute(in *Interpreter, p opcode.Params) {
	if in.ctx.Map != nil {
		in.ctx.Map.RefreshIfNeeded()
	}
	in.character = in.characterFor(p.Int(0))
	if in.character == nil {
		return
	}
	route := p.Route(1)
	in.character.ForceMoveRoute(route)
	if route.Wait {
		in.setWaitMode(WaitRoute)
	}
}

func cmdShowAnimation(in *Interpreter, p opcode.Params) {
	in.character = in.characterFor(p.Int(0))
	if in.character == nil {
		return
	}
	in.character.RequestAnimation(p.Int(1))
	if p.Bool(2) {
		in.setWaitMode(WaitAnimation)
	}
}

func cmdShowBalloon(in *Interpreter, p opcode.Params) {
	in.character = in.characterFor(p.Int(0))
	if in.character == nil {
		return
	}
	in.character.RequestBalloon(p.Int(1))
	if p.Bool(2) {
		in.setWaitMode(WaitBalloon)
	}
}

func cmdEraseEvent(in *Interpreter, _ opcode.Params) {
	if in.isOnCurrentMap() && in.eventID > 0 {
		in.ctx.Map.EraseEvent(in.eventID)
	}
}

func cmdChangePlayerFollowers(in *Interpreter, p opcode.Params) {
	if in.ctx.Player == nil {
		return
	}
	if p.Int(0) == 0 {
		in.ctx.Player.ShowFollowers()
	} else {
		in.ctx.Player.HideFollowers()
	}
	in.ctx.Player.Refresh()
}

func cmdGatherFollowers(in *Interpreter, _ opcode.Params) {
	if in.inBattle() || in.ctx.Player == nil {
		return
	}
	in.ctx.Player.GatherFollowers()
	in.setWaitMode(WaitGather)
}

// cmdChangeTileset requests the tileset images and applies the tileset once
// they are loaded, waiting on the image loader meanwhile.
func cmdChangeTileset(in *Interpreter, p opcode.Params) (bool, error) {
	if in.ctx.Map == nil {
		return true, nil
	}
	if in.ctx.Images != nil {
		in.ctx.Images.RequestTileset(p.Int(0))
		if !in.ctx.Images.IsReady() {
			in.setWaitMode(WaitImage)
			return false, nil
		}
	}
	in.ctx.Map.ChangeTileset(p.Int(0))
	return true, nil
}

// Location info kinds.
const (
	infoTerrainTag = 0
	infoEventID    = 1
	infoTileLayer0 = 2
	infoTileLayer3 = 5
)

func cmdGetLocationInfo(in *Interpreter, p opcode.Params) {
	if in.ctx.Map == nil || in.ctx.Variables == nil {
		return
	}
	var x, y int
	switch p.Int(2) {
	case 0:
		x, y = p.Int(3), p.Int(4)
	case 1:
		x, y = in.variable(p.Int(3)), in.variable(p.Int(4))
	default:
		c := in.characterFor(p.Int(3))
		if c == nil {
			in.ctx.Variables.SetValue(p.Int(0), 0)
			return
		}
		x, y = c.X(), c.Y()
	}
	m := in.ctx.Map
	var value int
	switch kind := p.Int(1); {
	case kind == infoTerrainTag:
		value = m.TerrainTag(x, y)
	case kind == infoEventID:
		value = m.EventIDXY(x, y)
	case kind >= infoTileLayer0 && kind <= infoTileLayer3:
		value = m.TileID(x, y, kind-infoTileLayer0)
	default:
		value = m.RegionID(x, y)
	}
	in.ctx.Variables.SetValue(p.Int(0), value)
}
