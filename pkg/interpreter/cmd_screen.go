package interpreter

import (
	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/opcode"
)

func init() {
	register(opcode.FadeoutScreen, fadeScreen(func(s game.Screen) { s.StartFadeOut(FadeSpeed) }))
	register(opcode.FadeinScreen, fadeScreen(func(s game.Screen) { s.StartFadeIn(FadeSpeed) }))
	register(opcode.TintScreen, simple(func(in *Interpreter, p opcode.Params) {
		if in.screen() == nil {
			return
		}
		in.screen().StartTint(p.Tone(0), p.Int(1))
		if p.Bool(2) {
			in.wait(p.Int(1))
		}
	}))
	register(opcode.FlashScreen, simple(func(in *Interpreter, p opcode.Params) {
		if in.screen() == nil {
			return
		}
		in.screen().StartFlash(p.Tone(0), p.Int(1))
		if p.Bool(2) {
			in.wait(p.Int(1))
		}
	}))
	register(opcode.ShakeScreen, simple(func(in *Interpreter, p opcode.Params) {
		if in.screen() == nil {
			return
		}
		in.screen().StartShake(p.Int(0), p.Int(1), p.Int(2))
		if p.Bool(3) {
			in.wait(p.Int(2))
		}
	}))
	register(opcode.Wait, simple(func(in *Interpreter, p opcode.Params) {
		in.wait(p.Int(0))
	}))
	register(opcode.ShowPicture, simple(cmdShowPicture))
	register(opcode.MovePicture, simple(cmdMovePicture))
	register(opcode.RotatePicture, simple(func(in *Interpreter, p opcode.Params) {
		if in.screen() != nil {
			in.screen().RotatePicture(p.Int(0), p.Int(1))
		}
	}))
	register(opcode.TintPicture, simple(func(in *Interpreter, p opcode.Params) {
		if in.screen() == nil {
			return
		}
		in.screen().TintPicture(p.Int(0), p.Tone(1), p.Int(2))
		if p.Bool(3) {
			in.wait(p.Int(2))
		}
	}))
	register(opcode.ErasePicture, simple(func(in *Interpreter, p opcode.Params) {
		if in.screen() != nil {
			in.screen().ErasePicture(p.Int(0))
		}
	}))
	register(opcode.SetWeather, simple(func(in *Interpreter, p opcode.Params) {
		if in.inBattle() || in.screen() == nil {
			return
		}
		in.screen().ChangeWeather(p.Int(0), p.Int(1), p.Int(2))
		if p.Bool(3) {
			in.wait(p.Int(2))
		}
	}))
}

func (in *Interpreter) screen() game.Screen {
	return in.ctx.Screen
}

// fadeScreen starts a fade once no message is showing and waits it out.
func fadeScreen(start func(game.Screen)) handler {
	return func(in *Interpreter, _ opcode.Params) (bool, error) {
		if in.screen() == nil {
			return true, nil
		}
		if in.messageBusy() {
			return false, nil
		}
		start(in.screen())
		in.wait(FadeSpeed)
		return true, nil
	}
}

// picture reads a picture placement; the origin sits at offset first and the
// coordinates are direct or variable-held.
func (in *Interpreter) picture(p opcode.Params, name string, first int) game.Picture {
	x, y := p.Int(first+2), p.Int(first+3)
	if p.Int(first+1) != 0 {
		x, y = in.variable(x), in.variable(y)
	}
	return game.Picture{
		Name:      name,
		Origin:    p.Int(first),
		X:         x,
		Y:         y,
		ScaleX:    p.Int(first + 4),
		ScaleY:    p.Int(first + 5),
		Opacity:   p.Int(first + 6),
		BlendMode: p.Int(first + 7),
	}
}

func cmdShowPicture(in *Interpreter, p opcode.Params) {
	if in.screen() != nil {
		in.screen().ShowPicture(p.Int(0), in.picture(p, p.String(1), 2))
	}
}

func cmdMovePicture(in *Interpreter, p opcode.Params) {
	if in.screen() == nil {
		return
	}
	in.screen().MovePicture(p.Int(0), in.picture(p, "", 2), p.Int(10))
	if p.Bool(11) {
		in.wait(p.Int(10))
	}
}
