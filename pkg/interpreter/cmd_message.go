package interpreter

import "github.com/zurustar/evrun/pkg/opcode"

func init() {
	register(opcode.ShowText, cmdShowText)
	register(opcode.ShowChoices, cmdShowChoices)
	register(opcode.InputNumber, cmdInputNumber)
	register(opcode.SelectItem, cmdSelectItem)
	register(opcode.ShowScrollingText, cmdShowScrollingText)
}

// cmdShowText fills the message window with the following text lines and
// folds a directly following choice, number or item prompt into it.
// It retries while the window is still busy.
func cmdShowText(in *Interpreter, p opcode.Params) (bool, error) {
	msg := in.ctx.Message
	if msg == nil || msg.IsBusy() {
		return msg == nil, nil
	}
	msg.SetFaceImage(p.String(0), p.Int(1))
	msg.SetBackground(p.Int(2))
	msg.SetPositionType(p.Int(3))
	msg.SetSpeakerName(p.String(4))
	for in.nextCode() == opcode.TextLine {
		in.index++
		msg.Add(in.list[in.index].Parameters.String(0))
	}
	switch in.nextCode() {
	case opcode.ShowChoices:
		in.index++
		in.setupChoices(in.list[in.index].Parameters)
	case opcode.InputNumber:
		in.index++
		in.setupNumInput(in.list[in.index].Parameters)
	case opcode.SelectItem:
		in.index++
		in.setupItemChoice(in.list[in.index].Parameters)
	}
	in.setWaitMode(WaitMessage)
	return true, nil
}

func cmdShowChoices(in *Interpreter, p opcode.Params) (bool, error) {
	return in.messageCommand(func() { in.setupChoices(p) })
}

func cmdInputNumber(in *Interpreter, p opcode.Params) (bool, error) {
	return in.messageCommand(func() { in.setupNumInput(p) })
}

func cmdSelectItem(in *Interpreter, p opcode.Params) (bool, error) {
	return in.messageCommand(func() { in.setupItemChoice(p) })
}

func cmdShowScrollingText(in *Interpreter, p opcode.Params) (bool, error) {
	return in.messageCommand(func() {
		msg := in.ctx.Message
		msg.SetScroll(p.Int(0), p.Bool(1))
		for in.nextCode() == opcode.ScrollingTextLine {
			in.index++
			msg.Add(in.list[in.index].Parameters.String(0))
		}
	})
}

// messageCommand runs setup once the window is free and waits for the window
// to close.
func (in *Interpreter) messageCommand(setup func()) (bool, error) {
	if in.ctx.Message == nil {
		return true, nil
	}
	if in.ctx.Message.IsBusy() {
		return false, nil
	}
	setup()
	in.setWaitMode(WaitMessage)
	return true, nil
}

func (in *Interpreter) setupChoices(p opcode.Params) {
	choices := p.Strings(0)
	cancelType := p.Int(1)
	defaultType := 0
	if p.Len() > 2 {
		defaultType = p.Int(2)
	}
	positionType := 2
	if p.Len() > 3 {
		positionType = p.Int(3)
	}
	background := 0
	if p.Len() > 4 {
		background = p.Int(4)
	}
	if cancelType >= len(choices) {
		cancelType = -2
	}
	msg := in.ctx.Message
	msg.SetChoices(choices, defaultType, cancelType)
	msg.SetChoiceBackground(background)
	msg.SetChoicePositionType(positionType)
	msg.SetChoiceCallback(in.ResultCallback())
}

func (in *Interpreter) setupNumInput(p opcode.Params) {
	in.ctx.Message.SetNumberInput(p.Int(0), p.Int(1))
}

func (in *Interpreter) setupItemChoice(p opcode.Params) {
	itemType := p.Int(1)
	if itemType == 0 {
		itemType = 2
	}
	in.ctx.Message.SetItemChoice(p.Int(0), itemType)
}
