package interpreter

import (
	"fmt"

	"github.com/zurustar/evrun/pkg/opcode"
)

func init() {
	register(opcode.ConditionalBranch, cmdConditionalBranch)
	register(opcode.Else, simple(cmdElse))
	register(opcode.Loop, simple(func(*Interpreter, opcode.Params) {}))
	register(opcode.RepeatAbove, simple(cmdRepeatAbove))
	register(opcode.BreakLoop, simple(cmdBreakLoop))
	register(opcode.ExitEventProcessing, simple(cmdExitEventProcessing))
	register(opcode.CommonEvent, cmdCommonEvent)
	register(opcode.Label, simple(func(*Interpreter, opcode.Params) {}))
	register(opcode.JumpToLabel, simple(cmdJumpToLabel))
	register(opcode.When, simple(cmdWhen))
	register(opcode.WhenCancel, simple(cmdWhenCancel))
	register(opcode.IfWin, simple(battleResultBranch(0)))
	register(opcode.IfEscape, simple(battleResultBranch(1)))
	register(opcode.IfLose, simple(battleResultBranch(2)))
	register(opcode.Comment, simple(cmdComment))
}

func cmdConditionalBranch(in *Interpreter, p opcode.Params) (bool, error) {
	result := in.evaluateCondition(p)
	in.setBranch(in.indent, BoolBranch(result))
	if !result {
		in.skipBranch()
	}
	return true, nil
}

func cmdElse(in *Interpreter, _ opcode.Params) {
	if !in.Branch(in.indent).IsFalse() {
		in.skipBranch()
	}
}

// cmdRepeatAbove moves the cursor back to the loop head at the same indent.
func cmdRepeatAbove(in *Interpreter, _ opcode.Params) {
	for in.index > 0 {
		in.index--
		if in.list[in.index].Indent == in.indent {
			return
		}
	}
}

// cmdBreakLoop moves the cursor onto the RepeatAbove closing the innermost loop.
func cmdBreakLoop(in *Interpreter, _ opcode.Params) {
	depth := 0
	for in.index < len(in.list)-1 {
		in.index++
		switch in.list[in.index].Code {
		case opcode.Loop:
			depth++
		case opcode.RepeatAbove:
			if depth == 0 {
				return
			}
			depth--
		}
	}
}

func cmdExitEventProcessing(in *Interpreter, _ opcode.Params) {
	in.index = len(in.list)
}

func cmdCommonEvent(in *Interpreter, p opcode.Params) (bool, error) {
	ce := in.commonEvent(p.Int(0))
	if ce == nil {
		in.recoverError(ErrorMissingReference, fmt.Sprintf("common event %d not found", p.Int(0)), nil)
		return true, nil
	}
	eventID := 0
	if in.isOnCurrentMap() {
		eventID = in.eventID
	}
	if err := in.setupChild(ce.List, eventID); err != nil {
		return false, err
	}
	return true, nil
}

// cmdJumpToLabel repositions the cursor onto the matching label; the label
// itself is then stepped over as the command completes. A missing label
// falls through.
func cmdJumpToLabel(in *Interpreter, p opcode.Params) {
	name := p.String(0)
	for i, cmd := range in.list {
		if cmd.Code == opcode.Label && cmd.Parameters.String(0) == name {
			in.jumpTo(i)
			return
		}
	}
	in.recoverError(ErrorLabelNotFound, fmt.Sprintf("label %q not found", name), nil)
}

func cmdWhen(in *Interpreter, p opcode.Params) {
	if !in.Branch(in.indent).Equals(p.Int(0)) {
		in.skipBranch()
	}
}

// cmdWhenCancel runs the cancel branch only for negative choice results.
func cmdWhenCancel(in *Interpreter, _ opcode.Params) {
	if in.Branch(in.indent).numeric() >= 0 {
		in.skipBranch()
	}
}

func battleResultBranch(result int) func(in *Interpreter, p opcode.Params) {
	return func(in *Interpreter, _ opcode.Params) {
		if !in.Branch(in.indent).Equals(result) {
			in.skipBranch()
		}
	}
}

func cmdComment(in *Interpreter, p opcode.Params) {
	in.comments = []string{p.String(0)}
	for in.nextCode() == opcode.CommentLine {
		in.index++
		in.comments = append(in.comments, in.list[in.index].Parameters.String(0))
	}
}
