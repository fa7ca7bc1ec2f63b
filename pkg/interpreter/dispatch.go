package interpreter

import "github.com/zurustar/evrun/pkg/opcode"

// handler executes one command. Returning false leaves the cursor on the
// command and ends the tick so it is retried next frame. A returned error is fatal.
type handler func(in *Interpreter, p opcode.Params) (bool, error)

const maxCode = 1000

// handlers is indexed by command code; nil entries are no-ops.
var handlers [maxCode]handler

func register(code opcode.Code, h handler) {
	if code < 0 || int(code) >= maxCode {
		panic("interpreter: command code out of range: " + code.String())
	}
	if handlers[code] != nil {
		panic("interpreter: duplicate handler for code " + code.String())
	}
	handlers[code] = h
}

func lookup(code opcode.Code) handler {
	if code < 0 || int(code) >= maxCode {
		return nil
	}
	return handlers[code]
}

// Handles reports whether code has a handler. Codes without one are skipped
// as no-ops.
func Handles(code opcode.Code) bool {
	return lookup(code) != nil
}

// simple adapts a handler that always continues.
func simple(f func(in *Interpreter, p opcode.Params)) handler {
	return func(in *Interpreter, p opcode.Params) (bool, error) {
		f(in, p)
		return true, nil
	}
}
