// Package scripting evaluates the inline script found in event data.
//
// Scripts run in a sandboxed Lua state: only the base, string, table and math
// libraries are opened, and file loading functions are removed. Four globals
// are bound per evaluation:
//
//	v  game variables, v[n] reads and v[n] = x writes variable n
//	s  game switches, s[n] reads and s[n] = true writes switch n
//	a  the subject battler (hp, mp, tp, mhp, mmp, atk, def, mat, mdf, agi, luk)
//	b  the target battler, same fields as a
//
// An expression is tried first; if it does not compile as an expression the
// source runs as a statement block and its return value, if any, is the result.
// The common operators of the editor's default script language (!==, !=, ===,
// &&, || and unary !) are accepted and rewritten to their Lua forms.
package scripting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	lua "github.com/yuin/gopher-lua"

	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/logger"
)

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 100 * time.Millisecond

// DefaultCacheSize is the number of compiled sources kept.
const DefaultCacheSize = 256

// removed lists base library functions the sandbox does not expose.
var removed = []string{"dofile", "loadfile", "load", "loadstring", "module", "require", "collectgarbage"}

// Evaluator is a game.Evaluator backed by one Lua state. It is safe for
// concurrent use; evaluations are serialized.
type Evaluator struct {
	mu        sync.Mutex
	vm        *lua.LState
	chunks    *lru.Cache[string, *lua.LFunction]
	cacheSize int
	timeout   time.Duration
	log       *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger; Lua print writes to it at debug level.
func WithLogger(log *slog.Logger) Option {
	return func(e *Evaluator) {
		e.log = log
	}
}

// WithTimeout bounds each evaluation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		e.timeout = d
	}
}

// WithCacheSize sets how many compiled sources are kept; the least recently
// used one is dropped first.
func WithCacheSize(n int) Option {
	return func(e *Evaluator) {
		e.cacheSize = n
	}
}

// New creates an evaluator with a fresh sandboxed state.
func New(opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		cacheSize: DefaultCacheSize,
		timeout:   DefaultTimeout,
		log:       logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	chunks, err := lru.New[string, *lua.LFunction](e.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create script cache: %w", err)
	}
	e.chunks = chunks

	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		if err := vm.CallByParam(lua.P{
			Fn:      vm.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("failed to open lua library %q: %w", lib.name, err)
		}
	}
	for _, name := range removed {
		vm.SetGlobal(name, lua.LNil)
	}
	vm.SetGlobal("print", vm.NewFunction(e.print))
	e.vm = vm
	return e, nil
}

// Close releases the Lua state.
func (e *Evaluator) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.vm != nil {
		e.vm.Close()
		e.vm = nil
	}
}

// Evaluate runs src with b bound and returns its result as a Go value: nil,
// bool, float64, string, []any or map[string]any.
func (e *Evaluator) Evaluate(src string, b game.Bindings) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.vm == nil {
		return nil, fmt.Errorf("evaluator is closed")
	}

	fn, err := e.compile(src)
	if err != nil {
		return nil, err
	}

	e.bind(b)
	defer e.unbind()

	if e.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		e.vm.SetContext(ctx)
		defer e.vm.RemoveContext()
	}

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return nil, fmt.Errorf("failed to evaluate script: %w", err)
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return fromLua(ret, 0), nil
}

// compile returns the cached chunk for src, compiling it as an expression or
// else as a block.
func (e *Evaluator) compile(src string) (*lua.LFunction, error) {
	if fn, ok := e.chunks.Get(src); ok {
		return fn, nil
	}
	code := translate(src)
	fn, err := e.vm.LoadString("return " + code)
	if err != nil {
		fn, err = e.vm.LoadString(code)
		if err != nil {
			return nil, fmt.Errorf("failed to compile script: %w", err)
		}
	}
	e.chunks.Add(src, fn)
	return fn, nil
}

func (e *Evaluator) bind(b game.Bindings) {
	vm := e.vm
	vm.SetGlobal("v", e.variablesTable(b.Variables))
	vm.SetGlobal("s", e.switchesTable(b.Switches))
	vm.SetGlobal("a", battlerTable(vm, b.Subject))
	vm.SetGlobal("b", battlerTable(vm, b.Target))
}

func (e *Evaluator) unbind() {
	for _, name := range []string{"v", "s", "a", "b"} {
		e.vm.SetGlobal(name, lua.LNil)
	}
}

// variablesTable returns a proxy table over vars.
func (e *Evaluator) variablesTable(vars game.Variables) lua.LValue {
	if vars == nil {
		return lua.LNil
	}
	vm := e.vm
	return proxy(vm,
		func(id int) lua.LValue { return lua.LNumber(vars.Value(id)) },
		func(id int, v lua.LValue) { vars.SetValue(id, int(lua.LVAsNumber(v))) },
	)
}

// switchesTable returns a proxy table over sw.
func (e *Evaluator) switchesTable(sw game.Switches) lua.LValue {
	if sw == nil {
		return lua.LNil
	}
	vm := e.vm
	return proxy(vm,
		func(id int) lua.LValue { return lua.LBool(sw.Value(id)) },
		func(id int, v lua.LValue) { sw.SetValue(id, lua.LVAsBool(v)) },
	)
}

// proxy builds an empty table whose integer indexing is forwarded to get and set.
func proxy(vm *lua.LState, get func(int) lua.LValue, set func(int, lua.LValue)) *lua.LTable {
	t := vm.NewTable()
	mt := vm.NewTable()
	mt.RawSetString("__index", vm.NewFunction(func(L *lua.LState) int {
		L.Push(get(L.CheckInt(2)))
		return 1
	}))
	mt.RawSetString("__newindex", vm.NewFunction(func(L *lua.LState) int {
		set(L.CheckInt(2), L.CheckAny(3))
		return 0
	}))
	vm.SetMetatable(t, mt)
	return t
}

// battlerStats is the part of a battler the script bindings expose.
type battlerStats interface {
	HP() int
	MP() int
	TP() int
	Param(id int) int
}

var paramNames = []string{"mhp", "mmp", "atk", "def", "mat", "mdf", "agi", "luk"}

// battlerTable snapshots a battler's stats into a table.
func battlerTable(vm *lua.LState, v any) lua.LValue {
	st, ok := v.(battlerStats)
	if !ok {
		return toLua(vm, v)
	}
	t := vm.NewTable()
	t.RawSetString("hp", lua.LNumber(st.HP()))
	t.RawSetString("mp", lua.LNumber(st.MP()))
	t.RawSetString("tp", lua.LNumber(st.TP()))
	for i, name := range paramNames {
		t.RawSetString(name, lua.LNumber(st.Param(i)))
	}
	return t
}

func (e *Evaluator) print(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	e.log.Debug("script print", "text", strings.Join(parts, "\t"))
	return 0
}
