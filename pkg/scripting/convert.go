package scripting

import (
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/zurustar/evrun/pkg/opcode"
)

// maxDepth bounds table conversion so cyclic tables terminate.
const maxDepth = 8

// toLua converts a plain Go value into a Lua value.
func toLua(vm *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case int, int64, int32, float32, float64:
		return lua.LNumber(opcode.ToFloat(x))
	case []any:
		t := vm.NewTable()
		for _, item := range x {
			t.Append(toLua(vm, item))
		}
		return t
	case map[string]any:
		t := vm.NewTable()
		for k, item := range x {
			t.RawSetString(k, toLua(vm, item))
		}
		return t
	}
	return lua.LNil
}

// fromLua converts a Lua value into a Go value. Tables with only a 1..n
// sequence become []any, other tables map[string]any keyed by the string form
// of their keys.
func fromLua(v lua.LValue, depth int) any {
	switch x := v.(type) {
	case lua.LBool:
		return bool(x)
	case lua.LNumber:
		return float64(x)
	case lua.LString:
		return string(x)
	case *lua.LTable:
		if depth >= maxDepth {
			return nil
		}
		if n := x.Len(); n > 0 && countKeys(x) == n {
			out := make([]any, n)
			for i := 1; i <= n; i++ {
				out[i-1] = fromLua(x.RawGetInt(i), depth+1)
			}
			return out
		}
		out := make(map[string]any)
		x.ForEach(func(k, item lua.LValue) {
			out[k.String()] = fromLua(item, depth+1)
		})
		return out
	}
	return nil
}

func countKeys(t *lua.LTable) int {
	n := 0
	t.ForEach(func(lua.LValue, lua.LValue) { n++ })
	return n
}

// operators maps the editor script operators to Lua, longest first.
var operators = []struct{ from, to string }{
	{"!==", "~="},
	{"===", "=="},
	{"!=", "~="},
	{"&&", " and "},
	{"||", " or "},
	{"!", " not "},
}

// translate rewrites editor script operators outside string literals.
func translate(src string) string {
	if !strings.ContainsAny(src, "!=&|") {
		return src
	}
	var sb strings.Builder
	sb.Grow(len(src))
	var quote byte
	for i := 0; i < len(src); {
		c := src[i]
		if quote != 0 {
			sb.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(src) {
					sb.WriteByte(src[i+1])
					i++
				}
			case quote:
				quote = 0
			}
			i++
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			sb.WriteByte(c)
			i++
			continue
		}
		matched := false
		for _, op := range operators {
			if strings.HasPrefix(src[i:], op.from) {
				sb.WriteString(op.to)
				i += len(op.from)
				matched = true
				break
			}
		}
		if !matched {
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}
