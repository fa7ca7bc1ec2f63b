package opcode

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// Params is the operand list of a command.
// Values decoded from JSON arrive as float64, string, bool, []any and map[string]any;
// values built in Go may also be ints, AudioFile, MoveRoute or nested Params.
// Accessors never fail: a missing or mistyped operand reads as the zero value.
type Params []any

// Len returns the number of operands.
func (p Params) Len() int {
	return len(p)
}

// Value returns the raw operand at i, or nil when out of range.
func (p Params) Value(i int) any {
	if i < 0 || i >= len(p) {
		return nil
	}
	return p[i]
}

// Has reports whether operand i is present and non-nil.
func (p Params) Has(i int) bool {
	return p.Value(i) != nil
}

// Int returns operand i as an int.
func (p Params) Int(i int) int {
	return ToInt(p.Value(i))
}

// Float returns operand i as a float64.
func (p Params) Float(i int) float64 {
	return ToFloat(p.Value(i))
}

// Bool returns operand i as a bool.
func (p Params) Bool(i int) bool {
	switch v := p.Value(i).(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case nil:
		return false
	default:
		return ToFloat(v) != 0
	}
}

// String returns operand i as a string.
func (p Params) String(i int) string {
	switch v := p.Value(i).(type) {
	case string:
		return v
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Sub returns operand i as a nested operand list.
func (p Params) Sub(i int) Params {
	switch v := p.Value(i).(type) {
	case Params:
		return v
	case []any:
		return Params(v)
	case []string:
		out := make(Params, len(v))
		for j, s := range v {
			out[j] = s
		}
		return out
	case []int:
		out := make(Params, len(v))
		for j, n := range v {
			out[j] = n
		}
		return out
	}
	return nil
}

// Strings returns operand i as a string slice.
func (p Params) Strings(i int) []string {
	sub := p.Sub(i)
	out := make([]string, len(sub))
	for j := range sub {
		out[j] = sub.String(j)
	}
	return out
}

// Map returns operand i as an object.
func (p Params) Map(i int) map[string]any {
	if m, ok := p.Value(i).(map[string]any); ok {
		return m
	}
	return nil
}

// Tone returns operand i as an RGBA-like quadruple (tone or flash color).
func (p Params) Tone(i int) [4]int {
	var out [4]int
	if t, ok := p.Value(i).([4]int); ok {
		return t
	}
	sub := p.Sub(i)
	for j := 0; j < 4 && j < len(sub); j++ {
		out[j] = sub.Int(j)
	}
	return out
}

// AudioFile describes a sound reference in command data.
type AudioFile struct {
	Name   string `json:"name"`
	Volume int    `json:"volume"`
	Pitch  int    `json:"pitch"`
	Pan    int    `json:"pan"`
}

// Audio returns operand i as an AudioFile.
func (p Params) Audio(i int) AudioFile {
	switch v := p.Value(i).(type) {
	case AudioFile:
		return v
	case *AudioFile:
		if v != nil {
			return *v
		}
	case map[string]any:
		return AudioFile{
			Name:   fmt.Sprint(orEmpty(v["name"])),
			Volume: ToInt(v["volume"]),
			Pitch:  ToInt(v["pitch"]),
			Pan:    ToInt(v["pan"]),
		}
	}
	return AudioFile{}
}

// MoveCommand is one step of a move route.
type MoveCommand struct {
	Code       int    `json:"code"`
	Parameters Params `json:"parameters"`
}

// MoveRoute is a forced character route.
type MoveRoute struct {
	List      []MoveCommand `json:"list"`
	Repeat    bool          `json:"repeat"`
	Skippable bool          `json:"skippable"`
	Wait      bool          `json:"wait"`
}

// Route returns operand i as a MoveRoute.
func (p Params) Route(i int) MoveRoute {
	switch v := p.Value(i).(type) {
	case MoveRoute:
		return v
	case *MoveRoute:
		if v != nil {
			return *v
		}
	case map[string]any:
		route := MoveRoute{
			Repeat:    Params{v["repeat"]}.Bool(0),
			Skippable: Params{v["skippable"]}.Bool(0),
			Wait:      Params{v["wait"]}.Bool(0),
		}
		list, _ := v["list"].([]any)
		for _, raw := range list {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			params, _ := m["parameters"].([]any)
			route.List = append(route.List, MoveCommand{Code: ToInt(m["code"]), Parameters: params})
		}
		return route
	}
	return MoveRoute{}
}

// ToInt converts a loosely typed value to an int, truncating toward zero.
// Non-numeric values read as 0.
func ToInt(v any) int {
	f := ToFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// ToFloat converts a loosely typed value to a float64.
func ToFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func orEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}

// ParseList decodes a command list from its JSON form.
func ParseList(data []byte) (List, error) {
	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode command list: %w", err)
	}
	return list, nil
}
