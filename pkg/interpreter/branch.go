package interpreter

import (
	"strconv"

	"github.com/zurustar/evrun/pkg/opcode"
)

// BranchValue is one entry of the branch register: null, a boolean or an integer.
// The zero value is null.
type BranchValue struct {
	set   bool
	isInt bool
	b     bool
	n     int
}

// NullBranch returns the null branch value.
func NullBranch() BranchValue { return BranchValue{} }

// BoolBranch returns a boolean branch value.
func BoolBranch(b bool) BranchValue { return BranchValue{set: true, b: b} }

// IntBranch returns an integer branch value.
func IntBranch(n int) BranchValue { return BranchValue{set: true, isInt: true, n: n} }

// IsNull reports whether the value is null.
func (v BranchValue) IsNull() bool { return !v.set }

// IsFalse reports whether the value is exactly boolean false.
func (v BranchValue) IsFalse() bool { return v.set && !v.isInt && !v.b }

// Equals reports whether the value is the integer n.
func (v BranchValue) Equals(n int) bool { return v.set && v.isInt && v.n == n }

// Int returns the integer and whether the value holds one.
func (v BranchValue) Int() (int, bool) { return v.n, v.set && v.isInt }

// Bool returns the boolean and whether the value holds one.
func (v BranchValue) Bool() (bool, bool) { return v.b, v.set && !v.isInt }

// numeric is the value as compared numerically; null and false read as 0, true as 1.
func (v BranchValue) numeric() int {
	switch {
	case !v.set:
		return 0
	case v.isInt:
		return v.n
	case v.b:
		return 1
	}
	return 0
}

func (v BranchValue) String() string {
	switch {
	case !v.set:
		return "null"
	case v.isInt:
		return strconv.Itoa(v.n)
	}
	return strconv.FormatBool(v.b)
}

// Branch returns the register value at indent.
func (in *Interpreter) Branch(indent int) BranchValue {
	return in.branch[indent]
}

func (in *Interpreter) setBranch(indent int, v BranchValue) {
	if v.IsNull() {
		delete(in.branch, indent)
		return
	}
	in.branch[indent] = v
}

// skipBranch advances the cursor while the next record is nested deeper than
// the current indent, leaving it on the last record of the block.
func (in *Interpreter) skipBranch() {
	for in.index+1 < len(in.list) && in.list[in.index+1].Indent > in.indent {
		in.index++
	}
}

// SkipToEndOfBlock runs the block-skip primitive over list from (index, indent)
// and returns the index of the first record after the block, or len(list).
func SkipToEndOfBlock(list opcode.List, index, indent int) int {
	in := &Interpreter{list: list, index: index, indent: indent}
	in.skipBranch()
	return in.index + 1
}

// jumpTo repositions the cursor, clearing the branch register at every
// indent band crossed between the old and new position.
func (in *Interpreter) jumpTo(index int) {
	last := in.index
	start, end := min(index, last), max(index, last)
	indent := in.indent
	for i := start; i <= end && i < len(in.list); i++ {
		if next := in.list[i].Indent; next != indent {
			in.setBranch(indent, NullBranch())
			indent = next
		}
	}
	in.index = index
}

// ResultCallback returns a callback that stores a sub-UI result in the branch
// register at the indent current when the callback was created.
func (in *Interpreter) ResultCallback() func(n int) {
	indent := in.indent
	return func(n int) {
		in.setBranch(indent, IntBranch(n))
	}
}
