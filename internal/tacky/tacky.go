// Package tacky translates the AST into a linear three-address
// intermediate representation. Temporaries and labels are drawn from
// monotonic counters threaded explicitly through a Context value, so
// that lowering is deterministic and, in the future, re-entrant across
// multiple functions.
package tacky

import "fmt"

// Val is either a literal Constant or a Var naming a temporary.
type Val interface {
	valNode()
}

// Constant is an immediate 32-bit value.
type Constant struct {
	Value int32
}

func (Constant) valNode() {}

// Var names a temporary created by the lowering context.
type Var struct {
	Name string
}

func (Var) valNode() {}

// Label names a jump target; every Jump/JumpIfZero/JumpIfNotZero
// target must appear exactly once as a Label instruction in the same
// function.
type Label string

// UnaryOp is the non-logical unary operator set (LogicalNot never
// appears here: `!x` is lowered to a Binary(Equal, x, 0) instruction).
type UnaryOp int

const (
	Complement UnaryOp = iota
	Negate
)

// BinaryOp covers arithmetic, bitwise, shift and relational operators.
// LogicalAnd/LogicalOr never appear in TAC: they are expanded into
// branches at lowering time.
type BinaryOp int

const (
	Add BinaryOp = iota
	Subtract
	Multiply
	Divide
	Remainder
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	ShiftLeft
	ShiftRight
	Equal
	NotEqual
	LessThan
	LessOrEqual
	GreaterThan
	GreaterOrEqual
)

// IsRelational reports whether op produces a 0/1 comparison result.
func (op BinaryOp) IsRelational() bool {
	switch op {
	case Equal, NotEqual, LessThan, LessOrEqual, GreaterThan, GreaterOrEqual:
		return true
	default:
		return false
	}
}

// Instruction is the sum type of TAC instructions.
type Instruction interface {
	instrNode()
}

// Return ends the function, returning Val.
type Return struct {
	Val Val
}

func (Return) instrNode() {}

// Unary computes Dst = op(Src).
type Unary struct {
	Op  UnaryOp
	Src Val
	Dst Var
}

func (Unary) instrNode() {}

// Binary computes Dst = Src1 op Src2.
type Binary struct {
	Op         BinaryOp
	Src1, Src2 Val
	Dst        Var
}

func (Binary) instrNode() {}

// Copy assigns Dst = Src.
type Copy struct {
	Src Val
	Dst Var
}

func (Copy) instrNode() {}

// Jump transfers control to Target unconditionally.
type Jump struct {
	Target Label
}

func (Jump) instrNode() {}

// JumpIfZero transfers control to Target when Cond == 0.
type JumpIfZero struct {
	Cond   Val
	Target Label
}

func (JumpIfZero) instrNode() {}

// JumpIfNotZero transfers control to Target when Cond != 0.
type JumpIfNotZero struct {
	Cond   Val
	Target Label
}

func (JumpIfNotZero) instrNode() {}

// LabelInstr marks a jump target.
type LabelInstr struct {
	Name Label
}

func (LabelInstr) instrNode() {}

// Function is one function body lowered to a flat instruction list.
type Function struct {
	Name string
	Body []Instruction
}

// Program is the root of the IR: exactly one function.
type Program struct {
	Function Function
}

// Context holds the monotonic counters shared across lowering one
// function body. Its lifetime is bounded by a single compilation.
type Context struct {
	tempCounter   int
	labelCounters map[string]int
}

// NewContext returns a fresh, zeroed lowering context.
func NewContext() *Context {
	return &Context{labelCounters: make(map[string]int)}
}

// FreshTemp allocates a new uniquely-named temporary, e.g. "t.1".
func (c *Context) FreshTemp() Var {
	c.tempCounter++
	return Var{Name: fmt.Sprintf("t.%d", c.tempCounter)}
}

// FreshLabel allocates a new uniquely-named label within the given
// namespace, e.g. FreshLabel("and_false") -> "and_false.1".
func (c *Context) FreshLabel(namespace string) Label {
	c.labelCounters[namespace]++
	return Label(fmt.Sprintf("%s.%d", namespace, c.labelCounters[namespace]))
}
