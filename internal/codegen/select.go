package codegen

import (
	"fmt"

	"github.com/arnvindr/subcc/internal/tacky"
)

// InvariantError reports an assembly-stage invariant violation: a
// shape the selection, pseudo-to-stack, or legalisation pass does not
// expect from a well-formed predecessor representation.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "codegen: invariant violation: " + e.Message
}

// Select lowers ir into an abstract x86-64 instruction stream. Every
// tacky.Var becomes a Pseudo operand; a later pass replaces those with
// Stack operands.
func Select(ir *tacky.Program) (*Program, error) {
	var body []Instruction
	for _, instr := range ir.Function.Body {
		if err := selectInstr(&body, instr); err != nil {
			return nil, err
		}
	}
	return &Program{Function: Function{Name: ir.Function.Name, Body: body}}, nil
}

func selectInstr(body *[]Instruction, instr tacky.Instruction) error {
	switch n := instr.(type) {

	case tacky.Return:
		*body = append(*body,
			Mov{Src: selectVal(n.Val), Dst: Register{Reg: AX}},
			Ret{},
		)
		return nil

	case tacky.Unary:
		return selectUnary(body, n)

	case tacky.Binary:
		return selectBinary(body, n)

	case tacky.Copy:
		*body = append(*body, Mov{Src: selectVal(n.Src), Dst: selectVal(n.Dst)})
		return nil

	case tacky.Jump:
		*body = append(*body, Jmp{Target: Label(n.Target)})
		return nil

	case tacky.JumpIfZero:
		*body = append(*body,
			Cmp{Lhs: Imm{Value: 0}, Rhs: selectVal(n.Cond)},
			JmpCC{Cond: E, Target: Label(n.Target)},
		)
		return nil

	case tacky.JumpIfNotZero:
		*body = append(*body,
			Cmp{Lhs: Imm{Value: 0}, Rhs: selectVal(n.Cond)},
			JmpCC{Cond: NE, Target: Label(n.Target)},
		)
		return nil

	case tacky.LabelInstr:
		*body = append(*body, LabelInstr{Name: Label(n.Name)})
		return nil

	default:
		return &InvariantError{Message: fmt.Sprintf("unhandled tacky instruction %T", instr)}
	}
}

func selectVal(v tacky.Val) Operand {
	switch n := v.(type) {
	case tacky.Constant:
		return Imm{Value: n.Value}
	case tacky.Var:
		return Pseudo{Name: n.Name}
	default:
		panic(fmt.Sprintf("codegen: unhandled tacky.Val %T", v))
	}
}

func selectUnary(body *[]Instruction, n tacky.Unary) error {
	op, err := mapUnaryOp(n.Op)
	if err != nil {
		return err
	}
	dst := selectVal(n.Dst)
	*body = append(*body,
		Mov{Src: selectVal(n.Src), Dst: dst},
		UnaryInstr{Op: op, Dst: dst},
	)
	return nil
}

func mapUnaryOp(op tacky.UnaryOp) (UnaryOp, error) {
	switch op {
	case tacky.Complement:
		return Not, nil
	case tacky.Negate:
		return Neg, nil
	default:
		return 0, &InvariantError{Message: fmt.Sprintf("unmapped unary operator %v", op)}
	}
}

var relationalCond = map[tacky.BinaryOp]CondCode{
	tacky.Equal:          E,
	tacky.NotEqual:       NE,
	tacky.LessThan:       L,
	tacky.LessOrEqual:    LE,
	tacky.GreaterThan:    G,
	tacky.GreaterOrEqual: GE,
}

var arithmeticOp = map[tacky.BinaryOp]BinaryOp{
	tacky.Add:        Add,
	tacky.Subtract:   Sub,
	tacky.Multiply:   Mul,
	tacky.BitwiseAnd: And,
	tacky.BitwiseOr:  Or,
	tacky.BitwiseXor: Xor,
	tacky.ShiftLeft:  Shl,
	tacky.ShiftRight: Sar,
}

func selectBinary(body *[]Instruction, n tacky.Binary) error {
	dst := selectVal(n.Dst)
	s1 := selectVal(n.Src1)
	s2 := selectVal(n.Src2)

	switch n.Op {
	case tacky.Divide, tacky.Remainder:
		result := Register{Reg: AX}
		if n.Op == tacky.Remainder {
			result = Register{Reg: DX}
		}
		*body = append(*body,
			Mov{Src: s1, Dst: Register{Reg: AX}},
			Cdq{},
			IDiv{Src: s2},
			Mov{Src: result, Dst: dst},
		)
		return nil
	}

	if cond, ok := relationalCond[n.Op]; ok {
		// `cmpl s2, s1` computes s1 - s2; GNU syntax prints the
		// subtrahend first, so Lhs is the second operand here.
		*body = append(*body,
			Cmp{Lhs: s2, Rhs: s1},
			Mov{Src: Imm{Value: 0}, Dst: dst},
			SetCC{Cond: cond, Dst: dst},
		)
		return nil
	}

	if op, ok := arithmeticOp[n.Op]; ok {
		*body = append(*body,
			Mov{Src: s1, Dst: dst},
			BinaryInstr{Op: op, Src: s2, Dst: dst},
		)
		return nil
	}

	return &InvariantError{Message: fmt.Sprintf("unmapped binary operator %v", n.Op)}
}
