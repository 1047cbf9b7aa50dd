package tacky

import (
	"fmt"

	"github.com/arnvindr/subcc/internal/ast"
)

// InvariantError reports a TAC-lowering invariant violation. A
// well-formed AST never triggers one; seeing this means the parser
// produced a tree this lowering pass does not know how to handle.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "tacky: invariant violation: " + e.Message
}

// Lower translates prog into a linear TAC function body.
func Lower(prog *ast.Program) (*Program, error) {
	ctx := NewContext()

	var body []Instruction
	result, err := lowerExpr(ctx, &body, prog.Function.Body.Expr)
	if err != nil {
		return nil, err
	}
	body = append(body, Return{Val: result})

	return &Program{
		Function: Function{
			Name: prog.Function.Name.Name,
			Body: body,
		},
	}, nil
}

func emit(body *[]Instruction, instr Instruction) {
	*body = append(*body, instr)
}

// lowerExpr lowers e, appending instructions to body, and returns the
// Val holding its result.
func lowerExpr(ctx *Context, body *[]Instruction, e ast.Expr) (Val, error) {
	switch n := e.(type) {

	case ast.IntConstant:
		return Constant{Value: n.Value}, nil

	case *ast.UnaryExpr:
		return lowerUnary(ctx, body, n)

	case *ast.BinaryExpr:
		return lowerBinary(ctx, body, n)

	default:
		return nil, &InvariantError{Message: fmt.Sprintf("unhandled expression node %T", e)}
	}
}

func lowerUnary(ctx *Context, body *[]Instruction, n *ast.UnaryExpr) (Val, error) {
	src, err := lowerExpr(ctx, body, n.Operand)
	if err != nil {
		return nil, err
	}

	if n.Op == ast.LogicalNot {
		// `!x` has no TAC-level logical-not instruction: it is
		// expressed as the relational pattern `x == 0`.
		dst := ctx.FreshTemp()
		emit(body, Binary{Op: Equal, Src1: src, Src2: Constant{Value: 0}, Dst: dst})
		return dst, nil
	}

	op, err := mapUnaryOp(n.Op)
	if err != nil {
		return nil, err
	}

	dst := ctx.FreshTemp()
	emit(body, Unary{Op: op, Src: src, Dst: dst})
	return dst, nil
}

func mapUnaryOp(op ast.UnaryOp) (UnaryOp, error) {
	switch op {
	case ast.BitwiseComplement:
		return Complement, nil
	case ast.Negate:
		return Negate, nil
	default:
		return 0, &InvariantError{Message: fmt.Sprintf("unmapped unary operator %v", op)}
	}
}

func lowerBinary(ctx *Context, body *[]Instruction, n *ast.BinaryExpr) (Val, error) {
	switch n.Op {
	case ast.LogicalAnd:
		return lowerLogicalAnd(ctx, body, n)
	case ast.LogicalOr:
		return lowerLogicalOr(ctx, body, n)
	}

	v1, err := lowerExpr(ctx, body, n.Left)
	if err != nil {
		return nil, err
	}
	v2, err := lowerExpr(ctx, body, n.Right)
	if err != nil {
		return nil, err
	}

	op, err := mapBinaryOp(n.Op)
	if err != nil {
		return nil, err
	}

	dst := ctx.FreshTemp()
	emit(body, Binary{Op: op, Src1: v1, Src2: v2, Dst: dst})
	return dst, nil
}

// lowerLogicalAnd expands `l && r` into:
//
//	v1 = lower(l)
//	JumpIfZero(v1, false_label)
//	v2 = lower(r)
//	JumpIfZero(v2, false_label)
//	Copy(1, t)
//	Jump(end_label)
//	Label(false_label)
//	Copy(0, t)
//	Label(end_label)
func lowerLogicalAnd(ctx *Context, body *[]Instruction, n *ast.BinaryExpr) (Val, error) {
	falseLabel := ctx.FreshLabel("and_false")
	endLabel := ctx.FreshLabel("and_end")

	v1, err := lowerExpr(ctx, body, n.Left)
	if err != nil {
		return nil, err
	}
	emit(body, JumpIfZero{Cond: v1, Target: falseLabel})

	v2, err := lowerExpr(ctx, body, n.Right)
	if err != nil {
		return nil, err
	}
	emit(body, JumpIfZero{Cond: v2, Target: falseLabel})

	dst := ctx.FreshTemp()
	emit(body, Copy{Src: Constant{Value: 1}, Dst: dst})
	emit(body, Jump{Target: endLabel})
	emit(body, LabelInstr{Name: falseLabel})
	emit(body, Copy{Src: Constant{Value: 0}, Dst: dst})
	emit(body, LabelInstr{Name: endLabel})

	return dst, nil
}

// lowerLogicalOr mirrors lowerLogicalAnd with JumpIfNotZero and the
// roles of 0/1 swapped.
func lowerLogicalOr(ctx *Context, body *[]Instruction, n *ast.BinaryExpr) (Val, error) {
	trueLabel := ctx.FreshLabel("or_true")
	endLabel := ctx.FreshLabel("or_end")

	v1, err := lowerExpr(ctx, body, n.Left)
	if err != nil {
		return nil, err
	}
	emit(body, JumpIfNotZero{Cond: v1, Target: trueLabel})

	v2, err := lowerExpr(ctx, body, n.Right)
	if err != nil {
		return nil, err
	}
	emit(body, JumpIfNotZero{Cond: v2, Target: trueLabel})

	dst := ctx.FreshTemp()
	emit(body, Copy{Src: Constant{Value: 0}, Dst: dst})
	emit(body, Jump{Target: endLabel})
	emit(body, LabelInstr{Name: trueLabel})
	emit(body, Copy{Src: Constant{Value: 1}, Dst: dst})
	emit(body, LabelInstr{Name: endLabel})

	return dst, nil
}

func mapBinaryOp(op ast.BinaryOp) (BinaryOp, error) {
	switch op {
	case ast.Add:
		return Add, nil
	case ast.Subtract:
		return Subtract, nil
	case ast.Multiply:
		return Multiply, nil
	case ast.Divide:
		return Divide, nil
	case ast.Remainder:
		return Remainder, nil
	case ast.BitwiseAnd:
		return BitwiseAnd, nil
	case ast.BitwiseOr:
		return BitwiseOr, nil
	case ast.BitwiseXor:
		return BitwiseXor, nil
	case ast.ShiftLeft:
		return ShiftLeft, nil
	case ast.ShiftRight:
		return ShiftRight, nil
	case ast.Equal:
		return Equal, nil
	case ast.NotEqual:
		return NotEqual, nil
	case ast.LessThan:
		return LessThan, nil
	case ast.LessOrEqual:
		return LessOrEqual, nil
	case ast.GreaterThan:
		return GreaterThan, nil
	case ast.GreaterOrEqual:
		return GreaterOrEqual, nil
	default:
		return 0, &InvariantError{Message: fmt.Sprintf("unmapped binary operator %v", op)}
	}
}
