package codegen

import (
	"fmt"
	"strings"
)

// Print renders prog as GNU AT&T-syntax x86-64 assembly text, one
// directive or instruction per line. Every operand must already be a
// Register, Imm, or Stack -- any remaining Pseudo is an invariant
// violation from a skipped pseudo-to-stack pass.
func Print(prog *Program) (string, error) {
	var b strings.Builder

	name := prog.Function.Name
	fmt.Fprintf(&b, ".globl %s\n", name)
	fmt.Fprintf(&b, "%s:\n", name)
	b.WriteString("\tpushq %rbp\n")
	b.WriteString("\tmovq %rsp, %rbp\n")

	for _, instr := range prog.Function.Body {
		if err := printInstr(&b, instr); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

func printInstr(b *strings.Builder, instr Instruction) error {
	switch n := instr.(type) {

	case Mov:
		src, err := operand32(n.Src)
		if err != nil {
			return err
		}
		dst, err := operand32(n.Dst)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\tmovl %s, %s\n", src, dst)

	case UnaryInstr:
		dst, err := operand32(n.Dst)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\t%s %s\n", unaryMnemonic(n.Op), dst)

	case BinaryInstr:
		srcFn := operand32
		if n.Op == Shl || n.Op == Sar {
			// Shift counts are always staged through %cl by the
			// legalisation pass; print the byte-sized form or the
			// assembler rejects it.
			srcFn = operandByte
		}
		src, err := srcFn(n.Src)
		if err != nil {
			return err
		}
		dst, err := operand32(n.Dst)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\t%s %s, %s\n", binaryMnemonic(n.Op), src, dst)

	case Cmp:
		lhs, err := operand32(n.Lhs)
		if err != nil {
			return err
		}
		rhs, err := operand32(n.Rhs)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\tcmpl %s, %s\n", lhs, rhs)

	case IDiv:
		src, err := operand32(n.Src)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\tidivl %s\n", src)

	case Cdq:
		b.WriteString("\tcdq\n")

	case Jmp:
		fmt.Fprintf(b, "\tjmp %s\n", labelSymbol(n.Target))

	case JmpCC:
		fmt.Fprintf(b, "\tj%s %s\n", n.Cond, labelSymbol(n.Target))

	case SetCC:
		dst, err := operandByte(n.Dst)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\tset%s %s\n", n.Cond, dst)

	case LabelInstr:
		fmt.Fprintf(b, "%s:\n", labelSymbol(n.Name))

	case AllocateStack:
		fmt.Fprintf(b, "\tsubq $%d, %%rsp\n", n.Bytes)

	case Ret:
		b.WriteString("\tmovq %rbp, %rsp\n")
		b.WriteString("\tpopq %rbp\n")
		b.WriteString("\tret\n")

	default:
		return &InvariantError{Message: fmt.Sprintf("unprintable instruction %T", instr)}
	}

	return nil
}

func labelSymbol(l Label) string {
	return "L" + string(l)
}

func unaryMnemonic(op UnaryOp) string {
	switch op {
	case Neg:
		return "negl"
	case Not:
		return "notl"
	default:
		return "?unary?"
	}
}

func binaryMnemonic(op BinaryOp) string {
	switch op {
	case Add:
		return "addl"
	case Sub:
		return "subl"
	case Mul:
		return "imull"
	case And:
		return "andl"
	case Or:
		return "orl"
	case Xor:
		return "xorl"
	case Shl:
		return "sall"
	case Sar:
		return "sarl"
	default:
		return "?binary?"
	}
}

// reg32 maps a register to its 32-bit ("e"-prefixed) printed form.
func reg32(r Reg) (string, error) {
	switch r {
	case AX:
		return "%eax", nil
	case CX:
		return "%ecx", nil
	case DX:
		return "%edx", nil
	case R10:
		return "%r10d", nil
	case R11:
		return "%r11d", nil
	default:
		return "", &InvariantError{Message: fmt.Sprintf("unmapped register %v", r)}
	}
}

// regByte maps a register to its byte-sized printed form, used by
// SetCC, which writes a single byte, and by shifts for the %cl count.
func regByte(r Reg) (string, error) {
	switch r {
	case AX:
		return "%al", nil
	case CX:
		return "%cl", nil
	case DX:
		return "%dl", nil
	case R10:
		return "%r10b", nil
	case R11:
		return "%r11b", nil
	default:
		return "", &InvariantError{Message: fmt.Sprintf("unmapped register %v", r)}
	}
}

func operand32(op Operand) (string, error) {
	switch n := op.(type) {
	case Imm:
		return fmt.Sprintf("$%d", n.Value), nil
	case Register:
		return reg32(n.Reg)
	case Stack:
		return fmt.Sprintf("%d(%%rbp)", n.Offset), nil
	case Pseudo:
		return "", &InvariantError{Message: fmt.Sprintf("pseudo operand %q reached the printer", n.Name)}
	default:
		return "", &InvariantError{Message: fmt.Sprintf("unprintable operand %T", op)}
	}
}

func operandByte(op Operand) (string, error) {
	switch n := op.(type) {
	case Imm:
		return fmt.Sprintf("$%d", n.Value), nil
	case Register:
		return regByte(n.Reg)
	case Stack:
		return fmt.Sprintf("%d(%%rbp)", n.Offset), nil
	case Pseudo:
		return "", &InvariantError{Message: fmt.Sprintf("pseudo operand %q reached the printer", n.Name)}
	default:
		return "", &InvariantError{Message: fmt.Sprintf("unprintable operand %T", op)}
	}
}
