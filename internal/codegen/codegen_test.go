package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arnvindr/subcc/internal/ast"
	"github.com/arnvindr/subcc/internal/lexer"
	"github.com/arnvindr/subcc/internal/tacky"
)

func compileToAsm(t *testing.T, src string) *Program {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	prog, err := ast.Parse(toks)
	require.NoError(t, err)
	ir, err := tacky.Lower(prog)
	require.NoError(t, err)
	abstract, err := Select(ir)
	require.NoError(t, err)
	withStack := ReplacePseudoRegisters(abstract)
	return Legalize(withStack)
}

func collectOperands(body []Instruction) []Operand {
	var out []Operand
	for _, instr := range body {
		switch n := instr.(type) {
		case Mov:
			out = append(out, n.Src, n.Dst)
		case UnaryInstr:
			out = append(out, n.Dst)
		case BinaryInstr:
			out = append(out, n.Src, n.Dst)
		case Cmp:
			out = append(out, n.Lhs, n.Rhs)
		case IDiv:
			out = append(out, n.Src)
		case SetCC:
			out = append(out, n.Dst)
		}
	}
	return out
}

func TestNoPseudoOperandsSurviveFrameAssignment(t *testing.T) {
	prog := compileToAsm(t, "int main(void) { return 1 + 2 * 3 - (4 / 5) % 6; }")
	for _, op := range collectOperands(prog.Function.Body) {
		_, isPseudo := op.(Pseudo)
		require.False(t, isPseudo, "found a Pseudo operand after frame assignment: %#v", op)
	}
}

func TestNoTwoMemoryOperandsAfterLegalization(t *testing.T) {
	prog := compileToAsm(t, "int main(void) { return 1 + 2 + 3 + 4 + 5; }")

	for _, instr := range prog.Function.Body {
		switch n := instr.(type) {
		case Mov:
			require.False(t, isMemory(n.Src) && isMemory(n.Dst), "Mov has two memory operands")
		case BinaryInstr:
			require.False(t, isMemory(n.Src) && isMemory(n.Dst), "Binary has two memory operands")
		case Cmp:
			require.False(t, isMemory(n.Lhs) && isMemory(n.Rhs), "Cmp has two memory operands")
		}
	}
}

func TestIDivNeverHasImmediateOperand(t *testing.T) {
	prog := compileToAsm(t, "int main(void) { return 10 / 3; }")
	for _, instr := range prog.Function.Body {
		if d, ok := instr.(IDiv); ok {
			require.False(t, isImmediate(d.Src), "IDiv had an immediate operand")
		}
	}
}

func TestCmpRightOperandNeverImmediate(t *testing.T) {
	prog := compileToAsm(t, "int main(void) { return 1 < 2; }")
	for _, instr := range prog.Function.Body {
		if c, ok := instr.(Cmp); ok {
			require.False(t, isImmediate(c.Rhs), "Cmp had an immediate right-hand operand")
		}
	}
}

func TestMulWithMemoryDestinationIsStagedThroughR11(t *testing.T) {
	prog := compileToAsm(t, "int main(void) { return 6 * 7; }")

	var sawMulIntoR11 bool
	for _, instr := range prog.Function.Body {
		if b, ok := instr.(BinaryInstr); ok && b.Op == Mul {
			require.False(t, isMemory(b.Dst), "Mul destination should never be memory after legalization")
			if reg, ok := b.Dst.(Register); ok && reg.Reg == R11 {
				sawMulIntoR11 = true
			}
		}
	}
	require.True(t, sawMulIntoR11, "expected the multiply to be staged through R11")
}

func TestEndToEndAssemblyContainsEntryPoint(t *testing.T) {
	prog := compileToAsm(t, "int main(void) { return 2; }")
	out, err := Print(prog)
	require.NoError(t, err)
	require.Contains(t, out, ".globl main")
	require.Contains(t, out, "main:")
	require.Contains(t, out, "ret")
}

func TestShiftCountAlwaysStagedThroughCX(t *testing.T) {
	prog := compileToAsm(t, "int main(void) { return 1 << 3; }")
	var sawShift bool
	for _, instr := range prog.Function.Body {
		if b, ok := instr.(BinaryInstr); ok && (b.Op == Shl || b.Op == Sar) {
			sawShift = true
			reg, ok := b.Src.(Register)
			require.True(t, ok)
			require.Equal(t, CX, reg.Reg)
		}
	}
	require.True(t, sawShift)

	out, err := Print(prog)
	require.NoError(t, err)
	require.Contains(t, out, "sall %cl,")
	require.NotContains(t, out, "sall %ecx")
}
