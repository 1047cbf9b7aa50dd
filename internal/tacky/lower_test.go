package tacky

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/arnvindr/subcc/internal/ast"
	"github.com/arnvindr/subcc/internal/lexer"
)

func mustLower(t *testing.T, src string) *Program {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	prog, err := ast.Parse(toks)
	require.NoError(t, err)
	ir, err := Lower(prog)
	require.NoError(t, err)
	return ir
}

// TestLowerIsDeterministic checks that lowering the same source twice
// (each with its own fresh Context) produces structurally identical
// IR; a golden-style comparison, with a spew dump for a readable diff
// if the counters or tree shape ever drift apart.
func TestLowerIsDeterministic(t *testing.T) {
	const src = "int main(void) { return (1 && 2) || (3 && 4); }"
	first := mustLower(t, src)
	second := mustLower(t, src)

	require.Equalf(t, first, second, "lowering %q twice should be deterministic\nfirst:\n%ssecond:\n%s",
		src, spew.Sdump(first), spew.Sdump(second))
}

func TestLowerSimpleReturn(t *testing.T) {
	ir := mustLower(t, "int main(void) { return 2; }")
	require.Len(t, ir.Function.Body, 1)
	ret, ok := ir.Function.Body[0].(Return)
	require.True(t, ok)
	require.Equal(t, Constant{Value: 2}, ret.Val)
}

func TestLowerLogicalAndShape(t *testing.T) {
	ir := mustLower(t, "int main(void) { return 1 && 0; }")

	var jumpIfZero, jumps, labels, copies int
	for _, instr := range ir.Function.Body {
		switch instr.(type) {
		case JumpIfZero:
			jumpIfZero++
		case Jump:
			jumps++
		case LabelInstr:
			labels++
		case Copy:
			copies++
		}
	}
	require.Equal(t, 2, jumpIfZero)
	require.Equal(t, 1, jumps)
	require.Equal(t, 2, labels)
	require.Equal(t, 2, copies)
}

func TestLowerLogicalOrUsesJumpIfNotZero(t *testing.T) {
	ir := mustLower(t, "int main(void) { return 1 || 0; }")

	var jumpIfNotZero int
	for _, instr := range ir.Function.Body {
		if _, ok := instr.(JumpIfNotZero); ok {
			jumpIfNotZero++
		}
	}
	require.Equal(t, 2, jumpIfNotZero)
}

func TestLowerLogicalNotBecomesEqualZero(t *testing.T) {
	ir := mustLower(t, "int main(void) { return !5; }")

	var found bool
	for _, instr := range ir.Function.Body {
		if b, ok := instr.(Binary); ok && b.Op == Equal {
			require.Equal(t, Constant{Value: 5}, b.Src1)
			require.Equal(t, Constant{Value: 0}, b.Src2)
			found = true
		}
	}
	require.True(t, found, "expected a Binary(Equal, 5, 0) instruction")
}

// everyJumpTargetHasALabel verifies that every jump target appears
// exactly once as a Label in the same function.
func everyJumpTargetHasALabel(t *testing.T, body []Instruction) {
	t.Helper()

	labelCounts := map[Label]int{}
	var targets []Label

	for _, instr := range body {
		switch n := instr.(type) {
		case LabelInstr:
			labelCounts[n.Name]++
		case Jump:
			targets = append(targets, n.Target)
		case JumpIfZero:
			targets = append(targets, n.Target)
		case JumpIfNotZero:
			targets = append(targets, n.Target)
		}
	}

	for _, target := range targets {
		require.Equalf(t, 1, labelCounts[target], "label %q should appear exactly once", target)
	}
}

func TestLowerJumpTargetsAreWellFormed(t *testing.T) {
	cases := []string{
		"int main(void) { return 1 && 0; }",
		"int main(void) { return 1 || 0; }",
		"int main(void) { return (1 && 0) || (1 && 1); }",
		"int main(void) { return 1 && 2 || 3 && 4; }",
	}
	for _, src := range cases {
		ir := mustLower(t, src)
		everyJumpTargetHasALabel(t, ir.Function.Body)
	}
}

func TestLowerFreshNamesAreUnique(t *testing.T) {
	ir := mustLower(t, "int main(void) { return (1 && 2) && (3 && 4); }")

	seen := map[Var]bool{}
	for _, instr := range ir.Function.Body {
		if u, ok := instr.(Unary); ok {
			require.False(t, seen[u.Dst])
			seen[u.Dst] = true
		}
		if b, ok := instr.(Binary); ok {
			require.False(t, seen[b.Dst])
			seen[b.Dst] = true
		}
		if c, ok := instr.(Copy); ok {
			// Copy destinations are reused across the two copy sites of a
			// single short-circuit expansion, by design.
			_ = c
		}
	}
}
