package ast

import "fmt"

// PrettyPrint renders program back into C-like source text. It is a
// debugging/testing aid only — re-lexing and re-parsing its output is
// expected to yield an AST equal to the original, but it is not the
// code generation path.
func PrettyPrint(p *Program) string {
	return fmt.Sprintf("int %s(void) {\n    return %s;\n}\n", p.Function.Name.Name, printExpr(p.Function.Body.Expr))
}

func printExpr(e Expr) string {
	switch n := e.(type) {
	case IntConstant:
		return fmt.Sprintf("%d", n.Value)
	case *UnaryExpr:
		return fmt.Sprintf("%s(%s)", n.Op, printExpr(n.Operand))
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", printExpr(n.Left), n.Op, printExpr(n.Right))
	default:
		return "?expr?"
	}
}
