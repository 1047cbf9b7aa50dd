package ast

import (
	"fmt"
	"strconv"

	"github.com/arnvindr/subcc/internal/token"
)

// ExpectedButFoundError reports a grammar mismatch: the parser wanted
// one of a specific shape of token and found something else.
type ExpectedButFoundError struct {
	Expected string
	Actual   token.Token
}

func (e *ExpectedButFoundError) Error() string {
	return fmt.Sprintf("%s: expected %s, found %s", e.Actual.Loc, e.Expected, describe(e.Actual))
}

// UnexpectedEndOfInputError reports premature end-of-stream.
type UnexpectedEndOfInputError struct {
	After token.Token
}

func (e *UnexpectedEndOfInputError) Error() string {
	return fmt.Sprintf("%s: unexpected end of input after %s", e.After.Loc, describe(e.After))
}

// TrailingInputError reports unconsumed tokens after a complete program.
type TrailingInputError struct {
	Tokens []token.Token
}

func (e *TrailingInputError) Error() string {
	first := e.Tokens[0]
	return fmt.Sprintf("%s: unexpected trailing input starting at %s", first.Loc, describe(first))
}

func describe(t token.Token) string {
	if t.Type == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q (%s)", t.Literal, t.Type)
}

// precedence maps each binary-operator token to its binding power and
// AST operator. Absence from this table means the token cannot start
// (or continue) a binary expression.
var precedence = map[token.Type]struct {
	op   BinaryOp
	prec int
}{
	token.STAR:    {Multiply, 50},
	token.SLASH:   {Divide, 50},
	token.PERCENT: {Remainder, 50},
	token.PLUS:    {Add, 45},
	token.MINUS:   {Subtract, 45},
	token.SHL:     {ShiftLeft, 40},
	token.SHR:     {ShiftRight, 40},
	token.LT:      {LessThan, 35},
	token.LTE:     {LessOrEqual, 35},
	token.GT:      {GreaterThan, 35},
	token.GTE:     {GreaterOrEqual, 35},
	token.EQ:      {Equal, 30},
	token.NEQ:     {NotEqual, 30},
	token.AMP:     {BitwiseAnd, 25},
	token.CARET:   {BitwiseXor, 20},
	token.PIPE:    {BitwiseOr, 15},
	token.AND:     {LogicalAnd, 10},
	token.OR:      {LogicalOr, 5},
}

// Parse recognises program := function over the full token stream and
// reports any remaining tokens as trailing input.
func Parse(tokens []token.Token) (*Program, error) {
	c := NewCursor(tokens)

	fn, err := parseFunction(c)
	if err != nil {
		return nil, err
	}

	if c.Remaining() > 1 || c.Peek().Type != token.EOF {
		var rest []token.Token
		for {
			tok, ok := c.Next()
			if !ok || tok.Type == token.EOF {
				break
			}
			rest = append(rest, tok)
		}
		if len(rest) > 0 {
			return nil, &TrailingInputError{Tokens: rest}
		}
	}

	return &Program{Function: *fn}, nil
}

func expect(c *Cursor, want token.Type, expectedDesc string) (token.Token, error) {
	tok := c.Peek()
	if tok.Type == token.EOF {
		return token.Token{}, &UnexpectedEndOfInputError{After: c.Prev()}
	}
	if tok.Type != want {
		return token.Token{}, &ExpectedButFoundError{Expected: expectedDesc, Actual: tok}
	}
	return c.MustNext(), nil
}

// parseFunction recognises function := "int" IDENT "(" "void" ")" "{" statement "}"
func parseFunction(c *Cursor) (*Function, error) {
	if _, err := expect(c, token.INT_KW, "'int'"); err != nil {
		return nil, err
	}
	name, err := expect(c, token.IDENT, "an identifier")
	if err != nil {
		return nil, err
	}
	if _, err := expect(c, token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	if _, err := expect(c, token.VOID_KW, "'void'"); err != nil {
		return nil, err
	}
	if _, err := expect(c, token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	if _, err := expect(c, token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	stmt, err := parseStatement(c)
	if err != nil {
		return nil, err
	}
	if _, err := expect(c, token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &Function{Name: Identifier{Name: name.Literal}, Body: *stmt}, nil
}

// parseStatement recognises statement := "return" expression ";"
func parseStatement(c *Cursor) (*ReturnStmt, error) {
	if _, err := expect(c, token.RETURN_KW, "'return'"); err != nil {
		return nil, err
	}
	e, err := parseExpression(c, 0)
	if err != nil {
		return nil, err
	}
	if _, err := expect(c, token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return &ReturnStmt{Expr: e}, nil
}

// parseExpression is the Pratt-precedence loop: after a factor, while
// the next token is a binary operator whose precedence is at least
// minPrec, consume it and recurse with that operator's precedence + 1
// (every supported operator is left-associative).
func parseExpression(c *Cursor, minPrec int) (Expr, error) {
	left, err := parseFactor(c)
	if err != nil {
		return nil, err
	}

	for {
		entry, ok := precedence[c.Peek().Type]
		if !ok || entry.prec < minPrec {
			break
		}
		c.MustNext()
		right, err := parseExpression(c, entry.prec+1)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: entry.op, Left: left, Right: right}
	}

	return left, nil
}

// parseFactor recognises factor := INT_CONST
//
//	| ("-" | "~" | "!") factor
//	| "(" expression(0) ")"
func parseFactor(c *Cursor) (Expr, error) {
	tok := c.Peek()

	switch tok.Type {
	case token.EOF:
		return nil, &UnexpectedEndOfInputError{After: c.Prev()}

	case token.INT:
		c.MustNext()
		n, err := parseIntLiteral(tok)
		if err != nil {
			return nil, err
		}
		return IntConstant{Value: n}, nil

	case token.MINUS:
		c.MustNext()
		operand, err := parseFactor(c)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: Negate, Operand: operand}, nil

	case token.COMPLEMENT:
		c.MustNext()
		operand, err := parseFactor(c)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: BitwiseComplement, Operand: operand}, nil

	case token.BANG:
		c.MustNext()
		operand, err := parseFactor(c)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: LogicalNot, Operand: operand}, nil

	case token.LPAREN:
		c.MustNext()
		e, err := parseExpression(c, 0)
		if err != nil {
			return nil, err
		}
		if _, err := expect(c, token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return e, nil

	default:
		return nil, &ExpectedButFoundError{Expected: "an expression", Actual: tok}
	}
}

func parseIntLiteral(tok token.Token) (int32, error) {
	n, err := strconv.ParseInt(tok.Literal, 10, 32)
	if err != nil {
		return 0, &ExpectedButFoundError{Expected: "a 32-bit integer constant", Actual: tok}
	}
	return int32(n), nil
}
