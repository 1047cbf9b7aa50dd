package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arnvindr/subcc/internal/token"
)

func tokenTypes(t *testing.T, input string) []token.Type {
	toks, err := Lex(input)
	require.NoError(t, err)
	var types []token.Type
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	return types
}

func TestKeywordsVsIdentifiers(t *testing.T) {
	toks, err := Lex("int void return intx returns voida")
	require.NoError(t, err)
	require.Len(t, toks, 7) // 6 words + EOF

	want := []token.Type{
		token.INT_KW, token.VOID_KW, token.RETURN_KW,
		token.IDENT, token.IDENT, token.IDENT,
		token.EOF,
	}
	for i, w := range want {
		require.Equalf(t, w, toks[i].Type, "token %d", i)
	}
}

func TestTwoCharOperatorsWinOverPrefix(t *testing.T) {
	types := tokenTypes(t, "<< >> && || == != <= >= --")
	require.Equal(t, []token.Type{
		token.SHL, token.SHR, token.AND, token.OR,
		token.EQ, token.NEQ, token.LTE, token.GTE, token.DECREMENT,
		token.EOF,
	}, types)
}

func TestSingleCharOperators(t *testing.T) {
	types := tokenTypes(t, "- ~ + * / % & | ^ < > ! =")
	require.Equal(t, []token.Type{
		token.MINUS, token.COMPLEMENT, token.PLUS, token.STAR, token.SLASH,
		token.PERCENT, token.AMP, token.PIPE, token.CARET, token.LT,
		token.GT, token.BANG, token.ASSIGN, token.EOF,
	}, types)
}

func TestPunctuation(t *testing.T) {
	types := tokenTypes(t, "( ) { } ;")
	require.Equal(t, []token.Type{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.SEMICOLON,
		token.EOF,
	}, types)
}

func TestLocationTracksNewlines(t *testing.T) {
	toks, err := Lex("\n\n\n    a")
	require.NoError(t, err)
	require.NotEmpty(t, toks)
	require.Equal(t, token.Location{Line: 3, Column: 4}, toks[0].Loc)
}

func TestDigitsFollowedByLetterIsOneError(t *testing.T) {
	_, err := Lex("123abc")
	require.Error(t, err)
	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	require.Equal(t, "123abc", lexErr.Snippet)
}

func TestUnrecognizedCharacter(t *testing.T) {
	_, err := Lex("3 $ 4")
	require.Error(t, err)
	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	require.Equal(t, token.Location{Line: 0, Column: 2}, lexErr.Loc)
}

func TestFullFunctionTokenTypes(t *testing.T) {
	toks, err := Lex("int main(void) { return 2; }")
	require.NoError(t, err)
	want := []token.Type{
		token.INT_KW, token.IDENT, token.LPAREN, token.VOID_KW, token.RPAREN,
		token.LBRACE, token.RETURN_KW, token.INT, token.SEMICOLON, token.RBRACE,
		token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		require.Equalf(t, w, toks[i].Type, "token %d (%q)", i, toks[i].Literal)
	}
}
