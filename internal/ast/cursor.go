package ast

import "github.com/arnvindr/subcc/internal/token"

// Cursor is a read-only, one-token-lookahead view over a token
// sequence. It is never rewound: Next always moves strictly forward.
type Cursor struct {
	tokens []token.Token
	index  int
}

// NewCursor wraps tokens for sequential parsing.
func NewCursor(tokens []token.Token) *Cursor {
	return &Cursor{tokens: tokens}
}

// eofToken is returned by Peek/MustNext once the underlying slice is
// exhausted (it always ends in a real token.EOF from the lexer, but
// this guards a cursor driven past that point).
var eofToken = token.Token{Type: token.EOF}

// Peek returns the current token without consuming it.
func (c *Cursor) Peek() token.Token {
	if c.index >= len(c.tokens) {
		return eofToken
	}
	return c.tokens[c.index]
}

// Next consumes and returns the current token, reporting false if the
// cursor was already exhausted.
func (c *Cursor) Next() (token.Token, bool) {
	if c.index >= len(c.tokens) {
		return eofToken, false
	}
	tok := c.tokens[c.index]
	c.index++
	return tok, true
}

// MustNext consumes and returns the current token. It must only be
// called once the grammar has already confirmed (via Peek) that a
// token is present.
func (c *Cursor) MustNext() token.Token {
	tok, _ := c.Next()
	return tok
}

// Prev returns the most recently consumed token, used for
// end-of-input error messages. Before any call to Next it returns the
// zero Token.
func (c *Cursor) Prev() token.Token {
	if c.index == 0 {
		return token.Token{}
	}
	return c.tokens[c.index-1]
}

// Remaining reports how many tokens (including a trailing EOF) have
// not yet been consumed.
func (c *Cursor) Remaining() int {
	return len(c.tokens) - c.index
}
