package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdentifier(t *testing.T) {
	tests := []struct {
		name string
		want Type
	}{
		{"int", INT_KW},
		{"void", VOID_KW},
		{"return", RETURN_KW},
		{"intx", IDENT},
		{"returns", IDENT},
		{"voida", IDENT},
		{"main", IDENT},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LookupIdentifier(tt.name), "identifier %q", tt.name)
	}
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "3:4", Location{Line: 3, Column: 4}.String())
}
