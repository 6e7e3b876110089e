package token

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIdempotent(t *testing.T) {
	id1 := Register("test_idempotent")
	id2 := Register("TEST_IDEMPOTENT")

	assert.Equal(t, id1, id2, "same keyword in any case should return same ID")
	assert.True(t, IsDynamic(id1))
	assert.True(t, IsKeyword(id1))
	assert.Equal(t, "TEST_IDEMPOTENT", id1.String())
}

func TestRegisterDifferentNames(t *testing.T) {
	id1 := Register("test_name_a")
	id2 := Register("test_name_b")

	assert.NotEqual(t, id1, id2)
}

func TestRegisterConcurrent(t *testing.T) {
	const numGoroutines = 50
	var wg sync.WaitGroup
	ids := make([]TokenType, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ids[idx] = Register("test_concurrent")
		}(i)
	}
	wg.Wait()

	for i := 1; i < numGoroutines; i++ {
		require.Equal(t, ids[0], ids[i], "concurrent registration should return same ID")
	}
}

func TestLookupDynamicKeyword(t *testing.T) {
	expected := Register("test_lookup")

	got, ok := LookupDynamicKeyword("test_lookup")
	require.True(t, ok)
	assert.Equal(t, expected, got)

	got, ok = LookupDynamicKeyword("never_registered")
	assert.False(t, ok)
	assert.Equal(t, IDENT, got)
}

func TestLookupIdent(t *testing.T) {
	assert.Equal(t, SELECT, LookupIdent("select"))
	assert.Equal(t, JOIN, LookupIdent("join"))
	assert.Equal(t, IDENT, LookupIdent("customers"))
	assert.Equal(t, "SELECT", SELECT.String())
}

func TestIsTrivia(t *testing.T) {
	for _, tt := range []TokenType{WHITESPACE, NEWLINE, COMMENT, TEMPLATE_TAG} {
		assert.True(t, IsTrivia(tt), tt.String())
	}
	for _, tt := range []TokenType{IDENT, SELECT, COMMA, PLACEHOLDER} {
		assert.False(t, IsTrivia(tt), tt.String())
	}
}

func TestPositionAdvance(t *testing.T) {
	start := Position{Line: 1, Column: 1, Offset: 0}

	p := start.Advance("select\n  a")
	assert.Equal(t, Position{Line: 2, Column: 4, Offset: 10}, p)
	assert.True(t, start.Before(p))

	tok := Token{Type: IDENT, Literal: "abc", Pos: start}
	assert.Equal(t, 3, Span{Start: tok.Pos, End: tok.End()}.Len())
}
