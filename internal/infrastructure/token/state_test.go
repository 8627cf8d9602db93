package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateToken(t *testing.T) {
	a, err := NewStateToken()
	require.NoError(t, err)
	b, err := NewStateToken()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestStateMatches(t *testing.T) {
	s, err := NewStateToken()
	require.NoError(t, err)

	assert.True(t, StateMatches(s, s))
	assert.False(t, StateMatches(s, s+"x"))
	assert.False(t, StateMatches("", s))
}
