package pkg

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	for range 1000 {
		code, err := GenerateRoomCode()
		require.NoError(t, err)

		assert.Len(t, code, 6)
		assert.True(t, IsRoomCode(code), "code %q", code)
	}
}

func TestIsRoomCode(t *testing.T) {
	assert.True(t, IsRoomCode("123456"))
	assert.True(t, IsRoomCode("999999"))
	assert.False(t, IsRoomCode("012345"))
	assert.False(t, IsRoomCode("12345"))
	assert.False(t, IsRoomCode("12a456"))
	assert.False(t, IsRoomCode(""))
}

func TestGenerateConnectionID(t *testing.T) {
	first := GenerateConnectionID()
	second := GenerateConnectionID()

	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
