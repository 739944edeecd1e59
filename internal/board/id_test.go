package board

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnID(t *testing.T) {
	local := NewLocalID()
	assert.True(t, local.IsLocal())
	_, ok := local.Remote()
	assert.False(t, ok)
	assert.Contains(t, local.String(), LocalPrefix)

	id := uuid.New()
	remote := RemoteID(id)
	assert.False(t, remote.IsLocal())
	got, ok := remote.Remote()
	require.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, id.String(), remote.String())

	assert.True(t, ColumnID{}.IsZero())
	assert.NotEqual(t, NewLocalID(), NewLocalID())
}

func TestParseColumnID(t *testing.T) {
	id := uuid.New()

	got, err := ParseColumnID(id.String())
	require.NoError(t, err)
	assert.Equal(t, RemoteID(id), got)

	got, err = ParseColumnID("local-initial-todo")
	require.NoError(t, err)
	assert.Equal(t, initialColumnID, got)

	_, err = ParseColumnID("local-")
	assert.Error(t, err)
	_, err = ParseColumnID("nope")
	assert.Error(t, err)
}
