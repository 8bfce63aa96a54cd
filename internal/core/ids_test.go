package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentReserve(t *testing.T) {
	a := newAssignment(2)

	assert.Equal(t, 2, a.reserve("a"))
	assert.Equal(t, 3, a.reserve("b"))
	assert.Equal(t, 2, a.reserve("a"), "duplicate keys keep their first id")
	assert.Equal(t, 4, a.reserve("c"))
	assert.Equal(t, []string{"a", "b", "c"}, a.order)
}

func TestAssignmentPinDoesNotConsumePosition(t *testing.T) {
	a := newAssignment(2)

	a.pin("admin", 1)
	assert.Equal(t, 2, a.reserve("alice"))
	a.pin("admin", 1)
	assert.Equal(t, 3, a.reserve("bob"))
	assert.Equal(t, map[string]int{"admin": 1, "alice": 2, "bob": 3}, a.ids)
	assert.Equal(t, []string{"alice", "bob"}, a.order)
}

func TestIDRegistryPinnedKeysResolveButAreNotCounted(t *testing.T) {
	r := NewIDRegistry()
	a := newAssignment(2)
	a.reserve("alice")
	a.pin("admin", 1)
	require.NoError(t, r.commit(EntityUser, a))

	assert.Equal(t, 1, r.Len(EntityUser))

	id, err := r.Lookup(EntityUser, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestIDRegistryCommitAndLookup(t *testing.T) {
	r := NewIDRegistry()
	assert.False(t, r.Populated(EntityFile))

	a := newAssignment(0)
	a.reserve("k0")
	a.reserve("k1")
	require.NoError(t, r.commit(EntityFile, a))

	assert.True(t, r.Populated(EntityFile))
	assert.Equal(t, 2, r.Len(EntityFile))

	id, err := r.Lookup(EntityFile, "k1")
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	_, err = r.Lookup(EntityFile, "missing")
	assert.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestIDRegistryLookupBeforeCommit(t *testing.T) {
	r := NewIDRegistry()

	_, err := r.Lookup(EntityMedia, SourceKey("vcu:1", "OBJ"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReferenceNotFound)
	assert.ErrorContains(t, err, "not been assigned")
	assert.Equal(t, 0, r.Len(EntityMedia))
}

func TestIDRegistryCommitIsWriteOnce(t *testing.T) {
	r := NewIDRegistry()
	require.NoError(t, r.commit(EntityUser, newAssignment(2)))

	err := r.commit(EntityUser, newAssignment(2))
	assert.ErrorContains(t, err, "already assigned")
}
