package assistant

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRetainsAtMostTenTurns(t *testing.T) {
	sess := NewSession()

	for i := 0; i < 12; i++ {
		sess.Append(roleUser, fmt.Sprintf("turn %d", i))
	}

	turns := sess.Snapshot()
	require.Len(t, turns, maxSessionTurns)

	// Oldest two dropped from the front
	assert.Equal(t, "turn 2", turns[0].Content)
	assert.Equal(t, "turn 11", turns[9].Content)
}

func TestSessionOrderPreserved(t *testing.T) {
	sess := NewSession()
	sess.Append(roleUser, "make it darker")
	sess.Append(roleAssistant, "Lowered the cutoff.")

	turns := sess.Snapshot()
	require.Len(t, turns, 2)
	assert.Equal(t, roleUser, turns[0].Role)
	assert.Equal(t, roleAssistant, turns[1].Role)
}

func TestSessionSnapshotIsACopy(t *testing.T) {
	sess := NewSession()
	sess.Append(roleUser, "hello")

	turns := sess.Snapshot()
	turns[0].Content = "mutated"

	assert.Equal(t, "hello", sess.Snapshot()[0].Content)
}

func TestSessionClear(t *testing.T) {
	sess := NewSession()
	sess.Append(roleUser, "hello")
	sess.Clear()

	assert.Zero(t, sess.Len())
	assert.Empty(t, sess.Snapshot())
}

func TestSessionStoreCreatesOnFirstUse(t *testing.T) {
	store := NewSessionStore()

	a := store.Get("alpha")
	require.NotNil(t, a)
	a.Append(roleUser, "hi")

	// Same ID returns the same session
	assert.Equal(t, 1, store.Get("alpha").Len())

	// Different ID is isolated
	assert.Zero(t, store.Get("beta").Len())
}

func TestSessionStoreDelete(t *testing.T) {
	store := NewSessionStore()
	store.Get("alpha").Append(roleUser, "hi")

	store.Delete("alpha")

	assert.Zero(t, store.Get("alpha").Len())
}
