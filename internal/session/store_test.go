package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbchat/internal/domain"
)

func userTurn(content string) domain.Turn {
	return domain.Turn{
		TurnID:    content,
		Role:      domain.RoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

func TestCreateOrGetIsIdempotent(t *testing.T) {
	store := NewStore(0)

	first := store.CreateOrGet("s1")
	assert.Equal(t, domain.SessionActive, first.Status)
	assert.Empty(t, first.Turns)

	require.NoError(t, store.Append("s1", userTurn("hello")))

	second := store.CreateOrGet("s1")
	assert.Len(t, second.Turns, 1, "existing session must not be reset")
	assert.False(t, second.LastActivity.Before(first.LastActivity))
}

func TestAppendUnknownSession(t *testing.T) {
	store := NewStore(0)
	err := store.Append("nope", userTurn("hello"))
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestHistoryIsASnapshot(t *testing.T) {
	store := NewStore(0)
	store.CreateOrGet("s1")
	require.NoError(t, store.Append("s1", userTurn("a")))

	history := store.History("s1")
	require.Len(t, history, 1)
	history[0].Content = "mutated"

	assert.Equal(t, "a", store.History("s1")[0].Content)
}

func TestHistoryUnknownSessionIsEmpty(t *testing.T) {
	store := NewStore(0)
	assert.Empty(t, store.History("nope"))
}

func TestClearThenFreshSession(t *testing.T) {
	store := NewStore(0)
	store.CreateOrGet("s1")
	require.NoError(t, store.Append("s1", userTurn("a")))

	store.Clear("s1")
	assert.Empty(t, store.History("s1"))

	fresh := store.CreateOrGet("s1")
	assert.Empty(t, fresh.Turns, "cleared session must not resurrect turns")

	// Clearing twice is fine.
	store.Clear("s1")
	store.Clear("s1")
}

func TestStats(t *testing.T) {
	store := NewStore(0)
	store.CreateOrGet("s1")
	store.CreateOrGet("s2")
	require.NoError(t, store.Append("s1", userTurn("a")))
	require.NoError(t, store.Append("s1", userTurn("b")))
	require.NoError(t, store.Append("s2", userTurn("c")))

	stats := store.Stats()
	assert.Equal(t, 2, stats.ActiveCount)
	assert.Equal(t, 3, stats.TotalTurns)
}

func TestMaxTurnsKeepsNewest(t *testing.T) {
	store := NewStore(3)
	store.CreateOrGet("s1")
	for _, c := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, store.Append("s1", userTurn(c)))
	}

	history := store.History("s1")
	require.Len(t, history, 3)
	assert.Equal(t, "c", history[0].Content)
	assert.Equal(t, "e", history[2].Content)
}

func TestExpireIdle(t *testing.T) {
	store := NewStore(0)
	store.CreateOrGet("old")
	time.Sleep(20 * time.Millisecond)
	store.CreateOrGet("fresh")

	removed := store.ExpireIdle(10 * time.Millisecond)
	assert.Equal(t, 1, removed)
	assert.Empty(t, store.History("old"))
	assert.Equal(t, 1, store.Stats().ActiveCount)
}
