package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raecer/intake-api/internal/domain"
)

func TestStore_Create(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	session, err := store.Create(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusActive, session.Status)
	assert.Empty(t, session.Messages)
	assert.NotEqual(t, uuid.Nil, session.ID)
}

func TestStore_Get(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	created, err := store.Create(ctx)
	require.NoError(t, err)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = store.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_Get_ReturnsCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	created, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage(ctx, created.ID, domain.Message{Role: domain.RoleUser, Content: "hello"}))

	first, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	first.Messages[0].Content = "tampered"
	first.Status = domain.StatusError

	second, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", second.Messages[0].Content)
	assert.Equal(t, domain.StatusActive, second.Status)
}

func TestStore_AppendMessage(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	created, err := store.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, store.AppendMessage(ctx, created.ID, domain.Message{Role: domain.RoleAssistant, Content: "hi"}))
	require.NoError(t, store.AppendMessage(ctx, created.ID, domain.Message{Role: domain.RoleUser, Content: "hello"}))

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, domain.RoleAssistant, got.Messages[0].Role)
	assert.Equal(t, domain.RoleUser, got.Messages[1].Role)

	err = store.AppendMessage(ctx, uuid.New(), domain.Message{Role: domain.RoleUser, Content: "x"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_Update(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	created, err := store.Create(ctx)
	require.NoError(t, err)

	completed := domain.StatusCompleted
	err = store.Update(ctx, created.ID, domain.SessionUpdate{Status: &completed})
	require.NoError(t, err)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	// Terminal sessions reject further updates.
	active := domain.StatusActive
	err = store.Update(ctx, created.ID, domain.SessionUpdate{Status: &active})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	err = store.Update(ctx, uuid.New(), domain.SessionUpdate{Status: &completed})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	created, err := store.Create(ctx)
	require.NoError(t, err)

	existed, err := store.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = store.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestStore_List(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Create(ctx)
		require.NoError(t, err)
	}

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, summaries, 3)
	for _, summary := range summaries {
		assert.Equal(t, domain.StatusActive, summary.Status)
		assert.Zero(t, summary.MessageCount)
	}
}

func TestStore_Cleanup(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Create(ctx)
		require.NoError(t, err)
	}

	// A very large max age removes nothing.
	removed, err := store.Cleanup(ctx, 24*365*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	// Zero max age removes everything regardless of recency.
	time.Sleep(time.Millisecond)
	removed, err = store.Cleanup(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	created, err := store.Create(ctx)
	require.NoError(t, err)

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				_ = store.AppendMessage(ctx, created.ID, domain.Message{Role: domain.RoleUser, Content: "m"})
			}
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, writers*perWriter)
}
