package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LamiKaan/travel-assistant/pkg/domain"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess := domain.NewSession("s1", domain.Traveler{
		Contact: domain.Contact{Name: "Kaan", ID: 42, Email: "kaan@example.com"},
		Manager: domain.Contact{Name: "Deniz"},
	})
	sess.History = append(sess.History, domain.UserMessage("hello"), domain.AssistantMessage("hi"))
	sess.Intent = domain.IntentFlight
	sess.Flight = domain.NewFlightState([]domain.Message{domain.UserMessage("Hello.")})

	require.NoError(t, store.Save(ctx, "s1", sess))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", loaded.ID)
	assert.Equal(t, "Kaan", loaded.Traveler.Name)
	assert.Equal(t, domain.IntentFlight, loaded.Intent)
	require.Len(t, loaded.History, 2)
	require.NotNil(t, loaded.Flight)
	require.Len(t, loaded.Flight.Messages, 1)
	assert.Equal(t, "Hello.", loaded.Flight.Messages[0].Content)
}

func TestLoadNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestDeleteRemovesSessionAndIndex(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewSession("s1", domain.Traveler{})))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestList(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", domain.NewSession("a", domain.Traveler{})))
	require.NoError(t, store.Save(ctx, "b", domain.NewSession("b", domain.Traveler{})))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestTTLExpiry(t *testing.T) {
	store, mr := newTestStore(t, WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewSession("s1", domain.Traveler{})))

	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestListPrunesExpiredIndexEntries(t *testing.T) {
	store, mr := newTestStore(t, WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "old", domain.NewSession("old", domain.Traveler{})))
	mr.FastForward(2 * time.Minute)
	require.NoError(t, store.Save(ctx, "fresh", domain.NewSession("fresh", domain.Traveler{})))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids)
}

func TestCustomPrefix(t *testing.T) {
	store, mr := newTestStore(t, WithPrefix("custom:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewSession("s1", domain.Traveler{})))
	assert.True(t, mr.Exists("custom:s1"))
}
