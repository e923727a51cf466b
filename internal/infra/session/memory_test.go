package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helpdeskhq/smartfaq/internal/domain/retrieval"
)

func newClockedStore(ttl time.Duration) (*Store, *time.Time) {
	current := time.Unix(1_700_000_000, 0)
	s := NewStore(ttl, 0)
	s.now = func() time.Time { return current }
	return s, &current
}

func TestResolveMintsSession(t *testing.T) {
	s, _ := newClockedStore(time.Minute)
	defer s.Close()

	ctx := s.Resolve("", retrieval.SessionContext{Language: "fr"})
	require.NotEmpty(t, ctx.SessionID)
	require.Equal(t, "fr", ctx.Language)

	stored, ok := s.Get(ctx.SessionID)
	require.True(t, ok)
	require.Equal(t, ctx, stored)
}

func TestResolveMergesSuppliedContext(t *testing.T) {
	s, _ := newClockedStore(time.Minute)
	defer s.Close()

	first := s.Resolve("", retrieval.SessionContext{Language: "fr", ProductRef: "widget-pro"})
	second := s.Resolve(first.SessionID, retrieval.SessionContext{Category: retrieval.CategoryAccount})

	require.Equal(t, first.SessionID, second.SessionID)
	require.Equal(t, "fr", second.Language)
	require.Equal(t, "widget-pro", second.ProductRef)
	require.Equal(t, retrieval.CategoryAccount, second.Category)
}

func TestResolveUnknownIDMintsFresh(t *testing.T) {
	s, _ := newClockedStore(time.Minute)
	defer s.Close()

	ctx := s.Resolve("no-such-session", retrieval.SessionContext{})
	require.NotEmpty(t, ctx.SessionID)
	require.NotEqual(t, "no-such-session", ctx.SessionID)
}

func TestResolveExpiredSessionMintsFresh(t *testing.T) {
	s, clock := newClockedStore(time.Minute)
	defer s.Close()

	first := s.Resolve("", retrieval.SessionContext{Language: "fr"})
	*clock = clock.Add(2 * time.Minute)

	second := s.Resolve(first.SessionID, retrieval.SessionContext{})
	require.NotEqual(t, first.SessionID, second.SessionID)
	require.Empty(t, second.Language)
}

func TestCleanupDropsStaleSessions(t *testing.T) {
	s, clock := newClockedStore(time.Minute)
	defer s.Close()

	s.Resolve("", retrieval.SessionContext{})
	require.Equal(t, 1, s.Len())

	*clock = clock.Add(2 * time.Minute)
	s.cleanup()
	require.Equal(t, 0, s.Len())
}
