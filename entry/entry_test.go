package entry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-proposals/internal/testsupport"
	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRepository_CreateAndFindByCanonicalURL(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewDB(t)
	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	created, err := repo.CreateEntry(ctx, types.Entry{Title: "Thing", URL: "http://example.com/thing"})
	require.NoError(t, err)
	require.Equal(t, "http://example.com/thing", created.CanonicalURL)

	found, err := repo.FindByCanonicalURL(ctx, "http://example.com/thing")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, created.ID, found[0].ID)

	fetched, err := repo.GetEntry(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Thing", fetched.Title)

	none, err := repo.FindByCanonicalURL(ctx, "http://example.com/other")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestMatcher_ResolvesEquivalentURL(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewDB(t)
	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	created, err := repo.CreateEntry(ctx, types.Entry{Title: "Thing", URL: "http://example.com/thing"})
	require.NoError(t, err)

	matcher := NewMatcher(repo, nil)
	ref, ok := matcher.Match(ctx, "HTTPS://WWW.Example.com/thing/")
	require.True(t, ok)
	require.Equal(t, created.ID, ref.ID)
}

func TestMatcher_PicksOldestOnDuplicates(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewDB(t)
	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer, err := repo.CreateEntry(ctx, types.Entry{URL: "https://example.com/dup", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	older, err := repo.CreateEntry(ctx, types.Entry{URL: "http://www.example.com/dup/", CreatedAt: base})
	require.NoError(t, err)
	require.NotEqual(t, newer.ID, older.ID)

	ref, ok := NewMatcher(repo, nil).Match(ctx, "http://example.com/dup")
	require.True(t, ok)
	require.Equal(t, older.ID, ref.ID)
}

type failingEntries struct{}

func (failingEntries) FindByCanonicalURL(context.Context, string) ([]types.Entry, error) {
	return nil, errors.New("catalog offline")
}

type countingEntries struct{ calls int }

func (c *countingEntries) FindByCanonicalURL(context.Context, string) ([]types.Entry, error) {
	c.calls++
	return []types.Entry{{ID: uuid.New()}}, nil
}

func TestMatcher_StoreErrorIsNoMatch(t *testing.T) {
	ref, ok := NewMatcher(failingEntries{}, nil).Match(context.Background(), "http://example.com/x")
	require.False(t, ok)
	require.Equal(t, uuid.Nil, ref.ID)
}

func TestMatcher_BlankInputSkipsStore(t *testing.T) {
	entries := &countingEntries{}
	_, ok := NewMatcher(entries, nil).Match(context.Background(), "   ")
	require.False(t, ok)
	require.Zero(t, entries.calls)
}
