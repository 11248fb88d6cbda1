package clientdata

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.EnsureSchema())
	return repo
}

func TestStoreAndGetIfFresh(t *testing.T) {
	repo := setupRepo(t)

	payload := map[string]string{"name": "Test Corp"}
	require.NoError(t, repo.Store("yahoo_fundamentals", "TST", payload, time.Hour))

	data, err := repo.GetIfFresh("yahoo_fundamentals", "TST")
	require.NoError(t, err)
	require.NotNil(t, data)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Test Corp", decoded["name"])
}

func TestGetIfFresh_MissingKey(t *testing.T) {
	repo := setupRepo(t)

	data, err := repo.GetIfFresh("stooq_history", "MISSING")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestGetIfFresh_ExpiredReturnsNil(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Store("stooq_history", "TST", []int{1, 2}, -time.Minute))

	fresh, err := repo.GetIfFresh("stooq_history", "TST")
	require.NoError(t, err)
	assert.Nil(t, fresh)

	// Get still serves the stale row as a fallback
	stale, err := repo.Get("stooq_history", "TST")
	require.NoError(t, err)
	assert.NotNil(t, stale)
}

func TestStore_Upserts(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Store("preferences", "provider", "Stooq", time.Hour))
	require.NoError(t, repo.Store("preferences", "provider", "Yahoo Finance", time.Hour))

	data, err := repo.GetIfFresh("preferences", "provider")
	require.NoError(t, err)

	var provider string
	require.NoError(t, json.Unmarshal(data, &provider))
	assert.Equal(t, "Yahoo Finance", provider)
}

func TestInvalidTableRejected(t *testing.T) {
	repo := setupRepo(t)

	err := repo.Store("securities; DROP TABLE preferences", "x", 1, time.Hour)
	assert.Error(t, err)

	_, err = repo.Get("nope", "x")
	assert.Error(t, err)
}

func TestCleanupJob_DeletesOnlyExpired(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Store("stooq_history", "OLD", 1, -time.Minute))
	require.NoError(t, repo.Store("stooq_history", "NEW", 2, time.Hour))
	require.NoError(t, repo.Store("yahoo_fundamentals", "OLD", 3, -time.Minute))

	job := NewCleanupJob(repo, zerolog.Nop())
	assert.Equal(t, "client_data_cleanup", job.Name())
	require.NoError(t, job.Run())

	gone, err := repo.Get("stooq_history", "OLD")
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := repo.GetIfFresh("stooq_history", "NEW")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}
