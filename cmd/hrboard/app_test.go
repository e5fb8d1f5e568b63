package main

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhinspira/hrboard/pkg/blob"
	"github.com/rhinspira/hrboard/pkg/store"
)

func withFlags(t *testing.T, dir, backend string) {
	t.Helper()
	prevDir, prevBackend, prevLevel := flagDir, flagBackend, flagLogLevel
	flagDir, flagBackend, flagLogLevel = dir, backend, "error"
	t.Cleanup(func() {
		flagDir, flagBackend, flagLogLevel = prevDir, prevBackend, prevLevel
	})
}

func TestNewAppFileBackendSavesAndRecordsHistory(t *testing.T) {
	withFlags(t, t.TempDir(), "file")

	a, err := newApp(context.Background(), false)
	require.NoError(t, err)
	defer a.Close()

	assert.NotEmpty(t, a.watchPath)
	assert.Greater(t, a.board.WeekCount(), 0, "seed data loaded")

	_, ok := a.lastWritten(context.Background())
	assert.False(t, ok, "nothing written yet")

	require.NoError(t, a.syncer.Flush(context.Background()))
	_, err = os.Stat(a.watchPath)
	require.NoError(t, err)

	at, ok := a.lastWritten(context.Background())
	assert.True(t, ok)
	assert.False(t, at.IsZero())

	require.NotNil(t, a.history)
	entries, err := a.history.Log(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNewAppReloadsWhatWasSaved(t *testing.T) {
	dir := t.TempDir()
	withFlags(t, dir, "sqlite")

	a, err := newApp(context.Background(), false)
	require.NoError(t, err)
	_, err = a.board.AddGoal(store.Semester1, "Contratar tech lead")
	require.NoError(t, err)
	require.NoError(t, a.syncer.Flush(context.Background()))
	require.NoError(t, a.Close())

	b, err := newApp(context.Background(), false)
	require.NoError(t, err)
	defer b.Close()

	goals := b.board.Strategic().Semester1Goals
	require.NotEmpty(t, goals)
	assert.Equal(t, "Contratar tech lead", goals[len(goals)-1].Text)
}

func TestOpenMediumMemory(t *testing.T) {
	withFlags(t, t.TempDir(), "memory")

	cfg, err := loadConfig()
	require.NoError(t, err)
	m, path, err := openMedium(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.IsType(t, &blob.MemoryStore{}, m)
}
