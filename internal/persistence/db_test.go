package persistence

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/capitol/internal/character"
	"github.com/talgya/capitol/internal/economy"
	"github.com/talgya/capitol/internal/engine"
	"github.com/talgya/capitol/internal/legislature"
)

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "capitol.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func playedGame(t *testing.T) *engine.Simulation {
	t.Helper()
	cfg := engine.DefaultSettings(17, start)
	cfg.Character.Position = character.OfficeMayor
	cfg.Character.Record = []character.OfficeID{character.OfficeMayor}
	s := engine.NewSimulation(cfg)

	res := s.CreateLaw(legislature.CategoryEducation)
	require.True(t, res.Success, res.Message)
	require.True(t, s.ProposeLaw(res.Law.ID).Success)
	require.True(t, s.ApplyBudget(decimal.RequireFromString("-1234.56"), "Snow removal").Success)
	for range 15 {
		_, err := s.AdvanceDay()
		require.NoError(t, err)
	}
	return s
}

func asJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTemp(t)
	s := playedGame(t)
	snap := s.Snapshot()

	id, err := db.SaveGame("first term", snap)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	loaded, err := db.LoadGame(id)
	require.NoError(t, err)
	assert.JSONEq(t, asJSON(t, snap), asJSON(t, loaded))

	restored, err := engine.Restore(loaded)
	require.NoError(t, err)
	for range 10 {
		_, err := s.AdvanceDay()
		require.NoError(t, err)
		_, err = restored.AdvanceDay()
		require.NoError(t, err)
	}
	assert.JSONEq(t, asJSON(t, s.Snapshot()), asJSON(t, restored.Snapshot()))
}

func TestLoadMissingSave(t *testing.T) {
	db := openTemp(t)
	_, err := db.LoadGame("nope")
	assert.ErrorIs(t, err, ErrSaveNotFound)
	_, err = db.LatestSave()
	assert.ErrorIs(t, err, ErrSaveNotFound)
}

func TestListAndLatest(t *testing.T) {
	db := openTemp(t)
	s := playedGame(t)

	first, err := db.SaveGame("one", s.Snapshot())
	require.NoError(t, err)
	second, err := db.SaveGame("two", s.Snapshot())
	require.NoError(t, err)

	saves, err := db.ListSaves()
	require.NoError(t, err)
	require.Len(t, saves, 2)
	assert.Equal(t, second, saves[0].ID)
	assert.Equal(t, first, saves[1].ID)
	assert.Equal(t, 15, saves[0].Day)
	assert.Equal(t, "mayor", saves[0].Position)
	assert.True(t, saves[0].GameDate.Equal(start.AddDate(0, 0, 15)))

	latest, err := db.LatestSave()
	require.NoError(t, err)
	assert.Equal(t, second, latest.ID)

	active, err := db.GetMeta(ActiveSaveKey)
	require.NoError(t, err)
	assert.Equal(t, second, active)
}

func TestRecentLedger(t *testing.T) {
	db := openTemp(t)
	s := playedGame(t)
	id, err := db.SaveGame("ledger", s.Snapshot())
	require.NoError(t, err)

	entries, err := db.RecentLedger(id, economy.Local, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	want := s.Ledger(economy.Local).Recent(1)[0]
	assert.Equal(t, want.Seq, entries[0].Seq)
	assert.True(t, want.EndingBalance.Equal(entries[0].EndingBalance))
	assert.Equal(t, want.Description, entries[0].Description)
}

func TestDeleteSaveCascades(t *testing.T) {
	db := openTemp(t)
	id, err := db.SaveGame("gone", playedGame(t).Snapshot())
	require.NoError(t, err)

	require.NoError(t, db.DeleteSave(id))
	assert.ErrorIs(t, db.DeleteSave(id), ErrSaveNotFound)

	entries, err := db.RecentLedger(id, economy.Local, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	events, err := db.RecentEvents(id, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestOverwriteSaveReplacesContents(t *testing.T) {
	db := openTemp(t)
	s := playedGame(t)
	first, err := db.SaveGame("career", s.Snapshot())
	require.NoError(t, err)
	second, err := db.SaveGame("other", s.Snapshot())
	require.NoError(t, err)

	for range 20 {
		_, err := s.AdvanceDay()
		require.NoError(t, err)
	}
	require.NoError(t, db.OverwriteSave(first, s.Snapshot()))

	loaded, err := db.LoadGame(first)
	require.NoError(t, err)
	assert.JSONEq(t, asJSON(t, s.Snapshot()), asJSON(t, loaded))

	saves, err := db.ListSaves()
	require.NoError(t, err)
	require.Len(t, saves, 2)
	assert.Equal(t, first, saves[0].ID)
	assert.Equal(t, "career", saves[0].Name)
	assert.Equal(t, 35, saves[0].Day)
	assert.Equal(t, second, saves[1].ID)
	assert.False(t, saves[0].UpdatedAt.Before(saves[0].CreatedAt))

	active, err := db.GetMeta(ActiveSaveKey)
	require.NoError(t, err)
	assert.Equal(t, first, active)

	assert.ErrorIs(t, db.OverwriteSave("missing", s.Snapshot()), ErrSaveNotFound)
}

func TestDeleteActiveSaveClearsPointer(t *testing.T) {
	db := openTemp(t)
	id, err := db.SaveGame("only", playedGame(t).Snapshot())
	require.NoError(t, err)
	require.NoError(t, db.DeleteSave(id))

	_, err = db.GetMeta(ActiveSaveKey)
	assert.Error(t, err)
}
