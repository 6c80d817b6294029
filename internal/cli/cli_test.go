package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/capitol/internal/character"
	"github.com/talgya/capitol/internal/config"
	"github.com/talgya/capitol/internal/economy"
	"github.com/talgya/capitol/internal/engine"
	"github.com/talgya/capitol/internal/persistence"
)

// testConfig writes a config pointing at a temp database.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "capitol.yaml")
	body := fmt.Sprintf("database:\n  path: %q\nlog:\n  level: warn\n  format: json\n", filepath.Join(dir, "data", "capitol.db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCareerFromTheCommandLine(t *testing.T) {
	cfg := testConfig(t)

	out, err := run(t, cfg, "new", "--name", "Dana Reyes", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "New career for Dana Reyes")
	assert.Contains(t, out, "Save: ")

	out, err = run(t, cfg, "saves")
	require.NoError(t, err)
	assert.Contains(t, out, "Dana Reyes")
	assert.Contains(t, out, "*")

	_, err = run(t, cfg, "law", "create", "education")
	assert.ErrorIs(t, err, engine.ErrNotInOffice)

	out, err = run(t, cfg, "campaign", "start", "city_council")
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	out, err = run(t, cfg, "campaign", "do", "door_knocking")
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	out, err = run(t, cfg, "advance", "--days", "70")
	require.NoError(t, err)
	assert.Contains(t, out, "Advanced 70 days")

	out, err = run(t, cfg, "summary", "--json")
	require.NoError(t, err)
	var sum Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 70, sum.Day)
	assert.Equal(t, "Dana Reyes", sum.Character.Name)
	assert.Nil(t, sum.Campaign, "the election is over after 60 days")
	assert.Len(t, sum.Treasury, 3)
	assert.Len(t, sum.World, len(economy.DefaultCountries())+1)
	assert.GreaterOrEqual(t, sum.WorldRank, 1)
	assert.Equal(t, economy.HomeCountry, sum.World[sum.WorldRank-1].Name)

	out, err = run(t, cfg, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Dana Reyes")
	assert.Contains(t, out, "TREASURY")
	assert.Contains(t, out, "WORLD (#")
	assert.Contains(t, out, "> "+economy.HomeCountry)
}

func TestNewDrawsASeedUnlessPinned(t *testing.T) {
	cfg := testConfig(t)
	seedOf := func(out string) string {
		t.Helper()
		m := regexp.MustCompile(`\(seed (\d+)\)`).FindStringSubmatch(out)
		require.Len(t, m, 2, out)
		return m[1]
	}

	out, err := run(t, cfg, "new")
	require.NoError(t, err)
	first := seedOf(out)
	out, err = run(t, cfg, "new")
	require.NoError(t, err)
	assert.NotEqual(t, first, seedOf(out))

	out, err = run(t, cfg, "new", "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, "7", seedOf(out))
}

func TestCommandsNeedASave(t *testing.T) {
	cfg := testConfig(t)
	_, err := run(t, cfg, "summary")
	assert.ErrorContains(t, err, "no saved game")

	out, err := run(t, cfg, "saves")
	require.NoError(t, err)
	assert.Contains(t, out, "No saves yet")
}

func TestFailedActionIsNotSaved(t *testing.T) {
	cfg := testConfig(t)
	_, err := run(t, cfg, "new")
	require.NoError(t, err)

	_, err = run(t, cfg, "campaign", "do", "skywriting")
	assert.Error(t, err)
	_, err = run(t, cfg, "advance", "--days", "0")
	assert.Error(t, err)
	_, err = run(t, cfg, "budget", "spend", "lots", "roads")
	assert.Error(t, err)
	_, err = run(t, cfg, "budget", "spend", "500", "roads")
	assert.ErrorIs(t, err, engine.ErrNotInOffice)

	out, err := run(t, cfg, "summary", "--json")
	require.NoError(t, err)
	var sum Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 0, sum.Day)
	assert.Equal(t, 50_000.0, sum.Character.CampaignFunds)
}

// seatedSave stores a game whose character already serves as mayor.
func seatedSave(t *testing.T, cfgPath string) {
	t.Helper()
	c, err := config.Load(cfgPath)
	require.NoError(t, err)
	settings, err := c.Settings()
	require.NoError(t, err)
	settings.Character.Position = character.OfficeMayor
	settings.Character.Record = []character.OfficeID{character.OfficeMayor}

	require.NoError(t, os.MkdirAll(filepath.Dir(c.Database.Path), 0o755))
	db, err := persistence.Open(c.Database.Path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.SaveGame("mayor", engine.NewSimulation(settings).Snapshot())
	require.NoError(t, err)
}

func localBalance(t *testing.T, cfgPath string) decimal.Decimal {
	t.Helper()
	out, err := run(t, cfgPath, "summary", "--json")
	require.NoError(t, err)
	var sum Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	for _, tr := range sum.Treasury {
		if tr.Jurisdiction == economy.Local {
			return tr.Balance
		}
	}
	require.FailNow(t, "no local treasury")
	return decimal.Decimal{}
}

func TestBudgetSpendAndCollect(t *testing.T) {
	cfg := testConfig(t)
	seatedSave(t, cfg)
	before := localBalance(t, cfg)

	out, err := run(t, cfg, "budget", "spend", "1,500.25", "Pothole repairs")
	require.NoError(t, err)
	assert.Contains(t, out, "Booked")
	assert.True(t, localBalance(t, cfg).Equal(before.Sub(decimal.RequireFromString("1500.25"))))

	_, err = run(t, cfg, "budget", "collect", "500", "Parking fees")
	require.NoError(t, err)
	assert.True(t, localBalance(t, cfg).Equal(before.Sub(decimal.RequireFromString("1000.25"))))

	_, err = run(t, cfg, "budget", "spend", "0", "Nothing")
	assert.ErrorContains(t, err, "positive")
	_, err = run(t, cfg, "budget", "spend", "--", "-5", "Sneaky")
	assert.ErrorContains(t, err, "positive")
}

func TestSavesUseAndRemove(t *testing.T) {
	cfg := testConfig(t)
	_, err := run(t, cfg, "new", "--save-name", "first")
	require.NoError(t, err)
	_, err = run(t, cfg, "new", "--save-name", "second", "--name", "Sam Ortiz")
	require.NoError(t, err)

	out, err := run(t, cfg, "summary", "--json")
	require.NoError(t, err)
	var sum Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, "Sam Ortiz", sum.Character.Name)
	second := sum.SaveID

	_, err = run(t, cfg, "saves", "rm", second)
	require.NoError(t, err)

	out, err = run(t, cfg, "summary", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, "Alex Morgan", sum.Character.Name, "falls back to the remaining save")

	_, err = run(t, cfg, "saves", "use", second)
	assert.Error(t, err)
}

func TestBadConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capitol.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: xml\n"), 0o644))
	_, err := run(t, path, "saves")
	assert.ErrorContains(t, err, "log.format")
}

func TestLogHandlerSelection(t *testing.T) {
	var buf bytes.Buffer
	assert.IsType(t, &slog.JSONHandler{}, newLogHandler(&buf, "auto", slog.LevelInfo))
	assert.IsType(t, &slog.TextHandler{}, newLogHandler(&buf, "text", slog.LevelInfo))
	assert.IsType(t, &slog.JSONHandler{}, newLogHandler(&buf, "json", slog.LevelInfo))

	h := newLogHandler(&buf, "json", slog.LevelWarn)
	assert.False(t, h.Enabled(t.Context(), slog.LevelInfo))
}
