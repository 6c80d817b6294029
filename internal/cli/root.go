// Package cli implements the capitol command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/talgya/capitol/internal/config"
	"github.com/talgya/capitol/internal/engine"
	"github.com/talgya/capitol/internal/persistence"
)

// app carries what every command needs once the root has loaded config.
type app struct {
	configPath string
	saveID     string
	cfg        *config.Config
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "capitol",
		Short: "Capitol: a turn-based political career simulation",
		Long: `Capitol simulates a political career one day at a time: an economy that
drifts under your laws, treasuries that keep every dollar, a legislature
that votes, and elections you have to win.

Start a career:
  capitol new --name "Dana Reyes"

Then play it forward:
  capitol campaign start city_council
  capitol advance --days 30
  capitol summary`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "config file")
	root.PersistentFlags().StringVar(&a.saveID, "save", "", "save id (default: the active save)")

	root.AddCommand(newNewCmd(a))
	root.AddCommand(newAdvanceCmd(a))
	root.AddCommand(newSummaryCmd(a))
	root.AddCommand(newSavesCmd(a))
	root.AddCommand(newLawCmd(a))
	root.AddCommand(newPolicyCmd(a))
	root.AddCommand(newCampaignCmd(a))
	root.AddCommand(newBudgetCmd(a))
	return root
}

func (a *app) init(logOut io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", a.configPath, err)
	}
	lvl, _ := cfg.LogLevel()
	slog.SetDefault(slog.New(newLogHandler(logOut, cfg.Log.Format, lvl)))
	a.cfg = cfg
	return nil
}

// newLogHandler returns a text handler for terminals and a JSON handler
// otherwise, unless format forces one.
func newLogHandler(w io.Writer, format string, lvl slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "auto" {
		format = "json"
		if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			format = "text"
		}
	}
	if format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func (a *app) openDB() (*persistence.DB, error) {
	path := a.cfg.Database.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("database opened", "path", path)
	return db, nil
}

// resolveSave picks the --save flag, then the active save, then the most
// recently written one.
func (a *app) resolveSave(db *persistence.DB) (string, error) {
	if a.saveID != "" {
		return a.saveID, nil
	}
	if id, err := db.GetMeta(persistence.ActiveSaveKey); err == nil && id != "" {
		return id, nil
	}
	latest, err := db.LatestSave()
	if errors.Is(err, persistence.ErrSaveNotFound) {
		return "", fmt.Errorf("no saved game; start one with `capitol new`")
	}
	if err != nil {
		return "", err
	}
	return latest.ID, nil
}

// game is a loaded save.
type game struct {
	db  *persistence.DB
	id  string
	sim *engine.Simulation
}

func (a *app) loadGame() (*game, error) {
	db, err := a.openDB()
	if err != nil {
		return nil, err
	}
	id, err := a.resolveSave(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	snap, err := db.LoadGame(id)
	if err != nil {
		db.Close()
		return nil, err
	}
	sim, err := engine.Restore(snap)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("restore save %s: %w", id, err)
	}
	return &game{db: db, id: id, sim: sim}, nil
}

func (g *game) save() error {
	return g.db.OverwriteSave(g.id, g.sim.Snapshot())
}

func (g *game) close() {
	g.db.Close()
}

// withGame loads the active save, runs fn, and writes the game back when fn
// succeeds.
func (a *app) withGame(fn func(g *game) error) error {
	g, err := a.loadGame()
	if err != nil {
		return err
	}
	defer g.close()
	if err := fn(g); err != nil {
		return err
	}
	return g.save()
}
