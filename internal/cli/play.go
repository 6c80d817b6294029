package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/capitol/internal/economy"
	"github.com/talgya/capitol/internal/engine"
)

func newNewCmd(a *app) *cobra.Command {
	var (
		saveName  string
		character string
		seed      int64
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new career in a new save slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				a.cfg.Game.Seed = seed
			}
			settings, err := a.cfg.Settings()
			if err != nil {
				return err
			}
			if character != "" {
				settings.Character.Name = character
			}
			sim := engine.NewSimulation(settings)

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if saveName == "" {
				saveName = settings.Character.Name
			}
			id, err := db.SaveGame(saveName, sim.Snapshot())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "New career for %s, age %d, starting %s (seed %d)\n",
				sim.Character.Name, sim.Character.Age, economy.FormatDate(sim.Date), sim.Seed())
			fmt.Fprintf(out, "Save: %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&saveName, "save-name", "", "name of the save slot (default: the character's name)")
	cmd.Flags().StringVar(&character, "name", "", "character name (default: from config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "game seed; 0 draws one (default: from config)")
	return cmd
}

func newAdvanceCmd(a *app) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Play the active save forward by a number of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			g, err := a.loadGame()
			if err != nil {
				return err
			}
			defer g.close()

			eng := engine.NewEngine(g.sim)
			if err := eng.Every("autosave", a.cfg.Schedule.Autosave, func(time.Time) error {
				return g.save()
			}); err != nil {
				return err
			}
			if err := eng.Every("report", a.cfg.Schedule.Report, g.sim.WeeklySummary); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			eng.OnDay = func(rep engine.DayReport) { printDay(out, rep) }

			reports, err := eng.Step(days)
			if err != nil {
				// The last checkpoint stands; the failed day is not written.
				return fmt.Errorf("simulation stopped after %d days: %w", len(reports), err)
			}
			if err := g.save(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Advanced %d days to %s (day %d)\n", len(reports), economy.FormatDate(g.sim.Date), g.sim.Day)
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 1, "days to simulate")
	return cmd
}

// printDay writes the notable outcomes of one day.
func printDay(w io.Writer, rep engine.DayReport) {
	date := economy.FormatDate(rep.Date)
	for _, res := range rep.Legislature.Resolved {
		fmt.Fprintf(w, "%s  %s\n", date, res.Message)
	}
	if rep.Election != nil {
		fmt.Fprintf(w, "%s  %s\n", date, rep.Election.Message)
		if r := rep.Election.Election.Results; r != nil {
			for _, sh := range r.Shares {
				fmt.Fprintf(w, "    %-24s %s\n", sh.Candidate, economy.FormatPercentage(sh.Percent))
			}
		}
	}
}
