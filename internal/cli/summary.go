package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/capitol/internal/character"
	"github.com/talgya/capitol/internal/economy"
	"github.com/talgya/capitol/internal/election"
	"github.com/talgya/capitol/internal/engine"
	"github.com/talgya/capitol/internal/govstats"
	"github.com/talgya/capitol/internal/legislature"
	"github.com/talgya/capitol/internal/persistence"
	"github.com/talgya/capitol/internal/treasury"
)

// Summary is the machine-readable form of `capitol summary --json`.
type Summary struct {
	SaveID      string                     `json:"save_id"`
	Day         int                        `json:"day"`
	Date        string                     `json:"date"`
	Character   character.State            `json:"character"`
	Economy     economy.Snapshot           `json:"economy"`
	World       []economy.Country          `json:"world"`
	WorldRank   int                        `json:"world_rank"`
	Treasury    []treasury.Summary         `json:"treasury"`
	Legislature legislature.SessionSummary `json:"legislature"`
	Stats       *govstats.Stats            `json:"stats,omitempty"`
	Campaign    *election.Campaign         `json:"campaign,omitempty"`
	Events      []engine.Event             `json:"events"`
}

func buildSummary(id string, sim *engine.Simulation, recent int) Summary {
	sum := Summary{
		SaveID:      id,
		Day:         sim.Day,
		Date:        economy.FormatDate(sim.Date),
		Character:   sim.Character,
		Economy:     sim.Economy().Snapshot(),
		World:       sim.Economy().Compare(),
		WorldRank:   sim.Economy().WorldRank(),
		Legislature: sim.SessionSummary(),
		Stats:       sim.StatsSummary(),
		Campaign:    sim.Campaign(),
	}
	for _, j := range economy.Jurisdictions {
		sum.Treasury = append(sum.Treasury, sim.TreasurySummary(j, recent))
	}
	events := sim.Events
	if len(events) > recent {
		events = events[len(events)-recent:]
	}
	sum.Events = events
	return sum
}

func newSummaryCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		recent int
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the career, economy, treasuries, legislature, and scorecard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGame()
			if err != nil {
				return err
			}
			defer g.close()

			sum := buildSummary(g.id, g.sim, recent)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}
			printSummary(out, sum)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().IntVar(&recent, "recent", 5, "ledger entries and events to show")
	return cmd
}

func printSummary(w io.Writer, sum Summary) {
	ch := sum.Character
	fmt.Fprintf(w, "%s, day %d\n\n", sum.Date, sum.Day)

	office := "out of office"
	if o, ok := ch.CurrentOffice(); ok {
		office = o.Title
	}
	fmt.Fprintf(w, "%s (%d), %s\n", ch.Name, ch.Age, office)
	fmt.Fprintf(w, "  funds %s   campaign funds %s\n", economy.FormatGDP(ch.Funds), economy.FormatGDP(ch.CampaignFunds))
	fmt.Fprintf(w, "  approval %s   reputation %.1f\n\n", economy.FormatPercentage(ch.Approval), ch.Reputation)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ECONOMY\tGDP\tGROWTH\tUNEMPLOYMENT\tINFLATION\tRATE\tPOPULATION")
	for _, j := range economy.Jurisdictions {
		r := sum.Economy.For(j)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", j,
			economy.FormatGDP(r.GDP), economy.FormatPercentage(r.GDPGrowth), economy.FormatPercentage(r.Unemployment),
			economy.FormatPercentage(r.Inflation), economy.FormatPercentage(r.InterestRate), economy.FormatPopulation(r.Population))
	}
	tw.Flush()
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "WORLD (#%d)\tGDP\tPER CAPITA\tUNEMPLOYMENT\tINFLATION\n", sum.WorldRank)
	for _, c := range sum.World {
		name := c.Name
		if name == economy.HomeCountry {
			name = "> " + name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, economy.FormatGDP(c.GDP), economy.FormatGDP(c.GDPPerCapita()),
			economy.FormatPercentage(c.Unemployment), economy.FormatPercentage(c.Inflation))
	}
	tw.Flush()
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TREASURY\tFY\tBALANCE\tDEBT/GDP\tDEFICITS\tSURPLUSES\tINTEREST")
	for _, t := range sum.Treasury {
		ratio := "n/a"
		if t.DebtToGDP != nil {
			ratio = fmt.Sprintf("%s %s", economy.FormatPercentage(*t.DebtToGDP), t.Band)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n", t.Jurisdiction, t.FiscalYear,
			economy.FormatGDP(t.Balance.InexactFloat64()), ratio,
			economy.FormatGDP(t.TotalDebt.InexactFloat64()), economy.FormatGDP(t.TotalSurplus.InexactFloat64()),
			economy.FormatGDP(t.TotalInterest.InexactFloat64()))
	}
	tw.Flush()
	fmt.Fprintln(w)

	leg := sum.Legislature
	fmt.Fprintf(w, "Legislature: %d drafts, %d active, %d passed, %d rejected, %d withdrawn (pass rate %s), %d policies enacted\n",
		leg.Drafts, leg.Active, leg.Passed, leg.Rejected, leg.Withdrawn, economy.FormatPercentage(leg.PassRate), leg.EnactedPolicies)
	for _, law := range leg.ActiveLaws {
		fmt.Fprintf(w, "  %s  %-40s %s, %s public support\n", law.ID, law.Title, law.Status, economy.FormatPercentage(law.PublicSupport))
	}

	if st := sum.Stats; st != nil {
		fmt.Fprintf(w, "\nScorecard (%s): %.1f %s\n", st.Jurisdiction, st.Overall, st.Rating)
		for _, d := range st.Departments {
			fmt.Fprintf(w, "  %-16s %5.1f %s\n", d.Name, d.Score, d.Rating)
		}
	}

	if c := sum.Campaign; c != nil {
		title := string(c.Office)
		if o, ok := character.LookupOffice(c.Office); ok {
			title = o.Title
		}
		fmt.Fprintf(w, "\nCampaign for %s: polling %s, %d days to election day, %s spent\n",
			title, economy.FormatPercentage(c.PollPercentage), c.DaysRemaining, economy.FormatGDP(c.Spent))
	}

	if len(sum.Events) > 0 {
		fmt.Fprintln(w, "\nRecent events:")
		for i := len(sum.Events) - 1; i >= 0; i-- {
			e := sum.Events[i]
			fmt.Fprintf(w, "  %s  %s\n", economy.FormatDate(e.Date), e.Description)
		}
	}
}

func newSavesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saves",
		Short: "List save slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			saves, err := db.ListSaves()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(saves) == 0 {
				fmt.Fprintln(out, "No saves yet; start one with `capitol new`.")
				return nil
			}
			active, _ := db.GetMeta(persistence.ActiveSaveKey)

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "\tID\tNAME\tCHARACTER\tPOSITION\tGAME DATE\tDAY\tSAVED")
			for _, s := range saves {
				mark := ""
				if s.ID == active {
					mark = "*"
				}
				pos := s.Position
				if pos == "" {
					pos = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n", mark, s.ID, s.Name, s.Character, pos,
					economy.FormatDate(s.GameDate), s.Day, humanize.Time(s.UpdatedAt))
			}
			return tw.Flush()
		},
	}

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a save slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.DeleteSave(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
	use := &cobra.Command{
		Use:   "use ID",
		Short: "Make a save the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if _, err := db.LoadGame(args[0]); err != nil {
				return err
			}
			return db.SaveMeta(persistence.ActiveSaveKey, args[0])
		},
	}
	cmd.AddCommand(rm, use)
	return cmd
}
