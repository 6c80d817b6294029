package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/talgya/capitol/internal/character"
	"github.com/talgya/capitol/internal/economy"
	"github.com/talgya/capitol/internal/election"
	"github.com/talgya/capitol/internal/legislature"
	"github.com/talgya/capitol/internal/outcome"
)

// report prints a command outcome. A failed outcome becomes the command
// error so nothing is saved.
func report(w io.Writer, res outcome.Result) error {
	if !res.Success {
		if res.Err != nil {
			return res.Err
		}
		return errors.New(res.Message)
	}
	fmt.Fprintln(w, res.Message)
	return nil
}

// gameAction builds a leaf command that runs fn against the active save.
func gameAction(a *app, use, short string, nargs int, fn func(g *game, args []string) outcome.Result) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGame(func(g *game) error {
				return report(cmd.OutOrStdout(), fn(g, args))
			})
		},
	}
}

func newLawCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "law",
		Short: "Draft and steer legislation",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every law in the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGame()
			if err != nil {
				return err
			}
			defer g.close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tSTATUS\tSUPPORT\tVOTES")
			for _, l := range g.sim.Laws() {
				votes := "-"
				if l.VotesFor+l.VotesAgainst > 0 {
					votes = fmt.Sprintf("%d-%d", l.VotesFor, l.VotesAgainst)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", l.ID, l.Title, l.Category, l.Status,
					economy.FormatPercentage(l.PublicSupport), votes)
			}
			return tw.Flush()
		},
	}

	create := gameAction(a, "create CATEGORY", "Draft a bill in a category", 1, func(g *game, args []string) outcome.Result {
		cat, err := legislature.ParseCategory(args[0])
		if err != nil {
			return outcome.Fail(err)
		}
		res := g.sim.CreateLaw(cat)
		if res.Success {
			res.Message = fmt.Sprintf("%s (%s)", res.Message, res.Law.ID)
		}
		return res.Result
	})
	propose := gameAction(a, "propose ID", "File a draft for consideration", 1, func(g *game, args []string) outcome.Result {
		return g.sim.ProposeLaw(args[0]).Result
	})
	advance := gameAction(a, "advance ID", "Push a law to its next stage", 1, func(g *game, args []string) outcome.Result {
		return g.sim.AdvanceLaw(args[0]).Result
	})
	withdraw := gameAction(a, "withdraw ID", "Pull a law from consideration", 1, func(g *game, args []string) outcome.Result {
		return g.sim.WithdrawLaw(args[0]).Result
	})
	discard := gameAction(a, "discard ID", "Delete an unfiled draft", 1, func(g *game, args []string) outcome.Result {
		return g.sim.DeleteDraftLaw(args[0]).Result
	})

	cmd.AddCommand(list, create, propose, advance, withdraw, discard)
	return cmd
}

func newPolicyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Propose, enact, and repeal standing policies",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the policy catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGame()
			if err != nil {
				return err
			}
			defer g.close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tCOST\tREQUIRES")
			for _, p := range g.sim.Policies() {
				req := "-"
				if len(p.Requirements.Prerequisites) > 0 {
					req = fmt.Sprint(p.Requirements.Prerequisites)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Status,
					economy.FormatGDP(p.Requirements.CostToEnact), req)
			}
			return tw.Flush()
		},
	}

	propose := gameAction(a, "propose ID", "Put a policy on the agenda", 1, func(g *game, args []string) outcome.Result {
		return g.sim.ProposePolicy(args[0]).Result
	})
	enact := gameAction(a, "enact ID", "Enact a proposed policy", 1, func(g *game, args []string) outcome.Result {
		return g.sim.EnactPolicy(args[0]).Result
	})
	repeal := gameAction(a, "repeal ID", "Repeal an enacted policy", 1, func(g *game, args []string) outcome.Result {
		return g.sim.RepealPolicy(args[0]).Result
	})

	cmd.AddCommand(list, propose, enact, repeal)
	return cmd
}

func newCampaignCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Run for office",
	}

	offices := &cobra.Command{
		Use:   "offices",
		Short: "List the offices you can run for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tLEVEL\tMIN AGE\tCAMPAIGN DAYS\tRIVALS")
			for _, o := range character.Offices() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n", o.ID, o.Title, o.Level, o.MinAge, o.CampaignDays, o.Rivals)
			}
			return tw.Flush()
		},
	}

	var level string
	activities := &cobra.Command{
		Use:   "activities",
		Short: "List campaign activities and their prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl := character.LevelLocal
			switch level {
			case "local":
			case "state":
				lvl = character.LevelState
			case "federal":
				lvl = character.LevelFederal
			default:
				return fmt.Errorf("unknown level %q", level)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tNAME\tCOST\tRAISES\tPOLL")
			for _, act := range election.Activities(lvl) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t+%.1f\n", act.Type, act.Name,
					economy.FormatGDP(act.Cost), economy.FormatGDP(act.Raises), act.BasePollImpact)
			}
			return tw.Flush()
		},
	}
	activities.Flags().StringVar(&level, "level", "local", "race level: local, state, or federal")

	start := gameAction(a, "start OFFICE", "Declare a run for an office", 1, func(g *game, args []string) outcome.Result {
		return g.sim.StartCampaign(character.OfficeID(args[0])).Result
	})
	do := gameAction(a, "do ACTIVITY", "Spend campaign funds on an activity", 1, func(g *game, args []string) outcome.Result {
		return g.sim.PerformCampaignActivity(election.ActivityType(args[0])).Result
	})

	cmd.AddCommand(offices, activities, start, do)
	return cmd
}

func newBudgetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Book budget items to your government's treasury",
	}
	book := func(sign int64) func(g *game, args []string) outcome.Result {
		return func(g *game, args []string) outcome.Result {
			amount, err := parseAmount(args[0])
			if err != nil {
				return outcome.Fail(err)
			}
			return g.sim.ApplyBudget(amount.Mul(decimal.NewFromInt(sign)), args[1])
		}
	}
	spend := gameAction(a, "spend AMOUNT DESCRIPTION", "Book spending", 2, book(-1))
	collect := gameAction(a, "collect AMOUNT DESCRIPTION", "Book revenue", 2, book(1))
	cmd.AddCommand(spend, collect)
	return cmd
}

// parseAmount reads a positive money amount. Commas are allowed as thousands
// separators.
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("amount: %w", err)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("amount must be positive, got %s", s)
	}
	return amount, nil
}
