package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bioleads/bioleads-cli/internal/cost"
	"github.com/bioleads/bioleads-cli/internal/outreach"
)

var outreachCmd = &cobra.Command{
	Use:   "outreach <run-id>",
	Short: "Draft outreach emails for the top leads of a run",
	Long: `Generates a personalized cold outreach email for each of the
highest-ranked leads in a saved run, using their title, company, publication,
and funding signals. Company-only funding entries are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runOutreach,
}

func runOutreach(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	scored, err := st.GetRunLeads(ctx, args[0])
	if err != nil {
		return eris.Wrapf(err, "load run %s", args[0])
	}

	client, err := initAnthropic()
	if err != nil {
		return err
	}

	drafter := &outreach.Drafter{
		Client:    client,
		Model:     cfg.Anthropic.Model,
		MaxTokens: int64(cfg.Anthropic.MaxTokens),
	}

	top, _ := cmd.Flags().GetInt("top")
	drafts, err := drafter.DraftTop(ctx, scored, top)
	if err != nil {
		return err
	}

	calc := cost.NewCalculator(cost.DefaultRates())
	var spend float64
	for i, d := range drafts {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		fmt.Fprintf(os.Stdout, "--- %d. %s (%s, score %d) ---\n%s\n",
			d.Lead.Rank, d.Lead.Name, d.Lead.Company, d.Lead.ProbabilityScore, d.Email)
		spend += calc.Draft(cfg.Anthropic.Model, d.Usage.InputTokens, d.Usage.OutputTokens)
	}
	fmt.Fprintf(os.Stdout, "\nEstimated API spend: $%.4f\n", spend)
	return nil
}

func init() {
	outreachCmd.Flags().Int("top", 5, "number of top-ranked leads to draft for")
	rootCmd.AddCommand(outreachCmd)
}
