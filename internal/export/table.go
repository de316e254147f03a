package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bioleads/bioleads-cli/internal/model"
)

// WriteTable renders the ranked batch as an aligned text table with a tier
// summary footer. limit <= 0 prints every lead.
func WriteTable(out io.Writer, scored []model.ScoredLead, limit int) error {
	if limit <= 0 || limit > len(scored) {
		limit = len(scored)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNAME\tCOMPANY\tSCORE\tTIER")
	for _, sl := range scored[:limit] {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			sl.Rank, sl.Name, sl.Company, sl.ProbabilityScore, sl.Tier)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	avg, tiers := model.Summarize(scored)
	fmt.Fprintf(out, "\n%d leads, average score %.1f\n", len(scored), avg)
	for _, tier := range []model.Tier{
		model.TierHot, model.TierHigh, model.TierMedium, model.TierLow, model.TierCold,
	} {
		if n := tiers[tier]; n > 0 {
			fmt.Fprintf(out, "  %-16s %d\n", tier, n)
		}
	}
	return nil
}
