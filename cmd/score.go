package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bioleads/bioleads-cli/internal/export"
	"github.com/bioleads/bioleads-cli/internal/model"
)

var scoreCmd = &cobra.Command{
	Use:   "score <leads.json>",
	Short: "Score and rank a lead batch",
	Long: `Scores every lead in the batch on five signals (scientific intent,
role fit, company intent, technographic, location), ranks by composite score,
and prints the result. Pass "-" to read the batch from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	leads, err := loadLeads(args[0])
	if err != nil {
		return err
	}

	vocab, _ := cmd.Flags().GetString("vocab")
	engine, err := initEngine(vocab)
	if err != nil {
		return err
	}

	scored := engine.Rank(leads)

	minScore, _ := cmd.Flags().GetInt("min-score")
	if minScore == 0 {
		minScore = cfg.Scoring.MinScore
	}
	if minScore > 0 {
		kept := scored[:0]
		for _, sl := range scored {
			if sl.ProbabilityScore >= minScore {
				kept = append(kept, sl)
			}
		}
		scored = kept
	}

	zap.L().Info("batch scored",
		zap.Int("input", len(leads)),
		zap.Int("kept", len(scored)),
	)

	if save, _ := cmd.Flags().GetBool("save"); save {
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		label, _ := cmd.Flags().GetString("label")
		run, err := st.SaveRun(ctx, label, scored)
		if err != nil {
			return eris.Wrap(err, "save run")
		}
		zap.L().Info("run saved", zap.String("run_id", run.ID))
	}

	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")
	return writeScored(scored, format, limit)
}

// writeScored renders a ranked batch to stdout in the requested format.
func writeScored(scored []model.ScoredLead, format string, limit int) error {
	switch format {
	case "table":
		return export.WriteTable(os.Stdout, scored, limit)
	case "csv":
		if limit > 0 && limit < len(scored) {
			scored = scored[:limit]
		}
		return export.WriteCSV(os.Stdout, scored)
	case "json":
		if limit > 0 && limit < len(scored) {
			scored = scored[:limit]
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scored)
	default:
		return eris.Errorf("unsupported format: %s", format)
	}
}

func init() {
	scoreCmd.Flags().String("vocab", "", "scoring vocabulary YAML override")
	scoreCmd.Flags().Int("min-score", 0, "drop leads below this score (default from config)")
	scoreCmd.Flags().Int("limit", 0, "max leads to display (0 = all)")
	scoreCmd.Flags().String("format", "table", "output format: table, csv, json")
	scoreCmd.Flags().Bool("save", false, "persist the batch as a scoring run")
	scoreCmd.Flags().String("label", "", "label for the saved run")
	rootCmd.AddCommand(scoreCmd)
}
