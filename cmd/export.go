package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bioleads/bioleads-cli/internal/export"
	"github.com/bioleads/bioleads-cli/internal/model"
)

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a saved run to CSV, Excel, Notion, or Salesforce",
	Long: `Exports the ranked leads of a saved scoring run. CSV and Excel write
locally; Notion and Salesforce push through their APIs, skipping leads that
already exist in the target.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
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
	if len(scored) == 0 {
		return eris.Errorf("run %s has no leads", args[0])
	}

	target, _ := cmd.Flags().GetString("target")
	output, _ := cmd.Flags().GetString("output")
	return exportScored(ctx, scored, target, output)
}

func exportScored(ctx context.Context, scored []model.ScoredLead, target, output string) error {
	switch target {
	case "csv":
		if output == "" {
			return export.WriteCSV(os.Stdout, scored)
		}
		f, err := os.Create(output)
		if err != nil {
			return eris.Wrapf(err, "create %s", output)
		}
		defer f.Close() //nolint:errcheck
		if err := export.WriteCSV(f, scored); err != nil {
			return err
		}
		fmt.Printf("Wrote %d leads to %s\n", len(scored), output)
		return nil

	case "xlsx":
		if output == "" {
			output = "leads.xlsx"
		}
		if err := export.WriteXLSX(output, scored); err != nil {
			return err
		}
		fmt.Printf("Wrote %d leads to %s\n", len(scored), output)
		return nil

	case "notion":
		client, dbID, err := initNotion()
		if err != nil {
			return err
		}
		exp := &export.NotionExporter{Client: client, DatabaseID: dbID}
		created, err := exp.Export(ctx, scored)
		if err != nil {
			return eris.Wrap(err, "notion export")
		}
		zap.L().Info("notion export complete", zap.Int("created", created))
		fmt.Printf("Created %d Notion pages (%d already present)\n", created, len(scored)-created)
		return nil

	case "salesforce":
		client, err := initSalesforce()
		if err != nil {
			return err
		}
		exp := &export.SalesforceExporter{Client: client}
		inserted, err := exp.Export(ctx, scored)
		if err != nil {
			return eris.Wrap(err, "salesforce export")
		}
		zap.L().Info("salesforce export complete", zap.Int("inserted", inserted))
		fmt.Printf("Inserted %d of %d Salesforce leads\n", inserted, len(scored))
		return nil

	default:
		return eris.Errorf("unsupported export target: %s", target)
	}
}

func init() {
	exportCmd.Flags().String("target", "csv", "export target: csv, xlsx, notion, salesforce")
	exportCmd.Flags().String("output", "", "output path for csv/xlsx targets")
	rootCmd.AddCommand(exportCmd)
}
