package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bioleads/bioleads-cli/internal/fetcher"
	"github.com/bioleads/bioleads-cli/internal/model"
)

var importCmd = &cobra.Command{
	Use:   "import <leads.csv>",
	Short: "Convert a CSV lead list into a JSON batch",
	Long: `Streams a CSV export (conference roster, CRM dump) and emits the
canonical JSON lead batch. Columns are matched by header name; unknown
columns are ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := os.Open(args[0])
	if err != nil {
		return eris.Wrapf(err, "open %s", args[0])
	}
	defer f.Close() //nolint:errcheck

	leads, err := leadsFromCSV(ctx, f)
	if err != nil {
		return err
	}
	zap.L().Info("csv imported", zap.Int("leads", len(leads)))

	output, _ := cmd.Flags().GetString("output")
	var w io.Writer = os.Stdout
	if output != "" {
		out, err := os.Create(output)
		if err != nil {
			return eris.Wrapf(err, "create %s", output)
		}
		defer out.Close() //nolint:errcheck
		w = out
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(leads)
}

// leadsFromCSV maps CSV rows onto leads by header name. Header matching is
// case-insensitive and treats spaces as underscores.
func leadsFromCSV(ctx context.Context, r io.Reader) ([]model.Lead, error) {
	headerCh := make(chan []string, 1)
	rows, errs := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		HasHeader:  true,
		HeaderCh:   headerCh,
		LazyQuotes: true,
	})

	var index map[string]int
	var leads []model.Lead

	for row := range rows {
		if index == nil {
			header := <-headerCh
			index = make(map[string]int, len(header))
			for i, h := range header {
				key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
				index[key] = i
			}
		}

		col := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		lead := model.Lead{
			Name:              col("name"),
			Title:             col("title"),
			Company:           col("company"),
			CompanyType:       col("company_type"),
			Location:          col("location"),
			Email:             col("email"),
			FundingStatus:     col("funding_status"),
			RecentPublication: col("recent_publication"),
			Source:            "csv_import",
		}
		if kw := col("keywords"); kw != "" {
			for _, k := range strings.Split(kw, ";") {
				if k = strings.TrimSpace(k); k != "" {
					lead.PublicationKeywords = append(lead.PublicationKeywords, k)
				}
			}
		}
		switch strings.ToLower(col("uses_invitro")) {
		case "true", "yes", "1":
			lead.UsesInvitro = true
		}

		if lead.Name == "" && lead.Company == "" {
			continue
		}
		leads = append(leads, lead)
	}

	if err := <-errs; err != nil {
		return nil, eris.Wrap(err, "stream csv")
	}
	return leads, nil
}

func init() {
	importCmd.Flags().String("output", "", "write the JSON batch to this file instead of stdout")
	rootCmd.AddCommand(importCmd)
}
