package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bioleads/bioleads-cli/internal/fetcher"
	"github.com/bioleads/bioleads-cli/internal/sources"
	"github.com/bioleads/bioleads-cli/pkg/pubmed"
	"github.com/bioleads/bioleads-cli/pkg/reporter"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Harvest leads from all configured sources",
	Long: `Fetches prospects concurrently from PubMed, NIH RePORTER, conference
speaker pages, and biotech funding news, merges and deduplicates them, and
writes the batch as JSON. Pipe the output into "score", or use --score to rank
in one step.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := zap.L().With(zap.String("command", "fetch"))

	only, _ := cmd.Flags().GetStringSlice("sources")
	srcs, err := buildSources(only)
	if err != nil {
		return err
	}
	if len(srcs) == 0 {
		return eris.New("no sources selected")
	}

	leads, err := sources.FetchAll(ctx, srcs)
	if err != nil {
		return eris.Wrap(err, "fetch sources")
	}
	log.Info("harvest complete", zap.Int("leads", len(leads)))

	if doScore, _ := cmd.Flags().GetBool("score"); doScore {
		engine, err := initEngine("")
		if err != nil {
			return err
		}
		scored := engine.Rank(leads)

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
			log.Info("run saved", zap.String("run_id", run.ID))
		}

		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")
		return writeScored(scored, format, limit)
	}

	output, _ := cmd.Flags().GetString("output")
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return eris.Wrapf(err, "create %s", output)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(leads); err != nil {
		return eris.Wrap(err, "encode lead batch")
	}
	return nil
}

// buildSources assembles the configured harvesters. only narrows the set by
// source name; empty means all except the bulk baseline, which is opt-in.
func buildSources(only []string) ([]sources.Source, error) {
	selected := func(name string) bool {
		if len(only) == 0 {
			return name != "pubmed_baseline"
		}
		for _, n := range only {
			if strings.EqualFold(strings.TrimSpace(n), name) {
				return true
			}
		}
		return false
	}

	timeout := time.Duration(cfg.Sources.TimeoutSecs) * time.Second
	web := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Sources.UserAgent,
		Timeout:      timeout,
		MaxRetries:   cfg.Sources.MaxRetries,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})

	var srcs []sources.Source

	if selected("pubmed") {
		srcs = append(srcs, &sources.PubMedSource{
			Client:       pubmed.NewClient(pubmed.WithBaseURL(cfg.Sources.PubMed.BaseURL)),
			Terms:        cfg.Sources.PubMed.SearchTerms,
			MaxPerTerm:   cfg.Sources.PubMed.MaxPerTerm,
			LookbackDays: cfg.Sources.PubMed.LookbackDays,
		})
	}

	if selected("pubmed_baseline") {
		srcs = append(srcs, &sources.BaselineSource{
			FTP:      fetcher.NewFTPFetcher(timeout),
			BaseURL:  cfg.Sources.PubMed.BulkFTPURL,
			MaxFiles: 2,
			Terms:    cfg.Sources.PubMed.SearchTerms,
		})
	}

	if selected("nih_reporter") {
		srcs = append(srcs, &sources.GrantsSource{
			Client:      reporter.NewClient(reporter.WithBaseURL(cfg.Sources.Reporter.BaseURL)),
			Terms:       cfg.Sources.Reporter.SearchTerms,
			FiscalYears: cfg.Sources.Reporter.FiscalYears,
			MaxPerTerm:  cfg.Sources.Reporter.MaxResults,
		})
	}

	if selected("conference") {
		confs := sources.DefaultConferences()
		if len(cfg.Sources.Conference.URLs) > 0 {
			confs = confs[:0]
			for _, u := range cfg.Sources.Conference.URLs {
				confs = append(confs, sources.Conference{Name: u, URL: u})
			}
		}
		srcs = append(srcs, &sources.ConferenceSource{
			Fetcher:     web,
			Conferences: confs,
		})
	}

	if selected("funding_news") {
		feeds := sources.DefaultFundingFeeds()
		if cfg.Sources.Funding.FeedURL != "" {
			feeds = []string{cfg.Sources.Funding.FeedURL}
		}
		srcs = append(srcs, &sources.FundingSource{
			Fetcher: web,
			Feeds:   feeds,
		})
	}

	return srcs, nil
}

func init() {
	fetchCmd.Flags().StringSlice("sources", nil, "source names to fetch (pubmed, pubmed_baseline, nih_reporter, conference, funding_news); default all live sources")
	fetchCmd.Flags().String("output", "", "write the lead batch to this file instead of stdout")
	fetchCmd.Flags().Bool("score", false, "score and rank the batch instead of emitting raw leads")
	fetchCmd.Flags().Bool("save", false, "with --score, persist the batch as a scoring run")
	fetchCmd.Flags().String("label", "", "label for the saved run")
	fetchCmd.Flags().Int("limit", 0, "with --score, max leads to display")
	fetchCmd.Flags().String("format", "table", "with --score, output format: table, csv, json")
	rootCmd.AddCommand(fetchCmd)
}
