package main

import (
	"context"
	"io"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/bioleads/bioleads-cli/internal/model"
	"github.com/bioleads/bioleads-cli/internal/scorer"
	"github.com/bioleads/bioleads-cli/internal/store"
	anthropicpkg "github.com/bioleads/bioleads-cli/pkg/anthropic"
	notionpkg "github.com/bioleads/bioleads-cli/pkg/notion"
	sfpkg "github.com/bioleads/bioleads-cli/pkg/salesforce"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.SQLitePath
		if dsn == "" {
			dsn = "bioleads.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore combines init and migration; every command that touches run
// history goes through it.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// initEngine builds the scoring engine, applying the vocabulary override file
// when one is configured or passed on the command line.
func initEngine(vocabPath string) (*scorer.Engine, error) {
	if vocabPath == "" {
		vocabPath = cfg.Scoring.VocabPath
	}
	if vocabPath == "" {
		return scorer.NewDefault(), nil
	}
	sc, err := scorer.LoadConfig(vocabPath)
	if err != nil {
		return nil, eris.Wrapf(err, "load scoring vocabulary %s", vocabPath)
	}
	return scorer.New(sc), nil
}

func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (BIOLEADS_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}

func initNotion() (notionpkg.Client, string, error) {
	if cfg.Notion.Token == "" {
		return nil, "", eris.New("notion token is required (BIOLEADS_NOTION_TOKEN)")
	}
	if cfg.Notion.LeadDB == "" {
		return nil, "", eris.New("notion lead database ID is required (BIOLEADS_NOTION_LEAD_DB)")
	}
	return notionpkg.NewClient(cfg.Notion.Token), cfg.Notion.LeadDB, nil
}

func initAnthropic() (anthropicpkg.Client, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key is required (BIOLEADS_ANTHROPIC_KEY)")
	}
	return anthropicpkg.NewClient(cfg.Anthropic.Key), nil
}

// loadLeads reads a JSON lead batch from path, or stdin when path is "-".
func loadLeads(path string) ([]model.Lead, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "open lead batch %s", path)
		}
		defer f.Close() //nolint:errcheck
		r = f
	}
	return model.DecodeLeads(r)
}
