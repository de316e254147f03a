package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Sources    SourcesConfig    `yaml:"sources" mapstructure:"sources"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ScoringConfig configures the probability engine surface.
type ScoringConfig struct {
	VocabPath string `yaml:"vocab_path" mapstructure:"vocab_path"`
	MinScore  int    `yaml:"min_score" mapstructure:"min_score"`
	MaxLeads  int    `yaml:"max_leads" mapstructure:"max_leads"`
}

// SourcesConfig configures the lead harvesters.
type SourcesConfig struct {
	PubMed      PubMedConfig     `yaml:"pubmed" mapstructure:"pubmed"`
	Reporter    ReporterConfig   `yaml:"reporter" mapstructure:"reporter"`
	Conference  ConferenceConfig `yaml:"conference" mapstructure:"conference"`
	Funding     FundingConfig    `yaml:"funding" mapstructure:"funding"`
	UserAgent   string           `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int              `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int              `yaml:"max_retries" mapstructure:"max_retries"`
}

// PubMedConfig configures the NCBI E-utilities harvester.
type PubMedConfig struct {
	BaseURL      string   `yaml:"base_url" mapstructure:"base_url"`
	BulkFTPURL   string   `yaml:"bulk_ftp_url" mapstructure:"bulk_ftp_url"`
	SearchTerms  []string `yaml:"search_terms" mapstructure:"search_terms"`
	MaxPerTerm   int      `yaml:"max_per_term" mapstructure:"max_per_term"`
	LookbackDays int      `yaml:"lookback_days" mapstructure:"lookback_days"`
}

// ReporterConfig configures the NIH RePORTER harvester.
type ReporterConfig struct {
	BaseURL     string   `yaml:"base_url" mapstructure:"base_url"`
	SearchTerms []string `yaml:"search_terms" mapstructure:"search_terms"`
	MaxResults  int      `yaml:"max_results" mapstructure:"max_results"`
	FiscalYears []int    `yaml:"fiscal_years" mapstructure:"fiscal_years"`
}

// ConferenceConfig configures the conference speaker-list harvester.
type ConferenceConfig struct {
	URLs []string `yaml:"urls" mapstructure:"urls"`
}

// FundingConfig configures the funding-news harvester.
type FundingConfig struct {
	FeedURL string `yaml:"feed_url" mapstructure:"feed_url"`
}

// NotionConfig holds Notion API credentials and the target database ID.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// AnthropicConfig holds Anthropic API settings for outreach drafting.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BIOLEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "bioleads.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("scoring.min_score", 0)
	v.SetDefault("scoring.max_leads", 0)
	v.SetDefault("sources.user_agent", "bioleads-cli/1.0")
	v.SetDefault("sources.timeout_secs", 30)
	v.SetDefault("sources.max_retries", 3)
	v.SetDefault("sources.pubmed.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	v.SetDefault("sources.pubmed.bulk_ftp_url", "ftp://ftp.ncbi.nlm.nih.gov/pubmed/baseline")
	v.SetDefault("sources.pubmed.search_terms", []string{
		`"drug-induced liver injury"`,
		`"DILI"`,
		`"hepatotoxicity" AND "3D"`,
		`"liver organoid"`,
		`"hepatic spheroid"`,
		`"organ-on-chip" AND "liver"`,
		`"microphysiological systems" AND "toxicology"`,
		`"NAMs" AND "toxicology"`,
	})
	v.SetDefault("sources.pubmed.max_per_term", 20)
	v.SetDefault("sources.pubmed.lookback_days", 730)
	v.SetDefault("sources.reporter.base_url", "https://api.reporter.nih.gov/v2")
	v.SetDefault("sources.reporter.search_terms", []string{
		"drug induced liver injury",
		"hepatotoxicity",
		"3D liver model",
		"organ on chip liver",
		"microphysiological systems toxicology",
	})
	v.SetDefault("sources.reporter.max_results", 25)
	v.SetDefault("sources.reporter.fiscal_years", []int{2024, 2025, 2026})
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
