// Package cmd holds the markets-feeds command line: serve, search, and recategorize.
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gcbaptista/markets-feeds/config"
	"github.com/gcbaptista/markets-feeds/internal/engine"
	"github.com/gcbaptista/markets-feeds/internal/logging"
	"github.com/gcbaptista/markets-feeds/store"
)

// Config is everything read from config.yaml and MARKETS_FEEDS_* variables.
type Config struct {
	DataDir string          `mapstructure:"data_dir"`
	Server  ServerConfig    `mapstructure:"server"`
	Log     LogConfig       `mapstructure:"log"`
	Search  config.Settings `mapstructure:"search"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
}

// LogConfig selects the zap logger flavour.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

var (
	cfgFile string
	verbose bool
	cfg     Config
)

var rootCmd = &cobra.Command{
	Use:   "markets-feeds",
	Short: "Search and categorize financial news articles",
	Long: `markets-feeds indexes a corpus of financial news articles, reassigns them to
topical categories, and serves ranked search over HTTP.

Commands:
  serve         Start the HTTP API
  search        Run one query against the corpus and print the hits
  recategorize  Print the recategorization report for the corpus`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("data-dir", "./data", "directory of article JSON files")
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() error {
	viper.SetDefault("data_dir", "./data")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.max_body_bytes", 1<<20)
	viper.SetDefault("log.level", "info")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/markets-feeds")
	}

	// MARKETS_FEEDS_SEARCH_CORPUS_TTL -> search.corpus_ttl
	viper.SetEnvPrefix("MARKETS_FEEDS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range []string{
		"server.port", "log.level", "log.development",
		"search.corpus_ttl", "search.content_cache_ttl", "search.max_page_size",
		"search.job_workers", "search.taxonomy_file", "search.analytics_file",
	} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg = Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return nil
}

// newEngine builds the logger and an engine reading from the configured data directory.
func newEngine() (*engine.Engine, *zap.Logger, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, nil, err
	}

	var taxonomy *config.Taxonomy
	if cfg.Search.TaxonomyFile != "" {
		if taxonomy, err = config.LoadTaxonomy(cfg.Search.TaxonomyFile); err != nil {
			return nil, nil, err
		}
		logger.Info("Loaded taxonomy", zap.String("file", cfg.Search.TaxonomyFile), zap.Int("categories", len(taxonomy.Categories)))
	}

	files, err := store.NewFileStore(cfg.DataDir, nil, logger.Named("store"))
	if err != nil {
		return nil, nil, err
	}
	source := store.NewBreakerSource("file-store", files, store.DefaultBreakerSettings(), logger.Named("store"))

	eng, err := engine.New(engine.Options{
		Settings: cfg.Search,
		Taxonomy: taxonomy,
		Source:   source,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return eng, logger, nil
}
