package cmd

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ibeckermayer/threadgraph/internal/app"
	"github.com/ibeckermayer/threadgraph/internal/auth"
	"github.com/ibeckermayer/threadgraph/internal/config"
	"github.com/ibeckermayer/threadgraph/internal/logger"
	"github.com/ibeckermayer/threadgraph/internal/metrics"
	"github.com/ibeckermayer/threadgraph/internal/reddit"
	"github.com/ibeckermayer/threadgraph/internal/scraper"
	"github.com/ibeckermayer/threadgraph/internal/store"
)

var (
	configPath string
	logLevel   string

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "threadgraph",
	Short:         "threadgraph scrapes subreddit searches into post, comment and reply graph tables.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		log = logger.New(logger.Config{
			Level:  cfg.Log.Level,
			Pretty: cfg.Log.Pretty,
			Output: os.Stderr,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default is the user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when none
// exists yet, then applies environment overrides.
func loadConfig() (*config.Config, error) {
	var (
		c   *config.Config
		err error
	)
	if configPath != "" {
		c, err = config.LoadFrom(configPath)
	} else {
		c, err = config.Load()
	}
	if os.IsNotExist(err) {
		c, err = config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	c.ApplyEnv()
	return c, nil
}

// newApp wires the reddit client, scraper, pipeline and exporter from cfg.
// reg may be nil when metrics are not served.
func newApp(reg prometheus.Registerer) (*app.App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokenPath, err := auth.DefaultTokenStorePath()
	if err != nil {
		return nil, err
	}

	client, err := reddit.New(reddit.Credentials{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
	},
		reddit.WithTokenStore(auth.NewTokenStore(tokenPath)),
		reddit.WithLogger(logger.Component(log, "reddit")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reddit client (set %s and %s): %w",
			config.EnvClientID, config.EnvClientSecret, err)
	}

	opts := []scraper.Option{scraper.WithLogger(logger.Component(log, "scraper"))}
	if reg != nil {
		opts = append(opts, scraper.WithMetrics(metrics.New(reg)))
	}
	sc := scraper.New(client, store.New(), opts...)

	outputDir, err := cfg.OutputDir()
	if err != nil {
		return nil, err
	}
	exporter := store.NewExporter(outputDir, cfg.Output.Formats...)

	return app.New(cfg, app.NewPipeline(sc), exporter, logger.Component(log, "app")), nil
}
