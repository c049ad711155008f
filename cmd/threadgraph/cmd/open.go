package cmd

import (
	"fmt"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/ibeckermayer/threadgraph/internal/config"
	"github.com/ibeckermayer/threadgraph/internal/store"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:       "open <config|output>",
	Short:     "Opens the config file or the latest export run.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"config", "output"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			path string
			err  error
		)

		switch args[0] {
		case "config":
			path = configPath
			if path == "" {
				path, err = config.ConfigPath()
			}
		case "output":
			var dir string
			if dir, err = cfg.OutputDir(); err == nil {
				path, err = store.LatestRun(dir)
			}
		default:
			return fmt.Errorf("unknown target: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to get path: %w", err)
		}

		log.Info().Str("path", path).Msg("opening")
		if err := browser.OpenFile(path); err != nil {
			return fmt.Errorf("failed to open: %w", err)
		}
		return nil
	},
}
