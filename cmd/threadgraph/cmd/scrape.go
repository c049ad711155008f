package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	f := scrapeCmd.Flags()
	f.StringSliceP("community", "c", nil, "Community (subreddit) to search, repeatable")
	f.StringSliceP("query", "q", nil, "Search query, repeatable; each query is run over every community")
	f.Int("limit", 0, "Maximum posts per community and query")
	f.String("sort", "", "Sort order: relevance, hot, top, new or comments")
	f.String("time-filter", "", "Time filter: all, day, hour, month, week or year")
	f.Bool("comments", true, "Fetch comments for every post")
	f.Int("comment-limit", 0, "Maximum comments per post")
	f.String("out", "", "Output directory for run exports")
	f.StringSlice("format", nil, "Export formats: csv, json")

	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes the configured communities once and exports the tables and reply graph.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyScrapeFlags(cmd); err != nil {
			return err
		}

		a, err := newApp(nil)
		if err != nil {
			return err
		}

		res, err := a.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), res.Report.Text)
		fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", res.Manifest.Dir)
		return nil
	},
}

// applyScrapeFlags copies explicitly set flags over the loaded config.
func applyScrapeFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	var err error

	if f.Changed("community") {
		if cfg.Scrape.Communities, err = f.GetStringSlice("community"); err != nil {
			return err
		}
	}
	if f.Changed("query") {
		if cfg.Scrape.Queries, err = f.GetStringSlice("query"); err != nil {
			return err
		}
	}
	if f.Changed("limit") {
		if cfg.Scrape.PostLimit, err = f.GetInt("limit"); err != nil {
			return err
		}
	}
	if f.Changed("sort") {
		if cfg.Scrape.Sort, err = f.GetString("sort"); err != nil {
			return err
		}
	}
	if f.Changed("time-filter") {
		if cfg.Scrape.TimeFilter, err = f.GetString("time-filter"); err != nil {
			return err
		}
	}
	if f.Changed("comments") {
		if cfg.Scrape.FetchComments, err = f.GetBool("comments"); err != nil {
			return err
		}
	}
	if f.Changed("comment-limit") {
		if cfg.Scrape.CommentLimit, err = f.GetInt("comment-limit"); err != nil {
			return err
		}
	}
	if f.Changed("out") {
		if cfg.Output.Dir, err = f.GetString("out"); err != nil {
			return err
		}
	}
	if f.Changed("format") {
		if cfg.Output.Formats, err = f.GetStringSlice("format"); err != nil {
			return err
		}
	}
	return nil
}
