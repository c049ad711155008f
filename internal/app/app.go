package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ibeckermayer/threadgraph/internal/config"
	"github.com/ibeckermayer/threadgraph/internal/report"
	"github.com/ibeckermayer/threadgraph/internal/scraper"
	"github.com/ibeckermayer/threadgraph/internal/store"
	"github.com/ibeckermayer/threadgraph/internal/types"
)

// App runs complete scrape jobs: scrape, reshape, graph, export.
type App struct {
	config   *config.Config
	pipeline *Pipeline
	exporter *store.Exporter
	log      zerolog.Logger
}

// RunResult describes a finished run.
type RunResult struct {
	Manifest *store.Manifest
	Report   *report.Report
}

// New creates a new App instance.
func New(cfg *config.Config, p *Pipeline, exp *store.Exporter, log zerolog.Logger) *App {
	return &App{
		config:   cfg,
		pipeline: p,
		exporter: exp,
		log:      log,
	}
}

// ScrapeRequest converts the [scrape] config section into a request template.
// Community and Query are left empty.
func ScrapeRequest(sc config.ScrapeConfig) (scraper.Request, error) {
	sort, err := scraper.ParseSort(sc.Sort)
	if err != nil {
		return scraper.Request{}, err
	}
	tf, err := scraper.ParseTimeFilter(sc.TimeFilter)
	if err != nil {
		return scraper.Request{}, err
	}
	return scraper.Request{
		PostLimit:     sc.PostLimit,
		Sort:          sort,
		TimeFilter:    tf,
		FetchComments: sc.FetchComments,
		CommentLimit:  sc.CommentLimit,
	}, nil
}

// Run scrapes every configured query over every configured community, builds
// the graph and exports all tables plus an HTML report.
func (a *App) Run(ctx context.Context) (*RunResult, error) {
	sc := a.config.Scrape
	if len(sc.Queries) == 0 {
		return nil, fmt.Errorf("no search query configured: %w", types.ErrInvalidArgument)
	}

	req, err := ScrapeRequest(sc)
	if err != nil {
		return nil, err
	}

	// Step 1: Scrape
	for _, q := range sc.Queries {
		req.Query = q
		a.log.Info().
			Strs("communities", sc.Communities).
			Str("query", q).
			Int("post_limit", req.PostLimit).
			Msg("scraping")
		if _, err := a.pipeline.MultiScrape(ctx, sc.Communities, req); err != nil {
			return nil, err
		}
	}

	// Step 2: Flatten, join and derive the graph
	nodes, edges, err := a.pipeline.BuildGraph()
	if err != nil {
		return nil, err
	}
	p := a.pipeline

	// Step 3: Report
	rep, err := report.Build(p.Store(), p.PostsTable(), p.CommentsTable(), nodes, edges)
	if err != nil {
		return nil, err
	}

	// Step 4: Export
	manifest, err := a.exporter.Export([]store.NamedTable{
		{Name: "posts", Table: p.PostsTable()},
		{Name: "comments", Table: p.CommentsTable()},
		{Name: "joined", Table: p.JoinedTable()},
		{Name: "nodes", Table: nodes},
		{Name: "edges", Table: edges},
	}, map[string][]byte{"report.html": []byte(rep.HTML)})
	if err != nil {
		return nil, fmt.Errorf("failed to export run: %w", err)
	}

	a.log.Info().
		Str("run_id", manifest.RunID).
		Str("dir", manifest.Dir).
		Int("nodes", nodes.Len()).
		Int("edges", edges.Len()).
		Msg("run exported")

	return &RunResult{Manifest: manifest, Report: rep}, nil
}
