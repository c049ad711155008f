package app

import (
	"context"

	"github.com/ibeckermayer/threadgraph/internal/graph"
	"github.com/ibeckermayer/threadgraph/internal/scraper"
	"github.com/ibeckermayer/threadgraph/internal/store"
	"github.com/ibeckermayer/threadgraph/internal/table"
	"github.com/ibeckermayer/threadgraph/internal/types"
)

// Pipeline keeps the scraper together with the tables last derived from its
// store. Derived tables are dropped whenever the store changes, and each
// stage computes the stage before it when that has not run yet.
//
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	scraper *scraper.Scraper

	posts    *table.Table
	comments *table.Table
	joined   *table.Table
	nodes    *table.Table
	edges    *table.Table
}

// NewPipeline wraps sc.
func NewPipeline(sc *scraper.Scraper) *Pipeline {
	return &Pipeline{scraper: sc}
}

// Store returns the live scrape store.
func (p *Pipeline) Store() *store.ScrapeStore {
	return p.scraper.Store()
}

// Scrape runs a single scrape. See scraper.Scraper.Scrape.
func (p *Pipeline) Scrape(ctx context.Context, req scraper.Request) (map[string]types.Bundle, error) {
	res, err := p.scraper.Scrape(ctx, req)
	if err == nil {
		p.invalidate()
	}
	return res, err
}

// MultiScrape scrapes several communities. See scraper.Scraper.MultiScrape.
func (p *Pipeline) MultiScrape(ctx context.Context, communities []string, req scraper.Request) (map[string]types.Bundle, error) {
	res, err := p.scraper.MultiScrape(ctx, communities, req)
	// communities scraped before a failure are already in the store
	p.invalidate()
	return res, err
}

// Flatten recomputes the posts and comments tables from the store.
func (p *Pipeline) Flatten() (posts, comments *table.Table, err error) {
	posts, comments, err = table.Flatten(p.Store())
	if err != nil {
		return nil, nil, err
	}
	p.invalidate()
	p.posts, p.comments = posts, comments
	return posts, comments, nil
}

// Join joins the posts and comments tables, flattening first if needed.
func (p *Pipeline) Join() (*table.Table, error) {
	if p.posts == nil || p.comments == nil {
		if _, _, err := p.Flatten(); err != nil {
			return nil, err
		}
	}
	joined, err := table.Join(p.posts, p.comments)
	if err != nil {
		return nil, err
	}
	p.joined, p.nodes, p.edges = joined, nil, nil
	return joined, nil
}

// BuildGraph derives the node and edge tables, joining first if needed.
func (p *Pipeline) BuildGraph() (nodes, edges *table.Table, err error) {
	if p.joined == nil {
		if _, err := p.Join(); err != nil {
			return nil, nil, err
		}
	}
	nodes, edges, err = graph.Build(p.joined)
	if err != nil {
		return nil, nil, err
	}
	p.nodes, p.edges = nodes, edges
	return nodes, edges, nil
}

// PostsTable returns the last flattened posts table, or nil.
func (p *Pipeline) PostsTable() *table.Table { return p.posts }

// CommentsTable returns the last flattened comments table, or nil.
func (p *Pipeline) CommentsTable() *table.Table { return p.comments }

// JoinedTable returns the last joined table, or nil.
func (p *Pipeline) JoinedTable() *table.Table { return p.joined }

// NodesTable returns the last node table, or nil.
func (p *Pipeline) NodesTable() *table.Table { return p.nodes }

// EdgesTable returns the last edge table, or nil.
func (p *Pipeline) EdgesTable() *table.Table { return p.edges }

func (p *Pipeline) invalidate() {
	p.posts, p.comments, p.joined, p.nodes, p.edges = nil, nil, nil, nil, nil
}
