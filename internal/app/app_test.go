package app

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ibeckermayer/threadgraph/internal/config"
	"github.com/ibeckermayer/threadgraph/internal/graph"
	"github.com/ibeckermayer/threadgraph/internal/scraper"
	"github.com/ibeckermayer/threadgraph/internal/store"
	"github.com/ibeckermayer/threadgraph/internal/table"
	"github.com/ibeckermayer/threadgraph/internal/types"
)

func strPtr(s string) *string { return &s }

type fakePost struct {
	post     scraper.RawPost
	comments []scraper.RawComment
}

func (p fakePost) Post() scraper.RawPost { return p.post }

func (p fakePost) Comments(_ context.Context, limit int) ([]scraper.RawComment, error) {
	return p.comments[:min(limit, len(p.comments))], nil
}

// fakeFetcher returns the same single post for every search.
type fakeFetcher struct{}

func (fakeFetcher) Search(_ context.Context, _ scraper.SearchParams) iter.Seq2[scraper.PostHandle, error] {
	created := time.Unix(1700000000, 0).UTC()
	p := fakePost{
		post: scraper.RawPost{ID: "p1", Title: "hello", Author: strPtr("alice"), Score: 5, UpvoteRatio: 1, Created: created},
		comments: []scraper.RawComment{
			{ID: "c1", Body: "hi alice", Author: strPtr("bob"), Score: 1, Created: created},
		},
	}
	return func(yield func(scraper.PostHandle, error) bool) {
		yield(p, nil)
	}
}

func newPipeline() *Pipeline {
	return NewPipeline(scraper.New(fakeFetcher{}, nil))
}

func exampleRequest() scraper.Request {
	req := scraper.DefaultRequest("test", "foo")
	req.PostLimit = 1
	return req
}

func TestPipelineExample(t *testing.T) {
	p := newPipeline()
	_, err := p.Scrape(context.Background(), exampleRequest())
	require.NoError(t, err)

	// building the graph runs flatten and join first
	nodes, edges, err := p.BuildGraph()
	require.NoError(t, err)

	require.Equal(t, 1, p.PostsTable().Len())
	require.Equal(t, 1, p.CommentsTable().Len())
	require.Equal(t, 1, p.JoinedTable().Len())
	require.Same(t, nodes, p.NodesTable())
	require.Same(t, edges, p.EdgesTable())

	joined := p.JoinedTable().Record(0)
	require.Equal(t, "p1", joined[table.ColPostID])
	require.Equal(t, "alice", joined[table.ColAuthor])
	require.Equal(t, "bob", joined[table.ColCommentAuthor])

	ids, _ := nodes.Column(graph.ColID)
	require.ElementsMatch(t, []any{"alice", "bob"}, ids)

	require.Equal(t, 1, edges.Len())
	edge := edges.Record(0)
	require.Equal(t, "bob", edge[graph.ColSource])
	require.Equal(t, "alice", edge[graph.ColTarget])
}

func TestPipelineEmptyStore(t *testing.T) {
	p := newPipeline()

	_, _, err := p.BuildGraph()
	require.True(t, errors.Is(err, types.ErrInvalidState))
	_, err = p.Join()
	require.True(t, errors.Is(err, types.ErrInvalidState))
	require.Nil(t, p.PostsTable())
}

func TestPipelineInvalidation(t *testing.T) {
	p := newPipeline()
	ctx := context.Background()

	_, err := p.Scrape(ctx, exampleRequest())
	require.NoError(t, err)
	posts, _, err := p.Flatten()
	require.NoError(t, err)

	again, _, err := p.Flatten()
	require.NoError(t, err)
	if diff := cmp.Diff(posts.Rows(), again.Rows()); diff != "" {
		t.Fatalf("flatten is not idempotent (-first +second):\n%s", diff)
	}

	// a failed scrape leaves the derived tables alone
	bad := exampleRequest()
	bad.Sort = "bogus"
	_, err = p.Scrape(ctx, bad)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))
	require.NotNil(t, p.PostsTable())

	_, err = p.MultiScrape(ctx, []string{"other"}, exampleRequest())
	require.NoError(t, err)
	require.Nil(t, p.PostsTable())
	require.Nil(t, p.JoinedTable())

	joined, err := p.Join()
	require.NoError(t, err)
	require.Equal(t, 2, joined.Len())
	require.Nil(t, p.NodesTable())
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Scrape.Communities = []string{"test"}
	cfg.Scrape.Queries = []string{"foo", "bar"}
	cfg.Output.Dir = filepath.Join(t.TempDir(), "runs")
	return cfg
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	a := New(cfg, newPipeline(), store.NewExporter(cfg.Output.Dir, cfg.Output.Formats...), zerolog.Nop())

	res, err := a.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, res.Report.Stats.TotalPosts)
	require.Equal(t, 2, res.Report.Stats.TotalComments)
	require.Equal(t, 2, res.Report.Stats.Nodes)
	require.Equal(t, 2, res.Report.Stats.Edges)

	m := res.Manifest
	require.Equal(t, map[string]int{"posts": 2, "comments": 2, "joined": 2, "nodes": 2, "edges": 2}, m.Rows)
	require.Contains(t, m.Files, "report.html")
	require.Contains(t, m.Files, "edges.csv")
	require.Contains(t, m.Files, "nodes.json")

	latest, err := store.LatestRun(cfg.Output.Dir)
	require.NoError(t, err)
	require.Equal(t, m.Dir, latest)
}

func TestRunRequiresQuery(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scrape.Queries = nil
	a := New(cfg, newPipeline(), store.NewExporter(cfg.Output.Dir), zerolog.Nop())

	_, err := a.Run(context.Background())
	require.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestRunRequiresCommunity(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scrape.Communities = nil
	a := New(cfg, newPipeline(), store.NewExporter(cfg.Output.Dir), zerolog.Nop())

	_, err := a.Run(context.Background())
	require.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestScrapeRequest(t *testing.T) {
	cfg := config.Default()
	req, err := ScrapeRequest(cfg.Scrape)
	require.NoError(t, err)
	require.Equal(t, scraper.SortTop, req.Sort)
	require.Equal(t, scraper.TimeAll, req.TimeFilter)
	require.Equal(t, 50, req.PostLimit)

	cfg.Scrape.TimeFilter = "decade"
	_, err = ScrapeRequest(cfg.Scrape)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))
}
