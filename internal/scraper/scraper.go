package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ibeckermayer/threadgraph/internal/metrics"
	"github.com/ibeckermayer/threadgraph/internal/store"
	"github.com/ibeckermayer/threadgraph/internal/types"
)

// Scraper runs searches through a Fetcher and accumulates the results in a
// ScrapeStore.
type Scraper struct {
	fetcher Fetcher
	store   *store.ScrapeStore
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scraper) { s.log = l }
}

// WithMetrics records every scrape in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scraper) { s.metrics = m }
}

// New creates a new scraper writing into st. A nil st gets a fresh store.
func New(fetcher Fetcher, st *store.ScrapeStore, opts ...Option) *Scraper {
	if st == nil {
		st = store.New()
	}
	s := &Scraper{
		fetcher: fetcher,
		store:   st,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the store the scraper writes into.
func (s *Scraper) Store() *store.ScrapeStore {
	return s.store
}

// Scrape searches req.Community for req.Query and stores the result under
// (community, query), replacing only that entry. It returns the new bundle
// keyed by community. Fetcher errors are returned unchanged and leave the
// store untouched.
func (s *Scraper) Scrape(ctx context.Context, req Request) (map[string]types.Bundle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	bundle, err := s.fetchBundle(ctx, req)
	s.metrics.RecordScrape(bundle.Len(), bundle.CommentLen(), time.Since(start), err)
	if err != nil {
		s.log.Error().
			Err(err).
			Str("community", req.Community).
			Str("query", req.Query).
			Msg("scrape failed")
		return nil, err
	}

	s.store.Put(req.Community, req.Query, bundle)

	s.log.Info().
		Str("community", req.Community).
		Str("query", req.Query).
		Int("posts", bundle.Len()).
		Int("comments", bundle.CommentLen()).
		Dur("duration", time.Since(start)).
		Msg("scraped community")

	return map[string]types.Bundle{req.Community: bundle}, nil
}

// MultiScrape runs the same search over several communities, one after the
// other. The first failure stops the run; communities scraped before it stay
// in the store.
func (s *Scraper) MultiScrape(ctx context.Context, communities []string, req Request) (map[string]types.Bundle, error) {
	if len(communities) == 0 {
		return nil, fmt.Errorf("can not scrape data as no community was specified: %w", types.ErrInvalidArgument)
	}

	combined := make(map[string]types.Bundle, len(communities))
	for _, community := range communities {
		r := req
		r.Community = community
		data, err := s.Scrape(ctx, r)
		if err != nil {
			return nil, err
		}
		combined[community] = data[community]
	}
	return combined, nil
}

// fetchBundle pulls posts and comments into a builder and only materializes
// the bundle once every fetch has succeeded.
func (s *Scraper) fetchBundle(ctx context.Context, req Request) (types.Bundle, error) {
	bb := types.NewBundleBuilder()

	results := s.fetcher.Search(ctx, SearchParams{
		Community:  req.Community,
		Query:      req.Query,
		Limit:      req.PostLimit,
		Sort:       req.Sort,
		TimeFilter: req.TimeFilter,
	})
	for handle, err := range results {
		if err != nil {
			return types.Bundle{}, err
		}
		if bb.Posts() >= req.PostLimit {
			break
		}

		raw := handle.Post()
		bb.AddPost(types.Post{
			PostID:      raw.ID,
			Title:       raw.Title,
			Author:      types.NormalizeAuthor(raw.Author),
			AuthorFlair: raw.AuthorFlair,
			Score:       raw.Score,
			UpvoteRatio: raw.UpvoteRatio,
			PostDate:    raw.Created,
		})

		if !req.FetchComments {
			continue
		}
		comments, err := handle.Comments(ctx, req.CommentLimit)
		if err != nil {
			return types.Bundle{}, err
		}
		if len(comments) > req.CommentLimit {
			comments = comments[:req.CommentLimit]
		}
		for _, c := range comments {
			bb.AddComment(types.Comment{
				PostID:         raw.ID,
				CommentID:      c.ID,
				CommentContent: c.Body,
				CommentAuthor:  types.NormalizeAuthor(c.Author),
				CommentScore:   c.Score,
				CommentDate:    c.Created,
			})
		}
	}

	return bb.Build()
}
