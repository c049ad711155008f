package scraper

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/ibeckermayer/threadgraph/internal/types"
)

// Sort orders search results.
type Sort string

const (
	SortRelevance Sort = "relevance"
	SortHot       Sort = "hot"
	SortTop       Sort = "top"
	SortNew       Sort = "new"
	SortComments  Sort = "comments"
)

// Sorts lists every accepted Sort.
var Sorts = []Sort{SortRelevance, SortHot, SortTop, SortNew, SortComments}

// TimeFilter restricts search results to a time window.
type TimeFilter string

const (
	TimeAll   TimeFilter = "all"
	TimeDay   TimeFilter = "day"
	TimeHour  TimeFilter = "hour"
	TimeMonth TimeFilter = "month"
	TimeWeek  TimeFilter = "week"
	TimeYear  TimeFilter = "year"
)

// TimeFilters lists every accepted TimeFilter.
var TimeFilters = []TimeFilter{TimeAll, TimeDay, TimeHour, TimeMonth, TimeWeek, TimeYear}

// ParseSort validates s.
func ParseSort(s string) (Sort, error) {
	for _, v := range Sorts {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("sort must be one of %v, got %q: %w", Sorts, s, types.ErrInvalidArgument)
}

// ParseTimeFilter validates s.
func ParseTimeFilter(s string) (TimeFilter, error) {
	for _, v := range TimeFilters {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("time filter must be one of %v, got %q: %w", TimeFilters, s, types.ErrInvalidArgument)
}

// SearchParams is what a Fetcher needs to run a search.
type SearchParams struct {
	Community  string
	Query      string
	Limit      int
	Sort       Sort
	TimeFilter TimeFilter
}

// RawPost is a post as returned by a Fetcher. Author is nil when the account
// is missing.
type RawPost struct {
	ID          string
	Title       string
	Author      *string
	AuthorFlair *string
	Score       int
	UpvoteRatio float64
	Created     time.Time
}

// RawComment is a comment as returned by a Fetcher.
type RawComment struct {
	ID      string
	Body    string
	Author  *string
	Score   int
	Created time.Time
}

// PostHandle is one search result. Comments returns at most limit comments
// that are directly available on the post, flattened breadth first, without
// expanding "load more" placeholders.
type PostHandle interface {
	Post() RawPost
	Comments(ctx context.Context, limit int) ([]RawComment, error)
}

// Fetcher retrieves posts from the remote platform.
type Fetcher interface {
	Search(ctx context.Context, params SearchParams) iter.Seq2[PostHandle, error]
}

// Request describes one community scrape.
type Request struct {
	Community     string
	Query         string
	PostLimit     int
	Sort          Sort
	TimeFilter    TimeFilter
	FetchComments bool
	CommentLimit  int
}

// DefaultRequest returns a request with the default search settings.
func DefaultRequest(community, query string) Request {
	return Request{
		Community:     community,
		Query:         query,
		PostLimit:     50,
		Sort:          SortTop,
		TimeFilter:    TimeAll,
		FetchComments: true,
		CommentLimit:  10,
	}
}

// Validate checks the request before any I/O.
func (r Request) Validate() error {
	if r.Community == "" {
		return fmt.Errorf("community is required: %w", types.ErrInvalidArgument)
	}
	if r.PostLimit < 0 {
		return fmt.Errorf("post limit must not be negative, got %d: %w", r.PostLimit, types.ErrInvalidArgument)
	}
	if r.CommentLimit < 0 {
		return fmt.Errorf("comment limit must not be negative, got %d: %w", r.CommentLimit, types.ErrInvalidArgument)
	}
	if _, err := ParseSort(string(r.Sort)); err != nil {
		return err
	}
	if _, err := ParseTimeFilter(string(r.TimeFilter)); err != nil {
		return err
	}
	return nil
}
