package reddit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/ibeckermayer/threadgraph/internal/scraper"
)

var _ scraper.Fetcher = (*Client)(nil)

// maxPageSize is the largest page Reddit serves for a listing.
const maxPageSize = 100

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string          `json:"kind"` // t1 comment, t3 link, more placeholder
	Data json.RawMessage `json:"data"`
}

type linkData struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	AuthorFlairText *string `json:"author_flair_text"`
	Score           int     `json:"score"`
	UpvoteRatio     float64 `json:"upvote_ratio"`
	CreatedUTC      float64 `json:"created_utc"`
}

type commentData struct {
	ID         string          `json:"id"`
	Body       string          `json:"body"`
	Author     string          `json:"author"`
	Score      int             `json:"score"`
	CreatedUTC float64         `json:"created_utc"`
	Replies    json.RawMessage `json:"replies"` // "" or a listing
}

// Search streams search results for params, requesting further pages only
// as the caller consumes them.
func (c *Client) Search(ctx context.Context, params scraper.SearchParams) iter.Seq2[scraper.PostHandle, error] {
	return func(yield func(scraper.PostHandle, error) bool) {
		path := "/r/" + url.PathEscape(params.Community) + "/search"
		after := ""
		yielded := 0

		for yielded < params.Limit {
			pageSize := min(params.Limit-yielded, maxPageSize)
			query := map[string]string{
				"q":           params.Query,
				"restrict_sr": "1",
				"sort":        string(params.Sort),
				"t":           string(params.TimeFilter),
				"limit":       strconv.Itoa(pageSize),
				"raw_json":    "1",
			}
			if after != "" {
				query["after"] = after
			}

			body, err := c.get(ctx, path, query)
			if err != nil {
				yield(nil, err)
				return
			}
			var page listing
			if err := json.Unmarshal(body, &page); err != nil {
				yield(nil, fmt.Errorf("failed to decode search listing: %w", err))
				return
			}

			for _, child := range page.Data.Children {
				if child.Kind != "t3" {
					continue
				}
				var d linkData
				if err := json.Unmarshal(child.Data, &d); err != nil {
					yield(nil, fmt.Errorf("failed to decode post: %w", err))
					return
				}
				if !yield(&post{client: c, data: d}, nil) {
					return
				}
				yielded++
				if yielded >= params.Limit {
					return
				}
			}

			if page.Data.After == "" || len(page.Data.Children) == 0 {
				return
			}
			after = page.Data.After
		}
	}
}

// post is a search result backed by the client that found it.
type post struct {
	client *Client
	data   linkData
}

func (p *post) Post() scraper.RawPost {
	return scraper.RawPost{
		ID:          p.data.ID,
		Title:       p.data.Title,
		Author:      author(p.data.Author),
		AuthorFlair: p.data.AuthorFlairText,
		Score:       p.data.Score,
		UpvoteRatio: p.data.UpvoteRatio,
		Created:     unixTime(p.data.CreatedUTC),
	}
}

// Comments fetches the post's comment tree once and returns up to limit
// comments in breadth-first order. "more" placeholders are dropped, not
// expanded.
func (p *post) Comments(ctx context.Context, limit int) ([]scraper.RawComment, error) {
	if limit <= 0 {
		return nil, nil
	}

	body, err := p.client.get(ctx, "/comments/"+url.PathEscape(p.data.ID), map[string]string{"raw_json": "1"})
	if err != nil {
		return nil, err
	}

	var pages []listing
	if err := json.Unmarshal(body, &pages); err != nil {
		return nil, fmt.Errorf("failed to decode comment listing: %w", err)
	}
	if len(pages) < 2 {
		return nil, fmt.Errorf("unexpected comment response with %d listings", len(pages))
	}

	return flattenComments(pages[1].Data.Children, limit)
}

func flattenComments(roots []thing, limit int) ([]scraper.RawComment, error) {
	var out []scraper.RawComment
	queue := append([]thing(nil), roots...)

	for len(queue) > 0 && len(out) < limit {
		next := queue[0]
		queue = queue[1:]
		if next.Kind != "t1" {
			continue
		}

		var d commentData
		if err := json.Unmarshal(next.Data, &d); err != nil {
			return nil, fmt.Errorf("failed to decode comment: %w", err)
		}
		out = append(out, scraper.RawComment{
			ID:      d.ID,
			Body:    d.Body,
			Author:  author(d.Author),
			Score:   d.Score,
			Created: unixTime(d.CreatedUTC),
		})

		replies, err := decodeReplies(d.Replies)
		if err != nil {
			return nil, err
		}
		queue = append(queue, replies...)
	}

	return out, nil
}

// decodeReplies handles Reddit encoding an empty reply list as "".
func decodeReplies(raw json.RawMessage) ([]thing, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}
	var l listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("failed to decode replies: %w", err)
	}
	return l.Data.Children, nil
}

func author(name string) *string {
	if name == "" || name == "[deleted]" {
		return nil
	}
	return &name
}

func unixTime(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
