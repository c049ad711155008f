package types

import (
	"errors"
	"fmt"
	"time"
)

// UnknownAuthor replaces the author of a post or comment whose account is
// deleted or otherwise unavailable.
const UnknownAuthor = "unknown_author"

var (
	// ErrInvalidArgument marks a malformed parameter. Raised before any I/O.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState marks an operation whose input has not been produced yet.
	ErrInvalidState = errors.New("invalid state")
)

// NormalizeAuthor maps a possibly missing author name to a recorded value.
func NormalizeAuthor(name *string) string {
	if name == nil || *name == "" || *name == "[deleted]" {
		return UnknownAuthor
	}
	return *name
}

// Post represents a single scraped submission
type Post struct {
	PostID      string    `json:"post_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	AuthorFlair *string   `json:"author_flair"`
	Score       int       `json:"score"`
	UpvoteRatio float64   `json:"upvote_ratio"`
	PostDate    time.Time `json:"post_date"`
}

// Comment represents a comment attached to a Post
type Comment struct {
	PostID         string    `json:"post_id"`
	CommentID      string    `json:"comment_id"`
	CommentContent string    `json:"comment_content"`
	CommentAuthor  string    `json:"comment_author"`
	CommentScore   int       `json:"comment_score"`
	CommentDate    time.Time `json:"comment_date"`
}

// CommentColumns holds every comment of a bundle as parallel slices.
type CommentColumns struct {
	PostID         []string    `json:"post_id"`
	CommentID      []string    `json:"comment_id"`
	CommentContent []string    `json:"comment_content"`
	CommentAuthor  []string    `json:"comment_author"`
	CommentScore   []int       `json:"comment_score"`
	CommentDate    []time.Time `json:"comment_date"`
}

// Bundle is the result of one (community, query) search: every post field as
// a parallel slice plus the comments of all those posts.
type Bundle struct {
	PostID      []string       `json:"post_id"`
	Title       []string       `json:"title"`
	Author      []string       `json:"author"`
	AuthorFlair []*string      `json:"author_flair"`
	Score       []int          `json:"score"`
	UpvoteRatio []float64      `json:"upvote_ratio"`
	PostDate    []time.Time    `json:"post_date"`
	Comments    CommentColumns `json:"comments"`
}

// Len returns the number of posts in the bundle.
func (b Bundle) Len() int { return len(b.PostID) }

// CommentLen returns the number of comments in the bundle.
func (b Bundle) CommentLen() int { return len(b.Comments.CommentID) }

// Post returns the i-th post as a record.
func (b Bundle) Post(i int) Post {
	return Post{
		PostID:      b.PostID[i],
		Title:       b.Title[i],
		Author:      b.Author[i],
		AuthorFlair: b.AuthorFlair[i],
		Score:       b.Score[i],
		UpvoteRatio: b.UpvoteRatio[i],
		PostDate:    b.PostDate[i],
	}
}

// Comment returns the i-th comment as a record.
func (b Bundle) Comment(i int) Comment {
	c := b.Comments
	return Comment{
		PostID:         c.PostID[i],
		CommentID:      c.CommentID[i],
		CommentContent: c.CommentContent[i],
		CommentAuthor:  c.CommentAuthor[i],
		CommentScore:   c.CommentScore[i],
		CommentDate:    c.CommentDate[i],
	}
}

// Clone returns a deep copy that shares no backing arrays with b.
func (b Bundle) Clone() Bundle {
	flair := make([]*string, len(b.AuthorFlair))
	for i, f := range b.AuthorFlair {
		if f != nil {
			v := *f
			flair[i] = &v
		}
	}
	return Bundle{
		PostID:      cloneSlice(b.PostID),
		Title:       cloneSlice(b.Title),
		Author:      cloneSlice(b.Author),
		AuthorFlair: flair,
		Score:       cloneSlice(b.Score),
		UpvoteRatio: cloneSlice(b.UpvoteRatio),
		PostDate:    cloneSlice(b.PostDate),
		Comments: CommentColumns{
			PostID:         cloneSlice(b.Comments.PostID),
			CommentID:      cloneSlice(b.Comments.CommentID),
			CommentContent: cloneSlice(b.Comments.CommentContent),
			CommentAuthor:  cloneSlice(b.Comments.CommentAuthor),
			CommentScore:   cloneSlice(b.Comments.CommentScore),
			CommentDate:    cloneSlice(b.Comments.CommentDate),
		},
	}
}

// Validate checks that all parallel slices line up and that every comment
// references a post of the same bundle.
func (b Bundle) Validate() error {
	n := len(b.PostID)
	for name, l := range map[string]int{
		"title":        len(b.Title),
		"author":       len(b.Author),
		"author_flair": len(b.AuthorFlair),
		"score":        len(b.Score),
		"upvote_ratio": len(b.UpvoteRatio),
		"post_date":    len(b.PostDate),
	} {
		if l != n {
			return fmt.Errorf("post column %s has %d values, want %d", name, l, n)
		}
	}

	c := b.Comments
	m := len(c.CommentID)
	for name, l := range map[string]int{
		"post_id":         len(c.PostID),
		"comment_content": len(c.CommentContent),
		"comment_author":  len(c.CommentAuthor),
		"comment_score":   len(c.CommentScore),
		"comment_date":    len(c.CommentDate),
	} {
		if l != m {
			return fmt.Errorf("comment column %s has %d values, want %d", name, l, m)
		}
	}

	known := make(map[string]struct{}, n)
	for _, id := range b.PostID {
		known[id] = struct{}{}
	}
	for i, id := range c.PostID {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("comment %s references unknown post %s", c.CommentID[i], id)
		}
	}
	return nil
}

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
