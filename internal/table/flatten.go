package table

import (
	"fmt"

	"github.com/ibeckermayer/threadgraph/internal/store"
	"github.com/ibeckermayer/threadgraph/internal/types"
)

// Column names shared by the flattened tables.
const (
	ColPostID         = "post_id"
	ColTitle          = "title"
	ColAuthor         = "author"
	ColAuthorFlair    = "author_flair"
	ColScore          = "score"
	ColUpvoteRatio    = "upvote_ratio"
	ColPostDate       = "post_date"
	ColCommentID      = "comment_id"
	ColCommentContent = "comment_content"
	ColCommentAuthor  = "comment_author"
	ColCommentScore   = "comment_score"
	ColCommentDate    = "comment_date"
	ColSubreddit      = "subreddit"
	ColSearchQuery    = "search_query"
)

// PostColumns is the column layout of the posts table.
var PostColumns = []string{
	ColPostID, ColTitle, ColAuthor, ColAuthorFlair, ColScore,
	ColUpvoteRatio, ColPostDate, ColSubreddit, ColSearchQuery,
}

// CommentColumns is the column layout of the comments table.
var CommentColumns = []string{
	ColPostID, ColCommentID, ColCommentContent, ColCommentAuthor,
	ColCommentScore, ColCommentDate, ColSubreddit, ColSearchQuery,
}

// Flatten turns every bundle in s into rows of a posts table and a comments
// table, each stamped with the community and query it came from. Bundles are
// visited in insertion order and rows keep fetch order. s is not modified.
func Flatten(s *store.ScrapeStore) (posts, comments *Table, err error) {
	if s == nil || s.Empty() {
		return nil, nil, fmt.Errorf("no data has been scraped: %w", types.ErrInvalidState)
	}

	data := s.Clone()
	posts = New(PostColumns...)
	comments = New(CommentColumns...)

	data.Each(func(community, query string, b types.Bundle) {
		for i := 0; i < b.Len(); i++ {
			p := b.Post(i)
			posts.Append(p.PostID, p.Title, p.Author, flair(p.AuthorFlair), p.Score,
				p.UpvoteRatio, p.PostDate, community, query)
		}
		for i := 0; i < b.CommentLen(); i++ {
			c := b.Comment(i)
			comments.Append(c.PostID, c.CommentID, c.CommentContent, c.CommentAuthor,
				c.CommentScore, c.CommentDate, community, query)
		}
	})

	return posts, comments, nil
}

func flair(f *string) any {
	if f == nil {
		return nil
	}
	return *f
}
