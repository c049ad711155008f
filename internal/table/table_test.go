package table

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ibeckermayer/threadgraph/internal/store"
	"github.com/ibeckermayer/threadgraph/internal/types"
)

var epoch = time.Unix(1700000000, 0).UTC()

type post struct{ id, author string }
type comment struct{ post, id, author string }

func bundle(t *testing.T, posts []post, comments []comment) types.Bundle {
	t.Helper()
	bb := types.NewBundleBuilder()
	for _, p := range posts {
		bb.AddPost(types.Post{PostID: p.id, Title: "t-" + p.id, Author: p.author, Score: 1, UpvoteRatio: 1, PostDate: epoch})
	}
	for _, c := range comments {
		bb.AddComment(types.Comment{PostID: c.post, CommentID: c.id, CommentContent: "body", CommentAuthor: c.author, CommentScore: 1, CommentDate: epoch})
	}
	b, err := bb.Build()
	require.NoError(t, err)
	return b
}

func sampleStore(t *testing.T) *store.ScrapeStore {
	s := store.New()
	s.Put("golang", "generics", bundle(t,
		[]post{{"p1", "alice"}, {"p2", "carol"}},
		[]comment{{"p1", "c1", "bob"}, {"p1", "c2", "carol"}},
	))
	s.Put("rust", "borrow", bundle(t,
		[]post{{"p3", "dave"}},
		[]comment{{"p3", "c3", "dave"}},
	))
	s.Put("golang", "errors", bundle(t,
		[]post{{"p4", "erin"}},
		nil,
	))
	return s
}

func TestFlattenEmpty(t *testing.T) {
	_, _, err := Flatten(store.New())
	require.True(t, errors.Is(err, types.ErrInvalidState))

	_, _, err = Flatten(nil)
	require.True(t, errors.Is(err, types.ErrInvalidState))
}

func TestFlatten(t *testing.T) {
	s := sampleStore(t)
	posts, comments, err := Flatten(s)
	require.NoError(t, err)

	require.Equal(t, PostColumns, posts.Columns())
	require.Equal(t, CommentColumns, comments.Columns())

	totalPosts, totalComments := s.Totals()
	require.Equal(t, totalPosts, posts.Len())
	require.Equal(t, totalComments, comments.Len())

	ids, _ := posts.Column(ColPostID)
	require.Equal(t, []any{"p1", "p2", "p4", "p3"}, ids)

	subs, _ := posts.Column(ColSubreddit)
	require.Equal(t, []any{"golang", "golang", "golang", "rust"}, subs)
	queries, _ := comments.Column(ColSearchQuery)
	require.Equal(t, []any{"generics", "generics", "borrow"}, queries)

	flair, _ := posts.Value(0, ColAuthorFlair)
	require.Nil(t, flair)
}

func TestFlattenIdempotent(t *testing.T) {
	s := sampleStore(t)
	p1, c1, err := Flatten(s)
	require.NoError(t, err)
	p2, c2, err := Flatten(s)
	require.NoError(t, err)

	if diff := cmp.Diff(p1.Rows(), p2.Rows()); diff != "" {
		t.Fatalf("posts differ (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(c1.Rows(), c2.Rows()); diff != "" {
		t.Fatalf("comments differ (-first +second):\n%s", diff)
	}
}

func TestJoin(t *testing.T) {
	posts, comments, err := Flatten(sampleStore(t))
	require.NoError(t, err)

	joined, err := Join(posts, comments)
	require.NoError(t, err)

	require.Equal(t, []string{
		"post_id", "title", "author", "author_flair", "score", "upvote_ratio", "post_date",
		"subreddit_x", "search_query_x",
		"comment_id", "comment_content", "comment_author", "comment_score", "comment_date",
		"subreddit_y", "search_query_y",
	}, joined.Columns())

	// one row per comment, posts without comments are dropped
	require.Equal(t, comments.Len(), joined.Len())
	ids, _ := joined.Column(ColCommentID)
	require.Equal(t, []any{"c1", "c2", "c3"}, ids)

	rec := joined.Record(0)
	require.Equal(t, "p1", rec["post_id"])
	require.Equal(t, "alice", rec["author"])
	require.Equal(t, "bob", rec["comment_author"])
	require.Equal(t, "golang", rec["subreddit_x"])
	require.Equal(t, "golang", rec["subreddit_y"])
}

func TestJoinUnmatchedComment(t *testing.T) {
	posts := New(PostColumns...)
	posts.Append("p1", "title", "alice", nil, 1, 1.0, epoch, "golang", "q")
	comments := New(CommentColumns...)
	comments.Append("p1", "c1", "hi", "bob", 1, epoch, "golang", "q")
	comments.Append("p404", "c2", "orphan", "mallory", 1, epoch, "golang", "q")

	joined, err := Join(posts, comments)
	require.NoError(t, err)
	require.Equal(t, 2, joined.Len())

	rec := joined.Record(1)
	require.Equal(t, "p404", rec["post_id"])
	require.Equal(t, "c2", rec["comment_id"])
	require.Nil(t, rec["author"])
	require.Nil(t, rec["title"])
	require.Nil(t, rec["subreddit_x"])
	require.Equal(t, "golang", rec["subreddit_y"])
}

func TestJoinNormalizesKeys(t *testing.T) {
	posts := New(ColPostID, ColAuthor)
	posts.Append(123, "alice")
	comments := New(ColPostID, ColCommentAuthor)
	comments.Append("123", "bob")

	joined, err := Join(posts, comments)
	require.NoError(t, err)
	rec := joined.Record(0)
	require.Equal(t, "alice", rec["author"])
}

func TestJoinDuplicatePosts(t *testing.T) {
	s := store.New()
	s.Put("golang", "generics", bundle(t, []post{{"p1", "alice"}}, []comment{{"p1", "c1", "bob"}}))
	s.Put("golang", "errors", bundle(t, []post{{"p1", "alice"}}, []comment{{"p1", "c1", "bob"}}))

	posts, comments, err := Flatten(s)
	require.NoError(t, err)
	joined, err := Join(posts, comments)
	require.NoError(t, err)

	require.Equal(t, comments.Len(), joined.Len())
	for i := 0; i < joined.Len(); i++ {
		rec := joined.Record(i)
		require.Equal(t, rec["search_query_y"], rec["search_query_x"])
	}
}

func TestJoinMissingInput(t *testing.T) {
	_, err := Join(nil, New(CommentColumns...))
	require.True(t, errors.Is(err, types.ErrInvalidState))

	_, err = Join(New("x"), New(CommentColumns...))
	require.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestRename(t *testing.T) {
	tbl := New("a", "b")
	tbl.Append(1, 2)
	renamed := tbl.Rename(map[string]string{"a": "z"})
	require.Equal(t, []string{"z", "b"}, renamed.Columns())
	require.Equal(t, []string{"a", "b"}, tbl.Columns())
	require.Equal(t, []any{1, 2}, renamed.Row(0))
}

func TestKeyString(t *testing.T) {
	testCases := []struct {
		value  any
		expect string
		ok     bool
	}{
		{value: nil, ok: false},
		{value: "abc", expect: "abc", ok: true},
		{value: 42, expect: "42", ok: true},
		{value: 42.0, expect: "42", ok: true},
	}
	for _, test := range testCases {
		got, ok := KeyString(test.value)
		require.Equal(t, test.ok, ok)
		require.Equal(t, test.expect, got)
	}
}
