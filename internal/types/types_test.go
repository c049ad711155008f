package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalizeAuthor(t *testing.T) {
	testCases := []struct {
		name   *string
		expect string
	}{
		{name: nil, expect: UnknownAuthor},
		{name: strPtr(""), expect: UnknownAuthor},
		{name: strPtr("[deleted]"), expect: UnknownAuthor},
		{name: strPtr("alice"), expect: "alice"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expect, NormalizeAuthor(test.name))
	}
}

func TestBundleBuilder(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	bb := NewBundleBuilder()
	bb.AddPost(Post{PostID: "p1", Title: "hello", Author: "alice", AuthorFlair: strPtr("mod"), Score: 3, UpvoteRatio: 0.9, PostDate: now})
	bb.AddPost(Post{PostID: "p2", Title: "world", Author: UnknownAuthor, Score: 1, UpvoteRatio: 0.5, PostDate: now})
	bb.AddComment(Comment{PostID: "p1", CommentID: "c1", CommentContent: "hi", CommentAuthor: "bob", CommentScore: 2, CommentDate: now})

	require.Equal(t, 2, bb.Posts())
	require.Equal(t, 1, bb.Comments())

	b, err := bb.Build()
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())
	require.Equal(t, 1, b.CommentLen())
	require.Equal(t, "alice", b.Post(0).Author)
	require.Nil(t, b.Post(1).AuthorFlair)
	require.Equal(t, "bob", b.Comment(0).CommentAuthor)

	// the built bundle must not alias the builder
	bb.AddPost(Post{PostID: "p3"})
	require.Equal(t, 2, b.Len())
}

func TestEmptyBundle(t *testing.T) {
	b, err := NewBundleBuilder().Build()
	require.NoError(t, err)
	require.Equal(t, 0, b.Len())
	require.NotNil(t, b.PostID)
	require.NotNil(t, b.Comments.CommentID)
}

func TestBundleValidate(t *testing.T) {
	bb := NewBundleBuilder()
	bb.AddPost(Post{PostID: "p1"})
	bb.AddComment(Comment{PostID: "p9", CommentID: "c1"})
	_, err := bb.Build()
	require.Error(t, err)

	b := Bundle{PostID: []string{"p1"}}
	require.Error(t, b.Validate())
}

func TestBundleClone(t *testing.T) {
	bb := NewBundleBuilder()
	bb.AddPost(Post{PostID: "p1", Author: "alice", AuthorFlair: strPtr("flair")})
	b, err := bb.Build()
	require.NoError(t, err)

	c := b.Clone()
	c.Author[0] = "mallory"
	*c.AuthorFlair[0] = "changed"
	require.Equal(t, "alice", b.Author[0])
	require.Equal(t, "flair", *b.AuthorFlair[0])
}

func TestErrorKinds(t *testing.T) {
	require.False(t, errors.Is(ErrInvalidArgument, ErrInvalidState))
}
