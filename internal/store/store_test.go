package store

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ibeckermayer/threadgraph/internal/types"
)

func bundleOf(t *testing.T, ids ...string) types.Bundle {
	t.Helper()
	bb := types.NewBundleBuilder()
	for _, id := range ids {
		bb.AddPost(types.Post{PostID: id, Author: "a-" + id, PostDate: time.Unix(0, 0).UTC()})
		bb.AddComment(types.Comment{PostID: id, CommentID: "c-" + id, CommentAuthor: "x", CommentDate: time.Unix(0, 0).UTC()})
	}
	b, err := bb.Build()
	require.NoError(t, err)
	return b
}

func TestStoreOrder(t *testing.T) {
	s := New()
	require.True(t, s.Empty())

	s.Put("golang", "generics", bundleOf(t, "p1"))
	s.Put("rust", "borrow", bundleOf(t, "p2"))
	s.Put("golang", "errors", bundleOf(t, "p3", "p4"))

	require.Equal(t, []string{"golang", "rust"}, s.Communities())
	require.Equal(t, []string{"generics", "errors"}, s.Queries("golang"))
	require.Equal(t, 3, s.Len())

	posts, comments := s.Totals()
	require.Equal(t, 4, posts)
	require.Equal(t, 4, comments)

	var visited []string
	s.Each(func(c, q string, _ types.Bundle) {
		visited = append(visited, c+"/"+q)
	})
	require.Equal(t, []string{"golang/generics", "golang/errors", "rust/borrow"}, visited)
}

func TestStoreOverwriteIsolation(t *testing.T) {
	s := New()
	s.Put("golang", "generics", bundleOf(t, "p1"))
	s.Put("golang", "errors", bundleOf(t, "p2"))
	s.Put("rust", "borrow", bundleOf(t, "p3"))

	before := s.Clone()

	s.Put("golang", "generics", bundleOf(t, "p9", "p10"))

	got, ok := s.Get("golang", "generics")
	require.True(t, ok)
	require.Equal(t, []string{"p9", "p10"}, got.PostID)

	// position is kept
	require.Equal(t, []string{"generics", "errors"}, s.Queries("golang"))

	for _, pair := range [][2]string{{"golang", "errors"}, {"rust", "borrow"}} {
		want, _ := before.Get(pair[0], pair[1])
		have, _ := s.Get(pair[0], pair[1])
		if diff := cmp.Diff(want, have); diff != "" {
			t.Fatalf("sibling %v changed (-want +got):\n%s", pair, diff)
		}
	}
}

func TestStoreClone(t *testing.T) {
	s := New()
	s.Put("golang", "generics", bundleOf(t, "p1"))

	c := s.Clone()
	b, _ := c.Get("golang", "generics")
	b.PostID[0] = "changed"
	c.Put("rust", "borrow", bundleOf(t, "p2"))

	orig, _ := s.Get("golang", "generics")
	require.Equal(t, "p1", orig.PostID[0])
	require.Equal(t, 1, s.Len())
}

func TestStoreMissing(t *testing.T) {
	s := New()
	_, ok := s.Get("nope", "nope")
	require.False(t, ok)
	require.Nil(t, s.Queries("nope"))
}
