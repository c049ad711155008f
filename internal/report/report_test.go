package report

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ibeckermayer/threadgraph/internal/store"
	"github.com/ibeckermayer/threadgraph/internal/table"
	"github.com/ibeckermayer/threadgraph/internal/types"
)

func bundle(t *testing.T, posts, commentsPerPost int) types.Bundle {
	t.Helper()
	bb := types.NewBundleBuilder()
	now := time.Unix(1700000000, 0).UTC()
	for i := 0; i < posts; i++ {
		id := string(rune('a' + i))
		bb.AddPost(types.Post{PostID: id, Title: "t", Author: "alice", Score: 1, UpvoteRatio: 1, PostDate: now})
		for j := 0; j < commentsPerPost; j++ {
			bb.AddComment(types.Comment{PostID: id, CommentID: id + string(rune('0'+j)), CommentAuthor: "bob", CommentDate: now})
		}
	}
	b, err := bb.Build()
	require.NoError(t, err)
	return b
}

func TestBuild(t *testing.T) {
	st := store.New()
	st.Put("golang", "generics", bundle(t, 2, 3))
	st.Put("rust", "<script>", bundle(t, 1, 0))

	nodes := table.New("id")
	nodes.Append("alice")
	nodes.Append("bob")

	r, err := Build(st, nil, nil, nodes, nil)
	require.NoError(t, err)

	want := Stats{
		Entries: []Entry{
			{Community: "golang", Query: "generics", Posts: 2, Comments: 6},
			{Community: "rust", Query: "<script>", Posts: 1, Comments: 0},
		},
		TotalPosts:    3,
		TotalComments: 6,
		Nodes:         2,
	}
	if diff := cmp.Diff(want, r.Stats); diff != "" {
		t.Fatalf("unexpected stats (-want +got):\n%s", diff)
	}

	require.Contains(t, r.Title, "2 communities")
	require.Contains(t, r.Text, "golang")
	require.Contains(t, r.Text, "generics")
	require.Contains(t, r.Text, "graph: 2 nodes, 0 edges")

	require.Contains(t, r.HTML, "r/golang")
	// query text is escaped
	require.Contains(t, r.HTML, "&lt;script&gt;")
	require.NotContains(t, r.HTML, "<script>")
}

func TestBuildNoStore(t *testing.T) {
	_, err := Build(nil, nil, nil, nil, nil)
	require.Error(t, err)
}
