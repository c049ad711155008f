// Package graph derives a reply graph from the joined posts/comments table:
// authors are nodes and each comment is a directed edge from the commenter
// to the author of the post it replies to.
package graph

import (
	"fmt"

	"github.com/ibeckermayer/threadgraph/internal/table"
	"github.com/ibeckermayer/threadgraph/internal/types"
)

// Column names of the graph tables.
const (
	ColID     = "id"
	ColSource = "source"
	ColTarget = "target"
)

// Build returns the node and edge tables for joined.
//
// Nodes are the distinct non-null values of the author and comment_author
// columns, in first-seen order (post authors first). Edges are a copy of
// joined with comment_author renamed to source and author renamed to target.
// Self-loops are kept.
func Build(joined *table.Table) (nodes, edges *table.Table, err error) {
	if joined == nil {
		return nil, nil, fmt.Errorf("joined table is required: %w", types.ErrInvalidState)
	}

	authors, ok := joined.Column(table.ColAuthor)
	if !ok {
		return nil, nil, fmt.Errorf("joined table has no %s column: %w", table.ColAuthor, types.ErrInvalidArgument)
	}
	commenters, ok := joined.Column(table.ColCommentAuthor)
	if !ok {
		return nil, nil, fmt.Errorf("joined table has no %s column: %w", table.ColCommentAuthor, types.ErrInvalidArgument)
	}

	nodes = table.New(ColID)
	seen := make(map[string]struct{})
	for _, v := range append(authors, commenters...) {
		id, ok := table.KeyString(v)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		nodes.Append(id)
	}

	edges = joined.Rename(map[string]string{
		table.ColCommentAuthor: ColSource,
		table.ColAuthor:        ColTarget,
	})

	return nodes, edges, nil
}
