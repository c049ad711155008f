package table

import (
	"fmt"

	"github.com/ibeckermayer/threadgraph/internal/types"
)

// Suffixes added to non-key columns present in both joined tables.
const (
	LeftSuffix  = "_x"
	RightSuffix = "_y"
)

// Join attaches post columns to every comment row by post_id.
//
// Every comment row yields exactly one output row, in comment order. A
// comment whose post is not in posts gets null post columns. Posts without
// comments do not appear. When a post id occurs more than once in posts, the
// row scraped for the comment's own subreddit and search query wins,
// otherwise the first one.
//
// Output columns are post_id, the remaining post columns, then the remaining
// comment columns; names present in both sides get LeftSuffix on the post
// side and RightSuffix on the comment side.
func Join(posts, comments *Table) (*Table, error) {
	if posts == nil || comments == nil {
		return nil, fmt.Errorf("posts and comments tables are required: %w", types.ErrInvalidState)
	}
	if !posts.HasColumn(ColPostID) || !comments.HasColumn(ColPostID) {
		return nil, fmt.Errorf("both tables need a %s column: %w", ColPostID, types.ErrInvalidArgument)
	}

	var postCols, commentCols []string
	for _, c := range posts.columns {
		if c != ColPostID {
			postCols = append(postCols, c)
		}
	}
	for _, c := range comments.columns {
		if c != ColPostID {
			commentCols = append(commentCols, c)
		}
	}

	outCols := []string{ColPostID}
	for _, c := range postCols {
		if comments.HasColumn(c) {
			c += LeftSuffix
		}
		outCols = append(outCols, c)
	}
	for _, c := range commentCols {
		if posts.HasColumn(c) {
			c += RightSuffix
		}
		outCols = append(outCols, c)
	}
	out := New(outCols...)

	byID := make(map[string][]int)
	for i := range posts.rows {
		key, ok := KeyString(posts.rows[i][posts.index[ColPostID]])
		if !ok {
			continue
		}
		byID[key] = append(byID[key], i)
	}

	for j, crow := range comments.rows {
		key, ok := KeyString(crow[comments.index[ColPostID]])

		var prow []any
		if ok {
			if i, found := pickPost(posts, comments, byID[key], j); found {
				prow = posts.rows[i]
			}
		}

		row := make([]any, 0, len(outCols))
		if prow != nil {
			row = append(row, prow[posts.index[ColPostID]])
		} else {
			row = append(row, crow[comments.index[ColPostID]])
		}
		for _, c := range postCols {
			if prow == nil {
				row = append(row, nil)
				continue
			}
			row = append(row, prow[posts.index[c]])
		}
		for _, c := range commentCols {
			row = append(row, crow[comments.index[c]])
		}
		out.rows = append(out.rows, row)
	}

	return out, nil
}

// pickPost chooses among candidate post rows for comment row j.
func pickPost(posts, comments *Table, candidates []int, j int) (int, bool) {
	switch len(candidates) {
	case 0:
		return 0, false
	case 1:
		return candidates[0], true
	}
	for _, i := range candidates {
		if sameProvenance(posts, i, comments, j) {
			return i, true
		}
	}
	return candidates[0], true
}

func sameProvenance(posts *Table, i int, comments *Table, j int) bool {
	for _, c := range []string{ColSubreddit, ColSearchQuery} {
		pv, ok := posts.Value(i, c)
		if !ok {
			return false
		}
		cv, ok := comments.Value(j, c)
		if !ok {
			return false
		}
		pk, _ := KeyString(pv)
		ck, _ := KeyString(cv)
		if pk != ck {
			return false
		}
	}
	return true
}
