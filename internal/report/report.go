// Package report summarizes a scrape run for the terminal and as a small
// HTML page stored next to the exported tables.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	prettytable "github.com/jedib0t/go-pretty/v6/table"

	"github.com/ibeckermayer/threadgraph/internal/store"
	"github.com/ibeckermayer/threadgraph/internal/table"
	"github.com/ibeckermayer/threadgraph/internal/types"
)

// Report is a rendered run summary.
type Report struct {
	Title     string
	Text      string
	HTML      string
	Stats     Stats
	CreatedAt time.Time
}

// Stats holds the counts shown in a report.
type Stats struct {
	Entries       []Entry
	TotalPosts    int
	TotalComments int
	PostRows      int
	CommentRows   int
	Nodes         int
	Edges         int
}

// Entry is the size of one (community, query) bundle.
type Entry struct {
	Community string
	Query     string
	Posts     int
	Comments  int
}

var pageTemplate = template.Must(template.New("report").Parse(defaultTemplate))

// Build creates a report from the store and the tables derived from it. Any
// of the tables may be nil when that stage has not run.
func Build(st *store.ScrapeStore, posts, comments, nodes, edges *table.Table) (*Report, error) {
	if st == nil {
		return nil, fmt.Errorf("no scrape store to report on")
	}

	var stats Stats
	st.Each(func(community, query string, b types.Bundle) {
		stats.Entries = append(stats.Entries, Entry{
			Community: community,
			Query:     query,
			Posts:     b.Len(),
			Comments:  b.CommentLen(),
		})
		stats.TotalPosts += b.Len()
		stats.TotalComments += b.CommentLen()
	})
	stats.PostRows = rows(posts)
	stats.CommentRows = rows(comments)
	stats.Nodes = rows(nodes)
	stats.Edges = rows(edges)

	now := time.Now()
	data := pageData{
		Title: fmt.Sprintf("threadgraph run - %d communities", len(st.Communities())),
		Date:  now.Format("Monday, January 2 15:04"),
		Stats: stats,
	}

	var htmlBuf bytes.Buffer
	if err := pageTemplate.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	return &Report{
		Title:     data.Title,
		Text:      buildText(stats),
		HTML:      htmlBuf.String(),
		Stats:     stats,
		CreatedAt: now,
	}, nil
}

type pageData struct {
	Title string
	Date  string
	Stats Stats
}

func rows(t *table.Table) int {
	if t == nil {
		return 0
	}
	return t.Len()
}

func buildText(stats Stats) string {
	var buf bytes.Buffer

	t := prettytable.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetStyle(prettytable.StyleRounded)
	t.AppendHeader(prettytable.Row{"Community", "Query", "Posts", "Comments"})
	for _, e := range stats.Entries {
		t.AppendRow(prettytable.Row{e.Community, e.Query, e.Posts, e.Comments})
	}
	t.AppendFooter(prettytable.Row{"Total", "", stats.TotalPosts, stats.TotalComments})
	t.Render()

	fmt.Fprintf(&buf, "graph: %d nodes, %d edges\n", stats.Nodes, stats.Edges)
	return buf.String()
}

const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 720px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        .container { background: white; border-radius: 8px; padding: 20px; }
        h1 { color: #ff4500; margin-bottom: 5px; }
        .date { color: #666; margin-bottom: 20px; }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #eee; }
        th { color: #333; }
        td.num, th.num { text-align: right; }
        tfoot td { font-weight: bold; border-bottom: none; }
        .graph { margin-top: 20px; color: #333; }
        .footer { margin-top: 20px; padding-top: 15px; border-top: 1px solid #eee; color: #999; font-size: 12px; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <div class="date">{{.Date}}</div>

        <table>
            <thead>
                <tr><th>Community</th><th>Query</th><th class="num">Posts</th><th class="num">Comments</th></tr>
            </thead>
            <tbody>
            {{range .Stats.Entries}}
                <tr><td>r/{{.Community}}</td><td>{{.Query}}</td><td class="num">{{.Posts}}</td><td class="num">{{.Comments}}</td></tr>
            {{end}}
            </tbody>
            <tfoot>
                <tr><td>Total</td><td></td><td class="num">{{.Stats.TotalPosts}}</td><td class="num">{{.Stats.TotalComments}}</td></tr>
            </tfoot>
        </table>

        <div class="graph">Graph: {{.Stats.Nodes}} nodes · {{.Stats.Edges}} edges</div>

        <div class="footer">
            {{.Stats.PostRows}} post rows · {{.Stats.CommentRows}} comment rows · Generated by threadgraph
        </div>
    </div>
</body>
</html>`
