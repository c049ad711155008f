// Command threadgraph collects subreddit search results and their comments
// and exports them as flat tables and a reply graph.
package main

import "github.com/ibeckermayer/threadgraph/cmd/threadgraph/cmd"

func main() {
	cmd.Execute()
}
