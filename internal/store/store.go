package store

import (
	"github.com/ibeckermayer/threadgraph/internal/types"
)

// ScrapeStore holds every bundle scraped so far, keyed by community and then
// by search query. Both levels iterate in insertion order.
type ScrapeStore struct {
	communities []string
	entries     map[string]*queryMap
}

type queryMap struct {
	queries []string
	bundles map[string]types.Bundle
}

// New creates an empty store
func New() *ScrapeStore {
	return &ScrapeStore{entries: make(map[string]*queryMap)}
}

// Put stores b under (community, query). An existing entry for the same pair
// is replaced in place and keeps its position; all other entries are left
// untouched.
func (s *ScrapeStore) Put(community, query string, b types.Bundle) {
	qm, ok := s.entries[community]
	if !ok {
		qm = &queryMap{bundles: make(map[string]types.Bundle)}
		s.entries[community] = qm
		s.communities = append(s.communities, community)
	}
	if _, ok := qm.bundles[query]; !ok {
		qm.queries = append(qm.queries, query)
	}
	qm.bundles[query] = b
}

// Get returns the bundle for (community, query).
func (s *ScrapeStore) Get(community, query string) (types.Bundle, bool) {
	qm, ok := s.entries[community]
	if !ok {
		return types.Bundle{}, false
	}
	b, ok := qm.bundles[query]
	return b, ok
}

// Communities lists communities in insertion order.
func (s *ScrapeStore) Communities() []string {
	out := make([]string, len(s.communities))
	copy(out, s.communities)
	return out
}

// Queries lists the queries scraped for community in insertion order.
func (s *ScrapeStore) Queries(community string) []string {
	qm, ok := s.entries[community]
	if !ok {
		return nil
	}
	out := make([]string, len(qm.queries))
	copy(out, qm.queries)
	return out
}

// Len returns the number of (community, query) bundles.
func (s *ScrapeStore) Len() int {
	n := 0
	for _, qm := range s.entries {
		n += len(qm.bundles)
	}
	return n
}

// Empty reports whether nothing has been scraped yet.
func (s *ScrapeStore) Empty() bool { return s.Len() == 0 }

// Each calls fn for every bundle in insertion order.
func (s *ScrapeStore) Each(fn func(community, query string, b types.Bundle)) {
	for _, c := range s.communities {
		qm := s.entries[c]
		for _, q := range qm.queries {
			fn(c, q, qm.bundles[q])
		}
	}
}

// Clone returns a deep copy of the store.
func (s *ScrapeStore) Clone() *ScrapeStore {
	out := New()
	s.Each(func(community, query string, b types.Bundle) {
		out.Put(community, query, b.Clone())
	})
	return out
}

// Totals returns the number of posts and comments across all bundles.
func (s *ScrapeStore) Totals() (posts, comments int) {
	s.Each(func(_, _ string, b types.Bundle) {
		posts += b.Len()
		comments += b.CommentLen()
	})
	return posts, comments
}
