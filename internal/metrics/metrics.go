// Package metrics provides Prometheus metrics for scrape runs
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the scrape counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	ScrapesTotal   *prometheus.CounterVec
	PostsTotal     prometheus.Counter
	CommentsTotal  prometheus.Counter
	ScrapeDuration prometheus.Histogram
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScrapesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "threadgraph_scrapes_total",
				Help: "Total number of community scrapes",
			},
			[]string{"status"},
		),
		PostsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "threadgraph_posts_total",
			Help: "Total number of posts collected",
		}),
		CommentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "threadgraph_comments_total",
			Help: "Total number of comments collected",
		}),
		ScrapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "threadgraph_scrape_duration_seconds",
			Help:    "Duration of community scrapes in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.ScrapesTotal, m.PostsTotal, m.CommentsTotal, m.ScrapeDuration)
	return m
}

// RecordScrape records the outcome of one community scrape.
func (m *Metrics) RecordScrape(posts, comments int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ScrapesTotal.WithLabelValues(status).Inc()
	m.ScrapeDuration.Observe(duration.Seconds())
	if err == nil {
		m.PostsTotal.Add(float64(posts))
		m.CommentsTotal.Add(float64(comments))
	}
}
