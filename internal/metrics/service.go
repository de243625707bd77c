package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MergeRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "halisaha_identity_merges_total",
			Help: "The total number of guest identity merges started.",
		}),
		MergeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "halisaha_identity_merge_failures_total",
			Help: "The total number of guest identity merges that failed.",
		}),
		DedupRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "halisaha_guest_dedup_runs_total",
			Help: "The total number of guest deduplication scans.",
		}),
		DuplicatesCollapsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "halisaha_guest_duplicates_collapsed_total",
			Help: "The total number of duplicate guest identities collapsed.",
		}),
		RewriteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "halisaha_match_rewrite_duration_seconds",
			Help:    "The duration of cross-match identity rewrites.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "halisaha_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "halisaha_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "halisaha_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MergeRuns,
		s.MergeFailures,
		s.DedupRuns,
		s.DuplicatesCollapsed,
		s.RewriteDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMergeRuns() {
	s.MergeRuns.Inc()
}

func (s *Service) IncMergeFailures() {
	s.MergeFailures.Inc()
}

func (s *Service) IncDedupRuns() {
	s.DedupRuns.Inc()
}

func (s *Service) AddDuplicatesCollapsed(count int) {
	s.DuplicatesCollapsed.Add(float64(count))
}

func (s *Service) ObserveRewriteDuration(duration float64) {
	s.RewriteDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
