// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for TranscodesTotal.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// HTTPRequestsTotal counts handled requests by route, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlsrec_http_requests_total",
		Help: "Total number of HTTP requests handled",
	}, []string{"route", "method", "status"})

	// HTTPRequestDuration measures request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hlsrec_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// UploadsRejected counts uploads refused by the rate limiter.
	UploadsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hlsrec_uploads_rate_limited_total",
		Help: "Total number of uploads rejected by the rate limiter",
	})

	// TranscodesTotal counts encoder runs by result.
	TranscodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlsrec_transcodes_total",
		Help: "Total number of encoder invocations by result",
	}, []string{"result"})

	// TranscodeDuration measures encoder wall time.
	TranscodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hlsrec_transcode_duration_seconds",
		Help:    "Encoder wall time in seconds",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})

	// TranscodeJobsPublished counts async jobs handed to the queue.
	TranscodeJobsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hlsrec_transcode_jobs_published_total",
		Help: "Total number of transcode jobs published to the queue",
	})

	// RecommendDuration measures one aggregation, snapshot build included.
	RecommendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hlsrec_recommend_duration_seconds",
		Help:    "Recommendation latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// RecommendSnapshotSize is the catalog size of the most recent snapshot.
	RecommendSnapshotSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hlsrec_recommend_snapshot_videos",
		Help: "Number of videos in the most recent feature snapshot",
	})

	// RecommendResults observes how many videos each aggregation returned.
	RecommendResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hlsrec_recommend_results",
		Help:    "Number of recommendations returned per request",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
	})
)
