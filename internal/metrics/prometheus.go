package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framesearch_jobs_processed_total",
		Help: "Total number of jobs processed, by final status",
	}, []string{"status"})

	JobStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "framesearch_job_stage_duration_seconds",
		Help:    "Duration of each stage of the frame indexing pipeline",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesIndexedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "framesearch_frames_indexed_total",
		Help: "Total number of frame embeddings written to the index",
	})

	MessagesReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "framesearch_queue_messages_received_total",
		Help: "Total number of work messages received",
	})

	MalformedMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "framesearch_queue_messages_malformed_total",
		Help: "Total number of work messages dropped as malformed",
	})

	WorkerLoopErrors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "framesearch_worker_consecutive_errors",
		Help: "Current run of consecutive worker loop errors",
	})

	SearchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framesearch_search_requests_total",
		Help: "Total number of search requests, by outcome",
	}, []string{"outcome"})

	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "framesearch_search_duration_seconds",
		Help:    "End to end duration of search requests",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framesearch_http_requests_total",
		Help: "Total number of HTTP requests, by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "framesearch_http_request_duration_seconds",
		Help:    "Duration of HTTP requests, by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
