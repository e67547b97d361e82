package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "housingpipeline_http_requests_total",
			Help: "Total number of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "housingpipeline_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SiteProvisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "housingpipeline_site_provisions_total",
			Help: "Total number of SharePoint site provisioning runs by outcome",
		},
		[]string{"outcome"},
	)

	SiteProvisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "housingpipeline_site_provision_duration_seconds",
			Help:    "End-to-end SharePoint site provisioning duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	FolderCreateFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "housingpipeline_folder_create_failures_total",
			Help: "Total number of folder creation failures during provisioning",
		},
	)

	GraphTokenRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "housingpipeline_graph_token_refreshes_total",
			Help: "Total number of Graph access token refreshes",
		},
	)
)
