package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "crm_http_requests_total",
	Help: "HTTP requests by method, route pattern and status code.",
}, []string{"method", "path", "status"})

var ReportTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "crm_report_transitions_total",
	Help: "Successful report workflow transitions by operation.",
}, []string{"op"})
