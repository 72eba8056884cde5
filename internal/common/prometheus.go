package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	TicketIssuedTotal          = "ticket_issued_total"
	PaymentReviewTotal         = "payment_review_total"
	CheckInTotal               = "check_in_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"method", "status_code"}),
		TicketIssuedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: TicketIssuedTotal,
			Help: "Count of issued tickets",
		}, []string{"group_type", "payment_status"}),
		PaymentReviewTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: PaymentReviewTotal,
			Help: "Count of payment reviews",
		}, []string{"action"}),
		CheckInTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: CheckInTotal,
			Help: "Count of check-in attempts",
		}, []string{"source", "result"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"method", "status_code"}),
	}
)
