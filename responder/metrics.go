package responder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "unyu_request_duration_sec",
	Help: "Total duration of response selection",
}, []string{"mode"})

var requestCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "unyu_requests",
	Help: "Number of inbound events processed",
}, []string{"mode"})

var faultCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "unyu_request_faults",
	Help: "Number of inbound events which failed with a configuration fault",
}, []string{"mode"})

var ruleMatchCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "unyu_rule_matches",
	Help: "Number of times each rule matched",
}, []string{"mode", "rule"})

var replyCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "unyu_replies",
	Help: "Number of events emitted",
}, []string{"mode", "kind"})
