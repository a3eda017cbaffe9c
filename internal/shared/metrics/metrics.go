package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector this service exports.
var Registry = prometheus.NewRegistry()

var (
	assessmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "governance_assessments_total",
		Help: "Governance assessments by outcome.",
	}, []string{"outcome"})

	ratingFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "governance_rating_failures_total",
		Help: "Rating source calls that fell back to the default rating.",
	})

	assessmentDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "governance_assessment_duration_seconds",
		Help:    "Assessment pipeline duration in seconds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	questionnairesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "governance_questionnaires_total",
		Help: "Questionnaire submissions by outcome.",
	}, []string{"outcome"})

	rateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "governance_rate_limited_total",
		Help: "Requests rejected by the rate limiter, by group.",
	}, []string{"group"})
)

func init() {
	Registry.MustRegister(
		assessmentsTotal,
		ratingFailuresTotal,
		assessmentDuration,
		questionnairesTotal,
		rateLimitedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IncAssessment counts a finished assessment by outcome ("success", "invalid", "error").
func IncAssessment(outcome string) {
	assessmentsTotal.WithLabelValues(outcome).Inc()
}

// IncRatingFailure counts a rating that fell back.
func IncRatingFailure() {
	ratingFailuresTotal.Inc()
}

// ObserveAssessmentDuration records a pipeline duration in seconds.
func ObserveAssessmentDuration(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	assessmentDuration.Observe(seconds)
}

// IncQuestionnaire counts a processed questionnaire.
func IncQuestionnaire(outcome string) {
	questionnairesTotal.WithLabelValues(outcome).Inc()
}

// IncRateLimited counts a request rejected by the rate limiter.
func IncRateLimited(group string) {
	rateLimitedTotal.WithLabelValues(group).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
