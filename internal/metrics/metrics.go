// Package metrics registers the Prometheus metrics for the verification core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/threaddate/backend/internal/domain"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	VotesCast            *prometheus.CounterVec
	VotesRemoved         prometheus.Counter
	StatusTransitions    *prometheus.CounterVec
	IdentifiersSubmitted prometheus.Counter
}

// New creates and registers all metrics on the default registry.
// Call it once from main; promauto panics on duplicate registration.
func New() *Metrics {
	return &Metrics{
		VotesCast: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "threaddate_votes_cast_total",
			Help: "Total number of votes cast, by direction",
		}, []string{"direction"}),
		VotesRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "threaddate_votes_removed_total",
			Help: "Total number of votes removed",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "threaddate_status_transitions_total",
			Help: "Total number of identifier status transitions, by resulting status",
		}, []string{"status"}),
		IdentifiersSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "threaddate_identifiers_submitted_total",
			Help: "Total number of identifiers submitted",
		}),
	}
}

// RecordVoteCast counts a cast by direction ("up" or "down").
func (m *Metrics) RecordVoteCast(value domain.VoteValue) {
	direction := "up"
	if value == domain.VoteDown {
		direction = "down"
	}
	m.VotesCast.WithLabelValues(direction).Inc()
}

// RecordVoteRemoved counts a removal.
func (m *Metrics) RecordVoteRemoved() {
	m.VotesRemoved.Inc()
}

// RecordStatusTransition counts a transition into the given status.
func (m *Metrics) RecordStatusTransition(status domain.Status) {
	m.StatusTransitions.WithLabelValues(string(status)).Inc()
}

// RecordIdentifierSubmitted counts a new submission.
func (m *Metrics) RecordIdentifierSubmitted() {
	m.IdentifiersSubmitted.Inc()
}
