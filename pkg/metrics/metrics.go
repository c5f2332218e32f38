package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Label names attached to the exported series.
const (
	// KindLabel distinguishes the positive group from negated error spec groups.
	KindLabel = "kind"
	// ExplanationLabel carries the kind of explanation of a missing invalid tuple.
	ExplanationLabel = "explanation"
	// Outcome records whether a group was generated.
	Outcome = "outcome"
)

// Label values.
const (
	// Succeeded is the Outcome of a generated group.
	Succeeded = "succeeded"
	// Failed is the Outcome of a group whose generation returned an error.
	Failed = "failed"
	// Positive is the KindLabel value of the positive group.
	Positive = "positive"
	// Negative is the KindLabel value of a negated error spec group.
	Negative = "negative"
)

var (
	groupsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "combinatorics_groups_total",
			Help: "Monotonic count of test input groups generated",
		},
		[]string{KindLabel, Outcome},
	)

	rowsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "combinatorics_rows_total",
			Help: "Monotonic count of test inputs generated",
		},
		[]string{KindLabel},
	)

	emptyGroups = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "combinatorics_empty_groups_total",
			Help: "Monotonic count of groups without any valid test input",
		},
	)

	droppedSeeds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "combinatorics_dropped_seeds_total",
			Help: "Monotonic count of seeds rejected by the constraint checker",
		},
	)

	missingInvalidTuples = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "combinatorics_missing_invalid_tuples_total",
			Help: "Monotonic count of forbidden rows of negated error specs that no test input can reach",
		},
		[]string{ExplanationLabel},
	)

	generationSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "combinatorics_generation_duration_seconds",
			Help:       "The duration of a test input group generation",
			Objectives: map[float64]float64{0.95: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{KindLabel, Outcome},
	)
)

// RegisterGenerator registers the generation collectors with the default
// registry.
func RegisterGenerator() {
	prometheus.MustRegister(groupsGenerated)
	prometheus.MustRegister(rowsGenerated)
	prometheus.MustRegister(emptyGroups)
	prometheus.MustRegister(droppedSeeds)
	prometheus.MustRegister(missingInvalidTuples)
	prometheus.MustRegister(generationSummary)
}

func kind(positive bool) string {
	if positive {
		return Positive
	}
	return Negative
}

// EmitGroupGenerated records a successful generation of a group with the
// given number of rows.
func EmitGroupGenerated(positive bool, rows int, duration time.Duration) {
	groupsGenerated.WithLabelValues(kind(positive), Succeeded).Inc()
	rowsGenerated.WithLabelValues(kind(positive)).Add(float64(rows))
	generationSummary.WithLabelValues(kind(positive), Succeeded).Observe(duration.Seconds())
	if rows == 0 {
		emptyGroups.Inc()
	}
}

// EmitGroupFailed records a failed generation of a group.
func EmitGroupFailed(positive bool, duration time.Duration) {
	groupsGenerated.WithLabelValues(kind(positive), Failed).Inc()
	generationSummary.WithLabelValues(kind(positive), Failed).Observe(duration.Seconds())
}

// EmitDroppedSeed records a seed rejected by a checker.
func EmitDroppedSeed() {
	droppedSeeds.Inc()
}

// EmitMissingInvalidTuple records a missing invalid tuple by the kind of
// its explanation.
func EmitMissingInvalidTuple(explanation string) {
	missingInvalidTuples.WithLabelValues(explanation).Inc()
}
