package generator

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/operator-framework/combinatorics/pkg/diagnosis"
	"github.com/operator-framework/combinatorics/pkg/metrics"
	"github.com/operator-framework/combinatorics/pkg/model"
)

// Reporter receives progress events. Implementations must be safe for
// concurrent use since groups may be generated in parallel.
type Reporter interface {
	// GroupGenerated is called after a group was generated successfully.
	GroupGenerated(group *TestInputGroup, duration time.Duration)
	// GroupFinished is called once generation of a group ends. err is nil
	// on success.
	GroupFinished(identifier int, duration time.Duration, err error)
	// EmptyGroup is called for groups without any valid test input.
	EmptyGroup(identifier int)
	// SeedDropped is called for seeds the checker rejected.
	SeedDropped(identifier int, seed model.Seed)
	// MissingInvalidTuples is called with the outcome of conflict
	// detection.
	MissingInvalidTuples(missing []diagnosis.MissingInvalidTuple)
	// DiagnosisHittingSets is called with model-level minimal sets of spec
	// ids whose relaxation resolves every missing invalid tuple.
	DiagnosisHittingSets(sets [][]int)
}

// NopReporter ignores every event.
type NopReporter struct{}

var _ Reporter = NopReporter{}

func (NopReporter) GroupGenerated(*TestInputGroup, time.Duration) {}
func (NopReporter) GroupFinished(int, time.Duration, error) {}
func (NopReporter) EmptyGroup(int) {}
func (NopReporter) SeedDropped(int, model.Seed) {}
func (NopReporter) MissingInvalidTuples([]diagnosis.MissingInvalidTuple) {}
func (NopReporter) DiagnosisHittingSets([][]int) {}

// LoggingReporter writes events to a logger.
type LoggingReporter struct {
	Logger logrus.FieldLogger
}

var _ Reporter = LoggingReporter{}

func (r LoggingReporter) GroupGenerated(group *TestInputGroup, duration time.Duration) {
	r.Logger.WithFields(logrus.Fields{
		"group":    group.String(),
		"rows":     len(group.Combinations),
		"duration": duration,
	}).Info("generated test input group")
}

func (r LoggingReporter) GroupFinished(identifier int, duration time.Duration, err error) {
	logger := r.Logger.WithFields(logrus.Fields{
		"group":    groupName(identifier),
		"duration": duration,
	})
	if err != nil {
		logger.WithError(err).Warn("test input group generation failed")
		return
	}
	logger.Debug("test input group generation finished")
}

func (r LoggingReporter) EmptyGroup(identifier int) {
	r.Logger.WithField("group", groupName(identifier)).Warn("no valid test input satisfies the constraints")
}

func (r LoggingReporter) SeedDropped(identifier int, seed model.Seed) {
	r.Logger.WithFields(logrus.Fields{
		"group": groupName(identifier),
		"seed":  seed.Combination.String(),
	}).Warn("dropping seed violating the constraints")
}

func (r LoggingReporter) MissingInvalidTuples(missing []diagnosis.MissingInvalidTuple) {
	for _, t := range missing {
		r.Logger.WithFields(logrus.Fields{
			"spec":        t.NegatedConstraintID,
			"parameters":  t.InvolvedParameters,
			"values":      t.MissingValues,
			"explanation": t.Explanation.String(),
		}).Warn("invalid tuple cannot be tested in isolation")
	}
}

func (r LoggingReporter) DiagnosisHittingSets(sets [][]int) {
	r.Logger.WithField("sets", sets).Info("relaxing any of these spec sets resolves all conflicts")
}

// MetricsReporter records events with the prometheus collectors of the
// metrics package.
type MetricsReporter struct{}

var _ Reporter = MetricsReporter{}

func (MetricsReporter) GroupGenerated(group *TestInputGroup, duration time.Duration) {
	metrics.EmitGroupGenerated(group.IsPositive(), len(group.Combinations), duration)
}

func (MetricsReporter) GroupFinished(identifier int, duration time.Duration, err error) {
	if err != nil {
		metrics.EmitGroupFailed(identifier == PositiveTestsID, duration)
	}
}

func (MetricsReporter) EmptyGroup(int) {}

func (MetricsReporter) SeedDropped(int, model.Seed) {
	metrics.EmitDroppedSeed()
}

func (MetricsReporter) MissingInvalidTuples(missing []diagnosis.MissingInvalidTuple) {
	for _, t := range missing {
		metrics.EmitMissingInvalidTuple(diagnosis.ExplanationKind(t.Explanation))
	}
}

func (MetricsReporter) DiagnosisHittingSets([][]int) {}

// MultiReporter forwards every event to each of its reporters.
type MultiReporter []Reporter

var _ Reporter = MultiReporter{}

func (m MultiReporter) GroupGenerated(group *TestInputGroup, duration time.Duration) {
	for _, r := range m {
		r.GroupGenerated(group, duration)
	}
}

func (m MultiReporter) GroupFinished(identifier int, duration time.Duration, err error) {
	for _, r := range m {
		r.GroupFinished(identifier, duration, err)
	}
}

func (m MultiReporter) EmptyGroup(identifier int) {
	for _, r := range m {
		r.EmptyGroup(identifier)
	}
}

func (m MultiReporter) SeedDropped(identifier int, seed model.Seed) {
	for _, r := range m {
		r.SeedDropped(identifier, seed)
	}
}

func (m MultiReporter) MissingInvalidTuples(missing []diagnosis.MissingInvalidTuple) {
	for _, r := range m {
		r.MissingInvalidTuples(missing)
	}
}

func (m MultiReporter) DiagnosisHittingSets(sets [][]int) {
	for _, r := range m {
		r.DiagnosisHittingSets(sets)
	}
}
