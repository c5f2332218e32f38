package checker

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/combinatorics/pkg/diagnosis"
	"github.com/operator-framework/combinatorics/pkg/mft"
	"github.com/operator-framework/combinatorics/pkg/model"
)

// Factory builds checkers for a model. CreateNegatedChecker fails with
// model.ErrUnknownSpec if specID does not name an error spec of m.
type Factory interface {
	CreateChecker(m *model.Model) (ConstraintChecker, error)
	CreateNegatedChecker(m *model.Model, specID int) (ConstraintChecker, error)
}

type NoConstraintCheckerFactory struct{}

func (NoConstraintCheckerFactory) CreateChecker(*model.Model) (ConstraintChecker, error) {
	return NoConstraintChecker{}, nil
}

func (NoConstraintCheckerFactory) CreateNegatedChecker(m *model.Model, specID int) (ConstraintChecker, error) {
	if _, ok := m.ErrorSpec(specID); !ok {
		return nil, model.ErrUnknownSpec(specID)
	}
	return NoConstraintChecker{}, nil
}

type HardConstraintCheckerFactory struct{}

func (HardConstraintCheckerFactory) CreateChecker(m *model.Model) (ConstraintChecker, error) {
	return NewHardConstraintChecker(m, 0)
}

func (HardConstraintCheckerFactory) CreateNegatedChecker(m *model.Model, specID int) (ConstraintChecker, error) {
	return withNegatedSpec(m, specID, func() (ConstraintChecker, error) {
		return NewHardConstraintChecker(m, specID)
	})
}

// SoftConstraintCheckerFactory builds hard checkers for positive tests and
// soft checkers with a fixed threshold for negated specs.
type SoftConstraintCheckerFactory struct {
	Threshold int
}

func (SoftConstraintCheckerFactory) CreateChecker(m *model.Model) (ConstraintChecker, error) {
	return NewHardConstraintChecker(m, 0)
}

func (f SoftConstraintCheckerFactory) CreateNegatedChecker(m *model.Model, specID int) (ConstraintChecker, error) {
	return withNegatedSpec(m, specID, func() (ConstraintChecker, error) {
		return NewSoftConstraintChecker(m, specID, f.Threshold)
	})
}

// DiagnosticConstraintCheckerFactory diagnoses the negated spec and derives
// per-value thresholds from the result. Specs without missing invalid
// tuples get a hard checker.
type DiagnosticConstraintCheckerFactory struct {
	Exhaustive bool
	Logger     logrus.FieldLogger
}

func (DiagnosticConstraintCheckerFactory) CreateChecker(m *model.Model) (ConstraintChecker, error) {
	return NewHardConstraintChecker(m, 0)
}

func (f DiagnosticConstraintCheckerFactory) CreateNegatedChecker(m *model.Model, specID int) (ConstraintChecker, error) {
	options := []diagnosis.Option{
		diagnosis.WithConfig(diagnosis.Config{
			ConflictDetection:   true,
			ConflictExplanation: true,
			ConflictDiagnosis:   true,
			ExhaustiveDiagnosis: f.Exhaustive,
		}),
	}
	if f.Logger != nil {
		options = append(options, diagnosis.WithLogger(f.Logger))
	}
	manager, err := diagnosis.NewManager(m, options...)
	if err != nil {
		return nil, err
	}
	missing, err := manager.DetectForSpec(context.Background(), specID)
	if err != nil {
		return nil, err
	}
	if len(missing) == 0 {
		return NewHardConstraintChecker(m, specID)
	}
	return NewDiagnosticConstraintChecker(m, specID, diagnosis.ComputeThresholds(missing))
}

type MinimalForbiddenTuplesCheckerFactory struct{}

func (MinimalForbiddenTuplesCheckerFactory) CreateChecker(m *model.Model) (ConstraintChecker, error) {
	return NewMinimalForbiddenTuplesChecker(m, 0, mft.General)
}

func (MinimalForbiddenTuplesCheckerFactory) CreateNegatedChecker(m *model.Model, specID int) (ConstraintChecker, error) {
	return withNegatedSpec(m, specID, func() (ConstraintChecker, error) {
		return NewMinimalForbiddenTuplesChecker(m, specID, mft.General)
	})
}

// ExistentialHardConstraintCheckerFactory keeps a single witness row of
// each negated spec reachable.
type ExistentialHardConstraintCheckerFactory struct{}

func (ExistentialHardConstraintCheckerFactory) CreateChecker(m *model.Model) (ConstraintChecker, error) {
	return NewHardConstraintChecker(m, 0)
}

func (ExistentialHardConstraintCheckerFactory) CreateNegatedChecker(m *model.Model, specID int) (ConstraintChecker, error) {
	return withNegatedSpec(m, specID, func() (ConstraintChecker, error) {
		return NewExistentialHardConstraintChecker(m, specID)
	})
}

// ExistentialMinimalForbiddenTuplesCheckerFactory is the solver-free
// counterpart of ExistentialHardConstraintCheckerFactory.
type ExistentialMinimalForbiddenTuplesCheckerFactory struct{}

func (ExistentialMinimalForbiddenTuplesCheckerFactory) CreateChecker(m *model.Model) (ConstraintChecker, error) {
	return NewMinimalForbiddenTuplesChecker(m, 0, mft.General)
}

func (ExistentialMinimalForbiddenTuplesCheckerFactory) CreateNegatedChecker(m *model.Model, specID int) (ConstraintChecker, error) {
	return withNegatedSpec(m, specID, func() (ConstraintChecker, error) {
		return NewMinimalForbiddenTuplesChecker(m, specID, mft.Existential)
	})
}

// withNegatedSpec rejects ids that do not name an error spec before building.
func withNegatedSpec(m *model.Model, specID int, build func() (ConstraintChecker, error)) (ConstraintChecker, error) {
	if _, ok := m.ErrorSpec(specID); !ok {
		return nil, model.ErrUnknownSpec(specID)
	}
	return build()
}

type factoryConfig struct {
	softThreshold       int
	exhaustiveDiagnosis bool
	logger              logrus.FieldLogger
}

// FactoryOption configures factories built by FactoryByName.
type FactoryOption func(config *factoryConfig)

// WithSoftThreshold sets the threshold of the "soft" factory.
func WithSoftThreshold(threshold int) FactoryOption {
	return func(config *factoryConfig) {
		config.softThreshold = threshold
	}
}

// WithExhaustiveDiagnosis makes the "diagnostic" factory enumerate every
// minimal diagnosis.
func WithExhaustiveDiagnosis(exhaustive bool) FactoryOption {
	return func(config *factoryConfig) {
		config.exhaustiveDiagnosis = exhaustive
	}
}

// WithFactoryLogger sets the logger of the "diagnostic" factory.
func WithFactoryLogger(logger logrus.FieldLogger) FactoryOption {
	return func(config *factoryConfig) {
		config.logger = logger
	}
}

var factories = map[string]func(config *factoryConfig) Factory{
	"none": func(*factoryConfig) Factory { return NoConstraintCheckerFactory{} },
	"hard": func(*factoryConfig) Factory { return HardConstraintCheckerFactory{} },
	"soft": func(c *factoryConfig) Factory {
		return SoftConstraintCheckerFactory{Threshold: c.softThreshold}
	},
	"diagnostic": func(c *factoryConfig) Factory {
		return DiagnosticConstraintCheckerFactory{Exhaustive: c.exhaustiveDiagnosis, Logger: c.logger}
	},
	"mft":             func(*factoryConfig) Factory { return MinimalForbiddenTuplesCheckerFactory{} },
	"existential":     func(*factoryConfig) Factory { return ExistentialHardConstraintCheckerFactory{} },
	"existential-mft": func(*factoryConfig) Factory { return ExistentialMinimalForbiddenTuplesCheckerFactory{} },
}

// FactoryNames returns the names accepted by FactoryByName.
func FactoryNames() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FactoryByName returns the factory registered under name.
func FactoryByName(name string, options ...FactoryOption) (Factory, error) {
	build, ok := factories[name]
	if !ok {
		return nil, errors.Errorf("unknown checker %q, expected one of %v", name, FactoryNames())
	}
	config := &factoryConfig{}
	for _, option := range options {
		option(config)
	}
	if config.softThreshold < 0 {
		return nil, errors.Errorf("soft threshold must not be negative, got %d", config.softThreshold)
	}
	return build(config), nil
}
