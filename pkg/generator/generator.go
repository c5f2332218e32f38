// Package generator produces the positive test input group and one
// negative group per error spec of a model. Negative groups negate their
// error spec and keep its parameters together as a fixed initial block, so
// every row triggers exactly that error condition.
package generator

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/combinatorics/pkg/checker"
	"github.com/operator-framework/combinatorics/pkg/diagnosis"
	"github.com/operator-framework/combinatorics/pkg/ipog"
	"github.com/operator-framework/combinatorics/pkg/model"
)

type generatorConfig struct {
	factory     checker.Factory
	diagnosis   diagnosis.Config
	reporter    Reporter
	logger      logrus.FieldLogger
	parallelism int
}

// Option applies an option to the given generator config.
type Option func(config *generatorConfig)

func (c *generatorConfig) apply(options []Option) {
	for _, option := range options {
		option(c)
	}
}

func newInvalidConfigError(msg string) error {
	return errors.Errorf("invalid generator config: %s", msg)
}

func (c *generatorConfig) validate() (err error) {
	switch config := c; {
	case config.factory == nil:
		err = newInvalidConfigError("nil checker factory")
	case config.reporter == nil:
		err = newInvalidConfigError("nil reporter")
	case config.logger == nil:
		err = newInvalidConfigError("nil logger")
	case config.parallelism < 1:
		err = newInvalidConfigError("parallelism must be at least 1")
	default:
		err = config.diagnosis.Validate()
	}
	return
}

func defaultConfig() *generatorConfig {
	return &generatorConfig{
		factory:     checker.HardConstraintCheckerFactory{},
		diagnosis:   diagnosis.DisabledConfig(),
		reporter:    NopReporter{},
		logger:      logrus.New(),
		parallelism: 1,
	}
}

// WithCheckerFactory sets the factory building a checker per group.
func WithCheckerFactory(factory checker.Factory) Option {
	return func(config *generatorConfig) {
		config.factory = factory
	}
}

// WithDiagnosis configures conflict detection run before groups are
// handed out.
func WithDiagnosis(c diagnosis.Config) Option {
	return func(config *generatorConfig) {
		config.diagnosis = c
	}
}

// WithReporter sets the receiver of progress events.
func WithReporter(reporter Reporter) Option {
	return func(config *generatorConfig) {
		config.reporter = reporter
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(config *generatorConfig) {
		config.logger = logger
	}
}

// WithParallelism bounds how many error specs conflict detection analyses
// at once.
func WithParallelism(n int) Option {
	return func(config *generatorConfig) {
		config.parallelism = n
	}
}

// Generator turns models into lazily generated test input groups.
type Generator struct {
	config *generatorConfig
}

// New returns a Generator.
func New(options ...Option) (*Generator, error) {
	config := defaultConfig()
	config.apply(options)
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Generator{config: config}, nil
}

// Generate runs conflict detection if enabled and returns one supplier for
// the positive group followed by one per error spec in declaration order.
func (g *Generator) Generate(ctx context.Context, m *model.Model) ([]GroupSupplier, error) {
	if g.config.diagnosis.ConflictDetection {
		if err := g.detectConflicts(ctx, m); err != nil {
			return nil, err
		}
	}

	suppliers := []GroupSupplier{g.positiveSupplier(m)}
	for _, spec := range m.ErrorSpecs() {
		suppliers = append(suppliers, g.negativeSupplier(m, spec))
	}
	return suppliers, nil
}

func (g *Generator) detectConflicts(ctx context.Context, m *model.Model) error {
	manager, err := diagnosis.NewManager(m,
		diagnosis.WithConfig(g.config.diagnosis),
		diagnosis.WithLogger(g.config.logger),
		diagnosis.WithParallelism(g.config.parallelism),
	)
	if err != nil {
		return err
	}
	missing, err := manager.DetectMissingInvalidTuples(ctx)
	if err != nil {
		return errors.Wrap(err, "detecting missing invalid tuples")
	}
	if len(missing) == 0 {
		return nil
	}

	g.config.reporter.MissingInvalidTuples(missing)
	if g.config.diagnosis.ConflictDiagnosis {
		g.config.reporter.DiagnosisHittingSets(diagnosis.BuildDiagnosisHittingSets(missing))
	}
	if g.config.diagnosis.AbortOnConflict {
		return ConflictsDetectedError{Missing: missing}
	}
	return nil
}

func (g *Generator) positiveSupplier(m *model.Model) GroupSupplier {
	return g.supplier(PositiveTestsID, nil, func() (checker.ConstraintChecker, error) {
		return g.config.factory.CreateChecker(m)
	}, func(c checker.ConstraintChecker) (*ipog.Ipog, error) {
		return ipog.New(m.ParameterSizes(), c,
			ipog.WithStrength(m.Strength()),
			ipog.WithParameterCombinationFactory(ipog.TWiseParameterCombinationFactory{Groups: m.StrengthGroups()}),
			ipog.WithSeeds(m.Seeds()...),
			ipog.WithLogger(g.config.logger.WithField("group", groupName(PositiveTestsID))),
		)
	})
}

func (g *Generator) negativeSupplier(m *model.Model, spec model.TupleSpec) GroupSupplier {
	return g.supplier(spec.ID, &spec, func() (checker.ConstraintChecker, error) {
		return g.config.factory.CreateNegatedChecker(m, spec.ID)
	}, func(c checker.ConstraintChecker) (*ipog.Ipog, error) {
		return ipog.New(m.ParameterSizes(), c,
			ipog.WithStrength(m.NegativeStrength()),
			ipog.WithParameterOrder(ipog.NegativeStrengthBasedParameterOrder{Fixed: spec.InvolvedParameters}),
			ipog.WithParameterCombinationFactory(ipog.NegativeTWiseParameterCombinationFactory{Fixed: spec.InvolvedParameters}),
			ipog.WithSeeds(m.NegativeSeeds(spec.ID)...),
			ipog.WithLogger(g.config.logger.WithField("group", groupName(spec.ID))),
		)
	})
}

func (g *Generator) supplier(
	identifier int,
	negated *model.TupleSpec,
	newChecker func() (checker.ConstraintChecker, error),
	newIpog func(checker.ConstraintChecker) (*ipog.Ipog, error),
) GroupSupplier {
	reporter := g.config.reporter
	return GroupSupplier{
		Identifier: identifier,
		supply: func(ctx context.Context) (group *TestInputGroup, err error) {
			start := time.Now()
			defer func() {
				reporter.GroupFinished(identifier, time.Since(start), err)
			}()

			c, err := newChecker()
			if err != nil {
				return nil, errors.Wrap(err, "building constraint checker")
			}
			generator, err := newIpog(c)
			if err != nil {
				return nil, err
			}
			result, err := generator.Generate(ctx)
			if err != nil {
				return nil, err
			}

			group = &TestInputGroup{
				Identifier:   identifier,
				Combinations: result.Combinations,
				DroppedSeeds: result.DroppedSeeds,
			}
			if negated != nil {
				spec := *negated
				group.NegatedSpec = &spec
			}
			for _, seed := range result.DroppedSeeds {
				reporter.SeedDropped(identifier, seed)
			}
			if len(group.Combinations) == 0 {
				reporter.EmptyGroup(identifier)
			}
			reporter.GroupGenerated(group, time.Since(start))
			return group, nil
		},
	}
}
