package ipog

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/combinatorics/pkg/model"
)

type ipogConfig struct {
	strength     int
	order        ParameterOrder
	combinations ParameterCombinationFactory
	seeds        []model.Seed
	logger       logrus.FieldLogger
}

// Option applies an option to the given IPOG config.
type Option func(config *ipogConfig)

func (c *ipogConfig) apply(options []Option) {
	for _, option := range options {
		option(c)
	}
}

func newInvalidConfigError(msg string) error {
	return errors.Errorf("invalid ipog config: %s", msg)
}

func (c *ipogConfig) validate(sizes []int) (err error) {
	switch config := c; {
	case config.strength < 0:
		err = newInvalidConfigError("negative strength")
	case config.strength > len(sizes):
		err = newInvalidConfigError("strength exceeds number of parameters")
	case config.order == nil:
		err = newInvalidConfigError("nil parameter order")
	case config.combinations == nil:
		err = newInvalidConfigError("nil parameter combination factory")
	case config.logger == nil:
		err = newInvalidConfigError("nil logger")
	}
	if err != nil {
		return
	}
	for _, seed := range c.seeds {
		if len(seed.Combination) != len(sizes) {
			return newInvalidConfigError("seed length does not match number of parameters")
		}
	}
	return
}

func defaultConfig(sizes []int) *ipogConfig {
	return &ipogConfig{
		strength:     min(2, len(sizes)),
		order:        StrengthBasedParameterOrder{},
		combinations: TWiseParameterCombinationFactory{},
		logger:       logrus.New(),
	}
}

// WithStrength sets the interaction strength to cover.
func WithStrength(strength int) Option {
	return func(config *ipogConfig) {
		config.strength = strength
	}
}

// WithParameterOrder sets the order in which parameters are added.
func WithParameterOrder(order ParameterOrder) Option {
	return func(config *ipogConfig) {
		config.order = order
	}
}

// WithParameterCombinationFactory sets the factory deciding which
// parameter subsets must be covered.
func WithParameterCombinationFactory(factory ParameterCombinationFactory) Option {
	return func(config *ipogConfig) {
		config.combinations = factory
	}
}

// WithSeeds adds rows that must appear in the suite.
func WithSeeds(seeds ...model.Seed) Option {
	return func(config *ipogConfig) {
		config.seeds = append(config.seeds, seeds...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(config *ipogConfig) {
		config.logger = logger
	}
}
