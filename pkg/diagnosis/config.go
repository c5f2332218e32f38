package diagnosis

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config selects how much work conflict detection does.
type Config struct {
	// ConflictDetection enables the search for missing invalid tuples.
	ConflictDetection bool `json:"conflictDetection"`
	// ConflictExplanation computes a minimal conflict set per missing
	// tuple.
	ConflictExplanation bool `json:"conflictExplanation"`
	// ConflictDiagnosis computes minimal diagnoses per missing tuple.
	ConflictDiagnosis bool `json:"conflictDiagnosis"`
	// ExhaustiveDiagnosis enumerates every minimal diagnosis instead of a
	// single one.
	ExhaustiveDiagnosis bool `json:"exhaustiveDiagnosis"`
	// AbortOnConflict makes generation fail once missing invalid tuples
	// are found.
	AbortOnConflict bool `json:"abortOnConflict"`
}

// DisabledConfig turns conflict detection off.
func DisabledConfig() Config {
	return Config{}
}

// DiagnosisConfig enables detection, explanation and single diagnoses.
func DiagnosisConfig() Config {
	return Config{
		ConflictDetection:   true,
		ConflictExplanation: true,
		ConflictDiagnosis:   true,
	}
}

// Validate rejects configurations that enable a stage without the stages it
// depends on.
func (c Config) Validate() error {
	if (c.ConflictExplanation || c.ConflictDiagnosis) && !c.ConflictDetection {
		return errors.New("conflict explanation and diagnosis require conflict detection")
	}
	if c.ExhaustiveDiagnosis && !c.ConflictDiagnosis {
		return errors.New("exhaustive diagnosis requires conflict diagnosis")
	}
	if c.AbortOnConflict && !c.ConflictDetection {
		return errors.New("abort on conflict requires conflict detection")
	}
	return nil
}

type managerConfig struct {
	config      Config
	logger      logrus.FieldLogger
	parallelism int
}

// Option applies an option to the given manager config.
type Option func(config *managerConfig)

func (c *managerConfig) apply(options []Option) {
	for _, option := range options {
		option(c)
	}
}

func (c *managerConfig) validate() error {
	if c.logger == nil {
		return errors.New("logger cannot be nil")
	}
	if c.parallelism < 1 {
		return errors.Errorf("parallelism must be at least 1, got %d", c.parallelism)
	}
	return c.config.Validate()
}

func defaultManagerConfig() *managerConfig {
	return &managerConfig{
		config:      DiagnosisConfig(),
		logger:      logrus.New(),
		parallelism: 1,
	}
}

// WithConfig sets the detection stages.
func WithConfig(config Config) Option {
	return func(c *managerConfig) {
		c.config = config
	}
}

// WithLogger sets the logger used by the manager.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *managerConfig) {
		c.logger = logger
	}
}

// WithParallelism sets how many error specs are analysed concurrently.
func WithParallelism(n int) Option {
	return func(c *managerConfig) {
		c.parallelism = n
	}
}
