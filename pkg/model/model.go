package model

import (
	"sort"

	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/sets"
)

// Model is the immutable description of a parameter space and the
// constraints, seeds and strength requirements placed on it. Use NewModel
// to obtain a validated instance.
type Model struct {
	parameterSizes   []int
	strength         int
	negativeStrength int
	exclusionSpecs   []TupleSpec
	errorSpecs       []TupleSpec
	seeds            []Seed
	negativeSeeds    map[int][]Seed
	strengthGroups   []StrengthGroup
}

type modelConfig struct {
	strength         int
	negativeStrength int
	exclusionSpecs   []TupleSpec
	errorSpecs       []TupleSpec
	seeds            []Seed
	negativeSeeds    map[int][]Seed
	strengthGroups   []StrengthGroup
}

// Option configures a Model under construction.
type Option func(config *modelConfig)

func (c *modelConfig) apply(options []Option) {
	for _, option := range options {
		option(c)
	}
}

func defaultModelConfig(numberOfParameters int) *modelConfig {
	return &modelConfig{
		strength:         min(2, numberOfParameters),
		negativeStrength: min(1, numberOfParameters),
		negativeSeeds:    make(map[int][]Seed),
	}
}

// WithStrength sets the default strength of the positive test group.
func WithStrength(strength int) Option {
	return func(config *modelConfig) {
		config.strength = strength
	}
}

// WithNegativeStrength sets the strength applied to the remaining parameters
// of every negative test group.
func WithNegativeStrength(strength int) Option {
	return func(config *modelConfig) {
		config.negativeStrength = strength
	}
}

// WithExclusionSpecs adds hard exclusion constraints.
func WithExclusionSpecs(specs ...TupleSpec) Option {
	return func(config *modelConfig) {
		config.exclusionSpecs = append(config.exclusionSpecs, specs...)
	}
}

// WithErrorSpecs adds individually negatable error constraints.
func WithErrorSpecs(specs ...TupleSpec) Option {
	return func(config *modelConfig) {
		config.errorSpecs = append(config.errorSpecs, specs...)
	}
}

// WithSeeds adds seeds to the positive test group.
func WithSeeds(seeds ...Seed) Option {
	return func(config *modelConfig) {
		config.seeds = append(config.seeds, seeds...)
	}
}

// WithNegativeSeeds adds seeds to the negative test group of the error spec
// identified by specID.
func WithNegativeSeeds(specID int, seeds ...Seed) Option {
	return func(config *modelConfig) {
		config.negativeSeeds[specID] = append(config.negativeSeeds[specID], seeds...)
	}
}

// WithStrengthGroups adds mixed-strength requirements.
func WithStrengthGroups(groups ...StrengthGroup) Option {
	return func(config *modelConfig) {
		config.strengthGroups = append(config.strengthGroups, groups...)
	}
}

// NewModel validates the given parameter sizes and options and returns the
// resulting Model. All violations found are reported together.
func NewModel(parameterSizes []int, options ...Option) (*Model, error) {
	config := defaultModelConfig(len(parameterSizes))
	config.apply(options)

	m := &Model{
		parameterSizes:   append([]int(nil), parameterSizes...),
		strength:         config.strength,
		negativeStrength: config.negativeStrength,
		negativeSeeds:    make(map[int][]Seed, len(config.negativeSeeds)),
	}
	for _, s := range config.exclusionSpecs {
		m.exclusionSpecs = append(m.exclusionSpecs, s.clone())
	}
	for _, s := range config.errorSpecs {
		m.errorSpecs = append(m.errorSpecs, s.clone())
	}
	m.seeds = cloneSeeds(config.seeds)
	for id, seeds := range config.negativeSeeds {
		m.negativeSeeds[id] = cloneSeeds(seeds)
	}
	for _, g := range config.strengthGroups {
		m.strengthGroups = append(m.strengthGroups, StrengthGroup{
			Parameters: append([]int(nil), g.Parameters...),
			Strength:   g.Strength,
		})
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func cloneSeeds(seeds []Seed) []Seed {
	out := make([]Seed, len(seeds))
	for i, s := range seeds {
		out[i] = Seed{Combination: s.Combination.Clone(), Mode: s.Mode, Priority: s.Priority}
	}
	return out
}

func (m *Model) validate() error {
	var errs []error
	n := len(m.parameterSizes)

	for p, size := range m.parameterSizes {
		if size < 2 {
			errs = append(errs, errors.Errorf("parameter %d has domain size %d, need at least 2", p, size))
		}
	}
	if m.strength < 0 || m.strength > n {
		errs = append(errs, errors.Errorf("strength %d outside [0, %d]", m.strength, n))
	}
	if m.negativeStrength < 0 || m.negativeStrength > n {
		errs = append(errs, errors.Errorf("negative strength %d outside [0, %d]", m.negativeStrength, n))
	}

	ids := sets.New[int]()
	for _, s := range append(append([]TupleSpec(nil), m.exclusionSpecs...), m.errorSpecs...) {
		if s.ID <= 0 {
			errs = append(errs, errors.Errorf("spec id %d is not positive", s.ID))
		}
		if ids.Has(s.ID) {
			errs = append(errs, errors.Errorf("duplicate spec id %d", s.ID))
		}
		ids.Insert(s.ID)
		errs = append(errs, m.validateSpec(s)...)
	}

	errorIDs := sets.New[int]()
	for _, s := range m.errorSpecs {
		errorIDs.Insert(s.ID)
	}
	for _, s := range m.seeds {
		if err := m.validateCombination(s.Combination); err != nil {
			errs = append(errs, errors.Wrap(err, "invalid seed"))
		}
	}
	for id, seeds := range m.negativeSeeds {
		if !errorIDs.Has(id) {
			errs = append(errs, errors.Errorf("negative seeds reference unknown error spec %d", id))
		}
		for _, s := range seeds {
			if err := m.validateCombination(s.Combination); err != nil {
				errs = append(errs, errors.Wrapf(err, "invalid negative seed for spec %d", id))
			}
		}
	}

	for i, g := range m.strengthGroups {
		if g.Strength <= m.strength {
			errs = append(errs, errors.Errorf("strength group %d: strength %d does not exceed default strength %d", i, g.Strength, m.strength))
		}
		if g.Strength > len(g.Parameters) {
			errs = append(errs, errors.Errorf("strength group %d: strength %d exceeds its %d parameters", i, g.Strength, len(g.Parameters)))
		}
		if err := m.validateParameters(g.Parameters); err != nil {
			errs = append(errs, errors.Wrapf(err, "strength group %d", i))
		}
	}

	return utilerrors.NewAggregate(errs)
}

func (m *Model) validateSpec(s TupleSpec) []error {
	var errs []error
	if len(s.InvolvedParameters) == 0 {
		errs = append(errs, errors.Errorf("spec %d involves no parameters", s.ID))
	}
	if err := m.validateParameters(s.InvolvedParameters); err != nil {
		errs = append(errs, errors.Wrapf(err, "spec %d", s.ID))
		return errs
	}
	for i, row := range s.Tuples {
		if len(row) != len(s.InvolvedParameters) {
			errs = append(errs, errors.Errorf("spec %d: row %d has %d values for %d parameters", s.ID, i, len(row), len(s.InvolvedParameters)))
			continue
		}
		for j, v := range row {
			p := s.InvolvedParameters[j]
			if v < 0 || v >= m.parameterSizes[p] {
				errs = append(errs, errors.Errorf("spec %d: row %d value %d outside domain of parameter %d", s.ID, i, v, p))
			}
		}
	}
	return errs
}

func (m *Model) validateParameters(parameters []int) error {
	seen := sets.New[int]()
	for _, p := range parameters {
		if p < 0 || p >= len(m.parameterSizes) {
			return errors.Errorf("parameter %d outside [0, %d)", p, len(m.parameterSizes))
		}
		if seen.Has(p) {
			return errors.Errorf("parameter %d listed twice", p)
		}
		seen.Insert(p)
	}
	return nil
}

func (m *Model) validateCombination(c Combination) error {
	if len(c) != len(m.parameterSizes) {
		return errors.Errorf("combination %s has length %d, want %d", c, len(c), len(m.parameterSizes))
	}
	for p, v := range c {
		if v != NoValue && (v < 0 || v >= m.parameterSizes[p]) {
			return errors.Errorf("combination %s: value %d outside domain of parameter %d", c, v, p)
		}
	}
	return nil
}

// NumberOfParameters returns the size of the parameter space.
func (m *Model) NumberOfParameters() int {
	return len(m.parameterSizes)
}

// ParameterSizes returns a copy of the domain sizes.
func (m *Model) ParameterSizes() []int {
	return append([]int(nil), m.parameterSizes...)
}

func (m *Model) Strength() int {
	return m.strength
}

func (m *Model) NegativeStrength() int {
	return m.negativeStrength
}

// ExclusionSpecs returns the hard exclusion constraints.
func (m *Model) ExclusionSpecs() []TupleSpec {
	return cloneSpecs(m.exclusionSpecs)
}

// ErrorSpecs returns the negatable error constraints.
func (m *Model) ErrorSpecs() []TupleSpec {
	return cloneSpecs(m.errorSpecs)
}

// AllSpecs returns exclusion specs followed by error specs.
func (m *Model) AllSpecs() []TupleSpec {
	return append(m.ExclusionSpecs(), m.ErrorSpecs()...)
}

// FindSpec looks up a spec of either category by id.
func (m *Model) FindSpec(id int) (TupleSpec, bool) {
	for _, s := range m.exclusionSpecs {
		if s.ID == id {
			return s.clone(), true
		}
	}
	return m.ErrorSpec(id)
}

// ErrorSpec looks up an error spec by id.
func (m *Model) ErrorSpec(id int) (TupleSpec, bool) {
	for _, s := range m.errorSpecs {
		if s.ID == id {
			return s.clone(), true
		}
	}
	return TupleSpec{}, false
}

// Seeds returns the seeds of the positive test group.
func (m *Model) Seeds() []Seed {
	return cloneSeeds(m.seeds)
}

// NegativeSeeds returns the seeds of the negative group of the given error spec.
func (m *Model) NegativeSeeds(specID int) []Seed {
	return cloneSeeds(m.negativeSeeds[specID])
}

// StrengthGroups returns the mixed-strength requirements.
func (m *Model) StrengthGroups() []StrengthGroup {
	out := make([]StrengthGroup, len(m.strengthGroups))
	for i, g := range m.strengthGroups {
		out[i] = StrengthGroup{Parameters: append([]int(nil), g.Parameters...), Strength: g.Strength}
	}
	return out
}

// Fingerprint returns a stable hash of the model contents, suitable for
// correlating log lines and reports of the same model.
func (m *Model) Fingerprint() (uint64, error) {
	negativeSeedIDs := make([]int, 0, len(m.negativeSeeds))
	for id := range m.negativeSeeds {
		negativeSeedIDs = append(negativeSeedIDs, id)
	}
	sort.Ints(negativeSeedIDs)
	negativeSeeds := make([][]Seed, len(negativeSeedIDs))
	for i, id := range negativeSeedIDs {
		negativeSeeds[i] = m.negativeSeeds[id]
	}

	view := struct {
		ParameterSizes   []int
		Strength         int
		NegativeStrength int
		ExclusionSpecs   []TupleSpec
		ErrorSpecs       []TupleSpec
		Seeds            []Seed
		NegativeSeedIDs  []int
		NegativeSeeds    [][]Seed
		StrengthGroups   []StrengthGroup
	}{
		ParameterSizes:   m.parameterSizes,
		Strength:         m.strength,
		NegativeStrength: m.negativeStrength,
		ExclusionSpecs:   m.exclusionSpecs,
		ErrorSpecs:       m.errorSpecs,
		Seeds:            m.seeds,
		NegativeSeedIDs:  negativeSeedIDs,
		NegativeSeeds:    negativeSeeds,
		StrengthGroups:   m.strengthGroups,
	}
	return hashstructure.Hash(view, nil)
}

func cloneSpecs(specs []TupleSpec) []TupleSpec {
	out := make([]TupleSpec, len(specs))
	for i, s := range specs {
		out[i] = s.clone()
	}
	return out
}
