package generator_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/operator-framework/combinatorics/pkg/checker"
	"github.com/operator-framework/combinatorics/pkg/diagnosis"
	"github.com/operator-framework/combinatorics/pkg/generator"
	"github.com/operator-framework/combinatorics/pkg/model"
)

const x = model.NoValue

type recordingReporter struct {
	mu        sync.Mutex
	generated []int
	finished  map[int]error
	empty     []int
	dropped   []model.Seed
	missing   []diagnosis.MissingInvalidTuple
	sets      [][]int
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{finished: make(map[int]error)}
}

func (r *recordingReporter) GroupGenerated(group *generator.TestInputGroup, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generated = append(r.generated, group.Identifier)
}

func (r *recordingReporter) GroupFinished(identifier int, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished[identifier] = err
}

func (r *recordingReporter) EmptyGroup(identifier int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.empty = append(r.empty, identifier)
}

func (r *recordingReporter) SeedDropped(_ int, seed model.Seed) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped = append(r.dropped, seed)
}

func (r *recordingReporter) MissingInvalidTuples(missing []diagnosis.MissingInvalidTuple) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.missing = append(r.missing, missing...)
}

func (r *recordingReporter) DiagnosisHittingSets(sets [][]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets = sets
}

func evaluate(g *generator.Generator, m *model.Model, parallelism int) []*generator.TestInputGroup {
	suppliers, err := g.Generate(context.Background(), m)
	Expect(err).ToNot(HaveOccurred())
	groups, err := generator.Evaluate(context.Background(), suppliers, parallelism)
	Expect(err).ToNot(HaveOccurred())
	return groups
}

func newModel(sizes []int, options ...model.Option) *model.Model {
	m, err := model.NewModel(sizes, options...)
	Expect(err).ToNot(HaveOccurred())
	return m
}

// conflictingModel cannot negate spec 1 without violating spec 2 or 3.
func conflictingModel() *model.Model {
	return newModel([]int{2, 2},
		model.WithErrorSpecs(
			model.TupleSpec{ID: 1, InvolvedParameters: []int{0}, Tuples: [][]int{{0}}},
			model.TupleSpec{ID: 2, InvolvedParameters: []int{0, 1}, Tuples: [][]int{{0, 0}}},
			model.TupleSpec{ID: 3, InvolvedParameters: []int{0, 1}, Tuples: [][]int{{0, 1}}},
		),
	)
}

var _ = Describe("Generator", func() {
	var (
		m        *model.Model
		reporter *recordingReporter
	)

	BeforeEach(func() {
		reporter = newRecordingReporter()
		m = newModel([]int{3, 3, 3, 3},
			model.WithNegativeStrength(1),
			model.WithExclusionSpecs(
				model.TupleSpec{ID: 1, InvolvedParameters: []int{2, 3}, Tuples: [][]int{{0, 0}}},
			),
			model.WithErrorSpecs(
				model.TupleSpec{ID: 2, InvolvedParameters: []int{0}, Tuples: [][]int{{2}}},
				model.TupleSpec{ID: 3, InvolvedParameters: []int{0, 1}, Tuples: [][]int{{0, 1}, {1, 0}}},
			),
		)
	})

	It("produces the positive group followed by one group per error spec", func() {
		g, err := generator.New(generator.WithReporter(reporter))
		Expect(err).ToNot(HaveOccurred())

		suppliers, err := g.Generate(context.Background(), m)
		Expect(err).ToNot(HaveOccurred())
		Expect(suppliers).To(HaveLen(3))
		Expect(suppliers[0].Identifier).To(Equal(generator.PositiveTestsID))
		Expect(suppliers[1].Identifier).To(Equal(2))
		Expect(suppliers[2].Identifier).To(Equal(3))
		Expect(reporter.generated).To(BeEmpty(), "groups are generated lazily")

		groups, err := generator.Evaluate(context.Background(), suppliers, 1)
		Expect(err).ToNot(HaveOccurred())
		Expect(groups[0].IsPositive()).To(BeTrue())
		Expect(groups[0].NegatedSpec).To(BeNil())
		Expect(groups[2].NegatedSpec.ID).To(Equal(3))
		Expect(reporter.generated).To(ConsistOf(0, 2, 3))
		Expect(reporter.finished).To(HaveLen(3))
		Expect(reporter.finished[3]).ToNot(HaveOccurred())
	})

	It("keeps positive rows free of every spec", func() {
		g, err := generator.New()
		Expect(err).ToNot(HaveOccurred())
		positive := evaluate(g, m, 1)[0]
		Expect(positive.Combinations).ToNot(BeEmpty())
		for _, row := range positive.Combinations {
			for _, spec := range m.AllSpecs() {
				Expect(spec.Matches(row)).To(BeFalse(), "%s matches spec %d", row, spec.ID)
			}
		}
	})

	It("isolates each negated error spec", func() {
		for _, factory := range []checker.Factory{
			checker.HardConstraintCheckerFactory{},
			checker.MinimalForbiddenTuplesCheckerFactory{},
		} {
			g, err := generator.New(generator.WithCheckerFactory(factory))
			Expect(err).ToNot(HaveOccurred())
			for _, group := range evaluate(g, m, 1)[1:] {
				Expect(group.Combinations).ToNot(BeEmpty())
				for _, row := range group.Combinations {
					Expect(group.NegatedSpec.Matches(row)).To(BeTrue(), "%T: %s misses spec %d", factory, row, group.Identifier)
					for _, spec := range m.AllSpecs() {
						if spec.ID != group.Identifier {
							Expect(spec.Matches(row)).To(BeFalse(), "%T: %s matches spec %d", factory, row, spec.ID)
						}
					}
				}
			}
		}
	})

	It("covers every other value together with each negated row", func() {
		g, err := generator.New()
		Expect(err).ToNot(HaveOccurred())
		group := evaluate(g, m, 1)[2]
		for _, row := range group.NegatedSpec.Tuples {
			for _, p := range []int{2, 3} {
				for v := 0; v < 3; v++ {
					want := model.CombinationOf(4, group.NegatedSpec.InvolvedParameters, row)
					want[p] = v
					Expect(group.Combinations).To(ContainElement(WithTransform(func(c model.Combination) bool {
						return c.Contains(want)
					}, BeTrue())), "missing %s", want)
				}
			}
		}
	})

	It("keeps a single witness row for existential negation at negative strength 0", func() {
		m = newModel([]int{3, 3, 3, 4, 3},
			model.WithNegativeStrength(0),
			model.WithErrorSpecs(
				model.TupleSpec{ID: 1, InvolvedParameters: []int{0, 1}, Tuples: [][]int{{0, 0}, {1, 1}}},
			),
		)

		g, err := generator.New(generator.WithCheckerFactory(checker.ExistentialHardConstraintCheckerFactory{}))
		Expect(err).ToNot(HaveOccurred())
		negative := evaluate(g, m, 1)[1]
		Expect(negative.Combinations).To(HaveLen(1))
		row := negative.Combinations[0]
		Expect(row.Contains(model.Combination{0, 0, x, x, x}) || row.Contains(model.Combination{1, 1, x, x, x})).To(BeTrue())

		g, err = generator.New(generator.WithCheckerFactory(checker.ExistentialMinimalForbiddenTuplesCheckerFactory{}))
		Expect(err).ToNot(HaveOccurred())
		Expect(evaluate(g, m, 1)[1].Combinations).To(HaveLen(1))

		g, err = generator.New()
		Expect(err).ToNot(HaveOccurred())
		Expect(evaluate(g, m, 1)[1].Combinations).To(HaveLen(2))
	})

	It("reports dropped seeds", func() {
		m = newModel([]int{2, 2},
			model.WithExclusionSpecs(model.TupleSpec{ID: 1, InvolvedParameters: []int{0}, Tuples: [][]int{{1}}}),
			model.WithSeeds(
				model.Seed{Combination: model.Combination{1, x}},
				model.Seed{Combination: model.Combination{0, 1}},
			),
		)
		g, err := generator.New(generator.WithReporter(reporter))
		Expect(err).ToNot(HaveOccurred())
		positive := evaluate(g, m, 1)[0]
		Expect(positive.DroppedSeeds).To(HaveLen(1))
		Expect(reporter.dropped).To(ConsistOf(model.Seed{Combination: model.Combination{1, x}}))
		Expect(positive.Combinations).To(ContainElement(model.Combination{0, 1}))
	})

	It("evaluates groups in parallel in supplier order", func() {
		g, err := generator.New(generator.WithCheckerFactory(checker.MinimalForbiddenTuplesCheckerFactory{}))
		Expect(err).ToNot(HaveOccurred())
		Expect(evaluate(g, m, 3)).To(Equal(evaluate(g, m, 1)))

		_, err = generator.Evaluate(context.Background(), nil, 0)
		Expect(err).To(HaveOccurred())
	})

	It("stops when the context is cancelled", func() {
		g, err := generator.New()
		Expect(err).ToNot(HaveOccurred())
		suppliers, err := g.Generate(context.Background(), m)
		Expect(err).ToNot(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = generator.Evaluate(ctx, suppliers, 2)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	Context("with conflicting error specs", func() {
		BeforeEach(func() {
			m = conflictingModel()
		})

		It("reports missing invalid tuples and hitting sets", func() {
			g, err := generator.New(generator.WithReporter(reporter), generator.WithDiagnosis(diagnosis.Config{
				ConflictDetection:   true,
				ConflictExplanation: true,
				ConflictDiagnosis:   true,
				ExhaustiveDiagnosis: true,
			}))
			Expect(err).ToNot(HaveOccurred())

			groups := evaluate(g, m, 1)
			Expect(reporter.missing).To(HaveLen(3))
			Expect(reporter.sets).To(Equal([][]int{{1}, {2, 3}}))
			Expect(groups[1].Combinations).To(BeEmpty())
			Expect(reporter.empty).To(ContainElement(1))
		})

		It("aborts when configured to", func() {
			g, err := generator.New(generator.WithDiagnosis(diagnosis.Config{
				ConflictDetection: true,
				AbortOnConflict:   true,
			}))
			Expect(err).ToNot(HaveOccurred())

			_, err = g.Generate(context.Background(), m)
			var conflicts generator.ConflictsDetectedError
			Expect(errors.As(err, &conflicts)).To(BeTrue())
			Expect(conflicts.Missing).To(HaveLen(3))
		})

		It("relaxes conflicting specs with the diagnostic checker", func() {
			g, err := generator.New(generator.WithCheckerFactory(checker.DiagnosticConstraintCheckerFactory{}))
			Expect(err).ToNot(HaveOccurred())
			negative := evaluate(g, m, 1)[1]
			Expect(negative.Combinations).ToNot(BeEmpty())
			for _, row := range negative.Combinations {
				Expect(row[0]).To(Equal(0))
			}
		})
	})

	Context("when the exclusion and error specs contradict each other", func() {
		BeforeEach(func() {
			m = newModel([]int{2, 2, 2},
				model.WithExclusionSpecs(model.TupleSpec{ID: 1, InvolvedParameters: []int{0}, Tuples: [][]int{{0}}}),
				model.WithErrorSpecs(model.TupleSpec{ID: 2, InvolvedParameters: []int{0}, Tuples: [][]int{{1}}}),
			)
		})

		It("reports an empty positive group for every checker factory", func() {
			for _, factory := range []checker.Factory{
				checker.HardConstraintCheckerFactory{},
				checker.SoftConstraintCheckerFactory{Threshold: 1},
				checker.DiagnosticConstraintCheckerFactory{},
				checker.ExistentialHardConstraintCheckerFactory{},
				checker.MinimalForbiddenTuplesCheckerFactory{},
			} {
				reporter = newRecordingReporter()
				g, err := generator.New(generator.WithCheckerFactory(factory), generator.WithReporter(reporter))
				Expect(err).ToNot(HaveOccurred())

				groups := evaluate(g, m, 1)
				Expect(groups[0].Combinations).To(BeEmpty(), "%T", factory)
				Expect(reporter.empty).To(ContainElement(generator.PositiveTestsID), "%T", factory)
				Expect(reporter.finished[generator.PositiveTestsID]).ToNot(HaveOccurred())

				Expect(groups[1].Combinations).ToNot(BeEmpty(), "%T", factory)
				for _, row := range groups[1].Combinations {
					Expect(row[0]).To(Equal(1), "%T", factory)
				}
			}
		})
	})

	It("rejects invalid configuration", func() {
		_, err := generator.New(generator.WithCheckerFactory(nil))
		Expect(err).To(HaveOccurred())
		_, err = generator.New(generator.WithParallelism(0))
		Expect(err).To(HaveOccurred())
		_, err = generator.New(generator.WithDiagnosis(diagnosis.Config{ConflictDiagnosis: true}))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Reporters", func() {
	It("logs events", func() {
		logger, hook := test.NewNullLogger()
		logger.SetLevel(logrus.DebugLevel)
		r := generator.LoggingReporter{Logger: logger}

		r.EmptyGroup(3)
		Expect(hook.LastEntry().Level).To(Equal(logrus.WarnLevel))
		Expect(hook.LastEntry().Data).To(HaveKeyWithValue("group", "error spec 3"))

		r.GroupGenerated(&generator.TestInputGroup{Combinations: []model.Combination{{0}}}, time.Second)
		Expect(hook.LastEntry().Data).To(HaveKeyWithValue("group", "positive"))
		Expect(hook.LastEntry().Data).To(HaveKeyWithValue("rows", 1))

		r.GroupFinished(2, time.Second, errors.New("boom"))
		Expect(hook.LastEntry().Level).To(Equal(logrus.WarnLevel))

		r.MissingInvalidTuples([]diagnosis.MissingInvalidTuple{{
			NegatedConstraintID: 4,
			Explanation:         diagnosis.UnknownExplanation{},
		}})
		Expect(hook.LastEntry().Data).To(HaveKeyWithValue("explanation", "unknown"))
	})

	It("forwards events to every reporter", func() {
		first, second := newRecordingReporter(), newRecordingReporter()
		r := generator.MultiReporter{first, generator.NopReporter{}, generator.MetricsReporter{}, second}

		r.GroupGenerated(&generator.TestInputGroup{Identifier: 5}, time.Millisecond)
		r.GroupFinished(5, time.Millisecond, errors.New("boom"))
		r.EmptyGroup(5)
		r.SeedDropped(5, model.Seed{})
		r.DiagnosisHittingSets([][]int{{1}})
		for _, rec := range []*recordingReporter{first, second} {
			Expect(rec.generated).To(Equal([]int{5}))
			Expect(rec.finished).To(HaveKey(5))
			Expect(rec.empty).To(Equal([]int{5}))
			Expect(rec.dropped).To(HaveLen(1))
			Expect(rec.sets).To(Equal([][]int{{1}}))
		}
	})
})
