package ipog

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/combinatorics/pkg/checker"
	"github.com/operator-framework/combinatorics/pkg/model"
)

const x = model.NoValue

// assertCovers checks that every combination of strength parameters the
// checker accepts appears in some row.
func assertCovers(t *testing.T, rows []model.Combination, sizes []int, parameters []int, strength int, c checker.ConstraintChecker) {
	t.Helper()
	for _, subset := range subsets(parameters, strength) {
		values := make([]int, len(subset))
		var walk func(i int)
		walk = func(i int) {
			if i == len(subset) {
				if !c.IsDualValid(subset, values) {
					return
				}
				want := model.CombinationOf(len(sizes), subset, values)
				for _, row := range rows {
					if row.Contains(want) {
						return
					}
				}
				t.Errorf("combination %s is not covered", want)
				return
			}
			for v := 0; v < sizes[subset[i]]; v++ {
				values[i] = v
				walk(i + 1)
			}
		}
		walk(0)
	}
}

func generate(t *testing.T, sizes []int, c checker.ConstraintChecker, options ...Option) *Result {
	t.Helper()
	g, err := New(sizes, c, options...)
	require.NoError(t, err)
	result, err := g.Generate(context.Background())
	require.NoError(t, err)
	for _, row := range result.Combinations {
		require.True(t, row.IsFullyAssigned(), "row %s", row)
		require.True(t, c.IsValid(row), "row %s", row)
	}
	return result
}

func TestFullStrengthIsCartesianProduct(t *testing.T) {
	sizes := []int{2, 3, 2}
	result := generate(t, sizes, checker.NoConstraintChecker{}, WithStrength(3))

	seen := make(map[string]struct{})
	for _, row := range result.Combinations {
		seen[row.Key()] = struct{}{}
	}
	assert.Len(t, result.Combinations, 12)
	assert.Len(t, seen, 12)
}

func TestPairwiseCoverage(t *testing.T) {
	for _, tt := range []struct {
		Name  string
		Sizes []int
	}{
		{Name: "uniform", Sizes: []int{3, 3, 3, 3}},
		{Name: "mixed", Sizes: []int{2, 4, 3, 2, 5}},
		{Name: "two parameters", Sizes: []int{3, 2}},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			result := generate(t, tt.Sizes, checker.NoConstraintChecker{}, WithStrength(2))
			assertCovers(t, result.Combinations, tt.Sizes, allParameters(tt.Sizes), 2, checker.NoConstraintChecker{})
		})
	}
}

func TestConstrainedCoverage(t *testing.T) {
	m, err := model.NewModel([]int{3, 3, 2, 2},
		model.WithExclusionSpecs(
			model.TupleSpec{ID: 1, InvolvedParameters: []int{0, 1}, Tuples: [][]int{{0, 0}, {1, 2}}},
			model.TupleSpec{ID: 2, InvolvedParameters: []int{2, 3}, Tuples: [][]int{{1, 1}}},
		),
	)
	require.NoError(t, err)

	for _, f := range []checker.Factory{checker.HardConstraintCheckerFactory{}, checker.MinimalForbiddenTuplesCheckerFactory{}} {
		c, err := f.CreateChecker(m)
		require.NoError(t, err)
		result := generate(t, m.ParameterSizes(), c, WithStrength(2))
		assertCovers(t, result.Combinations, m.ParameterSizes(), allParameters(m.ParameterSizes()), 2, c)
		for _, row := range result.Combinations {
			for _, spec := range m.ExclusionSpecs() {
				assert.False(t, spec.Matches(row), "%T produced %s", f, row)
			}
		}
	}
}

func TestSeedsArePreserved(t *testing.T) {
	sizes := []int{3, 3, 3, 3}
	seeds := []model.Seed{
		{Combination: model.Combination{0, x, 1, x}, Priority: 1},
		{Combination: model.Combination{x, 2, x, 0}},
		{Combination: model.Combination{2, 2, 2, 2}, Mode: model.Exclusive},
		{Combination: model.Combination{2, x, x, x}, Mode: model.Exclusive},
	}
	result := generate(t, sizes, checker.NoConstraintChecker{}, WithSeeds(seeds...))
	assert.Empty(t, result.DroppedSeeds)
	for _, seed := range seeds {
		found := false
		for _, row := range result.Combinations {
			if row.Contains(seed.Combination) {
				found = true
				break
			}
		}
		assert.True(t, found, "seed %s", seed.Combination)
	}
	assertCovers(t, result.Combinations, sizes, allParameters(sizes), 2, checker.NoConstraintChecker{})
}

func TestInsertSeeds(t *testing.T) {
	m, err := model.NewModel([]int{3, 3},
		model.WithExclusionSpecs(model.TupleSpec{ID: 1, InvolvedParameters: []int{0}, Tuples: [][]int{{2}}}),
	)
	require.NoError(t, err)
	c, err := checker.NewHardConstraintChecker(m, 0)
	require.NoError(t, err)

	invalid := model.Seed{Combination: model.Combination{2, 0}}
	rows, dropped := insertSeeds([]model.Seed{
		{Combination: model.Combination{0, x}},
		{Combination: model.Combination{x, 1}, Priority: 2},
		invalid,
		{Combination: model.Combination{1, x}, Mode: model.Exclusive},
		{Combination: model.Combination{x, 2}, Mode: model.Exclusive},
	}, c)

	assert.Equal(t, []model.Seed{invalid}, dropped)
	if diff := cmp.Diff([]model.Combination{
		{0, 1},
		{1, x},
		{x, 2},
	}, rows); diff != "" {
		t.Errorf("unexpected rows (-want +got):\n%s", diff)
	}

	rows, _ = insertSeeds([]model.Seed{
		{Combination: model.Combination{1, x}, Mode: model.Exclusive},
		{Combination: model.Combination{x, 2}, Mode: model.Exclusive},
	}, c)
	assert.Len(t, rows, 2, "exclusive seeds never share a row")
}

func TestStrengthGroupsAreCovered(t *testing.T) {
	sizes := []int{2, 2, 2, 2}
	group := model.StrengthGroup{Parameters: []int{0, 1, 2}, Strength: 3}
	result := generate(t, sizes, checker.NoConstraintChecker{},
		WithStrength(1),
		WithParameterCombinationFactory(TWiseParameterCombinationFactory{Groups: []model.StrengthGroup{group}}),
	)
	assertCovers(t, result.Combinations, sizes, group.Parameters, 3, checker.NoConstraintChecker{})
	assertCovers(t, result.Combinations, sizes, allParameters(sizes), 1, checker.NoConstraintChecker{})
}

func TestDegenerateSuites(t *testing.T) {
	result := generate(t, []int{2, 3, 2}, checker.NoConstraintChecker{}, WithStrength(0))
	assert.Equal(t, []model.Combination{{0, 0, 0}}, result.Combinations)

	m, err := model.NewModel([]int{2, 2},
		model.WithExclusionSpecs(model.TupleSpec{ID: 1, InvolvedParameters: []int{1}, Tuples: [][]int{{0}, {1}}}),
	)
	require.NoError(t, err)
	c, err := checker.NewHardConstraintChecker(m, 0)
	require.NoError(t, err)
	result = generate(t, m.ParameterSizes(), c, WithSeeds(model.Seed{Combination: model.Combination{0, x}}))
	assert.Empty(t, result.Combinations)
	assert.Len(t, result.DroppedSeeds, 1)

	m, err = model.NewModel([]int{2, 2, 2},
		model.WithExclusionSpecs(model.TupleSpec{ID: 1, InvolvedParameters: []int{1}, Tuples: [][]int{{1}}}),
		model.WithErrorSpecs(model.TupleSpec{ID: 2, InvolvedParameters: []int{1}, Tuples: [][]int{{0}}}),
	)
	require.NoError(t, err)
	for _, f := range []checker.Factory{
		checker.HardConstraintCheckerFactory{},
		checker.MinimalForbiddenTuplesCheckerFactory{},
	} {
		c, err := f.CreateChecker(m)
		require.NoError(t, err)
		result = generate(t, m.ParameterSizes(), c, WithSeeds(model.Seed{Combination: model.Combination{0, 0, 0}}))
		assert.Empty(t, result.Combinations, "%T", f)
		assert.Len(t, result.DroppedSeeds, 1, "%T", f)
	}
}

func TestGenerateHonoursContext(t *testing.T) {
	g, err := New([]int{2, 2, 2}, checker.NoConstraintChecker{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvalidConfig(t *testing.T) {
	for _, options := range [][]Option{
		{WithStrength(-1)},
		{WithStrength(4)},
		{WithParameterOrder(nil)},
		{WithLogger(nil)},
		{WithSeeds(model.Seed{Combination: model.Combination{0}})},
	} {
		_, err := New([]int{2, 2, 2}, checker.NoConstraintChecker{}, options...)
		assert.Error(t, err)
	}
}

func TestParameterOrders(t *testing.T) {
	sizes := []int{2, 4, 3}
	assert.Equal(t, []int{1, 2}, StrengthBasedParameterOrder{}.InitialParameters(sizes, 2))
	assert.Equal(t, []int{0}, StrengthBasedParameterOrder{}.RemainingParameters(sizes, 2))
	assert.Empty(t, StrengthBasedParameterOrder{}.InitialParameters(sizes, 0))
	assert.Equal(t, []int{1, 2, 0}, StrengthBasedParameterOrder{}.InitialParameters(sizes, 5))

	negative := NegativeStrengthBasedParameterOrder{Fixed: []int{2, 0}}
	sizes = []int{2, 4, 3, 5}
	assert.Equal(t, []int{2, 0}, negative.InitialParameters(sizes, 1))
	assert.Equal(t, []int{3, 1}, negative.RemainingParameters(sizes, 1))
}

func TestParameterCombinationFactories(t *testing.T) {
	twise := TWiseParameterCombinationFactory{}
	assert.Equal(t, [][]int{{0}, {1}, {2}}, twise.Combinations([]int{0, 1, 2}, 3, 2))
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {1, 2}}, twise.Combinations([]int{0, 1, 2}, 3, 3))
	assert.Empty(t, twise.Combinations([]int{0, 1}, 2, 0))

	grouped := TWiseParameterCombinationFactory{Groups: []model.StrengthGroup{
		{Parameters: []int{0, 1, 3}, Strength: 3},
		{Parameters: []int{2, 3}, Strength: 2},
	}}
	assert.Equal(t, [][]int{{0}, {1}, {2}, {0, 1}}, grouped.Combinations([]int{0, 1, 2}, 3, 2))
	assert.Equal(t, [][]int{{}}, grouped.Combinations([]int{0}, 1, 1), "group needs two processed members")

	negative := NegativeTWiseParameterCombinationFactory{Fixed: []int{0, 1}}
	assert.Equal(t, [][]int{{0, 1, 2}, {0, 1, 3}}, negative.Combinations([]int{0, 1, 2, 3}, 4, 2))
	assert.Equal(t, [][]int{{0, 1}}, negative.Combinations([]int{0, 1, 2}, 3, 1))
	assert.Nil(t, negative.Combinations([]int{0, 1, 2}, 3, 0))
}

func TestCoverageMap(t *testing.T) {
	m, err := model.NewModel([]int{2, 3},
		model.WithExclusionSpecs(model.TupleSpec{ID: 1, InvolvedParameters: []int{0, 1}, Tuples: [][]int{{1, 2}}}),
	)
	require.NoError(t, err)
	c, err := checker.NewHardConstraintChecker(m, 0)
	require.NoError(t, err)

	coverage := NewCoverageMap([][]int{{0}}, 1, m.ParameterSizes(), c)
	assert.Equal(t, 5, coverage.Uncovered())
	assert.Equal(t, []int{1, 1, 1}, coverage.Gains(model.Combination{0, x}))
	assert.Equal(t, []int{1, 1, 0}, coverage.Gains(model.Combination{1, x}))
	assert.Equal(t, []int{0, 0, 0}, coverage.Gains(model.Combination{x, x}))

	coverage.MarkAsCovered(model.Combination{0, 1})
	coverage.MarkAsCovered(model.Combination{0, x})
	assert.Equal(t, 4, coverage.Uncovered())
	assert.Equal(t, []int{1, 0, 1}, coverage.Gains(model.Combination{0, x}))

	next, ok := coverage.UncoveredCombination()
	require.True(t, ok)
	assert.Equal(t, model.Combination{0, 0}, next)

	for coverage.MayHaveUncoveredCombinations() {
		next, ok := coverage.UncoveredCombination()
		require.True(t, ok)
		coverage.MarkAsCovered(next)
	}
	_, ok = coverage.UncoveredCombination()
	assert.False(t, ok)
}
