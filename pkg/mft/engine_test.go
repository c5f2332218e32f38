package mft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/combinatorics/pkg/model"
)

const x = model.NoValue

func TestFixpointGeneralizesCoveredParameter(t *testing.T) {
	m, err := model.NewModel([]int{3, 3, 3, 3},
		model.WithExclusionSpecs(
			model.TupleSpec{ID: 1, InvolvedParameters: []int{0, 1}, Tuples: [][]int{{0, 0}, {0, 2}}},
			model.TupleSpec{ID: 2, InvolvedParameters: []int{0, 3}, Tuples: [][]int{{0, 0}, {1, 0}, {2, 0}}},
		),
	)
	require.NoError(t, err)

	e := New(m.ParameterSizes(), ForbiddenTuples(m))
	assert.Equal(t, []model.Combination{
		{x, x, x, 0},
		{0, 0, x, x},
		{0, 2, x, x},
	}, e.Tuples())

	assert.False(t, e.IsValid(model.Combination{0, 0, 1, 1}))
	assert.False(t, e.IsValid(model.Combination{0, 0, x, x}))
	assert.False(t, e.IsValid(model.Combination{2, 1, 1, 0}))
	assert.True(t, e.IsValid(model.Combination{1, 0, 1, 1}))
	assert.True(t, e.IsValid(model.Combination{1, 0, 1, x}))
}

func TestSimplifyRemovesSubsumedTuples(t *testing.T) {
	e := New([]int{2, 2, 2}, []model.Combination{
		{0, 1, x},
		{0, 1, 1},
		{0, x, x},
	})
	assert.Equal(t, []model.Combination{{0, x, x}}, e.Tuples())
}

func TestGeneralizationChainsAcrossParameters(t *testing.T) {
	// 1=1 is forbidden for every value of parameter 0; together with
	// 1=0,2=0 that forbids 2=0 for every value of parameter 1.
	e := New([]int{2, 2, 2}, []model.Combination{
		{0, 1, x},
		{1, 1, x},
		{x, 0, 0},
	})
	assert.Equal(t, []model.Combination{
		{x, x, 0},
		{x, 1, x},
	}, e.Tuples())

	e.AddConstraint(model.Combination{x, 0, 1})
	assert.Equal(t, []model.Combination{{x, x, x}}, e.Tuples())
	assert.False(t, e.IsValid(model.Combination{0, 0, 0}))
	assert.False(t, e.IsValid(model.NewCombination(3)))
}

func TestIsValidIsPure(t *testing.T) {
	e := New([]int{2, 2}, []model.Combination{{1, 1}})
	for _, c := range []model.Combination{{0, 0}, {1, 1}, {1, x}} {
		first := e.IsValid(c)
		assert.Equal(t, first, e.IsValid(c))
	}
	assert.Equal(t, 1, e.Len())
}

func TestNegatedForbiddenTuples(t *testing.T) {
	m, err := model.NewModel([]int{2, 2, 2},
		model.WithErrorSpecs(
			model.TupleSpec{ID: 1, InvolvedParameters: []int{0, 1}, Tuples: [][]int{{0, 0}, {1, 1}}},
			model.TupleSpec{ID: 2, InvolvedParameters: []int{0}, Tuples: [][]int{{0}}},
		),
	)
	require.NoError(t, err)

	tuples, err := NegatedForbiddenTuples(m, 1, General)
	require.NoError(t, err)
	general := New(m.ParameterSizes(), tuples)
	assert.True(t, general.IsValid(model.Combination{1, 1, 0}))
	assert.False(t, general.IsValid(model.Combination{0, 0, 0}), "spec 2 still forbids 0=0")
	assert.False(t, general.IsValid(model.Combination{1, 0, 0}))

	tuples, err = NegatedForbiddenTuples(m, 1, Existential)
	require.NoError(t, err)
	existential := New(m.ParameterSizes(), tuples)
	assert.True(t, existential.IsValid(model.Combination{1, 1, 1}))
	assert.False(t, existential.IsValid(model.Combination{0, 1, 1}))

	_, err = NegatedForbiddenTuples(m, 3, General)
	assert.Equal(t, model.ErrUnknownSpec(3), err)
}
