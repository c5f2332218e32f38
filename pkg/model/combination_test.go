package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombinationContains(t *testing.T) {
	for _, tt := range []struct {
		Name     string
		Outer    Combination
		Inner    Combination
		Expected bool
	}{
		{Name: "empty inner", Outer: Combination{0, 1}, Inner: NewCombination(2), Expected: true},
		{Name: "match", Outer: Combination{0, 1, 2}, Inner: Combination{0, NoValue, 2}, Expected: true},
		{Name: "mismatch", Outer: Combination{0, 1, 2}, Inner: Combination{1, NoValue, NoValue}, Expected: false},
		{Name: "inner sets unassigned", Outer: Combination{0, NoValue}, Inner: Combination{0, 1}, Expected: false},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.Expected, tt.Outer.Contains(tt.Inner))
		})
	}
}

func TestCombinationMerge(t *testing.T) {
	a := Combination{0, NoValue, NoValue}
	b := Combination{NoValue, 1, NoValue}
	c := Combination{1, NoValue, 2}

	assert.True(t, a.IsCompatible(b))
	assert.False(t, a.IsCompatible(c))

	a.Merge(b)
	assert.Equal(t, Combination{0, 1, NoValue}, a)
	assert.Equal(t, 2, a.NumberOfSetParameters())
	assert.False(t, a.IsFullyAssigned())
	assert.Equal(t, "[0,1,-]", a.String())
	assert.Equal(t, "0,1,-1", a.Key())
}

func TestCombinationOf(t *testing.T) {
	c := CombinationOf(4, []int{3, 1}, []int{2, 0})
	assert.Equal(t, Combination{NoValue, 0, NoValue, 2}, c)
	assert.True(t, c.Clone().Equal(c))
}
