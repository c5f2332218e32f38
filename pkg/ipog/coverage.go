package ipog

import (
	"github.com/operator-framework/combinatorics/pkg/checker"
	"github.com/operator-framework/combinatorics/pkg/model"
)

// combinationTable tracks one parameter subset joined with the next
// parameter. Value combinations are indexed in mixed radix with the next
// parameter as the least significant digit.
type combinationTable struct {
	parameters []int
	sizes      []int
	strides    []int
	covered    []bool
	cursor     int
}

func newCombinationTable(subset []int, next int, sizes []int) *combinationTable {
	parameters := append(append([]int(nil), subset...), next)
	t := &combinationTable{
		parameters: parameters,
		sizes:      make([]int, len(parameters)),
		strides:    make([]int, len(parameters)),
	}
	total := 1
	for i := len(parameters) - 1; i >= 0; i-- {
		t.sizes[i] = sizes[parameters[i]]
		t.strides[i] = total
		total *= t.sizes[i]
	}
	t.covered = make([]bool, total)
	return t
}

func (t *combinationTable) values(index int) []int {
	out := make([]int, len(t.parameters))
	for i := range t.parameters {
		out[i] = (index / t.strides[i]) % t.sizes[i]
	}
	return out
}

// base returns the index of c's values on every parameter but the last,
// or false if one of them is unset.
func (t *combinationTable) base(c model.Combination) (int, bool) {
	index := 0
	for i, p := range t.parameters[:len(t.parameters)-1] {
		if c[p] == model.NoValue {
			return 0, false
		}
		index += c[p] * t.strides[i]
	}
	return index, true
}

// CoverageMap records which required value combinations involving the next
// parameter are still uncovered. Combinations the checker rejects are never
// required.
type CoverageMap struct {
	next               int
	nextSize           int
	numberOfParameters int
	tables             []*combinationTable
	uncovered          int
}

// NewCoverageMap returns a CoverageMap for the given parameter subsets,
// each joined with next.
func NewCoverageMap(subsets [][]int, next int, sizes []int, c checker.ConstraintChecker) *CoverageMap {
	m := &CoverageMap{next: next, nextSize: sizes[next], numberOfParameters: len(sizes)}
	for _, subset := range subsets {
		t := newCombinationTable(subset, next, sizes)
		for index := range t.covered {
			if c.IsDualValid(t.parameters, t.values(index)) {
				m.uncovered++
			} else {
				t.covered[index] = true
			}
		}
		m.tables = append(m.tables, t)
	}
	return m
}

// MayHaveUncoveredCombinations reports whether some required combination
// is still uncovered.
func (m *CoverageMap) MayHaveUncoveredCombinations() bool {
	return m.uncovered > 0
}

// Uncovered returns the number of uncovered required combinations.
func (m *CoverageMap) Uncovered() int {
	return m.uncovered
}

// MarkAsCovered marks every tracked combination contained in c as covered.
func (m *CoverageMap) MarkAsCovered(c model.Combination) {
	if c[m.next] == model.NoValue {
		return
	}
	for _, t := range m.tables {
		base, ok := t.base(c)
		if !ok {
			continue
		}
		if index := base + c[m.next]; !t.covered[index] {
			t.covered[index] = true
			m.uncovered--
		}
	}
}

// Gains returns, for each value of the next parameter, how many uncovered
// combinations c would cover if extended with that value.
func (m *CoverageMap) Gains(c model.Combination) []int {
	gains := make([]int, m.nextSize)
	for _, t := range m.tables {
		base, ok := t.base(c)
		if !ok {
			continue
		}
		for v := range gains {
			if !t.covered[base+v] {
				gains[v]++
			}
		}
	}
	return gains
}

// UncoveredCombination returns an uncovered required combination as a
// full-length partial combination.
func (m *CoverageMap) UncoveredCombination() (model.Combination, bool) {
	for _, t := range m.tables {
		for ; t.cursor < len(t.covered); t.cursor++ {
			if t.covered[t.cursor] {
				continue
			}
			return model.CombinationOf(m.numberOfParameters, t.parameters, t.values(t.cursor)), true
		}
	}
	return nil, false
}
