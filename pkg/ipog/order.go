package ipog

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"
)

// ParameterOrder decides which parameters form the initial block whose
// cartesian product seeds the suite, and in which order the remaining
// parameters are added.
type ParameterOrder interface {
	InitialParameters(sizes []int, strength int) []int
	RemainingParameters(sizes []int, strength int) []int
}

// bySize returns the given parameters ordered by decreasing domain size,
// keeping declaration order among equal sizes.
func bySize(sizes []int, parameters []int) []int {
	out := append([]int(nil), parameters...)
	sort.SliceStable(out, func(i, j int) bool {
		return sizes[out[i]] > sizes[out[j]]
	})
	return out
}

func allParameters(sizes []int) []int {
	out := make([]int, len(sizes))
	for i := range out {
		out[i] = i
	}
	return out
}

// StrengthBasedParameterOrder orders parameters by decreasing domain size
// and uses the first strength parameters as the initial block.
type StrengthBasedParameterOrder struct{}

func (StrengthBasedParameterOrder) InitialParameters(sizes []int, strength int) []int {
	ordered := bySize(sizes, allParameters(sizes))
	return ordered[:min(max(strength, 0), len(ordered))]
}

func (StrengthBasedParameterOrder) RemainingParameters(sizes []int, strength int) []int {
	ordered := bySize(sizes, allParameters(sizes))
	return ordered[min(max(strength, 0), len(ordered)):]
}

// NegativeStrengthBasedParameterOrder keeps the parameters of a negated
// spec together as the initial block regardless of strength. The other
// parameters follow by decreasing domain size.
type NegativeStrengthBasedParameterOrder struct {
	Fixed []int
}

func (o NegativeStrengthBasedParameterOrder) InitialParameters([]int, int) []int {
	return append([]int(nil), o.Fixed...)
}

func (o NegativeStrengthBasedParameterOrder) RemainingParameters(sizes []int, _ int) []int {
	fixed := sets.New(o.Fixed...)
	var rest []int
	for _, p := range allParameters(sizes) {
		if !fixed.Has(p) {
			rest = append(rest, p)
		}
	}
	return bySize(sizes, rest)
}
