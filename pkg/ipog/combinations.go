package ipog

import (
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/operator-framework/combinatorics/pkg/model"
)

// ParameterCombinationFactory returns the subsets of already processed
// parameters whose value combinations must be covered together with each
// value of the next parameter.
type ParameterCombinationFactory interface {
	Combinations(processed []int, next int, strength int) [][]int
}

// TWiseParameterCombinationFactory requires every (strength-1)-subset of
// the processed parameters. Strength groups containing next add the
// (groupStrength-1)-subsets of their processed members.
type TWiseParameterCombinationFactory struct {
	Groups []model.StrengthGroup
}

func (f TWiseParameterCombinationFactory) Combinations(processed []int, next int, strength int) [][]int {
	var out [][]int
	seen := sets.New[string]()
	collect := func(subsets [][]int) {
		for _, s := range subsets {
			if key := subsetKey(s); !seen.Has(key) {
				seen.Insert(key)
				out = append(out, s)
			}
		}
	}

	if strength > 0 {
		collect(subsets(processed, min(strength-1, len(processed))))
	}
	for _, g := range f.Groups {
		members := sets.New(g.Parameters...)
		if !members.Has(next) {
			continue
		}
		var inGroup []int
		for _, p := range processed {
			if members.Has(p) {
				inGroup = append(inGroup, p)
			}
		}
		if g.Strength-1 <= len(inGroup) {
			collect(subsets(inGroup, g.Strength-1))
		}
	}
	return out
}

// NegativeTWiseParameterCombinationFactory requires every combination of
// the fixed parameters joined with each (strength-1)-subset of the other
// processed parameters. Strength 0 requires nothing.
type NegativeTWiseParameterCombinationFactory struct {
	Fixed []int
}

func (f NegativeTWiseParameterCombinationFactory) Combinations(processed []int, next int, strength int) [][]int {
	if strength <= 0 {
		return nil
	}
	fixed := sets.New(f.Fixed...)
	var fixedProcessed, others []int
	for _, p := range processed {
		if fixed.Has(p) {
			fixedProcessed = append(fixedProcessed, p)
		} else {
			others = append(others, p)
		}
	}
	if strength-1 > len(others) {
		return nil
	}
	var out [][]int
	for _, s := range subsets(others, strength-1) {
		out = append(out, append(append([]int(nil), fixedProcessed...), s...))
	}
	return out
}

// subsets returns every k-subset of items in lexicographic order of
// positions.
func subsets(items []int, k int) [][]int {
	if k < 0 || k > len(items) {
		return nil
	}
	var out [][]int
	current := make([]int, 0, k)
	var walk func(start int)
	walk = func(start int) {
		if len(current) == k {
			out = append(out, append(make([]int, 0, k), current...))
			return
		}
		for i := start; i <= len(items)-(k-len(current)); i++ {
			current = append(current, items[i])
			walk(i + 1)
			current = current[:len(current)-1]
		}
	}
	walk(0)
	return out
}

func subsetKey(s []int) string {
	parts := make([]string, len(s))
	sorted := sets.List(sets.New(s...))
	for i, p := range sorted {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}
