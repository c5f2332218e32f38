package diagnosis

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"
)

// MinimalHittingSets returns every minimal set that intersects each set of
// family. The result is sorted; an empty family is hit by the empty set and
// a family containing an empty set has no hitting set.
func MinimalHittingSets(family [][]int) [][]int {
	current := []sets.Set[int]{sets.New[int]()}
	for _, conflict := range family {
		if len(conflict) == 0 {
			return nil
		}
		var next []sets.Set[int]
		for _, h := range current {
			if h.HasAny(conflict...) {
				next = append(next, h)
				continue
			}
			for _, e := range conflict {
				next = append(next, h.Clone().Insert(e))
			}
		}
		current = minimize(next)
	}
	return sortedLists(current)
}

// IsMinimalHittingSet reports whether h intersects every set of family and
// no proper subset of h does.
func IsMinimalHittingSet(h []int, family [][]int) bool {
	s := sets.New(h...)
	if !hitsAll(s, family) {
		return false
	}
	for _, e := range h {
		if hitsAll(s.Clone().Delete(e), family) {
			return false
		}
	}
	return true
}

func hitsAll(h sets.Set[int], family [][]int) bool {
	for _, conflict := range family {
		if !h.HasAny(conflict...) {
			return false
		}
	}
	return true
}

// minimize drops duplicates and every set that has a proper subset in the
// list.
func minimize(candidates []sets.Set[int]) []sets.Set[int] {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Len() < candidates[j].Len()
	})
	var out []sets.Set[int]
	for _, c := range candidates {
		minimal := true
		for _, kept := range out {
			if c.IsSuperset(kept) {
				minimal = false
				break
			}
		}
		if minimal {
			out = append(out, c)
		}
	}
	return out
}

func sortedLists(in []sets.Set[int]) [][]int {
	out := make([][]int, len(in))
	for i, s := range in {
		out[i] = sets.List(s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return out
}

// ExhaustiveDiagnoses enumerates every minimal diagnosis of background ∪
// candidates. Conflicts are collected with QuickXPlain until every minimal
// hitting set of the collected conflicts restores consistency. The result
// is nil when there is nothing to diagnose or background is inconsistent.
func ExhaustiveDiagnoses(o Oracle, background, candidates []int) [][]int {
	first := QuickXPlain(o, background, candidates)
	if len(first) == 0 {
		return nil
	}
	conflicts := [][]int{first}
	for {
		hittingSets := MinimalHittingSets(conflicts)
		found := false
		for _, h := range hittingSets {
			rest := difference(candidates, h)
			if o.IsConsistent(union(background, rest)) {
				continue
			}
			conflict := QuickXPlain(o, background, rest)
			if len(conflict) == 0 {
				return nil
			}
			conflicts = append(conflicts, conflict)
			found = true
			break
		}
		if !found {
			return hittingSets
		}
	}
}
