package diagnosis

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

// QuickXPlain returns a minimal subset S of candidates such that
// background ∪ S is inconsistent. It returns nil when background ∪
// candidates is consistent or when background alone is inconsistent; use
// the oracle on background to tell the two apart.
//
// If the oracle is a CoreOracle the candidates are first narrowed to the
// reported core; minimality of the result is unaffected.
func QuickXPlain(o Oracle, background, candidates []int) []int {
	if len(candidates) == 0 || !o.IsConsistent(background) {
		return nil
	}
	if o.IsConsistent(union(background, candidates)) {
		return nil
	}
	if core, ok := o.(CoreOracle); ok {
		if narrowed := sets.List(sets.New(candidates...).Intersection(sets.New(core.Core()...))); len(narrowed) > 0 {
			candidates = narrowed
		}
	}
	return sets.List(sets.New(quickXPlain(o, background, false, candidates)...))
}

func quickXPlain(o Oracle, background []int, delta bool, candidates []int) []int {
	if delta && !o.IsConsistent(background) {
		return nil
	}
	if len(candidates) == 1 {
		return []int{candidates[0]}
	}
	k := len(candidates) / 2
	c1, c2 := candidates[:k], candidates[k:]
	d2 := quickXPlain(o, union(background, c1), len(c1) > 0, c2)
	d1 := quickXPlain(o, union(background, d2), len(d2) > 0, c1)
	return append(d1, d2...)
}

// FastDiag returns a minimal subset D of candidates such that background ∪
// (candidates \ D) is consistent. It returns nil when background ∪
// candidates is already consistent or when background alone is
// inconsistent.
func FastDiag(o Oracle, background, candidates []int) []int {
	if len(candidates) == 0 || !o.IsConsistent(background) {
		return nil
	}
	all := union(background, candidates)
	if o.IsConsistent(all) {
		return nil
	}
	return sets.List(sets.New(fastDiag(o, false, candidates, all)...))
}

func fastDiag(o Oracle, delta bool, candidates, all []int) []int {
	if delta && o.IsConsistent(all) {
		return nil
	}
	if len(candidates) == 1 {
		return []int{candidates[0]}
	}
	k := len(candidates) / 2
	c1, c2 := candidates[:k], candidates[k:]
	d1 := fastDiag(o, len(c1) > 0, c2, difference(all, c1))
	d2 := fastDiag(o, len(d1) > 0, c1, difference(all, d1))
	return append(d1, d2...)
}

func union(a, b []int) []int {
	return sets.List(sets.New(a...).Insert(b...))
}

func difference(a, b []int) []int {
	return sets.List(sets.New(a...).Difference(sets.New(b...)))
}
