// Package mft maintains minimal forbidden-tuple tables: sets of partial
// combinations such that a full combination is invalid iff it contains at
// least one table entry. The table is closed under generalization of fully
// covered parameters and kept free of subsumed entries, which makes it
// possible to check constraints without a solver.
package mft

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/operator-framework/combinatorics/pkg/model"
)

type parameterValue struct {
	parameter int
	value     int
}

// Engine owns a minimal forbidden-tuple table. It is not safe for
// concurrent use.
type Engine struct {
	sizes  []int
	tuples map[string]model.Combination

	valueToTuples     map[parameterValue]sets.Set[string]
	paramToUsedValues []map[int]int
}

// New returns an Engine over the given domain sizes whose table is the
// fixpoint of the given forbidden tuples.
func New(sizes []int, forbidden []model.Combination) *Engine {
	e := &Engine{
		sizes:             append([]int(nil), sizes...),
		tuples:            make(map[string]model.Combination),
		valueToTuples:     make(map[parameterValue]sets.Set[string]),
		paramToUsedValues: make([]map[int]int, len(sizes)),
	}
	for p := range e.paramToUsedValues {
		e.paramToUsedValues[p] = make(map[int]int)
	}
	for _, t := range forbidden {
		e.add(t.Clone())
	}
	e.fixpoint()
	return e
}

// IsValid reports whether no table entry is contained in c.
func (e *Engine) IsValid(c model.Combination) bool {
	for _, t := range e.tuples {
		if c.Contains(t) {
			return false
		}
	}
	return true
}

// AddConstraint forbids the given (partial) combination and restores the
// fixpoint.
func (e *Engine) AddConstraint(forbidden model.Combination) {
	if e.add(forbidden.Clone()) {
		e.fixpoint()
	}
}

// Tuples returns a sorted snapshot of the table.
func (e *Engine) Tuples() []model.Combination {
	out := make([]model.Combination, 0, len(e.tuples))
	for _, key := range e.sortedKeys() {
		out = append(out, e.tuples[key].Clone())
	}
	return out
}

// Len returns the number of table entries.
func (e *Engine) Len() int {
	return len(e.tuples)
}

func (e *Engine) sortedKeys() []string {
	keys := make([]string, 0, len(e.tuples))
	for key := range e.tuples {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return less(e.tuples[keys[i]], e.tuples[keys[j]])
	})
	return keys
}

func less(a, b model.Combination) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// isSubsumed reports whether some entry of the table other than t itself is
// contained in t.
func (e *Engine) isSubsumed(t model.Combination) bool {
	key := t.Key()
	for other, u := range e.tuples {
		if other != key && t.Contains(u) {
			return true
		}
	}
	return false
}

// add inserts t unless an equal or more general entry exists.
func (e *Engine) add(t model.Combination) bool {
	key := t.Key()
	if _, ok := e.tuples[key]; ok {
		return false
	}
	if e.isSubsumed(t) {
		return false
	}
	e.tuples[key] = t
	for p, v := range t {
		if v == model.NoValue {
			continue
		}
		pv := parameterValue{parameter: p, value: v}
		if e.valueToTuples[pv] == nil {
			e.valueToTuples[pv] = sets.New[string]()
		}
		e.valueToTuples[pv].Insert(key)
		e.paramToUsedValues[p][v]++
	}
	return true
}

func (e *Engine) remove(key string) {
	t, ok := e.tuples[key]
	if !ok {
		return
	}
	delete(e.tuples, key)
	for p, v := range t {
		if v == model.NoValue {
			continue
		}
		pv := parameterValue{parameter: p, value: v}
		e.valueToTuples[pv].Delete(key)
		if e.valueToTuples[pv].Len() == 0 {
			delete(e.valueToTuples, pv)
		}
		if e.paramToUsedValues[p][v]--; e.paramToUsedValues[p][v] == 0 {
			delete(e.paramToUsedValues[p], v)
		}
	}
}

func (e *Engine) fixpoint() {
	for {
		added := e.generalize()
		removed := e.simplify()
		if !added && !removed {
			return
		}
	}
}

// generalize derives new entries for every parameter whose whole domain is
// used by the table: if each value of p is forbidden together with some
// rest, then the merge of one rest per value is forbidden regardless of p.
func (e *Engine) generalize() bool {
	added := false
	for p, size := range e.sizes {
		if len(e.paramToUsedValues[p]) < size {
			continue
		}
		groups := make([][]model.Combination, size)
		for v := 0; v < size; v++ {
			keys := sets.List(e.valueToTuples[parameterValue{parameter: p, value: v}])
			for _, key := range keys {
				stripped := e.tuples[key].Clone()
				stripped[p] = model.NoValue
				groups[v] = append(groups[v], stripped)
			}
		}

		var candidates []model.Combination
		seen := sets.New[string]()
		e.combine(groups, 0, model.NewCombination(len(e.sizes)), func(c model.Combination) {
			if key := c.Key(); !seen.Has(key) {
				seen.Insert(key)
				candidates = append(candidates, c.Clone())
			}
		})
		for _, c := range candidates {
			if e.add(c) {
				added = true
			}
		}
	}
	return added
}

// combine enumerates merges of one entry per group. Branches whose partial
// merge is already forbidden by the table are pruned, since every further
// merge would be more specific.
func (e *Engine) combine(groups [][]model.Combination, index int, current model.Combination, emit func(model.Combination)) {
	if e.containsEntry(current) {
		return
	}
	if index == len(groups) {
		emit(current)
		return
	}
	for _, t := range groups[index] {
		if !current.IsCompatible(t) {
			continue
		}
		next := current.Clone()
		next.Merge(t)
		e.combine(groups, index+1, next, emit)
	}
}

func (e *Engine) containsEntry(c model.Combination) bool {
	for _, t := range e.tuples {
		if c.Contains(t) {
			return true
		}
	}
	return false
}

// simplify removes every entry that contains a more general entry.
func (e *Engine) simplify() bool {
	removed := false
	for _, key := range e.sortedKeys() {
		t, ok := e.tuples[key]
		if !ok {
			continue
		}
		if e.isSubsumedIndexed(key, t) {
			e.remove(key)
			removed = true
		}
	}
	return removed
}

// isSubsumedIndexed is isSubsumed restricted to entries sharing at least
// one (parameter, value) pair with t, plus the empty entry.
func (e *Engine) isSubsumedIndexed(key string, t model.Combination) bool {
	empty := model.NewCombination(len(e.sizes)).Key()
	if _, ok := e.tuples[empty]; ok && key != empty {
		return true
	}
	for p, v := range t {
		if v == model.NoValue {
			continue
		}
		for other := range e.valueToTuples[parameterValue{parameter: p, value: v}] {
			if other != key && t.Contains(e.tuples[other]) {
				return true
			}
		}
	}
	return false
}
