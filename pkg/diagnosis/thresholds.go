package diagnosis

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"
)

// ParameterValue is a single assignment of a value to a parameter.
type ParameterValue struct {
	Parameter int `json:"parameter"`
	Value     int `json:"value"`
}

// ComputeThresholds returns, for every (parameter, value) pair of a missing
// row with diagnoses, the largest diagnosis size among all missing rows
// containing that pair. Pairs of rows without diagnoses map to 0, as do
// pairs absent from the result.
func ComputeThresholds(missing []MissingInvalidTuple) map[ParameterValue]int {
	out := make(map[ParameterValue]int)
	for _, t := range missing {
		size := 0
		if d, ok := t.Explanation.(DiagnosisSets); ok {
			for _, set := range d.Sets {
				size = max(size, len(set))
			}
		}
		for i, p := range t.InvolvedParameters {
			pv := ParameterValue{Parameter: p, Value: t.MissingValues[i]}
			out[pv] = max(out[pv], size)
		}
	}
	return out
}

// BuildDiagnosisHittingSets combines the diagnoses of missing tuples of
// several negated specs into model-level minimal hitting sets of spec ids.
// Each missing row contributes its diagnoses plus the alternative of
// relaxing its own negated spec; the result lists every minimal way of
// picking one alternative per row.
func BuildDiagnosisHittingSets(missing []MissingInvalidTuple) [][]int {
	current := []sets.Set[int]{sets.New[int]()}
	for _, t := range missing {
		alternatives := []sets.Set[int]{sets.New(t.NegatedConstraintID)}
		if d, ok := t.Explanation.(DiagnosisSets); ok {
			for _, set := range d.Sets {
				ids := sets.New[int]()
				for _, e := range set {
					ids.Insert(e.ConstraintID)
				}
				alternatives = append(alternatives, ids)
			}
		}

		var next []sets.Set[int]
		for _, acc := range current {
			for _, alternative := range alternatives {
				next = append(next, acc.Union(alternative))
			}
		}
		current = minimize(next)
	}
	if len(missing) == 0 {
		return nil
	}
	return sortedLists(current)
}

// SortedParameterValues returns the keys of thresholds in parameter, value
// order.
func SortedParameterValues(thresholds map[ParameterValue]int) []ParameterValue {
	out := make([]ParameterValue, 0, len(thresholds))
	for pv := range thresholds {
		out = append(out, pv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Parameter != out[j].Parameter {
			return out[i].Parameter < out[j].Parameter
		}
		return out[i].Value < out[j].Value
	})
	return out
}
