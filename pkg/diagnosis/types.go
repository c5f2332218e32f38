// Package diagnosis explains why negating an error spec leaves some of its
// forbidden rows unreachable. For every such row it computes minimal
// conflict sets (QuickXPlain) and minimal diagnoses (FastDiag or an
// exhaustive hitting-set search) over the remaining error specs.
package diagnosis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/operator-framework/combinatorics/pkg/model"
)

// ConflictElement identifies a spec taking part in a conflict together with
// the values that implicate it. ConflictingValues holds one entry per
// involved parameter; parameters not fixed by the missing row are
// model.NoValue.
type ConflictElement struct {
	ConstraintID       int   `json:"constraintId"`
	InvolvedParameters []int `json:"parameters"`
	ConflictingValues  []int `json:"values"`
}

func (e ConflictElement) String() string {
	return fmt.Sprintf("%d%v=%v", e.ConstraintID, e.InvolvedParameters, e.ConflictingValues)
}

// DiagnosisElement identifies a spec whose relaxation is part of a
// diagnosis.
type DiagnosisElement struct {
	ConstraintID       int   `json:"constraintId"`
	InvolvedParameters []int `json:"parameters"`
	ConflictingValues  []int `json:"values"`
}

func (e DiagnosisElement) String() string {
	return ConflictElement(e).String()
}

// Explanation is attached to a MissingInvalidTuple. It is one of
// ConflictSet, DiagnosisSets, InconsistentBackground or UnknownExplanation.
type Explanation interface {
	fmt.Stringer
	isExplanation()
}

// ConflictSet is a minimal set of specs that cannot hold together with the
// missing row.
type ConflictSet struct {
	Elements []ConflictElement
}

// DiagnosisSets lists minimal diagnoses: sets of specs whose removal makes
// the missing row reachable.
type DiagnosisSets struct {
	Sets [][]DiagnosisElement
}

// InconsistentBackground reports that the missing row is unreachable even
// when every relaxable spec is removed.
type InconsistentBackground struct{}

// UnknownExplanation is used when no explanation was computed or none could
// be found.
type UnknownExplanation struct{}

func (ConflictSet) isExplanation()            {}
func (DiagnosisSets) isExplanation()          {}
func (InconsistentBackground) isExplanation() {}
func (UnknownExplanation) isExplanation()     {}

func (c ConflictSet) String() string {
	parts := make([]string, len(c.Elements))
	for i, e := range c.Elements {
		parts[i] = e.String()
	}
	return "conflict{" + strings.Join(parts, ", ") + "}"
}

func (d DiagnosisSets) String() string {
	sets := make([]string, len(d.Sets))
	for i, set := range d.Sets {
		parts := make([]string, len(set))
		for j, e := range set {
			parts[j] = e.String()
		}
		sets[i] = "{" + strings.Join(parts, ", ") + "}"
	}
	return "diagnoses[" + strings.Join(sets, " ") + "]"
}

func (InconsistentBackground) String() string { return "inconsistent background" }

func (UnknownExplanation) String() string { return "unknown" }

func (c ConflictSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind     string            `json:"kind"`
		Elements []ConflictElement `json:"elements"`
	}{Kind: ExplanationKind(c), Elements: c.Elements})
}

func (d DiagnosisSets) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string               `json:"kind"`
		Sets [][]DiagnosisElement `json:"sets"`
	}{Kind: ExplanationKind(d), Sets: d.Sets})
}

func (b InconsistentBackground) MarshalJSON() ([]byte, error) {
	return marshalKind(b)
}

func (u UnknownExplanation) MarshalJSON() ([]byte, error) {
	return marshalKind(u)
}

func marshalKind(e Explanation) ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
	}{Kind: ExplanationKind(e)})
}

// MissingInvalidTuple is a forbidden row of a negated error spec that no
// test can reach because the remaining constraints exclude it.
type MissingInvalidTuple struct {
	NegatedConstraintID int         `json:"negatedConstraintId"`
	InvolvedParameters  []int       `json:"parameters"`
	MissingValues       []int       `json:"values"`
	Explanation         Explanation `json:"explanation"`
}

// Combination returns the missing row as a full-length combination.
func (t MissingInvalidTuple) Combination(numberOfParameters int) model.Combination {
	return model.CombinationOf(numberOfParameters, t.InvolvedParameters, t.MissingValues)
}

func (t MissingInvalidTuple) String() string {
	return fmt.Sprintf("spec %d%v=%v: %s", t.NegatedConstraintID, t.InvolvedParameters, t.MissingValues, t.Explanation)
}

// ExplanationKind returns a short name for the kind of e.
func ExplanationKind(e Explanation) string {
	switch e.(type) {
	case ConflictSet:
		return "conflictSet"
	case DiagnosisSets:
		return "diagnosisSets"
	case InconsistentBackground:
		return "inconsistentBackground"
	}
	return "unknown"
}
