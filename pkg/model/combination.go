package model

import (
	"strconv"
	"strings"
)

// NoValue marks a parameter of a Combination that has not been assigned.
const NoValue = -1

// Combination assigns a value index to every parameter of a model. Cells
// holding NoValue are unassigned.
type Combination []int

// NewCombination returns a Combination of the given length with every
// parameter unassigned.
func NewCombination(length int) Combination {
	c := make(Combination, length)
	for i := range c {
		c[i] = NoValue
	}
	return c
}

// CombinationOf returns a full-length Combination which assigns values[i] to
// parameters[i] and leaves everything else unassigned.
func CombinationOf(length int, parameters, values []int) Combination {
	c := NewCombination(length)
	for i, p := range parameters {
		c[p] = values[i]
	}
	return c
}

// Clone returns a copy of the receiver.
func (c Combination) Clone() Combination {
	if c == nil {
		return nil
	}
	out := make(Combination, len(c))
	copy(out, c)
	return out
}

// Contains reports whether every assigned parameter of sub is assigned to
// the same value in the receiver.
func (c Combination) Contains(sub Combination) bool {
	for i, v := range sub {
		if v == NoValue {
			continue
		}
		if i >= len(c) || c[i] != v {
			return false
		}
	}
	return true
}

// IsCompatible reports whether the receiver and other agree on every
// parameter assigned in both.
func (c Combination) IsCompatible(other Combination) bool {
	for i := 0; i < len(c) && i < len(other); i++ {
		if c[i] != NoValue && other[i] != NoValue && c[i] != other[i] {
			return false
		}
	}
	return true
}

// Merge assigns every parameter that is assigned in other but unassigned in
// the receiver. Callers are expected to check IsCompatible first.
func (c Combination) Merge(other Combination) {
	for i, v := range other {
		if v != NoValue && c[i] == NoValue {
			c[i] = v
		}
	}
}

// IsFullyAssigned reports whether no parameter is unassigned.
func (c Combination) IsFullyAssigned() bool {
	for _, v := range c {
		if v == NoValue {
			return false
		}
	}
	return true
}

// NumberOfSetParameters returns the number of assigned parameters.
func (c Combination) NumberOfSetParameters() int {
	n := 0
	for _, v := range c {
		if v != NoValue {
			n++
		}
	}
	return n
}

// Equal reports whether both combinations have identical cells.
func (c Combination) Equal(other Combination) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Key returns a compact string usable as a map key.
func (c Combination) Key() string {
	var b strings.Builder
	for i, v := range c {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// String renders the combination as e.g. [0,1,-].
func (c Combination) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range c {
		if i > 0 {
			b.WriteByte(',')
		}
		if v == NoValue {
			b.WriteByte('-')
			continue
		}
		b.WriteString(strconv.Itoa(v))
	}
	b.WriteByte(']')
	return b.String()
}
