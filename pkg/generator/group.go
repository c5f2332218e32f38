package generator

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/operator-framework/combinatorics/pkg/diagnosis"
	"github.com/operator-framework/combinatorics/pkg/model"
)

// PositiveTestsID identifies the group of positive test inputs.
const PositiveTestsID = 0

// TestInputGroup is the suite generated for the positive case or for one
// negated error spec.
type TestInputGroup struct {
	// Identifier is PositiveTestsID or the id of the negated error spec.
	Identifier   int                 `json:"identifier"`
	NegatedSpec  *model.TupleSpec    `json:"negatedSpec,omitempty"`
	Combinations []model.Combination `json:"combinations"`
	DroppedSeeds []model.Seed        `json:"droppedSeeds,omitempty"`
}

// IsPositive reports whether the group holds positive test inputs.
func (g *TestInputGroup) IsPositive() bool {
	return g.Identifier == PositiveTestsID
}

func (g *TestInputGroup) String() string {
	return groupName(g.Identifier)
}

func groupName(identifier int) string {
	if identifier == PositiveTestsID {
		return "positive"
	}
	return fmt.Sprintf("error spec %d", identifier)
}

// GroupSupplier produces a TestInputGroup on demand. Each call runs a fresh
// generation with its own checker.
type GroupSupplier struct {
	Identifier int
	supply     func(ctx context.Context) (*TestInputGroup, error)
}

// Get generates the group.
func (s GroupSupplier) Get(ctx context.Context) (*TestInputGroup, error) {
	return s.supply(ctx)
}

// Evaluate runs the suppliers with at most parallelism generations at a
// time and returns the groups in supplier order.
func Evaluate(ctx context.Context, suppliers []GroupSupplier, parallelism int) ([]*TestInputGroup, error) {
	if parallelism < 1 {
		return nil, errors.Errorf("parallelism must be at least 1, got %d", parallelism)
	}
	groups := make([]*TestInputGroup, len(suppliers))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, s := range suppliers {
		i, s := i, s
		g.Go(func() error {
			group, err := s.Get(ctx)
			if err != nil {
				return errors.Wrapf(err, "generating %s group", groupName(s.Identifier))
			}
			groups[i] = group
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return groups, nil
}

// ConflictsDetectedError is returned when conflict detection found missing
// invalid tuples and generation was configured to abort.
type ConflictsDetectedError struct {
	Missing []diagnosis.MissingInvalidTuple
}

func (e ConflictsDetectedError) Error() string {
	return fmt.Sprintf("%d invalid tuples cannot be tested in isolation", len(e.Missing))
}
