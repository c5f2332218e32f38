// Package ipog builds constraint-aware covering arrays with the IPOG
// strategy: the suite starts as the cartesian product of an initial block
// of parameters and grows one parameter at a time, first horizontally by
// assigning the new parameter in existing rows and then vertically by
// adding rows for the combinations that are still uncovered.
package ipog

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/operator-framework/combinatorics/pkg/checker"
	"github.com/operator-framework/combinatorics/pkg/model"
)

// Result is the outcome of a generation run.
type Result struct {
	// Combinations holds the fully assigned rows of the suite.
	Combinations []model.Combination
	// DroppedSeeds lists seeds the checker rejected.
	DroppedSeeds []model.Seed
	// DroppedRows counts rows that could not be completed.
	DroppedRows int
}

// Ipog generates covering arrays over fixed domain sizes.
type Ipog struct {
	sizes   []int
	checker checker.ConstraintChecker
	config  *ipogConfig
}

// New returns an Ipog over the given domain sizes. The checker is used by a
// single generation run at a time.
func New(sizes []int, c checker.ConstraintChecker, options ...Option) (*Ipog, error) {
	config := defaultConfig(sizes)
	config.apply(options)
	if err := config.validate(sizes); err != nil {
		return nil, err
	}
	return &Ipog{
		sizes:   append([]int(nil), sizes...),
		checker: c,
		config:  config,
	}, nil
}

// Generate builds the suite. It only fails if ctx is done.
func (g *Ipog) Generate(ctx context.Context) (*Result, error) {
	n := len(g.sizes)
	strength := g.config.strength
	logger := g.config.logger.WithField("strength", strength)

	rows, dropped := insertSeeds(g.config.seeds, g.checker)
	for _, seed := range dropped {
		logger.WithField("seed", seed.Combination.String()).Info("dropping invalid seed")
	}

	initial := g.config.order.InitialParameters(g.sizes, strength)
	rows = g.initialProduct(rows, initial)
	logger.WithFields(logrus.Fields{
		"parameters": initial,
		"rows":       len(rows),
	}).Debug("initialized suite")

	processed := append([]int(nil), initial...)
	for _, next := range g.config.order.RemainingParameters(g.sizes, strength) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		subsets := g.config.combinations.Combinations(processed, next, strength)
		coverage := NewCoverageMap(subsets, next, g.sizes, g.checker)
		for _, row := range rows {
			coverage.MarkAsCovered(row)
		}
		g.extendHorizontally(rows, next, coverage)
		rows = g.extendVertically(rows, coverage)
		processed = append(processed, next)
		logger.WithFields(logrus.Fields{
			"parameter": next,
			"subsets":   len(subsets),
			"rows":      len(rows),
		}).Debug("added parameter")
	}

	result := &Result{DroppedSeeds: dropped}
	for _, row := range rows {
		if g.fill(row) {
			result.Combinations = append(result.Combinations, row)
			continue
		}
		result.DroppedRows++
		logger.WithField("row", row.String()).Warn("dropping row that cannot be completed")
	}
	if n > 0 && len(result.Combinations) == 0 {
		logger.Info("no valid test input")
	}
	return result, nil
}

// initialProduct adds every valid combination of the initial parameters
// that the seeded rows do not already contain.
func (g *Ipog) initialProduct(rows []model.Combination, initial []int) []model.Combination {
	n := len(g.sizes)
	current := model.NewCombination(n)
	var walk func(i int)
	walk = func(i int) {
		if i == len(initial) {
			if !g.checker.IsValid(current) {
				return
			}
			for _, row := range rows {
				if row.Contains(current) {
					return
				}
			}
			rows = g.place(rows, current.Clone())
			return
		}
		p := initial[i]
		for v := 0; v < g.sizes[p]; v++ {
			current[p] = v
			walk(i + 1)
		}
		current[p] = model.NoValue
	}
	walk(0)
	return rows
}

// place merges c into the first compatible row that stays valid, or appends
// it as a new row.
func (g *Ipog) place(rows []model.Combination, c model.Combination) []model.Combination {
	if i, merged, ok := g.findCompatibleRow(rows, c); ok {
		rows[i] = merged
		return rows
	}
	return append(rows, c)
}

func (g *Ipog) findCompatibleRow(rows []model.Combination, c model.Combination) (int, model.Combination, bool) {
	for i, row := range rows {
		if !row.IsCompatible(c) {
			continue
		}
		merged := row.Clone()
		merged.Merge(c)
		if g.checker.IsValid(merged) {
			return i, merged, true
		}
	}
	return 0, nil, false
}

// extendHorizontally assigns next in every row where some value covers an
// uncovered combination, preferring the value covering the most.
func (g *Ipog) extendHorizontally(rows []model.Combination, next int, coverage *CoverageMap) {
	for _, row := range rows {
		if row[next] != model.NoValue || !coverage.MayHaveUncoveredCombinations() {
			continue
		}
		gains := coverage.Gains(row)
		values := make([]int, len(gains))
		for v := range values {
			values[v] = v
		}
		sort.SliceStable(values, func(i, j int) bool {
			return gains[values[i]] > gains[values[j]]
		})
		for _, v := range values {
			if gains[v] == 0 {
				break
			}
			if g.checker.IsExtensionValid(row, next, v) {
				row[next] = v
				coverage.MarkAsCovered(row)
				break
			}
		}
	}
}

// extendVertically places every remaining uncovered combination into an
// existing row or a new one.
func (g *Ipog) extendVertically(rows []model.Combination, coverage *CoverageMap) []model.Combination {
	for coverage.MayHaveUncoveredCombinations() {
		c, ok := coverage.UncoveredCombination()
		if !ok {
			break
		}
		if i, merged, ok := g.findCompatibleRow(rows, c); ok {
			rows[i] = merged
			coverage.MarkAsCovered(merged)
			continue
		}
		if g.checker.IsValid(c) {
			rows = append(rows, c)
		}
		coverage.MarkAsCovered(c)
	}
	return rows
}

// fill assigns every unset parameter of row the first value keeping it
// valid. It reports false if some parameter has no such value.
func (g *Ipog) fill(row model.Combination) bool {
	for p, v := range row {
		if v != model.NoValue {
			continue
		}
		assigned := false
		for value := 0; value < g.sizes[p]; value++ {
			if g.checker.IsExtensionValid(row, p, value) {
				row[p] = value
				assigned = true
				break
			}
		}
		if !assigned {
			return false
		}
	}
	return g.checker.IsValid(row)
}
