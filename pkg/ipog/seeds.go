package ipog

import (
	"sort"

	"github.com/operator-framework/combinatorics/pkg/checker"
	"github.com/operator-framework/combinatorics/pkg/model"
)

// seededRow is a row built from one or more seeds.
type seededRow struct {
	combination model.Combination
	exclusive   bool
}

// insertSeeds turns seeds into initial rows, highest priority first.
// NonExclusive seeds merge into the first compatible row; Exclusive seeds
// merge only into rows that hold no other Exclusive seed. Seeds the checker
// rejects are returned as dropped.
func insertSeeds(seeds []model.Seed, c checker.ConstraintChecker) (rows []model.Combination, dropped []model.Seed) {
	ordered := append([]model.Seed(nil), seeds...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	var seeded []seededRow
	for _, seed := range ordered {
		if !c.IsValid(seed.Combination) {
			dropped = append(dropped, seed)
			continue
		}
		exclusive := seed.Mode == model.Exclusive
		merged := false
		for i := range seeded {
			if exclusive && seeded[i].exclusive {
				continue
			}
			if !seeded[i].combination.IsCompatible(seed.Combination) {
				continue
			}
			candidate := seeded[i].combination.Clone()
			candidate.Merge(seed.Combination)
			if !c.IsValid(candidate) {
				continue
			}
			seeded[i].combination = candidate
			seeded[i].exclusive = seeded[i].exclusive || exclusive
			merged = true
			break
		}
		if !merged {
			seeded = append(seeded, seededRow{combination: seed.Combination.Clone(), exclusive: exclusive})
		}
	}

	for _, row := range seeded {
		rows = append(rows, row.combination)
	}
	return rows, dropped
}
