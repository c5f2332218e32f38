package ipog

import (
	"context"
	"math/rand"
	"testing"

	"github.com/operator-framework/combinatorics/pkg/checker"
	"github.com/operator-framework/combinatorics/pkg/model"
)

func benchmarkModel(b *testing.B) *model.Model {
	const (
		parameters = 12
		domain     = 4
		specs      = 10
		seed       = 9
	)

	rnd := rand.New(rand.NewSource(seed))
	sizes := make([]int, parameters)
	for i := range sizes {
		sizes[i] = domain
	}
	var exclusions []model.TupleSpec
	for i := 1; i <= specs; i++ {
		p := rnd.Intn(parameters - 1)
		exclusions = append(exclusions, model.TupleSpec{
			ID:                 i,
			InvolvedParameters: []int{p, p + 1},
			Tuples:             [][]int{{rnd.Intn(domain), rnd.Intn(domain)}},
		})
	}
	m, err := model.NewModel(sizes, model.WithExclusionSpecs(exclusions...))
	if err != nil {
		b.Fatalf("failed to build model: %s", err)
	}
	return m
}

func BenchmarkGenerate(b *testing.B) {
	m := benchmarkModel(b)
	for _, tt := range []struct {
		name    string
		factory checker.Factory
	}{
		{name: "hard", factory: checker.HardConstraintCheckerFactory{}},
		{name: "mft", factory: checker.MinimalForbiddenTuplesCheckerFactory{}},
	} {
		b.Run(tt.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				c, err := tt.factory.CreateChecker(m)
				if err != nil {
					b.Fatalf("failed to create checker: %s", err)
				}
				g, err := New(m.ParameterSizes(), c)
				if err != nil {
					b.Fatalf("failed to initialize generator: %s", err)
				}
				if _, err := g.Generate(context.Background()); err != nil {
					b.Fatalf("failed to generate: %s", err)
				}
			}
		})
	}
}
