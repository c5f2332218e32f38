package sat

import (
	"math/rand"
	"testing"
)

func BenchmarkSolve(b *testing.B) {
	const (
		variables = 24
		domain    = 4
		clauses   = 60
		seed      = 9
	)

	rnd := rand.New(rand.NewSource(seed))
	domains := make([]int, variables)
	for i := range domains {
		domains[i] = domain
	}
	var props []Proposition
	for i := 0; i < clauses; i++ {
		x, y := rnd.Intn(variables), rnd.Intn(variables)
		props = append(props, Not(And(Eq(x, rnd.Intn(domain)), Eq(y, rnd.Intn(domain)))))
	}
	p, err := NewProblem(domains, WithConstraints(props...))
	if err != nil {
		b.Fatalf("failed to initialize problem: %s", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Solve(Eq(rnd.Intn(variables), rnd.Intn(domain)), Eq(rnd.Intn(variables), rnd.Intn(domain)))
	}
}
