package sat

import (
	"sort"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// Handle identifies a Proposition compiled into a Problem so that it can
// be switched on for individual solves.
type Handle int

// Problem is an incremental satisfiability problem over bounded integer
// variables. Hard constraints persist across calls to Solve; assumptions
// hold for a single call only. A Problem is not safe for concurrent use.
type Problem struct {
	g       *gini.Gini
	lits    *litMapping
	tracer  Tracer
	handles []z.Lit
	byLit   map[z.Lit][]Handle

	assumed   []Proposition
	conflicts []Handle

	// checked is cleared whenever a hard constraint is added; unsat holds
	// once the hard constraints alone are known to be contradictory.
	checked bool
	unsat   bool
}

// Option configures a Problem under construction.
type Option func(p *Problem) error

// WithConstraints adds hard constraints to the Problem.
func WithConstraints(constraints ...Proposition) Option {
	return func(p *Problem) error {
		for _, c := range constraints {
			p.AddConstraint(c)
		}
		return nil
	}
}

// WithTracer installs a Tracer that observes unsatisfiable outcomes.
func WithTracer(t Tracer) Option {
	return func(p *Problem) error {
		p.tracer = t
		return nil
	}
}

// NewProblem returns a Problem over variables with the given domain sizes.
func NewProblem(domains []int, options ...Option) (*Problem, error) {
	for variable, n := range domains {
		if n < 1 {
			return nil, errors.Errorf("variable %d has empty domain", variable)
		}
	}

	lits, roots := newLitMapping(append([]int(nil), domains...))
	p := &Problem{
		g:      gini.New(),
		lits:   lits,
		tracer: DefaultTracer{},
		byLit:  make(map[z.Lit][]Handle),
	}
	lits.Init(p.g)
	for _, m := range roots {
		p.g.Add(m)
		p.g.Add(z.LitNull)
	}

	for _, option := range options {
		if err := option(p); err != nil {
			return nil, err
		}
	}
	if err := lits.Error(); err != nil {
		return nil, err
	}
	return p, nil
}

// Solve is the one-shot form of the primitive: it reports whether all
// propositions hold simultaneously for some assignment of the variables.
func Solve(domains []int, propositions ...Proposition) (bool, error) {
	p, err := NewProblem(domains, WithConstraints(propositions...))
	if err != nil {
		return false, err
	}
	return p.Solve(), nil
}

// AddConstraint makes c hold for every subsequent solve.
func (p *Problem) AddConstraint(c Proposition) {
	m := c.apply(p.lits.c, p.lits)
	p.lits.Flush(p.g, m)
	p.g.Add(m)
	p.g.Add(z.LitNull)
	p.checked = false
}

// Compile prepares c to be switched on by SolveWith and returns its
// Handle. The proposition does not constrain solves that omit the handle.
func (p *Problem) Compile(c Proposition) Handle {
	m := c.apply(p.lits.c, p.lits)
	p.lits.Flush(p.g, m)
	h := Handle(len(p.handles))
	p.handles = append(p.handles, m)
	p.byLit[m] = append(p.byLit[m], h)
	return h
}

// Solve reports whether the hard constraints hold together with the
// given assumptions. The assumptions are retracted afterwards.
func (p *Problem) Solve(assumptions ...Proposition) bool {
	return p.SolveWith(nil, assumptions...)
}

// SolveWith reports whether the hard constraints hold together with the
// compiled propositions identified by handles and the given assumptions.
func (p *Problem) SolveWith(handles []Handle, assumptions ...Proposition) bool {
	ms := make([]z.Lit, 0, len(handles)+len(assumptions))
	for _, h := range handles {
		ms = append(ms, p.handles[h])
	}
	for _, a := range assumptions {
		ms = append(ms, a.apply(p.lits.c, p.lits))
	}
	p.lits.Flush(p.g, ms...)
	p.conflicts = p.conflicts[:0]

	// gini must not be queried again once its clause database is
	// unsatisfiable without assumptions.
	if !p.unsat && !p.checked {
		p.unsat = p.g.Solve() == unsatisfiable
		p.checked = true
	}
	if p.unsat {
		p.assumed = assumptions
		p.tracer.Trace(p)
		p.assumed = nil
		return false
	}

	p.g.Assume(ms...)
	outcome := p.g.Solve()
	if outcome == satisfiable {
		return true
	}

	if outcome == unsatisfiable {
		seen := make(map[Handle]struct{})
		for _, why := range p.g.Why(nil) {
			for _, h := range p.byLit[why] {
				if _, ok := seen[h]; ok {
					continue
				}
				seen[h] = struct{}{}
				p.conflicts = append(p.conflicts, h)
			}
		}
		sort.Slice(p.conflicts, func(i, j int) bool { return p.conflicts[i] < p.conflicts[j] })
	}
	p.assumed = assumptions
	p.tracer.Trace(p)
	p.assumed = nil
	return false
}

// Conflicts returns the handles among the failed assumptions of the most
// recent unsatisfiable solve. Solving with only these handles (and the same
// plain assumptions) is again unsatisfiable.
func (p *Problem) Conflicts() []Handle {
	return append([]Handle(nil), p.conflicts...)
}

// Assumptions returns the plain assumptions of the solve being traced.
func (p *Problem) Assumptions() []Proposition {
	return p.assumed
}

// Values returns the value of every variable in the model found by the
// most recent satisfiable solve.
func (p *Problem) Values() []int {
	out := make([]int, len(p.lits.domains))
	for variable := range out {
		out[variable] = p.lits.ValueOf(p.g, variable)
	}
	return out
}

// Err reports propositions that referenced unknown variables.
func (p *Problem) Err() error {
	return p.lits.Error()
}
