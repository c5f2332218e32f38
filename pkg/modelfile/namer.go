package modelfile

import (
	"github.com/pkg/errors"

	"github.com/operator-framework/combinatorics/pkg/model"
)

// Namer maps parameter and value indices back to the names of a document.
type Namer struct {
	parameters []Parameter
	index      map[string]int
	values     []map[string]int
}

func newNamer(parameters []Parameter) (*Namer, error) {
	n := &Namer{
		parameters: parameters,
		index:      make(map[string]int, len(parameters)),
		values:     make([]map[string]int, len(parameters)),
	}
	for p, parameter := range parameters {
		if parameter.Name == "" {
			return nil, errors.Errorf("parameter %d has no name", p)
		}
		if _, ok := n.index[parameter.Name]; ok {
			return nil, errors.Errorf("duplicate parameter %q", parameter.Name)
		}
		n.index[parameter.Name] = p
		n.values[p] = make(map[string]int, len(parameter.Values))
		for v, value := range parameter.Values {
			if _, ok := n.values[p][value]; ok {
				return nil, errors.Errorf("duplicate value %q of parameter %q", value, parameter.Name)
			}
			n.values[p][value] = v
		}
	}
	return n, nil
}

func (n *Namer) sizes() []int {
	out := make([]int, len(n.parameters))
	for p, parameter := range n.parameters {
		out[p] = len(parameter.Values)
	}
	return out
}

func (n *Namer) parameter(name string) (int, error) {
	p, ok := n.index[name]
	if !ok {
		return 0, errors.Errorf("unknown parameter %q", name)
	}
	return p, nil
}

func (n *Namer) parameterIndices(names []string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		p, err := n.parameter(name)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func (n *Namer) value(p int, name string) (int, error) {
	v, ok := n.values[p][name]
	if !ok {
		return 0, errors.Errorf("unknown value %q of parameter %q", name, n.parameters[p].Name)
	}
	return v, nil
}

func (n *Namer) spec(s Spec) (model.TupleSpec, error) {
	parameters, err := n.parameterIndices(s.Parameters)
	if err != nil {
		return model.TupleSpec{}, err
	}
	spec := model.TupleSpec{ID: s.ID, InvolvedParameters: parameters, Correct: s.Correct}
	for _, row := range s.Tuples {
		if len(row) != len(parameters) {
			return model.TupleSpec{}, errors.Errorf("row %v does not match parameters %v", row, s.Parameters)
		}
		values := make([]int, len(row))
		for i, name := range row {
			if values[i], err = n.value(parameters[i], name); err != nil {
				return model.TupleSpec{}, err
			}
		}
		spec.Tuples = append(spec.Tuples, values)
	}
	return spec, nil
}

func (n *Namer) seed(s Seed) (model.Seed, error) {
	c := model.NewCombination(len(n.parameters))
	for name, value := range s.Values {
		p, err := n.parameter(name)
		if err != nil {
			return model.Seed{}, err
		}
		if c[p], err = n.value(p, value); err != nil {
			return model.Seed{}, err
		}
	}
	mode := model.NonExclusive
	if s.Exclusive {
		mode = model.Exclusive
	}
	return model.Seed{Combination: c, Mode: mode, Priority: s.Priority}, nil
}

// ParameterName returns the name of parameter p.
func (n *Namer) ParameterName(p int) string {
	return n.parameters[p].Name
}

// Row renders c as parameter name to value name. Unassigned parameters are
// omitted.
func (n *Namer) Row(c model.Combination) map[string]string {
	out := make(map[string]string, len(c))
	for p, v := range c {
		if v == model.NoValue {
			continue
		}
		out[n.parameters[p].Name] = n.parameters[p].Values[v]
	}
	return out
}

// Rows renders every combination with Row.
func (n *Namer) Rows(cs []model.Combination) []map[string]string {
	out := make([]map[string]string, len(cs))
	for i, c := range cs {
		out[i] = n.Row(c)
	}
	return out
}
