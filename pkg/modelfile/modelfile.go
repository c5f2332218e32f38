// Package modelfile reads model documents written in YAML or JSON. Parameters
// and values are referred to by name; the document is translated into a
// validated model.Model together with a Namer to render generated rows.
package modelfile

import (
	"io"
	"os"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/operator-framework/combinatorics/pkg/model"
)

// Document is the on-disk form of a model.
type Document struct {
	Parameters       []Parameter     `json:"parameters"`
	Strength         *int            `json:"strength,omitempty"`
	NegativeStrength *int            `json:"negativeStrength,omitempty"`
	Exclusions       []Spec          `json:"exclusions,omitempty"`
	Errors           []Spec          `json:"errors,omitempty"`
	Seeds            []Seed          `json:"seeds,omitempty"`
	NegativeSeeds    []NegativeSeed  `json:"negativeSeeds,omitempty"`
	StrengthGroups   []StrengthGroup `json:"strengthGroups,omitempty"`
}

// Parameter is a named parameter with its named values.
type Parameter struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Spec lists forbidden value rows over named parameters.
type Spec struct {
	ID         int        `json:"id"`
	Parameters []string   `json:"parameters"`
	Tuples     [][]string `json:"tuples"`
	Correct    bool       `json:"correct,omitempty"`
}

// Seed is a partial row keyed by parameter name.
type Seed struct {
	Values    map[string]string `json:"values"`
	Exclusive bool              `json:"exclusive,omitempty"`
	Priority  float64           `json:"priority,omitempty"`
}

// NegativeSeed is a Seed for the negative group of one error spec.
type NegativeSeed struct {
	Seed
	Spec int `json:"spec"`
}

// StrengthGroup raises the strength for a group of named parameters.
type StrengthGroup struct {
	Parameters []string `json:"parameters"`
	Strength   int      `json:"strength"`
}

// Load reads and parses the document at path.
func Load(path string) (*model.Model, *Namer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	m, n, err := Read(f)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading model %s", path)
	}
	return m, n, nil
}

// Read parses a document from r.
func Read(r io.Reader) (*model.Model, *Namer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, errors.Wrap(err, "decoding model document")
	}
	return doc.Build()
}

// Build translates the document into a validated Model.
func (d *Document) Build() (*model.Model, *Namer, error) {
	n, err := newNamer(d.Parameters)
	if err != nil {
		return nil, nil, err
	}

	var (
		errs    []error
		options []model.Option
	)
	if d.Strength != nil {
		options = append(options, model.WithStrength(*d.Strength))
	}
	if d.NegativeStrength != nil {
		options = append(options, model.WithNegativeStrength(*d.NegativeStrength))
	}
	for _, s := range d.Exclusions {
		spec, err := n.spec(s)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "exclusion %d", s.ID))
			continue
		}
		options = append(options, model.WithExclusionSpecs(spec))
	}
	for _, s := range d.Errors {
		spec, err := n.spec(s)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "error spec %d", s.ID))
			continue
		}
		options = append(options, model.WithErrorSpecs(spec))
	}
	for i, s := range d.Seeds {
		seed, err := n.seed(s)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "seed %d", i))
			continue
		}
		options = append(options, model.WithSeeds(seed))
	}
	for i, s := range d.NegativeSeeds {
		seed, err := n.seed(s.Seed)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "negative seed %d", i))
			continue
		}
		options = append(options, model.WithNegativeSeeds(s.Spec, seed))
	}
	for i, g := range d.StrengthGroups {
		parameters, err := n.parameterIndices(g.Parameters)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "strength group %d", i))
			continue
		}
		options = append(options, model.WithStrengthGroups(model.StrengthGroup{Parameters: parameters, Strength: g.Strength}))
	}
	if len(errs) > 0 {
		return nil, nil, utilerrors.NewAggregate(errs)
	}

	m, err := model.NewModel(n.sizes(), options...)
	if err != nil {
		return nil, nil, err
	}
	return m, n, nil
}
