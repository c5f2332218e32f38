package diagnosis

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/operator-framework/combinatorics/pkg/model"
)

// Manager detects missing invalid tuples of a model and explains them.
type Manager struct {
	model       *model.Model
	config      Config
	logger      logrus.FieldLogger
	parallelism int
}

// NewManager returns a Manager for m.
func NewManager(m *model.Model, options ...Option) (*Manager, error) {
	config := defaultManagerConfig()
	config.apply(options)
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Manager{
		model:       m,
		config:      config.config,
		logger:      config.logger,
		parallelism: config.parallelism,
	}, nil
}

// Config returns the detection stages of the manager.
func (mg *Manager) Config() Config {
	return mg.config
}

// DetectMissingInvalidTuples analyses every error spec of the model in
// declaration order. It returns nil when conflict detection is disabled.
func (mg *Manager) DetectMissingInvalidTuples(ctx context.Context) ([]MissingInvalidTuple, error) {
	if !mg.config.ConflictDetection {
		return nil, nil
	}

	specs := mg.model.ErrorSpecs()
	results := make([][]MissingInvalidTuple, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(mg.parallelism)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			missing, err := mg.detect(ctx, spec)
			if err != nil {
				return errors.Wrapf(err, "error spec %d", spec.ID)
			}
			results[i] = missing
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []MissingInvalidTuple
	for _, missing := range results {
		out = append(out, missing...)
	}
	return out, nil
}

// DetectForSpec analyses the error spec with the given id.
func (mg *Manager) DetectForSpec(ctx context.Context, id int) ([]MissingInvalidTuple, error) {
	spec, ok := mg.model.ErrorSpec(id)
	if !ok {
		return nil, model.ErrUnknownSpec(id)
	}
	if !mg.config.ConflictDetection {
		return nil, nil
	}
	return mg.detect(ctx, spec)
}

func (mg *Manager) detect(ctx context.Context, spec model.TupleSpec) ([]MissingInvalidTuple, error) {
	oracle, err := newSpecOracle(mg.model, spec)
	if err != nil {
		return nil, err
	}
	logger := mg.logger.WithField("spec", spec.ID)

	var out []MissingInvalidTuple
	for _, row := range spec.Tuples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o := oracle.forRow(spec.InvolvedParameters, row)
		if o.IsConsistent(o.all()) {
			continue
		}
		missing := MissingInvalidTuple{
			NegatedConstraintID: spec.ID,
			InvolvedParameters:  append([]int(nil), spec.InvolvedParameters...),
			MissingValues:       append([]int(nil), row...),
			Explanation:         mg.explain(o, spec, row),
		}
		logger.WithFields(logrus.Fields{
			"row":         row,
			"explanation": missing.Explanation.String(),
		}).Debug("missing invalid tuple")
		out = append(out, missing)
	}
	return out, nil
}

func (mg *Manager) explain(o *specOracle, negated model.TupleSpec, row []int) Explanation {
	if !mg.config.ConflictExplanation && !mg.config.ConflictDiagnosis {
		return UnknownExplanation{}
	}
	if !o.IsConsistent(nil) {
		return InconsistentBackground{}
	}

	all := o.all()
	conflict := QuickXPlain(o, nil, all)
	if len(conflict) == 0 {
		return UnknownExplanation{}
	}
	if !mg.config.ConflictDiagnosis {
		elements := make([]ConflictElement, len(conflict))
		for i, c := range conflict {
			elements[i] = conflictElement(o.candidates[c], negated, row)
		}
		return ConflictSet{Elements: elements}
	}

	var diagnoses [][]int
	if mg.config.ExhaustiveDiagnosis {
		diagnoses = ExhaustiveDiagnoses(o, nil, all)
	} else if d := FastDiag(o, nil, all); len(d) > 0 {
		diagnoses = [][]int{d}
	}
	if len(diagnoses) == 0 {
		return UnknownExplanation{}
	}
	sets := make([][]DiagnosisElement, len(diagnoses))
	for i, d := range diagnoses {
		sets[i] = make([]DiagnosisElement, len(d))
		for j, c := range d {
			sets[i][j] = DiagnosisElement(conflictElement(o.candidates[c], negated, row))
		}
	}
	return DiagnosisSets{Sets: sets}
}

// conflictElement records the values of the missing row at the parameters
// shared by spec and the negated spec.
func conflictElement(spec, negated model.TupleSpec, row []int) ConflictElement {
	values := make([]int, len(spec.InvolvedParameters))
	for i, p := range spec.InvolvedParameters {
		values[i] = model.NoValue
		for j, q := range negated.InvolvedParameters {
			if p == q {
				values[i] = row[j]
				break
			}
		}
	}
	return ConflictElement{
		ConstraintID:       spec.ID,
		InvolvedParameters: append([]int(nil), spec.InvolvedParameters...),
		ConflictingValues:  values,
	}
}
