package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/combinatorics/pkg/diagnosis"
	"github.com/operator-framework/combinatorics/pkg/modelfile"
)

type diagnoseOptions struct {
	exhaustive  bool
	parallelism int
	output      outputFormat
}

type diagnosisOutput struct {
	Fingerprint string          `json:"fingerprint"`
	Missing     []missingOutput `json:"missingInvalidTuples"`
	HittingSets [][]int         `json:"hittingSets,omitempty"`
}

type missingOutput struct {
	Spec        int                   `json:"spec"`
	Values      map[string]string     `json:"values"`
	Explanation diagnosis.Explanation `json:"explanation"`
}

func newDiagnoseCmd(logger *logrus.Logger) *cobra.Command {
	o := diagnoseOptions{output: outputYAML}

	cmd := &cobra.Command{
		Use:   "diagnose MODEL",
		Short: "Reports invalid tuples of a model file that cannot be tested in isolation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, namer, err := modelfile.Load(args[0])
			if err != nil {
				return err
			}
			fp, err := m.Fingerprint()
			if err != nil {
				return err
			}
			log := logger.WithFields(logrus.Fields{
				"model":   args[0],
				"modelID": fingerprint(fp),
			})

			config := diagnosis.DiagnosisConfig()
			config.ExhaustiveDiagnosis = o.exhaustive
			manager, err := diagnosis.NewManager(m,
				diagnosis.WithConfig(config),
				diagnosis.WithLogger(log),
				diagnosis.WithParallelism(o.parallelism),
			)
			if err != nil {
				return err
			}
			missing, err := manager.DetectMissingInvalidTuples(cmd.Context())
			if err != nil {
				return err
			}
			log.WithField("missing", len(missing)).Info("conflict detection finished")

			out := diagnosisOutput{
				Fingerprint: fingerprint(fp),
				Missing:     make([]missingOutput, 0, len(missing)),
				HittingSets: diagnosis.BuildDiagnosisHittingSets(missing),
			}
			for _, t := range missing {
				out.Missing = append(out.Missing, missingOutput{
					Spec:        t.NegatedConstraintID,
					Values:      namer.Row(t.Combination(m.NumberOfParameters())),
					Explanation: t.Explanation,
				})
			}
			return o.output.write(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().BoolVar(&o.exhaustive, "exhaustive", false, "enumerate every minimal diagnosis instead of one")
	cmd.Flags().IntVar(&o.parallelism, "parallelism", 1, "number of error specs analysed at once")
	cmd.Flags().Var(&o.output, "output", "output format, yaml or json")

	return cmd
}
