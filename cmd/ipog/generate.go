package main

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/combinatorics/pkg/checker"
	"github.com/operator-framework/combinatorics/pkg/diagnosis"
	"github.com/operator-framework/combinatorics/pkg/generator"
	"github.com/operator-framework/combinatorics/pkg/modelfile"
)

type generateOptions struct {
	checker       string
	softThreshold int
	exhaustive    bool
	parallelism   int
	diagnosis     diagnosis.Config
	output        outputFormat
	printMetrics  bool
	timeout       time.Duration
}

type suiteOutput struct {
	Fingerprint string        `json:"fingerprint"`
	Groups      []groupOutput `json:"groups"`
}

type groupOutput struct {
	Identifier   int                 `json:"identifier"`
	Name         string              `json:"name"`
	Rows         []map[string]string `json:"rows"`
	DroppedSeeds int                 `json:"droppedSeeds,omitempty"`
}

func newGenerateCmd(logger *logrus.Logger) *cobra.Command {
	o := generateOptions{output: outputYAML}

	cmd := &cobra.Command{
		Use:   "generate MODEL",
		Short: "Generates the positive and negative test input groups of a model file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if o.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, o.timeout)
				defer cancel()
			}
			return o.run(ctx, cmd, logger, args[0])
		},
	}

	cmd.Flags().StringVar(&o.checker, "checker", "hard", "constraint checker, one of "+strings.Join(checker.FactoryNames(), ", "))
	cmd.Flags().IntVar(&o.softThreshold, "soft-threshold", 0, "minimum number of satisfied error specs for the soft checker")
	cmd.Flags().BoolVar(&o.exhaustive, "exhaustive", false, "enumerate every minimal diagnosis in the diagnostic checker")
	cmd.Flags().IntVar(&o.parallelism, "parallelism", 1, "number of groups generated at once")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "abort generation after this long, 0 means no timeout")
	cmd.Flags().Var(&o.output, "output", "output format, yaml or json")
	cmd.Flags().BoolVar(&o.printMetrics, "print-metrics", false, "print generation metrics in prometheus text format to stderr")
	addDiagnosisFlags(cmd, &o.diagnosis)

	return cmd
}

func addDiagnosisFlags(cmd *cobra.Command, c *diagnosis.Config) {
	cmd.Flags().BoolVar(&c.ConflictDetection, "detect-conflicts", c.ConflictDetection, "detect invalid tuples that cannot be tested in isolation")
	cmd.Flags().BoolVar(&c.ConflictExplanation, "explain-conflicts", c.ConflictExplanation, "compute a minimal conflict set per missing invalid tuple")
	cmd.Flags().BoolVar(&c.ConflictDiagnosis, "diagnose-conflicts", c.ConflictDiagnosis, "compute minimal diagnoses per missing invalid tuple")
	cmd.Flags().BoolVar(&c.ExhaustiveDiagnosis, "exhaustive-diagnosis", c.ExhaustiveDiagnosis, "enumerate every minimal diagnosis instead of one")
	cmd.Flags().BoolVar(&c.AbortOnConflict, "abort-on-conflict", c.AbortOnConflict, "fail when conflicts are detected")
}

func (o *generateOptions) run(ctx context.Context, cmd *cobra.Command, logger *logrus.Logger, path string) error {
	m, namer, err := modelfile.Load(path)
	if err != nil {
		return err
	}
	fp, err := m.Fingerprint()
	if err != nil {
		return err
	}
	log := logger.WithFields(logrus.Fields{
		"model":   path,
		"modelID": fingerprint(fp),
	})

	factory, err := checker.FactoryByName(o.checker,
		checker.WithSoftThreshold(o.softThreshold),
		checker.WithExhaustiveDiagnosis(o.exhaustive),
		checker.WithFactoryLogger(log),
	)
	if err != nil {
		return err
	}

	reporter := generator.MultiReporter{generator.LoggingReporter{Logger: log}}
	if o.printMetrics {
		enableMetrics()
		reporter = append(reporter, generator.MetricsReporter{})
	}

	g, err := generator.New(
		generator.WithCheckerFactory(factory),
		generator.WithDiagnosis(o.diagnosis),
		generator.WithReporter(reporter),
		generator.WithLogger(log),
		generator.WithParallelism(o.parallelism),
	)
	if err != nil {
		return err
	}
	suppliers, err := g.Generate(ctx, m)
	if err != nil {
		return err
	}
	groups, err := generator.Evaluate(ctx, suppliers, o.parallelism)
	if err != nil {
		return err
	}

	out := suiteOutput{Fingerprint: fingerprint(fp)}
	for _, group := range groups {
		out.Groups = append(out.Groups, groupOutput{
			Identifier:   group.Identifier,
			Name:         group.String(),
			Rows:         namer.Rows(group.Combinations),
			DroppedSeeds: len(group.DroppedSeeds),
		})
	}
	if err := o.output.write(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if o.printMetrics {
		return writeMetrics(cmd.ErrOrStderr(), prometheus.DefaultGatherer)
	}
	return nil
}
