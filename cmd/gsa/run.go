package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/EGRM23/fisica-computacional-2024/internal/config"
	"github.com/EGRM23/fisica-computacional-2024/internal/logging"
	"github.com/EGRM23/fisica-computacional-2024/internal/objectives"
	"github.com/EGRM23/fisica-computacional-2024/internal/optimization"
	"github.com/EGRM23/fisica-computacional-2024/internal/optimization/gsa"
	"github.com/EGRM23/fisica-computacional-2024/internal/optimization/refine"
	"github.com/EGRM23/fisica-computacional-2024/internal/xray"
)

// runSpec is a problem definition. It can be read from a YAML file given
// with --config; explicit flags take precedence over the file.
type runSpec struct {
	Objective     string    `yaml:"objective"`
	Lower         []float64 `yaml:"lower"`
	Upper         []float64 `yaml:"upper"`
	X0            []float64 `yaml:"x0"`
	Visit         float64   `yaml:"qv"`
	Accept        float64   `yaml:"qa"`
	MaxIterations int       `yaml:"max_iterations"`
	Seed          uint64    `yaml:"seed"`
	DomainPolicy  string    `yaml:"domain_policy"`
	Restarts      int       `yaml:"restarts"`
	Refine        bool      `yaml:"refine"`
}

type runOptions struct {
	*rootOptions
	spec       runSpec
	configFile string
	output     string
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Minimize an objective",
		Long: `Runs generalized simulated annealing on a registered objective and prints
the best point found. Hyperparameter defaults come from the GSA_* environment
variables.`,
		Example: `  gsa run --objective shifted --lower -10 --upper 10 --x0 0 --iters 50
  gsa run --objective transmission --restarts 4 --refine --output yaml
  gsa run --config problem.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "YAML problem file")
	f.StringVar(&opts.spec.Objective, "objective", "", "Objective name (see 'gsa objectives')")
	f.Float64SliceVar(&opts.spec.Lower, "lower", nil, "Lower bounds, one per dimension")
	f.Float64SliceVar(&opts.spec.Upper, "upper", nil, "Upper bounds, one per dimension")
	f.Float64SliceVar(&opts.spec.X0, "x0", nil, "Start point (default: objective default or box centre)")
	f.Float64Var(&opts.spec.Visit, "qv", 0, "Visiting parameter in (1, 3]")
	f.Float64Var(&opts.spec.Accept, "qa", 0, "Acceptance parameter in [-5, -1]")
	f.IntVar(&opts.spec.MaxIterations, "iters", 0, "Outer iterations Imax")
	f.Uint64Var(&opts.spec.Seed, "seed", 0, "Random seed (0 = time based)")
	f.StringVar(&opts.spec.DomainPolicy, "policy", "", "Negative acceptance base policy: clamp or abort")
	f.IntVar(&opts.spec.Restarts, "restarts", 1, "Independent runs from random start points")
	f.BoolVar(&opts.spec.Refine, "refine", false, "Polish the result with Nelder-Mead")
	f.StringVarP(&opts.output, "output", "o", "text", "Output format: text, json or yaml")

	return cmd
}

// resolve merges the environment defaults, the problem file and the flags.
func (o *runOptions) resolve(cmd *cobra.Command, cfg *config.Config) (runSpec, error) {
	spec := runSpec{
		Visit:         cfg.GSA.Visit,
		Accept:        cfg.GSA.Accept,
		MaxIterations: cfg.GSA.MaxIterations,
		Seed:          cfg.GSA.Seed,
		DomainPolicy:  cfg.GSA.DomainPolicy,
		Restarts:      1,
	}

	if o.configFile != "" {
		data, err := os.ReadFile(o.configFile)
		if err != nil {
			return spec, fmt.Errorf("failed to read problem file: %w", err)
		}
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return spec, fmt.Errorf("failed to parse problem file: %w", err)
		}
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("objective", func() { spec.Objective = o.spec.Objective })
	set("lower", func() { spec.Lower = o.spec.Lower })
	set("upper", func() { spec.Upper = o.spec.Upper })
	set("x0", func() { spec.X0 = o.spec.X0 })
	set("qv", func() { spec.Visit = o.spec.Visit })
	set("qa", func() { spec.Accept = o.spec.Accept })
	set("iters", func() { spec.MaxIterations = o.spec.MaxIterations })
	set("seed", func() { spec.Seed = o.spec.Seed })
	set("policy", func() { spec.DomainPolicy = o.spec.DomainPolicy })
	set("restarts", func() { spec.Restarts = o.spec.Restarts })
	set("refine", func() { spec.Refine = o.spec.Refine })

	if spec.Objective == "" {
		return spec, fmt.Errorf("an objective is required (--objective or the problem file)")
	}
	if spec.Restarts < 1 {
		return spec, &optimization.ParameterRangeError{Name: "restarts", Value: float64(spec.Restarts), Interval: "[1, +inf)"}
	}
	return spec, nil
}

func (o *runOptions) run(cmd *cobra.Command) error {
	format, err := parseFormat(o.output)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	spec, err := o.resolve(cmd, cfg)
	if err != nil {
		return err
	}

	obj, err := objectives.Lookup(spec.Objective)
	if err != nil {
		return err
	}
	lower, upper, x0 := spec.Lower, spec.Upper, spec.X0
	if lower == nil && upper == nil {
		lower, upper = obj.Lower, obj.Upper
		if x0 == nil {
			x0 = obj.X0
		}
	}
	space, err := optimization.NewSearchSpace(lower, upper)
	if err != nil {
		return err
	}
	if err := obj.CheckDim(space.Dim()); err != nil {
		return err
	}
	if x0 == nil {
		x0 = space.Center()
	}
	if err := space.CheckPoint(x0); err != nil {
		return err
	}

	gcfg, err := cfg.GSAConfig()
	if err != nil {
		return err
	}
	gcfg.Visit, gcfg.Accept, gcfg.MaxIterations = spec.Visit, spec.Accept, spec.MaxIterations
	if gcfg.Policy, err = gsa.ParseDomainPolicy(spec.DomainPolicy); err != nil {
		return err
	}
	if err := gcfg.Validate(); err != nil {
		return err
	}
	gcfg.Seed = spec.Seed
	if gcfg.Seed == 0 {
		gcfg.Seed = uint64(time.Now().UnixNano())
	}

	logger := o.logger.WithFields(map[string]interface{}{"objective": obj.Name})
	logger.Info("Starting optimization", map[string]interface{}{
		"dimensions":     space.Dim(),
		"max_iterations": gcfg.MaxIterations,
		"restarts":       spec.Restarts,
		"seed":           gcfg.Seed,
	})

	f := optimization.WithContext(cmd.Context(), obj.Func)
	ms, err := gsa.MultiStart(cmd.Context(), f, gsa.RandomStarts(space, x0, spec.Restarts, gcfg.Seed), space, cfg.GSA.Workers,
		gsa.WithConfig(gcfg),
		gsa.WithLogger(logging.NewZapLogger(logger)),
	)
	if err != nil {
		return err
	}

	rep := newReport(obj.Name, gcfg.Seed, ms)
	if spec.Refine {
		polished, err := refine.Polish(f, space, rep.X, rep.F, refine.DefaultSettings())
		if err != nil {
			return err
		}
		rep.RefineEvaluations = polished.Evaluations
		if polished.Improved {
			rep.X, rep.F, rep.Refined = polished.X, polished.F, true
		}
	}
	if obj.Name == "transmission" {
		model, _, _, _ := xray.SimulatedDataset()
		hvl := xray.HalfValueLayer(model.Thickness, model.Curve(nil, rep.X))
		rep.HalfValueLayer = &hvl
	}
	rep.ElapsedSeconds = ms.Elapsed.Seconds()

	logger.Info("Optimization finished", map[string]interface{}{
		"best_value":  rep.F,
		"evaluations": rep.Evaluations,
	})
	return writeReport(cmd.OutOrStdout(), format, rep)
}
