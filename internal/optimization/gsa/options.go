package gsa

import (
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/EGRM23/fisica-computacional-2024/internal/optimization"
)

// Defaults of the reference X-ray fitting setup.
const (
	DefaultVisit         = 2.7
	DefaultAccept        = -5.0
	DefaultMaxIterations = 400
	DefaultBoltzmann     = 1.38e-23
)

// Config holds the hyperparameters of a run.
type Config struct {
	// Visit is qv, in (1, 3].
	Visit float64
	// Accept is qa, in [-5, -1].
	Accept float64
	// MaxIterations is Imax; each outer iteration runs Imax/5 proposals.
	MaxIterations int
	// Boltzmann is the constant k of the acceptance rule.
	Boltzmann float64
	// Policy handles a negative acceptance base.
	Policy DomainPolicy

	// Seed for the PCG source; 0 means time based.
	Seed uint64
	// Source overrides Seed when set.
	Source rand.Source

	Logger   *zap.Logger
	Observer Observer
	// RecordHistory keeps the best solution after every outer iteration.
	RecordHistory bool

	runIndex int
}

// DefaultConfig returns the defaults used by Minimize.
func DefaultConfig() Config {
	return Config{
		Visit:         DefaultVisit,
		Accept:        DefaultAccept,
		MaxIterations: DefaultMaxIterations,
		Boltzmann:     DefaultBoltzmann,
		Policy:        DomainClamp,
	}
}

// Validate checks the hyperparameter ranges.
func (c Config) Validate() error {
	var rerr *optimization.ParameterRangeError
	switch {
	case !(c.Visit > 1 && c.Visit <= 3):
		rerr = &optimization.ParameterRangeError{Name: "qv", Value: c.Visit, Interval: "(1, 3]"}
	case !(c.Accept >= -5 && c.Accept <= -1):
		rerr = &optimization.ParameterRangeError{Name: "qa", Value: c.Accept, Interval: "[-5, -1]"}
	case c.MaxIterations < 1:
		rerr = &optimization.ParameterRangeError{Name: "max_iterations", Value: float64(c.MaxIterations), Interval: "[1, +inf)"}
	case !(c.Boltzmann > 0) || math.IsInf(c.Boltzmann, 1):
		rerr = &optimization.ParameterRangeError{Name: "k", Value: c.Boltzmann, Interval: "(0, +inf)"}
	default:
		return nil
	}
	return &optimization.Error{Op: "Validate", Component: "gsa", Err: rerr}
}

func (c Config) source() rand.Source {
	if c.Source != nil {
		return c.Source
	}
	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// Option configures a run.
type Option func(*Config)

// WithVisit sets qv.
func WithVisit(qv float64) Option { return func(c *Config) { c.Visit = qv } }

// WithAccept sets qa.
func WithAccept(qa float64) Option { return func(c *Config) { c.Accept = qa } }

// WithMaxIterations sets Imax.
func WithMaxIterations(n int) Option { return func(c *Config) { c.MaxIterations = n } }

// WithBoltzmann replaces the constant k.
func WithBoltzmann(k float64) Option { return func(c *Config) { c.Boltzmann = k } }

// WithDomainPolicy sets the negative-base policy.
func WithDomainPolicy(p DomainPolicy) Option { return func(c *Config) { c.Policy = p } }

// WithSeed seeds the random source. Runs with equal seeds and inputs are
// identical.
func WithSeed(seed uint64) Option { return func(c *Config) { c.Seed = seed } }

// WithSource sets the random source directly.
func WithSource(src rand.Source) Option { return func(c *Config) { c.Source = src } }

// WithLogger routes per-iteration debug output to logger.
func WithLogger(logger *zap.Logger) Option { return func(c *Config) { c.Logger = logger } }

// WithObserver registers a per-iteration callback.
func WithObserver(o Observer) Option { return func(c *Config) { c.Observer = o } }

// WithHistory records the best solution after every outer iteration.
func WithHistory() Option { return func(c *Config) { c.RecordHistory = true } }

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option { return func(c *Config) { *c = cfg } }

func withRunIndex(i int) Option { return func(c *Config) { c.runIndex = i } }

// Progress is reported to an Observer at the end of each outer iteration.
type Progress struct {
	// Run is the index of the run inside a MultiStart, 0 otherwise.
	Run           int
	Iteration     int
	MaxIterations int
	VisitTemp     float64
	AcceptTemp    float64
	// Best must not be modified.
	Best        *optimization.Solution
	Evaluations int
	Accepted    int
}

// Observer receives progress reports. Under MultiStart it is called from
// several goroutines.
type Observer interface {
	OnIteration(p Progress)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(p Progress)

// OnIteration calls f(p).
func (f ObserverFunc) OnIteration(p Progress) { f(p) }
