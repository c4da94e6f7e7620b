// Package config loads service settings from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/EGRM23/fisica-computacional-2024/internal/optimization"
	"github.com/EGRM23/fisica-computacional-2024/internal/optimization/gsa"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	GSA struct {
		Visit         float64       `env:"GSA_VISIT" envDefault:"2.7"`
		Accept        float64       `env:"GSA_ACCEPT" envDefault:"-5"`
		MaxIterations int           `env:"GSA_MAX_ITERATIONS" envDefault:"400"`
		Boltzmann     float64       `env:"GSA_BOLTZMANN" envDefault:"1.38e-23"`
		Seed          uint64        `env:"GSA_SEED" envDefault:"0"`
		DomainPolicy  string        `env:"GSA_DOMAIN_POLICY" envDefault:"clamp"`
		Workers       int           `env:"GSA_WORKERS" envDefault:"4"`
		JobTTL        time.Duration `env:"GSA_JOB_TTL" envDefault:"1h"`
	}
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Verbose by default while developing
	if cfg.Logging.Level == "" {
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		} else {
			cfg.Logging.Level = "info"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GSAConfig converts the GSA section into optimizer defaults.
func (c *Config) GSAConfig() (gsa.Config, error) {
	policy, err := gsa.ParseDomainPolicy(c.GSA.DomainPolicy)
	if err != nil {
		return gsa.Config{}, err
	}
	out := gsa.DefaultConfig()
	out.Visit = c.GSA.Visit
	out.Accept = c.GSA.Accept
	out.MaxIterations = c.GSA.MaxIterations
	out.Boltzmann = c.GSA.Boltzmann
	out.Seed = c.GSA.Seed
	out.Policy = policy
	return out, nil
}

// Validate rejects hyperparameter defaults the optimizer would refuse and
// non-positive service limits.
func (c *Config) Validate() error {
	g, err := c.GSAConfig()
	if err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return err
	}
	if c.GSA.Workers < 1 {
		return &optimization.Error{
			Op:        "Validate",
			Component: "config",
			Err:       &optimization.ParameterRangeError{Name: "GSA_WORKERS", Value: float64(c.GSA.Workers), Interval: "[1, +inf)"},
		}
	}
	if c.GSA.JobTTL <= 0 {
		return &optimization.Error{
			Op:        "Validate",
			Component: "config",
			Err:       &optimization.ParameterRangeError{Name: "GSA_JOB_TTL", Value: c.GSA.JobTTL.Seconds(), Interval: "(0, +inf) seconds"},
		}
	}
	return nil
}
