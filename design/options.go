package design

import (
	"fmt"

	"github.com/exprstat/exprstat/internal/options"
)

// config holds build configuration for design matrices.
type config struct {
	rankTol       float64
	skipRankCheck bool
}

// defaultConfig returns the default build configuration.
func defaultConfig() config {
	return config{rankTol: 1e-10}
}

// Option is a functional option for Build.
type Option = options.Option[*config]

func applyOptions(cfg *config, opts []Option) error {
	return options.Apply(cfg, opts...)
}

// WithRankTolerance sets the relative tolerance used to declare a design
// column linearly dependent. The default is 1e-10.
func WithRankTolerance(tol float64) Option {
	return options.New(func(cfg *config) error {
		if tol <= 0 {
			return fmt.Errorf("rank tolerance must be positive, got %g", tol)
		}
		cfg.rankTol = tol

		return nil
	})
}

// WithoutRankCheck disables the rank check. Intended for callers that
// deliberately build a deficient matrix to inspect it.
func WithoutRankCheck() Option {
	return options.NoError(func(cfg *config) {
		cfg.skipRankCheck = true
	})
}
