package chart

import (
	"fmt"

	"gonum.org/v1/plot/vg"

	"github.com/exprstat/exprstat/internal/options"
)

// config holds rendering configuration shared by all chart functions.
type config struct {
	title  string
	width  vg.Length
	height vg.Length
}

func defaultConfig(title string) config {
	return config{
		title:  title,
		width:  6 * vg.Inch,
		height: 4 * vg.Inch,
	}
}

// Option is a functional option for chart rendering.
type Option = options.Option[*config]

func applyOptions(cfg *config, opts []Option) error {
	return options.Apply(cfg, opts...)
}

// WithTitle overrides the default plot title.
func WithTitle(title string) Option {
	return options.NoError(func(cfg *config) {
		cfg.title = title
	})
}

// WithSize sets the output size in inches.
func WithSize(widthIn, heightIn float64) Option {
	return options.New(func(cfg *config) error {
		if widthIn <= 0 || heightIn <= 0 {
			return fmt.Errorf("plot size must be positive, got %gx%g", widthIn, heightIn)
		}
		cfg.width = vg.Length(widthIn) * vg.Inch
		cfg.height = vg.Length(heightIn) * vg.Inch

		return nil
	})
}
