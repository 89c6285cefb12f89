// Package chart renders the tutorial figures: observed expression values
// together with the fitted relationship from a linear-model fit. Plots are
// written to image files (the extension selects the format, e.g. .png or
// .svg).
package chart

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/exprstat/exprstat/lm"
)

// ScatterWithFit plots the observed response against a continuous covariate
// and overlays the fitted regression line.
//
// Factors in the model, if any, are held at their reference level for the
// line, matching how the worked examples draw a single fitted slope.
//
// Parameters:
//   - fit: Fitted model whose formula references the covariate
//   - covariate: Name of the covariate on the x axis
//   - path: Output file path (extension selects the image format)
//   - opts: Optional title and size settings
//
// Returns:
//   - error: Unknown covariate, prediction failure, or file write error
func ScatterWithFit(fit *lm.FitResult, covariate, path string, opts ...Option) error {
	cfg := defaultConfig(fmt.Sprintf("%s by %s", fit.Design().Formula().Response, covariate))
	if err := applyOptions(&cfg, opts); err != nil {
		return err
	}

	tbl := fit.Design().Table()
	x, ok := tbl.Covariate(covariate)
	if !ok {
		return fmt.Errorf("no covariate %q in table", covariate)
	}
	y := fit.Design().Response()

	p := plot.New()
	p.Title.Text = cfg.title
	p.X.Label.Text = covariate
	p.Y.Label.Text = fit.Design().Formula().Response

	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to build scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter)

	lo, hi := minMax(x)
	line, err := fitLine(fit, covariate, lo, hi)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(2)
	p.Add(line)

	return p.Save(cfg.width, cfg.height, path)
}

// fitLine evaluates the fitted mean at the covariate range endpoints, with
// every factor at its reference level and other covariates at their sample
// mean, and returns the connecting line.
func fitLine(fit *lm.FitResult, covariate string, lo, hi float64) (*plotter.Line, error) {
	tbl := fit.Design().Table()

	covs := make(map[string]float64)
	levels := make(map[string]string)
	for _, name := range fit.Design().Formula().VariableNames() {
		if fac, ok := tbl.Factor(name); ok {
			levels[name] = fac.Reference()
			continue
		}
		if col, ok := tbl.Covariate(name); ok && name != covariate {
			covs[name] = meanOf(col)
		}
	}

	endpoints := make(plotter.XYs, 0, 2)
	for _, x := range []float64{lo, hi} {
		covs[covariate] = x
		pred, err := fit.PredictAt(covs, levels)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, plotter.XY{X: x, Y: pred.Estimate})
	}

	line, err := plotter.NewLine(endpoints)
	if err != nil {
		return nil, fmt.Errorf("failed to build fit line: %w", err)
	}

	return line, nil
}

// GroupMeans plots the observed response per factor level with a horizontal
// segment at each level's fitted mean.
//
// Levels are laid out on a nominal x axis in their declared order; other
// model terms are held at reference levels / sample means for the fitted
// segments.
func GroupMeans(fit *lm.FitResult, factor, path string, opts ...Option) error {
	cfg := defaultConfig(fmt.Sprintf("%s by %s", fit.Design().Formula().Response, factor))
	if err := applyOptions(&cfg, opts); err != nil {
		return err
	}

	tbl := fit.Design().Table()
	fac, ok := tbl.Factor(factor)
	if !ok {
		return fmt.Errorf("no factor %q in table", factor)
	}
	y := fit.Design().Response()

	p := plot.New()
	p.Title.Text = cfg.title
	p.X.Label.Text = factor
	p.Y.Label.Text = fit.Design().Formula().Response
	p.NominalX(fac.Levels()...)

	// Spread points of the same level horizontally so they do not overlap.
	counts := fac.Counts()
	seen := make([]int, fac.NumLevels())
	pts := make(plotter.XYs, tbl.N())
	for i := 0; i < tbl.N(); i++ {
		li := fac.Index(i)
		offset := 0.0
		if counts[li] > 1 {
			offset = -0.15 + 0.3*float64(seen[li])/float64(counts[li]-1)
		}
		seen[li]++
		pts[i] = plotter.XY{X: float64(li) + offset, Y: y[i]}
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to build scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter)

	preds, err := fit.GroupMeans(factor)
	if err != nil {
		return err
	}
	for li, pred := range preds {
		seg, err := plotter.NewLine(plotter.XYs{
			{X: float64(li) - 0.25, Y: pred.Estimate},
			{X: float64(li) + 0.25, Y: pred.Estimate},
		})
		if err != nil {
			return fmt.Errorf("failed to build mean segment: %w", err)
		}
		seg.LineStyle.Width = vg.Points(2)
		p.Add(seg)
	}

	return p.Save(cfg.width, cfg.height, path)
}

// InteractionLines draws the classic interaction plot: fitted cell means of
// xFactor on a nominal x axis, one line per level of traceFactor. Parallel
// lines indicate additive effects; diverging lines indicate interaction.
func InteractionLines(fit *lm.FitResult, xFactor, traceFactor, path string, opts ...Option) error {
	cfg := defaultConfig(fmt.Sprintf("%s x %s", xFactor, traceFactor))
	if err := applyOptions(&cfg, opts); err != nil {
		return err
	}

	tbl := fit.Design().Table()
	xf, ok := tbl.Factor(xFactor)
	if !ok {
		return fmt.Errorf("no factor %q in table", xFactor)
	}
	tf, ok := tbl.Factor(traceFactor)
	if !ok {
		return fmt.Errorf("no factor %q in table", traceFactor)
	}

	p := plot.New()
	p.Title.Text = cfg.title
	p.X.Label.Text = xFactor
	p.Y.Label.Text = fit.Design().Formula().Response
	p.NominalX(xf.Levels()...)

	covs := make(map[string]float64)
	baseLevels := make(map[string]string)
	for _, name := range fit.Design().Formula().VariableNames() {
		if col, ok := tbl.Covariate(name); ok {
			covs[name] = meanOf(col)
			continue
		}
		if fac, ok := tbl.Factor(name); ok && name != xFactor && name != traceFactor {
			baseLevels[name] = fac.Reference()
		}
	}

	var lineArgs []any
	for _, trace := range tf.Levels() {
		pts := make(plotter.XYs, 0, xf.NumLevels())
		for xi, xl := range xf.Levels() {
			levels := map[string]string{xFactor: xl, traceFactor: trace}
			for k, v := range baseLevels {
				levels[k] = v
			}
			pred, err := fit.PredictAt(covs, levels)
			if err != nil {
				return err
			}
			pts = append(pts, plotter.XY{X: float64(xi), Y: pred.Estimate})
		}
		lineArgs = append(lineArgs, trace, pts)
	}

	if err := plotutil.AddLinePoints(p, lineArgs...); err != nil {
		return fmt.Errorf("failed to add interaction lines: %w", err)
	}

	return p.Save(cfg.width, cfg.height, path)
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	return lo, hi
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
