// Package exprstat fits ordinary least-squares linear models to
// gene-expression sample tables, the way the accompanying worked examples
// walk through: build a design matrix from a model formula and a table of
// factors and covariates, fit the model, inspect coefficients, and
// evaluate contrasts and predictions.
//
// # Basic Usage
//
// Fitting a two-level genotype model and reading the group difference:
//
//	import "github.com/exprstat/exprstat"
//
//	tbl, _ := dataset.NewBuilder().
//	    Factor("genotype", []string{"WT", "WT", "KO", "KO"}, "WT", "KO").
//	    Response("expression", []float64{2.0, 2.2, 4.1, 4.3}).
//	    Build()
//
//	fit, _ := exprstat.FitFormula(tbl, "expression ~ genotype")
//	fmt.Println(fit.Summary())
//
// An intercept-free means model gives every level its own coefficient, and
// contrasts compare them directly:
//
//	fit, _ = exprstat.FitFormula(tbl, "expression ~ 0 + genotype")
//	diff, _ := fit.ContrastNamed(map[string]float64{"genotypeKO": 1, "genotypeWT": -1})
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the dataset,
// formula, design and lm packages, simplifying the common parse-build-fit
// path. For fine-grained control (custom rank tolerances, inspecting the
// design matrix before fitting) use those packages directly; the chart and
// store packages add plotting and fit persistence.
package exprstat

import (
	"github.com/exprstat/exprstat/dataset"
	"github.com/exprstat/exprstat/design"
	"github.com/exprstat/exprstat/formula"
	"github.com/exprstat/exprstat/lm"
)

// Re-exported design build options, so the common path needs only this
// package.
var (
	WithRankTolerance = design.WithRankTolerance
	WithoutRankCheck  = design.WithoutRankCheck
)

// FitFormula parses spec, builds the design matrix over tbl and fits the
// model, in one call.
//
// Parameters:
//   - tbl: Sample table providing the response and explanatory columns
//   - spec: Model formula, e.g. "expression ~ genotype * treatment"
//   - opts: Optional design build options
//
// Returns:
//   - *lm.FitResult: The fitted model
//   - error: Parse, build (including design.ErrSingularDesign) or fit error
func FitFormula(tbl *dataset.Table, spec string, opts ...design.Option) (*lm.FitResult, error) {
	f, err := formula.Parse(spec)
	if err != nil {
		return nil, err
	}

	dm, err := design.Build(tbl, f, opts...)
	if err != nil {
		return nil, err
	}

	return lm.Fit(dm)
}

// DesignMatrix parses spec and builds the design matrix over tbl without
// fitting, for callers that want to inspect or print the matrix first.
func DesignMatrix(tbl *dataset.Table, spec string, opts ...design.Option) (*design.Matrix, error) {
	f, err := formula.Parse(spec)
	if err != nil {
		return nil, err
	}

	return design.Build(tbl, f, opts...)
}
