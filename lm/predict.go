package lm

import (
	"fmt"
)

// Prediction is the fitted mean at a chosen combination of explanatory
// settings, with the standard error of that mean.
type Prediction struct {
	// Covariates holds the covariate values the prediction was made at.
	Covariates map[string]float64
	// Levels holds the factor levels the prediction was made at.
	Levels map[string]string
	// Estimate is the fitted mean xᵀβ.
	Estimate float64
	// StdErr is the standard error of the fitted mean, sqrt(xᵀΣx).
	StdErr float64
}

// PredictAt computes the fitted mean and its standard error at the given
// covariate values and factor levels.
//
// The design row is built with the same coding (reference or means) as the
// fitted design matrix, so a prediction is just a linear contrast of the
// coefficients.
//
// Parameters:
//   - covs: Value per covariate referenced by the model formula
//   - levels: Level per factor referenced by the model formula
//
// Returns:
//   - *Prediction: Fitted mean and standard error
//   - error: Missing variable or unknown factor level
func (r *FitResult) PredictAt(covs map[string]float64, levels map[string]string) (*Prediction, error) {
	row, err := r.dm.Row(covs, levels)
	if err != nil {
		return nil, err
	}

	c, err := r.Contrast(row)
	if err != nil {
		return nil, err
	}

	return &Prediction{
		Covariates: covs,
		Levels:     levels,
		Estimate:   c.Estimate,
		StdErr:     c.StdErr,
	}, nil
}

// GroupMeans computes the fitted mean per level of the named factor,
// holding every other factor at its reference level and every covariate at
// its sample mean. Returned in level order.
func (r *FitResult) GroupMeans(factor string) ([]Prediction, error) {
	tbl := r.dm.Table()
	fac, ok := tbl.Factor(factor)
	if !ok {
		return nil, fmt.Errorf("no factor %q in table", factor)
	}

	covs := make(map[string]float64)
	for _, name := range r.dm.Formula().VariableNames() {
		if col, ok := tbl.Covariate(name); ok {
			covs[name] = mean(col)
		}
	}

	levels := make(map[string]string)
	for _, name := range r.dm.Formula().VariableNames() {
		if of, ok := tbl.Factor(name); ok && name != factor {
			levels[name] = of.Reference()
		}
	}

	out := make([]Prediction, 0, fac.NumLevels())
	for _, lv := range fac.Levels() {
		levelsAt := make(map[string]string, len(levels)+1)
		for k, v := range levels {
			levelsAt[k] = v
		}
		levelsAt[factor] = lv

		p, err := r.PredictAt(covs, levelsAt)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}

	return out, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
