package lm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ContrastResult is an evaluated linear contrast cᵀβ of the fitted
// coefficients.
type ContrastResult struct {
	// Name describes the comparison, e.g. "genotypeKO - genotypeWT".
	Name string
	// Weights is the contrast vector in design-column order.
	Weights []float64
	// Estimate is cᵀβ.
	Estimate float64
	// StdErr is sqrt(cᵀ Σ c) with Σ the coefficient covariance matrix.
	StdErr float64
	// TValue is Estimate/StdErr.
	TValue float64
	// PValue is the two-sided p value with the fit's residual df.
	PValue float64
}

// String returns a one-line report of the contrast.
func (c *ContrastResult) String() string {
	return fmt.Sprintf("%s: estimate=%.4f, se=%.4f, t=%.3f, p=%.4g",
		c.Name, c.Estimate, c.StdErr, c.TValue, c.PValue)
}

// Contrast evaluates the linear contrast given by weights, one weight per
// coefficient in design-column order.
//
// The estimate is the weighted sum of coefficient estimates; its standard
// error comes from the quadratic form of the weights against the
// coefficient covariance matrix.
//
// Parameters:
//   - weights: One weight per estimated coefficient
//
// Returns:
//   - *ContrastResult: Estimate, standard error, t statistic and p value
//   - error: Length mismatch against the coefficient vector
func (r *FitResult) Contrast(weights []float64) (*ContrastResult, error) {
	p := len(r.Coefficients)
	if len(weights) != p {
		return nil, fmt.Errorf("contrast has %d weights, model has %d coefficients", len(weights), p)
	}

	est := 0.0
	for j, w := range weights {
		est += w * r.Coefficients[j].Estimate
	}

	// Quadratic form w' Cov w.
	variance := 0.0
	for j := 0; j < p; j++ {
		if weights[j] == 0 {
			continue
		}
		for k := 0; k < p; k++ {
			if weights[k] == 0 {
				continue
			}
			variance += weights[j] * weights[k] * r.cov.At(j, k)
		}
	}

	res := &ContrastResult{
		Name:     contrastName(r, weights),
		Weights:  append([]float64(nil), weights...),
		Estimate: est,
		StdErr:   math.Sqrt(variance),
	}
	res.TValue = res.Estimate / res.StdErr

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(r.ResidualDF)}
	res.PValue = twoSidedP(tDist, res.TValue, r.ResidualDF)

	return res, nil
}

// ContrastNamed evaluates a contrast given as coefficient-name → weight.
// Unnamed coefficients get weight zero.
func (r *FitResult) ContrastNamed(weights map[string]float64) (*ContrastResult, error) {
	vec := make([]float64, len(r.Coefficients))
	for name, w := range weights {
		j := r.dm.ColumnIndex(name)
		if j < 0 {
			return nil, fmt.Errorf("no coefficient %q in model", name)
		}
		vec[j] = w
	}

	return r.Contrast(vec)
}

// Pairwise evaluates every pairwise level difference of the means-coded
// factor: for levels i < j the contrast is (level j) − (level i). The fit
// must come from an intercept-free means model (e.g. "expr ~ 0 + group").
func (r *FitResult) Pairwise() ([]*ContrastResult, error) {
	facName := r.dm.MeansCodedFactor()
	if facName == "" {
		return nil, fmt.Errorf("pairwise contrasts need a means-coded fit (use an intercept-free model)")
	}

	fac, _ := r.dm.Table().Factor(facName)
	levels := fac.Levels()

	var out []*ContrastResult
	for i := 0; i < len(levels); i++ {
		for j := i + 1; j < len(levels); j++ {
			c, err := r.ContrastNamed(map[string]float64{
				facName + levels[j]: 1,
				facName + levels[i]: -1,
			})
			if err != nil {
				return nil, err
			}
			c.Name = fmt.Sprintf("%s - %s", levels[j], levels[i])
			out = append(out, c)
		}
	}

	return out, nil
}

// contrastName builds a readable "+a - b" style description from the
// nonzero weights.
func contrastName(r *FitResult, weights []float64) string {
	name := ""
	for j, w := range weights {
		if w == 0 {
			continue
		}
		term := r.Coefficients[j].Name
		switch {
		case w == 1:
			if name != "" {
				name += " + "
			}
			name += term
		case w == -1:
			if name == "" {
				name = "-" + term
			} else {
				name += " - " + term
			}
		default:
			if name != "" {
				name += " + "
			}
			name += fmt.Sprintf("%g*%s", w, term)
		}
	}
	if name == "" {
		name = "null contrast"
	}

	return name
}
