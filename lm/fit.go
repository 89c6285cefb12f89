package lm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/exprstat/exprstat/design"
)

// Coefficient is one row of the fitted coefficient table.
type Coefficient struct {
	// Name is the design column name, e.g. "(Intercept)" or "genotypeKO".
	Name string
	// Estimate is the least-squares estimate.
	Estimate float64
	// StdErr is the standard error of the estimate. NaN when the fit has no
	// residual degrees of freedom.
	StdErr float64
	// TValue is Estimate/StdErr.
	TValue float64
	// PValue is the two-sided p value against zero, from a Student's t
	// distribution with the model's residual degrees of freedom.
	PValue float64
}

// FitResult holds a fitted linear model: the coefficient table, the
// residual-variance bookkeeping that inference rests on, and the fitted
// values and residuals.
type FitResult struct {
	// Coefficients is the coefficient table in design-column order.
	Coefficients []Coefficient
	// Sigma2 is the studentized residual variance RSS/(n-p); NaN when the
	// residual degrees of freedom are zero.
	Sigma2 float64
	// ResidualDF is n minus the number of estimated coefficients.
	ResidualDF int
	// RSS is the residual sum of squares.
	RSS float64
	// RSquared is the coefficient of determination. Centered about the mean
	// when the model has an intercept, uncentered otherwise.
	RSquared float64
	// Fitted holds the fitted values Xβ.
	Fitted []float64
	// Residuals holds y minus Fitted.
	Residuals []float64

	dm  *design.Matrix
	cov *mat.Dense // sigma2 * (X'X)^-1
}

// Fit estimates the model coefficients of dm by ordinary least squares.
//
// The solve uses a QR decomposition of the design matrix; the coefficient
// covariance matrix is σ²(XᵀX)⁻¹ with σ² = RSS/(n−p). A design that
// passed the design package's rank check always yields a solvable system.
//
// Parameters:
//   - dm: Design matrix with response, built by the design package
//
// Returns:
//   - *FitResult: Fitted model with coefficient table and covariance
//   - error: Wrapped design.ErrSingularDesign if the normal equations are
//     not invertible (possible when the rank check was disabled)
func Fit(dm *design.Matrix) (*FitResult, error) {
	x := dm.X()
	y := dm.Response()
	n, p := x.Dims()

	if p > n {
		return nil, fmt.Errorf("%w: %d coefficients from %d observations",
			design.ErrSingularDesign, p, n)
	}

	yVec := mat.NewVecDense(n, y)

	var qr mat.QR
	qr.Factorize(x)

	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, yVec); err != nil {
		return nil, fmt.Errorf("%w: %v", design.ErrSingularDesign, err)
	}

	res := &FitResult{
		ResidualDF: n - p,
		Fitted:     make([]float64, n),
		Residuals:  make([]float64, n),
		dm:         dm,
	}

	var fitted mat.VecDense
	fitted.MulVec(x, beta.ColView(0))

	rss := 0.0
	for i := 0; i < n; i++ {
		res.Fitted[i] = fitted.AtVec(i)
		res.Residuals[i] = y[i] - res.Fitted[i]
		rss += res.Residuals[i] * res.Residuals[i]
	}
	res.RSS = rss

	if res.ResidualDF > 0 {
		res.Sigma2 = rss / float64(res.ResidualDF)
	} else {
		res.Sigma2 = math.NaN()
	}

	res.RSquared = rSquared(y, res.Fitted, dm.Formula().Intercept)

	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("%w: %v", design.ErrSingularDesign, err)
	}

	res.cov = &mat.Dense{}
	res.cov.Scale(res.Sigma2, &xtxInv)

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(res.ResidualDF)}
	names := dm.ColumnNames()
	res.Coefficients = make([]Coefficient, p)
	for j := 0; j < p; j++ {
		c := Coefficient{
			Name:     names[j],
			Estimate: beta.At(j, 0),
			StdErr:   math.Sqrt(res.cov.At(j, j)),
		}
		c.TValue = c.Estimate / c.StdErr
		c.PValue = twoSidedP(tDist, c.TValue, res.ResidualDF)
		res.Coefficients[j] = c
	}

	return res, nil
}

// rSquared computes R²: 1
// minus RSS over the total sum of squares, centered about the mean when the
// model carries an intercept and uncentered otherwise.
func rSquared(y, fitted []float64, intercept bool) float64 {
	center := 0.0
	if intercept {
		for _, v := range y {
			center += v
		}
		center /= float64(len(y))
	}

	ssTot := 0.0
	ssRes := 0.0
	for i, v := range y {
		ssTot += (v - center) * (v - center)
		d := v - fitted[i]
		ssRes += d * d
	}

	if ssTot == 0 {
		return 0
	}

	return 1.0 - ssRes/ssTot
}

// twoSidedP returns the two-sided p value for t under dist, or NaN when the
// residual degrees of freedom are zero (saturated fit).
func twoSidedP(dist distuv.StudentsT, t float64, df int) float64 {
	if df <= 0 || math.IsNaN(t) {
		return math.NaN()
	}

	return 2 * dist.CDF(-math.Abs(t))
}

// Beta returns the coefficient estimates in design-column order.
func (r *FitResult) Beta() []float64 {
	out := make([]float64, len(r.Coefficients))
	for i, c := range r.Coefficients {
		out[i] = c.Estimate
	}

	return out
}

// Coef returns the named coefficient.
func (r *FitResult) Coef(name string) (Coefficient, bool) {
	for _, c := range r.Coefficients {
		if c.Name == name {
			return c, true
		}
	}

	return Coefficient{}, false
}

// Cov returns the coefficient covariance matrix σ²(XᵀX)⁻¹.
func (r *FitResult) Cov() *mat.Dense {
	var out mat.Dense
	out.CloneFrom(r.cov)

	return &out
}

// Design returns the design matrix the model was fitted on.
func (r *FitResult) Design() *design.Matrix { return r.dm }

// N returns the number of observations.
func (r *FitResult) N() int { return len(r.Fitted) }

// String returns a one-line description of the fit.
func (r *FitResult) String() string {
	return fmt.Sprintf("FitResult{%s, n=%d, df=%d, R²=%.4f}",
		r.dm.Formula(), r.N(), r.ResidualDF, r.RSquared)
}
