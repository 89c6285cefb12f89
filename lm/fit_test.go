package lm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprstat/exprstat/dataset"
	"github.com/exprstat/exprstat/design"
	"github.com/exprstat/exprstat/formula"
)

// fitFormula is a test helper building the design matrix and fitting in one
// step.
func fitFormula(t *testing.T, tbl *dataset.Table, src string) *FitResult {
	t.Helper()

	dm, err := design.Build(tbl, formula.MustParse(src))
	require.NoError(t, err)

	fit, err := Fit(dm)
	require.NoError(t, err)

	return fit
}

func genotypeTable(t *testing.T) *dataset.Table {
	t.Helper()

	tbl, err := dataset.NewBuilder().
		Factor("genotype", []string{"WT", "WT", "KO", "KO"}, "WT", "KO").
		Response("expression", []float64{2.0, 2.2, 4.1, 4.3}).
		Build()
	require.NoError(t, err)

	return tbl
}

func TestFit_TwoPointLineIsExact(t *testing.T) {
	// Two points determine the line exactly: zero residual, saturated fit.
	tbl := dataset.TwoPointLine(3, 2)
	fit := fitFormula(t, tbl, "expression ~ age")

	require.Len(t, fit.Coefficients, 2)
	assert.InDelta(t, 3.0, fit.Coefficients[0].Estimate, 1e-12, "intercept")
	assert.InDelta(t, 2.0, fit.Coefficients[1].Estimate, 1e-12, "slope")
	assert.InDelta(t, 0.0, fit.RSS, 1e-12)
	assert.Equal(t, 0, fit.ResidualDF)
	assert.True(t, math.IsNaN(fit.Sigma2), "saturated fit has no residual variance")
	assert.True(t, math.IsNaN(fit.Coefficients[1].StdErr))
	assert.True(t, math.IsNaN(fit.Coefficients[1].PValue))
}

func TestFit_ReferenceCodingRecoversGroupMeans(t *testing.T) {
	fit := fitFormula(t, genotypeTable(t), "expression ~ genotype")

	// Intercept is the reference (WT) mean; the slope is KO minus WT.
	intercept, ok := fit.Coef("(Intercept)")
	require.True(t, ok)
	slope, ok := fit.Coef("genotypeKO")
	require.True(t, ok)

	assert.InDelta(t, 2.1, intercept.Estimate, 1e-12)
	assert.InDelta(t, 2.1, slope.Estimate, 1e-12)
	assert.Equal(t, 2, fit.ResidualDF)
}

func TestFit_MeansCodingRecoversLevelMeans(t *testing.T) {
	fit := fitFormula(t, genotypeTable(t), "expression ~ 0 + genotype")

	wt, ok := fit.Coef("genotypeWT")
	require.True(t, ok)
	ko, ok := fit.Coef("genotypeKO")
	require.True(t, ok)

	assert.InDelta(t, 2.1, wt.Estimate, 1e-12)
	assert.InDelta(t, 4.2, ko.Estimate, 1e-12)
}

func TestFit_SlopeStandardErrorClosedForm(t *testing.T) {
	tbl, err := dataset.NewBuilder().
		Covariate("age", []float64{1, 2, 3, 4, 5, 6}).
		Response("expression", []float64{1.1, 1.9, 3.2, 3.8, 5.1, 5.9}).
		Build()
	require.NoError(t, err)

	fit := fitFormula(t, tbl, "expression ~ age")

	// Closed-form simple regression: se(b) = sqrt(sigma2 / Sxx).
	age, _ := tbl.Covariate("age")
	meanX := 3.5
	sxx := 0.0
	for _, x := range age {
		sxx += (x - meanX) * (x - meanX)
	}

	slope, ok := fit.Coef("age")
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt(fit.Sigma2/sxx), slope.StdErr, 1e-12)
	assert.InDelta(t, slope.Estimate/slope.StdErr, slope.TValue, 1e-12)
	assert.Equal(t, 4, fit.ResidualDF)
}

func TestFit_ResidualDFMatchesObservationsMinusCoefficients(t *testing.T) {
	// The degrees of freedom driving every standard error must equal
	// n minus the number of estimated coefficients, model by model.
	tests := []struct {
		name string
		tbl  *dataset.Table
		src  string
	}{
		{"covariate", dataset.AgeSeries(12, 1, 0.5, 0.3, 1), "expression ~ age"},
		{"factor", dataset.GenotypeSeries(5, 2, 1.5, 0.4, 2), "expression ~ genotype"},
		{"means model", dataset.GenotypeSeries(5, 2, 1.5, 0.4, 3), "expression ~ 0 + genotype"},
		{"interaction", dataset.FactorialSeries(4, 2, 1, 0.5, 0.2, 0.3, 4), "expression ~ genotype * treatment"},
		{"nuisance", dataset.BatchSeries(3, 2, 1, []float64{0, 0.4, -0.2}, 0.3, 5), "expression ~ treatment + lane"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit := fitFormula(t, tt.tbl, tt.src)

			n := fit.N()
			p := len(fit.Coefficients)
			require.Equal(t, n-p, fit.ResidualDF)

			if fit.ResidualDF > 0 {
				require.InDelta(t, fit.RSS/float64(n-p), fit.Sigma2, 1e-12,
					"residual variance must studentize by the same df")
			}
		})
	}
}

func TestFit_FittedPlusResidualsReconstructResponse(t *testing.T) {
	tbl := dataset.AgeSeries(10, 1.5, 0.4, 0.3, 7)
	fit := fitFormula(t, tbl, "expression ~ age")

	y, _ := tbl.Response("expression")
	for i := range y {
		assert.InDelta(t, y[i], fit.Fitted[i]+fit.Residuals[i], 1e-12, "row %d", i)
	}
}

func TestFit_RSquaredBounds(t *testing.T) {
	noisy := dataset.AgeSeries(20, 1, 0.5, 0.5, 11)
	fit := fitFormula(t, noisy, "expression ~ age")
	assert.Greater(t, fit.RSquared, 0.0)
	assert.Less(t, fit.RSquared, 1.0)

	exact := dataset.TwoPointLine(1, 1)
	sat := fitFormula(t, exact, "expression ~ age")
	assert.InDelta(t, 1.0, sat.RSquared, 1e-12)
}

func TestFit_PValueMatchesStudentsT(t *testing.T) {
	// Closed form for the t CDF with two degrees of freedom:
	// F(t) = 1/2 + t / (2*sqrt(t^2+2)).
	p := func(tv float64) float64 {
		return 2 * (0.5 - tv/(2*math.Sqrt(tv*tv+2)))
	}

	fit := fitFormula(t, genotypeTable(t), "expression ~ genotype")
	require.Equal(t, 2, fit.ResidualDF)

	slope, ok := fit.Coef("genotypeKO")
	require.True(t, ok)
	assert.InDelta(t, p(math.Abs(slope.TValue)), slope.PValue, 1e-10)
}

func TestFit_SingularWithoutRankCheck(t *testing.T) {
	tbl, err := dataset.NewBuilder().
		Covariate("ones", []float64{1, 1, 1}).
		Response("expression", []float64{1, 2, 3}).
		Build()
	require.NoError(t, err)

	dm, err := design.Build(tbl, formula.MustParse("expression ~ ones"), design.WithoutRankCheck())
	require.NoError(t, err)

	_, err = Fit(dm)
	require.ErrorIs(t, err, design.ErrSingularDesign)
}

func TestFitResult_Summary(t *testing.T) {
	fit := fitFormula(t, genotypeTable(t), "expression ~ genotype")

	out := fit.Summary()
	assert.Contains(t, out, "Formula: expression ~ genotype")
	assert.Contains(t, out, "(Intercept)")
	assert.Contains(t, out, "genotypeKO")
	assert.Contains(t, out, "degrees of freedom")
	assert.Contains(t, out, "R-squared")

	// Saturated fits print NA rather than NaN noise.
	sat := fitFormula(t, dataset.TwoPointLine(1, 2), "expression ~ age")
	assert.Contains(t, sat.Summary(), "NA")
}
