package exprstat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprstat/exprstat/dataset"
	"github.com/exprstat/exprstat/design"
)

func TestFitFormula(t *testing.T) {
	tbl, err := dataset.NewBuilder().
		Factor("genotype", []string{"WT", "WT", "KO", "KO"}, "WT", "KO").
		Response("expression", []float64{2.0, 2.2, 4.1, 4.3}).
		Build()
	require.NoError(t, err)

	fit, err := FitFormula(tbl, "expression ~ genotype")
	require.NoError(t, err)

	require.Len(t, fit.Coefficients, 2)
	intercept, ok := fit.Coef("(Intercept)")
	require.True(t, ok)
	assert.InDelta(t, 2.1, intercept.Estimate, 1e-12)
	slope, ok := fit.Coef("genotypeKO")
	require.True(t, ok)
	assert.InDelta(t, 2.1, slope.Estimate, 1e-12)
	assert.Equal(t, 2, fit.ResidualDF)
}

func TestFitFormula_ParseError(t *testing.T) {
	tbl := dataset.TwoPointLine(1.0, 2.0)

	_, err := FitFormula(tbl, "expression ~ ~ x")
	require.Error(t, err)
}

func TestFitFormula_SingularDesign(t *testing.T) {
	tbl, err := dataset.NewBuilder().
		Covariate("x", []float64{1, 2, 3, 4}).
		Covariate("x2", []float64{2, 4, 6, 8}).
		Response("expression", []float64{1, 2, 3, 4}).
		Build()
	require.NoError(t, err)

	_, err = FitFormula(tbl, "expression ~ x + x2")
	require.ErrorIs(t, err, design.ErrSingularDesign)
}

func TestDesignMatrix(t *testing.T) {
	tbl, err := dataset.NewBuilder().
		Factor("genotype", []string{"WT", "KO", "WT", "KO"}, "WT", "KO").
		Response("expression", []float64{2, 4, 2, 4}).
		Build()
	require.NoError(t, err)

	dm, err := DesignMatrix(tbl, "expression ~ 0 + genotype")
	require.NoError(t, err)
	assert.Equal(t, []string{"genotypeWT", "genotypeKO"}, dm.ColumnNames())
	assert.Equal(t, 4, dm.NumRows())

	_, err = DesignMatrix(tbl, "expression ~ missing")
	require.Error(t, err)
	assert.False(t, errors.Is(err, design.ErrSingularDesign))
}
