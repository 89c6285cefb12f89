package lm

import (
	"fmt"
	"math"
	"strings"
	"text/tabwriter"
)

// Summary renders the printed coefficient table for the fit, in the layout
// the worked examples show:
//
//	Formula: expression ~ genotype
//
//	             Estimate  Std.Error  t value  Pr(>|t|)
//	(Intercept)    2.1500     0.1061   20.270  2.63e-05
//	genotypeKO     1.9500     0.1500   13.000  0.000199
//
//	Residual standard error: 0.1500 on 4 degrees of freedom
//	R-squared: 0.9769
func (r *FitResult) Summary() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Formula: %s\n\n", r.dm.Formula())

	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tEstimate\tStd.Error\tt value\tPr(>|t|)\t")
	for _, c := range r.Coefficients {
		fmt.Fprintf(tw, "%s\t%.4f\t%s\t%s\t%s\t\n",
			c.Name, c.Estimate, fmtStat(c.StdErr, "%.4f"),
			fmtStat(c.TValue, "%.3f"), fmtStat(c.PValue, "%.3g"))
	}
	_ = tw.Flush()

	fmt.Fprintf(&sb, "\nResidual standard error: %s on %d degrees of freedom\n",
		fmtStat(math.Sqrt(r.Sigma2), "%.4f"), r.ResidualDF)
	fmt.Fprintf(&sb, "R-squared: %.4f\n", r.RSquared)

	return sb.String()
}

// fmtStat formats v with format, printing NA for NaN (saturated fits have
// no residual variance to studentize).
func fmtStat(v float64, format string) string {
	if math.IsNaN(v) {
		return "NA"
	}

	return fmt.Sprintf(format, v)
}
