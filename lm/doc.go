// Package lm fits ordinary least-squares linear models to design matrices
// and reports coefficient-level inference.
//
// A fit minimizes the sum of squared residuals via QR decomposition and
// reports, per coefficient: estimate, standard error, t statistic and
// two-sided p value, using the studentized residual variance RSS/(n−p) and
// the model's residual degrees of freedom n−p. The coefficient covariance
// matrix σ²(XᵀX)⁻¹ backs arbitrary linear contrasts:
//
//	dm, _ := design.Build(tbl, formula.MustParse("expression ~ 0 + genotype"))
//	fit, _ := lm.Fit(dm)
//	fmt.Println(fit.Summary())
//
//	// KO minus WT, from the means-coded fit
//	c, _ := fit.ContrastNamed(map[string]float64{"genotypeKO": 1, "genotypeWT": -1})
//	fmt.Printf("KO-WT = %.3f (SE %.3f)\n", c.Estimate, c.StdErr)
//
// PredictAt evaluates the fitted mean and its standard error at chosen
// covariate values and factor levels, using the same coding as the design
// matrix.
package lm
