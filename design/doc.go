// Package design constructs design matrices from a parsed model formula and
// a dataset table.
//
// The column layout follows the usual conventions: an intercept column of
// ones unless the formula suppresses it, one column per continuous
// covariate, indicator columns for categorical factors, and elementwise
// products for interaction terms. With an intercept present, factors use
// reference coding (one indicator per non-reference level); in an
// intercept-free model the first factor gets means coding instead (one
// indicator per level, including the reference), so each of its
// coefficients estimates a level mean directly.
//
//	f := formula.MustParse("expression ~ genotype")
//	dm, err := design.Build(tbl, f)
//	if err != nil { ... }
//	fmt.Println(dm.Format()) // inspect the matrix with named columns
//
// A rank-deficient design (for example an intercept plus a full set of
// level indicators) is rejected with ErrSingularDesign instead of silently
// aliasing coefficients.
package design
