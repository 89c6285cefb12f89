// Package dataset provides the in-memory sample table used throughout the
// repository: one row per observational unit (a sample), with continuous
// covariates, categorical factors with an explicit ordered level set, and
// continuous response columns such as measured log-expression.
//
// # Tables
//
// Tables are built once via a Builder and never mutated afterwards. The
// builder validates that every column has the same length and that every
// factor value belongs to its declared level set:
//
//	tbl, err := dataset.NewBuilder().
//	    SampleIDs([]string{"s1", "s2", "s3", "s4"}).
//	    Factor("genotype", []string{"WT", "WT", "KO", "KO"}, "WT", "KO").
//	    Response("expression", []float64{2.1, 2.3, 4.0, 4.2}).
//	    Build()
//
// # Factors and level order
//
// The order of a factor's levels is meaningful: the first level is the
// reference (baseline) level used by reference coding in the design package.
// Relevel produces a table whose factor has a different reference level
// without touching the underlying data:
//
//	tbl2, err := tbl.Relevel("genotype", "KO")
//
// # Synthetic tutorial data
//
// The package also ships the deterministic toy datasets used by the worked
// examples (TwoPointLine, AgeSeries, GenotypeSeries, CellTypeSeries,
// FactorialSeries, BatchSeries). Each takes an explicit seed so the printed
// numbers reproduce exactly.
package dataset
