package dataset

import (
	"fmt"
	"math/rand"
)

// The generators below reproduce the toy datasets used by the worked
// examples. Every generator takes an explicit seed and builds its values
// with a private rand.Rand, so a given (arguments, seed) pair always yields
// the same table and the printed example output is reproducible.

// mustBuild finalizes a generated table. Generator inputs are produced
// internally, so a build failure is a programming error.
func mustBuild(b *Builder) *Table {
	tbl, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("dataset: generated table is invalid: %v", err))
	}

	return tbl
}

// TwoPointLine returns the minimal covariate dataset: two samples with
// age 1 and 2 and expression lying exactly on the line
// intercept + slope*age. A straight-line fit through these two points
// recovers both parameters exactly with zero residual.
func TwoPointLine(intercept, slope float64) *Table {
	ages := []float64{1, 2}
	expr := make([]float64, len(ages))
	for i, a := range ages {
		expr[i] = intercept + slope*a
	}

	return mustBuild(NewBuilder().
		SampleIDs([]string{"s1", "s2"}).
		Covariate("age", ages).
		Response("expression", expr))
}

// AgeSeries returns n samples with ages spread over [1, n] and expression
// intercept + slope*age + N(0, sd) noise.
func AgeSeries(n int, intercept, slope, sd float64, seed int64) *Table {
	rng := rand.New(rand.NewSource(seed))

	ids := make([]string, n)
	ages := make([]float64, n)
	expr := make([]float64, n)
	for i := range n {
		ids[i] = fmt.Sprintf("s%d", i+1)
		ages[i] = float64(i + 1)
		expr[i] = intercept + slope*ages[i] + rng.NormFloat64()*sd
	}

	return mustBuild(NewBuilder().
		SampleIDs(ids).
		Covariate("age", ages).
		Response("expression", expr))
}

// GenotypeSeries returns a balanced two-level genotype dataset: nPer wild
// type ("WT", the reference) samples with mean wtMean and nPer knockout
// ("KO") samples with mean wtMean+koEffect, plus N(0, sd) noise.
func GenotypeSeries(nPer int, wtMean, koEffect, sd float64, seed int64) *Table {
	rng := rand.New(rand.NewSource(seed))

	n := 2 * nPer
	ids := make([]string, 0, n)
	geno := make([]string, 0, n)
	expr := make([]float64, 0, n)
	for g, level := range []string{"WT", "KO"} {
		mean := wtMean
		if g == 1 {
			mean += koEffect
		}
		for i := range nPer {
			ids = append(ids, fmt.Sprintf("%s%d", level, i+1))
			geno = append(geno, level)
			expr = append(expr, mean+rng.NormFloat64()*sd)
		}
	}

	return mustBuild(NewBuilder().
		SampleIDs(ids).
		Factor("genotype", geno, "WT", "KO").
		Response("expression", expr))
}

// CellTypeSeries returns a multi-level factor dataset: nPer samples per
// cell type, with the i-th level centered at means[i] plus N(0, sd) noise.
// levels and means must have equal length; the first level is the
// reference.
func CellTypeSeries(nPer int, levels []string, means []float64, sd float64, seed int64) *Table {
	if len(levels) != len(means) {
		panic(fmt.Sprintf("dataset: %d levels but %d means", len(levels), len(means)))
	}

	rng := rand.New(rand.NewSource(seed))

	n := nPer * len(levels)
	ids := make([]string, 0, n)
	cell := make([]string, 0, n)
	expr := make([]float64, 0, n)
	for li, level := range levels {
		for i := range nPer {
			ids = append(ids, fmt.Sprintf("%s%d", level, i+1))
			cell = append(cell, level)
			expr = append(expr, means[li]+rng.NormFloat64()*sd)
		}
	}

	return mustBuild(NewBuilder().
		SampleIDs(ids).
		Factor("cellType", cell, levels...).
		Response("expression", expr))
}

// FactorialSeries returns a balanced genotype ("WT"/"KO") by treatment
// ("Ctl"/"Trt") crossing with nPer samples per cell. Cell means are
//
//	base + genoEffect*[KO] + trtEffect*[Trt] + interaction*[KO][Trt]
//
// plus N(0, sd) noise. With interaction == 0 and sd == 0 the generating
// effects are exactly additive and a fitted interaction coefficient is
// exactly zero.
func FactorialSeries(nPer int, base, genoEffect, trtEffect, interaction, sd float64, seed int64) *Table {
	rng := rand.New(rand.NewSource(seed))

	n := 4 * nPer
	ids := make([]string, 0, n)
	geno := make([]string, 0, n)
	trt := make([]string, 0, n)
	expr := make([]float64, 0, n)
	for g, gl := range []string{"WT", "KO"} {
		for t, tl := range []string{"Ctl", "Trt"} {
			mean := base + float64(g)*genoEffect + float64(t)*trtEffect + float64(g*t)*interaction
			for i := range nPer {
				ids = append(ids, fmt.Sprintf("%s.%s%d", gl, tl, i+1))
				geno = append(geno, gl)
				trt = append(trt, tl)
				expr = append(expr, mean+rng.NormFloat64()*sd)
			}
		}
	}

	return mustBuild(NewBuilder().
		SampleIDs(ids).
		Factor("genotype", geno, "WT", "KO").
		Factor("treatment", trt, "Ctl", "Trt").
		Response("expression", expr))
}

// BatchSeries returns a treatment ("Ctl"/"Trt") dataset whose samples are
// spread over sequencing lanes with per-lane offsets laneEffects (the first
// lane is the reference and should carry offset 0). Each lane gets nPer
// control and nPer treated samples, so the treatment effect trtEffect is
// estimable after adjusting for lane.
func BatchSeries(nPer int, base, trtEffect float64, laneEffects []float64, sd float64, seed int64) *Table {
	rng := rand.New(rand.NewSource(seed))

	lanes := make([]string, len(laneEffects))
	for i := range laneEffects {
		lanes[i] = fmt.Sprintf("L%d", i+1)
	}

	n := 2 * nPer * len(lanes)
	ids := make([]string, 0, n)
	trt := make([]string, 0, n)
	lane := make([]string, 0, n)
	expr := make([]float64, 0, n)
	for li, ll := range lanes {
		for t, tl := range []string{"Ctl", "Trt"} {
			for i := range nPer {
				ids = append(ids, fmt.Sprintf("%s.%s%d", ll, tl, i+1))
				trt = append(trt, tl)
				lane = append(lane, ll)
				expr = append(expr, base+float64(t)*trtEffect+laneEffects[li]+rng.NormFloat64()*sd)
			}
		}
	}

	return mustBuild(NewBuilder().
		SampleIDs(ids).
		Factor("treatment", trt, "Ctl", "Trt").
		Factor("lane", lane, lanes...).
		Response("expression", expr))
}
