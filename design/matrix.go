package design

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"

	"github.com/exprstat/exprstat/dataset"
	"github.com/exprstat/exprstat/formula"
)

// ErrSingularDesign reports a rank-deficient design matrix, e.g. an
// intercept combined with a full set of factor-level indicators.
var ErrSingularDesign = errors.New("singular design matrix")

// atom is one multiplicand of a design column: either a covariate value or
// a factor-level indicator.
type atom struct {
	variable string
	level    string // factor level; empty for covariates
	isFactor bool
}

func (a atom) label() string {
	if a.isFactor {
		return a.variable + a.level
	}

	return a.variable
}

// column describes one design-matrix column as a product of atoms. An empty
// atom list is the intercept (constant one).
type column struct {
	name  string
	term  int // index into the formula's term list; -1 for the intercept
	atoms []atom
}

// Matrix is a fully materialized design matrix together with the response
// vector and the metadata needed to interpret and reuse it: column names,
// the term each column belongs to, and the coding chosen per factor.
type Matrix struct {
	x       *mat.Dense
	y       []float64
	cols    []column
	f       *formula.Formula
	tbl     *dataset.Table
	meansOf string // factor coded with a full level set, if any
}

// Build constructs the design matrix for f over tbl.
//
// Every variable referenced by the formula must exist in the table as a
// covariate or a factor, and the response must be a numeric column. The
// result is checked for full column rank unless disabled via options.
//
// Parameters:
//   - tbl: Source table providing the response and explanatory columns
//   - f: Parsed model formula
//   - opts: Optional build options (rank tolerance, rank-check skip)
//
// Returns:
//   - *Matrix: The design matrix, response vector and column metadata
//   - error: Unknown column errors, or ErrSingularDesign (wrapped) when the
//     matrix is rank deficient
func Build(tbl *dataset.Table, f *formula.Formula, opts ...Option) (*Matrix, error) {
	cfg := defaultConfig()
	if err := applyOptions(&cfg, opts); err != nil {
		return nil, err
	}

	y, ok := tbl.Numeric(f.Response)
	if !ok {
		return nil, fmt.Errorf("response %q is not a numeric column", f.Response)
	}

	m := &Matrix{y: y, f: f, tbl: tbl}

	if f.Intercept {
		m.cols = append(m.cols, column{name: "(Intercept)", term: -1})
	}

	for ti, term := range f.Terms {
		var perVar [][]atom
		for _, v := range term.Variables {
			atoms, err := m.variableAtoms(v, !term.IsInteraction())
			if err != nil {
				return nil, err
			}
			perVar = append(perVar, atoms)
		}

		for _, combo := range crossAtoms(perVar) {
			labels := make([]string, len(combo))
			for i, a := range combo {
				labels[i] = a.label()
			}
			m.cols = append(m.cols, column{
				name:  strings.Join(labels, ":"),
				term:  ti,
				atoms: combo,
			})
		}
	}

	if len(m.cols) == 0 {
		return nil, fmt.Errorf("formula %q produces no design columns", f)
	}

	n, p := tbl.N(), len(m.cols)
	m.x = mat.NewDense(n, p, nil)
	for j, col := range m.cols {
		for i := 0; i < n; i++ {
			m.x.Set(i, j, m.cellValue(col, i))
		}
	}

	if !cfg.skipRankCheck {
		if err := m.checkRank(cfg.rankTol); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// variableAtoms returns the per-column atoms a variable contributes.
//
// A covariate contributes a single atom. A factor contributes one
// indicator atom per coded level: all levels when this factor is the
// means-coded one, the non-reference levels otherwise. Means coding is
// granted to the first factor main effect of an intercept-free model.
func (m *Matrix) variableAtoms(v string, mainEffect bool) ([]atom, error) {
	if _, ok := m.tbl.Covariate(v); ok {
		return []atom{{variable: v}}, nil
	}

	fac, ok := m.tbl.Factor(v)
	if !ok {
		return nil, fmt.Errorf("variable %q is neither a covariate nor a factor", v)
	}

	full := false
	if m.meansOf == v {
		full = true
	} else if mainEffect && !m.f.Intercept && m.meansOf == "" {
		m.meansOf = v
		full = true
	}

	levels := fac.Levels()
	if !full {
		levels = levels[1:]
	}

	atoms := make([]atom, len(levels))
	for i, lv := range levels {
		atoms[i] = atom{variable: v, level: lv, isFactor: true}
	}

	return atoms, nil
}

// crossAtoms expands per-variable atom lists into their cross product,
// varying the last variable fastest.
func crossAtoms(perVar [][]atom) [][]atom {
	combos := [][]atom{nil}
	for _, atoms := range perVar {
		next := make([][]atom, 0, len(combos)*len(atoms))
		for _, c := range combos {
			for _, a := range atoms {
				combo := make([]atom, len(c), len(c)+1)
				copy(combo, c)
				next = append(next, append(combo, a))
			}
		}
		combos = next
	}

	return combos
}

// cellValue evaluates one design cell as the product of the column's atoms
// over table row i. The intercept column has no atoms and evaluates to 1.
func (m *Matrix) cellValue(col column, i int) float64 {
	v := 1.0
	for _, a := range col.atoms {
		if a.isFactor {
			fac, _ := m.tbl.Factor(a.variable)
			if fac.Level(i) != a.level {
				return 0
			}

			continue
		}
		cov, _ := m.tbl.Covariate(a.variable)
		v *= cov[i]
	}

	return v
}

// checkRank verifies the matrix has full column rank by inspecting the
// diagonal of R from a QR factorization.
func (m *Matrix) checkRank(tol float64) error {
	n, p := m.x.Dims()
	if p > n {
		return fmt.Errorf("%w: %d columns but only %d observations", ErrSingularDesign, p, n)
	}

	var qr mat.QR
	qr.Factorize(m.x)

	var r mat.Dense
	qr.RTo(&r)

	maxDiag := 0.0
	for j := 0; j < p; j++ {
		if d := math.Abs(r.At(j, j)); d > maxDiag {
			maxDiag = d
		}
	}
	for j := 0; j < p; j++ {
		if math.Abs(r.At(j, j)) <= tol*maxDiag {
			return fmt.Errorf("%w: column %q is linearly dependent on earlier columns",
				ErrSingularDesign, m.cols[j].name)
		}
	}

	return nil
}

// X returns the design matrix.
func (m *Matrix) X() *mat.Dense { return m.x }

// Response returns the response vector.
func (m *Matrix) Response() []float64 {
	out := make([]float64, len(m.y))
	copy(out, m.y)

	return out
}

// ColumnNames returns the design column names in matrix order.
func (m *Matrix) ColumnNames() []string {
	names := make([]string, len(m.cols))
	for i, c := range m.cols {
		names[i] = c.name
	}

	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (m *Matrix) ColumnIndex(name string) int {
	for i, c := range m.cols {
		if c.name == name {
			return i
		}
	}

	return -1
}

// TermColumns returns the column indices belonging to formula term ti.
func (m *Matrix) TermColumns(ti int) []int {
	var idx []int
	for i, c := range m.cols {
		if c.term == ti {
			idx = append(idx, i)
		}
	}

	return idx
}

// NumColumns returns the number of design columns (estimated coefficients).
func (m *Matrix) NumColumns() int { return len(m.cols) }

// NumRows returns the number of observations.
func (m *Matrix) NumRows() int { return m.tbl.N() }

// Formula returns the parsed formula the matrix was built from.
func (m *Matrix) Formula() *formula.Formula { return m.f }

// Table returns the source table.
func (m *Matrix) Table() *dataset.Table { return m.tbl }

// MeansCodedFactor returns the name of the factor coded with a full level
// set, or "" when every factor uses reference coding.
func (m *Matrix) MeansCodedFactor() string { return m.meansOf }

// Row builds a single design row for the given covariate values and factor
// levels, using the same coding as the built matrix. Used for predictions
// at chosen explanatory settings.
//
// Parameters:
//   - covs: Value per covariate referenced by the formula
//   - levels: Level per factor referenced by the formula
//
// Returns:
//   - []float64: Design row in matrix column order
//   - error: Missing variable or unknown factor level
func (m *Matrix) Row(covs map[string]float64, levels map[string]string) ([]float64, error) {
	row := make([]float64, len(m.cols))
	for j, col := range m.cols {
		v := 1.0
		for _, a := range col.atoms {
			if a.isFactor {
				lv, ok := levels[a.variable]
				if !ok {
					return nil, fmt.Errorf("no level given for factor %q", a.variable)
				}
				fac, _ := m.tbl.Factor(a.variable)
				if fac.LevelIndex(lv) < 0 {
					return nil, fmt.Errorf("factor %q has no level %q", a.variable, lv)
				}
				if lv != a.level {
					v = 0
				}

				continue
			}

			cv, ok := covs[a.variable]
			if !ok {
				return nil, fmt.Errorf("no value given for covariate %q", a.variable)
			}
			v *= cv
		}
		row[j] = v
	}

	return row, nil
}

// Format renders the design matrix with named columns and sample-ID rows,
// the way the worked examples print it.
func (m *Matrix) Format() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprint(tw, "\t")
	for _, c := range m.cols {
		fmt.Fprintf(tw, "%s\t", c.name)
	}
	fmt.Fprintln(tw)

	ids := m.tbl.SampleIDs()
	n, p := m.x.Dims()
	for i := 0; i < n; i++ {
		fmt.Fprintf(tw, "%s\t", ids[i])
		for j := 0; j < p; j++ {
			fmt.Fprintf(tw, "%g\t", m.x.At(i, j))
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()

	return sb.String()
}
