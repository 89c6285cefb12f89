package dataset

import (
	"fmt"
	"slices"

	"github.com/exprstat/exprstat/internal/hash"
)

// Table is an immutable in-memory table of n observational units.
//
// A table holds one sample identifier per row plus three kinds of columns:
// continuous covariates, categorical factors, and continuous responses.
// Column order is preserved as declared on the builder, which keeps printed
// output and design-matrix layouts deterministic.
type Table struct {
	ids        []string
	covOrder   []string
	covs       map[string][]float64
	facOrder   []string
	facs       map[string]*Factor
	respOrder  []string
	resps      map[string][]float64
	n          int
	fingerOnce bool
	finger     uint64
}

// Builder assembles a Table column by column. Errors are collected and
// reported by Build, so calls can be chained without per-call checks.
type Builder struct {
	tbl  Table
	errs []error
}

// NewBuilder creates an empty table builder.
func NewBuilder() *Builder {
	return &Builder{
		tbl: Table{
			covs:  make(map[string][]float64),
			facs:  make(map[string]*Factor),
			resps: make(map[string][]float64),
		},
	}
}

// SampleIDs sets the per-row sample identifiers.
func (b *Builder) SampleIDs(ids []string) *Builder {
	b.tbl.ids = slices.Clone(ids)
	return b
}

// Covariate adds a continuous explanatory column.
func (b *Builder) Covariate(name string, values []float64) *Builder {
	if b.checkName(name) {
		b.tbl.covOrder = append(b.tbl.covOrder, name)
		b.tbl.covs[name] = slices.Clone(values)
	}

	return b
}

// Factor adds a categorical explanatory column. When levels are given they
// define the level order (first level is the reference); otherwise levels
// are taken in order of first appearance.
func (b *Builder) Factor(name string, values []string, levels ...string) *Builder {
	if !b.checkName(name) {
		return b
	}

	f, err := NewFactor(name, values, levels...)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}

	b.tbl.facOrder = append(b.tbl.facOrder, name)
	b.tbl.facs[name] = f

	return b
}

// Response adds a continuous response column (e.g. measured expression).
func (b *Builder) Response(name string, values []float64) *Builder {
	if b.checkName(name) {
		b.tbl.respOrder = append(b.tbl.respOrder, name)
		b.tbl.resps[name] = slices.Clone(values)
	}

	return b
}

func (b *Builder) checkName(name string) bool {
	if name == "" {
		b.errs = append(b.errs, fmt.Errorf("column name must not be empty"))
		return false
	}
	if _, ok := b.tbl.covs[name]; ok {
		b.errs = append(b.errs, fmt.Errorf("duplicate column %q", name))
		return false
	}
	if _, ok := b.tbl.facs[name]; ok {
		b.errs = append(b.errs, fmt.Errorf("duplicate column %q", name))
		return false
	}
	if _, ok := b.tbl.resps[name]; ok {
		b.errs = append(b.errs, fmt.Errorf("duplicate column %q", name))
		return false
	}

	return true
}

// Build validates the assembled columns and returns the finished table.
//
// Validation enforces the table invariants: at least one column, all columns
// of equal length, and sample IDs (when present) matching that length. When
// sample IDs are omitted they default to s1..sn.
func (b *Builder) Build() (*Table, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("invalid table: %w", b.errs[0])
	}

	n := -1
	setLen := func(name string, l int) error {
		if n < 0 {
			n = l
			return nil
		}
		if l != n {
			return fmt.Errorf("column %q has %d rows, want %d", name, l, n)
		}

		return nil
	}

	for _, name := range b.tbl.covOrder {
		if err := setLen(name, len(b.tbl.covs[name])); err != nil {
			return nil, err
		}
	}
	for _, name := range b.tbl.facOrder {
		if err := setLen(name, b.tbl.facs[name].Len()); err != nil {
			return nil, err
		}
	}
	for _, name := range b.tbl.respOrder {
		if err := setLen(name, len(b.tbl.resps[name])); err != nil {
			return nil, err
		}
	}

	if n <= 0 {
		return nil, fmt.Errorf("table has no columns")
	}

	if b.tbl.ids == nil {
		b.tbl.ids = make([]string, n)
		for i := range b.tbl.ids {
			b.tbl.ids[i] = fmt.Sprintf("s%d", i+1)
		}
	} else if len(b.tbl.ids) != n {
		return nil, fmt.Errorf("sample IDs have %d rows, want %d", len(b.tbl.ids), n)
	}

	b.tbl.n = n
	tbl := b.tbl

	return &tbl, nil
}

// N returns the number of rows (observational units).
func (t *Table) N() int { return t.n }

// SampleIDs returns a copy of the per-row sample identifiers.
func (t *Table) SampleIDs() []string { return slices.Clone(t.ids) }

// CovariateNames returns covariate column names in declaration order.
func (t *Table) CovariateNames() []string { return slices.Clone(t.covOrder) }

// FactorNames returns factor column names in declaration order.
func (t *Table) FactorNames() []string { return slices.Clone(t.facOrder) }

// ResponseNames returns response column names in declaration order.
func (t *Table) ResponseNames() []string { return slices.Clone(t.respOrder) }

// Covariate returns the named covariate column.
func (t *Table) Covariate(name string) ([]float64, bool) {
	v, ok := t.covs[name]
	if !ok {
		return nil, false
	}

	return slices.Clone(v), true
}

// Factor returns the named factor column.
func (t *Table) Factor(name string) (*Factor, bool) {
	f, ok := t.facs[name]
	return f, ok
}

// Response returns the named response column.
func (t *Table) Response(name string) ([]float64, bool) {
	v, ok := t.resps[name]
	if !ok {
		return nil, false
	}

	return slices.Clone(v), true
}

// Numeric returns the named column as numeric values, whether it is a
// covariate or a response. Used to resolve formula variables.
func (t *Table) Numeric(name string) ([]float64, bool) {
	if v, ok := t.covs[name]; ok {
		return slices.Clone(v), true
	}
	if v, ok := t.resps[name]; ok {
		return slices.Clone(v), true
	}

	return nil, false
}

// Relevel returns a table identical to t except that the named factor uses
// ref as its reference level.
func (t *Table) Relevel(factor, ref string) (*Table, error) {
	f, ok := t.facs[factor]
	if !ok {
		return nil, fmt.Errorf("no factor %q in table", factor)
	}

	rf, err := f.Relevel(ref)
	if err != nil {
		return nil, err
	}

	nt := *t
	nt.facs = make(map[string]*Factor, len(t.facs))
	for k, v := range t.facs {
		nt.facs[k] = v
	}
	nt.facs[factor] = rf
	nt.fingerOnce = false

	return &nt, nil
}

// Fingerprint returns an xxHash64 digest of the table contents: sample IDs,
// column names, factor level sets and all values. Two tables with the same
// logical content share a fingerprint; any change to names, level order or
// values changes it. The digest is computed once and cached.
func (t *Table) Fingerprint() uint64 {
	if t.fingerOnce {
		return t.finger
	}

	d := hash.NewDigest()
	d.WriteUint64(uint64(t.n))
	for _, id := range t.ids {
		d.WriteString(id)
	}
	for _, name := range t.covOrder {
		d.WriteString(name)
		for _, v := range t.covs[name] {
			d.WriteFloat64(v)
		}
	}
	for _, name := range t.facOrder {
		d.WriteString(name)
		f := t.facs[name]
		for _, lv := range f.levels {
			d.WriteString(lv)
		}
		for _, li := range f.index {
			d.WriteUint64(uint64(li))
		}
	}
	for _, name := range t.respOrder {
		d.WriteString(name)
		for _, v := range t.resps[name] {
			d.WriteFloat64(v)
		}
	}

	t.finger = d.Sum64()
	t.fingerOnce = true

	return t.finger
}
