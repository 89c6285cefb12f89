package dataset

import (
	"fmt"
	"slices"
)

// Factor is a categorical column with an explicit, ordered set of levels.
//
// The level order is part of the factor's identity: the first level is the
// reference (baseline) level that reference coding drops from the design
// matrix. Factors are immutable; Relevel returns a new Factor.
type Factor struct {
	name   string
	levels []string
	index  []int // per-row index into levels
}

// NewFactor creates a factor from per-row string values.
//
// When levels are given explicitly they define the level order, and every
// value must be one of them. When omitted, levels are taken in order of
// first appearance in values.
//
// Parameters:
//   - name: Column name of the factor
//   - values: Per-row level assignment, one entry per sample
//   - levels: Optional explicit level order (first level is the reference)
//
// Returns:
//   - *Factor: The constructed factor
//   - error: Validation error for empty input, duplicate levels, or a value
//     outside the declared level set
func NewFactor(name string, values []string, levels ...string) (*Factor, error) {
	if name == "" {
		return nil, fmt.Errorf("factor name must not be empty")
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("factor %q has no values", name)
	}

	var order []string
	if len(levels) > 0 {
		order = slices.Clone(levels)
		for i, lv := range order {
			if lv == "" {
				return nil, fmt.Errorf("factor %q: empty level name", name)
			}
			if slices.Index(order[:i], lv) >= 0 {
				return nil, fmt.Errorf("factor %q: duplicate level %q", name, lv)
			}
		}
	} else {
		for _, v := range values {
			if !slices.Contains(order, v) {
				order = append(order, v)
			}
		}
	}

	index := make([]int, len(values))
	for i, v := range values {
		li := slices.Index(order, v)
		if li < 0 {
			return nil, fmt.Errorf("factor %q: value %q at row %d is not a declared level", name, v, i)
		}
		index[i] = li
	}

	return &Factor{name: name, levels: order, index: index}, nil
}

// Name returns the factor's column name.
func (f *Factor) Name() string { return f.name }

// Len returns the number of rows.
func (f *Factor) Len() int { return len(f.index) }

// Levels returns the ordered level set. The returned slice is a copy.
func (f *Factor) Levels() []string { return slices.Clone(f.levels) }

// NumLevels returns the number of declared levels.
func (f *Factor) NumLevels() int { return len(f.levels) }

// Reference returns the reference (first) level.
func (f *Factor) Reference() string { return f.levels[0] }

// Level returns the level of row i.
func (f *Factor) Level(i int) string { return f.levels[f.index[i]] }

// Index returns the level index of row i.
func (f *Factor) Index(i int) int { return f.index[i] }

// LevelIndex returns the position of level in the level order, or -1.
func (f *Factor) LevelIndex(level string) int {
	return slices.Index(f.levels, level)
}

// Counts returns the number of rows observed at each level, in level order.
func (f *Factor) Counts() []int {
	counts := make([]int, len(f.levels))
	for _, li := range f.index {
		counts[li]++
	}

	return counts
}

// Relevel returns a copy of the factor with ref moved to the front of the
// level order, making it the reference level. The relative order of the
// remaining levels is preserved.
func (f *Factor) Relevel(ref string) (*Factor, error) {
	pos := slices.Index(f.levels, ref)
	if pos < 0 {
		return nil, fmt.Errorf("factor %q: level %q does not exist", f.name, ref)
	}
	if pos == 0 {
		return f, nil
	}

	order := make([]string, 0, len(f.levels))
	order = append(order, ref)
	for _, lv := range f.levels {
		if lv != ref {
			order = append(order, lv)
		}
	}

	remap := make([]int, len(f.levels))
	for old, lv := range f.levels {
		remap[old] = slices.Index(order, lv)
	}

	index := make([]int, len(f.index))
	for i, li := range f.index {
		index[i] = remap[li]
	}

	return &Factor{name: f.name, levels: order, index: index}, nil
}

// String returns a short human-readable description of the factor.
func (f *Factor) String() string {
	return fmt.Sprintf("Factor{%s: %d rows, levels=%v}", f.name, len(f.index), f.levels)
}
