// Package formula parses Wilkinson-style model formulas into the ordered
// term list consumed by the design package.
//
// The supported grammar is the subset the worked examples use:
//
//	expression ~ age                       single covariate
//	expression ~ genotype                  factor, reference coding
//	expression ~ 0 + genotype              intercept-free means model
//	expression ~ genotype - 1              same, alternative spelling
//	expression ~ genotype + treatment      additive factors
//	expression ~ genotype * treatment      main effects plus interaction
//	expression ~ genotype:treatment        interaction term only
//	expression ~ cellType + lane           nuisance-factor adjustment
//
// There is no nesting and no `/` or `^` operators.
package formula

import (
	"fmt"
	"slices"
	"strings"
)

// Term is a single design term: one variable name for a main effect, or
// several for an interaction formed by crossing them.
type Term struct {
	// Variables holds the column names this term crosses, in formula order.
	Variables []string
}

// IsInteraction reports whether the term crosses two or more variables.
func (t Term) IsInteraction() bool { return len(t.Variables) > 1 }

// String returns the term in formula notation, e.g. "genotype:treatment".
func (t Term) String() string { return strings.Join(t.Variables, ":") }

// Formula is a parsed model specification: a response column name, an
// ordered list of terms, and whether the model carries an intercept.
type Formula struct {
	// Response is the name of the response column.
	Response string
	// Terms is the ordered list of design terms.
	Terms []Term
	// Intercept reports whether the design matrix gets an intercept column.
	Intercept bool

	src string
}

// String returns the formula in its source notation.
func (f *Formula) String() string { return f.src }

// Parse parses a model formula of the form "response ~ terms".
//
// The right-hand side is a `+`-separated list where each element is a
// variable name, an interaction `a:b`, a crossing `a*b` (expanded to
// a + b + a:b), or the intercept markers `1` and `0`. A trailing `- 1`
// also suppresses the intercept.
//
// Parameters:
//   - src: Formula text, e.g. "expression ~ genotype * treatment"
//
// Returns:
//   - *Formula: Parsed formula with response, terms and intercept flag
//   - error: Parse error describing the offending token
func Parse(src string) (*Formula, error) {
	parts := strings.Split(src, "~")
	if len(parts) != 2 {
		return nil, fmt.Errorf("formula %q must contain exactly one ~", src)
	}

	resp := strings.TrimSpace(parts[0])
	if resp == "" {
		return nil, fmt.Errorf("formula %q has no response", src)
	}
	if !isIdent(resp) {
		return nil, fmt.Errorf("formula %q: invalid response name %q", src, resp)
	}

	rhs := strings.TrimSpace(parts[1])
	if rhs == "" {
		return nil, fmt.Errorf("formula %q has no terms", src)
	}

	f := &Formula{Response: resp, Intercept: true, src: normalize(src)}

	// "terms - 1" suppresses the intercept; no other subtraction exists in
	// the supported grammar.
	if idx := strings.Index(rhs, "-"); idx >= 0 {
		tail := strings.TrimSpace(rhs[idx+1:])
		if tail != "1" {
			return nil, fmt.Errorf("formula %q: only \"- 1\" may follow -", src)
		}
		f.Intercept = false
		rhs = strings.TrimSpace(rhs[:idx])
		if rhs == "" {
			return nil, fmt.Errorf("formula %q has no terms", src)
		}
	}

	for _, raw := range strings.Split(rhs, "+") {
		tok := strings.TrimSpace(raw)
		switch {
		case tok == "":
			return nil, fmt.Errorf("formula %q: empty term", src)
		case tok == "1":
			f.Intercept = true
		case tok == "0":
			f.Intercept = false
		case strings.Contains(tok, "*"):
			vars, err := splitVars(src, tok, "*")
			if err != nil {
				return nil, err
			}
			// a*b expands to the main effects followed by the interaction.
			for _, v := range vars {
				f.addTerm(Term{Variables: []string{v}})
			}
			f.addTerm(Term{Variables: vars})
		case strings.Contains(tok, ":"):
			vars, err := splitVars(src, tok, ":")
			if err != nil {
				return nil, err
			}
			f.addTerm(Term{Variables: vars})
		default:
			if !isIdent(tok) {
				return nil, fmt.Errorf("formula %q: invalid term %q", src, tok)
			}
			f.addTerm(Term{Variables: []string{tok}})
		}
	}

	if len(f.Terms) == 0 && !f.Intercept {
		return nil, fmt.Errorf("formula %q specifies an empty model", src)
	}

	return f, nil
}

// MustParse is like Parse but panics on error. Intended for fixed formulas
// in examples and tests.
func MustParse(src string) *Formula {
	f, err := Parse(src)
	if err != nil {
		panic(err)
	}

	return f
}

// VariableNames returns the distinct variable names referenced by the
// formula's terms, in first-appearance order.
func (f *Formula) VariableNames() []string {
	var names []string
	for _, t := range f.Terms {
		for _, v := range t.Variables {
			if !slices.Contains(names, v) {
				names = append(names, v)
			}
		}
	}

	return names
}

// addTerm appends t unless an identical term is already present.
func (f *Formula) addTerm(t Term) {
	for _, have := range f.Terms {
		if slices.Equal(have.Variables, t.Variables) {
			return
		}
	}
	f.Terms = append(f.Terms, t)
}

func splitVars(src, tok, sep string) ([]string, error) {
	parts := strings.Split(tok, sep)
	vars := make([]string, 0, len(parts))
	for _, p := range parts {
		v := strings.TrimSpace(p)
		if !isIdent(v) {
			return nil, fmt.Errorf("formula %q: invalid variable %q in term %q", src, v, tok)
		}
		if slices.Contains(vars, v) {
			return nil, fmt.Errorf("formula %q: variable %q crossed with itself in %q", src, v, tok)
		}
		vars = append(vars, v)
	}

	return vars, nil
}

// isIdent reports whether s is a plain column identifier: a letter followed
// by letters, digits, underscores or dots.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '_' || r == '.'):
		default:
			return false
		}
	}

	return true
}

// normalize collapses runs of whitespace in src for stable String output.
func normalize(src string) string {
	return strings.Join(strings.Fields(src), " ")
}
