package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		response  string
		terms     []Term
		intercept bool
	}{
		{
			name:      "single covariate",
			src:       "expression ~ age",
			response:  "expression",
			terms:     []Term{{Variables: []string{"age"}}},
			intercept: true,
		},
		{
			name:      "single factor",
			src:       "expression ~ genotype",
			response:  "expression",
			terms:     []Term{{Variables: []string{"genotype"}}},
			intercept: true,
		},
		{
			name:      "means model via 0",
			src:       "expression ~ 0 + genotype",
			response:  "expression",
			terms:     []Term{{Variables: []string{"genotype"}}},
			intercept: false,
		},
		{
			name:      "means model via minus one",
			src:       "expression ~ genotype - 1",
			response:  "expression",
			terms:     []Term{{Variables: []string{"genotype"}}},
			intercept: false,
		},
		{
			name:     "additive factors",
			src:      "expression ~ genotype + treatment",
			response: "expression",
			terms: []Term{
				{Variables: []string{"genotype"}},
				{Variables: []string{"treatment"}},
			},
			intercept: true,
		},
		{
			name:     "crossing expands to mains plus interaction",
			src:      "expression ~ genotype * treatment",
			response: "expression",
			terms: []Term{
				{Variables: []string{"genotype"}},
				{Variables: []string{"treatment"}},
				{Variables: []string{"genotype", "treatment"}},
			},
			intercept: true,
		},
		{
			name:      "bare interaction",
			src:       "expression ~ genotype:treatment",
			response:  "expression",
			terms:     []Term{{Variables: []string{"genotype", "treatment"}}},
			intercept: true,
		},
		{
			name:     "nuisance adjustment",
			src:      "expression ~ cellType + lane",
			response: "expression",
			terms: []Term{
				{Variables: []string{"cellType"}},
				{Variables: []string{"lane"}},
			},
			intercept: true,
		},
		{
			name:     "crossing does not duplicate explicit mains",
			src:      "expression ~ genotype + genotype * treatment",
			response: "expression",
			terms: []Term{
				{Variables: []string{"genotype"}},
				{Variables: []string{"treatment"}},
				{Variables: []string{"genotype", "treatment"}},
			},
			intercept: true,
		},
		{
			name:      "explicit intercept",
			src:       "expression ~ 1 + age",
			response:  "expression",
			terms:     []Term{{Variables: []string{"age"}}},
			intercept: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.response, f.Response)
			assert.Equal(t, tt.terms, f.Terms)
			assert.Equal(t, tt.intercept, f.Intercept)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no tilde", "expression"},
		{"two tildes", "a ~ b ~ c"},
		{"no response", "~ age"},
		{"no terms", "expression ~"},
		{"empty term", "expression ~ age + "},
		{"invalid response", "2fast ~ age"},
		{"invalid term", "expression ~ 2age"},
		{"bad subtraction", "expression ~ genotype - treatment"},
		{"self interaction", "expression ~ genotype:genotype"},
		{"empty model", "expression ~ 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)
		})
	}
}

func TestFormula_VariableNames(t *testing.T) {
	f := MustParse("expression ~ age + genotype * treatment")
	assert.Equal(t, []string{"age", "genotype", "treatment"}, f.VariableNames())
}

func TestFormula_String(t *testing.T) {
	f := MustParse("expression   ~   genotype *   treatment")
	assert.Equal(t, "expression ~ genotype * treatment", f.String())
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("not a formula") })
}

func TestTerm_String(t *testing.T) {
	assert.Equal(t, "genotype", Term{Variables: []string{"genotype"}}.String())
	assert.Equal(t, "genotype:treatment", Term{Variables: []string{"genotype", "treatment"}}.String())
	assert.True(t, Term{Variables: []string{"a", "b"}}.IsInteraction())
	assert.False(t, Term{Variables: []string{"a"}}.IsInteraction())
}
