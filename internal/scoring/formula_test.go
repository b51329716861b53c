package scoring

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		weights map[string]float64
		want    float64
	}{
		{name: "sum", formula: "Q1 + Q2", weights: map[string]float64{"Q1": 0.5, "Q2": 0.3}, want: 0.8},
		{name: "scaled", formula: "Q1 * 2", weights: map[string]float64{"Q1": 0.25}, want: 0.5},
		{name: "missing_identifier_uses_fallback", formula: "Q1 + Q3", weights: map[string]float64{"Q1": 1}, want: 1.01},
		{name: "repeated_identifier", formula: "Q1 + Q1 * Q1", weights: map[string]float64{"Q1": 3}, want: 12},
		{name: "no_prefix_collision", formula: "Q1 + Q10", weights: map[string]float64{"Q1": 1, "Q10": 10}, want: 11},
		{name: "negative_weight_keeps_precedence", formula: "2 - Q1", weights: map[string]float64{"Q1": -3}, want: 5},
		{name: "parenthesized_average", formula: "(Q1 + Q2 + Q3) / 3", weights: map[string]float64{"Q1": 1, "Q2": 0.5, "Q3": 0}, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.formula, tt.weights)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEvaluateDivisionByZeroIsNonFinite(t *testing.T) {
	got, err := Evaluate("Q1 / Q2", map[string]float64{"Q1": 1, "Q2": 0})
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, 1))
	assert.False(t, Finite(got))

	got, err = Evaluate("Q1 / Q2", map[string]float64{"Q1": 0, "Q2": 0})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))
}

func TestEvaluateMalformed(t *testing.T) {
	_, err := Evaluate("Q1 + (", map[string]float64{"Q1": 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedFormula))

	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
}

func TestEvalExpression(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{expr: "2 + 3 * 4", want: 14},
		{expr: "(2 + 3) * 4", want: 20},
		{expr: "10 - 4 - 3", want: 3},
		{expr: "8 / 4 / 2", want: 1},
		{expr: "2 * -3", want: -6},
		{expr: "-(1 + 2)", want: -3},
		{expr: "--1", want: 1},
		{expr: "+1", want: 1},
		{expr: ".5 + 1", want: 1.5},
		{expr: "1.", want: 1},
		{expr: "1e2 + 2E-1", want: 100.2},
		{expr: "  7\t\n", want: 7},
		{expr: "((((1))))", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := EvalExpression(tt.expr)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEvalExpressionRejects(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"1 +",
		"(1",
		"1)",
		"1 2",
		"()",
		"* 2",
		"1..2",
		".",
		"abc",
		"Q1 + 1",
		"(1) (2)",
		"1 ^ 2",
		"alert(1)",
		strings.Repeat("(", 200) + "1" + strings.Repeat(")", 200),
		strings.Repeat("-", 500) + "1",
		strings.Repeat("1+", 3000) + "1",
	}
	for _, expr := range tests {
		name := expr
		if len(name) > 20 {
			name = name[:20]
		}
		t.Run(name, func(t *testing.T) {
			_, err := EvalExpression(expr)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedFormula)
		})
	}
}

func TestEvalExpressionModerateNesting(t *testing.T) {
	expr := strings.Repeat("(", 100) + "1" + strings.Repeat(")", 100)
	got, err := EvalExpression(expr)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestSubstitute(t *testing.T) {
	got := Substitute("Q1+Q10 * Q2", map[string]float64{"Q1": 0.5, "Q10": 2})
	assert.Equal(t, "(0.5)+(2) * (0.01)", got)
}

func TestExtractIdentifiers(t *testing.T) {
	assert.Equal(t, []string{"Q2", "Q1", "Q10"}, ExtractIdentifiers("Q2 + Q1 * Q2 - Q10"))
	assert.Empty(t, ExtractIdentifiers("1 + 2"))
	assert.Empty(t, ExtractIdentifiers("XQ1 + Q1a"))
}

func TestValidateFormulaSyntax(t *testing.T) {
	known := []string{"Q1", "Q2", "Q3"}

	tests := []struct {
		name       string
		formula    string
		wantKind   FormulaErrorKind
		wantOK     bool
		identifier string
	}{
		{name: "valid", formula: "(Q1 + Q2) * 2 - Q3 / 4", wantOK: true},
		{name: "valid_division_by_identifier_difference", formula: "Q1 / (Q2 - Q3)", wantOK: true},
		{name: "empty", formula: "  ", wantKind: FormulaEmpty},
		{name: "invalid_characters", formula: "Q1 + $Q2", wantKind: FormulaInvalidCharacters},
		{name: "code_injection", formula: "Q1; process.exit()", wantKind: FormulaInvalidCharacters},
		{name: "unknown_identifier", formula: "Q1 + Q9", wantKind: FormulaUnknownIdentifier, identifier: "Q9"},
		{name: "unbalanced", formula: "(Q1 + Q2", wantKind: FormulaMalformed},
		{name: "dangling_operator", formula: "Q1 +", wantKind: FormulaMalformed},
		{name: "stray_word", formula: "Q1 + abc", wantKind: FormulaMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormulaSyntax(tt.formula, known)
			if tt.wantOK {
				assert.NoError(t, err)
				return
			}
			var fe *FormulaError
			require.True(t, errors.As(err, &fe), "want *FormulaError, got %v", err)
			assert.Equal(t, tt.wantKind, fe.Kind)
			assert.Equal(t, tt.identifier, fe.Identifier)
			assert.NotEmpty(t, fe.Error())
		})
	}
}

func TestValidateFormulaSyntaxMalformedUnwraps(t *testing.T) {
	err := ValidateFormulaSyntax("Q1 * (", []string{"Q1"})
	assert.ErrorIs(t, err, ErrMalformedFormula)
}
