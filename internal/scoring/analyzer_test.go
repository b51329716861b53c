package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bolsas/internal/model"
)

func TestClassifyUsage(t *testing.T) {
	tests := []struct {
		formula    string
		identifier string
		want       Usage
	}{
		{formula: "Q1 - Q2", identifier: "Q2", want: UsageSubtracted},
		{formula: "Q1 / Q2", identifier: "Q2", want: UsageDivisionDenominator},
		{formula: "Q1 / Q2", identifier: "Q1", want: UsageDivisionNumerator},
		{formula: "Q1 + Q2", identifier: "Q1", want: UsageAdditive},
		{formula: "Q1 * Q2", identifier: "Q2", want: UsageAdditive},
		{formula: "Q1-Q2", identifier: "Q2", want: UsageSubtracted},
		{formula: "Q1   /\tQ2", identifier: "Q2", want: UsageDivisionDenominator},
		{formula: "(Q1)", identifier: "Q1", want: UsageAdditive},
		{formula: "Q1 - Q2 / Q3", identifier: "Q2", want: UsageDivisionNumerator},
		{formula: "Q1 / Q2 / Q3", identifier: "Q2", want: UsageDivisionDenominator},
		{formula: "Q1 / (Q2 + Q3)", identifier: "Q2", want: UsageAdditive},
		{formula: "Q10 - Q1", identifier: "Q1", want: UsageSubtracted},
		{formula: "Q10 - Q1", identifier: "Q10", want: UsageAdditive},
		{formula: "Q1 + Q2", identifier: "Q7", want: UsageAdditive},
		{formula: "Q1 + Q2", identifier: "", want: UsageAdditive},
	}
	for _, tt := range tests {
		t.Run(tt.formula+"/"+tt.identifier, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyUsage(tt.formula, tt.identifier))
		})
	}
}

func TestClassifyUsageLastOccurrenceWins(t *testing.T) {
	assert.Equal(t, UsageAdditive, ClassifyUsage("Q1 - Q2 + Q2", "Q2"))
	assert.Equal(t, UsageSubtracted, ClassifyUsage("Q2 + Q1 - Q2", "Q2"))
	assert.Equal(t, UsageDivisionDenominator, ClassifyUsage("Q2 / 2 + 1 / Q2", "Q2"))
}

func TestUsageString(t *testing.T) {
	assert.Equal(t, "additive", UsageAdditive.String())
	assert.Equal(t, "subtracted", UsageSubtracted.String())
	assert.Equal(t, "division_numerator", UsageDivisionNumerator.String())
	assert.Equal(t, "division_denominator", UsageDivisionDenominator.String())
}

func TestMaxAndMinWeight(t *testing.T) {
	tests := []struct {
		name    string
		q       *model.QuestionDefinition
		wantMax float64
		wantMin float64
	}{
		{
			name:    "yes_no",
			q:       &model.QuestionDefinition{Subtype: model.SubtypeYesNo, YesWeight: 0.7, NoWeight: 0.2},
			wantMax: 0.7, wantMin: 0.2,
		},
		{
			name:    "single_choice",
			q:       choiceQuestion(model.SubtypeSingleChoice, 0.4, 0.6, 0.1),
			wantMax: 0.6, wantMin: 0.1,
		},
		{
			name:    "multiple_choice_sums_for_max",
			q:       choiceQuestion(model.SubtypeMultipleChoice, 0.2, 0.3, 0.5),
			wantMax: 1.0, wantMin: 0.2,
		},
		{
			name: "number_bands",
			q: &model.QuestionDefinition{Subtype: model.SubtypeNumber, ScoreBands: []model.ScoreBand{
				{Min: 0, Max: 1, Weight: 0.9}, {Min: 2, Max: 3, Weight: 0.3},
			}},
			wantMax: 0.9, wantMin: 0.3,
		},
		{
			name:    "likert_without_bands",
			q:       &model.QuestionDefinition{Subtype: model.SubtypeLikertScale},
			wantMax: 0, wantMin: 0,
		},
		{
			name:    "choice_without_options",
			q:       &model.QuestionDefinition{Subtype: model.SubtypeSingleChoice},
			wantMax: 0, wantMin: 0,
		},
		{
			name:    "unknown",
			q:       &model.QuestionDefinition{Subtype: model.Subtype("slider")},
			wantMax: 1, wantMin: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantMax, MaxWeight(tt.q), 1e-9)
			assert.InDelta(t, tt.wantMin, MinWeight(tt.q), 1e-9)
		})
	}
}

func TestExtremalWeight(t *testing.T) {
	yesNo := &model.QuestionDefinition{Subtype: model.SubtypeYesNo, YesWeight: 0.7, NoWeight: 0.2}
	text := &model.QuestionDefinition{Subtype: model.SubtypeLongText}

	assert.Equal(t, 0.7, ExtremalWeight(yesNo, UsageAdditive))
	assert.Equal(t, 0.7, ExtremalWeight(yesNo, UsageDivisionNumerator))
	assert.Equal(t, 0.2, ExtremalWeight(yesNo, UsageSubtracted))
	assert.Equal(t, 0.2, ExtremalWeight(yesNo, UsageDivisionDenominator))

	assert.Equal(t, 1.0, ExtremalWeight(text, UsageAdditive))
	assert.Equal(t, 1.0, ExtremalWeight(text, UsageDivisionNumerator))
	assert.Equal(t, 0.0, ExtremalWeight(text, UsageSubtracted))
	assert.Equal(t, FallbackWeight, ExtremalWeight(text, UsageDivisionDenominator))
}

func maxScoreAnnouncement(formula string, q2 model.QuestionDefinition) *model.Announcement {
	q1 := *choiceQuestion(model.SubtypeSingleChoice, 0.4, 0.6)
	q1.Identifier = "Q1"
	q2.Identifier = "Q2"
	return &model.Announcement{Formula: formula, Questions: []model.QuestionDefinition{q1, q2}}
}

func TestEstimateMaximumScore(t *testing.T) {
	yesNo := model.QuestionDefinition{Subtype: model.SubtypeYesNo, YesWeight: 0.7, NoWeight: 0.2}

	tests := []struct {
		name    string
		formula string
		q2      model.QuestionDefinition
		want    float64
	}{
		{name: "sum_takes_both_maxima", formula: "Q1 + Q2", q2: yesNo, want: 1.3},
		{name: "subtraction_takes_minimum", formula: "Q1 - Q2", q2: yesNo, want: 0.4},
		{name: "denominator_takes_minimum", formula: "Q1 / Q2", q2: yesNo, want: 3},
		{name: "text_denominator", formula: "Q1 / Q2", q2: model.QuestionDefinition{Subtype: model.SubtypeShortText}, want: 60},
		{name: "text_additive", formula: "Q1 + Q2", q2: model.QuestionDefinition{Subtype: model.SubtypeShortText}, want: 1.6},
		{name: "unreferenced_question_ignored", formula: "Q1 * 10", q2: yesNo, want: 6},
		{name: "identifier_without_question", formula: "Q1 + Q5", q2: yesNo, want: 0.61},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EstimateMaximumScore(maxScoreAnnouncement(tt.formula, tt.q2))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEstimateMaximumScoreFailures(t *testing.T) {
	yesNo := model.QuestionDefinition{Subtype: model.SubtypeYesNo, YesWeight: 0.7, NoWeight: 0.2}

	_, err := EstimateMaximumScore(maxScoreAnnouncement("Q1 + (", yesNo))
	assert.ErrorIs(t, err, ErrMalformedFormula)

	_, err = EstimateMaximumScore(maxScoreAnnouncement("", yesNo))
	assert.ErrorIs(t, err, ErrMalformedFormula)

	zeroNo := model.QuestionDefinition{Subtype: model.SubtypeYesNo, YesWeight: 0.5, NoWeight: 0}
	_, err = EstimateMaximumScore(maxScoreAnnouncement("Q1 / Q2", zeroNo))
	assert.ErrorIs(t, err, ErrNonFiniteScore)
}

// Every reachable answer combination must score at most the estimated
// maximum for formulas built from + and * over non-negative weights.
func TestEstimateMaximumScoreBoundsAdditiveFormulas(t *testing.T) {
	q1 := *choiceQuestion(model.SubtypeSingleChoice, 0.1, 0.9, 0.4)
	q1.Identifier = "Q1"
	q2 := model.QuestionDefinition{Identifier: "Q2", Subtype: model.SubtypeYesNo, YesWeight: 0.3, NoWeight: 0.8}
	q3 := *choiceQuestion(model.SubtypeMultipleChoice, 0.25, 0.25, 0.5)
	q3.Identifier = "Q3"
	q4 := model.QuestionDefinition{Identifier: "Q4", Subtype: model.SubtypeNumber, ScoreBands: []model.ScoreBand{
		{Min: 0, Max: 10, Weight: 1}, {Min: 11, Max: 20, Weight: 0.5},
	}}

	formulas := []string{
		"Q1 + Q2 + Q3 + Q4",
		"Q1 * Q2 + Q3 * Q4",
		"(Q1 + Q2) * (Q3 + Q4) * 10",
		"Q1 * Q1 + 2 * Q3",
	}
	subsets := [][]string{{}, {"a"}, {"b"}, {"c"}, {"a", "b"}, {"a", "c"}, {"b", "c"}, {"a", "b", "c"}}

	for _, formula := range formulas {
		a := &model.Announcement{Formula: formula, Questions: []model.QuestionDefinition{q1, q2, q3, q4}}
		maximum, err := EstimateMaximumScore(a)
		require.NoError(t, err, formula)

		for _, single := range []string{"a", "b", "c"} {
			for _, yn := range []string{"sim", "nao"} {
				for _, subset := range subsets {
					for _, n := range []float64{5, 15, 50} {
						answers := []model.AnsweredQuestion{
							{QuestionID: "Q1", Answer: single},
							{QuestionID: "Q2", Answer: yn},
							{QuestionID: "Q3", Answer: subset},
							{QuestionID: "Q4", Answer: n},
						}
						_, score, err := ScoreApplication(answers, a.Questions, formula)
						require.NoError(t, err)
						assert.LessOrEqual(t, score, maximum+1e-9, "%s with %v", formula, answers)
					}
				}
			}
		}
	}
}
