package scoring

import (
	"math"
	"regexp"

	"bolsas/internal/model"
)

// Usage describes how a formula combines an identifier
type Usage int

const (
	UsageAdditive Usage = iota
	UsageSubtracted
	UsageDivisionNumerator
	UsageDivisionDenominator
)

func (u Usage) String() string {
	switch u {
	case UsageSubtracted:
		return "subtracted"
	case UsageDivisionNumerator:
		return "division_numerator"
	case UsageDivisionDenominator:
		return "division_denominator"
	}
	return "additive"
}

// ClassifyUsage looks at the operator right before and right after every
// occurrence of identifier. When occurrences disagree the last one wins.
// Context is only one token deep: "Q1 / (Q2 + Q3)" classifies Q2 as additive.
func ClassifyUsage(formula, identifier string) Usage {
	if identifier == "" {
		return UsageAdditive
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(identifier) + `\b`)
	if err != nil {
		return UsageAdditive
	}

	usage := UsageAdditive
	for _, loc := range re.FindAllStringIndex(formula, -1) {
		before := prevNonSpace(formula, loc[0])
		after := nextNonSpace(formula, loc[1])
		switch {
		case before == '/':
			usage = UsageDivisionDenominator
		case after == '/':
			usage = UsageDivisionNumerator
		case before == '-':
			usage = UsageSubtracted
		default:
			usage = UsageAdditive
		}
	}
	return usage
}

func prevNonSpace(s string, i int) byte {
	for i--; i >= 0; i-- {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

func nextNonSpace(s string, i int) byte {
	for ; i < len(s); i++ {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// MaxWeight is the best weight an answer to q can receive. Every option of a
// multiple_choice question may be selected, so their weights are summed.
func MaxWeight(q *model.QuestionDefinition) float64 {
	switch q.Subtype {
	case model.SubtypeYesNo:
		return math.Max(q.YesWeight, q.NoWeight)
	case model.SubtypeSingleChoice:
		best := 0.0
		for _, op := range q.ChoiceOptions {
			best = math.Max(best, op.Weight)
		}
		return best
	case model.SubtypeMultipleChoice:
		sum := 0.0
		for _, op := range q.ChoiceOptions {
			sum += op.Weight
		}
		return sum
	case model.SubtypeNumber, model.SubtypeLikertScale:
		best := 0.0
		for _, band := range q.ScoreBands {
			best = math.Max(best, band.Weight)
		}
		return best
	}
	return 1
}

// MinWeight is the worst weight an answer to q can receive. Questions without
// options or bands yield 0.
func MinWeight(q *model.QuestionDefinition) float64 {
	switch q.Subtype {
	case model.SubtypeYesNo:
		return math.Min(q.YesWeight, q.NoWeight)
	case model.SubtypeSingleChoice, model.SubtypeMultipleChoice:
		if len(q.ChoiceOptions) == 0 {
			return 0
		}
		worst := math.Inf(1)
		for _, op := range q.ChoiceOptions {
			worst = math.Min(worst, op.Weight)
		}
		return worst
	case model.SubtypeNumber, model.SubtypeLikertScale:
		if len(q.ScoreBands) == 0 {
			return 0
		}
		worst := math.Inf(1)
		for _, band := range q.ScoreBands {
			worst = math.Min(worst, band.Weight)
		}
		return worst
	}
	return 0
}

// ExtremalWeight picks the weight that pushes the formula towards its maximum:
// the minimum for subtracted terms and denominators, the maximum otherwise.
// Text questions are scored 0..1 by hand.
func ExtremalWeight(q *model.QuestionDefinition, u Usage) float64 {
	text := q.Subtype.IsText()
	switch u {
	case UsageSubtracted:
		if text {
			return 0
		}
		return MinWeight(q)
	case UsageDivisionDenominator:
		if text {
			return FallbackWeight
		}
		return MinWeight(q)
	}
	if text {
		return 1
	}
	return MaxWeight(q)
}

// ExtremalWeights builds the best-case weight map for a's formula
func ExtremalWeights(a *model.Announcement) map[string]float64 {
	weights := make(map[string]float64)
	for _, id := range ExtractIdentifiers(a.Formula) {
		q := a.Question(id)
		if q == nil {
			continue
		}
		weights[id] = ExtremalWeight(q, ClassifyUsage(a.Formula, id))
	}
	return weights
}

// EstimateMaximumScore evaluates a's formula under the best-case weight of every
// question. A non-finite result is returned together with ErrNonFiniteScore.
func EstimateMaximumScore(a *model.Announcement) (float64, error) {
	v, err := Evaluate(a.Formula, ExtremalWeights(a))
	if err != nil {
		return 0, err
	}
	if !Finite(v) {
		return v, ErrNonFiniteScore
	}
	return v, nil
}
