// Package scoring turns questionnaire answers into weights and evaluates
// announcement formulas over them. It is pure: no I/O, no logging, no shared state.
package scoring

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"bolsas/internal/model"
)

// FallbackWeight keeps missing or zero values from collapsing a formula through
// a zero denominator.
const FallbackWeight = 0.01

// YesAnswer is the stored form of an affirmative yes_no answer
const YesAnswer = "sim"

// ResolveWeight maps one answer to the weight it contributes. Text subtypes are
// never auto-scored: previous (the reviewer's weight) is returned unchanged.
// Lookup failures degrade to 0 (or FallbackWeight) and never panic.
func ResolveWeight(q *model.QuestionDefinition, raw interface{}, previous float64) float64 {
	switch q.Subtype {
	case model.SubtypeYesNo:
		if isYes(raw) {
			return q.YesWeight
		}
		return q.NoWeight

	case model.SubtypeSingleChoice:
		op, ok := q.Option(answerString(raw))
		if !ok {
			return 0
		}
		return op.Weight

	case model.SubtypeMultipleChoice:
		sum := 0.0
		for _, id := range answerList(raw) {
			if op, ok := q.Option(id); ok {
				sum += op.Weight
			}
		}
		return sum

	case model.SubtypeNumber, model.SubtypeLikertScale:
		value := answerNumber(raw)
		if len(q.ScoreBands) > 0 {
			for _, band := range q.ScoreBands {
				if value >= band.Min && value <= band.Max {
					return band.Weight
				}
			}
			return 0
		}
		if value == 0 {
			return FallbackWeight
		}
		return value

	case model.SubtypeShortText, model.SubtypeLongText:
		return previous

	default:
		return FallbackWeight
	}
}

func isYes(raw interface{}) bool {
	if b, ok := raw.(bool); ok {
		return b
	}
	return answerString(raw) == YesAnswer
}

func answerString(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// answerList accepts []string as well as decoded JSON/BSON arrays
func answerList(raw interface{}) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	ids := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if s := answerString(rv.Index(i).Interface()); s != "" {
			ids = append(ids, s)
		}
	}
	return ids
}

// answerNumber coerces an answer to a number; anything non-numeric becomes 0
func answerNumber(raw interface{}) float64 {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		f, _ = v.Float64()
	case bool:
		if v {
			f = 1
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
