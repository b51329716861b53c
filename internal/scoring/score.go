package scoring

import "bolsas/internal/model"

// ResolveAnswers pairs each answer with its question and fills in the weight.
// Answers referencing unknown questions are dropped. For text subtypes the
// answer's current Weight is kept as the reviewer's manual weight.
func ResolveAnswers(answers []model.AnsweredQuestion, questions []model.QuestionDefinition) []model.AnsweredQuestion {
	resolved := make([]model.AnsweredQuestion, 0, len(answers))
	for _, ans := range answers {
		q := findQuestion(questions, ans.QuestionID)
		if q == nil {
			continue
		}
		resolved = append(resolved, model.AnsweredQuestion{
			QuestionID: q.Identifier,
			Subtype:    q.Subtype,
			Answer:     ans.Answer,
			Weight:     ResolveWeight(q, ans.Answer, ans.Weight),
		})
	}
	return resolved
}

// WeightMap indexes resolved weights by question identifier; the first answer wins
func WeightMap(answers []model.AnsweredQuestion) map[string]float64 {
	weights := make(map[string]float64, len(answers))
	for _, ans := range answers {
		if _, ok := weights[ans.QuestionID]; !ok {
			weights[ans.QuestionID] = ans.Weight
		}
	}
	return weights
}

// ScoreApplication resolves every answer's weight and evaluates formula.
// The weighted answers are always returned; when the formula cannot be
// evaluated, or evaluates to Inf/NaN, the score is 0 and err says why.
func ScoreApplication(answers []model.AnsweredQuestion, questions []model.QuestionDefinition, formula string) ([]model.AnsweredQuestion, float64, error) {
	resolved := ResolveAnswers(answers, questions)
	score, err := Evaluate(formula, WeightMap(resolved))
	if err != nil {
		return resolved, 0, err
	}
	if !Finite(score) {
		return resolved, 0, ErrNonFiniteScore
	}
	return resolved, score, nil
}

func findQuestion(questions []model.QuestionDefinition, id string) *model.QuestionDefinition {
	for i := range questions {
		if questions[i].Identifier == id {
			return &questions[i]
		}
	}
	return nil
}
