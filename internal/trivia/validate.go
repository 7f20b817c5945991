// Package trivia turns untrusted JSON-shaped values into trivia sets.
package trivia

import (
	"chat-trivia-service/internal/domain"
	"chat-trivia-service/internal/textjson"
)

// IsTriviaSet reports whether value is an object with a non-empty "questions"
// array whose entries each carry a string question, a string correct answer,
// and an array of string distractors. Nothing else is checked.
func IsTriviaSet(value any) bool {
	obj, ok := value.(map[string]any)
	if !ok {
		return false
	}
	questions, ok := obj["questions"].([]any)
	if !ok || len(questions) == 0 {
		return false
	}
	for _, raw := range questions {
		if !isTriviaQuestion(raw) {
			return false
		}
	}
	return true
}

func isTriviaQuestion(raw any) bool {
	q, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	if _, ok := q["question"].(string); !ok {
		return false
	}
	if _, ok := q["correct"].(string); !ok {
		return false
	}
	incorrect, ok := q["incorrect"].([]any)
	if !ok {
		return false
	}
	for _, item := range incorrect {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}

// Decode converts a value accepted by IsTriviaSet into a TriviaSet. Title and
// description are copied only when they are strings.
func Decode(value any) (domain.TriviaSet, bool) {
	if !IsTriviaSet(value) {
		return domain.TriviaSet{}, false
	}
	obj := value.(map[string]any)

	set := domain.TriviaSet{}
	set.Title, _ = obj["title"].(string)
	set.Description, _ = obj["description"].(string)

	for _, raw := range obj["questions"].([]any) {
		q := raw.(map[string]any)
		rawIncorrect := q["incorrect"].([]any)
		incorrect := make([]string, 0, len(rawIncorrect))
		for _, item := range rawIncorrect {
			incorrect = append(incorrect, item.(string))
		}
		set.Questions = append(set.Questions, domain.TriviaQuestion{
			Question:  q["question"].(string),
			Correct:   q["correct"].(string),
			Incorrect: incorrect,
		})
	}
	return set, true
}

// Parse runs free text through extraction and validation.
func Parse(text string) (domain.TriviaSet, error) {
	value, ok := textjson.Extract(text)
	if !ok {
		return domain.TriviaSet{}, domain.ErrNoJSON
	}
	set, ok := Decode(value)
	if !ok {
		return domain.TriviaSet{}, domain.ErrInvalidTriviaSet
	}
	return set, nil
}
