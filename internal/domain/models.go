package domain

// TriviaQuestion is one multiple-choice question: the correct answer plus its distractors.
type TriviaQuestion struct {
	Question  string   `json:"question"`
	Correct   string   `json:"correct"`
	Incorrect []string `json:"incorrect"`
}

// Choices returns the candidate answers, correct first. Duplicates are kept.
func (q TriviaQuestion) Choices() []string {
	out := make([]string, 0, len(q.Incorrect)+1)
	out = append(out, q.Correct)
	return append(out, q.Incorrect...)
}

// TriviaSet is an ordered collection of questions with optional display metadata.
type TriviaSet struct {
	ID          string           `json:"id,omitempty"`
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	Questions   []TriviaQuestion `json:"questions"`
}

// Toast is a transient notification shown to the player.
type Toast struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}
