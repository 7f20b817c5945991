// Package quiz holds the play-session state machine for a single trivia set and
// the celebratory animation shown after a perfect run.
package quiz

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"chat-trivia-service/internal/domain"
)

// Notifier receives the result summary when a session finishes.
type Notifier interface {
	Notify(title, description string)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(title, description string)

func (f NotifierFunc) Notify(title, description string) { f(title, description) }

// Phase is the coarse lifecycle state of a session.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseActive     Phase = "active"
	PhaseFinished   Phase = "finished"
)

const notStarted = -1

// Outcome describes the transition produced by Advance.
type Outcome struct {
	Finished bool
	Score    int
	Total    int
	Perfect  bool
}

// Snapshot is the render view of a session.
type Snapshot struct {
	Phase            Phase    `json:"phase"`
	Title            string   `json:"title,omitempty"`
	Description      string   `json:"description,omitempty"`
	CurrentIndex     int      `json:"currentIndex"`
	Total            int      `json:"total"`
	Question         string   `json:"question,omitempty"`
	PresentedChoices []string `json:"presentedChoices,omitempty"`
	SelectedAnswer   *string  `json:"selectedAnswer"`
	AnswerRevealed   bool     `json:"answerRevealed"`
	CorrectAnswer    string   `json:"correctAnswer,omitempty"` // empty until revealed
	Score            int      `json:"score"`
	Percent          int      `json:"percent"`
	Perfect          bool     `json:"perfect"`
}

// Option customizes a Session.
type Option func(*Session)

// WithRand fixes the random source used to order answer choices.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Session) { s.rnd = rnd }
}

// Session walks a player through one trivia set. Calls outside the allowed
// transitions are ignored and reported as not applied; they never fail.
type Session struct {
	set      domain.TriviaSet
	notifier Notifier

	mu           sync.Mutex
	rnd          *rand.Rand
	currentIndex int
	selected     *string
	revealed     bool
	score        int
	choices      []string
	perfect      bool
}

// NewSession binds a session to set. The set must contain at least one question.
func NewSession(set domain.TriviaSet, notifier Notifier, opts ...Option) (*Session, error) {
	if len(set.Questions) == 0 {
		return nil, domain.ErrEmptyTriviaSet
	}
	s := &Session{
		set:          set,
		notifier:     notifier,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
		currentIndex: notStarted,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start moves a fresh session to the first question.
func (s *Session) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentIndex != notStarted {
		return false
	}
	s.enterQuestionLocked(0)
	return true
}

// SelectAnswer records the player's choice for the active question and reveals
// it. A choice that is not on offer, or a second answer to the same question,
// is ignored.
func (s *Session) SelectAnswer(choice string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked() || s.revealed || !s.offeredLocked(choice) {
		return false
	}
	s.selected = &choice
	if choice == s.set.Questions[s.currentIndex].Correct {
		s.score++
	}
	s.revealed = true
	return true
}

// Advance moves past a revealed question. Leaving the last question finishes
// the session and sends the result to the notifier.
func (s *Session) Advance() (Outcome, bool) {
	s.mu.Lock()
	if !s.activeLocked() || !s.revealed {
		s.mu.Unlock()
		return Outcome{}, false
	}

	total := len(s.set.Questions)
	next := s.currentIndex + 1
	if next < total {
		s.enterQuestionLocked(next)
		out := Outcome{Score: s.score, Total: total}
		s.mu.Unlock()
		return out, true
	}

	s.currentIndex = total
	s.selected = nil
	s.revealed = false
	s.choices = nil
	s.perfect = s.score == total
	out := Outcome{Finished: true, Score: s.score, Total: total, Perfect: s.perfect}
	s.mu.Unlock()

	if s.notifier != nil {
		title := "Quiz complete"
		if out.Perfect {
			title = "Perfect score!"
		}
		s.notifier.Notify(title, fmt.Sprintf("You scored %d out of %d", out.Score, out.Total))
	}
	return out, true
}

// Restart returns the session to its not-started state from anywhere.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentIndex = notStarted
	s.selected = nil
	s.revealed = false
	s.score = 0
	s.choices = nil
	s.perfect = false
}

// Snapshot returns the current render state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.set.Questions)
	snap := Snapshot{
		Title:          s.set.Title,
		Description:    s.set.Description,
		CurrentIndex:   s.currentIndex,
		Total:          total,
		AnswerRevealed: s.revealed,
		Score:          s.score,
		Perfect:        s.perfect,
	}
	switch {
	case s.currentIndex == notStarted:
		snap.Phase = PhaseNotStarted
	case s.currentIndex >= total:
		snap.Phase = PhaseFinished
		snap.Percent = int(math.Round(float64(s.score) * 100 / float64(total)))
	default:
		q := s.set.Questions[s.currentIndex]
		snap.Phase = PhaseActive
		snap.Question = q.Question
		snap.PresentedChoices = append([]string(nil), s.choices...)
		if s.selected != nil {
			selected := *s.selected
			snap.SelectedAnswer = &selected
		}
		if s.revealed {
			snap.CorrectAnswer = q.Correct
		}
		snap.Percent = s.progressPercentLocked()
	}
	return snap
}

// progressPercentLocked rates the score against the questions attempted so far,
// counting the current one once an answer is chosen.
func (s *Session) progressPercentLocked() int {
	attempted := s.currentIndex
	if s.selected != nil {
		attempted++
	}
	if attempted < 1 {
		attempted = 1
	}
	return int(math.Round(float64(s.score) * 100 / float64(attempted)))
}

// enterQuestionLocked fixes the choice order once per question entry.
func (s *Session) enterQuestionLocked(index int) {
	s.currentIndex = index
	s.selected = nil
	s.revealed = false
	choices := s.set.Questions[index].Choices()
	s.rnd.Shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })
	s.choices = choices
}

func (s *Session) activeLocked() bool {
	return s.currentIndex >= 0 && s.currentIndex < len(s.set.Questions)
}

func (s *Session) offeredLocked(choice string) bool {
	for _, c := range s.choices {
		if c == choice {
			return true
		}
	}
	return false
}
