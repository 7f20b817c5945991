package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chat-trivia-service/internal/domain"
	"chat-trivia-service/internal/quiz"
	"chat-trivia-service/internal/trivia"
	"github.com/google/uuid"
)

// SessionRepository abstracts where open play sessions live (in-memory, Redis, etc).
type SessionRepository interface {
	Put(id string, session *quiz.Session)
	Get(id string) (*quiz.Session, bool)
	Delete(id string)
}

// TriviaRepository stores and loads trivia sets (through a cache).
type TriviaRepository interface {
	GetSet(ctx context.Context, id string) (domain.TriviaSet, error)
	SaveSet(ctx context.Context, set domain.TriviaSet) error
}

// Generator produces free-form model text for a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// TriviaService contains the trivia use cases: storing sets parsed from chat
// text, generating sets, and hosting play sessions.
type TriviaService struct {
	sets        TriviaRepository
	sessions    SessionRepository
	generator   Generator
	sessionOpts []quiz.Option
}

// NewTriviaService wires the service. generator may be nil.
func NewTriviaService(sets TriviaRepository, sessions SessionRepository, generator Generator, opts ...quiz.Option) *TriviaService {
	return &TriviaService{sets: sets, sessions: sessions, generator: generator, sessionOpts: opts}
}

// SaveFromText recovers a trivia set from text (e.g. a model reply) and stores it.
func (s *TriviaService) SaveFromText(ctx context.Context, text string) (domain.TriviaSet, error) {
	set, err := trivia.Parse(text)
	if err != nil {
		return domain.TriviaSet{}, err
	}
	return s.Save(ctx, set)
}

// Save assigns an id to the set and stores it.
func (s *TriviaService) Save(ctx context.Context, set domain.TriviaSet) (domain.TriviaSet, error) {
	if len(set.Questions) == 0 {
		return domain.TriviaSet{}, domain.ErrEmptyTriviaSet
	}
	set.ID = uuid.NewString()
	if err := s.sets.SaveSet(ctx, set); err != nil {
		return domain.TriviaSet{}, fmt.Errorf("save trivia set: %w", err)
	}
	return set, nil
}

// GetSet loads a stored set.
func (s *TriviaService) GetSet(ctx context.Context, id string) (domain.TriviaSet, error) {
	return s.sets.GetSet(ctx, id)
}

// Generate asks the model for count questions about topic and stores the result.
func (s *TriviaService) Generate(ctx context.Context, topic string, count int) (domain.TriviaSet, error) {
	if s.generator == nil {
		return domain.TriviaSet{}, domain.ErrGeneratorDisabled
	}
	if count <= 0 {
		count = 5
	}
	text, err := s.generator.GenerateText(ctx, BuildTriviaPrompt(topic, count))
	if err != nil {
		if errors.Is(err, domain.ErrGeneratorDisabled) {
			return domain.TriviaSet{}, err
		}
		return domain.TriviaSet{}, fmt.Errorf("generate trivia: %w", err)
	}
	return s.SaveFromText(ctx, text)
}

// OpenSession starts hosting a play session for a stored set. Toasts for the
// session go to notifier.
func (s *TriviaService) OpenSession(ctx context.Context, setID string, notifier quiz.Notifier) (string, *quiz.Session, error) {
	set, err := s.sets.GetSet(ctx, setID)
	if err != nil {
		return "", nil, err
	}
	session, err := quiz.NewSession(set, notifier, s.sessionOpts...)
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()
	s.sessions.Put(id, session)
	return id, session, nil
}

// Session looks up an open session.
func (s *TriviaService) Session(id string) (*quiz.Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// CloseSession forgets a session; closing an unknown id is a no-op.
func (s *TriviaService) CloseSession(id string) {
	s.sessions.Delete(id)
}

// BuildTriviaPrompt asks for a trivia set in the shape trivia.Parse accepts.
func BuildTriviaPrompt(topic string, count int) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "general knowledge"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d multiple-choice trivia questions about %s.\n", count, topic)
	b.WriteString("Each question has exactly one correct answer and three plausible distractors.\n")
	b.WriteString("Reply with JSON only, in this format:\n")
	b.WriteString(`{"title": "...", "description": "...", "questions": [{"question": "...", "correct": "...", "incorrect": ["...", "...", "..."]}]}`)
	b.WriteString("\n")
	return b.String()
}
