package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"chat-trivia-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// TriviaLoader loads and stores trivia sets as JSONB in Postgres.
type TriviaLoader struct {
	pool *pgxpool.Pool
}

func NewTriviaLoader(pool *pgxpool.Pool) *TriviaLoader {
	return &TriviaLoader{pool: pool}
}

func (l *TriviaLoader) LoadSet(ctx context.Context, id string) (domain.TriviaSet, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM trivia_sets WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TriviaSet{}, domain.ErrTriviaSetNotFound
	}
	if err != nil {
		return domain.TriviaSet{}, fmt.Errorf("load trivia set: %w", err)
	}
	var set domain.TriviaSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return domain.TriviaSet{}, fmt.Errorf("unmarshal trivia set: %w", err)
	}
	set.ID = id
	return set, nil
}

func (l *TriviaLoader) SaveSet(ctx context.Context, set domain.TriviaSet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal trivia set: %w", err)
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO trivia_sets (id, title, data) VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, data=EXCLUDED.data`,
		set.ID, set.Title, string(data))
	if err != nil {
		return fmt.Errorf("save trivia set: %w", err)
	}
	return nil
}
