package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/futig/spec-copilot/internal/entity"
)

const (
	getConversationQuery = `SELECT state, created_at, updated_at FROM conversations WHERE thread_id = $1`

	upsertConversationQuery = `
INSERT INTO conversations (thread_id, phase, is_final, state, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
ON CONFLICT (thread_id) DO UPDATE
SET phase = EXCLUDED.phase,
    is_final = EXCLUDED.is_final,
    state = EXCLUDED.state,
    updated_at = NOW()
RETURNING created_at, updated_at`

	deleteConversationQuery = `DELETE FROM conversations WHERE thread_id = $1`
)

var _ ConversationRepository = &ConversationPostgres{}

// ConversationPostgres stores each conversation as a JSONB document
type ConversationPostgres struct {
	db *pgxpool.Pool
}

func NewConversationPostgres(db *pgxpool.Pool) *ConversationPostgres {
	return &ConversationPostgres{
		db: db,
	}
}

func (r *ConversationPostgres) Get(ctx context.Context, threadID string) (*entity.ConversationState, error) {
	var (
		raw   []byte
		state entity.ConversationState
	)

	row := r.db.QueryRow(ctx, getConversationQuery, threadID)
	if err := row.Scan(&raw, &state.CreatedAt, &state.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", entity.ErrConversationNotFound, threadID)
		}
		return nil, fmt.Errorf("query conversation: %w", err)
	}

	createdAt, updatedAt := state.CreatedAt, state.UpdatedAt
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode conversation state: %w", err)
	}
	state.CreatedAt, state.UpdatedAt = createdAt, updatedAt

	return &state, nil
}

func (r *ConversationPostgres) Save(ctx context.Context, state *entity.ConversationState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode conversation state: %w", err)
	}

	row := r.db.QueryRow(ctx, upsertConversationQuery, state.ThreadID, string(state.Phase), state.IsFinal, raw)
	if err := row.Scan(&state.CreatedAt, &state.UpdatedAt); err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}

	return nil
}

func (r *ConversationPostgres) Delete(ctx context.Context, threadID string) error {
	tag, err := r.db.Exec(ctx, deleteConversationQuery, threadID)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", entity.ErrConversationNotFound, threadID)
	}
	return nil
}
