package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/futig/spec-copilot/internal/entity"
)

var _ ConversationRepository = &ConversationMemory{}

// ConversationMemory keeps conversations in process memory with an idle TTL.
// A zero TTL keeps entries until they are deleted.
type ConversationMemory struct {
	store *cache.Cache
	ttl   time.Duration
}

func NewConversationMemory(ttl time.Duration) *ConversationMemory {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	cleanup := ttl
	if ttl == cache.NoExpiration {
		cleanup = 0
	}

	return &ConversationMemory{
		store: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

func (r *ConversationMemory) Get(_ context.Context, threadID string) (*entity.ConversationState, error) {
	v, ok := r.store.Get(threadID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrConversationNotFound, threadID)
	}

	state := v.(entity.ConversationState)
	clone := state.Clone()
	return &clone, nil
}

func (r *ConversationMemory) Save(_ context.Context, state *entity.ConversationState) error {
	now := time.Now().UTC()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	state.UpdatedAt = now

	r.store.Set(state.ThreadID, state.Clone(), r.ttl)
	return nil
}

func (r *ConversationMemory) Delete(_ context.Context, threadID string) error {
	if _, ok := r.store.Get(threadID); !ok {
		return fmt.Errorf("%w: %s", entity.ErrConversationNotFound, threadID)
	}
	r.store.Delete(threadID)
	return nil
}
