package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/repository"
)

func TestConversationMemorySaveGet(t *testing.T) {
	repo := repository.NewConversationMemory(time.Hour)
	ctx := context.Background()

	state := entity.NewConversationState("t-1")
	state.UserResponses["title"] = "Churn model"
	require.NoError(t, repo.Save(ctx, &state))

	got, err := repo.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "Churn model", got.UserResponses["title"])

	got.UserResponses["title"] = "mutated"
	again, err := repo.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "Churn model", again.UserResponses["title"])
}

func TestConversationMemoryNotFound(t *testing.T) {
	repo := repository.NewConversationMemory(0)

	_, err := repo.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, entity.ErrConversationNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), "absent"), entity.ErrConversationNotFound)
}

func TestConversationMemoryDelete(t *testing.T) {
	repo := repository.NewConversationMemory(time.Hour)
	ctx := context.Background()

	state := entity.NewConversationState("t-2")
	require.NoError(t, repo.Save(ctx, &state))
	require.NoError(t, repo.Delete(ctx, "t-2"))

	_, err := repo.Get(ctx, "t-2")
	assert.ErrorIs(t, err, entity.ErrConversationNotFound)
}

func TestConversationMemoryExpires(t *testing.T) {
	repo := repository.NewConversationMemory(20 * time.Millisecond)
	ctx := context.Background()

	state := entity.NewConversationState("t-3")
	require.NoError(t, repo.Save(ctx, &state))

	assert.Eventually(t, func() bool {
		_, err := repo.Get(ctx, "t-3")
		return err != nil
	}, time.Second, 10*time.Millisecond)
}
