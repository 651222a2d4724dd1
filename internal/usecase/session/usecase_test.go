package session_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/metrics"
	"github.com/futig/spec-copilot/internal/repository"
	"github.com/futig/spec-copilot/internal/usecase/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// countingTurns stores the number of handled turns under "turns" and
// finishes the conversation after finishAfter turns.
type countingTurns struct {
	finishAfter int
	fail        bool
	delay       time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
	sawTimer  atomic.Bool
}

func (h *countingTurns) HandleTurn(ctx context.Context, state entity.ConversationState, input string) (entity.ConversationState, string, error) {
	n := h.active.Add(1)
	defer h.active.Add(-1)
	for {
		cur := h.maxActive.Load()
		if n <= cur || h.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}

	if _, ok := ctx.Deadline(); ok {
		h.sawTimer.Store(true)
	}

	if h.delay > 0 {
		select {
		case <-time.After(h.delay):
		case <-ctx.Done():
		}
	}

	if h.fail {
		return state, "", fmt.Errorf("%w: broken", entity.ErrStateInconsistency)
	}

	next := state.Clone()
	count, _ := next.UserResponses["turns"].(int)
	next.UserResponses["turns"] = count + 1
	next.Messages = append(next.Messages, entity.Message{Role: entity.RoleUser, Content: input})

	if h.finishAfter > 0 && count+1 >= h.finishAfter {
		next.Phase = entity.PhaseDone
		next.IsFinal = true
		next.FinalSpec = &entity.FinalSpec{
			ThreadID:       next.ThreadID,
			FieldOrder:     []string{"title"},
			Fields:         map[string]any{"title": "Churn model"},
			ReasoningTrace: []entity.TraceSummary{{Field: "title", Source: "user_input: Churn model"}},
		}
	}

	return next, fmt.Sprintf("turn %d", count+1), nil
}

type recordingCallback struct {
	mu     sync.Mutex
	specs  []string
	errors []string
}

func (c *recordingCallback) SendFinalSpec(_ context.Context, _ string, threadID string, _ *entity.FinalSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs = append(c.specs, threadID)
}

func (c *recordingCallback) SendError(_ context.Context, _ string, threadID string, _ string, _ map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, threadID)
}

type fixedSchemas []entity.SchemaSummary

func (f fixedSchemas) Summaries() []entity.SchemaSummary { return f }

func newUsecase(t *testing.T, turns session.TurnHandler, cb session.CallbackConnector, timeout time.Duration) (*session.SessionUsecase, repository.ConversationRepository) {
	t.Helper()

	m, err := metrics.NewTurnMetrics(noop.NewMeterProvider())
	require.NoError(t, err)

	repo := repository.NewConversationMemory(0)
	uc := session.NewUsecase(repo, turns, fixedSchemas{{FieldCount: 3}}, cb, m, timeout, zap.NewNop())
	return uc, repo
}

func TestChatStartsNewThread(t *testing.T) {
	turns := &countingTurns{}
	uc, repo := newUsecase(t, turns, nil, time.Second)

	resp, err := uc.Chat(context.Background(), &entity.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ThreadID)
	assert.Equal(t, "turn 1", resp.Response)
	assert.Equal(t, entity.PhaseScoping, resp.Phase)
	assert.False(t, resp.IsFinal)
	assert.True(t, turns.sawTimer.Load())

	state, err := repo.Get(context.Background(), resp.ThreadID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.UserResponses["turns"])
}

func TestChatContinuesThread(t *testing.T) {
	uc, _ := newUsecase(t, &countingTurns{}, nil, time.Second)
	ctx := context.Background()

	first, err := uc.Chat(ctx, &entity.ChatRequest{Message: "one", ThreadID: "t-1"})
	require.NoError(t, err)
	second, err := uc.Chat(ctx, &entity.ChatRequest{Message: "two", ThreadID: first.ThreadID})
	require.NoError(t, err)

	assert.Equal(t, "t-1", second.ThreadID)
	assert.Equal(t, "turn 2", second.Response)

	conv, err := uc.GetConversation(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "two", conv.Messages[1].Content)
}

func TestChatFailureDiscardsState(t *testing.T) {
	turns := &countingTurns{}
	cb := &recordingCallback{}
	uc, repo := newUsecase(t, turns, cb, time.Second)
	ctx := context.Background()

	_, err := uc.Chat(ctx, &entity.ChatRequest{Message: "one", ThreadID: "t-2"})
	require.NoError(t, err)

	turns.fail = true
	_, err = uc.Chat(ctx, &entity.ChatRequest{Message: "two", ThreadID: "t-2", CallbackURL: "http://cb"})
	assert.ErrorIs(t, err, entity.ErrStateInconsistency)

	state, err := repo.Get(ctx, "t-2")
	require.NoError(t, err)
	assert.Equal(t, 1, state.UserResponses["turns"])
	assert.Equal(t, []string{"t-2"}, cb.errors)
}

func TestChatCancelledTurnIsNotSaved(t *testing.T) {
	turns := &countingTurns{delay: time.Second}
	uc, repo := newUsecase(t, turns, nil, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := uc.Chat(ctx, &entity.ChatRequest{Message: "slow", ThreadID: "t-3"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = repo.Get(context.Background(), "t-3")
	assert.ErrorIs(t, err, entity.ErrConversationNotFound)
}

func TestChatTurnTimeoutStillSaves(t *testing.T) {
	turns := &countingTurns{delay: time.Second}
	uc, repo := newUsecase(t, turns, nil, 20*time.Millisecond)

	resp, err := uc.Chat(context.Background(), &entity.ChatRequest{Message: "slow", ThreadID: "t-4"})
	require.NoError(t, err)
	assert.Equal(t, "turn 1", resp.Response)

	_, err = repo.Get(context.Background(), "t-4")
	assert.NoError(t, err)
}

func TestChatFinalSpecCallbackOnce(t *testing.T) {
	cb := &recordingCallback{}
	uc, _ := newUsecase(t, &countingTurns{finishAfter: 2}, cb, time.Second)
	ctx := context.Background()

	req := &entity.ChatRequest{Message: "x", ThreadID: "t-5", CallbackURL: "http://cb"}

	resp, err := uc.Chat(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.IsFinal)
	assert.Nil(t, resp.FinalSpec)

	resp, err = uc.Chat(ctx, req)
	require.NoError(t, err)
	assert.True(t, resp.IsFinal)
	assert.Equal(t, map[string]any{"title": "Churn model"}, resp.FinalSpec)
	require.Len(t, resp.ReasoningTrace, 1)

	_, err = uc.Chat(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, []string{"t-5"}, cb.specs)
}

func TestChatSerializesSameThread(t *testing.T) {
	turns := &countingTurns{delay: 5 * time.Millisecond}
	uc, repo := newUsecase(t, turns, nil, time.Second)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.Chat(context.Background(), &entity.ChatRequest{Message: fmt.Sprintf("m%d", i), ThreadID: "shared"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, turns.maxActive.Load())

	state, err := repo.Get(context.Background(), "shared")
	require.NoError(t, err)
	assert.Equal(t, n, state.UserResponses["turns"])
	assert.Len(t, state.Messages, n)
}

func TestChatDistinctThreadsRunInParallel(t *testing.T) {
	turns := &countingTurns{delay: 50 * time.Millisecond}
	uc, _ := newUsecase(t, turns, nil, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.Chat(context.Background(), &entity.ChatRequest{Message: "m", ThreadID: fmt.Sprintf("p-%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Greater(t, turns.maxActive.Load(), int32(1))
}

func TestGetFinalSpec(t *testing.T) {
	uc, _ := newUsecase(t, &countingTurns{finishAfter: 1}, nil, time.Second)
	ctx := context.Background()

	_, err := uc.GetFinalSpec(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrConversationNotFound)

	_, err = uc.Chat(ctx, &entity.ChatRequest{Message: "x", ThreadID: "t-6"})
	require.NoError(t, err)

	spec, err := uc.GetFinalSpec(ctx, "t-6")
	require.NoError(t, err)
	assert.Equal(t, "Churn model", spec.Fields["title"])
}

func TestGetFinalSpecNotFinished(t *testing.T) {
	uc, _ := newUsecase(t, &countingTurns{}, nil, time.Second)
	ctx := context.Background()

	_, err := uc.Chat(ctx, &entity.ChatRequest{Message: "x", ThreadID: "t-7"})
	require.NoError(t, err)

	_, err = uc.GetFinalSpec(ctx, "t-7")
	assert.ErrorIs(t, err, entity.ErrNoResult)
}

func TestResetConversation(t *testing.T) {
	uc, _ := newUsecase(t, &countingTurns{}, nil, time.Second)
	ctx := context.Background()

	_, err := uc.Chat(ctx, &entity.ChatRequest{Message: "x", ThreadID: "t-8"})
	require.NoError(t, err)
	require.NoError(t, uc.ResetConversation(ctx, "t-8"))

	_, err = uc.GetConversation(ctx, "t-8")
	assert.ErrorIs(t, err, entity.ErrConversationNotFound)

	resp, err := uc.Chat(ctx, &entity.ChatRequest{Message: "again", ThreadID: "t-8"})
	require.NoError(t, err)
	assert.Equal(t, "turn 1", resp.Response)

	assert.ErrorIs(t, uc.ResetConversation(ctx, "absent"), entity.ErrConversationNotFound)
}

func TestListSchemas(t *testing.T) {
	uc, _ := newUsecase(t, &countingTurns{}, nil, time.Second)
	assert.Len(t, uc.ListSchemas(context.Background()), 1)
}
