package conversation_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/api"
	conversationapi "github.com/futig/spec-copilot/internal/api/conversation"
	"github.com/futig/spec-copilot/internal/config"
	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/pkg/validator"
)

type stubUsecase struct {
	chatReq   *entity.ChatRequest
	chatErr   error
	spec      *entity.FinalSpec
	specErr   error
	resetErr  error
	resetCall string
}

func (s *stubUsecase) Chat(_ context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	s.chatReq = req
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	threadID := req.ThreadID
	if threadID == "" {
		threadID = "generated"
	}
	return &entity.ChatResponse{Response: "ok", ThreadID: threadID, Phase: entity.PhaseScoping}, nil
}

func (s *stubUsecase) GetConversation(_ context.Context, threadID string) (*entity.ConversationDTO, error) {
	if threadID == "missing" {
		return nil, entity.ErrConversationNotFound
	}
	return &entity.ConversationDTO{ThreadID: threadID, Phase: entity.PhaseFieldQuestions}, nil
}

func (s *stubUsecase) GetFinalSpec(context.Context, string) (*entity.FinalSpec, error) {
	return s.spec, s.specErr
}

func (s *stubUsecase) ResetConversation(_ context.Context, threadID string) error {
	s.resetCall = threadID
	return s.resetErr
}

func (s *stubUsecase) ListSchemas(context.Context) []entity.SchemaSummary {
	return []entity.SchemaSummary{{
		SchemaKey:  entity.SchemaKey{Platform: entity.PlatformKaggle, ChallengeType: entity.ChallengeTypeDataScience},
		FieldCount: 7,
	}}
}

func newServer(t *testing.T, uc *stubUsecase) *httptest.Server {
	t.Helper()

	h := conversationapi.NewHandler(uc, validator.NewValidator(config.ConversationConfig{MaxMessageLength: 100}))
	srv := httptest.NewServer(api.SetupRouter(h, 5*time.Second, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func TestChat(t *testing.T) {
	uc := &stubUsecase{}
	srv := newServer(t, uc)

	resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(`{"message":"Build an API","thread_id":"t-1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body entity.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "t-1", body.ThreadID)
	assert.Equal(t, "ok", body.Response)
	assert.Equal(t, "Build an API", uc.chatReq.Message)
}

func TestChatBadRequests(t *testing.T) {
	srv := newServer(t, &stubUsecase{})

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"bad thread", `{"message":"x","thread_id":"a b"}`},
		{"too long", `{"message":"` + strings.Repeat("a", 101) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestChatInternalErrorHidesDetails(t *testing.T) {
	srv := newServer(t, &stubUsecase{chatErr: errors.Join(entity.ErrStateInconsistency, errors.New("secret detail"))})

	resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(`{"message":"x"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body entity.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotContains(t, body.Message, "secret")
}

func TestGetConversation(t *testing.T) {
	srv := newServer(t, &stubUsecase{})

	resp, err := http.Get(srv.URL + "/conversations/t-9")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	missing, err := http.Get(srv.URL + "/conversations/missing")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestGetFinalSpec(t *testing.T) {
	uc := &stubUsecase{spec: &entity.FinalSpec{
		ThreadID:   "t-1",
		FieldOrder: []string{"title"},
		Fields:     map[string]any{"title": "Churn model"},
	}}
	srv := newServer(t, uc)

	resp, err := http.Get(srv.URL + "/conversations/t-1/spec?format=json")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "challenge-spec-t-1.json")

	bad, err := http.Get(srv.URL + "/conversations/t-1/spec?format=rtf")
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestGetFinalSpecNotReady(t *testing.T) {
	srv := newServer(t, &stubUsecase{specErr: entity.ErrNoResult})

	resp, err := http.Get(srv.URL + "/conversations/t-1/spec")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDeleteConversation(t *testing.T) {
	uc := &stubUsecase{}
	srv := newServer(t, uc)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/conversations/t-3", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "t-3", uc.resetCall)
}

func TestListSchemas(t *testing.T) {
	srv := newServer(t, &stubUsecase{})

	resp, err := http.Get(srv.URL + "/schemas")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body entity.ListSchemasResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Schemas, 1)
	assert.Equal(t, entity.PlatformKaggle, body.Schemas[0].Platform)
}

func TestHealth(t *testing.T) {
	srv := newServer(t, &stubUsecase{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
