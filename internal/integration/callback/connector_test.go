package callback_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/config"
	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/integration/callback"
	pkgRetry "github.com/futig/spec-copilot/internal/pkg/retry"
)

func TestSendFinalSpec(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "thread-1", r.Header.Get("X-Thread-ID"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		received <- body
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := callback.NewConnector(config.CallbackConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{RequestTimeout: time.Second, ConnTimeout: time.Second},
		Retry:            pkgRetry.RetryConfig{Attempts: 1, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}, zap.NewNop())

	c.SendFinalSpec(context.Background(), srv.URL, "thread-1", &entity.FinalSpec{ThreadID: "thread-1"})

	body := <-received
	assert.Equal(t, "finalSpec", body["event"])
	assert.NotEmpty(t, body["timestamp"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "thread-1", data["thread_id"])
}
