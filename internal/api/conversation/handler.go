package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/entity"
	"github.com/futig/spec-copilot/internal/pkg/formatter"
	"github.com/futig/spec-copilot/internal/pkg/logger"
	"github.com/futig/spec-copilot/internal/pkg/response"
	"github.com/futig/spec-copilot/internal/pkg/validator"
)

const maxChatBodySize = 1 << 20

type Handler struct {
	usecase    SessionUsecase
	validator  *validator.Validator
	formatters *formatter.Factory
}

func NewHandler(
	usecase SessionUsecase,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		usecase:    usecase,
		validator:  validator,
		formatters: formatter.NewFactory(),
	}
}

// Chat handles POST /chat - Run one conversation turn
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	var req entity.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodySize)).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateChat(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	resp, err := h.usecase.Chat(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "turn handled",
		zap.String("thread_id", resp.ThreadID),
		zap.String("phase", string(resp.Phase)),
		zap.Bool("is_final", resp.IsFinal),
	)

	response.Success(w, resp)
}

// GetConversation handles GET /conversations/{thread_id}
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	ctx, threadID, ok := h.threadParam(w, r, "GetConversation")
	if !ok {
		return
	}

	conv, err := h.usecase.GetConversation(ctx, threadID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, conv)
}

// GetFinalSpec handles GET /conversations/{thread_id}/spec?format= - Export the final spec
func (h *Handler) GetFinalSpec(w http.ResponseWriter, r *http.Request) {
	ctx, threadID, ok := h.threadParam(w, r, "GetFinalSpec")
	if !ok {
		return
	}

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = string(entity.FormatMarkdown)
	}

	format := entity.ResultFormat(formatParam)
	if !format.IsValid() {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid format parameter",
			fmt.Errorf("%w: format must be one of: markdown, json, docx, pdf", entity.ErrInvalidFormat))
		return
	}

	ctx = logger.AddFields(ctx, zap.String("format", string(format)))

	spec, err := h.usecase.GetFinalSpec(ctx, threadID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	fmtr, err := h.formatters.Create(format)
	if err != nil {
		h.respondError(ctx, w, http.StatusNotImplemented, "format not implemented", err)
		return
	}

	body, err := fmtr.Format(spec)
	if err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to format specification", err)
		return
	}

	ctxzap.Info(ctx, "final spec exported", zap.Int("bytes", len(body)))

	w.Header().Set("Content-Type", fmtr.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"challenge-spec-%s%s\"", threadID, fmtr.FileExtension()))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// DeleteConversation handles DELETE /conversations/{thread_id}
func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	ctx, threadID, ok := h.threadParam(w, r, "DeleteConversation")
	if !ok {
		return
	}

	if err := h.usecase.ResetConversation(ctx, threadID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, entity.DeleteConversationResponse{Status: "deleted"})
}

// ListSchemas handles GET /schemas
func (h *Handler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListSchemas")

	response.Success(w, entity.ListSchemasResponse{Schemas: h.usecase.ListSchemas(ctx)})
}

func (h *Handler) threadParam(w http.ResponseWriter, r *http.Request, action string) (context.Context, string, bool) {
	threadID := chi.URLParam(r, "thread_id")
	ctx := logger.WithThread(logger.WithAction(r.Context(), action), threadID)

	if err := h.validator.ValidateThreadID(threadID); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid thread_id", err)
		return ctx, "", false
	}

	return ctx, threadID, true
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}

	// Internal details are only exposed for client errors.
	detail := message
	if status < http.StatusInternalServerError && err != nil {
		detail = err.Error()
	}

	response.Error(w, status, detail)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrConversationNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "conversation not found", err)
	case errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrInvalidFormat) || errors.Is(err, entity.ErrMissingField):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, entity.ErrNoResult):
		h.respondError(ctx, w, http.StatusConflict, "specification is not ready", err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		h.respondError(ctx, w, http.StatusServiceUnavailable, "request cancelled", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
