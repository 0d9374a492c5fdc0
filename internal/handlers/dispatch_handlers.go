// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
)

// DispatchTrigger runs the dispatch pipeline on demand.
type DispatchTrigger interface {
	Trigger(ctx context.Context) (*models.DispatchReport, error)
}

// errorReply is the reply body of a failed on-demand run.
type errorReply struct {
	Error string `json:"error"`
}

// DispatchHandler handles dispatch-related NATS messages.
type DispatchHandler struct {
	trigger DispatchTrigger
}

// Ensure that DispatchHandler implements domain.MessageHandler
var _ domain.MessageHandler = (*DispatchHandler)(nil)

func NewDispatchHandler(trigger DispatchTrigger) *DispatchHandler {
	return &DispatchHandler{trigger: trigger}
}

func (h *DispatchHandler) HandlerReady() bool {
	return h.trigger != nil
}

// HandleMessage implements domain.MessageHandler interface
func (h *DispatchHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) ([]byte, error){
		models.DispatchSubject: h.HandleDispatch,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		respond(ctx, msg, nil)
		return
	}

	response, err := handler(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "error handling message", logging.ErrKey, err)
		body, _ := json.Marshal(errorReply{Error: err.Error()})
		respond(ctx, msg, body)
		return
	}

	respond(ctx, msg, response)
}

// HandleDispatch runs the pipeline and returns the JSON report.
func (h *DispatchHandler) HandleDispatch(ctx context.Context, _ domain.Message) ([]byte, error) {
	if !h.HandlerReady() {
		slog.ErrorContext(ctx, "dispatch trigger not initialized")
		return nil, domain.ErrServiceUnavailable
	}

	slog.InfoContext(ctx, "on-demand dispatch requested")

	report, err := h.trigger.Trigger(ctx)
	if err != nil {
		return nil, err
	}

	return json.Marshal(report)
}

func respond(ctx context.Context, msg domain.Message, data []byte) {
	if !msg.HasReply() {
		slog.DebugContext(ctx, "handled NATS message (no reply expected)")
		return
	}
	if err := msg.Respond(data); err != nil {
		slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
		return
	}
	slog.DebugContext(ctx, "responded to NATS message")
}
