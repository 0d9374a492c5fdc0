// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	goahttp "goa.design/goa/v3/http"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/service"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/pkg/constants"
)

// NotifierAPI serves the registration, query and health endpoints.
type NotifierAPI struct {
	meetingService  *service.MeetingsService
	channelService  *service.ChannelsService
	dispatchService *service.DispatchService
	metricsHandler  http.Handler
}

// NewNotifierAPI creates a new NotifierAPI.
func NewNotifierAPI(
	meetingService *service.MeetingsService,
	channelService *service.ChannelsService,
	dispatchService *service.DispatchService,
	metricsHandler http.Handler,
) *NotifierAPI {
	return &NotifierAPI{
		meetingService:  meetingService,
		channelService:  channelService,
		dispatchService: dispatchService,
		metricsHandler:  metricsHandler,
	}
}

// errorBody is the JSON body of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Mount registers the API routes on mux.
func (s *NotifierAPI) Mount(mux goahttp.Muxer) {
	mux.Handle(http.MethodGet, constants.LivezPath, s.Livez)
	mux.Handle(http.MethodGet, constants.ReadyzPath, s.Readyz)
	if s.metricsHandler != nil {
		mux.Handle(http.MethodGet, constants.MetricsPath, s.metricsHandler.ServeHTTP)
	}

	mux.Handle(http.MethodPost, "/web-meetings", s.CreateMeeting)
	mux.Handle(http.MethodGet, "/web-meetings", s.QueryMeetings)
	mux.Handle(http.MethodGet, "/web-meetings/{id}", s.GetMeeting(mux))

	mux.Handle(http.MethodPost, "/slack-channels", s.CreateChannel)
	mux.Handle(http.MethodGet, "/slack-channels", s.QueryChannels)
	mux.Handle(http.MethodGet, "/slack-channels/{id}", s.GetChannel(mux))
	mux.Handle(http.MethodDelete, "/slack-channels/{id}", s.DeleteChannel(mux))
}

// statusCode maps a domain error onto its HTTP status.
func statusCode(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes err as a JSON error response.
func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	code := statusCode(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", logging.ErrKey, err)
		message = "internal server error"
	}
	writeResponse(ctx, w, code, errorBody{Code: strconv.Itoa(code), Message: message})
}

// writeResponse encodes body as JSON with the given status.
func writeResponse(ctx context.Context, w http.ResponseWriter, code int, body any) {
	enc := goahttp.ResponseEncoder(ctx, w)
	w.WriteHeader(code)
	if body == nil {
		return
	}
	if err := enc.Encode(body); err != nil {
		slog.ErrorContext(ctx, "error encoding response", logging.ErrKey, err)
	}
}

// decodeRequest decodes the JSON request body into v.
func decodeRequest(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return domain.NewValidationError("request body is required", domain.ErrValidationFailed)
	}
	if err := goahttp.RequestDecoder(r).Decode(v); err != nil {
		return domain.NewValidationError("request body is not valid JSON", err)
	}
	return nil
}

// Readyz checks if the service is able to take inbound requests.
func (s *NotifierAPI) Readyz(w http.ResponseWriter, r *http.Request) {
	if !s.meetingService.ServiceReady() ||
		!s.channelService.ServiceReady() ||
		!s.dispatchService.ServiceReady() {
		handleError(r.Context(), w, domain.ErrServiceUnavailable)
		return
	}
	w.Header().Set(constants.ContentTypeHeader, "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// Livez checks if the service is alive.
func (s *NotifierAPI) Livez(w http.ResponseWriter, _ *http.Request) {
	// This always returns as long as the service is still running. As this
	// endpoint is expected to be used as a Kubernetes liveness check, this
	// service must likewise self-detect non-recoverable errors and
	// self-terminate.
	w.Header().Set(constants.ContentTypeHeader, "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}
