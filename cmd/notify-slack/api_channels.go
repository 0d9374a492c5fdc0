// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"

	goahttp "goa.design/goa/v3/http"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/query"
)

type createChannelPayload struct {
	Name         string `json:"name"`
	WebhookURL   string `json:"webhookUrl"`
	RegisteredBy string `json:"registeredBy"`
}

// CreateChannel registers a Slack channel.
func (s *NotifierAPI) CreateChannel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload createChannelPayload
	if err := decodeRequest(r, &payload); err != nil {
		handleError(ctx, w, err)
		return
	}

	channel, err := s.channelService.CreateChannel(ctx, &models.Channel{
		Name:         payload.Name,
		WebhookURL:   payload.WebhookURL,
		RegisteredBy: payload.RegisteredBy,
	})
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeResponse(ctx, w, http.StatusCreated, channel)
}

// QueryChannels lists the Slack channels matching the query parameters.
func (s *NotifierAPI) QueryChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := r.URL.Query()

	channels, err := s.channelService.QueryChannels(ctx, query.ChannelCriteria{
		IDs:          params.Get("ids"),
		Name:         params.Get("name"),
		WebhookURL:   params.Get("webhookUrl"),
		RegisteredBy: params.Get("registeredBy"),
	})
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	if channels == nil {
		channels = []*models.Channel{}
	}
	writeResponse(ctx, w, http.StatusOK, channels)
}

// GetChannel returns one Slack channel by the {id} path parameter.
func (s *NotifierAPI) GetChannel(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		channel, err := s.channelService.GetChannel(ctx, mux.Vars(r)["id"])
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeResponse(ctx, w, http.StatusOK, channel)
	}
}

// DeleteChannel removes a Slack channel registration.
func (s *NotifierAPI) DeleteChannel(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := s.channelService.DeleteChannel(ctx, mux.Vars(r)["id"]); err != nil {
			handleError(ctx, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
