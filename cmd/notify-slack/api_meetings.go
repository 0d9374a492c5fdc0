// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"
	"time"

	goahttp "goa.design/goa/v3/http"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/query"
)

// createMeetingPayload is the body of a web meeting registration.
type createMeetingPayload struct {
	Name           string `json:"name"`
	StartDateTime  string `json:"startDateTime"`
	URL            string `json:"url"`
	RegisteredBy   string `json:"registeredBy"`
	SlackChannelID string `json:"slackChannelId"`
}

// toMeeting converts the payload. An unparsable start time stays zero and is
// reported by the service validation.
func (p createMeetingPayload) toMeeting() *models.Meeting {
	start, _ := time.Parse(time.RFC3339, p.StartDateTime)
	return &models.Meeting{
		Name:           p.Name,
		StartDateTime:  start,
		URL:            p.URL,
		RegisteredBy:   p.RegisteredBy,
		SlackChannelID: p.SlackChannelID,
	}
}

// CreateMeeting registers a web meeting.
func (s *NotifierAPI) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload createMeetingPayload
	if err := decodeRequest(r, &payload); err != nil {
		handleError(ctx, w, err)
		return
	}

	meeting, err := s.meetingService.CreateMeeting(ctx, payload.toMeeting())
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeResponse(ctx, w, http.StatusCreated, meeting)
}

// QueryMeetings lists the web meetings matching the query parameters.
func (s *NotifierAPI) QueryMeetings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := r.URL.Query()

	meetings, err := s.meetingService.QueryMeetings(ctx, query.MeetingCriteria{
		IDs:            params.Get("ids"),
		FromDate:       params.Get("fromDate"),
		ToDate:         params.Get("toDate"),
		RegisteredBy:   params.Get("registeredBy"),
		SlackChannelID: params.Get("slackChannelId"),
	})
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	if meetings == nil {
		meetings = []*models.Meeting{}
	}
	writeResponse(ctx, w, http.StatusOK, meetings)
}

// GetMeeting returns one web meeting by the {id} path parameter.
func (s *NotifierAPI) GetMeeting(mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		meeting, err := s.meetingService.GetMeeting(ctx, mux.Vars(r)["id"])
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeResponse(ctx, w, http.StatusOK, meeting)
	}
}
