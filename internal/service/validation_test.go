// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/query"
)

func validMeeting() *models.Meeting {
	return &models.Meeting{
		Name:           "Weekly sync",
		StartDateTime:  at(10, 0).AddDate(0, 0, 2),
		URL:            "https://meet.example.com/weekly",
		RegisteredBy:   "alice",
		SlackChannelID: "chan-a",
	}
}

func TestValidateMeeting(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Meeting)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*models.Meeting) {},
		},
		{
			name:   "just after the start of tomorrow",
			mutate: func(m *models.Meeting) { m.StartDateTime = at(0, 1).AddDate(0, 0, 1) },
		},
		{
			name:    "missing name",
			mutate:  func(m *models.Meeting) { m.Name = "  " },
			wantErr: "name is null or empty",
		},
		{
			name:    "start today",
			mutate:  func(m *models.Meeting) { m.StartDateTime = at(23, 0) },
			wantErr: "startDateTime is invalid. Please specify the date and time after tomorrow.",
		},
		{
			name:    "start exactly at the start of tomorrow",
			mutate:  func(m *models.Meeting) { m.StartDateTime = at(0, 0).AddDate(0, 0, 1) },
			wantErr: "startDateTime is invalid. Please specify the date and time after tomorrow.",
		},
		{
			name:    "missing start",
			mutate:  func(m *models.Meeting) { m.StartDateTime = time.Time{} },
			wantErr: "startDateTime is invalid. Please specify the date and time after tomorrow.",
		},
		{
			name:    "missing url",
			mutate:  func(m *models.Meeting) { m.URL = "" },
			wantErr: "url is null or empty",
		},
		{
			name:    "missing registeredBy",
			mutate:  func(m *models.Meeting) { m.RegisteredBy = "" },
			wantErr: "registeredBy is null or empty",
		},
		{
			name:    "missing slackChannelId",
			mutate:  func(m *models.Meeting) { m.SlackChannelID = "" },
			wantErr: "slackChannelId is null or empty",
		},
		{
			name: "several problems are reported together",
			mutate: func(m *models.Meeting) {
				m.Name = ""
				m.URL = ""
			},
			wantErr: "name is null or empty; url is null or empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMeeting()
			tt.mutate(m)

			err := ValidateMeeting(m, testNow, time.UTC)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
			assert.ErrorIs(t, err, domain.ErrValidationFailed)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateMeeting_Nil(t *testing.T) {
	err := ValidateMeeting(nil, testNow, time.UTC)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestValidateChannel(t *testing.T) {
	valid := models.Channel{Name: "team", WebhookURL: "https://hooks.example.com/x", RegisteredBy: "alice"}

	assert.NoError(t, ValidateChannel(&valid))

	missingHook := valid
	missingHook.WebhookURL = ""
	err := ValidateChannel(&missingHook)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	assert.Contains(t, err.Error(), "webhookUrl is null or empty")

	err = ValidateChannel(&models.Channel{})
	assert.Contains(t, err.Error(), "name is null or empty; webhookUrl is null or empty; registeredBy is null or empty")
}

func TestValidateMeetingCriteria(t *testing.T) {
	tests := []struct {
		name     string
		criteria query.MeetingCriteria
		wantMsgs []string
	}{
		{"empty", query.MeetingCriteria{}, nil},
		{"ordered", query.MeetingCriteria{FromDate: "2026-10-01", ToDate: "2026-10-31"}, nil},
		{"same day", query.MeetingCriteria{FromDate: "2026-10-16", ToDate: "2026-10-16"}, nil},
		{"only from", query.MeetingCriteria{FromDate: "2026-10-16"}, nil},
		{"blank bound is absent", query.MeetingCriteria{FromDate: "  ", ToDate: "2026-10-16"}, nil},
		{"rfc3339 bound", query.MeetingCriteria{FromDate: "2026-10-16T09:00:00Z", ToDate: "2026-10-16"}, nil},
		{
			"reversed",
			query.MeetingCriteria{FromDate: "2026-10-17", ToDate: "2026-10-16"},
			[]string{"fromDate is invalid. Please specify a date before toDate."},
		},
		{
			"unparseable from",
			query.MeetingCriteria{FromDate: "soon", ToDate: "2026-10-16"},
			[]string{"fromDate is invalid. Please specify a date as yyyy-MM-dd."},
		},
		{
			"unparseable to",
			query.MeetingCriteria{ToDate: "2026-13-45"},
			[]string{"toDate is invalid. Please specify a date as yyyy-MM-dd."},
		},
		{
			"both unparseable",
			query.MeetingCriteria{FromDate: "later", ToDate: "never"},
			[]string{
				"fromDate is invalid. Please specify a date as yyyy-MM-dd.",
				"toDate is invalid. Please specify a date as yyyy-MM-dd.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMeetingCriteria(tt.criteria, time.UTC)
			if len(tt.wantMsgs) == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
			assert.Contains(t, err.Error(), strings.Join(tt.wantMsgs, "; "))
		})
	}
}
