// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/query"
)

const (
	msgStartDateTimeInvalid = "startDateTime is invalid. Please specify the date and time after tomorrow."
	msgFromDateInvalid      = "fromDate is invalid. Please specify a date before toDate."
	msgFromDateUnparseable  = "fromDate is invalid. Please specify a date as yyyy-MM-dd."
	msgToDateUnparseable    = "toDate is invalid. Please specify a date as yyyy-MM-dd."
)

func nullOrEmpty(field string) string {
	return field + " is null or empty"
}

// validationError folds the collected messages into one validation error.
func validationError(messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	return domain.NewValidationError(strings.Join(messages, "; "), domain.ErrValidationFailed)
}

// ValidateMeeting checks a meeting registration. The start must be later than
// the start of tomorrow in loc.
func ValidateMeeting(m *models.Meeting, now time.Time, loc *time.Location) error {
	if m == nil {
		return domain.NewValidationError("request body is required", domain.ErrValidationFailed)
	}

	var messages []string
	if strings.TrimSpace(m.Name) == "" {
		messages = append(messages, nullOrEmpty("name"))
	}
	tomorrow := query.StartOfDay(now, loc).AddDate(0, 0, 1)
	if m.StartDateTime.IsZero() || !m.StartDateTime.After(tomorrow) {
		messages = append(messages, msgStartDateTimeInvalid)
	}
	if strings.TrimSpace(m.URL) == "" {
		messages = append(messages, nullOrEmpty("url"))
	}
	if strings.TrimSpace(m.RegisteredBy) == "" {
		messages = append(messages, nullOrEmpty("registeredBy"))
	}
	if strings.TrimSpace(m.SlackChannelID) == "" {
		messages = append(messages, nullOrEmpty("slackChannelId"))
	}
	return validationError(messages)
}

// ValidateChannel checks a channel registration.
func ValidateChannel(c *models.Channel) error {
	if c == nil {
		return domain.NewValidationError("request body is required", domain.ErrValidationFailed)
	}

	var messages []string
	if strings.TrimSpace(c.Name) == "" {
		messages = append(messages, nullOrEmpty("name"))
	}
	if strings.TrimSpace(c.WebhookURL) == "" {
		messages = append(messages, nullOrEmpty("webhookUrl"))
	}
	if strings.TrimSpace(c.RegisteredBy) == "" {
		messages = append(messages, nullOrEmpty("registeredBy"))
	}
	return validationError(messages)
}

// ValidateMeetingCriteria rejects dates that do not parse and a from-date
// later than the to-date. Blank dates are absent and always accepted.
func ValidateMeetingCriteria(c query.MeetingCriteria, loc *time.Location) error {
	var messages []string
	from, fromOK := query.ParseDate(c.FromDate, loc)
	if !fromOK && strings.TrimSpace(c.FromDate) != "" {
		messages = append(messages, msgFromDateUnparseable)
	}
	to, toOK := query.ParseDate(c.ToDate, loc)
	if !toOK && strings.TrimSpace(c.ToDate) != "" {
		messages = append(messages, msgToDateUnparseable)
	}
	if fromOK && toOK && from.After(to) {
		messages = append(messages, msgFromDateInvalid)
	}
	return validationError(messages)
}
