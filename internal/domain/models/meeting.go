// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// DateLayout is the layout of a meeting's normalized date and of the
// calendar dates accepted by the query criteria.
const DateLayout = "2006-01-02"

// Meeting is the key-value store representation of a web meeting that is
// announced to a Slack channel on the day it takes place.
type Meeting struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	StartDateTime  time.Time `json:"startDateTime"`
	Date           string    `json:"date"`
	URL            string    `json:"url"`
	RegisteredBy   string    `json:"registeredBy"`
	RegisteredAt   time.Time `json:"registeredAt"`
	SlackChannelID string    `json:"slackChannelId"`
}

// NormalizedDate truncates a start time to its calendar day in loc.
func NormalizedDate(start time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return start.In(loc).Format(DateLayout)
}

// Normalize derives the meeting date from its start time.
// The date is never taken from client input.
func (m *Meeting) Normalize(loc *time.Location) {
	m.Date = NormalizedDate(m.StartDateTime, loc)
}

// PartitionKey is the storage partition of the meeting: its normalized date.
func (m *Meeting) PartitionKey() string {
	return m.Date
}

// HasChannel reports whether the meeting has a destination channel.
func (m *Meeting) HasChannel() bool {
	return m.SlackChannelID != ""
}
