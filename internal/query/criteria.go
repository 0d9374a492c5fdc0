// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package query

import (
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
)

// MeetingCriteria are the optional filters on web meetings. An empty field
// is absent.
type MeetingCriteria struct {
	// IDs is a comma-separated identifier list.
	IDs            string
	FromDate       string
	ToDate         string
	RegisteredBy   string
	SlackChannelID string
}

// HasDateRange reports whether at least one date bound is present.
func (c MeetingCriteria) HasDateRange() bool {
	_, fromOK := ParseDate(c.FromDate, time.UTC)
	_, toOK := ParseDate(c.ToDate, time.UTC)
	return fromOK || toOK
}

// ChannelCriteria are the optional filters on Slack channels.
type ChannelCriteria struct {
	IDs          string
	Name         string
	WebhookURL   string
	RegisteredBy string
}

// BuildMeetingPredicate returns the conjunction of the present criteria.
// Dates are interpreted in loc.
func BuildMeetingPredicate(c MeetingCriteria, loc *time.Location) Predicate[models.Meeting] {
	var conjuncts []Predicate[models.Meeting]

	if ids := ParseIDSet(c.IDs); ids != nil {
		conjuncts = append(conjuncts, func(m *models.Meeting) bool { return ids.Contains(m.ID) })
	}

	if c.HasDateRange() {
		from, to := DateRange(c.FromDate, c.ToDate, loc)
		conjuncts = append(conjuncts, func(m *models.Meeting) bool {
			return !m.StartDateTime.Before(from) && !m.StartDateTime.After(to)
		})
	}

	if c.RegisteredBy != "" {
		registeredBy := c.RegisteredBy
		conjuncts = append(conjuncts, func(m *models.Meeting) bool { return m.RegisteredBy == registeredBy })
	}

	if c.SlackChannelID != "" {
		channelID := c.SlackChannelID
		conjuncts = append(conjuncts, func(m *models.Meeting) bool { return m.SlackChannelID == channelID })
	}

	return And(conjuncts...)
}

// BuildChannelPredicate returns the conjunction of the present criteria.
// Name matches by substring, the other fields exactly.
func BuildChannelPredicate(c ChannelCriteria) Predicate[models.Channel] {
	var conjuncts []Predicate[models.Channel]

	if ids := ParseIDSet(c.IDs); ids != nil {
		conjuncts = append(conjuncts, func(ch *models.Channel) bool { return ids.Contains(ch.ID) })
	}
	if c.Name != "" {
		name := c.Name
		conjuncts = append(conjuncts, func(ch *models.Channel) bool { return strings.Contains(ch.Name, name) })
	}
	if c.WebhookURL != "" {
		url := c.WebhookURL
		conjuncts = append(conjuncts, func(ch *models.Channel) bool { return ch.WebhookURL == url })
	}
	if c.RegisteredBy != "" {
		registeredBy := c.RegisteredBy
		conjuncts = append(conjuncts, func(ch *models.Channel) bool { return ch.RegisteredBy == registeredBy })
	}

	return And(conjuncts...)
}
