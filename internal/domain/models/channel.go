// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// Channel is a Slack channel reachable through an incoming webhook.
type Channel struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	WebhookURL   string    `json:"webhookUrl"`
	RegisteredBy string    `json:"registeredBy"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// PartitionKey is the storage partition of the channel: its identifier.
func (c *Channel) PartitionKey() string {
	return c.ID
}
