// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// Digest is the message announcing one channel's meetings for a day.
type Digest struct {
	ChannelID string
	// Meetings are ordered by start time ascending.
	Meetings []*Meeting
	Text     string
}

// EarliestStart returns the start time of the first meeting of the digest.
func (d Digest) EarliestStart() time.Time {
	if len(d.Meetings) == 0 {
		return time.Time{}
	}
	return d.Meetings[0].StartDateTime
}

// MeetingIDs returns the identifiers of the digest's meetings in order.
func (d Digest) MeetingIDs() []string {
	ids := make([]string, 0, len(d.Meetings))
	for _, m := range d.Meetings {
		ids = append(ids, m.ID)
	}
	return ids
}

// DeliveryOutcome is the result of posting a digest to a channel webhook.
// A failed delivery is data, not an error.
type DeliveryOutcome struct {
	ChannelID  string `json:"channelId"`
	Delivered  bool   `json:"delivered"`
	StatusCode int    `json:"statusCode,omitempty"`
	Attempts   int    `json:"attempts"`
	Error      string `json:"error,omitempty"`
}

// GroupStatus is the final state of one channel group in a dispatch run.
type GroupStatus string

const (
	// GroupStatusDelivered means the digest was posted and the meetings were cleaned up.
	GroupStatusDelivered GroupStatus = "delivered"
	// GroupStatusFailed means the digest could not be posted; meetings are kept.
	GroupStatusFailed GroupStatus = "failed"
	// GroupStatusUnresolved means the channel id matched no registered channel.
	GroupStatusUnresolved GroupStatus = "unresolved"
)

// GroupResult reports what happened to one channel group.
type GroupResult struct {
	ChannelID       string          `json:"channelId" msgpack:"channel_id"`
	Status          GroupStatus     `json:"status" msgpack:"status"`
	MeetingIDs      []string        `json:"meetingIds" msgpack:"meeting_ids"`
	Delivery        DeliveryOutcome `json:"delivery" msgpack:"-"`
	DeletedIDs      []string        `json:"deletedIds,omitempty" msgpack:"deleted_ids,omitempty"`
	CleanupFailures []string        `json:"cleanupFailures,omitempty" msgpack:"cleanup_failures,omitempty"`
}

// RunStatus is the terminal state of a dispatch run.
type RunStatus string

const (
	// RunStatusDone means every channel group was processed.
	RunStatusDone RunStatus = "done"
	// RunStatusDoneEmpty means there was nothing to announce.
	RunStatusDoneEmpty RunStatus = "done-empty"
)

// DispatchReport summarizes a dispatch run.
type DispatchReport struct {
	RunID      string        `json:"runId" msgpack:"run_id"`
	Day        string        `json:"day" msgpack:"day"`
	Status     RunStatus     `json:"status" msgpack:"status"`
	StartedAt  time.Time     `json:"startedAt" msgpack:"started_at"`
	FinishedAt time.Time     `json:"finishedAt" msgpack:"finished_at"`
	Groups     []GroupResult `json:"groups" msgpack:"groups"`
}

// Count returns the number of groups that ended in the given status.
func (r *DispatchReport) Count(status GroupStatus) int {
	n := 0
	for _, g := range r.Groups {
		if g.Status == status {
			n++
		}
	}
	return n
}
