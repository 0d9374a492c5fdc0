// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// NATS subjects that the notifier handles messages about.
const (
	// DispatchQueue is the queue group shared by notifier instances.
	// The subject is of the form: lfx.notify-slack.queue
	DispatchQueue = "lfx.notify-slack.queue"

	// DispatchSubject is the subject for on-demand dispatch runs.
	// The subject is of the form: lfx.notify-slack.dispatch
	DispatchSubject = "lfx.notify-slack.dispatch"
)

// NATS subjects that the notifier sends messages about.
const (
	// DispatchCompletedSubject is the subject for dispatch run completion events.
	// The subject is of the form: lfx.notify-slack.dispatch_completed
	DispatchCompletedSubject = "lfx.notify-slack.dispatch_completed"
)

// DispatchCompletedMessage is the msgpack schema of the event published
// after every dispatch run.
type DispatchCompletedMessage struct {
	RunID      string        `msgpack:"run_id"`
	Day        string        `msgpack:"day"`
	Status     RunStatus     `msgpack:"status"`
	StartedAt  time.Time     `msgpack:"started_at"`
	FinishedAt time.Time     `msgpack:"finished_at"`
	Delivered  int           `msgpack:"delivered"`
	Failed     int           `msgpack:"failed"`
	Unresolved int           `msgpack:"unresolved"`
	Groups     []GroupResult `msgpack:"groups"`
}

// NewDispatchCompletedMessage summarizes a report into a completion event.
func NewDispatchCompletedMessage(report *DispatchReport) DispatchCompletedMessage {
	return DispatchCompletedMessage{
		RunID:      report.RunID,
		Day:        report.Day,
		Status:     report.Status,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Delivered:  report.Count(GroupStatusDelivered),
		Failed:     report.Count(GroupStatusFailed),
		Unresolved: report.Count(GroupStatusUnresolved),
		Groups:     report.Groups,
	}
}
