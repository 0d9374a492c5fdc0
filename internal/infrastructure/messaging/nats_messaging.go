// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
)

// ErrNotConnected is returned when publishing without a live NATS connection.
var ErrNotConnected = errors.New("nats connection is not established")

// INatsConn is the NATS connection interface needed by the [MessageBuilder].
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder encodes notifier events and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// Ensure that MessageBuilder implements domain.DispatchEventSender
var _ domain.DispatchEventSender = (*MessageBuilder)(nil)

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// publish sends the message to the NATS server.
func (m *MessageBuilder) publish(ctx context.Context, subject string, data []byte) error {
	if m.NatsConn == nil || !m.NatsConn.IsConnected() {
		slog.WarnContext(ctx, "skipping NATS publish, not connected", "subject", subject)
		return ErrNotConnected
	}
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// SendDispatchCompleted publishes the msgpack-encoded summary of a dispatch run.
func (m *MessageBuilder) SendDispatchCompleted(ctx context.Context, data models.DispatchCompletedMessage) error {
	dataBytes, err := msgpack.Marshal(&data)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling dispatch event into msgpack", logging.ErrKey, err)
		return err
	}

	slog.DebugContext(ctx, "publishing dispatch completed event",
		"run_id", data.RunID,
		"status", data.Status,
		"delivered", data.Delivered,
		"failed", data.Failed,
	)

	return m.publish(ctx, models.DispatchCompletedSubject, dataBytes)
}

// DecodeDispatchCompleted decodes an event published by SendDispatchCompleted.
func DecodeDispatchCompleted(data []byte) (models.DispatchCompletedMessage, error) {
	var msg models.DispatchCompletedMessage
	err := msgpack.Unmarshal(data, &msg)
	return msg, err
}
