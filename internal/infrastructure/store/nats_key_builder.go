// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"strings"
)

// Key prefixes
const (
	KeyPrefixMeeting = "meeting"
	KeyPrefixChannel = "channel"
)

const keySeparator = "."

// KeyBuilder builds NATS KV keys. Meetings are keyed by their partition key
// (the normalized date) followed by their id so cleanup can address a record
// from the partition stored on it.
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with an optional prefix
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{
		prefix: prefix,
	}
}

// MeetingKey builds "meeting.<date>.<id>"
func (kb *KeyBuilder) MeetingKey(partitionKey, id string) string {
	return kb.applyPrefix(KeyPrefixMeeting, partitionKey, id)
}

// ChannelKey builds "channel.<id>"
func (kb *KeyBuilder) ChannelKey(id string) string {
	return kb.applyPrefix(KeyPrefixChannel, id)
}

// ParseMeetingKey splits a meeting key into partition key and id.
func (kb *KeyBuilder) ParseMeetingKey(key string) (partitionKey, id string, ok bool) {
	parts := kb.split(key)
	if len(parts) != 3 || parts[0] != KeyPrefixMeeting || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// ParseChannelKey returns the id of a channel key.
func (kb *KeyBuilder) ParseChannelKey(key string) (string, bool) {
	parts := kb.split(key)
	if len(parts) != 2 || parts[0] != KeyPrefixChannel || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// IsMeetingKey reports whether key addresses a meeting.
func (kb *KeyBuilder) IsMeetingKey(key string) bool {
	_, _, ok := kb.ParseMeetingKey(key)
	return ok
}

// IsChannelKey reports whether key addresses a channel.
func (kb *KeyBuilder) IsChannelKey(key string) bool {
	_, ok := kb.ParseChannelKey(key)
	return ok
}

func (kb *KeyBuilder) applyPrefix(parts ...string) string {
	key := strings.Join(parts, keySeparator)
	if kb.prefix == "" {
		return key
	}
	return kb.prefix + keySeparator + key
}

func (kb *KeyBuilder) split(key string) []string {
	if kb.prefix != "" {
		trimmed, found := strings.CutPrefix(key, kb.prefix+keySeparator)
		if !found {
			return nil
		}
		key = trimmed
	}
	return strings.Split(key, keySeparator)
}
