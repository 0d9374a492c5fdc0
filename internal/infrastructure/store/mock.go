// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// mockKeyValueEntry implements jetstream.KeyValueEntry for testing
type mockKeyValueEntry struct {
	key      string
	value    []byte
	revision uint64
}

func (m *mockKeyValueEntry) Key() string                     { return m.key }
func (m *mockKeyValueEntry) Value() []byte                   { return m.value }
func (m *mockKeyValueEntry) Revision() uint64                { return m.revision }
func (m *mockKeyValueEntry) Created() time.Time              { return time.Now() }
func (m *mockKeyValueEntry) Delta() uint64                   { return 0 }
func (m *mockKeyValueEntry) Operation() jetstream.KeyValueOp { return jetstream.KeyValuePut }
func (m *mockKeyValueEntry) Bucket() string                  { return "test-bucket" }

// mockKeyLister implements jetstream.KeyLister for testing
type mockKeyLister struct {
	keys    []string
	stopped bool
}

func (m *mockKeyLister) Keys() <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		for _, key := range m.keys {
			ch <- key
		}
	}()
	return ch
}

func (m *mockKeyLister) Stop() error {
	m.stopped = true
	return nil
}

// mockNatsKeyValue implements INatsKeyValue for testing
type mockNatsKeyValue struct {
	data        map[string][]byte
	revisions   map[string]uint64
	listError   error
	putError    error
	getError    error
	deleteError error
	// getErrors fails Get for individual keys
	getErrors map[string]error
	deleted   []string
}

func newMockNatsKeyValue() *mockNatsKeyValue {
	return &mockNatsKeyValue{
		data:      make(map[string][]byte),
		revisions: make(map[string]uint64),
		getErrors: make(map[string]error),
	}
}

func (m *mockNatsKeyValue) ListKeys(_ context.Context, _ ...jetstream.WatchOpt) (jetstream.KeyLister, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	keys := make([]string, 0, len(m.data)+len(m.getErrors))
	for key := range m.data {
		keys = append(keys, key)
	}
	for key := range m.getErrors {
		if _, ok := m.data[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return &mockKeyLister{keys: keys}, nil
}

func (m *mockNatsKeyValue) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	if err, ok := m.getErrors[key]; ok {
		return nil, err
	}
	value, exists := m.data[key]
	if !exists {
		return nil, jetstream.ErrKeyNotFound
	}
	return &mockKeyValueEntry{key: key, value: value, revision: m.revisions[key]}, nil
}

func (m *mockNatsKeyValue) Put(_ context.Context, key string, data []byte) (uint64, error) {
	if m.putError != nil {
		return 0, m.putError
	}
	m.data[key] = data
	m.revisions[key]++
	return m.revisions[key], nil
}

func (m *mockNatsKeyValue) Delete(_ context.Context, key string, _ ...jetstream.KVDeleteOpt) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	if _, exists := m.data[key]; !exists {
		return jetstream.ErrKeyNotFound
	}
	delete(m.data, key)
	delete(m.revisions, key)
	m.deleted = append(m.deleted, key)
	return nil
}

var errMockStore = errors.New("nats: connection closed")
