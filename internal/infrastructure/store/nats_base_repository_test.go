// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
)

// TestEntity for testing the base repository
type TestEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func putEntity(t *testing.T, kv *mockNatsKeyValue, key string, e TestEntity) {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)
	kv.data[key] = data
	kv.revisions[key] = 1
}

func TestNatsBaseRepository_IsReady(t *testing.T) {
	tests := []struct {
		name     string
		kvStore  INatsKeyValue
		expected bool
	}{
		{
			name:     "ready when kvStore is not nil",
			kvStore:  newMockNatsKeyValue(),
			expected: true,
		},
		{
			name:     "not ready when kvStore is nil",
			kvStore:  nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewNatsBaseRepository[TestEntity](tt.kvStore, "test")
			assert.Equal(t, tt.expected, repo.IsReady())
		})
	}
}

func TestNatsBaseRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("successful get", func(t *testing.T) {
		mockKV := newMockNatsKeyValue()
		repo := NewNatsBaseRepository[TestEntity](mockKV, "test")
		putEntity(t, mockKV, "test-key", TestEntity{ID: "test-1", Name: "Test Entity"})

		result, err := repo.Get(ctx, "test-key")

		require.NoError(t, err)
		assert.Equal(t, "test-1", result.ID)
		assert.Equal(t, "Test Entity", result.Name)
	})

	t.Run("not found", func(t *testing.T) {
		repo := NewNatsBaseRepository[TestEntity](newMockNatsKeyValue(), "test")

		result, err := repo.Get(ctx, "nonexistent")

		assert.Nil(t, result)
		assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
	})

	t.Run("repository not ready", func(t *testing.T) {
		repo := NewNatsBaseRepository[TestEntity](nil, "test")

		_, err := repo.Get(ctx, "any")

		assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
	})

	t.Run("corrupt value", func(t *testing.T) {
		mockKV := newMockNatsKeyValue()
		mockKV.data["bad"] = []byte("{not json")
		repo := NewNatsBaseRepository[TestEntity](mockKV, "test")

		_, err := repo.Get(ctx, "bad")

		assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
	})

	t.Run("store error", func(t *testing.T) {
		mockKV := newMockNatsKeyValue()
		mockKV.getError = errMockStore
		repo := NewNatsBaseRepository[TestEntity](mockKV, "test")

		_, err := repo.Get(ctx, "any")

		assert.ErrorIs(t, err, errMockStore)
		assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
	})
}

func TestNatsBaseRepository_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("stores json", func(t *testing.T) {
		mockKV := newMockNatsKeyValue()
		repo := NewNatsBaseRepository[TestEntity](mockKV, "test")

		err := repo.Put(ctx, "k", &TestEntity{ID: "1", Name: "one"})

		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"1","name":"one"}`, string(mockKV.data["k"]))
	})

	t.Run("store error", func(t *testing.T) {
		mockKV := newMockNatsKeyValue()
		mockKV.putError = errMockStore
		repo := NewNatsBaseRepository[TestEntity](mockKV, "test")

		err := repo.Put(ctx, "k", &TestEntity{ID: "1"})

		assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
	})
}

func TestNatsBaseRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("existing key", func(t *testing.T) {
		mockKV := newMockNatsKeyValue()
		putEntity(t, mockKV, "k", TestEntity{ID: "1"})
		repo := NewNatsBaseRepository[TestEntity](mockKV, "test")

		require.NoError(t, repo.Delete(ctx, "k"))
		assert.NotContains(t, mockKV.data, "k")
	})

	t.Run("missing key is success", func(t *testing.T) {
		repo := NewNatsBaseRepository[TestEntity](newMockNatsKeyValue(), "test")

		assert.NoError(t, repo.Delete(ctx, "missing"))
	})

	t.Run("store error", func(t *testing.T) {
		mockKV := newMockNatsKeyValue()
		mockKV.deleteError = errMockStore
		repo := NewNatsBaseRepository[TestEntity](mockKV, "test")

		err := repo.Delete(ctx, "k")

		assert.ErrorIs(t, err, errMockStore)
	})
}

func TestNatsBaseRepository_ListKeys(t *testing.T) {
	ctx := context.Background()

	t.Run("lists all keys", func(t *testing.T) {
		mockKV := newMockNatsKeyValue()
		putEntity(t, mockKV, "a", TestEntity{ID: "a"})
		putEntity(t, mockKV, "b", TestEntity{ID: "b"})
		repo := NewNatsBaseRepository[TestEntity](mockKV, "test")

		keys, err := repo.ListKeys(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, keys)
	})

	t.Run("empty bucket", func(t *testing.T) {
		mockKV := newMockNatsKeyValue()
		mockKV.listError = jetstream.ErrNoKeysFound
		repo := NewNatsBaseRepository[TestEntity](mockKV, "test")

		keys, err := repo.ListKeys(ctx)

		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("list error", func(t *testing.T) {
		mockKV := newMockNatsKeyValue()
		mockKV.listError = errMockStore
		repo := NewNatsBaseRepository[TestEntity](mockKV, "test")

		_, err := repo.ListKeys(ctx)

		assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
	})
}

func TestNatsBaseRepository_Find(t *testing.T) {
	ctx := context.Background()

	t.Run("filters keys and predicate", func(t *testing.T) {
		mockKV := newMockNatsKeyValue()
		putEntity(t, mockKV, "x.1", TestEntity{ID: "1", Name: "keep"})
		putEntity(t, mockKV, "x.2", TestEntity{ID: "2", Name: "drop"})
		putEntity(t, mockKV, "y.3", TestEntity{ID: "3", Name: "keep"})
		repo := NewNatsBaseRepository[TestEntity](mockKV, "test")

		result, err := repo.Find(ctx,
			func(key string) bool { return key[0] == 'x' },
			func(e *TestEntity) bool { return e.Name == "keep" },
		)

		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "1", result[0].ID)
	})

	t.Run("nil predicate matches all", func(t *testing.T) {
		mockKV := newMockNatsKeyValue()
		putEntity(t, mockKV, "a", TestEntity{ID: "a"})
		putEntity(t, mockKV, "b", TestEntity{ID: "b"})
		repo := NewNatsBaseRepository[TestEntity](mockKV, "test")

		result, err := repo.Find(ctx, nil, nil)

		require.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("vanished key skipped", func(t *testing.T) {
		mockKV := newMockNatsKeyValue()
		putEntity(t, mockKV, "a", TestEntity{ID: "a"})
		mockKV.getErrors["b"] = jetstream.ErrKeyNotFound
		repo := NewNatsBaseRepository[TestEntity](mockKV, "test")

		result, err := repo.Find(ctx, nil, nil)

		require.NoError(t, err)
		assert.Len(t, result, 1)
	})

	t.Run("read error aborts", func(t *testing.T) {
		mockKV := newMockNatsKeyValue()
		putEntity(t, mockKV, "a", TestEntity{ID: "a"})
		mockKV.getErrors["b"] = errMockStore
		repo := NewNatsBaseRepository[TestEntity](mockKV, "test")

		result, err := repo.Find(ctx, nil, nil)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, errMockStore)
	})
}
