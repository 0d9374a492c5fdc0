// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/query"
)

// NATS Key-Value store bucket names
const (
	KVStoreNameWebMeetings   = "web-meetings"
	KVStoreNameSlackChannels = "slack-channels"
)

// tracerName is the instrumentation name for the store package.
const tracerName = "github.com/linuxfoundation/lfx-v2-slack-notifier/internal/infrastructure/store"

// INatsKeyValue is the subset of jetstream.KeyValue used by the repositories.
type INatsKeyValue interface {
	ListKeys(context.Context, ...jetstream.WatchOpt) (jetstream.KeyLister, error)
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(context.Context, string, []byte) (uint64, error)
	Delete(context.Context, string, ...jetstream.KVDeleteOpt) error
}

// NatsBaseRepository provides the NATS KV operations shared by all repositories
type NatsBaseRepository[T any] struct {
	kvStore    INatsKeyValue
	entityName string // Used in error messages (e.g., "web meeting", "slack channel")
}

// NewNatsBaseRepository creates a new base repository for NATS KV operations
func NewNatsBaseRepository[T any](kvStore INatsKeyValue, entityName string) *NatsBaseRepository[T] {
	return &NatsBaseRepository[T]{
		kvStore:    kvStore,
		entityName: entityName,
	}
}

// IsReady checks if the repository is ready for use
func (r *NatsBaseRepository[T]) IsReady() bool {
	return r.kvStore != nil
}

func (r *NatsBaseRepository[T]) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{
		attribute.String("db.system", "nats"),
		attribute.String("db.operation", operation),
		attribute.String("db.nats.entity", r.entityName),
	}, attrs...)
	return otel.Tracer(tracerName).Start(ctx, "nats.kv."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func failSpan(span trace.Span, err error, status string) error {
	span.RecordError(err)
	if status == "" {
		status = err.Error()
	}
	span.SetStatus(codes.Error, status)
	return err
}

func (r *NatsBaseRepository[T]) unavailable() error {
	return domain.NewUnavailableError(fmt.Sprintf("%s repository is not available", r.entityName))
}

// GetRaw retrieves a raw entry from the NATS KV store
func (r *NatsBaseRepository[T]) GetRaw(ctx context.Context, key string) (jetstream.KeyValueEntry, error) {
	ctx, span := r.startSpan(ctx, "get", attribute.String("db.nats.key", key))
	defer span.End()

	if !r.IsReady() {
		return nil, failSpan(span, r.unavailable(), "")
	}

	entry, err := r.kvStore.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, failSpan(span, domain.NewNotFoundError(
				fmt.Sprintf("%s with key '%s' not found", r.entityName, key), err), "not found")
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error getting %s from NATS KV", r.entityName),
			logging.ErrKey, err, "key", key)
		return nil, failSpan(span, domain.NewInternalError(
			fmt.Sprintf("failed to retrieve %s from store", r.entityName), err), "")
	}

	span.SetStatus(codes.Ok, "")
	return entry, nil
}

// Get retrieves and unmarshals an entity from the NATS KV store
func (r *NatsBaseRepository[T]) Get(ctx context.Context, key string) (*T, error) {
	entry, err := r.GetRaw(ctx, key)
	if err != nil {
		return nil, err
	}

	entity, err := r.Unmarshal(ctx, entry)
	if err != nil {
		return nil, domain.NewInternalError(
			fmt.Sprintf("failed to unmarshal %s data", r.entityName), err)
	}
	return entity, nil
}

// Unmarshal unmarshals a NATS KV entry into the entity type
func (r *NatsBaseRepository[T]) Unmarshal(ctx context.Context, entry jetstream.KeyValueEntry) (*T, error) {
	var entity T
	if err := json.Unmarshal(entry.Value(), &entity); err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error unmarshaling %s", r.entityName),
			logging.ErrKey, err, "key", entry.Key())
		return nil, err
	}
	return &entity, nil
}

// Marshal marshals an entity to JSON bytes
func (r *NatsBaseRepository[T]) Marshal(ctx context.Context, entity *T) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error marshaling %s", r.entityName),
			logging.ErrKey, err)
		return nil, err
	}
	return data, nil
}

// Put stores an entity under key, replacing any previous value
func (r *NatsBaseRepository[T]) Put(ctx context.Context, key string, entity *T) error {
	ctx, span := r.startSpan(ctx, "put", attribute.String("db.nats.key", key))
	defer span.End()

	if !r.IsReady() {
		return failSpan(span, r.unavailable(), "")
	}

	data, err := r.Marshal(ctx, entity)
	if err != nil {
		return failSpan(span, domain.NewInternalError(fmt.Sprintf("failed to marshal %s", r.entityName), err), "")
	}

	if _, err := r.kvStore.Put(ctx, key, data); err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error storing %s in NATS KV", r.entityName),
			logging.ErrKey, err, "key", key)
		return failSpan(span, domain.NewInternalError(fmt.Sprintf("failed to store %s", r.entityName), err), "")
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes an entity from the store. A missing key counts as deleted.
func (r *NatsBaseRepository[T]) Delete(ctx context.Context, key string) error {
	ctx, span := r.startSpan(ctx, "delete", attribute.String("db.nats.key", key))
	defer span.End()

	if !r.IsReady() {
		return failSpan(span, r.unavailable(), "")
	}

	if err := r.kvStore.Delete(ctx, key); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			slog.DebugContext(ctx, fmt.Sprintf("%s already deleted", r.entityName), "key", key)
			span.SetStatus(codes.Ok, "already deleted")
			return nil
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error deleting %s from NATS KV", r.entityName),
			logging.ErrKey, err, "key", key)
		return failSpan(span, domain.NewInternalError(fmt.Sprintf("failed to delete %s from store", r.entityName), err), "")
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListKeys lists every key of the bucket, exhausting the lister before returning
func (r *NatsBaseRepository[T]) ListKeys(ctx context.Context) ([]string, error) {
	ctx, span := r.startSpan(ctx, "list_keys")
	defer span.End()

	if !r.IsReady() {
		return nil, failSpan(span, r.unavailable(), "")
	}

	lister, err := r.kvStore.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			span.SetAttributes(attribute.Int("db.nats.keys_count", 0))
			span.SetStatus(codes.Ok, "")
			return nil, nil
		}
		slog.ErrorContext(ctx, fmt.Sprintf("error listing %s keys from NATS KV", r.entityName),
			logging.ErrKey, err)
		return nil, failSpan(span, domain.NewInternalError(
			fmt.Sprintf("failed to list %s keys from store", r.entityName), err), "")
	}
	defer func() {
		_ = lister.Stop()
	}()

	var keys []string
	for key := range lister.Keys() {
		keys = append(keys, key)
	}

	span.SetAttributes(attribute.Int("db.nats.keys_count", len(keys)))
	span.SetStatus(codes.Ok, "")
	return keys, nil
}

// Find loads every entity whose key passes keyFilter and that matches the
// predicate. Keys removed between listing and reading are skipped; any other
// read error aborts the scan.
func (r *NatsBaseRepository[T]) Find(ctx context.Context, keyFilter func(string) bool, predicate query.Predicate[T]) ([]*T, error) {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	var entities []*T
	for _, key := range keys {
		if keyFilter != nil && !keyFilter(key) {
			continue
		}

		entity, err := r.Get(ctx, key)
		if err != nil {
			if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
				slog.DebugContext(ctx, fmt.Sprintf("%s vanished during scan, skipping", r.entityName), "key", key)
				continue
			}
			return nil, err
		}

		entities = append(entities, entity)
	}

	return query.Filter(entities, predicate), nil
}
