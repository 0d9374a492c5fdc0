// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package query builds record filters from optional search criteria.
package query

// Predicate reports whether a record matches.
type Predicate[T any] func(*T) bool

// True returns the predicate that matches every record.
func True[T any]() Predicate[T] {
	return func(*T) bool { return true }
}

// And folds the conjuncts into one predicate. Nil conjuncts are skipped and
// an empty list yields True.
func And[T any](conjuncts ...Predicate[T]) Predicate[T] {
	acc := True[T]()
	for _, p := range conjuncts {
		if p == nil {
			continue
		}
		prev, next := acc, p
		acc = func(t *T) bool { return prev(t) && next(t) }
	}
	return acc
}

// Filter returns the records matching the predicate, preserving order.
func Filter[T any](records []*T, p Predicate[T]) []*T {
	if p == nil {
		p = True[T]()
	}
	out := make([]*T, 0, len(records))
	for _, r := range records {
		if r != nil && p(r) {
			out = append(out, r)
		}
	}
	return out
}
