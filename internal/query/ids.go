// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package query

import (
	"sort"
	"strings"
)

// IDSet is a set of record identifiers.
type IDSet map[string]struct{}

// ParseIDSet parses a comma-separated identifier list. Whitespace around each
// token is trimmed and empty tokens are dropped. A nil set is returned when no
// token remains, meaning the criterion is absent.
func ParseIDSet(raw string) IDSet {
	var set IDSet
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if set == nil {
			set = make(IDSet)
		}
		set[token] = struct{}{}
	}
	return set
}

// JoinIDs renders identifiers in the list format accepted by ParseIDSet.
func JoinIDs(ids []string) string {
	return strings.Join(ids, ", ")
}

// Contains reports whether id is in the set.
func (s IDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the identifiers in lexical order.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
