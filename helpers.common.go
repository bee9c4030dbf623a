package main

import (
	"context"
	"sort"
	"strconv"
	"strings"
)

type ContextKey string

const (
	OperationIDPrefix     string     = "op"
	OperationIDContextKey ContextKey = "op.id"
)

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val, ok := ctx.Value(contextKey).(string); ok {
		return val
	}
	return ""
}

// SortByNaturalKey orders records by their natural key, numerically when
// both keys are integers, then by identifier. The input is not modified.
func SortByNaturalKey[T Identifiable](records []T, key func(T) string) []T {
	sorted := make([]T, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := compareText(key(sorted[i]), key(sorted[j])); c != 0 {
			return c < 0
		}
		return compareText(sorted[i].RecordID(), sorted[j].RecordID()) < 0
	})
	return sorted
}

// compareText compares two values numerically when both parse as integers
// and lexically otherwise.
func compareText(a, b string) int {
	na, errA := strconv.Atoi(strings.TrimSpace(a))
	nb, errB := strconv.Atoi(strings.TrimSpace(b))
	switch {
	case errA == nil && errB == nil && na < nb:
		return -1
	case errA == nil && errB == nil && na > nb:
		return 1
	case errA == nil && errB == nil:
		return 0
	}
	return strings.Compare(a, b)
}
