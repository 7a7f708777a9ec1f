// Package dedupe tracks respondent identities already seen in a run.
package dedupe

import (
	"context"
	"strings"
)

// Deduper records seen respondent identifiers.
type Deduper interface {
	// SeenAndRecord checks if id was seen and records it with line if not.
	// When id was already seen it returns the line that first used it.
	SeenAndRecord(ctx context.Context, id string, line int) (firstLine int, seen bool)

	Size() int
}

// inMemoryDeduper implements Deduper with a map keyed by the normalized id.
type inMemoryDeduper struct {
	seen map[string]int // key -> first line
	key  func(string) string
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		seen: make(map[string]int),
		key:  defaultKey,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func defaultKey(id string) string {
	return strings.ToLower(strings.Join(strings.Fields(id), " "))
}

// SeenAndRecord implements Deduper. Blank ids are never considered duplicates.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string, line int) (int, bool) {
	k := d.key(id)
	if k == "" {
		return 0, false
	}
	if first, exists := d.seen[k]; exists {
		return first, true
	}
	d.seen[k] = line
	return line, false
}

// Size returns the number of distinct identifiers recorded.
func (d *inMemoryDeduper) Size() int {
	return len(d.seen)
}
