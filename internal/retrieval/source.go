// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval fetches candidate papers from scholarly sources and
// runs an ordered list of retrieval strategies until one yields results.
package retrieval

import (
	"context"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// Source fetches raw paper records from a single scholarly endpoint. Each
// source (listing scrape, Atom API) implements this interface per the
// Strategy pattern and is triable in sequence.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query string, maxResults int) ([]types.PaperRecord, error)
}

// keepValid drops records that fail the minimum-field invariant. Dropping
// is silent: partial upstream data is never a user-facing error.
func keepValid(records []types.PaperRecord) []types.PaperRecord {
	valid := records[:0]
	for _, r := range records {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	return valid
}
