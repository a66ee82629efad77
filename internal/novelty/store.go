// Package novelty provides the recent-outputs store consulted by the
// novelty metric. The store is an optional collaborator: the gate treats a
// nil or failing store as "unknown" and scores novelty neutrally.
package novelty

import "context"

// Store tracks fingerprints of recently produced content.
type Store interface {
	// IsRecentDuplicate reports whether the hash was recorded recently.
	IsRecentDuplicate(ctx context.Context, hash string) (bool, error)
	// Record remembers the hash as recently produced.
	Record(ctx context.Context, hash string) error
}
