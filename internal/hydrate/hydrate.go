// Package hydrate defines the seam through which platform-specific logic
// forces cloud-hydrated ("online-only") files to be materialized on local
// disk before they are hashed. This is explicitly out of the sync engine's
// core scope (spec.md §1): the engine only depends on the Hydrator
// interface, never on a concrete cloud-storage SDK.
package hydrate

import "context"

// Hydrator is consulted by the indexer immediately before it reads a
// file's size/mtime and (if needed) its content, giving an implementation
// the chance to force materialization of a cloud-only placeholder.
type Hydrator interface {
	Hydrate(ctx context.Context, absPath string) error
}

// Nop is the default Hydrator: every path is assumed already resident on
// local disk. Platform-specific builds (OneDrive, iCloud, ...) provide
// their own implementation; none is part of this specification's core.
type Nop struct{}

// Hydrate implements Hydrator and never fails.
func (Nop) Hydrate(context.Context, string) error {
	return nil
}
