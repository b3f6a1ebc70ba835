// Package store defines the persistence ports of the ledger.
package store

import (
	"context"

	"poupa/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerStore persists income and expenses. It is authoritative: callers
	// load before every read-modify-write and never cache.
	LedgerStore interface {
		Load(ctx context.Context) (core.Ledger, error)
		Save(ctx context.Context, l core.Ledger) error
	}

	// TargetStore persists the user's budget target overrides. An empty
	// result means "use the defaults".
	TargetStore interface {
		LoadTargets(ctx context.Context) (core.TargetOverrides, error)
		SaveTargets(ctx context.Context, o core.TargetOverrides) error
		ClearTargets(ctx context.Context) error
	}

	// Store is what a backend provides.
	Store interface {
		LedgerStore
		TargetStore
	}
)
