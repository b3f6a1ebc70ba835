// Package backend builds the persistence and change-notification stack
// selected by configuration.
package backend

import (
	"context"

	"poupa/internal/services"
	"poupa/internal/store"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result is what a Factory hands to the binaries.
type Result struct {
	Store store.Store
	// Publisher is nil when no broker is configured.
	Publisher services.ChangePublisher
	// Ready reports whether the store can serve requests.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Close runs Cleanup when one is set.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

type Config struct {
	Type BackendType

	// SQLite
	SQLiteDBPath string

	// Memory; empty keeps state in process only
	StateFile string

	// AMQP, optional for either backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
