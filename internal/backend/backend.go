// Package backend wires a storage backend and the optional AMQP client
// based on configuration.
package backend

import (
	"context"

	"bindo/internal/amqp"
	"bindo/internal/config"
	"bindo/internal/services"
)

// Type selects the storage implementation.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) IsValid() bool {
	return t == SQLiteBackend || t == MemoryBackend
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result contains the wired store, the broker client when one connected,
// and the cleanup for both.
type Result struct {
	Store      services.ItemStore
	AMQPClient *amqp.Client
	Cleanup    CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, cfg *config.Config) (*Result, error)
}
