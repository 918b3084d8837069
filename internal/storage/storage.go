package storage

import (
	"context"
	"time"
)

// Storage defines the interface for the persistent build cache and the
// discovery registry read by the host-language loader.
type Storage interface {
	// Module cache operations
	UpsertModule(ctx context.Context, rec *ModuleRecord) error
	GetModule(ctx context.Context, name string) (*ModuleRecord, error)
	ListModules(ctx context.Context) ([]*ModuleRecord, error)
	DeleteModule(ctx context.Context, name string) error

	// Registry returns the discovery registry: every successfully built
	// module mapped to its artifact path and build hash.
	Registry(ctx context.Context) ([]RegistryEntry, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// ModuleRecord is the persisted cache row for one module. The content
// hash covers every linked source file concatenated with the descriptor
// text; a matching hash plus an existing artifact lets the orchestrator
// skip recompilation.
type ModuleRecord struct {
	ID             int64
	Name           string
	SourceFiles    []string
	DescriptorPath string
	ContentHash    [32]byte
	ArtifactPath   string
	Status         string // terminal build state: built or failed
	BuiltAt        time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RegistryEntry maps a module name to its loadable artifact. The host
// runtime loader reads these at import time; this builder never performs
// the load itself.
type RegistryEntry struct {
	Module       string
	ArtifactPath string
	ContentHash  [32]byte
	BuiltAt      time.Time
}
