package backend

import (
	"context"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/services"
)

// CleanupFunc releases the resources a backend holds.
type CleanupFunc func() error

// BackendResult is an opened backend: the repository, plus the broker client
// when AMQP is configured.
type BackendResult struct {
	Repo services.Repository
	// AMQP is nil when no broker URL is configured or the broker was
	// unreachable at startup.
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Publisher returns where activity events should go: the broker when one is
// connected, otherwise straight into the repository.
func (r *BackendResult) Publisher() services.ActivityPublisher {
	if r.AMQP != nil {
		return r.AMQP
	}
	return services.DirectPublisher{Repo: r.Repo}
}

// Ready reports whether the repository is reachable. Backends without a
// health probe are always ready.
func (r *BackendResult) Ready(ctx context.Context) error {
	if p, ok := r.Repo.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string

	MongoURI      string
	MongoDatabase string

	// AMQP is optional for every backend type.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
	MongoBackend  BackendType = "mongo"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend, MongoBackend:
		return true
	default:
		return false
	}
}
