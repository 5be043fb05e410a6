package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/habitual/internal/docstore"
	"github.com/julianstephens/habitual/internal/docstore/mongo"
	"github.com/julianstephens/habitual/internal/docstore/postgres"
	"github.com/julianstephens/habitual/internal/docstore/redis"
	"github.com/julianstephens/habitual/internal/docstore/sqlite"
)

// Kind names a backend.
type Kind string

const (
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
	KindMongo    Kind = "mongo"
	KindRedis    Kind = "redis"
	KindMemory   Kind = "memory"
)

// KindOf picks the backend for dsn from its scheme. Anything without a known
// scheme is a sqlite file path.
func KindOf(dsn string) Kind {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return KindPostgres
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return KindMongo
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return KindRedis
	case strings.HasPrefix(dsn, "memory://"):
		return KindMemory
	default:
		return KindSQLite
	}
}

// New returns an unopened Provider for dsn. Call Init or Load before use.
func New(dsn string) (Provider, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("store location is empty")
	}
	switch KindOf(dsn) {
	case KindPostgres:
		if err := postgres.ValidateConnString(dsn); err != nil {
			return nil, err
		}
		return postgres.New(dsn), nil
	case KindMongo:
		return mongo.New(dsn), nil
	case KindRedis:
		return redis.New(dsn), nil
	case KindMemory:
		return NewMemory(), nil
	default:
		return sqlite.New(strings.TrimPrefix(dsn, "sqlite://")), nil
	}
}

// Memory is a Provider over docstore.Memory. Nothing survives the process.
type Memory struct {
	*docstore.Memory
}

func NewMemory() *Memory {
	return &Memory{Memory: docstore.NewMemory()}
}

func (m *Memory) Init(ctx context.Context) error { return nil }
func (m *Memory) Load(ctx context.Context) error { return nil }
func (m *Memory) Describe() string               { return "memory" }
