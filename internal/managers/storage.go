package managers

import (
	"fmt"

	"github.com/chrissnell/pcfseg/internal/log"
	"github.com/chrissnell/pcfseg/internal/storage"
	"github.com/chrissnell/pcfseg/internal/storage/postgres"
	"github.com/chrissnell/pcfseg/internal/storage/sqlite"
	"github.com/chrissnell/pcfseg/pkg/config"
)

// NewStore opens the configured run storage backend. It returns a nil Store
// when no backend is configured.
func NewStore(c config.StorageData) (storage.Store, error) {
	switch {
	case c.SQLite != nil:
		log.Infof("opening SQLite run storage at %s", c.SQLite.Path)
		store, err := sqlite.Open(c.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("could not add SQLite storage backend: %w", err)
		}
		return store, nil
	case c.Postgres != nil:
		store, err := postgres.Open(c.Postgres.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("could not add PostgreSQL storage backend: %w", err)
		}
		return store, nil
	default:
		return nil, nil
	}
}
