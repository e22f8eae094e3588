package managers

import (
	"path/filepath"
	"testing"

	"github.com/chrissnell/pcfseg/pkg/config"
)

func TestNewStore(t *testing.T) {
	store, err := NewStore(config.StorageData{})
	if err != nil || store != nil {
		t.Errorf("NewStore(none) = %v, %v, expected nil, nil", store, err)
	}

	path := filepath.Join(t.TempDir(), "runs.db")
	store, err = NewStore(config.StorageData{SQLite: &config.SQLiteData{Path: path}})
	if err != nil {
		t.Fatalf("NewStore(sqlite) error: %v", err)
	}
	if store == nil {
		t.Fatal("NewStore(sqlite) returned nil store")
	}
	store.Close()
}
