package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/chrissnell/pcfseg/internal/storage"
	"github.com/chrissnell/pcfseg/internal/types"
)

// Set PCFSEG_TEST_POSTGRES to a connection string to run against a live
// database.
func TestSaveAndGetRun(t *testing.T) {
	dsn := os.Getenv("PCFSEG_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("PCFSEG_TEST_POSTGRES not set")
	}

	store, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	run := storage.NewRun("GRCh37", 50, false, 3, true, []types.ArmSegment{
		{Chromosome: "X", Arm: "Q", Start: 60000000, End: 61000000, Points: 8, Mean: 0.5},
	})
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun error: %v", err)
	}

	got, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun error: %v", err)
	}
	if len(got.Segments) != 1 || got.Segments[0].Mean != 0.5 || got.Segments[0].RunID != run.ID {
		t.Errorf("GetRun segments = %+v", got.Segments)
	}

	if _, err := store.GetRun(ctx, storage.NewRun("", 0, false, 0, false, nil).ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetRun error = %v, expected ErrNotFound", err)
	}
}
