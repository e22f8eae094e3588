// Package postgres stores segmentation runs in PostgreSQL through GORM.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/pcfseg/internal/log"
	"github.com/chrissnell/pcfseg/internal/storage"
	"github.com/chrissnell/pcfseg/internal/types"
)

// Store is a storage.Store backed by PostgreSQL.
type Store struct {
	db *gorm.DB
}

// Open connects to the database and migrates the run tables.
func Open(connectionString string) (*Store, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	log.Info("connecting to PostgreSQL...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to PostgreSQL: %w", err)
	}
	return NewStore(db)
}

// NewStore wraps an open GORM connection and migrates the run tables.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&storage.Run{}, &types.ArmSegment{}); err != nil {
		return nil, fmt.Errorf("failed to migrate run tables: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveRun writes run and its segments in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *storage.Run) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		segments := run.Segments

		if err := tx.Omit(clause.Associations).Create(run).Error; err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
		if len(segments) == 0 {
			return nil
		}

		rows := make([]types.ArmSegment, len(segments))
		for i, seg := range segments {
			seg.ID = 0
			seg.RunID = run.ID
			rows[i] = seg
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("failed to insert segments: %w", err)
		}
		return nil
	})
}

// GetRun loads the run with the given ID.
func (s *Store) GetRun(ctx context.Context, id string) (*storage.Run, error) {
	var run storage.Run
	err := s.db.WithContext(ctx).
		Preload("Segments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&run, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return &run, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
