// Package storage persists segmentation runs.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/chrissnell/pcfseg/internal/types"
)

// ErrNotFound is returned by GetRun for an unknown run ID.
var ErrNotFound = errors.New("storage: run not found")

// Run is one per-arm segmentation together with the parameters it used.
type Run struct {
	ID           string             `gorm:"primaryKey;column:id" json:"id"`
	CreatedAt    time.Time          `gorm:"column:created_at" json:"created_at"`
	Build        string             `gorm:"column:build" json:"build"`
	Gamma        float64            `gorm:"column:gamma" json:"gamma"`
	Normalise    bool               `gorm:"column:normalise" json:"normalise"`
	MinArmPoints int                `gorm:"column:min_arm_points" json:"min_arm_points"`
	Windowed     bool               `gorm:"column:windowed" json:"windowed"`
	Segments     []types.ArmSegment `gorm:"foreignKey:RunID;references:ID" json:"segments"`
}

// TableName sets the table used by GORM.
func (Run) TableName() string {
	return "runs"
}

// NewRun creates a run with a fresh random ID.
func NewRun(build string, gamma float64, normalise bool, minArmPoints int, windowed bool, segments []types.ArmSegment) *Run {
	return &Run{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Build:        build,
		Gamma:        gamma,
		Normalise:    normalise,
		MinArmPoints: minArmPoints,
		Windowed:     windowed,
		Segments:     segments,
	}
}

// ValidID reports whether id is a well-formed run ID.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

// Store saves and loads runs.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	Close() error
}
