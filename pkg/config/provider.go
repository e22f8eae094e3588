package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/chrissnell/pcfseg/internal/genome"
	"github.com/chrissnell/pcfseg/internal/perarm"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Segmentation SegmentationData `yaml:"segmentation" json:"segmentation"`
	Genome       GenomeData       `yaml:"genome" json:"genome"`
	Workers      WorkersData      `yaml:"workers" json:"workers"`
	Storage      StorageData      `yaml:"storage" json:"storage"`
	REST         RESTServerData   `yaml:"rest" json:"rest"`
}

// SegmentationData holds the per-arm segmentation parameters
type SegmentationData struct {
	Gamma           float64 `yaml:"gamma" json:"gamma"`
	Normalise       bool    `yaml:"normalise" json:"normalise"`
	MinArmPoints    int     `yaml:"min_arm_points" json:"min_arm_points"`
	Windowed        bool    `yaml:"windowed" json:"windowed"`
	SmoothingWindow int     `yaml:"smoothing_window" json:"smoothing_window"`
	MeanDigits      int     `yaml:"mean_digits" json:"mean_digits"`
}

// GenomeData selects the centromere table. Centromeres override or extend
// the table of Build.
type GenomeData struct {
	Build       string         `yaml:"build" json:"build"`
	Centromeres map[string]int `yaml:"centromeres,omitempty" json:"centromeres,omitempty"`
}

// WorkersData selects how per-arm tasks run. Executor is one of pool,
// limited or inline; PoolSize bounds the concurrent tasks of the first two,
// with zero meaning one per CPU.
type WorkersData struct {
	Executor string `yaml:"executor" json:"executor"`
	PoolSize int    `yaml:"pool_size" json:"pool_size"`
}

// StorageData holds the configuration for the run storage backends. At most
// one may be set.
type StorageData struct {
	SQLite   *SQLiteData   `yaml:"sqlite,omitempty" json:"sqlite,omitempty"`
	Postgres *PostgresData `yaml:"postgres,omitempty" json:"postgres,omitempty"`
}

type SQLiteData struct {
	Path string `yaml:"path" json:"path"`
}

type PostgresData struct {
	ConnectionString string `yaml:"connection_string" json:"connection_string"`
}

// DefaultMaxSeriesLength bounds the points accepted by one REST request.
const DefaultMaxSeriesLength = 1000000

// RESTServerData configures the REST API listener. MaxSeriesLength bounds
// the values of a segment request and the points of an arms request.
type RESTServerData struct {
	ListenAddr      string `yaml:"listen_addr" json:"listen_addr"`
	Port            int    `yaml:"port" json:"port"`
	MaxSeriesLength int    `yaml:"max_series_length" json:"max_series_length"`
}

// DefaultConfig returns the configuration used for every key a config file
// leaves out.
func DefaultConfig() *ConfigData {
	arm := perarm.DefaultConfig()
	return &ConfigData{
		Segmentation: SegmentationData{
			Gamma:           arm.Gamma,
			Normalise:       arm.Normalise,
			MinArmPoints:    arm.MinArmPoints,
			SmoothingWindow: arm.SmoothingWindow,
			MeanDigits:      arm.MeanDigits,
		},
		Genome: GenomeData{
			Build: string(genome.GRCh38),
		},
		Workers: WorkersData{
			Executor: string(perarm.ExecutorPool),
		},
		REST: RESTServerData{
			ListenAddr:      "localhost",
			Port:            8080,
			MaxSeriesLength: DefaultMaxSeriesLength,
		},
	}
}

// Validate checks the configuration for values the engine would reject.
func (c *ConfigData) Validate() error {
	var errs []error

	s := c.Segmentation
	if s.Gamma < 0 {
		errs = append(errs, fmt.Errorf("segmentation.gamma must not be negative, got %v", s.Gamma))
	}
	if s.MinArmPoints < 0 {
		errs = append(errs, fmt.Errorf("segmentation.min_arm_points must not be negative, got %d", s.MinArmPoints))
	}
	if s.SmoothingWindow < 1 || s.SmoothingWindow%2 == 0 {
		errs = append(errs, fmt.Errorf("segmentation.smoothing_window must be a positive odd number, got %d", s.SmoothingWindow))
	}
	if s.MeanDigits < 0 {
		errs = append(errs, fmt.Errorf("segmentation.mean_digits must not be negative, got %d", s.MeanDigits))
	}

	if _, err := c.Locator(); err != nil {
		errs = append(errs, err)
	}

	if _, err := perarm.ParseExecutorKind(c.Workers.Executor); err != nil {
		errs = append(errs, fmt.Errorf("workers.executor: %w", err))
	}
	if c.Workers.PoolSize < 0 {
		errs = append(errs, fmt.Errorf("workers.pool_size must not be negative, got %d", c.Workers.PoolSize))
	}

	if c.Storage.SQLite != nil && c.Storage.Postgres != nil {
		errs = append(errs, errors.New("storage: configure either sqlite or postgres, not both"))
	}
	if c.Storage.SQLite != nil && c.Storage.SQLite.Path == "" {
		errs = append(errs, errors.New("storage.sqlite.path is required"))
	}
	if c.Storage.Postgres != nil && c.Storage.Postgres.ConnectionString == "" {
		errs = append(errs, errors.New("storage.postgres.connection_string is required"))
	}

	if c.REST.Port < 0 || c.REST.Port > 65535 {
		errs = append(errs, fmt.Errorf("rest.port out of range: %d", c.REST.Port))
	}
	if c.REST.MaxSeriesLength < 0 {
		errs = append(errs, fmt.Errorf("rest.max_series_length must not be negative, got %d", c.REST.MaxSeriesLength))
	}

	return multierr.Combine(errs...)
}

// PerArm returns the per-arm segmenter parameters.
func (c *ConfigData) PerArm() perarm.Config {
	return perarm.Config{
		Gamma:           c.Segmentation.Gamma,
		Normalise:       c.Segmentation.Normalise,
		MinArmPoints:    c.Segmentation.MinArmPoints,
		SmoothingWindow: c.Segmentation.SmoothingWindow,
		MeanDigits:      c.Segmentation.MeanDigits,
	}
}

// Executor creates the configured per-arm executor and the function that
// releases it.
func (c *ConfigData) Executor() (perarm.Executor, func(), error) {
	kind, err := perarm.ParseExecutorKind(c.Workers.Executor)
	if err != nil {
		return nil, nil, fmt.Errorf("workers.executor: %w", err)
	}
	return perarm.NewExecutor(kind, c.Workers.PoolSize)
}

// Locator builds the arm locator of the configured build and overrides.
func (c *ConfigData) Locator() (*genome.Locator, error) {
	build, err := genome.ParseBuild(c.Genome.Build)
	if err != nil {
		return nil, fmt.Errorf("genome.build: %w", err)
	}
	table, err := genome.CentromereTableFor(build)
	if err != nil {
		return nil, err
	}
	if len(c.Genome.Centromeres) > 0 {
		if table, err = table.WithOverrides(c.Genome.Centromeres); err != nil {
			return nil, fmt.Errorf("genome.centromeres: %w", err)
		}
	}
	return genome.NewLocator(table), nil
}
