package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chrissnell/pcfseg/internal/genome"
	"github.com/chrissnell/pcfseg/internal/perarm"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if cfg.Segmentation.Gamma != 100 || !cfg.Segmentation.Normalise || cfg.Segmentation.SmoothingWindow != 5 {
		t.Errorf("defaults = %+v", cfg.Segmentation)
	}
	if cfg.Genome.Build != "GRCh38" {
		t.Errorf("default build = %q, expected GRCh38", cfg.Genome.Build)
	}
	if cfg.Storage.SQLite != nil || cfg.Storage.Postgres != nil {
		t.Errorf("default storage = %+v, expected none", cfg.Storage)
	}
	if cfg.Workers.Executor != "pool" || cfg.REST.MaxSeriesLength != DefaultMaxSeriesLength {
		t.Errorf("defaults = %+v %+v", cfg.Workers, cfg.REST)
	}
}

func TestParseOverrides(t *testing.T) {
	data := `
segmentation:
  gamma: 40
  normalise: false
  min_arm_points: 10
genome:
  build: hg19
  centromeres:
    chr1: 1000
workers:
  executor: limited
  pool_size: 4
storage:
  sqlite:
    path: /tmp/runs.db
rest:
  port: 9090
  max_series_length: 5000
`
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	arm := cfg.PerArm()
	if arm.Gamma != 40 || arm.Normalise || arm.MinArmPoints != 10 || arm.SmoothingWindow != 5 || arm.MeanDigits != 3 {
		t.Errorf("PerArm = %+v", arm)
	}
	if cfg.Workers.PoolSize != 4 || cfg.REST.Port != 9090 || cfg.REST.ListenAddr != "localhost" || cfg.REST.MaxSeriesLength != 5000 {
		t.Errorf("workers/rest = %+v %+v", cfg.Workers, cfg.REST)
	}

	exec, release, err := cfg.Executor()
	if err != nil {
		t.Fatalf("Executor error: %v", err)
	}
	defer release()
	if _, ok := exec.(*perarm.LimitedExecutor); !ok {
		t.Errorf("Executor() = %T, expected *perarm.LimitedExecutor", exec)
	}
	if cfg.Storage.SQLite == nil || cfg.Storage.SQLite.Path != "/tmp/runs.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}

	locator, err := cfg.Locator()
	if err != nil {
		t.Fatalf("Locator error: %v", err)
	}
	if arm, _ := locator.Map("1", 1001); arm.Arm != genome.Q {
		t.Errorf("overridden chr1 at 1001 = %v, expected Q", arm)
	}
	if arm, _ := locator.Map("2", 92326171); arm.Arm != genome.P {
		t.Errorf("GRCh37 chr2 boundary = %v, expected P", arm)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		message string
	}{
		{"even window", "segmentation:\n  smoothing_window: 4\n", "smoothing_window"},
		{"negative gamma", "segmentation:\n  gamma: -1\n", "gamma"},
		{"unknown build", "genome:\n  build: hg18\n", "genome.build"},
		{"bad centromere", "genome:\n  centromeres:\n    chr1: 0\n", "genome.centromeres"},
		{"two stores", "storage:\n  sqlite:\n    path: a.db\n  postgres:\n    connection_string: x\n", "not both"},
		{"unknown key", "segmentation:\n  gama: 3\n", "gama"},
		{"bad port", "rest:\n  port: 70000\n", "rest.port"},
		{"unknown executor", "workers:\n  executor: threads\n", "workers.executor"},
		{"negative series limit", "rest:\n  max_series_length: -1\n", "rest.max_series_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not mention %q", err, tt.message)
			}
		})
	}
}

func TestYAMLProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("segmentation:\n  gamma: 25\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	provider := NewYAMLProvider(path)
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Segmentation.Gamma != 25 {
		t.Errorf("gamma = %v, expected 25", cfg.Segmentation.Gamma)
	}
	if !provider.IsReadOnly() {
		t.Error("IsReadOnly = false, expected true")
	}

	if _, err := NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml")).LoadConfig(); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestExampleConfig(t *testing.T) {
	cfg, err := NewYAMLProvider(filepath.Join("..", "..", "config.example.yaml")).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Storage.SQLite == nil || cfg.Segmentation.MinArmPoints != 10 || cfg.Workers.Executor != "pool" {
		t.Errorf("example config = %+v", cfg)
	}
}
