package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Source.Path != "data/user.db" || cfg.OutputDir != "data" || cfg.BatchSize != 100 {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	if !cfg.ValidateRows || cfg.StopOnError {
		t.Errorf("Expected validation on and stop-on-error off by default")
	}
	if len(cfg.Jobs) != 5 {
		t.Errorf("Expected 5 built-in jobs, got %d", len(cfg.Jobs))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestDefaultJobsDestinations(t *testing.T) {
	jobs := DefaultJobs()

	expected := []struct{ source, dest string }{
		{"DOWNLOAD_HISTORY", "NT_DOWNLOAD_HISTORY"},
		{"TRANSFER_HISTORY", "NT_TRANSFER_HISTORY"},
		{"USERRSS_TASK_HISTORY", "NT_TRANSFER_HISTORY"},
		{"downloadhistory", "MPV2_DOWNLOAD_HISTORY"},
		{"transferhistory", "MPV2_TRANSFER_HISTORY"},
	}
	for i, e := range expected {
		if jobs[i].Source != e.source || jobs[i].Dest != e.dest {
			t.Errorf("Job %d = %s -> %s, expected %s -> %s", i+1, jobs[i].Source, jobs[i].Dest, e.source, e.dest)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
source:
  driver: sqlite
  path: backup/user.db
batch_size: 500
validate: false
jobs:
  - source: DOWNLOAD_HISTORY
    columns: [TITLE, YEAR]
    dest: NT_DOWNLOAD_HISTORY
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config, %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error %v", err)
	}

	if cfg.Source.Path != "backup/user.db" {
		t.Errorf("Expected source path backup/user.db, got %s", cfg.Source.Path)
	}
	if cfg.BatchSize != 500 || cfg.ValidateRows {
		t.Errorf("Expected batch size 500 and validation off, got %d, %v", cfg.BatchSize, cfg.ValidateRows)
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Errorf("Expected default output dir to be kept, got %s", cfg.OutputDir)
	}
	if len(cfg.Jobs) != 1 || len(cfg.Jobs[0].Columns) != 2 || cfg.Jobs[0].Columns[1] != "YEAR" {
		t.Errorf("Expected the file's job list to replace the defaults, got %+v", cfg.Jobs)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("batch_size: [not, a, number]"), 0644); err != nil {
		t.Fatalf("Failed to write config, %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("Expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		expect bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, false},
		{"unknown driver", func(c *Config) { c.Source.Driver = "mongodb" }, false},
		{"mysql without host", func(c *Config) { c.Source.Driver = "mysql" }, false},
		{"mysql", func(c *Config) { c.Source.Driver = "mysql"; c.Source.Host = "db"; c.Source.DBName = "nastool" }, true},
		{"empty source path", func(c *Config) { c.Source.Path = "" }, false},
		{"no jobs", func(c *Config) { c.Jobs = nil }, false},
		{"bad table name", func(c *Config) { c.Jobs[0].Source = "x; DROP TABLE y" }, false},
		{"bad column name", func(c *Config) { c.Jobs[0].Columns = []string{"TITLE", "1YEAR"} }, false},
		{"no columns", func(c *Config) { c.Jobs[0].Columns = nil }, false},
		{"duplicate column", func(c *Config) { c.Jobs[0].Columns = []string{"TITLE", "title"} }, false},
	}

	for _, tc := range tests {
		cfg := Default()
		tc.modify(cfg)
		err := cfg.Validate()
		if (err == nil) != tc.expect {
			t.Errorf("[%s] expected success: %v, got error: %v", tc.name, tc.expect, err)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvSource, "other/user.db")
	t.Setenv(EnvOutputDir, "exports")
	t.Setenv(EnvBatchSize, "25")

	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv returned error %v", err)
	}
	if cfg.Source.Path != "other/user.db" || cfg.OutputDir != "exports" || cfg.BatchSize != 25 {
		t.Errorf("Environment overrides not applied: %+v", cfg)
	}

	t.Setenv(EnvBatchSize, "many")
	if err := ApplyEnv(Default()); err == nil {
		t.Errorf("Expected error for non-numeric batch size")
	}
}
