package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSourcePath = "data/user.db"
	DefaultOutputDir  = "data"
	DefaultBatchSize  = 100
)

// same rule as database.ValidateIdentifier, which cannot be imported here since database depends on config
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Job is one extraction call: columns of a source table copied into a destination table
type Job struct {
	Source  string   `yaml:"source"`
	Columns []string `yaml:"columns"`
	Dest    string   `yaml:"dest"`
}

type SourceConfig struct {
	Driver   string `yaml:"driver"` // sqlite, mysql, postgresql
	Path     string `yaml:"path"`   // sqlite only
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// config struct to map config.yaml
type Config struct {
	Source       SourceConfig `yaml:"source"`
	OutputDir    string       `yaml:"output_dir"`
	BatchSize    int          `yaml:"batch_size"`
	ValidateRows bool         `yaml:"validate"` // compare source and copied row counts
	StopOnError  bool         `yaml:"stop_on_error"`
	Jobs         []Job        `yaml:"jobs"`
}

// Default reproduces the fixed invocation: data/user.db into data/, built-in jobs.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Driver: "sqlite",
			Path:   DefaultSourcePath,
		},
		OutputDir:    DefaultOutputDir,
		BatchSize:    DefaultBatchSize,
		ValidateRows: true,
		Jobs:         DefaultJobs(),
	}
}

// LoadConfig reads a YAML file on top of the defaults; a jobs list in the file replaces the built-in one.
func LoadConfig(filepath string) (*Config, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(content, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Source.Driver) {
	case "", "sqlite":
		if c.Source.Path == "" {
			return fmt.Errorf("source path must be specified for sqlite")
		}
	case "mysql", "postgresql":
		if c.Source.Host == "" || c.Source.DBName == "" {
			return fmt.Errorf("source host and dbname must be specified for %s", c.Source.Driver)
		}
	default:
		return fmt.Errorf("invalid source database type %s", c.Source.Driver)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output directory must be specified")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	}
	if len(c.Jobs) == 0 {
		return fmt.Errorf("no extraction jobs configured")
	}

	for i, job := range c.Jobs {
		if err := job.validate(); err != nil {
			return fmt.Errorf("job %d: %w", i+1, err)
		}
	}
	return nil
}

func (j Job) validate() error {
	if !identPattern.MatchString(j.Source) {
		return fmt.Errorf("invalid source table name %q", j.Source)
	}
	if !identPattern.MatchString(j.Dest) {
		return fmt.Errorf("invalid destination table name %q", j.Dest)
	}
	if len(j.Columns) == 0 {
		return fmt.Errorf("no columns listed for table %s", j.Source)
	}
	seen := make(map[string]bool, len(j.Columns))
	for _, col := range j.Columns {
		if !identPattern.MatchString(col) {
			return fmt.Errorf("invalid column name %q for table %s", col, j.Source)
		}
		// column names are case-insensitive
		key := strings.ToLower(col)
		if seen[key] {
			return fmt.Errorf("column %s listed twice for table %s", col, j.Source)
		}
		seen[key] = true
	}
	return nil
}
