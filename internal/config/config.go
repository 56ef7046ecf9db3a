// Package config loads the artboard configuration from YAML with
// environment variable expansion. A .env file in the working directory is
// loaded into the environment first.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	_ "github.com/joho/godotenv/autoload"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"artboard/internal/domain"
	"artboard/internal/storage"
)

// Validator is implemented by configuration sections.
type Validator interface {
	Validate() error
}

// Config represents the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Data     DataConfig     `yaml:"data"`
	Storage  StorageConfig  `yaml:"storage"`
	Editor   EditorConfig   `yaml:"editor"`
	Autosave AutosaveConfig `yaml:"autosave"`
	MCP      MCPConfig      `yaml:"mcp"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []Validator{&c.Log, &c.Data, &c.Storage, &c.Editor, &c.Autosave, &c.MCP} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
}

func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
	)
}

// DataConfig holds the directory for the database, images and snapshots.
type DataConfig struct {
	Dir string `yaml:"dir"`
}

func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// StorageConfig selects the storage backend. An empty DSN with the sqlite
// driver means <data.dir>/artboard.db.
type StorageConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Database string `yaml:"database"` // mongodb only
}

func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(
			storage.DriverSQLite, storage.DriverPostgres, storage.DriverMySQL, storage.DriverMongoDB)),
		validation.Field(&c.DSN, validation.When(c.Driver != storage.DriverSQLite, validation.Required)),
		validation.Field(&c.Database, validation.When(c.Driver == storage.DriverMongoDB, validation.Required)),
	)
}

// EditorConfig holds the defaults for new artboards.
type EditorConfig struct {
	Unit   domain.Unit `yaml:"unit"`
	Width  float64     `yaml:"width"`
	Height float64     `yaml:"height"`
}

func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Unit, validation.Required, validation.In(domain.UnitInch, domain.UnitPixel)),
		validation.Field(&c.Width, validation.Required, validation.Min(0.0)),
		validation.Field(&c.Height, validation.Required, validation.Min(0.0)),
	)
}

// AutosaveConfig schedules YAML snapshots. An empty schedule disables them.
type AutosaveConfig struct {
	Schedule string `yaml:"schedule"`
	Dir      string `yaml:"dir"`
	Keep     int    `yaml:"keep"`
}

func (c *AutosaveConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Schedule, validation.By(cronSpec)),
		validation.Field(&c.Keep, validation.Min(0)),
	)
}

func cronSpec(value any) error {
	spec, _ := value.(string)
	if spec == "" {
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron schedule: %w", err)
	}
	return nil
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	Name string `yaml:"name"`
	// Addr, when set, serves MCP over HTTP from the desktop app.
	Addr string `yaml:"addr"`
	// AutoApprove lets destructive tools run without asking the desktop UI.
	AutoApprove bool `yaml:"auto_approve"`
}

func (c *MCPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
	)
}

// NewDefaultConfig returns a Config with sensible default values.
func NewDefaultConfig() *Config {
	dataDir := "./artboard-data"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".local", "share", "artboard")
	}
	return &Config{
		Log:     LogConfig{Level: "info"},
		Data:    DataConfig{Dir: dataDir},
		Storage: StorageConfig{Driver: storage.DriverSQLite},
		Editor:  EditorConfig{Unit: domain.UnitInch, Width: 8.5, Height: 11},
		Autosave: AutosaveConfig{
			Schedule: "@every 5m",
			Keep:     10,
		},
		MCP: MCPConfig{Name: "artboard-mcp"},
	}
}

// DatabasePath is the sqlite file used when no DSN is configured.
func (c *Config) DatabasePath() string {
	if c.Storage.DSN != "" {
		return c.Storage.DSN
	}
	return filepath.Join(c.Data.Dir, "artboard.db")
}

// ImagesDir is where uploaded images are stored.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.Data.Dir, "images")
}

// SnapshotsDir is where autosave writes snapshots.
func (c *Config) SnapshotsDir() string {
	if c.Autosave.Dir != "" {
		return c.Autosave.Dir
	}
	return filepath.Join(c.Data.Dir, "snapshots")
}

// Load reads filename into target with environment variable expansion and
// validates the result.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// LoadFile loads the configuration at filename over the defaults. An empty
// filename, or a missing file at the default location, yields the validated
// defaults.
func LoadFile(filename string) (*Config, error) {
	cfg := NewDefaultConfig()
	if filename == "" {
		filename = DefaultPath()
		if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
	}
	if err := Load(filename, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath is ~/.config/artboard/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "artboard", "config.yaml")
}
