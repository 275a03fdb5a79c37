// Package config handles stamptool configuration loading and management.
package config

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/terrastamp/internal/logger"
	"github.com/Faultbox/terrastamp/pkg/stamp"
)

// Breakline export formats accepted in Output.Breaklines.
const (
	FormatGeoJSON = "geojson"
	FormatDXF     = "dxf"
)

// Config holds all tool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Stamp   StampConfig   `yaml:"stamp"`
	Output  OutputConfig  `yaml:"output"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Options converts the settings for logger.Init. Console entries go to stderr.
func (l LoggingConfig) Options(console bool) logger.Options {
	return logger.Options{
		Level:   l.Level,
		Console: console,
		File: logger.FileConfig{
			Path:       l.LogFile,
			MaxSizeMB:  l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
			MaxAgeDays: l.MaxAgeDays,
			Compress:   l.Compress,
		},
	}
}

// StampConfig holds stamping engine settings.
type StampConfig struct {
	Workers     int                `yaml:"workers"`      // 0 = one per CPU
	DefaultType stamp.StampingType `yaml:"default_type"` // for jobs that name none
}

// OutputConfig holds result file settings.
type OutputConfig struct {
	Dir             string   `yaml:"dir"`
	RasterPrecision int      `yaml:"raster_precision"` // -1 = shortest exact
	Breaklines      []string `yaml:"breaklines"`       // geojson, dxf
	Triangles       bool     `yaml:"triangles"`        // also export TIN faces
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Stamp: StampConfig{
			Workers:     0,
			DefaultType: stamp.Fill,
		},
		Output: OutputConfig{
			Dir:             ".",
			RasterPrecision: -1,
			Breaklines:      []string{FormatGeoJSON},
			Triangles:       false,
		},
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var err error
	if _, lerr := logger.ParseLevel(c.Logging.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", lerr))
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		err = multierr.Append(err, fmt.Errorf("logging: rotation limits must not be negative"))
	}
	if c.Stamp.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("stamp.workers: must be >= 0, got %d", c.Stamp.Workers))
	}
	if c.Output.RasterPrecision < -1 {
		err = multierr.Append(err, fmt.Errorf("output.raster_precision: must be >= -1, got %d", c.Output.RasterPrecision))
	}
	for _, f := range c.Output.Breaklines {
		if f != FormatGeoJSON && f != FormatDXF {
			err = multierr.Append(err, fmt.Errorf("output.breaklines: unknown format %q", f))
		}
	}
	return err
}
