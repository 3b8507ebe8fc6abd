// Package config provides the runlens configuration model.
//
// The types here are loaded by the CLI (internal/cli/config) through koanf
// and consumed by the engine and the HTTP server. Column-level types live in
// pkg/core and are re-exported here as aliases.
package config

import (
	"github.com/leapstack-labs/runlens/pkg/core"
)

// Aliases for the core configuration records.
type (
	// TargetConfig is an alias for core.TargetConfig.
	TargetConfig = core.TargetConfig
	// FilterSpec is an alias for core.FilterSpec.
	FilterSpec = core.FilterSpec
	// ResultsConfig is an alias for core.ResultsConfig.
	ResultsConfig = core.ResultsConfig
	// PlotSpec is an alias for core.PlotSpec.
	PlotSpec = core.PlotSpec
)

// DataConfig locates the runs dataset.
type DataConfig struct {
	// Source is a .csv, .tsv or .xlsx path, or an http(s) URL to one.
	Source    string `koanf:"source" yaml:"source"`
	Table     string `koanf:"table" yaml:"table,omitempty"`
	Delimiter string `koanf:"delimiter" yaml:"delimiter,omitempty"`
	Sheet     string `koanf:"sheet" yaml:"sheet,omitempty"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Host string `koanf:"host" yaml:"host,omitempty"`
	Port int    `koanf:"port" yaml:"port,omitempty"`
}

// Config is the complete runlens configuration.
type Config struct {
	Data         DataConfig    `koanf:"data" yaml:"data"`
	Target       *TargetConfig `koanf:"target" yaml:"target,omitempty"`
	Filters      []FilterSpec  `koanf:"filters" yaml:"filters"`
	Results      ResultsConfig `koanf:"results" yaml:"results"`
	Plot         PlotSpec      `koanf:"plot" yaml:"plot,omitempty"`
	Server       ServerConfig  `koanf:"server" yaml:"server,omitempty"`
	Verbose      bool          `koanf:"verbose" yaml:"-"`
	OutputFormat string        `koanf:"output" yaml:"-"`

	// BaseDir is the directory relative dataset paths resolve against.
	BaseDir string `koanf:"-" yaml:"-"`
}

// Filter returns the filter on column, if configured.
func (c *Config) Filter(column string) (FilterSpec, bool) {
	for _, f := range c.Filters {
		if f.Column == column {
			return f, true
		}
	}
	return FilterSpec{}, false
}
