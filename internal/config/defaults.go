package config

import (
	"fmt"
	"os"
	"regexp"
)

// Default configuration values.
const (
	DefaultTable      = "data"
	DefaultTargetType = "sqlite"
	DefaultDatabase   = ":memory:"
	DefaultHost       = "127.0.0.1"
	DefaultPort       = 8765
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// ApplyDefaults fills unset values. Empty labels default to their column
// name so every widget, table and axis has something to show.
func ApplyDefaults(c *Config) {
	if c == nil {
		return
	}
	if c.Data.Table == "" {
		c.Data.Table = DefaultTable
	}
	if c.Target == nil {
		c.Target = &TargetConfig{}
	}
	ApplyTargetDefaults(c.Target)

	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.OutputFormat == "" {
		c.OutputFormat = DefaultOutput
	}

	for i := range c.Filters {
		if c.Filters[i].Label == "" {
			c.Filters[i].Label = c.Filters[i].Column
		}
	}
	for i := range c.Results.Columns {
		if c.Results.Columns[i].Label == "" {
			c.Results.Columns[i].Label = c.Results.Columns[i].Column
		}
	}
	defaultLabel(&c.Plot.XAxis.Label, c.Plot.XAxis.Name)
	defaultLabel(&c.Plot.ColorVariable.Label, c.Plot.ColorVariable.Name)
	for i := range c.Plot.YAxes {
		defaultLabel(&c.Plot.YAxes[i].Label, c.Plot.YAxes[i].Name)
	}
}

func defaultLabel(label *string, name string) {
	if *label == "" {
		*label = name
	}
}

// ApplyTargetDefaults applies default values based on the target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	if t.Type == "" {
		t.Type = DefaultTargetType
	}
	switch t.Type {
	case "sqlite", "duckdb":
		if t.Database == "" {
			t.Database = DefaultDatabase
		}
	case "postgres":
		if t.Port == 0 {
			t.Port = 5432
		}
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandEnvVars expands ${VAR} patterns with environment variable values.
// Unset variables are left as written.
func ExpandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}

// ExpandTargetEnvVars expands environment variables in the target fields
// that commonly hold credentials.
func ExpandTargetEnvVars(t *TargetConfig) {
	if t == nil {
		return
	}
	t.Password = ExpandEnvVars(t.Password)
	t.User = ExpandEnvVars(t.User)
	t.Host = ExpandEnvVars(t.Host)
	t.Database = ExpandEnvVars(t.Database)
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
