// Package config loads the runlens configuration for the CLI.
//
// Values are layered with koanf, lowest precedence first: built-in defaults,
// the runlens.yaml file, RUNLENS_* environment variables, then flags that
// were explicitly set on the command line.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	intconfig "github.com/leapstack-labs/runlens/internal/config"
	"github.com/spf13/pflag"
)

// Config is the loaded runlens configuration.
type Config = intconfig.Config

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = intconfig.TargetConfig

// loggerKey is used to store logger in context.
type loggerKey struct{}

// envPrefix is stripped from environment variables. A double underscore
// separates nested keys: RUNLENS_SERVER__PORT sets server.port.
const envPrefix = "RUNLENS_"

// configNames are the file names searched for, in order.
var configNames = []string{"runlens.yaml", "runlens.yml"}

// flagKeys maps CLI flag names to configuration keys. Flags not listed map
// to their own name with dashes turned into underscores.
var flagKeys = map[string]string{
	"data":        "data.source",
	"table":       "data.table",
	"sheet":       "data.sheet",
	"delimiter":   "data.delimiter",
	"target-type": "target.type",
	"database":    "target.database",
	"host":        "server.host",
	"port":        "server.port",
}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
)

// findConfigFile returns the explicit path, or the first config file in dir.
func findConfigFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"data.table":  intconfig.DefaultTable,
		"server.host": intconfig.DefaultHost,
		"server.port": intconfig.DefaultPort,
		"verbose":     false,
		"output":      intconfig.DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = findConfigFile(cfgFile, cwd)
	baseDir := cwd
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			baseDir = filepath.Dir(abs)
		}
	}

	// 3. Load environment variables (RUNLENS_ prefix)
	// Transform: RUNLENS_DATA__SOURCE -> data.source
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	var flagData string
	if flags != nil {
		if f := flags.Lookup("data"); f != nil && f.Changed {
			flagData = f.Value.String()
		}
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve the dataset path. A --data flag is relative to the working
	// directory; a path from the config file is relative to that file.
	cfg.BaseDir = baseDir
	if flagData != "" {
		cfg.Data.Source = resolveDataSource(flagData, cwd)
	} else {
		cfg.Data.Source = resolveDataSource(cfg.Data.Source, baseDir)
	}

	intconfig.ApplyDefaults(&cfg)
	intconfig.ExpandTargetEnvVars(cfg.Target)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// resolveDataSource makes a local dataset path absolute against baseDir.
// URLs and absolute paths are returned unchanged.
func resolveDataSource(source, baseDir string) string {
	if source == "" || filepath.IsAbs(source) {
		return source
	}
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return source
	}
	return filepath.Join(baseDir, source)
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// configKey is used to store the loaded config in context.
type configKey struct{}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the loaded config from the command context, or nil
// when none was stored.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return nil
}
