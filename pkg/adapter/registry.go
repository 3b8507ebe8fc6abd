package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// ErrNoTargetType is returned when an adapter is requested without a type.
var ErrNoTargetType = errors.New("target type not specified")

// Factory builds an adapter that logs to logger. A nil logger discards.
type Factory func(logger *slog.Logger) Adapter

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a target type available to runlens.yaml and --target-type.
// Adapter packages call it from init. Names are case-insensitive.
func Register(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[strings.ToLower(name)] = factory
}

// Get returns the factory registered for a target type.
func Get(name string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[strings.ToLower(name)]
	return f, ok
}

// IsRegistered reports whether a target type has an adapter.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// ListAdapters returns the registered target types in sorted order.
func ListAdapters() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	return slices.Sorted(maps.Keys(factories))
}

// NewAdapter creates an unconnected adapter for cfg.Type.
func NewAdapter(cfg core.AdapterConfig, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, ErrNoTargetType
	}
	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{Type: cfg.Type, Available: ListAdapters()}
	}
	return factory(logger), nil
}

// UnknownAdapterError is returned for a target type with no registered adapter.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q (available: %s)\n"+
		"Hint: set target.type in runlens.yaml or pass --target-type; leave both unset to load into in-memory sqlite",
		e.Type, strings.Join(e.Available, ", "))
}
