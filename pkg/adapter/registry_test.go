package adapter

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownAdapterError_Error(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "oracle",
		Available: []string{"duckdb", "postgres", "sqlite"},
	}

	assert.Equal(t, "unknown adapter type \"oracle\" (available: duckdb, postgres, sqlite)\n"+
		"Hint: set target.type in runlens.yaml or pass --target-type; leave both unset to load into in-memory sqlite",
		err.Error())
}

func TestRegister(t *testing.T) {
	Register("Test_Registry", func(_ *slog.Logger) Adapter { return nil })

	for _, name := range []string{"test_registry", "TEST_REGISTRY", "Test_Registry"} {
		assert.True(t, IsRegistered(name), "%s should resolve case-insensitively", name)
		factory, ok := Get(name)
		assert.True(t, ok)
		assert.NotNil(t, factory)
	}
	assert.Contains(t, ListAdapters(), "test_registry")
}

func TestNewAdapter(t *testing.T) {
	Register("test_known", func(_ *slog.Logger) Adapter { return nil })

	tests := []struct {
		name    string
		cfg     Config
		wantErr func(t *testing.T, err error)
	}{
		{
			name: "empty type",
			cfg:  Config{},
			wantErr: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrNoTargetType))
			},
		},
		{
			name: "unknown type",
			cfg:  Config{Type: "nope"},
			wantErr: func(t *testing.T, err error) {
				var unknown *UnknownAdapterError
				require.ErrorAs(t, err, &unknown)
				assert.Equal(t, "nope", unknown.Type)
				assert.Contains(t, unknown.Available, "test_known")
			},
		},
		{
			name: "known type",
			cfg:  Config{Type: "TEST_KNOWN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAdapter(tt.cfg, nil)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			tt.wantErr(t, err)
		})
	}
}

func TestListAdapters_Sorted(t *testing.T) {
	Register("zz_test_adapter", func(_ *slog.Logger) Adapter { return nil })
	Register("aa_test_adapter", func(_ *slog.Logger) Adapter { return nil })

	assert.IsIncreasing(t, ListAdapters())
}
