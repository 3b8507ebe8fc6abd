package duckdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    *Params
		wantErr bool
	}{
		{
			name:  "nil params returns empty struct",
			input: nil,
			want:  &Params{},
		},
		{
			name:  "empty map returns empty struct",
			input: map[string]any{},
			want:  &Params{},
		},
		{
			name:  "extensions",
			input: map[string]any{"extensions": []any{"httpfs", "excel"}},
			want:  &Params{Extensions: []string{"httpfs", "excel"}},
		},
		{
			name: "settings with numeric values",
			input: map[string]any{
				"settings": map[string]any{"memory_limit": "4GB", "threads": 4},
			},
			want: &Params{Settings: map[string]string{"memory_limit": "4GB", "threads": "4"}},
		},
		{
			name: "secret with scope list and ssl flag",
			input: map[string]any{
				"secrets": []any{
					map[string]any{
						"type":     "s3",
						"provider": "config",
						"scope":    []any{"s3://runs-a", "s3://runs-b"},
						"use_ssl":  false,
					},
				},
			},
			want: &Params{
				Secrets: []SecretConfig{
					{Type: "s3", Provider: "config", Scope: []any{"s3://runs-a", "s3://runs-b"}, UseSSL: boolPtr(false)},
				},
			},
		},
		{
			name:    "unknown key rejected",
			input:   map[string]any{"extension": "httpfs"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func boolPtr(b bool) *bool {
	return &b
}
