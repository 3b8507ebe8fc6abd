package core

import (
	"fmt"
	"slices"
)

// FilterKind identifies how a filter column is selected.
type FilterKind string

// Filter kinds.
const (
	// FilterSingleValued is an exact-match dropdown.
	FilterSingleValued FilterKind = "single_valued"
	// FilterRangeDiscrete is a pair of bounded dropdowns over a small domain.
	FilterRangeDiscrete FilterKind = "range_discrete"
	// FilterRangeContinuous is a slider over a large or continuous domain.
	FilterRangeContinuous FilterKind = "range_continuous"
)

// IsRange reports whether the kind selects a (min, max) pair.
func (k FilterKind) IsRange() bool {
	return k == FilterRangeDiscrete || k == FilterRangeContinuous
}

// Valid reports whether k is a known filter kind.
func (k FilterKind) Valid() bool {
	switch k {
	case FilterSingleValued, FilterRangeDiscrete, FilterRangeContinuous:
		return true
	}
	return false
}

// FilterSpec describes one filterable column.
type FilterSpec struct {
	Kind   FilterKind `koanf:"kind" json:"kind" yaml:"kind"`
	Column string     `koanf:"column" json:"column" yaml:"column"`
	Label  string     `koanf:"label" json:"label" yaml:"label"`
}

// ResultColumnSpec names a column whose mean and standard deviation are reported.
type ResultColumnSpec struct {
	Column string `koanf:"column" json:"column" yaml:"column"`
	Label  string `koanf:"label" json:"label" yaml:"label"`
}

// ResultsConfig lists the result columns and the optional condition prefixes.
type ResultsConfig struct {
	Columns           []ResultColumnSpec `koanf:"columns" json:"columns" yaml:"columns"`
	ConditionPrefixes []string           `koanf:"condition_prefixes" json:"condition_prefixes,omitempty" yaml:"condition_prefixes,omitempty"`
}

// UsesPrefixes reports whether result columns are read under a condition prefix.
func (r ResultsConfig) UsesPrefixes() bool {
	return len(r.ConditionPrefixes) > 0
}

// ValidatePrefix checks that prefix is a configured condition prefix,
// or empty when none are configured.
func (r ResultsConfig) ValidatePrefix(prefix string) error {
	if !r.UsesPrefixes() {
		if prefix == "" {
			return nil
		}
	} else if slices.Contains(r.ConditionPrefixes, prefix) {
		return nil
	}
	return &PrefixError{Prefix: prefix, Allowed: r.ConditionPrefixes}
}

// ColumnRef is a column name paired with its display label.
type ColumnRef struct {
	Name  string `koanf:"name" json:"name" yaml:"name"`
	Label string `koanf:"label" json:"label" yaml:"label"`
}

// PlotSpec describes the multi-panel comparison plot.
type PlotSpec struct {
	XAxis         ColumnRef   `koanf:"x_axis" json:"x_axis" yaml:"x_axis"`
	YAxes         []ColumnRef `koanf:"y_axes" json:"y_axes" yaml:"y_axes"`
	ColorVariable ColumnRef   `koanf:"color_variable" json:"color_variable" yaml:"color_variable"`
}

// EffectiveColumn returns the column name read under a condition prefix.
// An empty prefix leaves the column unchanged.
func EffectiveColumn(prefix, column string) string {
	if prefix == "" {
		return column
	}
	return prefix + "_" + column
}

// TargetConfig selects the adapter that backs the data source.
type TargetConfig struct {
	Type     string            `koanf:"type" json:"type" yaml:"type"`
	Database string            `koanf:"database" json:"database,omitempty" yaml:"database,omitempty"`
	Schema   string            `koanf:"schema" json:"schema,omitempty" yaml:"schema,omitempty"`
	Host     string            `koanf:"host" json:"host,omitempty" yaml:"host,omitempty"`
	Port     int               `koanf:"port" json:"port,omitempty" yaml:"port,omitempty"`
	User     string            `koanf:"user" json:"user,omitempty" yaml:"user,omitempty"`
	Password string            `koanf:"password" json:"-" yaml:"password,omitempty"`
	Options  map[string]string `koanf:"options" json:"options,omitempty" yaml:"options,omitempty"`
	Params   map[string]any    `koanf:"params" json:"params,omitempty" yaml:"params,omitempty"`
}

// AdapterConfig converts the target into the adapter connection settings.
func (t *TargetConfig) AdapterConfig() AdapterConfig {
	return AdapterConfig{
		Type:     t.Type,
		Path:     t.Database,
		Database: t.Database,
		Schema:   t.Schema,
		Host:     t.Host,
		Port:     t.Port,
		Username: t.User,
		Password: t.Password,
		Options:  t.Options,
		Params:   t.Params,
	}
}

// String implements fmt.Stringer for log output. The password is never printed.
func (t *TargetConfig) String() string {
	if t.Host != "" {
		return fmt.Sprintf("%s://%s:%d/%s", t.Type, t.Host, t.Port, t.Database)
	}
	return fmt.Sprintf("%s:%s", t.Type, t.Database)
}
