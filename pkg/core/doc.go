// Package core defines the shared language of runlens.
//
// This package contains:
//   - Configuration model (FilterSpec, ResultsConfig, PlotSpec, TargetConfig)
//   - Selection state (Selection, Choice)
//   - Tabular results (Table) and scalar value helpers
//   - The error taxonomy shared by every layer
//
// The Golden Rule: pkg/core imports only the standard library.
// All other packages depend on core, not the reverse.
package core
