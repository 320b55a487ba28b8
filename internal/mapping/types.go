// Package mapping provides the ReEDS to R2X dataset mapping table: loading,
// schema validation, structural checks, and lookup. This package has no HTTP
// or database dependencies and can be used by any frontend.
package mapping

import (
	"sort"
	"strings"
)

// Entry describes a single ReEDS dataset: where its file lives, whether it is
// a model input or output, and how its columns translate to canonical R2X
// names. Only Fname is required; everything else is optional metadata.
type Entry struct {
	// Fname is the source file name on disk, relative to the run folder.
	Fname string `json:"fname" yaml:"fname"`

	// ColumnMapping maps original column names to canonical R2X names.
	ColumnMapping map[string]string `json:"column_mapping,omitempty" yaml:"column_mapping,omitempty"`

	// Input marks files that originate as model inputs rather than outputs.
	Input bool `json:"input,omitempty" yaml:"input,omitempty"`

	// Mandatory marks files that must exist for a translation to proceed.
	Mandatory bool `json:"mandatory,omitempty" yaml:"mandatory,omitempty"`

	// Optional is tri-state: nil means unspecified, false means the file is
	// required, true means the translation may proceed without it.
	Optional *bool `json:"optional,omitempty" yaml:"optional,omitempty"`

	// Units is the physical unit of the value column, free text. "-" marks
	// dimensionless data.
	Units string `json:"units,omitempty" yaml:"units,omitempty"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Note        string `json:"note,omitempty" yaml:"note,omitempty"`

	// Dtype forces the value column to a specific type when the file carries
	// no header to infer it from (e.g. "int64", "float64").
	Dtype string `json:"dtype,omitempty" yaml:"dtype,omitempty"`

	// Columns names the columns of headerless files, in file order.
	Columns []string `json:"columns,omitempty" yaml:"columns,omitempty"`

	// ColumnIndex selects the index column of headerless files.
	ColumnIndex *int `json:"column_index,omitempty" yaml:"column_index,omitempty"`

	// KeepCase disables the default lowercasing of column names.
	KeepCase bool `json:"keep_case,omitempty" yaml:"keep_case,omitempty"`

	// FilterByWeatherYear marks hourly profiles that must be sliced to the
	// scenario's weather year before use.
	FilterByWeatherYear bool `json:"filter_by_weather_year,omitempty" yaml:"filter_by_weather_year,omitempty"`

	// UseFilterFunctions enables the dataset-specific value normalizers
	// (month and season labels) during harmonization.
	UseFilterFunctions bool `json:"use_filter_functions,omitempty" yaml:"use_filter_functions,omitempty"`
}

// Table is the full mapping document: dataset identifier to Entry.
type Table map[string]Entry

// IsRequired reports whether the dataset must be present for a translation.
// Mandatory wins; otherwise an explicit "optional": false marks the file
// required. Entries that say neither are not required.
func (e Entry) IsRequired() bool {
	if e.Mandatory {
		return true
	}
	return e.Optional != nil && !*e.Optional
}

// Rename translates an original column name to its canonical R2X name.
// Matching is exact first, then case-insensitive unless KeepCase is set.
// Returns the input unchanged (and false) when no mapping applies.
func (e Entry) Rename(col string) (string, bool) {
	if len(e.ColumnMapping) == 0 {
		return col, false
	}
	if target, ok := e.ColumnMapping[col]; ok {
		return target, true
	}
	if e.KeepCase {
		return col, false
	}
	for orig, target := range e.ColumnMapping {
		if strings.EqualFold(orig, col) {
			return target, true
		}
	}
	return col, false
}

// TargetColumns returns the canonical column names this entry produces,
// sorted for stable output.
func (e Entry) TargetColumns() []string {
	if len(e.ColumnMapping) == 0 {
		return nil
	}
	targets := make([]string, 0, len(e.ColumnMapping))
	for _, t := range e.ColumnMapping {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// Keys returns the dataset identifiers of the table, sorted.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
