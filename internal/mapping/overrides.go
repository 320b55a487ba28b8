package mapping

// overrides.go lets a user layer project-specific adjustments over the
// shipped mapping table without editing it: point REEDSMAP_OVERRIDES (or
// --overrides) at a YAML or JSON file whose shape mirrors the mapping
// document. Overrides merge per entry, so a file can rename a single column
// of one dataset without restating the rest.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadOverrides reads an override table from a YAML or JSON file.
// The format is chosen by extension: .yaml/.yml use YAML, anything else JSON.
func LoadOverrides(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides file: %w", err)
	}

	var t Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parse overrides yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parse overrides json: %w", err)
		}
	}

	if len(t) == 0 {
		return nil, fmt.Errorf("overrides file has no entries")
	}
	return t, nil
}

// Merge layers override entries over a base table and returns the result.
// Entries new to the overrides are inserted whole (and must carry an fname);
// entries that exist in the base are merged field-wise: set scalars replace,
// column_mapping merges key-wise with the override winning.
func Merge(base, overrides Table) (Table, error) {
	merged := make(Table, len(base))
	for k, v := range base {
		merged[k] = v
	}

	for key, over := range overrides {
		existing, ok := merged[key]
		if !ok {
			if over.Fname == "" {
				return nil, fmt.Errorf("override %q adds a new dataset but has no fname", key)
			}
			merged[key] = over
			continue
		}
		merged[key] = mergeEntry(existing, over)
	}
	return merged, nil
}

// mergeEntry applies the set fields of over on top of base.
// Zero-valued booleans in an override cannot clear a base flag; overrides are
// additive by design of the YAML/JSON shape (absent and false decode alike).
func mergeEntry(base, over Entry) Entry {
	out := base

	if over.Fname != "" {
		out.Fname = over.Fname
	}
	if over.Units != "" {
		out.Units = over.Units
	}
	if over.Description != "" {
		out.Description = over.Description
	}
	if over.Note != "" {
		out.Note = over.Note
	}
	if over.Dtype != "" {
		out.Dtype = over.Dtype
	}
	if over.Columns != nil {
		out.Columns = over.Columns
	}
	if over.ColumnIndex != nil {
		out.ColumnIndex = over.ColumnIndex
	}
	if over.Optional != nil {
		out.Optional = over.Optional
	}
	if over.Input {
		out.Input = true
	}
	if over.Mandatory {
		out.Mandatory = true
	}
	if over.KeepCase {
		out.KeepCase = true
	}
	if over.FilterByWeatherYear {
		out.FilterByWeatherYear = true
	}
	if over.UseFilterFunctions {
		out.UseFilterFunctions = true
	}

	if len(over.ColumnMapping) > 0 {
		cm := make(map[string]string, len(base.ColumnMapping)+len(over.ColumnMapping))
		for k, v := range base.ColumnMapping {
			cm[k] = v
		}
		for k, v := range over.ColumnMapping {
			cm[k] = v
		}
		out.ColumnMapping = cm
	}

	return out
}
