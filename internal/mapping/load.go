package mapping

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/r2x-tools/reedsmap/mappings"
)

// Parse decodes a mapping document into a typed Table.
// It rejects empty documents and entries without an fname; deeper structural
// checks (units, column_mapping values, boolean typing) live in Check.
func Parse(data []byte) (Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse mapping json: %w", err)
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("mapping document has no entries")
	}
	for key, entry := range t {
		if entry.Fname == "" {
			return nil, fmt.Errorf("entry %q: missing required fname", key)
		}
	}
	return t, nil
}

// LoadFile reads and parses a mapping document from disk.
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	return Parse(data)
}

// LoadDefault parses the embedded reeds_us_mapping.json.
func LoadDefault() (Table, error) {
	return Parse(mappings.DefaultMapping())
}

// ReadDocument returns the raw mapping document bytes: the file at path when
// path is non-empty, the embedded default otherwise. The raw form is what
// schema validation consumes, since typed decoding would already have coerced
// away the problems validation is meant to find.
func ReadDocument(path string) ([]byte, error) {
	if path == "" {
		return mappings.DefaultMapping(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	return data, nil
}
