// Package harmonize applies the dataset mapping table to ReEDS files:
// column renames, value normalization and defaults, over streaming CSV data.
package harmonize

import (
	"strings"

	"github.com/r2x-tools/reedsmap/internal/mapping"
)

// Record is a single data row keyed by column name.
type Record map[string]string

// CleanCell removes common CSV artifacts from a cell value: surrounding
// whitespace, Excel formula prefixes (="value"), and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// RenameHeader translates a CSV header through an entry's column mapping.
// Columns without a mapping are lowercased unless the entry sets keep_case;
// their original names are returned as unmapped so callers can report them.
// A nil column mapping passes the header through (headerless profile files
// like recf.h5 never reach this path).
func RenameHeader(header []string, e mapping.Entry) (renamed, unmapped []string) {
	renamed = make([]string, len(header))
	for i, col := range header {
		col = CleanCell(col)
		target, ok := e.Rename(col)
		if ok {
			renamed[i] = target
			continue
		}
		if len(e.ColumnMapping) > 0 {
			unmapped = append(unmapped, col)
		}
		if e.KeepCase {
			renamed[i] = col
		} else {
			renamed[i] = strings.ToLower(col)
		}
	}
	return renamed, unmapped
}

// ApplyColumnMapping renames the keys of a record through an entry's column
// mapping, leaving unmapped keys untouched.
func ApplyColumnMapping(rec Record, e mapping.Entry) Record {
	out := make(Record, len(rec))
	for col, val := range rec {
		target, _ := e.Rename(col)
		out[target] = val
	}
	return out
}

// ApplyDefaults fills absent or empty fields with default values.
func ApplyDefaults(rec Record, defaults map[string]string) Record {
	for col, val := range defaults {
		if existing, ok := rec[col]; !ok || existing == "" {
			rec[col] = val
		}
	}
	return rec
}

// DropColumns removes the named fields from a record.
func DropColumns(rec Record, cols ...string) Record {
	for _, col := range cols {
		delete(rec, col)
	}
	return rec
}
