package harmonize

import (
	"strings"

	"github.com/r2x-tools/reedsmap/internal/mapping"
)

// monthNumbers maps ReEDS month labels to month numbers.
var monthNumbers = map[string]string{
	"jan": "1", "feb": "2", "mar": "3", "apr": "4",
	"may": "5", "jun": "6", "jul": "7", "aug": "8",
	"sep": "9", "oct": "10", "nov": "11", "dec": "12",
}

// seasonNames maps ReEDS season abbreviations to full season names.
var seasonNames = map[string]string{
	"wint": "winter",
	"spri": "spring",
	"summ": "summer",
	"fall": "fall",
}

// NormalizeMonth converts a month label ("Jan", "jan", "1") to its number.
// Unrecognized values are returned as-is.
func NormalizeMonth(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	if num, ok := monthNumbers[key]; ok {
		return num
	}
	return strings.TrimSpace(s)
}

// NormalizeSeason expands a ReEDS season abbreviation ("summ") to its full
// name ("summer"). Values already spelled out pass through unchanged.
func NormalizeSeason(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	if name, ok := seasonNames[key]; ok {
		return name
	}
	return key
}

// Normalizers returns the per-column value normalizers for an entry, keyed by
// canonical column name. Only entries flagged use_filter_functions get any.
func Normalizers(e mapping.Entry) map[string]func(string) string {
	if !e.UseFilterFunctions {
		return nil
	}
	return map[string]func(string) string{
		"month":  NormalizeMonth,
		"season": NormalizeSeason,
	}
}
