package mapping

// validate.go checks a raw mapping document before anything consumes it.
//
// Validation happens at two levels:
//  1. Schema validation: each entry is validated against the embedded entry
//     schema (required fname, declared field types).
//  2. Structural checks: rules the schema cannot express, such as non-empty
//     strings and the "boolean serialized as string" authoring mistake.
//
// Both levels report through the same Report so a caller sees every problem
// in one pass.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer renders jsonschema error kinds as plain English.
var printer = message.NewPrinter(language.English)

// boolFields are the entry fields that must hold a JSON boolean.
// String spellings like "false" are a known authoring mistake in older
// mapping documents and are reported, never coerced.
var boolFields = []string{
	"input",
	"mandatory",
	"optional",
	"keep_case",
	"filter_by_weather_year",
	"use_filter_functions",
}

// Issue is a single problem found in a mapping document.
type Issue struct {
	Dataset string `json:"dataset"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Field != "" {
		return fmt.Sprintf("%s.%s: %s", i.Dataset, i.Field, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Dataset, i.Message)
}

// Report is the outcome of validating a mapping document.
type Report struct {
	Entries int     `json:"entries"`
	Issues  []Issue `json:"issues,omitempty"`
}

// OK reports whether the document passed every check.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

func (r *Report) add(dataset, field, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Dataset: dataset,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

// Check validates a raw mapping document against the entry schema and the
// structural rules. A non-nil error means the document could not be examined
// at all (malformed JSON or wrong top-level shape); problems with individual
// entries land in the Report instead.
func Check(raw []byte, schema *jsonschema.Schema) (*Report, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("mapping document is not a JSON object: %w", err)
	}

	report := &Report{Entries: len(top)}

	keys := make([]string, 0, len(top))
	for k := range top {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		checkEntry(report, key, top[key], schema)
	}
	return report, nil
}

// checkEntry validates one entry and appends its problems to the report.
func checkEntry(report *Report, key string, raw json.RawMessage, schema *jsonschema.Schema) {
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		report.add(key, "", "entry is not valid JSON: %v", err)
		return
	}

	entry, ok := value.(map[string]any)
	if !ok {
		report.add(key, "", "entry must be a JSON object")
		return
	}

	if schema != nil {
		if err := schema.Validate(value); err != nil {
			appendSchemaIssues(report, key, err)
		}
	}

	// fname: required, non-empty string.
	switch fname := entry["fname"].(type) {
	case nil:
		report.add(key, "fname", "missing required field")
	case string:
		if fname == "" {
			report.add(key, "fname", "must be a non-empty string")
		}
	default:
		report.add(key, "fname", "must be a string, got %T", fname)
	}

	// units: optional, but non-empty when present.
	if units, present := entry["units"]; present {
		if s, ok := units.(string); !ok {
			report.add(key, "units", "must be a string, got %T", units)
		} else if s == "" {
			report.add(key, "units", "must be a non-empty string when present")
		}
	}

	// column_mapping: string keys to non-empty string values.
	if cm, present := entry["column_mapping"]; present {
		obj, ok := cm.(map[string]any)
		if !ok {
			report.add(key, "column_mapping", "must be an object, got %T", cm)
		} else {
			for col, target := range obj {
				s, ok := target.(string)
				if !ok {
					report.add(key, "column_mapping", "value for %q must be a string, got %T", col, target)
				} else if s == "" {
					report.add(key, "column_mapping", "value for %q must not be empty", col)
				}
			}
		}
	}

	// Boolean fields must be real booleans, never "true"/"false" strings.
	for _, field := range boolFields {
		v, present := entry[field]
		if !present {
			continue
		}
		switch v.(type) {
		case bool:
		case string:
			report.add(key, field, "must be a boolean, got string %q", v)
		default:
			report.add(key, field, "must be a boolean, got %T", v)
		}
	}
}

// appendSchemaIssues flattens a jsonschema validation error into report issues.
func appendSchemaIssues(report *Report, key string, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		report.add(key, "", "schema validation: %v", err)
		return
	}
	for _, cause := range flattenCauses(ve) {
		field := ""
		if len(cause.InstanceLocation) > 0 {
			field = cause.InstanceLocation[0]
		}
		report.add(key, field, "schema violation: %s", cause.ErrorKind.LocalizedString(printer))
	}
}

// flattenCauses walks to the leaf causes of a validation error tree.
func flattenCauses(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var leaves []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		leaves = append(leaves, flattenCauses(c)...)
	}
	return leaves
}
