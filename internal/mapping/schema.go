package mapping

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/r2x-tools/reedsmap/mappings"
)

// entrySchemaURL is the resource name the entry schema is registered under.
const entrySchemaURL = "reedsmap://table_schema.json"

// CompileEntrySchema compiles a JSON Schema document describing a single
// mapping entry. Pass nil to use the embedded table_schema.json.
func CompileEntrySchema(schemaJSON []byte) (*jsonschema.Schema, error) {
	if schemaJSON == nil {
		schemaJSON = mappings.EntrySchema()
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse entry schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(entrySchemaURL, doc); err != nil {
		return nil, fmt.Errorf("register entry schema: %w", err)
	}

	schema, err := compiler.Compile(entrySchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile entry schema: %w", err)
	}
	return schema, nil
}

// MustCompileEntrySchema compiles the embedded entry schema and panics on
// failure. Use only in main() or package wiring where the embedded schema is
// the source; a failure there is a build defect.
func MustCompileEntrySchema() *jsonschema.Schema {
	schema, err := CompileEntrySchema(nil)
	if err != nil {
		panic(fmt.Sprintf("embedded entry schema is invalid: %v", err))
	}
	return schema
}
