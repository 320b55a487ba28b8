// Package mappings ships the canonical ReEDS to R2X translation artifacts:
// the dataset mapping table and the JSON Schema its entries conform to.
// Both files are embedded at compile time so the binary works without any
// files on disk; an external mapping file can still be supplied to override
// the embedded copy.
package mappings

import "embed"

//go:embed reeds_us_mapping.json table_schema.json
var fs embed.FS

// DefaultMapping returns the embedded reeds_us_mapping.json document.
func DefaultMapping() []byte {
	data, err := fs.ReadFile("reeds_us_mapping.json")
	if err != nil {
		// Embedded files cannot be missing; a failure here is a build defect.
		panic(err)
	}
	return data
}

// EntrySchema returns the embedded table_schema.json document describing
// the legal shape of a single mapping entry.
func EntrySchema() []byte {
	data, err := fs.ReadFile("table_schema.json")
	if err != nil {
		panic(err)
	}
	return data
}
