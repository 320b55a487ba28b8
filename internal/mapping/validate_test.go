package mapping

import (
	"strings"
	"testing"

	"github.com/r2x-tools/reedsmap/mappings"
)

func TestCompileEntrySchema_Embedded(t *testing.T) {
	if _, err := CompileEntrySchema(mappings.EntrySchema()); err != nil {
		t.Fatalf("CompileEntrySchema() error = %v", err)
	}
}

func TestCheck_DefaultMappingIsClean(t *testing.T) {
	schema := MustCompileEntrySchema()

	report, err := Check(mappings.DefaultMapping(), schema)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !report.OK() {
		for _, issue := range report.Issues {
			t.Errorf("embedded mapping issue: %s", issue)
		}
	}
	if report.Entries == 0 {
		t.Error("Check() saw zero entries in embedded mapping")
	}
}

func TestCheck_FindsIssues(t *testing.T) {
	schema := MustCompileEntrySchema()

	tests := []struct {
		name    string
		doc     string
		dataset string
		field   string
	}{
		{
			name:    "missing fname",
			doc:     `{"load": {"units": "MW"}}`,
			dataset: "load",
			field:   "fname",
		},
		{
			name:    "empty fname",
			doc:     `{"load": {"fname": ""}}`,
			dataset: "load",
			field:   "fname",
		},
		{
			name:    "fname wrong type",
			doc:     `{"load": {"fname": 7}}`,
			dataset: "load",
			field:   "fname",
		},
		{
			name:    "empty units",
			doc:     `{"load": {"fname": "load.h5", "units": ""}}`,
			dataset: "load",
			field:   "units",
		},
		{
			name:    "string boolean",
			doc:     `{"load": {"fname": "load.h5", "mandatory": "false"}}`,
			dataset: "load",
			field:   "mandatory",
		},
		{
			name:    "string input flag",
			doc:     `{"cf": {"fname": "recf.h5", "input": "true"}}`,
			dataset: "cf",
			field:   "input",
		},
		{
			name:    "empty rename target",
			doc:     `{"tx_cap": {"fname": "tran_out.csv", "column_mapping": {"r": ""}}}`,
			dataset: "tx_cap",
			field:   "column_mapping",
		},
		{
			name:    "non-string rename target",
			doc:     `{"tx_cap": {"fname": "tran_out.csv", "column_mapping": {"r": 3}}}`,
			dataset: "tx_cap",
			field:   "column_mapping",
		},
		{
			name:    "entry not an object",
			doc:     `{"load": "load.h5"}`,
			dataset: "load",
			field:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Check([]byte(tt.doc), schema)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if report.OK() {
				t.Fatal("Check() reported no issues, expected at least one")
			}

			found := false
			for _, issue := range report.Issues {
				if issue.Dataset == tt.dataset && issue.Field == tt.field {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("no issue for dataset=%q field=%q; got %v", tt.dataset, tt.field, report.Issues)
			}
		})
	}
}

func TestCheck_MalformedDocument(t *testing.T) {
	schema := MustCompileEntrySchema()

	for _, doc := range []string{`[1,2]`, `"load"`, `{"load":`} {
		if _, err := Check([]byte(doc), schema); err == nil {
			t.Errorf("Check(%q) expected error", doc)
		}
	}
}

func TestIssueString(t *testing.T) {
	withField := Issue{Dataset: "load", Field: "fname", Message: "missing required field"}
	if got := withField.String(); !strings.Contains(got, "load.fname") {
		t.Errorf("Issue.String() = %q, want dataset.field prefix", got)
	}

	noField := Issue{Dataset: "load", Message: "entry must be a JSON object"}
	if got := noField.String(); !strings.HasPrefix(got, "load:") {
		t.Errorf("Issue.String() = %q, want dataset prefix", got)
	}
}
