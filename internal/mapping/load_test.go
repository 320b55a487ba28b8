package mapping

import (
	"testing"
)

func TestLoadDefault(t *testing.T) {
	table, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if len(table) == 0 {
		t.Fatal("LoadDefault() returned empty table")
	}

	for key, entry := range table {
		if entry.Fname == "" {
			t.Errorf("entry %q has empty fname", key)
		}
	}
}

func TestLoadDefault_CapacityFactor(t *testing.T) {
	table, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}

	cf, ok := table["cf"]
	if !ok {
		t.Fatal(`table missing "cf" dataset`)
	}

	if cf.Fname != "recf.h5" {
		t.Errorf("cf.Fname = %q, want %q", cf.Fname, "recf.h5")
	}
	if !cf.Input {
		t.Error("cf.Input = false, want true")
	}
	if cf.Optional == nil || *cf.Optional {
		t.Error("cf.Optional should be explicitly false")
	}
	if cf.Units != "-" {
		t.Errorf("cf.Units = %q, want %q", cf.Units, "-")
	}
	if len(cf.ColumnMapping) != 0 {
		t.Errorf("cf.ColumnMapping should be empty, got %v", cf.ColumnMapping)
	}
}

func TestLoadDefault_TransmissionCapacity(t *testing.T) {
	table, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}

	tx, ok := table["tx_cap"]
	if !ok {
		t.Fatal(`table missing "tx_cap" dataset`)
	}

	want := map[string]string{
		"r":      "from_bus",
		"rr":     "to_bus",
		"t":      "year",
		"trtype": "kind",
		"value":  "max_active_power",
	}
	if len(tx.ColumnMapping) != len(want) {
		t.Fatalf("tx_cap.ColumnMapping has %d entries, want %d", len(tx.ColumnMapping), len(want))
	}
	for orig, target := range want {
		if got := tx.ColumnMapping[orig]; got != target {
			t.Errorf("tx_cap.ColumnMapping[%q] = %q, want %q", orig, got, target)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"load": `},
		{"empty document", `{}`},
		{"missing fname", `{"load": {"units": "MW"}}`},
		{"wrong top level shape", `["load"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Errorf("Parse(%q) expected error", tt.data)
			}
		})
	}
}

func TestEntryRename(t *testing.T) {
	entry := Entry{
		Fname: "tran_out.csv",
		ColumnMapping: map[string]string{
			"r":     "from_bus",
			"rr":    "to_bus",
			"Value": "max_active_power",
		},
	}

	tests := []struct {
		col     string
		want    string
		renamed bool
	}{
		{"r", "from_bus", true},
		{"rr", "to_bus", true},
		{"Value", "max_active_power", true},
		{"value", "max_active_power", true}, // case-insensitive fallback
		{"t", "t", false},
	}

	for _, tt := range tests {
		got, renamed := entry.Rename(tt.col)
		if got != tt.want || renamed != tt.renamed {
			t.Errorf("Rename(%q) = (%q, %v), want (%q, %v)", tt.col, got, renamed, tt.want, tt.renamed)
		}
	}
}

func TestEntryRename_KeepCase(t *testing.T) {
	entry := Entry{
		Fname:         "fuel2tech.csv",
		KeepCase:      true,
		ColumnMapping: map[string]string{"f": "fuel"},
	}

	if got, renamed := entry.Rename("F"); renamed {
		t.Errorf("Rename(%q) with keep_case renamed to %q, want no rename", "F", got)
	}
	if got, renamed := entry.Rename("f"); !renamed || got != "fuel" {
		t.Errorf("Rename(%q) = (%q, %v), want (%q, true)", "f", got, renamed, "fuel")
	}
}

func TestEntryIsRequired(t *testing.T) {
	optTrue, optFalse := true, false

	tests := []struct {
		name  string
		entry Entry
		want  bool
	}{
		{"mandatory", Entry{Mandatory: true}, true},
		{"explicitly required", Entry{Optional: &optFalse}, true},
		{"explicitly optional", Entry{Optional: &optTrue}, false},
		{"unspecified", Entry{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.IsRequired(); got != tt.want {
				t.Errorf("IsRequired() = %v, want %v", got, tt.want)
			}
		})
	}
}
