package harmonize

import (
	"reflect"
	"testing"

	"github.com/r2x-tools/reedsmap/internal/mapping"
)

func txCapEntry() mapping.Entry {
	return mapping.Entry{
		Fname: "tran_out.csv",
		Units: "MW",
		ColumnMapping: map[string]string{
			"r":      "from_bus",
			"rr":     "to_bus",
			"t":      "year",
			"trtype": "kind",
			"value":  "max_active_power",
		},
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  p10  ", "p10"},
		{`="p10"`, "p10"},
		{"=p10", "p10"},
		{`"p10"`, "p10"},
		{"'p10'", "p10"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenameHeader(t *testing.T) {
	header := []string{"r", "rr", "t", "trtype", "value"}
	renamed, unmapped := RenameHeader(header, txCapEntry())

	want := []string{"from_bus", "to_bus", "year", "kind", "max_active_power"}
	if !reflect.DeepEqual(renamed, want) {
		t.Errorf("RenameHeader() = %v, want %v", renamed, want)
	}
	if len(unmapped) != 0 {
		t.Errorf("unmapped = %v, want none", unmapped)
	}
}

func TestRenameHeader_UnmappedAndCase(t *testing.T) {
	entry := txCapEntry()
	header := []string{"r", "Value", "MW", "Notes"}

	renamed, unmapped := RenameHeader(header, entry)

	// "Value" matches the mapping case-insensitively; "MW" and "Notes" do not
	// and are lowercased.
	want := []string{"from_bus", "max_active_power", "mw", "notes"}
	if !reflect.DeepEqual(renamed, want) {
		t.Errorf("RenameHeader() = %v, want %v", renamed, want)
	}
	if !reflect.DeepEqual(unmapped, []string{"MW", "Notes"}) {
		t.Errorf("unmapped = %v, want [MW Notes]", unmapped)
	}
}

func TestRenameHeader_KeepCase(t *testing.T) {
	entry := mapping.Entry{
		Fname:         "tech-subset-table.csv",
		KeepCase:      true,
		ColumnMapping: map[string]string{"i": "tech"},
	}

	renamed, unmapped := RenameHeader([]string{"i", "VRE", "STORAGE"}, entry)
	want := []string{"tech", "VRE", "STORAGE"}
	if !reflect.DeepEqual(renamed, want) {
		t.Errorf("RenameHeader() = %v, want %v", renamed, want)
	}
	if len(unmapped) != 2 {
		t.Errorf("unmapped = %v, want 2 columns", unmapped)
	}
}

func TestRenameHeader_NoMapping(t *testing.T) {
	entry := mapping.Entry{Fname: "load.h5"}

	renamed, unmapped := RenameHeader([]string{"Datetime", "P1"}, entry)
	want := []string{"datetime", "p1"}
	if !reflect.DeepEqual(renamed, want) {
		t.Errorf("RenameHeader() = %v, want %v", renamed, want)
	}
	if unmapped != nil {
		t.Errorf("unmapped = %v, want nil when entry has no column_mapping", unmapped)
	}
}

func TestApplyColumnMapping(t *testing.T) {
	rec := Record{"r": "p10", "rr": "p11", "value": "1500"}
	out := ApplyColumnMapping(rec, txCapEntry())

	want := Record{"from_bus": "p10", "to_bus": "p11", "max_active_power": "1500"}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("ApplyColumnMapping() = %v, want %v", out, want)
	}
}

func TestApplyDefaults(t *testing.T) {
	rec := Record{"kind": "AC", "max_active_power": ""}
	out := ApplyDefaults(rec, map[string]string{
		"max_active_power": "0.0",
		"kind":             "DC",
		"losses":           "0.01",
	})

	if out["kind"] != "AC" {
		t.Errorf("existing value overwritten: kind = %q", out["kind"])
	}
	if out["max_active_power"] != "0.0" {
		t.Errorf("empty value not defaulted: %q", out["max_active_power"])
	}
	if out["losses"] != "0.01" {
		t.Errorf("missing value not defaulted: %q", out["losses"])
	}
}

func TestDropColumns(t *testing.T) {
	rec := Record{"tech": "wind-ons", "vintage": "new1", "year": "2030"}
	out := DropColumns(rec, "vintage", "absent")

	if _, ok := out["vintage"]; ok {
		t.Error("vintage should be dropped")
	}
	if len(out) != 2 {
		t.Errorf("record has %d fields, want 2", len(out))
	}
}

func TestNormalizers(t *testing.T) {
	if got := NormalizeMonth("Jan"); got != "1" {
		t.Errorf("NormalizeMonth(Jan) = %q, want 1", got)
	}
	if got := NormalizeMonth("12"); got != "12" {
		t.Errorf("NormalizeMonth(12) = %q, want passthrough", got)
	}
	if got := NormalizeSeason("summ"); got != "summer" {
		t.Errorf("NormalizeSeason(summ) = %q, want summer", got)
	}
	if got := NormalizeSeason("Winter"); got != "winter" {
		t.Errorf("NormalizeSeason(Winter) = %q, want winter", got)
	}

	if fns := Normalizers(mapping.Entry{}); fns != nil {
		t.Error("Normalizers() without use_filter_functions should be nil")
	}
	fns := Normalizers(mapping.Entry{UseFilterFunctions: true})
	if fns["month"] == nil || fns["season"] == nil {
		t.Error("Normalizers() should cover month and season")
	}
}
