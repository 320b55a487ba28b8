package mapping

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadOverrides_YAML(t *testing.T) {
	path := writeTempFile(t, "overrides.yaml", `
tx_cap:
  column_mapping:
    MW: max_active_power
load:
  fname: load_hourly.h5
  units: MW
`)

	over, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides() error = %v", err)
	}

	if over["tx_cap"].ColumnMapping["MW"] != "max_active_power" {
		t.Errorf("tx_cap override column_mapping = %v", over["tx_cap"].ColumnMapping)
	}
	if over["load"].Fname != "load_hourly.h5" {
		t.Errorf("load override fname = %q", over["load"].Fname)
	}
}

func TestLoadOverrides_JSON(t *testing.T) {
	path := writeTempFile(t, "overrides.json",
		`{"hierarchy": {"column_mapping": {"ccreg": "capacity_credit_region"}}}`)

	over, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides() error = %v", err)
	}
	if over["hierarchy"].ColumnMapping["ccreg"] != "capacity_credit_region" {
		t.Errorf("hierarchy override = %v", over["hierarchy"].ColumnMapping)
	}
}

func TestLoadOverrides_Errors(t *testing.T) {
	if _, err := LoadOverrides(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadOverrides() on missing file expected error")
	}

	empty := writeTempFile(t, "empty.yaml", "")
	if _, err := LoadOverrides(empty); err == nil {
		t.Error("LoadOverrides() on empty file expected error")
	}

	bad := writeTempFile(t, "bad.json", `{"load": `)
	if _, err := LoadOverrides(bad); err == nil {
		t.Error("LoadOverrides() on malformed file expected error")
	}
}

func TestMerge_ExistingEntry(t *testing.T) {
	base := Table{
		"tx_cap": {
			Fname: "tran_out.csv",
			Units: "MW",
			ColumnMapping: map[string]string{
				"r":  "from_bus",
				"rr": "to_bus",
			},
		},
	}
	over := Table{
		"tx_cap": {
			ColumnMapping: map[string]string{
				"rr":     "sink_bus", // overrides base
				"trtype": "kind",     // new key
			},
		},
	}

	merged, err := Merge(base, over)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	got := merged["tx_cap"]
	if got.Fname != "tran_out.csv" {
		t.Errorf("Fname = %q, want base value preserved", got.Fname)
	}
	if got.Units != "MW" {
		t.Errorf("Units = %q, want base value preserved", got.Units)
	}
	if got.ColumnMapping["r"] != "from_bus" {
		t.Errorf("unchanged mapping key lost: %v", got.ColumnMapping)
	}
	if got.ColumnMapping["rr"] != "sink_bus" {
		t.Errorf("override should win for rr: %v", got.ColumnMapping)
	}
	if got.ColumnMapping["trtype"] != "kind" {
		t.Errorf("new mapping key missing: %v", got.ColumnMapping)
	}

	// Base table must not be mutated by the merge.
	if base["tx_cap"].ColumnMapping["rr"] != "to_bus" {
		t.Error("Merge() mutated the base table")
	}
}

func TestMerge_NewEntry(t *testing.T) {
	base := Table{"cf": {Fname: "recf.h5"}}

	merged, err := Merge(base, Table{"upgrades": {Fname: "upgrades.csv", Units: "MW"}})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if merged["upgrades"].Fname != "upgrades.csv" {
		t.Errorf("new entry not inserted: %v", merged["upgrades"])
	}

	if _, err := Merge(base, Table{"upgrades": {Units: "MW"}}); err == nil {
		t.Error("Merge() with fname-less new entry expected error")
	}
}

func TestMerge_OptionalPointer(t *testing.T) {
	optTrue := true
	base := Table{"cf": {Fname: "recf.h5"}}

	merged, err := Merge(base, Table{"cf": {Optional: &optTrue}})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if merged["cf"].Optional == nil || !*merged["cf"].Optional {
		t.Error("Optional pointer should be taken from the override")
	}
}
