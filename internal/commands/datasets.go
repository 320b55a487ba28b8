package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/r2x-tools/reedsmap/internal/mapping"
)

func newDatasetsCmd(opts *rootOptions) *cobra.Command {
	var (
		inputsOnly   bool
		outputsOnly  bool
		requiredOnly bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the datasets in the mapping catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputsOnly && outputsOnly {
				return fmt.Errorf("--inputs and --outputs are mutually exclusive")
			}

			table, err := opts.loadTable()
			if err != nil {
				return err
			}
			registry := mapping.NewRegistry(table)

			var keys []string
			switch {
			case inputsOnly:
				keys = registry.Inputs()
			case outputsOnly:
				keys = registry.Outputs()
			default:
				keys = registry.Keys()
			}

			type row struct {
				Key      string `json:"key"`
				Fname    string `json:"fname"`
				Input    bool   `json:"input"`
				Required bool   `json:"required"`
				Units    string `json:"units,omitempty"`
			}
			var rows []row
			for _, key := range keys {
				entry, _ := registry.Lookup(key)
				if requiredOnly && !entry.IsRequired() {
					continue
				}
				rows = append(rows, row{
					Key:      key,
					Fname:    entry.Fname,
					Input:    entry.Input,
					Required: entry.IsRequired(),
					Units:    entry.Units,
				})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tFNAME\tKIND\tREQUIRED\tUNITS")
			for _, r := range rows {
				kind := "output"
				if r.Input {
					kind = "input"
				}
				required := ""
				if r.Required {
					required = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Key, r.Fname, kind, required, r.Units)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&inputsOnly, "inputs", false, "List only model input datasets")
	cmd.Flags().BoolVar(&outputsOnly, "outputs", false, "List only model output datasets")
	cmd.Flags().BoolVar(&requiredOnly, "required", false, "List only datasets required for a translation")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")

	return cmd
}
