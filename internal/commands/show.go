package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r2x-tools/reedsmap/internal/mapping"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <dataset>",
		Short: "Print the full mapping entry for one dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.loadTable()
			if err != nil {
				return err
			}

			key := args[0]
			entry, ok := table[key]
			if !ok {
				return fmt.Errorf("dataset %q is not in the catalog (try: reedsmap datasets)", key)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Key string `json:"key"`
				mapping.Entry
			}{Key: key, Entry: entry})
		},
	}
}
