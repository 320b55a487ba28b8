package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/r2x-tools/reedsmap/internal/harmonize"
	"github.com/r2x-tools/reedsmap/internal/logging"
)

func newHarmonizeCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "harmonize <dataset> <file.csv>",
		Short: "Rewrite a ReEDS CSV with canonical R2X column names",
		Long: `Harmonize streams a raw ReEDS CSV through the dataset's column
mapping: the header is renamed to canonical R2X names, Excel artifacts
and stray bytes are cleaned, and flagged datasets get their month and
season labels normalized. Output goes to stdout unless --output is set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, path := args[0], args[1]

			table, err := opts.loadTable()
			if err != nil {
				return err
			}
			entry, ok := table[dataset]
			if !ok {
				return fmt.Errorf("dataset %q is not in the catalog (try: reedsmap datasets)", dataset)
			}
			if err := harmonize.Harmonizable(entry); err != nil {
				return err
			}

			in, err := os.Open(path)
			if err != nil {
				return err
			}
			defer in.Close()

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			result, err := harmonize.CSV(cmd.Context(), dataset, entry, in, out)
			if err != nil {
				return err
			}

			logging.FromContext(cmd.Context()).Info("harmonization completed",
				"run_id", result.RunID,
				"dataset", dataset,
				"rows", result.Rows,
				"bytes", result.BytesRead,
				"duration", result.Duration,
			)
			if len(result.Unmapped) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d column(s) had no mapping: %v\n",
					len(result.Unmapped), result.Unmapped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write harmonized CSV to this file instead of stdout")
	return cmd
}
