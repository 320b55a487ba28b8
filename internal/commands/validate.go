package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r2x-tools/reedsmap/internal/mapping"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a mapping document against the entry schema",
		Long: `Validate checks the selected mapping document (see --mapping; the
embedded mapping when omitted) against the entry schema and the
structural rules: required fname, non-empty strings, and booleans that
are real JSON booleans rather than "true"/"false" strings.

Exits non-zero when the document has issues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := mapping.ReadDocument(opts.mappingPath)
			if err != nil {
				return err
			}

			schema, err := mapping.CompileEntrySchema(nil)
			if err != nil {
				return err
			}

			report, err := mapping.Check(raw, schema)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.OK() {
				if !quiet {
					fmt.Fprintf(out, "ok: %d entries, no issues\n", report.Entries)
				}
				return nil
			}

			if !quiet {
				for _, issue := range report.Issues {
					fmt.Fprintln(out, issue.String())
				}
			}
			return fmt.Errorf("%d issue(s) in %d entries", len(report.Issues), report.Entries)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-issue output, exit status only")
	return cmd
}
