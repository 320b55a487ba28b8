// Package commands implements the reedsmap CLI: catalog inspection,
// mapping document validation, CSV harmonization and the API server.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r2x-tools/reedsmap/internal/logging"
	"github.com/r2x-tools/reedsmap/internal/mapping"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	mappingPath   string
	overridesPath string
	logLevel      string
	logFormat     string
}

// NewRootCmd builds the reedsmap command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "reedsmap",
		Short: "ReEDS to R2X dataset mapping tool",
		Long: `Reedsmap maintains the column mapping between ReEDS model run
folders and the canonical R2X data model.

It ships an embedded mapping for current ReEDS US runs and can load,
validate and serve external mapping documents, apply per-project
overrides, and harmonize raw ReEDS CSV files into canonical form.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(opts.logLevel, opts.logFormat)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.mappingPath, "mapping", "m", "", "Mapping JSON file (default: embedded ReEDS US mapping)")
	pf.StringVar(&opts.overridesPath, "overrides", "", "YAML or JSON override file layered over the mapping")
	pf.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")

	cmd.AddCommand(
		newDatasetsCmd(opts),
		newShowCmd(opts),
		newValidateCmd(opts),
		newHarmonizeCmd(opts),
		newServeCmd(),
		newVersionCmd(),
	)

	return cmd
}

// loadTable loads the mapping table the flags select, with overrides applied.
func (o *rootOptions) loadTable() (mapping.Table, error) {
	var (
		table mapping.Table
		err   error
	)
	if o.mappingPath == "" {
		table, err = mapping.LoadDefault()
	} else {
		table, err = mapping.LoadFile(o.mappingPath)
	}
	if err != nil {
		return nil, err
	}

	if o.overridesPath != "" {
		overrides, err := mapping.LoadOverrides(o.overridesPath)
		if err != nil {
			return nil, err
		}
		table, err = mapping.Merge(table, overrides)
		if err != nil {
			return nil, fmt.Errorf("apply overrides: %w", err)
		}
	}
	return table, nil
}
