package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/maintenance"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string // SQLite path or postgres:// URL, overrides the config file
	LogLevel   string
	LogFormat  string

	// RunIDs overrides the run id generator (for testing).
	// If nil, defaults to maintenance.UUIDv7Generator.
	RunIDs maintenance.RunIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ptvlineage CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ptvlineage",
		Short: "Version lineage and hierarchy maintenance for the service registry",
		Long: `Batch maintenance for the service registry database.

Resolves the unific root (lineage id) of every version record and checks
the organization hierarchy for lineages that are their own ancestors.
Problems in the data are reported, never repaired.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "SQLite database path or postgres:// URL")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (text|json)")

	// Add subcommands
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewCheckHierarchyCommand(opts))
	cmd.AddCommand(NewMaintainCommand(opts))

	return cmd
}
