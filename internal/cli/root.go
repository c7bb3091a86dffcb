// Package cli implements the hfquery command line: explaining filter
// expressions and running them against the configured database.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ValidFormats = []string{FormatJSON, FormatYAML}

// RootOptions holds the flags shared by every command.
type RootOptions struct {
	Format    string
	Dialect   string
	SQLiteDSN string
	LogLevel  string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "hfquery",
		Short:         "Explain and run household finance filter expressions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return usageError(fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.Format, "format", "o", FormatJSON, "output format (json|yaml)")
	flags.StringVar(&opts.Dialect, "dialect", "", "database dialect, overrides DATABASE_DIALECT")
	flags.StringVar(&opts.SQLiteDSN, "sqlite-dsn", "", "SQLite data source, overrides SQLITE_DSN")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level, overrides LOG_LEVEL")

	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))

	return cmd
}
