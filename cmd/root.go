package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"listview/internal/db"

	"github.com/spf13/cobra"
)

// App carries state shared by all subcommands.
type App struct {
	Flags   Flags
	Config  *Config
	Logger  *slog.Logger
	Version string

	closers []io.Closer
}

// Execute runs the root command.
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	app := &App{Version: version}

	cmd := &cobra.Command{
		Use:           "listview [page.html]",
		Short:         "Browse and filter HTML listing pages in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
  # Browse a page straight from disk
  listview status.html

  # Import pages into the library, then browse one
  listview import 'reports/**/*.html'
  listview browse --page status

  # Print the rows a filter leaves visible
  listview filter status --status active
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runBrowse(cmd, app, args[0], "")
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		app.Flags.NameCellSet = cmd.Flags().Changed("name-cell")
		config, err := LoadConfig(app.Flags)
		if err != nil {
			return err
		}
		app.Config = config
		app.Logger = initLogging(cmd.ErrOrStderr(), config.LogLevel)
		return nil
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.close()
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.Flags.ConfigPath, "config", "", "Path to config file (default: ~/.listview/config.yaml)")
	pf.StringVar(&app.Flags.DBPath, "db", "", "Path to SQLite page library (default: ~/.listview/listview.db)")
	pf.StringVar(&app.Flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&app.Flags.NameCell, "name-cell", "", `Class of the cell the name filter matches ("" = whole row)`)

	cmd.AddCommand(newBrowseCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newPagesCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newFilterCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

// openDB opens the page library, creating its directory.
func (a *App) openDB() (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(a.Config.DBPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}
	database, err := db.Open(a.Config.DBPath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, database)
	return database, nil
}

func (a *App) close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), app.Version)
			return err
		},
	}
}
