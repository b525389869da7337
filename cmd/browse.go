package cmd

import (
	"errors"
	"fmt"
	"os"

	"listview/internal/db"
	"listview/internal/page"
	"listview/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	var pageName string
	cmd := &cobra.Command{
		Use:   "browse [page.html]",
		Short: "Open a page in the interactive browser",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" && pageName == "" {
				return errors.New("give a page file or --page NAME")
			}
			return runBrowse(cmd, app, path, pageName)
		},
	}
	cmd.Flags().StringVar(&pageName, "page", "", "Library page to open")
	return cmd
}

func runBrowse(cmd *cobra.Command, app *App, path, pageName string) error {
	source, err := app.resolveSource(path, pageName)
	if err != nil {
		return err
	}

	// The TUI owns the terminal; logs go to the log file instead.
	logFile, err := openLogFile(app.Config.LogFile)
	if err != nil {
		return err
	}
	app.closers = append(app.closers, logFile)
	app.Logger = initLogging(logFile, app.Config.LogLevel)

	opts := app.Config.ControllerOptions()
	opts.Logger = app.Logger

	termCaps := ui.DetectTerminalCapabilities()
	p := tea.NewProgram(ui.New(source, opts, termCaps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running browser: %w", err)
	}
	return nil
}

// resolveSource picks where a page comes from: an explicit library name, an
// existing file, or else a library page named like the argument.
func (a *App) resolveSource(path, pageName string) (ui.PageSource, error) {
	if pageName == "" {
		if _, err := os.Stat(path); err == nil {
			return page.FileSource{Path: path}, nil
		}
		pageName = path
	}
	database, err := a.openDB()
	if err != nil {
		return nil, err
	}
	if _, err := db.GetPage(database, pageName); err != nil {
		return nil, err
	}
	return db.LibrarySource{DB: database, Name: pageName}, nil
}
