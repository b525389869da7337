package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"listview/internal/db"
	"listview/internal/model"
	"listview/internal/page"
	"listview/internal/util"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import PATTERN...",
		Short: "Import HTML pages into the library",
		Long:  "Import HTML pages into the library. Patterns may use ** to match across directories.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandPatterns(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return errors.New("no files matched")
			}
			if name != "" && len(paths) != 1 {
				return fmt.Errorf("--name needs exactly one file, %d matched", len(paths))
			}

			database, err := app.openDB()
			if err != nil {
				return err
			}
			for _, path := range paths {
				pageName := name
				if pageName == "" {
					pageName = page.NameFromPath(path)
				}
				rec, err := importPage(app, path, pageName)
				if err != nil {
					return err
				}
				if _, err := db.SavePage(database, rec); err != nil {
					return err
				}
				app.Logger.Info("page imported", "page", rec.Name, "path", path, "rows", rec.Rows)
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%d tables, %s)\n", rec.Name, rec.Tables, util.FormatCount(rec.Rows, rec.Rows))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Library name for a single imported file")
	return cmd
}

// expandPatterns resolves doublestar patterns; plain paths pass through.
func expandPatterns(patterns []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches := []string{pattern}
		if hasMeta(pattern) {
			var err error
			matches, err = doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}

func hasMeta(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func importPage(app *App, path, name string) (model.PageRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PageRecord{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := page.Parse(bytes.NewReader(data), app.Config.Classes)
	if err != nil {
		return model.PageRecord{}, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return model.PageRecord{
		Name:       name,
		SourcePath: abs,
		Markup:     string(data),
		Tables:     len(doc.Tables),
		Rows:       doc.RowCount(),
	}, nil
}

func newPagesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List library pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.openDB()
			if err != nil {
				return err
			}
			pages, err := db.ListPages(database)
			if err != nil {
				return err
			}
			if len(pages) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pages yet. Import one with: listview import page.html")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#7E8C80"))).
				Headers("NAME", "TABLES", "ROWS", "IMPORTED", "SOURCE")
			for _, p := range pages {
				t.Row(p.Name, strconv.Itoa(p.Tables), strconv.Itoa(p.Rows), util.FormatImportedAt(p.ImportedAt), p.SourcePath)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a page from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.openDB()
			if err != nil {
				return err
			}
			if err := db.DeletePage(database, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeDefaultConfig(app.Config.ConfigPath, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", app.Config.ConfigPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the resolved config, library and log paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config  %s\n", app.Config.ConfigPath)
			fmt.Fprintf(out, "db      %s\n", app.Config.DBPath)
			fmt.Fprintf(out, "log     %s\n", app.Config.LogFile)
			return nil
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}
