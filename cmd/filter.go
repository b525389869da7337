package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"listview/internal/listing"
	"listview/internal/model"
	"listview/internal/page"
	"listview/internal/util"

	"github.com/spf13/cobra"
)

type filterOptions struct {
	name      string
	nameSet   bool
	status    string
	statusSet bool
	input     string
}

func newFilterCmd(app *App) *cobra.Command {
	var fo filterOptions
	cmd := &cobra.Command{
		Use:   "filter PAGE",
		Short: "Apply a name or status filter and print the visible rows",
		Long: strings.TrimSpace(`
Apply a filter the way the interactive browser does and print every table's
visible rows, one tab-separated line per row. PAGE is a file path or a
library page name.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fo.nameSet = cmd.Flags().Changed("name")
			fo.statusSet = cmd.Flags().Changed("status")
			if fo.nameSet == fo.statusSet {
				return errors.New("give exactly one of --name or --status")
			}
			source, err := app.resolveSource(args[0], "")
			if err != nil {
				return err
			}
			_, markup, err := source.LoadPage()
			if err != nil {
				return err
			}
			doc, err := page.Parse(bytes.NewReader(markup), app.Config.Classes)
			if err != nil {
				return err
			}

			opts := app.Config.ControllerOptions()
			opts.Logger = app.Logger
			ctrl := listing.New(doc, opts)
			if err := ctrl.Initialize(); err != nil {
				return err
			}
			if err := applyFilter(ctrl, fo); err != nil {
				return err
			}
			return writeVisibleRows(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().StringVar(&fo.name, "name", "", "Text typed into the filter input")
	cmd.Flags().StringVar(&fo.status, "status", "", "Status link to activate, by label, text or element id")
	cmd.Flags().StringVar(&fo.input, "input", "", "Filter input element id (default: the first one)")
	return cmd
}

func applyFilter(ctrl *listing.Controller, fo filterOptions) error {
	doc := ctrl.Document()
	if fo.nameSet {
		if len(doc.Inputs) == 0 {
			return listing.ErrNoFilterInput
		}
		id := doc.Inputs[0].ID
		if fo.input != "" {
			id = fo.input
		}
		return ctrl.InputChanged(id, fo.name)
	}

	s := findStatus(doc, fo.status)
	if s == nil {
		return fmt.Errorf("no status link matches %q", fo.status)
	}
	_, err := ctrl.StatusClicked(s.ID)
	return err
}

// findStatus matches a status link by element id, then label, then link text.
func findStatus(doc *model.Document, q string) *model.StatusControl {
	if s := doc.Status(q); s != nil {
		return s
	}
	for _, s := range doc.Statuses {
		if strings.EqualFold(s.Label, q) {
			return s
		}
	}
	for _, s := range doc.Statuses {
		if strings.EqualFold(s.Text, q) {
			return s
		}
	}
	return nil
}

func writeVisibleRows(w io.Writer, doc *model.Document) error {
	for _, t := range doc.Tables {
		if t.RowCount() == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "# %s  %s\n", t.ID, util.FormatCount(t.VisibleCount(), t.RowCount())); err != nil {
			return err
		}
		for _, r := range t.VisibleRows() {
			cells := make([]string, 0, len(r.Cells))
			for _, c := range r.Cells {
				cells = append(cells, util.CollapseSpace(c.Text))
			}
			if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
				return err
			}
		}
	}
	return nil
}
