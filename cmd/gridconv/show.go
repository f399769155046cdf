package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/bjaus/fmter"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/sheetview/internal/grid"
)

var showFormats = []fmter.Format{fmter.Table, fmter.Markdown, fmter.CSV, fmter.JSON, fmter.YAML}

type showOptions struct {
	*rootOptions
	output  string
	minRows int
	minCols int
}

func newShowCmd(root *rootOptions) *cobra.Command {
	opts := &showOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "show IN",
		Short: "Print a spreadsheet with column letters and row numbers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "Output format: table, markdown, csv, json, yaml")
	cmd.Flags().IntVar(&opts.minRows, "min-rows", 0, "Pad to at least this many rows")
	cmd.Flags().IntVar(&opts.minCols, "min-cols", 0, "Pad to at least this many columns")
	return cmd
}

func runShow(cmd *cobra.Command, opts *showOptions, in string) error {
	out, err := parseShowFormat(opts.output)
	if err != nil {
		return err
	}
	f, err := formatOf(in)
	if err != nil {
		return err
	}

	g, err := readGrid(in, f, opts.infer)
	if err != nil {
		return err
	}
	g = grid.Normalize(g, opts.minRows, opts.minCols)

	opts.logger(cmd).Debug("showing grid", "file", in, "rows", g.Rows(), "cols", g.Width())

	return fmter.Write(cmd.OutOrStdout(), out, sheetRows(filepath.Base(in), g)...)
}

func parseShowFormat(s string) (fmter.Format, error) {
	f, err := fmter.ParseFormat(s)
	if err != nil {
		return "", err
	}
	for _, ok := range showFormats {
		if f == ok {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", fmter.ErrUnsupportedFormat, s)
}

// sheetRow is one grid row as fmter renders it. Table, markdown and csv use
// the display text; json and yaml keep typed values.
type sheetRow struct {
	Number int   `json:"row" yaml:"row"`
	Cells  []any `json:"cells" yaml:"cells"`

	display []string
	header  []string
	title   string
}

func sheetRows(title string, g grid.Grid) []sheetRow {
	header := make([]string, g.Width()+1)
	for c := range g.Width() {
		header[c+1] = grid.ColumnName(c)
	}

	rows := make([]sheetRow, len(g))
	for r, cells := range g {
		row := sheetRow{
			Number:  r + 1,
			Cells:   make([]any, len(cells)),
			display: make([]string, len(cells)),
			header:  header,
			title:   title,
		}
		for c, cell := range cells {
			row.Cells[c] = cell.Value()
			row.display[c] = cell.String()
		}
		rows[r] = row
	}
	return rows
}

func (r sheetRow) Row() []string {
	return append([]string{strconv.Itoa(r.Number)}, r.display...)
}

func (r sheetRow) Header() []string { return r.header }

func (r sheetRow) Title() string { return r.title }

func (r sheetRow) Indent() string { return "  " }

// Alignments right-aligns the row number column.
func (r sheetRow) Alignments() []fmter.Alignment {
	return []fmter.Alignment{fmter.AlignRight}
}
