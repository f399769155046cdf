package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/sheetview/internal/codec"
	"github.com/JonMunkholm/sheetview/internal/grid"
)

type convertOptions struct {
	*rootOptions
	normalize bool
	minRows   int
	minCols   int
}

func newConvertCmd(root *rootOptions) *cobra.Command {
	opts := &convertOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Convert a spreadsheet to another format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&opts.normalize, "normalize", false, "Pad the grid to the minimum shape before writing")
	cmd.Flags().IntVar(&opts.minRows, "min-rows", 10, "Minimum rows when normalizing")
	cmd.Flags().IntVar(&opts.minCols, "min-cols", 12, "Minimum columns when normalizing")
	return cmd
}

func runConvert(cmd *cobra.Command, opts *convertOptions, in, out string) error {
	log := opts.logger(cmd)

	inFormat, err := formatOf(in)
	if err != nil {
		return err
	}
	outFormat, err := formatOf(out)
	if err != nil {
		return err
	}

	g, err := readGrid(in, inFormat, opts.infer)
	if err != nil {
		return err
	}

	// Flags count as set only when given; --min-rows alone implies --normalize.
	if opts.normalize || cmd.Flags().Changed("min-rows") || cmd.Flags().Changed("min-cols") {
		g = grid.Normalize(g, opts.minRows, opts.minCols)
	}

	start := time.Now()
	data, err := codec.Encode(g, outFormat)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	log.Info("converted",
		"in", in,
		"out", out,
		"rows", g.Rows(),
		"cols", g.Width(),
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// readGrid loads path and decodes it as f.
func readGrid(path string, f codec.Format, infer bool) (grid.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return codec.DecodeWithOptions(data, f, codec.DecodeOptions{InferTypes: infer})
}
