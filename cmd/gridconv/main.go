// Package main provides the gridconv CLI, which converts and prints
// spreadsheet files using the same codecs as the web viewer.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/sheetview/internal/codec"
	"github.com/JonMunkholm/sheetview/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	logLevel string
	infer    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "gridconv",
		Short: "Convert and inspect spreadsheet files",
		Long: `gridconv reads XLSX, XLS, CSV and JSON grids and writes them in any of
those formats. Formats are chosen from file extensions.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&opts.infer, "infer", false, "Read CSV numbers and booleans as typed cells")

	rootCmd.AddCommand(newConvertCmd(opts), newShowCmd(opts))
	return rootCmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return logging.New(cmd.ErrOrStderr(), o.logLevel, "text")
}

// formatOf returns the codec format named by path's extension.
func formatOf(path string) (codec.Format, error) {
	f, ok := codec.FormatFromFilename(path)
	if !ok {
		return "", fmt.Errorf("%s: %w (use .xlsx, .xls, .csv or .json)", path, codec.ErrUnsupportedFormat)
	}
	return f, nil
}
