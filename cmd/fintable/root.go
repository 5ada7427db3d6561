package main

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/bighogz/fintable/internal/config"
)

// rootOptions holds flags shared by all commands.
type rootOptions struct {
	Verbose bool
	APIURL  string
	Offline bool
	DataDir string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "fintable",
		Short: "Filter and sort financial records from the terminal",
		Long: `fintable fetches the financial record set once and prints it filtered
by date and value ranges and sorted by any column.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log requests to stderr")
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "records endpoint (default $FINTABLE_API_URL)")
	cmd.PersistentFlags().BoolVar(&opts.Offline, "offline", false, "read the last saved snapshot instead of the backend")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "directory holding snapshots.db (default $FINTABLE_DATA_DIR)")

	cmd.AddCommand(newViewCommand(opts))
	cmd.AddCommand(newSnapshotCommand(opts))
	return cmd
}

// config returns the environment configuration overridden by flags.
func (o *rootOptions) config() *config.Config {
	cfg := config.Load()
	if o.APIURL != "" {
		cfg.APIURL = o.APIURL
	}
	if o.Offline {
		cfg.Offline = true
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	return cfg
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

var validFormats = []string{"markdown", "json", "csv"}

func checkFormat(format string) error {
	if !slices.Contains(validFormats, format) {
		return fmt.Errorf("invalid format %q: must be one of %v", format, validFormats)
	}
	return nil
}
