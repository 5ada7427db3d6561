package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bighogz/fintable/internal/cache"
	"github.com/bighogz/fintable/internal/config"
	"github.com/bighogz/fintable/internal/models"
	"github.com/bighogz/fintable/internal/render"
	"github.com/bighogz/fintable/internal/source"
	"github.com/bighogz/fintable/internal/telemetry"
	"github.com/bighogz/fintable/internal/view"
)

type viewOptions struct {
	Form         view.Form
	Desc         bool
	Format       string
	CSVPath      string
	Strict       bool
	Plain        bool
	Width        int
	RemoteFilter bool
}

func newViewCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &viewOptions{}

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the record table",
		Long: `Fetch the record set once, apply the filters and print the sorted table.

Filter values are read the way the web form reads them: an empty or
unparseable bound leaves that side unconstrained. Dates are compared as text,
so use the backend's format (e.g. 2023 or 2023-09-30).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), rootOpts, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Form.StartDate, "start-date", "", "earliest date to include")
	f.StringVar(&opts.Form.EndDate, "end-date", "", "latest date to include")
	f.StringVar(&opts.Form.MinRevenue, "min-revenue", "", "minimum revenue")
	f.StringVar(&opts.Form.MaxRevenue, "max-revenue", "", "maximum revenue")
	f.StringVar(&opts.Form.MinNetIncome, "min-net-income", "", "minimum net income")
	f.StringVar(&opts.Form.MaxNetIncome, "max-net-income", "", "maximum net income")
	f.StringVar(&opts.Form.SortBy, "sort", "", "column to sort by (date|revenue|netIncome|grossProfit|eps|operatingIncome)")
	f.BoolVar(&opts.Desc, "desc", false, "sort descending")
	f.StringVar(&opts.Format, "format", "markdown", "output format (markdown|json|csv)")
	f.StringVar(&opts.CSVPath, "csv", "", "also write the displayed rows to this CSV file")
	f.BoolVar(&opts.Strict, "strict", false, "fail when the response holds malformed records")
	f.BoolVar(&opts.Plain, "plain", false, "print raw Markdown instead of styled terminal output")
	f.IntVar(&opts.Width, "width", 120, "terminal width for styled output")
	f.BoolVar(&opts.RemoteFilter, "remote-filter", false, "also send the filters and sort key to the backend")

	return cmd
}

func runView(ctx context.Context, rootOpts *rootOptions, opts *viewOptions, out, errOut io.Writer) error {
	if err := checkFormat(opts.Format); err != nil {
		return err
	}
	if opts.Desc {
		opts.Form.Direction = string(models.Descending)
	}
	st, err := opts.Form.State()
	if err != nil {
		return err
	}

	cfg := rootOpts.config()
	logger := rootOpts.logger(errOut)

	shutdownTracing, err := telemetry.Setup("fintable", cfg.Trace, errOut)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	snapshots, err := cache.Open(cfg.SnapshotPath())
	if err != nil {
		if cfg.Offline {
			return fmt.Errorf("offline mode needs the snapshot cache: %w", err)
		}
		logger.Warn("Snapshot cache unavailable", "path", cfg.SnapshotPath(), "error", err)
		snapshots = nil
	} else {
		defer snapshots.Close()
	}

	var loader view.Loader = snapshots
	if !cfg.Offline {
		loader = remoteLoader(cfg, logger, st, opts)
	}

	session := view.NewSession()
	loadErr := session.Load(ctx, loader)
	// A backend-filtered result is not the full set, so it must not become the
	// snapshot that offline views derive from.
	partial := opts.RemoteFilter && !st.Criteria.IsEmpty()
	if loadErr == nil && !cfg.Offline && snapshots != nil {
		if partial {
			logger.Info("Not saving snapshot of a backend-filtered result")
		} else if _, err := snapshots.Write(ctx, cfg.APIURL, session.Full()); err != nil {
			logger.Warn("Failed to write snapshot", "error", err)
		}
	}

	page := session.Page(ctx, st)
	if opts.CSVPath != "" {
		if err := writeCSVFile(opts.CSVPath, page.Rows); err != nil {
			return err
		}
		logger.Info("Wrote CSV", "path", opts.CSVPath, "rows", len(page.Rows))
	}
	if err := printPage(out, page, opts); err != nil {
		return err
	}
	if loadErr != nil {
		return fmt.Errorf("load records: %w", loadErr)
	}
	return nil
}

// remoteLoader fetches from the backend. With --strict any rejected element
// fails the load.
func remoteLoader(cfg *config.Config, logger *slog.Logger, st view.State, opts *viewOptions) view.Loader {
	client := source.New(cfg, logger)
	client.Strict = opts.Strict
	if !opts.RemoteFilter {
		return client
	}
	return view.LoaderFunc(func(ctx context.Context) ([]models.Record, error) {
		return client.LoadWith(ctx, st.Criteria, st.Sort.Key)
	})
}

func printPage(w io.Writer, page view.Page, opts *viewOptions) error {
	switch opts.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	case "csv":
		return render.CSV(w, page.Rows)
	}
	text := render.Markdown(page)
	if !opts.Plain {
		styled, err := render.Terminal(text, opts.Width)
		if err != nil {
			return err
		}
		text = styled
	}
	_, err := io.WriteString(w, text)
	return err
}

func writeCSVFile(path string, records []models.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.CSV(f, records); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
