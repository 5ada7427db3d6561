package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/bighogz/fintable/internal/cache"
)

func newSnapshotCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Describe the last saved snapshot",
		Long: `Print where and when the newest snapshot was taken. Snapshots are written
after every successful load and are what --offline reads.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd.Context(), rootOpts, cmd.OutOrStdout())
		},
	}
}

func runSnapshot(ctx context.Context, rootOpts *rootOptions, out io.Writer) error {
	cfg := rootOpts.config()
	snapshots, err := cache.Open(cfg.SnapshotPath())
	if err != nil {
		return fmt.Errorf("open snapshot cache: %w", err)
	}
	defer snapshots.Close()

	snap, ok := snapshots.Read(ctx, true)
	if !ok {
		return fmt.Errorf("%s: %w", cfg.SnapshotPath(), cache.ErrNoSnapshot)
	}
	_, fresh := snapshots.Read(ctx, false)

	fmt.Fprintf(out, "Snapshot: %s\n", snap.ID)
	fmt.Fprintf(out, "Source:   %s\n", snap.Source)
	fmt.Fprintf(out, "Cached:   %s\n", snap.CachedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Records:  %d\n", len(snap.Records))
	if !fresh {
		fmt.Fprintln(out, "Stale:    older than a day")
	}
	return nil
}
