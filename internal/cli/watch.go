package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hycracing/courseselect/internal/visibility"
)

// shutdownTimeout bounds the restore pass run when the watcher stops.
const shutdownTimeout = 30 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Hide every route except the active one until stopped",
	Long: `Follow the active route on the server's delta stream. Whenever it
changes, every other route is snapshotted and hidden. When the active route
is cleared (with auto-restore on) and when the watcher stops on SIGINT or
SIGTERM, the hidden routes are written back.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := requireClient(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return watch(ctx, cmd)
}

// watch runs the engine until ctx ends and then restores the hidden routes.
func watch(ctx context.Context, cmd *cobra.Command) error {
	vc := deps.Settings.Visibility
	engine := visibility.New(deps.Client, visibility.Options{
		Mode:          vc.Mode,
		AutoRestore:   vc.AutoRestore,
		ExcludeRoutes: vc.ExcludeRoutes,
	}, visibility.WithLogger(deps.Logger))
	feed := visibility.NewSignalKFeed(deps.Client, deps.Settings.StreamPeriod(), deps.Logger)

	if err := engine.Start(ctx, feed); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "watching %s (mode %s), press Ctrl+C to stop\n", deps.Client.BaseURL(), engine.Mode())

	<-ctx.Done()

	// The run context is gone; restoring needs a fresh one.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := engine.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("restore routes: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "routes restored")
	return nil
}
