// cmd/watch.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lsert/zarm-web/internal/browser/cdp"
	"github.com/lsert/zarm-web/internal/observability"
	"github.com/lsert/zarm-web/internal/popper"
)

func newWatchCmd() *cobra.Command {
	var (
		referenceSel string
		popperSel    string
		duration     time.Duration
		headful      bool
	)

	watchCmd := &cobra.Command{
		Use:   "watch URL",
		Short: "Keeps a popper positioned in a live page until the duration elapses or the process is interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if duration < 0 {
				return fmt.Errorf("--duration must not be negative")
			}
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if headful {
				cfg.SetBrowserHeadless(false)
			}
			opts, err := cfg.Popper().PopperOptions()
			if err != nil {
				return fmt.Errorf("invalid popper options: %w", err)
			}

			ctx := cmd.Context()
			logger := observability.GetLogger().With(zap.String("url", args[0]))

			tabCtx, closeBrowser, err := cdp.Launch(ctx, cfg.Browser(), logger)
			if err != nil {
				return err
			}
			defer closeBrowser()

			if err := cdp.Navigate(tabCtx, cfg.Browser(), args[0]); err != nil {
				return err
			}
			provider, err := cdp.New(tabCtx, logger)
			if err != nil {
				return err
			}
			reference, err := provider.Find(referenceSel)
			if err != nil {
				return fmt.Errorf("reference: %w", err)
			}
			popperEl, err := provider.Find(popperSel)
			if err != nil {
				return fmt.Errorf("popper: %w", err)
			}

			p, err := popper.New(provider, reference, popperEl, popper.WithOptions(opts), popper.WithLogger(logger))
			if err != nil {
				return err
			}
			defer p.Destroy()

			state, err := p.Update()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s at (%g, %g)\n", args[0], state.Placement, state.Offsets.Popper.Left, state.Offsets.Popper.Top)
			logger.Info("Watching popper.", zap.String("popper_id", p.ID()), zap.Duration("duration", duration))

			return waitFor(ctx, duration)
		},
	}

	watchCmd.Flags().StringVar(&referenceSel, "reference", "", "CSS selector of the reference element")
	watchCmd.Flags().StringVar(&popperSel, "popper", "", "CSS selector of the popper element")
	watchCmd.Flags().DurationVar(&duration, "duration", 0, "how long to keep watching (0 = until interrupted)")
	watchCmd.Flags().BoolVar(&headful, "headful", false, "show the browser window (overrides browser.headless)")
	_ = watchCmd.MarkFlagRequired("reference")
	_ = watchCmd.MarkFlagRequired("popper")

	return watchCmd
}

// waitFor blocks until d elapses or ctx ends. A zero d waits for ctx alone.
// Running out the clock is success; cancellation is reported.
func waitFor(ctx context.Context, d time.Duration) error {
	if d == 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
