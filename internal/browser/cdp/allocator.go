// internal/browser/cdp/allocator.go
package cdp

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/lsert/zarm-web/internal/config"
)

// AllocatorOptions translates the browser config into chromedp allocator
// options.
func AllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(cfg.Viewport.Width, cfg.Viewport.Height),
	)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	for _, arg := range cfg.Args {
		key, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if key == "" {
			continue
		}
		if hasValue {
			opts = append(opts, chromedp.Flag(key, value))
			continue
		}
		opts = append(opts, chromedp.Flag(key, true))
	}
	return opts
}

// Launch starts a browser and opens one tab sized to the configured
// viewport. The returned cancel func closes the tab and the browser.
func Launch(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (context.Context, context.CancelFunc, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, AllocatorOptions(cfg)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Sugar().Debugf))
	cancel := func() {
		tabCancel()
		allocCancel()
	}

	if err := chromedp.Run(tabCtx, chromedp.EmulateViewport(int64(cfg.Viewport.Width), int64(cfg.Viewport.Height))); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to start browser: %w", err)
	}
	logger.Debug("Browser started.",
		zap.Bool("headless", cfg.Headless),
		zap.Int("width", cfg.Viewport.Width),
		zap.Int("height", cfg.Viewport.Height))
	return tabCtx, cancel, nil
}

// Navigate loads url and waits for body to be ready.
func Navigate(ctx context.Context, cfg config.BrowserConfig, url string) error {
	if cfg.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.NavigationTimeout)
		defer cancel()
	}
	if err := chromedp.Run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}
