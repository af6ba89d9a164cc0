// cmd/place.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lsert/zarm-web/internal/browser/dom"
	"github.com/lsert/zarm-web/internal/config"
	"github.com/lsert/zarm-web/internal/observability"
	"github.com/lsert/zarm-web/internal/popper"
)

// placeResult is one fixture's outcome as printed by `place`.
type placeResult struct {
	File      string              `json:"file"`
	Placement string              `json:"placement"`
	Position  popper.PositionMode `json:"position"`
	Left      float64             `json:"left"`
	Top       float64             `json:"top"`
	Flipped   bool                `json:"flipped"`
	Style     string              `json:"style"`
	Arrow     string              `json:"arrow,omitempty"`
}

type placeRequest struct {
	reference string
	popper    string
	renderDir string
	opts      popper.Options
	browser   config.BrowserConfig
}

func newPlaceCmd() *cobra.Command {
	var req placeRequest

	placeCmd := &cobra.Command{
		Use:   "place [fixture.html...]",
		Short: "Positions a popper in each HTML fixture and prints the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			applyPopperFlags(cmd, cfg)
			if req.opts, err = cfg.Popper().PopperOptions(); err != nil {
				return fmt.Errorf("invalid popper options: %w", err)
			}
			req.browser = cfg.Browser()

			results, err := placeAll(cmd.Context(), args, req, observability.GetLogger())
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode results: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	placeCmd.Flags().StringVar(&req.reference, "reference", "", "XPath of the reference element")
	placeCmd.Flags().StringVar(&req.popper, "popper", "", "XPath of the popper element")
	placeCmd.Flags().StringVar(&req.renderDir, "render", "", "directory to write the positioned HTML to")
	placeCmd.Flags().String("placement", "", "placement, e.g. top or right-start (overrides config)")
	placeCmd.Flags().Float64("offset", 0, "offset along the placement axis in px (overrides config)")
	placeCmd.Flags().Float64("padding", 0, "boundaries padding in px (overrides config)")
	placeCmd.Flags().String("arrow", "", "arrow selector inside the popper (overrides config)")
	_ = placeCmd.MarkFlagRequired("reference")
	_ = placeCmd.MarkFlagRequired("popper")

	return placeCmd
}

// applyPopperFlags copies explicitly set flags over the loaded config.
func applyPopperFlags(cmd *cobra.Command, cfg config.Interface) {
	flags := cmd.Flags()
	if flags.Changed("placement") {
		v, _ := flags.GetString("placement")
		cfg.SetPopperPlacement(v)
	}
	if flags.Changed("offset") {
		v, _ := flags.GetFloat64("offset")
		cfg.SetPopperOffset(v)
	}
	if flags.Changed("padding") {
		v, _ := flags.GetFloat64("padding")
		cfg.SetPopperBoundariesPadding(v)
	}
	if flags.Changed("arrow") {
		v, _ := flags.GetString("arrow")
		cfg.SetPopperArrowSelector(v)
	}
}

// placeAll runs every fixture concurrently. Results keep argument order.
func placeAll(ctx context.Context, files []string, req placeRequest, logger *zap.Logger) ([]placeResult, error) {
	if req.renderDir != "" {
		dir, err := homedir.Expand(req.renderDir)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create render directory: %w", err)
		}
		req.renderDir = dir
	}

	results := make([]placeResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := placeOne(file, req, logger.With(zap.String("file", file)))
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func placeOne(file string, req placeRequest, logger *zap.Logger) (placeResult, error) {
	path, err := homedir.Expand(file)
	if err != nil {
		return placeResult{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return placeResult{}, err
	}
	doc, err := dom.Parse(f,
		dom.WithViewport(float64(req.browser.Viewport.Width), float64(req.browser.Viewport.Height)),
		dom.WithLogger(logger))
	f.Close()
	if err != nil {
		return placeResult{}, err
	}

	reference, err := doc.Find(req.reference)
	if err != nil {
		return placeResult{}, fmt.Errorf("reference: %w", err)
	}
	popperEl, err := doc.Find(req.popper)
	if err != nil {
		return placeResult{}, fmt.Errorf("popper: %w", err)
	}

	p, err := popper.New(doc, reference, popperEl, popper.WithOptions(req.opts), popper.WithLogger(logger))
	if err != nil {
		return placeResult{}, err
	}
	defer p.Destroy()

	doc.Flush()
	state, err := p.Update()
	if err != nil {
		return placeResult{}, err
	}

	res := placeResult{
		File:      file,
		Placement: state.Placement.String(),
		Position:  p.Position(),
		Left:      state.Offsets.Popper.Left,
		Top:       state.Offsets.Popper.Top,
		Flipped:   state.Flipped,
		Style:     doc.Attribute(popperEl, "style"),
	}
	if state.Offsets.Arrow.Present() {
		res.Arrow = doc.Attribute(state.Offsets.Arrow.Element, "style")
	}

	if req.renderDir != "" {
		if err := renderTo(doc, filepath.Join(req.renderDir, filepath.Base(path))); err != nil {
			return placeResult{}, err
		}
	}
	logger.Debug("Fixture placed.", zap.String("placement", res.Placement), zap.Bool("flipped", res.Flipped))
	return res, nil
}

func renderTo(doc *dom.Document, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := doc.Render(out); err != nil {
		out.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return out.Close()
}
