package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagegraph-tools/pagegraph/pkg/cache"
	"github.com/pagegraph-tools/pagegraph/pkg/dot"
)

// renderCacheTTL bounds how long rendered artifacts are kept.
const renderCacheTTL = 30 * 24 * time.Hour

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string // output file path (derived from input if empty)
	format     string // output format: "dot", "svg", "png"
	lenient    bool   // downgrade unrecognized elements instead of failing
	edgeLabels bool   // annotate edges with their kind
	noCache    bool   // bypass the render cache
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{"dot": true, "svg": true, "png": true}

// newRenderCmd creates the render command for generating diagrams.
func newRenderCmd() *cobra.Command {
	opts := renderOpts{format: "svg"}

	cmd := &cobra.Command{
		Use:   "render <file.graphml>",
		Short: "Render a recording as a Graphviz diagram",
		Long: `Render a decoded recording as a Graphviz diagram.

Examples:
  pagegraph render page.graphml                  # page.svg
  pagegraph render page.graphml -f png -o out.png
  pagegraph render page.graphml -f dot           # DOT source`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormats[opts.format] {
				return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'png')", opts.format)
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (derived from input if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), png, dot")
	cmd.Flags().BoolVar(&opts.lenient, "lenient", false, "keep unrecognized elements as unknown instead of failing")
	cmd.Flags().BoolVar(&opts.edgeLabels, "edge-labels", false, "annotate edges with their kind")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")

	return cmd
}

func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	data, cached, err := renderArtifact(ctx, input, opts)
	if err != nil {
		return err
	}
	logger.Debugf("Generated %s: %d bytes (cached=%v)", opts.format, len(data), cached)

	outputPath := opts.output
	if outputPath == "" {
		base := input
		if isRemote(input) {
			base = filepath.Base(input)
		}
		outputPath = strings.TrimSuffix(base, filepath.Ext(base)) + "." + opts.format
	}
	if err := writeOutput(data, outputPath); err != nil {
		return err
	}
	logger.Infof("Generated %s", outputPath)
	return nil
}

// renderArtifact produces the requested artifact, consulting the render
// cache keyed by source hash and render options.
func renderArtifact(ctx context.Context, input string, opts *renderOpts) ([]byte, bool, error) {
	source, err := readSource(ctx, input)
	if err != nil {
		return nil, false, err
	}

	c, err := newCache(opts.noCache)
	if err != nil {
		return nil, false, err
	}
	defer c.Close()

	keyer := cache.NewDefaultKeyer()
	key := keyer.RenderKey(cache.Hash(source), cache.RenderKeyOpts{
		Format:     opts.format,
		EdgeLabels: opts.edgeLabels,
	})

	if data, hit, err := c.Get(ctx, key); err == nil && hit {
		printStats(0, 0, true)
		return data, true, nil
	}

	g, err := decodeSource(ctx, source, opts.lenient)
	if err != nil {
		return nil, false, err
	}
	printStats(g.NodeCount(), g.EdgeCount(), false)

	d := dot.ToDOT(g, dot.Options{EdgeLabels: opts.edgeLabels})

	var data []byte
	switch opts.format {
	case "dot":
		data = []byte(d)
	case "svg", "png":
		spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
		spinner.Start()
		if opts.format == "svg" {
			data, err = dot.RenderSVG(d)
		} else {
			data, err = dot.RenderPNG(d)
		}
		if err != nil {
			spinner.StopWithError(fmt.Sprintf("Render failed: %v", err))
			return nil, false, err
		}
		spinner.StopWithSuccess(fmt.Sprintf("Rendered %s diagram", opts.format))
	}

	if err := c.Set(ctx, key, data, renderCacheTTL); err != nil {
		loggerFromContext(ctx).Debugf("Cache write failed: %v", err)
	}
	return data, false, nil
}
