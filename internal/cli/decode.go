package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagegraph-tools/pagegraph/pkg/cache"
	"github.com/pagegraph-tools/pagegraph/pkg/export"
	"github.com/pagegraph-tools/pagegraph/pkg/httputil"
	"github.com/pagegraph-tools/pagegraph/pkg/pagegraph"
)

// decodeCacheTTL bounds how long serialized decode results are kept.
const decodeCacheTTL = 30 * 24 * time.Hour

// decodeOpts holds the command-line flags for the decode command.
type decodeOpts struct {
	lenient bool   // downgrade unrecognized elements instead of failing
	json    bool   // emit the serialized graph instead of a summary
	output  string // output file path (stdout if empty)
	noCache bool   // bypass the decode cache
}

// newDecodeCmd creates the decode command.
// It decodes a GraphML recording and prints a summary, or with --json the
// full serialized graph. Serialized results are cached by source hash so
// repeated exports of large recordings skip the decode.
func newDecodeCmd() *cobra.Command {
	var opts decodeOpts

	cmd := &cobra.Command{
		Use:   "decode <file.graphml>",
		Short: "Decode a PageGraph recording into a typed graph",
		Long: `Decode a GraphML page provenance recording into a typed graph.

By default a summary is printed. With --json the full serialized graph is
written, suitable for piping into other tools.

Examples:
  pagegraph decode page.graphml
  pagegraph decode page.graphml --json -o page.json
  pagegraph decode page.graphml --lenient`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Decode.Lenient {
				opts.lenient = true
			}
			return runDecode(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.lenient, "lenient", false, "keep unrecognized elements as unknown instead of failing")
	cmd.Flags().BoolVar(&opts.json, "json", false, "emit the serialized graph as JSON")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the decode cache")

	return cmd
}

func runDecode(ctx context.Context, path string, opts *decodeOpts) error {
	logger := loggerFromContext(ctx)

	if opts.json {
		data, cached, err := decodeJSON(ctx, path, opts)
		if err != nil {
			return err
		}
		logger.Debugf("Serialized %d bytes (cached=%v)", len(data), cached)
		return writeOutput(data, opts.output)
	}

	g, err := decodeGraph(ctx, path, opts.lenient)
	if err != nil {
		return err
	}
	printSummary(g, path)
	return nil
}

// isRemote reports whether the recording argument is an http(s) URL.
func isRemote(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

// readSource loads a recording from a local path or an http(s) URL.
// Remote fetches retry transient failures.
func readSource(ctx context.Context, arg string) ([]byte, error) {
	if isRemote(arg) {
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching %s...", arg))
		spinner.Start()

		client := httputil.NewClient(httputil.WithUserAgent(appName + "/" + version))
		data, err := client.Fetch(ctx, arg)
		if err != nil {
			spinner.StopWithError(fmt.Sprintf("Fetch failed: %v", err))
			return nil, err
		}
		spinner.StopWithSuccess(fmt.Sprintf("Fetched %d bytes", len(data)))
		return data, nil
	}
	return os.ReadFile(arg)
}

// decodeGraph decodes the recording at path (or URL) with progress logging.
func decodeGraph(ctx context.Context, path string, lenient bool) (*pagegraph.Graph, error) {
	source, err := readSource(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeSource(ctx, source, lenient)
}

// decodeSource decodes recording bytes with progress logging.
func decodeSource(ctx context.Context, source []byte, lenient bool) (*pagegraph.Graph, error) {
	logger := loggerFromContext(ctx)
	logger.Debugf("Decoding %d bytes (lenient=%v)", len(source), lenient)

	prog := newProgress(logger)
	g, err := pagegraph.Decode(bytes.NewReader(source), pagegraph.Options{Lenient: lenient})
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Decoded %d nodes and %d edges", g.NodeCount(), g.EdgeCount()))
	return g, nil
}

// decodeJSON returns the serialized graph bytes, consulting the cache first.
func decodeJSON(ctx context.Context, path string, opts *decodeOpts) ([]byte, bool, error) {
	source, err := readSource(ctx, path)
	if err != nil {
		return nil, false, err
	}

	c, err := newCache(opts.noCache)
	if err != nil {
		return nil, false, err
	}
	defer c.Close()

	keyer := cache.NewDefaultKeyer()
	key := keyer.GraphKey(cache.Hash(source), cache.GraphKeyOpts{Lenient: opts.lenient})

	if data, hit, err := c.Get(ctx, key); err == nil && hit {
		return data, true, nil
	}

	g, err := decodeSource(ctx, source, opts.lenient)
	if err != nil {
		return nil, false, err
	}

	data, err := marshalGraph(g)
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, data, decodeCacheTTL); err != nil {
		loggerFromContext(ctx).Debugf("Cache write failed: %v", err)
	}
	return data, false, nil
}

func marshalGraph(g *pagegraph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := export.WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// printSummary prints the decoded graph overview: page URL, element
// counts, and the kind histogram.
func printSummary(g *pagegraph.Graph, path string) {
	fmt.Println(StyleTitle.Render(path))

	if url, err := g.RootURL(); err == nil {
		printKeyValue("page", url)
	}
	printKeyValue("nodes", fmt.Sprintf("%d", g.NodeCount()))
	printKeyValue("edges", fmt.Sprintf("%d", g.EdgeCount()))

	kinds := map[string]int{}
	var order []string
	for _, n := range g.Nodes() {
		kind := pagegraph.NodeKind(n.Type)
		if kinds[kind] == 0 {
			order = append(order, kind)
		}
		kinds[kind]++
	}
	for _, kind := range order {
		printDetail("%-24s %d", kind, kinds[kind])
	}
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// writeOutput writes data to path, or stdout when path is empty.
func writeOutput(data []byte, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	if path != "" {
		printFile(path)
	}
	return nil
}
