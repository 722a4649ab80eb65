package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/pagegraph-tools/pagegraph/pkg/pagegraph"
)

// Options configures DOT generation.
type Options struct {
	// EdgeLabels annotates each edge with its kind. Off by default:
	// large page loads become unreadable with per-edge text.
	EdgeLabels bool
	// MaxLabel truncates node labels longer than this many runes.
	// Zero means the default of 40.
	MaxLabel int
}

const defaultMaxLabel = 40

// ToDOT converts a decoded graph to Graphviz DOT format. The resulting
// string can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(g *pagegraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph pagegraph {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := nodeLabel(n, opts.maxLabel())
		attrs := nodeAttrs(n.Type, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if opts.EdgeLabels {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.Source, e.Target, pagegraph.EdgeKind(e.Type))
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func (o Options) maxLabel() int {
	if o.MaxLabel > 0 {
		return o.MaxLabel
	}
	return defaultMaxLabel
}

// nodeLabel builds the display label: the kind tag plus the most useful
// dedicated field for that kind.
func nodeLabel(n *pagegraph.Node, max int) string {
	kind := pagegraph.NodeKind(n.Type)

	var detail string
	switch t := n.Type.(type) {
	case pagegraph.HTMLElement:
		detail = "<" + t.TagName + ">"
	case pagegraph.TextNode:
		detail = t.Text
	case pagegraph.DOMRoot:
		detail = t.URL
	case pagegraph.FrameOwner:
		detail = "<" + t.TagName + ">"
	case pagegraph.Script:
		detail = t.ScriptType
	case pagegraph.Resource:
		detail = t.URL
	case pagegraph.WebAPI:
		detail = t.Method
	case pagegraph.JSBuiltin:
		detail = t.Method
	case pagegraph.Storage:
		detail = t.StorageType
	}

	if detail == "" {
		return kind
	}
	return kind + "\n" + truncate(detail, max)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// nodeAttrs styles a node by layer: actors grey, DOM white, scripts
// yellow, network blue, storage green. Unknown kinds get dashed outlines.
func nodeAttrs(t pagegraph.NodeType, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}

	switch t.(type) {
	case pagegraph.Parser, pagegraph.Extensions:
		attrs = append(attrs, "fillcolor=lightgrey")
	case pagegraph.Script:
		attrs = append(attrs, "fillcolor=lightyellow")
	case pagegraph.Resource:
		attrs = append(attrs, "fillcolor=lightblue", "shape=ellipse")
	case pagegraph.Storage, pagegraph.LocalStorage, pagegraph.SessionStorage, pagegraph.CookieJar:
		attrs = append(attrs, "fillcolor=palegreen")
	case pagegraph.WebAPI, pagegraph.JSBuiltin:
		attrs = append(attrs, "fillcolor=thistle")
	case pagegraph.UnknownNode:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=white")
	}

	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
