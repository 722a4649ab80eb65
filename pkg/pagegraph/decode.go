package pagegraph

import (
	"fmt"
	"io"
	"os"

	"github.com/pagegraph-tools/pagegraph/pkg/graphml"
)

// Options controls decode policy.
type Options struct {
	// Lenient downgrades unrecognized kinds and required-field violations
	// to Unknown variants instead of aborting the decode. The default
	// (strict) policy fails the whole parse: a partially-typed graph is
	// worse than none for downstream structural queries.
	Lenient bool
}

// Decode reads a PageGraph document from r and assembles the typed graph.
//
// Decoding is a single top-to-bottom pass: attribute decoding and kind
// classification per element, then assembly with whole-document identifier
// checks. Node and edge order in the result matches source-document order.
// Any failure returns a structured error (pkg/errors) naming the offending
// element; the graph is never partially constructed.
func Decode(r io.Reader, opts Options) (*Graph, error) {
	doc, err := graphml.Parse(r)
	if err != nil {
		return nil, err
	}
	return assemble(doc, opts)
}

// DecodeFile opens path and decodes it. It is a thin convenience wrapper
// around [Decode].
func DecodeFile(path string, opts Options) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, opts)
}

// assemble classifies each raw element and builds the graph container,
// enforcing identifier uniqueness and edge endpoint resolution.
func assemble(doc *graphml.Document, opts Options) (*Graph, error) {
	g := newGraph()

	for _, raw := range doc.Nodes {
		t, err := classifyNode(raw, opts.Lenient)
		if err != nil {
			return nil, err
		}
		n := Node{ID: NodeID(raw.ID), Type: t, Timestamp: elementTimestamp(raw.Attrs)}
		if err := g.addNode(n); err != nil {
			return nil, err
		}
	}

	for _, raw := range doc.Edges {
		t, err := classifyEdge(raw, opts.Lenient)
		if err != nil {
			return nil, err
		}
		e := Edge{
			ID:        EdgeID(raw.ID),
			Source:    NodeID(raw.Source),
			Target:    NodeID(raw.Target),
			Type:      t,
			Timestamp: elementTimestamp(raw.Attrs),
		}
		if err := g.addEdge(e); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// elementTimestamp reads the optional per-element timestamp. An absent or
// undecodable timestamp degrades to nil.
func elementTimestamp(attrs *graphml.Attributes) *int64 {
	v, ok := attrs.Get(attrTimestamp)
	if !ok {
		return nil
	}
	ts, ok := v.AsTimestamp()
	if !ok {
		return nil
	}
	return &ts
}
