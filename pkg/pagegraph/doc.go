// Package pagegraph decodes PageGraph provenance documents into a typed,
// queryable in-memory graph.
//
// A PageGraph document records a webpage's execution history — DOM
// construction, script execution, network requests, storage access — as a
// directed graph serialized in a GraphML-based exchange format. This package
// recovers the schema hidden in that format's loosely-typed attribute bags:
// every node and edge is classified into a closed variant set ([NodeType],
// [EdgeType]) that downstream analyses can match exhaustively.
//
// # Decoding
//
//	g, err := pagegraph.DecodeFile("page.graphml", pagegraph.Options{})
//	if err != nil {
//	    return err
//	}
//
// Decoding is a single pass: attribute decoding, kind classification, and
// graph assembly. The assembler rejects duplicate identifiers and edges
// referencing missing nodes, so a successfully decoded graph always
// satisfies its structural invariants. Unrecognized kinds abort the decode
// by default; with Options.Lenient they degrade to Unknown variants that
// preserve the full attribute mapping.
//
// # Querying
//
// The decoded [Graph] is immutable and safe for concurrent reads. Queries
// select nodes and edges by predicate over their typed variants:
//
//	scripts := g.FilterNodes(func(t pagegraph.NodeType) bool {
//	    _, ok := t.(pagegraph.Script)
//	    return ok
//	})
//
// Traversal helpers (Neighbors, IncidentEdges) use an adjacency index built
// once during assembly. Higher-level provenance queries — element
// modification history, script-initiated resources, downstream effects —
// live alongside the container in this package.
package pagegraph
