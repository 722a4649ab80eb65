// Package pkg provides the core libraries for PageGraph decoding and analysis.
//
// # Overview
//
// PageGraph turns GraphML page provenance recordings, produced by browser
// instrumentation during a page load, into strongly typed in-memory graphs
// that can be filtered, queried, and rendered. The pkg directory is
// organized into these areas:
//
//  1. [graphml] - GraphML document layer (schema keys, attribute decoding)
//  2. [pagegraph] - Typed graph model, decoder, and query engine
//  3. [export] - Canonical JSON serialization of decoded graphs
//  4. [dot] - Graphviz projection and SVG/PNG rendering
//  5. [archive] - Persistent storage of decoded graphs
//  6. [cache] - Content-addressed caching of derived artifacts
//
// # Architecture
//
// The typical data flow:
//
//	GraphML recording
//	         ↓
//	graphml  (parse document, decode attribute values)
//	         ↓
//	pagegraph (classify elements, assemble typed graph)
//	         ↓
//	queries / export / dot
//
// Supporting packages: [errors] carries structured error codes across the
// decode pipeline, [httputil] fetches remote recordings, [observability]
// exposes instrumentation hooks, and [buildinfo] carries version metadata.
package pkg
