// Package graphml reads the GraphML-based exchange format emitted by
// PageGraph instrumentation.
//
// A PageGraph document declares its attribute schema up front as a list of
// <key> elements, each naming an attribute ("node type", "timestamp",
// "tag name", ...) and its declared scalar type. Node and edge elements then
// carry <data> children referencing those keys by ID. This package resolves
// key declarations, decodes each raw string value into a typed scalar
// ([Value]), and exposes the document as a flat sequence of [RawNode] and
// [RawEdge] elements in source order.
//
// The package is deliberately schema-agnostic: it knows about GraphML's
// type-attribute convention but nothing about PageGraph node or edge kinds.
// Kind-driven classification into typed variants happens one layer up, in
// the pagegraph package.
package graphml
