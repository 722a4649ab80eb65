// Package export provides the canonical serialization format for decoded
// page graphs. Used for API responses, storage, and cross-tool exchange.
//
// The format flattens the typed node and edge variants into a kind string
// plus a fields object, so consumers without the Go type definitions can
// still process the output.
package export
