// Package dot renders decoded page graphs as Graphviz DOT and rasterizes
// them to SVG or PNG. Node shapes and fills follow the element kind so the
// actor, DOM, script, and network layers are visually distinct.
package dot
