package pagegraph

import (
	"github.com/pagegraph-tools/pagegraph/pkg/errors"
)

// NodeID identifies a node within a graph. IDs are kept exactly as written
// in the source document.
type NodeID string

// EdgeID identifies an edge within a graph.
type EdgeID string

// Node is one vertex of a decoded graph: a side effect observed during the
// page load. Nodes are immutable after construction.
type Node struct {
	ID   NodeID
	Type NodeType

	// Timestamp is the event time in the format's microsecond counter,
	// nil when the source element carried none.
	Timestamp *int64
}

// Edge is one directed edge of a decoded graph: an action taken during the
// page load. Source and Target reference nodes by identifier; a decoded
// graph guarantees both resolve. Edges are immutable after construction.
type Edge struct {
	ID     EdgeID
	Source NodeID
	Target NodeID
	Type   EdgeType

	// Timestamp is the event time in the format's microsecond counter,
	// nil when the source element carried none.
	Timestamp *int64
}

// Direction selects which incident edges a traversal follows.
type Direction int

const (
	// Incoming follows edges whose target is the given node.
	Incoming Direction = iota
	// Outgoing follows edges whose source is the given node.
	Outgoing
	// Both follows edges in either direction.
	Both
)

// Graph is a decoded PageGraph document: all nodes and edges in source
// order, with an adjacency index built once at assembly time.
//
// A Graph is immutable after decoding and safe for concurrent reads; there
// is no mutation API and queries never modify internal state.
type Graph struct {
	nodes     map[NodeID]*Node
	edges     map[EdgeID]*Edge
	nodeOrder []NodeID
	edgeOrder []EdgeID
	outgoing  map[NodeID][]EdgeID
	incoming  map[NodeID][]EdgeID
}

func newGraph() *Graph {
	return &Graph{
		nodes:    make(map[NodeID]*Node),
		edges:    make(map[EdgeID]*Edge),
		outgoing: make(map[NodeID][]EdgeID),
		incoming: make(map[NodeID][]EdgeID),
	}
}

// addNode registers a node, failing on a duplicate identifier.
func (g *Graph) addNode(n Node) error {
	if n.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "node ID must not be empty")
	}
	if _, exists := g.nodes[n.ID]; exists {
		return errors.New(errors.ErrCodeDuplicateID, "duplicate node ID %q", n.ID)
	}
	node := &n
	g.nodes[n.ID] = node
	g.nodeOrder = append(g.nodeOrder, n.ID)
	return nil
}

// addEdge registers an edge, failing on a duplicate identifier or an
// endpoint that does not resolve to a registered node.
func (g *Graph) addEdge(e Edge) error {
	if e.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "edge ID must not be empty")
	}
	if _, exists := g.edges[e.ID]; exists {
		return errors.New(errors.ErrCodeDuplicateID, "duplicate edge ID %q", e.ID)
	}
	if _, ok := g.nodes[e.Source]; !ok {
		return errors.New(errors.ErrCodeDanglingEdge, "edge %s: unknown source node %q", e.ID, e.Source)
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return errors.New(errors.ErrCodeDanglingEdge, "edge %s: unknown target node %q", e.ID, e.Target)
	}
	edge := &e
	g.edges[e.ID] = edge
	g.edgeOrder = append(g.edgeOrder, e.ID)
	g.outgoing[e.Source] = append(g.outgoing[e.Source], e.ID)
	g.incoming[e.Target] = append(g.incoming[e.Target], e.ID)
	return nil
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node with the given ID and true, or nil and false if
// no such node exists.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge with the given ID and true, or nil and false if
// no such edge exists.
func (g *Graph) Edge(id EdgeID) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Nodes returns all nodes in source-document order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		out[i] = g.nodes[id]
	}
	return out
}

// Edges returns all edges in source-document order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, len(g.edgeOrder))
	for i, id := range g.edgeOrder {
		out[i] = g.edges[id]
	}
	return out
}

// FilterNodes returns every node whose type satisfies pred, in
// source-document order. The predicate must be side-effect free; it may be
// evaluated in any order.
func (g *Graph) FilterNodes(pred func(NodeType) bool) []*Node {
	var out []*Node
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		if pred(n.Type) {
			out = append(out, n)
		}
	}
	return out
}

// FilterEdges returns every edge whose type satisfies pred, in
// source-document order.
func (g *Graph) FilterEdges(pred func(EdgeType) bool) []*Edge {
	var out []*Edge
	for _, id := range g.edgeOrder {
		e := g.edges[id]
		if pred(e.Type) {
			out = append(out, e)
		}
	}
	return out
}

// IncidentEdges returns the edges touching the node in the given direction.
// For Incoming and Outgoing the edges come back in source-document order;
// for Both all incoming edges precede all outgoing ones, each group in
// source-document order. Returns a NOT_FOUND error if the node does not
// exist.
func (g *Graph) IncidentEdges(id NodeID, dir Direction) ([]*Edge, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	var ids []EdgeID
	switch dir {
	case Incoming:
		ids = g.incoming[id]
	case Outgoing:
		ids = g.outgoing[id]
	case Both:
		ids = append(append([]EdgeID{}, g.incoming[id]...), g.outgoing[id]...)
	}
	out := make([]*Edge, len(ids))
	for i, eid := range ids {
		out[i] = g.edges[eid]
	}
	return out, nil
}

// Neighbors returns the nodes adjacent to the given node via edges in the
// given direction: for Incoming the sources of inbound edges, for Outgoing
// the targets of outbound edges, for Both the union. A node connected by
// several parallel edges appears once per distinct neighbor, in the order
// first reached. Returns a NOT_FOUND error if the node does not exist.
func (g *Graph) Neighbors(id NodeID, dir Direction) ([]*Node, error) {
	edges, err := g.IncidentEdges(id, dir)
	if err != nil {
		return nil, err
	}
	seen := make(map[NodeID]bool)
	var out []*Node
	for _, e := range edges {
		other := e.Source
		if other == id {
			other = e.Target
		}
		if !seen[other] {
			seen[other] = true
			out = append(out, g.nodes[other])
		}
	}
	return out, nil
}
