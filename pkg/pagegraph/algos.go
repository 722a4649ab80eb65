package pagegraph

import (
	"sort"
	"strings"

	"github.com/pagegraph-tools/pagegraph/pkg/errors"
)

// NodesOfHTMLTagName returns every HTML element node with the given tag
// name, in source-document order. Matching is case-insensitive: HTML
// parsers lowercase tag names, but documents in the wild vary. Deleted
// elements match like any other; filter on IsDeleted separately if needed.
func (g *Graph) NodesOfHTMLTagName(tagName string) []*Node {
	return g.FilterNodes(func(t NodeType) bool {
		el, ok := t.(HTMLElement)
		return ok && strings.EqualFold(el.TagName, tagName)
	})
}

// HTMLElementModifications returns one edge for every time the given HTML
// element node was modified during the page load: all incoming edges except
// the static Structure relation, sorted by timestamp. Edges without a
// timestamp sort first, keeping their source order.
//
// Returns a NOT_FOUND error if the node does not exist and an INVALID_INPUT
// error if it is not an HTML element.
func (g *Graph) HTMLElementModifications(id NodeID) ([]*Edge, error) {
	n, ok := g.Node(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	if _, ok := n.Type.(HTMLElement); !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"node %q is %q, want %q", id, NodeKind(n.Type), KindHTMLElement)
	}

	incoming, err := g.IncidentEdges(id, Incoming)
	if err != nil {
		return nil, err
	}

	var mods []*Edge
	for _, e := range incoming {
		if _, ok := e.Type.(Structure); ok {
			continue
		}
		mods = append(mods, e)
	}

	sort.SliceStable(mods, func(i, j int) bool {
		ti, tj := mods[i].Timestamp, mods[j].Timestamp
		if ti == nil {
			return tj != nil
		}
		if tj == nil {
			return false
		}
		return *ti < *tj
	})

	return mods, nil
}

// ResourcesFromScript returns every Resource node whose request was
// initiated by the given node. The node must be a Script, or an HTML
// element with tag name "script".
//
// For Script nodes, associated resources are directly attached. For script
// elements, resources are either directly attached (src="...") or attached
// to a Script node the element executes.
func (g *Graph) ResourcesFromScript(id NodeID) ([]*Node, error) {
	n, ok := g.Node(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}

	switch t := n.Type.(type) {
	case Script:
	case HTMLElement:
		if !strings.EqualFold(t.TagName, "script") {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"node %q is a %q element, want a script element or script node", id, t.TagName)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"node %q is %q, want %q or a script element", id, NodeKind(n.Type), KindScript)
	}

	resources := g.outgoingOfType(id, func(t NodeType) bool {
		_, ok := t.(Resource)
		return ok
	})

	// Script elements additionally pull in resources fetched by the script
	// bodies they execute.
	if el, ok := n.Type.(HTMLElement); ok && strings.EqualFold(el.TagName, "script") {
		for _, script := range g.outgoingOfType(id, func(t NodeType) bool {
			_, ok := t.(Script)
			return ok
		}) {
			resources = append(resources, g.outgoingOfType(script.ID, func(t NodeType) bool {
				_, ok := t.(Resource)
				return ok
			})...)
		}
	}

	return resources, nil
}

// RootURL returns the URL of the page the graph was recorded from: the URL
// of the unique DOM root node with no incoming edges. Nested frame roots
// have incoming edges from their frame owners and never qualify.
func (g *Graph) RootURL() (string, error) {
	var roots []*Node
	for _, n := range g.Nodes() {
		if _, ok := n.Type.(DOMRoot); !ok {
			continue
		}
		if len(g.incoming[n.ID]) == 0 {
			roots = append(roots, n)
		}
	}

	switch len(roots) {
	case 0:
		return "", errors.New(errors.ErrCodeNotFound, "graph has no top-level DOM root")
	case 1:
		root := roots[0].Type.(DOMRoot)
		if root.URL == "" {
			return "", errors.New(errors.ErrCodeNotFound, "top-level DOM root %q has no URL", roots[0].ID)
		}
		return root.URL, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput,
			"graph has %d top-level DOM roots, want exactly 1", len(roots))
	}
}

// DirectDownstreamEffects returns the nodes directly caused by the given
// node during the page load:
//
//   - Resource: the Script nodes whose bodies the fetched bytes became,
//     reached through the requesting script element.
//   - HTML element with tag name "script": the Resource it requests
//     (src="..."), or for inline scripts the Script body it executes.
//   - Script: resources it fetched and scripts it executed.
//
// Other kinds have no causal rule defined and return an UNSUPPORTED error.
func (g *Graph) DirectDownstreamEffects(id NodeID) ([]*Node, error) {
	n, ok := g.Node(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}

	isScript := func(t NodeType) bool { _, ok := t.(Script); return ok }
	isResource := func(t NodeType) bool { _, ok := t.(Resource); return ok }

	switch t := n.Type.(type) {
	case Resource:
		// Script resources cause the execution of the corresponding script
		// body, connected through the requesting HTML script element.
		var effects []*Node
		edges, _ := g.IncidentEdges(id, Outgoing)
		for _, e := range edges {
			if _, ok := e.Type.(RequestComplete); !ok {
				continue
			}
			target, _ := g.Node(e.Target)
			el, ok := target.Type.(HTMLElement)
			if !ok || !strings.EqualFold(el.TagName, "script") {
				continue
			}
			effects = append(effects, g.outgoingOfType(target.ID, isScript)...)
		}
		return effects, nil

	case HTMLElement:
		if !strings.EqualFold(t.TagName, "script") {
			return nil, errors.New(errors.ErrCodeUnsupported,
				"no downstream-effect rule for %q elements", t.TagName)
		}
		// Script elements with a src attribute cause a resource request;
		// inline script elements cause a script execution.
		if resources := g.outgoingOfType(id, isResource); len(resources) > 0 {
			return resources, nil
		}
		return g.outgoingOfType(id, isScript), nil

	case Script:
		var effects []*Node
		edges, _ := g.IncidentEdges(id, Incoming)
		for _, e := range edges {
			if _, ok := e.Type.(RequestComplete); ok {
				src, _ := g.Node(e.Source)
				effects = append(effects, src)
			}
		}
		return append(effects, g.outgoingOfType(id, isScript)...), nil

	default:
		return nil, errors.New(errors.ErrCodeUnsupported,
			"no downstream-effect rule for kind %q", NodeKind(n.Type))
	}
}

// DownstreamEffects returns the transitive closure of
// [Graph.DirectDownstreamEffects] from the given node, in breadth-first
// discovery order, excluding the start node. Nodes whose kind has no
// causal rule terminate their branch rather than failing the whole query.
func (g *Graph) DownstreamEffects(id NodeID) ([]*Node, error) {
	if _, ok := g.Node(id); !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}

	visited := map[NodeID]bool{id: true}
	queue := []NodeID{id}
	var out []*Node

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		effects, err := g.DirectDownstreamEffects(current)
		if err != nil {
			if errors.Is(err, errors.ErrCodeUnsupported) {
				continue
			}
			return nil, err
		}
		for _, n := range effects {
			if visited[n.ID] {
				continue
			}
			visited[n.ID] = true
			out = append(out, n)
			queue = append(queue, n.ID)
		}
	}

	return out, nil
}

// outgoingOfType returns the distinct outgoing neighbors of id whose type
// satisfies pred, in edge source order.
func (g *Graph) outgoingOfType(id NodeID, pred func(NodeType) bool) []*Node {
	neighbors, err := g.Neighbors(id, Outgoing)
	if err != nil {
		return nil
	}
	var out []*Node
	for _, n := range neighbors {
		if pred(n.Type) {
			out = append(out, n)
		}
	}
	return out
}
