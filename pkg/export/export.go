package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pagegraph-tools/pagegraph/pkg/pagegraph"
)

// Graph is the serialized form of a decoded page graph.
type Graph struct {
	URL   string `json:"url,omitempty" bson:"url,omitempty"` // Top-level page URL when resolvable
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is the serialized form of a graph node.
type Node struct {
	ID        string         `json:"id" bson:"id"`
	Kind      string         `json:"kind" bson:"kind"`
	Timestamp *int64         `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
	Fields    map[string]any `json:"fields,omitempty" bson:"fields,omitempty"`
}

// Edge is the serialized form of a graph edge.
type Edge struct {
	ID        string         `json:"id" bson:"id"`
	Source    string         `json:"source" bson:"source"`
	Target    string         `json:"target" bson:"target"`
	Kind      string         `json:"kind" bson:"kind"`
	Timestamp *int64         `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
	Fields    map[string]any `json:"fields,omitempty" bson:"fields,omitempty"`
}

// FromGraph converts a decoded graph to its serialization format.
// Nodes and edges keep their source-document order.
func FromGraph(g *pagegraph.Graph) Graph {
	out := Graph{
		Nodes: make([]Node, 0, g.NodeCount()),
		Edges: make([]Edge, 0, g.EdgeCount()),
	}

	if url, err := g.RootURL(); err == nil {
		out.URL = url
	}

	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, Node{
			ID:        string(n.ID),
			Kind:      pagegraph.NodeKind(n.Type),
			Timestamp: n.Timestamp,
			Fields:    nodeFields(n.Type),
		})
	}

	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{
			ID:        string(e.ID),
			Source:    string(e.Source),
			Target:    string(e.Target),
			Kind:      pagegraph.EdgeKind(e.Type),
			Timestamp: e.Timestamp,
			Fields:    edgeFields(e.Type),
		})
	}

	return out
}

// WriteJSON encodes a decoded graph as indented JSON and writes it to w.
func WriteJSON(g *pagegraph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a decoded graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *pagegraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	return g, nil
}

// nodeFields flattens the dedicated fields of a node variant. Fieldless
// kinds return nil so the fields object is omitted entirely.
func nodeFields(t pagegraph.NodeType) map[string]any {
	switch v := t.(type) {
	case pagegraph.HTMLElement:
		f := map[string]any{"tag_name": v.TagName, "is_deleted": v.IsDeleted}
		if len(v.Attributes) > 0 {
			f["attributes"] = v.Attributes
		}
		return f
	case pagegraph.TextNode:
		return map[string]any{"text": v.Text, "is_deleted": v.IsDeleted}
	case pagegraph.DOMRoot:
		return map[string]any{"url": v.URL, "frame_id": v.FrameID}
	case pagegraph.FrameOwner:
		return map[string]any{"tag_name": v.TagName}
	case pagegraph.RemoteFrame:
		return map[string]any{"frame_id": v.FrameID}
	case pagegraph.Script:
		return map[string]any{"script_type": v.ScriptType, "source": v.Source}
	case pagegraph.Storage:
		return map[string]any{"storage_type": v.StorageType}
	case pagegraph.WebAPI:
		return map[string]any{"method": v.Method}
	case pagegraph.JSBuiltin:
		return map[string]any{"method": v.Method}
	case pagegraph.Resource:
		return map[string]any{"url": v.URL}
	case pagegraph.UnknownNode:
		if len(v.Attributes) == 0 {
			return nil
		}
		return map[string]any{"attributes": v.Attributes}
	default:
		return nil
	}
}

// edgeFields flattens the dedicated fields of an edge variant.
func edgeFields(t pagegraph.EdgeType) map[string]any {
	switch v := t.(type) {
	case pagegraph.InsertNode:
		return map[string]any{"parent_id": v.ParentID, "before_id": v.BeforeID}
	case pagegraph.SetAttribute:
		return map[string]any{"key": v.Key, "value": v.Value}
	case pagegraph.DeleteAttribute:
		return map[string]any{"key": v.Key}
	case pagegraph.ExecuteFromAttribute:
		return map[string]any{"attr_name": v.AttrName}
	case pagegraph.RequestStart:
		return map[string]any{"request_id": v.RequestID, "request_type": v.RequestType}
	case pagegraph.RequestComplete:
		return map[string]any{"request_id": v.RequestID, "status": v.Status, "size": v.Size}
	case pagegraph.RequestError:
		return map[string]any{"request_id": v.RequestID}
	case pagegraph.JSCall:
		return map[string]any{"method": v.Method}
	case pagegraph.JSResult:
		return map[string]any{"value": v.Value}
	case pagegraph.StorageSet:
		return map[string]any{"key": v.Key, "value": v.Value}
	case pagegraph.StorageRead:
		return map[string]any{"key": v.Key}
	case pagegraph.StorageDelete:
		return map[string]any{"key": v.Key}
	case pagegraph.UnknownEdge:
		if len(v.Attributes) == 0 {
			return nil
		}
		return map[string]any{"attributes": v.Attributes}
	default:
		return nil
	}
}
