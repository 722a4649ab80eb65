package graphml

import (
	"encoding/xml"
	"io"

	"github.com/pagegraph-tools/pagegraph/pkg/errors"
)

// Attribute names that carry the kind discriminant for nodes and edges.
const (
	NodeTypeAttr = "node type"
	EdgeTypeAttr = "edge type"
)

// Attributes is an ordered mapping from attribute name to decoded value.
// Iteration order matches the order the <data> elements appear in the source.
type Attributes struct {
	names  []string
	values map[string]Value
}

// Get returns the value for name and whether it is present.
func (a *Attributes) Get(name string) (Value, bool) {
	if a == nil {
		return Value{}, false
	}
	v, ok := a.values[name]
	return v, ok
}

// Names returns the attribute names in source order.
func (a *Attributes) Names() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.names)
}

// Strings returns the attribute mapping with every value in its original
// string form. Used to preserve unrecognized elements verbatim.
func (a *Attributes) Strings() map[string]string {
	if a == nil {
		return nil
	}
	out := make(map[string]string, len(a.names))
	for _, name := range a.names {
		out[name] = a.values[name].Raw
	}
	return out
}

func (a *Attributes) set(name string, v Value) {
	if a.values == nil {
		a.values = make(map[string]Value)
	}
	if _, exists := a.values[name]; !exists {
		a.names = append(a.names, name)
	}
	a.values[name] = v
}

// RawNode is a node element as found in the source document: its GraphML ID,
// kind tag, and decoded attribute mapping. RawNodes exist only during
// decoding and are discarded after classification.
type RawNode struct {
	ID    string
	Kind  string
	Attrs *Attributes
}

// RawEdge is an edge element as found in the source document.
type RawEdge struct {
	ID     string
	Source string
	Target string
	Kind   string
	Attrs  *Attributes
}

// Document is a parsed GraphML document: all node and edge elements in
// source order, with attribute keys resolved and values decoded.
type Document struct {
	Nodes []RawNode
	Edges []RawEdge
}

// xmlDocument mirrors the GraphML top-level structure.
type xmlDocument struct {
	XMLName xml.Name  `xml:"graphml"`
	Keys    []xmlKey  `xml:"key"`
	Graph   *xmlGraph `xml:"graph"`
}

// xmlKey is an attribute declaration: <key id="d1" for="node"
// attr.name="tag name" attr.type="string"/>.
type xmlKey struct {
	ID   string `xml:"id,attr"`
	For  string `xml:"for,attr"`
	Name string `xml:"attr.name,attr"`
	Type string `xml:"attr.type,attr"`
}

type xmlGraph struct {
	Nodes []xmlNode `xml:"node"`
	Edges []xmlEdge `xml:"edge"`
}

type xmlNode struct {
	ID   string    `xml:"id,attr"`
	Data []xmlData `xml:"data"`
}

type xmlEdge struct {
	ID     string    `xml:"id,attr"`
	Source string    `xml:"source,attr"`
	Target string    `xml:"target,attr"`
	Data   []xmlData `xml:"data"`
}

type xmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// Parse reads a GraphML document from r and returns its raw elements in
// source order. Malformed XML is reported with the line number from the
// underlying reader; a well-formed document without a <graph> element is
// also rejected.
func Parse(r io.Reader) (*Document, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		if syn, ok := err.(*xml.SyntaxError); ok {
			return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "XML syntax error on line %d", syn.Line)
		}
		return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "parse GraphML")
	}
	if doc.Graph == nil {
		return nil, errors.New(errors.ErrCodeMalformedDocument, "document has no <graph> element")
	}

	keys := make(map[string]xmlKey, len(doc.Keys))
	for _, k := range doc.Keys {
		keys[k.ID] = k
	}

	out := &Document{
		Nodes: make([]RawNode, 0, len(doc.Graph.Nodes)),
		Edges: make([]RawEdge, 0, len(doc.Graph.Edges)),
	}

	for _, n := range doc.Graph.Nodes {
		attrs := decodeData(n.Data, keys)
		kind, _ := attrs.Get(NodeTypeAttr)
		out.Nodes = append(out.Nodes, RawNode{ID: n.ID, Kind: kind.Raw, Attrs: attrs})
	}
	for _, e := range doc.Graph.Edges {
		attrs := decodeData(e.Data, keys)
		kind, _ := attrs.Get(EdgeTypeAttr)
		out.Edges = append(out.Edges, RawEdge{ID: e.ID, Source: e.Source, Target: e.Target, Kind: kind.Raw, Attrs: attrs})
	}

	return out, nil
}

// decodeData resolves each <data> element against the key table and decodes
// its value. Data referencing an undeclared key keeps the key ID as its name
// and decodes as a plain string, so no information is silently dropped.
func decodeData(data []xmlData, keys map[string]xmlKey) *Attributes {
	attrs := &Attributes{}
	for _, d := range data {
		name, declaredType := d.Key, ""
		if k, ok := keys[d.Key]; ok {
			if k.Name != "" {
				name = k.Name
			}
			declaredType = k.Type
		}
		attrs.set(name, DecodeValue(name, declaredType, d.Value))
	}
	return attrs
}
