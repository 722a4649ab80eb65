package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pagegraph-tools/pagegraph/pkg/pagegraph"
)

const testDoc = `<graphml xmlns="http://graphml.graphdrawing.org/xmlns">
  <key id="d0" for="node" attr.name="node type" attr.type="string"/>
  <key id="d1" for="edge" attr.name="edge type" attr.type="string"/>
  <key id="d2" for="node" attr.name="tag name" attr.type="string"/>
  <key id="d4" for="all" attr.name="timestamp" attr.type="long"/>
  <key id="d5" for="node" attr.name="url" attr.type="string"/>
  <key id="d10" for="edge" attr.name="key" attr.type="string"/>
  <key id="d11" for="edge" attr.name="value" attr.type="string"/>
  <graph edgedefault="directed">
    <node id="n1">
      <data key="d0">DOM root</data>
      <data key="d5">https://example.com/</data>
    </node>
    <node id="n2">
      <data key="d0">html element</data>
      <data key="d2">div</data>
      <data key="d4">50</data>
    </node>
    <edge id="e1" source="n1" target="n2"><data key="d1">structure</data></edge>
    <edge id="e2" source="n1" target="n2">
      <data key="d1">set attribute</data>
      <data key="d10">id</data>
      <data key="d11">main</data>
      <data key="d4">75</data>
    </edge>
  </graph>
</graphml>`

func decodeTestGraph(t *testing.T) *pagegraph.Graph {
	t.Helper()
	g, err := pagegraph.Decode(strings.NewReader(testDoc), pagegraph.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return g
}

func TestFromGraph(t *testing.T) {
	out := FromGraph(decodeTestGraph(t))

	if out.URL != "https://example.com/" {
		t.Errorf("url = %q", out.URL)
	}
	if len(out.Nodes) != 2 || len(out.Edges) != 2 {
		t.Fatalf("nodes=%d edges=%d, want 2/2", len(out.Nodes), len(out.Edges))
	}

	div := out.Nodes[1]
	if div.ID != "n2" || div.Kind != "html element" {
		t.Errorf("node = %+v", div)
	}
	if div.Timestamp == nil || *div.Timestamp != 50 {
		t.Errorf("timestamp = %v, want 50", div.Timestamp)
	}
	if div.Fields["tag_name"] != "div" {
		t.Errorf("fields = %v", div.Fields)
	}

	sa := out.Edges[1]
	if sa.Kind != "set attribute" || sa.Source != "n1" || sa.Target != "n2" {
		t.Errorf("edge = %+v", sa)
	}
	if sa.Fields["key"] != "id" || sa.Fields["value"] != "main" {
		t.Errorf("fields = %v", sa.Fields)
	}

	// Fieldless kinds omit the fields object.
	if out.Edges[0].Fields != nil {
		t.Errorf("structure edge fields = %v, want nil", out.Edges[0].Fields)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	g := decodeTestGraph(t)

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	back, err := UnmarshalGraph(buf.Bytes())
	if err != nil {
		t.Fatalf("UnmarshalGraph: %v", err)
	}
	if len(back.Nodes) != 2 || len(back.Edges) != 2 {
		t.Errorf("round trip lost elements: nodes=%d edges=%d", len(back.Nodes), len(back.Edges))
	}
	if back.URL != "https://example.com/" {
		t.Errorf("url = %q", back.URL)
	}
}

func TestExportJSON(t *testing.T) {
	g := decodeTestGraph(t)
	path := filepath.Join(t.TempDir(), "graph.json")

	if err := ExportJSON(g, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	// File is valid JSON with the expected shape.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var check map[string]any
	if err := json.Unmarshal(raw, &check); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := check["nodes"]; !ok {
		t.Error("output missing nodes array")
	}
}

func TestUnmarshalGraphMalformed(t *testing.T) {
	if _, err := UnmarshalGraph([]byte("{not json")); err == nil {
		t.Error("expected error for malformed input")
	}
}
