package pagegraph_test

import (
	"fmt"
	"strings"

	"github.com/pagegraph-tools/pagegraph/pkg/pagegraph"
)

const exampleDoc = `<graphml xmlns="http://graphml.graphdrawing.org/xmlns">
  <key id="d0" for="node" attr.name="node type" attr.type="string"/>
  <key id="d1" for="edge" attr.name="edge type" attr.type="string"/>
  <key id="d2" for="node" attr.name="tag name" attr.type="string"/>
  <key id="d3" for="node" attr.name="is deleted" attr.type="boolean"/>
  <key id="d5" for="node" attr.name="url" attr.type="string"/>
  <graph edgedefault="directed">
    <node id="n1">
      <data key="d0">DOM root</data>
      <data key="d5">https://example.com/</data>
    </node>
    <node id="n2">
      <data key="d0">html element</data>
      <data key="d2">div</data>
      <data key="d3">true</data>
    </node>
    <node id="n3">
      <data key="d0">html element</data>
      <data key="d2">p</data>
    </node>
    <edge id="e1" source="n1" target="n2"><data key="d1">structure</data></edge>
    <edge id="e2" source="n2" target="n3"><data key="d1">structure</data></edge>
  </graph>
</graphml>`

func ExampleDecode() {
	// Decode a recorded page load into a typed graph
	g, err := pagegraph.Decode(strings.NewReader(exampleDoc), pagegraph.Options{})
	if err != nil {
		fmt.Println("decode failed:", err)
		return
	}

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	// Output:
	// Nodes: 3
	// Edges: 2
}

func ExampleGraph_FilterNodes() {
	g, _ := pagegraph.Decode(strings.NewReader(exampleDoc), pagegraph.Options{})

	// Find every element the page deleted before settling
	deleted := g.FilterNodes(func(t pagegraph.NodeType) bool {
		el, ok := t.(pagegraph.HTMLElement)
		return ok && el.IsDeleted
	})
	for _, n := range deleted {
		fmt.Println(n.ID, n.Type.(pagegraph.HTMLElement).TagName)
	}
	// Output:
	// n2 div
}

func ExampleGraph_Neighbors() {
	g, _ := pagegraph.Decode(strings.NewReader(exampleDoc), pagegraph.Options{})

	children, _ := g.Neighbors("n2", pagegraph.Outgoing)
	parents, _ := g.Neighbors("n2", pagegraph.Incoming)
	fmt.Println("Children:", len(children))
	fmt.Println("Parents:", len(parents))
	// Output:
	// Children: 1
	// Parents: 1
}

func ExampleGraph_RootURL() {
	g, _ := pagegraph.Decode(strings.NewReader(exampleDoc), pagegraph.Options{})

	url, _ := g.RootURL()
	fmt.Println("Page:", url)
	// Output:
	// Page: https://example.com/
}
