package pagegraph

import (
	"testing"

	"github.com/pagegraph-tools/pagegraph/pkg/errors"
)

// pageLoad models a small recorded page load: the parser builds a DOM
// root with a script element, the script element fetches a.js, the
// fetched body executes and fetches b.js, and a div is created and then
// modified twice.
const pageLoad = `
    <node id="p"><data key="d0">parser</data></node>
    <node id="root">
      <data key="d0">DOM root</data>
      <data key="d5">https://example.com/</data>
    </node>
    <node id="sel">
      <data key="d0">html element</data>
      <data key="d2">script</data>
    </node>
    <node id="r1">
      <data key="d0">resource</data>
      <data key="d5">https://example.com/a.js</data>
    </node>
    <node id="sb">
      <data key="d0">script</data>
      <data key="d6">classic</data>
    </node>
    <node id="r2">
      <data key="d0">resource</data>
      <data key="d5">https://example.com/b.js</data>
    </node>
    <node id="div">
      <data key="d0">html element</data>
      <data key="d2">div</data>
    </node>
    <edge id="e1" source="root" target="sel"><data key="d1">structure</data></edge>
    <edge id="e2" source="sel" target="r1">
      <data key="d1">request start</data>
      <data key="d8">1</data>
      <data key="d9">script</data>
    </edge>
    <edge id="e3" source="r1" target="sel">
      <data key="d1">request complete</data>
      <data key="d8">1</data>
    </edge>
    <edge id="e4" source="sel" target="sb"><data key="d1">execute</data></edge>
    <edge id="e5" source="sb" target="r2">
      <data key="d1">request start</data>
      <data key="d8">2</data>
      <data key="d9">script</data>
    </edge>
    <edge id="e6" source="r2" target="sb">
      <data key="d1">request complete</data>
      <data key="d8">2</data>
    </edge>
    <edge id="e7" source="p" target="div"><data key="d1">create node</data></edge>
    <edge id="e8" source="root" target="div"><data key="d1">structure</data></edge>
    <edge id="e9" source="p" target="div">
      <data key="d1">set attribute</data>
      <data key="d10">class</data>
      <data key="d11">late</data>
      <data key="d4">200</data>
    </edge>
    <edge id="e10" source="p" target="div">
      <data key="d1">remove node</data>
      <data key="d4">150</data>
    </edge>`

func TestNodesOfHTMLTagName(t *testing.T) {
	g := decodeString(t, pageLoad, Options{})

	divs := g.NodesOfHTMLTagName("DIV")
	if len(divs) != 1 || divs[0].ID != "div" {
		t.Errorf("DIV matched %v, want div", divs)
	}

	scripts := g.NodesOfHTMLTagName("script")
	if len(scripts) != 1 || scripts[0].ID != "sel" {
		t.Errorf("script matched %v, want sel", scripts)
	}

	if got := g.NodesOfHTMLTagName("iframe"); len(got) != 0 {
		t.Errorf("iframe matched %v, want none", got)
	}
}

func TestHTMLElementModifications(t *testing.T) {
	g := decodeString(t, pageLoad, Options{})

	mods, err := g.HTMLElementModifications("div")
	if err != nil {
		t.Fatalf("HTMLElementModifications: %v", err)
	}

	// Structure edge e8 is excluded. The untimestamped create edge sorts
	// first, then by timestamp.
	want := []EdgeID{"e7", "e10", "e9"}
	if len(mods) != len(want) {
		t.Fatalf("modifications = %d, want %d", len(mods), len(want))
	}
	for i, e := range mods {
		if e.ID != want[i] {
			t.Errorf("mods[%d] = %s, want %s", i, e.ID, want[i])
		}
	}
}

func TestHTMLElementModificationsErrors(t *testing.T) {
	g := decodeString(t, pageLoad, Options{})

	_, err := g.HTMLElementModifications("missing")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeNotFound)
	}

	_, err = g.HTMLElementModifications("r1")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}

func TestResourcesFromScript(t *testing.T) {
	g := decodeString(t, pageLoad, Options{})

	tests := []struct {
		name string
		id   NodeID
		want []NodeID
	}{
		// The script element pulls in its own resource plus those of the
		// script body it executes.
		{"ScriptElement", "sel", []NodeID{"r1", "r2"}},
		{"ScriptBody", "sb", []NodeID{"r2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.ResourcesFromScript(tt.id)
			if err != nil {
				t.Fatalf("ResourcesFromScript: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("resources = %d, want %d", len(got), len(tt.want))
			}
			for i, n := range got {
				if n.ID != tt.want[i] {
					t.Errorf("resources[%d] = %s, want %s", i, n.ID, tt.want[i])
				}
			}
		})
	}
}

func TestResourcesFromScriptErrors(t *testing.T) {
	g := decodeString(t, pageLoad, Options{})

	_, err := g.ResourcesFromScript("missing")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeNotFound)
	}

	// A non-script element is rejected.
	_, err = g.ResourcesFromScript("div")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}

func TestRootURL(t *testing.T) {
	g := decodeString(t, pageLoad, Options{})

	url, err := g.RootURL()
	if err != nil {
		t.Fatalf("RootURL: %v", err)
	}
	if url != "https://example.com/" {
		t.Errorf("url = %q", url)
	}
}

func TestRootURLNoRoot(t *testing.T) {
	g := decodeString(t, `<node id="n1"><data key="d0">parser</data></node>`, Options{})

	_, err := g.RootURL()
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeNotFound)
	}
}

func TestRootURLAmbiguous(t *testing.T) {
	g := decodeString(t, `
    <node id="n1">
      <data key="d0">DOM root</data>
      <data key="d5">https://a.example/</data>
    </node>
    <node id="n2">
      <data key="d0">DOM root</data>
      <data key="d5">https://b.example/</data>
    </node>`, Options{})

	_, err := g.RootURL()
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}

func TestDirectDownstreamEffects(t *testing.T) {
	g := decodeString(t, pageLoad, Options{})

	tests := []struct {
		name string
		id   NodeID
		want []NodeID
	}{
		// The script element has a fetched resource, so the resource is
		// its direct effect; the executed body is reached transitively.
		{"ScriptElement", "sel", []NodeID{"r1"}},
		// The resource's bytes became the script body, via the element.
		{"Resource", "r1", []NodeID{"sb"}},
		// The script body fetched b.js.
		{"ScriptBody", "sb", []NodeID{"r2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.DirectDownstreamEffects(tt.id)
			if err != nil {
				t.Fatalf("DirectDownstreamEffects: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("effects = %d, want %d", len(got), len(tt.want))
			}
			for i, n := range got {
				if n.ID != tt.want[i] {
					t.Errorf("effects[%d] = %s, want %s", i, n.ID, tt.want[i])
				}
			}
		})
	}
}

func TestDirectDownstreamEffectsUnsupported(t *testing.T) {
	g := decodeString(t, pageLoad, Options{})

	_, err := g.DirectDownstreamEffects("div")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeUnsupported)
	}

	_, err = g.DirectDownstreamEffects("p")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeUnsupported)
	}
}

func TestDownstreamEffects(t *testing.T) {
	g := decodeString(t, pageLoad, Options{})

	got, err := g.DownstreamEffects("sel")
	if err != nil {
		t.Fatalf("DownstreamEffects: %v", err)
	}

	// Breadth-first discovery: the fetched resource, then the body its
	// bytes became, then the resource that body fetched. The start node
	// is excluded, and r2 terminates the closure.
	want := []NodeID{"r1", "sb", "r2"}
	if len(got) != len(want) {
		t.Fatalf("effects = %d, want %d", len(got), len(want))
	}
	for i, n := range got {
		if n.ID != want[i] {
			t.Errorf("effects[%d] = %s, want %s", i, n.ID, want[i])
		}
	}
}

func TestDownstreamEffectsNotFound(t *testing.T) {
	g := decodeString(t, pageLoad, Options{})

	_, err := g.DownstreamEffects("missing")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeNotFound)
	}
}
