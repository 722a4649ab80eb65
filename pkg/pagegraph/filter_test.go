package pagegraph

import (
	"testing"

	"github.com/pagegraph-tools/pagegraph/pkg/errors"
)

// trackedPage models a page that loads a first-party stylesheet and
// script plus a third-party tracking pixel.
const trackedPage = `
    <node id="p"><data key="d0">parser</data></node>
    <node id="root">
      <data key="d0">DOM root</data>
      <data key="d5">https://news.example.com/front</data>
    </node>
    <node id="sel">
      <data key="d0">html element</data>
      <data key="d2">script</data>
    </node>
    <node id="link">
      <data key="d0">html element</data>
      <data key="d2">link</data>
    </node>
    <node id="img">
      <data key="d0">html element</data>
      <data key="d2">img</data>
    </node>
    <node id="app">
      <data key="d0">resource</data>
      <data key="d5">https://cdn.news.example.com/app.js</data>
    </node>
    <node id="css">
      <data key="d0">resource</data>
      <data key="d5">https://news.example.com/site.css</data>
    </node>
    <node id="pixel">
      <data key="d0">resource</data>
      <data key="d5">https://tracker.adnet.com/pixel.png?id=7</data>
    </node>
    <edge id="e1" source="p" target="sel"><data key="d1">create node</data></edge>
    <edge id="e2" source="root" target="sel"><data key="d1">structure</data></edge>
    <edge id="e3" source="root" target="link"><data key="d1">structure</data></edge>
    <edge id="e4" source="root" target="img"><data key="d1">structure</data></edge>
    <edge id="e5" source="sel" target="app">
      <data key="d1">request start</data>
      <data key="d8">1</data>
      <data key="d9">script</data>
    </edge>
    <edge id="e6" source="link" target="css">
      <data key="d1">request start</data>
      <data key="d8">2</data>
      <data key="d9">stylesheet</data>
    </edge>
    <edge id="e7" source="img" target="pixel">
      <data key="d1">request start</data>
      <data key="d8">3</data>
      <data key="d9">image</data>
    </edge>`

func filterIDs(t *testing.T, g *Graph, pattern string) []NodeID {
	t.Helper()
	nodes, err := g.ResourcesMatchingFilter(pattern)
	if err != nil {
		t.Fatalf("ResourcesMatchingFilter(%q): %v", pattern, err)
	}
	ids := make([]NodeID, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func TestResourcesMatchingFilter(t *testing.T) {
	g := decodeString(t, trackedPage, Options{})

	tests := []struct {
		pattern string
		want    []NodeID
	}{
		{"pixel", []NodeID{"pixel"}},
		{"news.example.com", []NodeID{"app", "css"}},
		{"||adnet.com^", []NodeID{"pixel"}},
		{"||news.example.com^", []NodeID{"app", "css"}},
		{"||cdn.news.example.com^", []NodeID{"app"}},
		{"$image", []NodeID{"pixel"}},
		{"$script,stylesheet", []NodeID{"app", "css"}},
		{"$third-party", []NodeID{"pixel"}},
		{"$first-party", []NodeID{"app", "css"}},
		{"||example.com^$script", []NodeID{"app"}},
		{"||adnet.com^$first-party", nil},
		{"nomatch", nil},
	}

	for _, tt := range tests {
		got := filterIDs(t, g, tt.pattern)
		if len(got) != len(tt.want) {
			t.Errorf("filter %q matched %v, want %v", tt.pattern, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("filter %q matched %v, want %v", tt.pattern, got, tt.want)
				break
			}
		}
	}
}

func TestResourcesMatchingFilterEmptyPattern(t *testing.T) {
	g := decodeString(t, trackedPage, Options{})

	for _, pattern := range []string{"", "$", "||^"} {
		if _, err := g.ResourcesMatchingFilter(pattern); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("filter %q: err = %v, want INVALID_INPUT", pattern, err)
		}
	}
}

func TestResourcesMatchingFilterConflictingTypes(t *testing.T) {
	// The same resource requested once as a script and once as an image.
	g := decodeString(t, `
    <node id="el">
      <data key="d0">html element</data>
      <data key="d2">img</data>
    </node>
    <node id="r">
      <data key="d0">resource</data>
      <data key="d5">https://example.com/a.js</data>
    </node>
    <edge id="e1" source="el" target="r">
      <data key="d1">request start</data>
      <data key="d8">1</data>
      <data key="d9">script</data>
    </edge>
    <edge id="e2" source="el" target="r">
      <data key="d1">request start</data>
      <data key="d8">2</data>
      <data key="d9">image</data>
    </edge>`, Options{})

	if _, err := g.ResourcesMatchingFilter("$script"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}

	// Without a type constraint the request types are never consulted.
	if got := filterIDs(t, g, "a.js"); len(got) != 1 || got[0] != "r" {
		t.Errorf("filter a.js matched %v, want r", got)
	}
}

func TestResourcesMatchingFilterUnrequestedResource(t *testing.T) {
	g := decodeString(t, `
    <node id="r">
      <data key="d0">resource</data>
      <data key="d5">https://example.com/a.js</data>
    </node>`, Options{})

	// A resource with no request start edge cannot satisfy a type
	// constraint but still matches by URL.
	if got := filterIDs(t, g, "$script"); len(got) != 0 {
		t.Errorf("filter $script matched %v, want none", got)
	}
	if got := filterIDs(t, g, "a.js"); len(got) != 1 || got[0] != "r" {
		t.Errorf("filter a.js matched %v, want r", got)
	}
}

func TestResourcesMatchingFilterSkipsBadURLs(t *testing.T) {
	g := decodeString(t, `
    <node id="root">
      <data key="d0">DOM root</data>
      <data key="d5">https://example.com/</data>
    </node>
    <node id="good">
      <data key="d0">resource</data>
      <data key="d5">https://example.com/a.js</data>
    </node>
    <node id="bad">
      <data key="d0">resource</data>
      <data key="d5">about:blank</data>
    </node>`, Options{})

	if got := filterIDs(t, g, "$first-party"); len(got) != 1 || got[0] != "good" {
		t.Errorf("filter $first-party matched %v, want good", got)
	}
}

func TestResourcesMatchingFilterNeedsRootForParty(t *testing.T) {
	// No DOM root: party constraints cannot be judged.
	g := decodeString(t, `
    <node id="r">
      <data key="d0">resource</data>
      <data key="d5">https://example.com/a.js</data>
    </node>`, Options{})

	if _, err := g.ResourcesMatchingFilter("$third-party"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}

	// Host and substring filters still work without one.
	if got := filterIDs(t, g, "||example.com^"); len(got) != 1 || got[0] != "r" {
		t.Errorf("filter matched %v, want r", got)
	}
}

func TestParseResourceFilter(t *testing.T) {
	f, err := ParseResourceFilter("||example.com^$script,third-party")
	if err != nil {
		t.Fatalf("ParseResourceFilter: %v", err)
	}
	if !f.hostAnchor || f.pattern != "example.com" {
		t.Errorf("pattern = %q (anchor=%v), want example.com anchored", f.pattern, f.hostAnchor)
	}
	if !f.types["script"] || len(f.types) != 1 {
		t.Errorf("types = %v, want {script}", f.types)
	}
	if f.party != thirdParty {
		t.Errorf("party = %v, want thirdParty", f.party)
	}
}
