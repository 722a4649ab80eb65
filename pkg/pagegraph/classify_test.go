package pagegraph

import (
	"strings"
	"testing"

	"github.com/pagegraph-tools/pagegraph/pkg/errors"
)

func TestClassifyNodeVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want func(t *testing.T, n *Node)
	}{
		{
			name: "HTMLElementWithExtras",
			body: `<node id="n1">
              <data key="d0">html element</data>
              <data key="d2">a</data>
              <data key="d99">custom</data>
            </node>`,
			want: func(t *testing.T, n *Node) {
				el, ok := n.Type.(HTMLElement)
				if !ok {
					t.Fatalf("type = %T", n.Type)
				}
				if el.TagName != "a" || el.IsDeleted {
					t.Errorf("element = %+v", el)
				}
				// Attributes beyond the dedicated fields are kept verbatim.
				if el.Attributes["d99"] != "custom" {
					t.Errorf("extras = %v", el.Attributes)
				}
			},
		},
		{
			name: "IsDeletedDefaultsFalse",
			body: `<node id="n1">
              <data key="d0">html element</data>
              <data key="d2">div</data>
            </node>`,
			want: func(t *testing.T, n *Node) {
				if n.Type.(HTMLElement).IsDeleted {
					t.Error("is deleted should default to false when absent")
				}
			},
		},
		{
			name: "TextNode",
			body: `<node id="n1">
              <data key="d0">text node</data>
              <data key="d13">hi</data>
            </node>`,
			want: func(t *testing.T, n *Node) {
				tn := n.Type.(TextNode)
				if tn.Text != "hi" || tn.IsDeleted {
					t.Errorf("text node = %+v", tn)
				}
			},
		},
		{
			name: "DOMRoot",
			body: `<node id="n1">
              <data key="d0">DOM root</data>
              <data key="d5">https://example.com/</data>
              <data key="d15">F1</data>
            </node>`,
			want: func(t *testing.T, n *Node) {
				root := n.Type.(DOMRoot)
				if root.URL != "https://example.com/" || root.FrameID != "F1" {
					t.Errorf("DOM root = %+v", root)
				}
			},
		},
		{
			name: "Script",
			body: `<node id="n1">
              <data key="d0">script</data>
              <data key="d6">classic</data>
              <data key="d17">var x = 1;</data>
            </node>`,
			want: func(t *testing.T, n *Node) {
				s := n.Type.(Script)
				if s.ScriptType != "classic" || s.Source != "var x = 1;" {
					t.Errorf("script = %+v", s)
				}
			},
		},
		{
			name: "Resource",
			body: `<node id="n1">
              <data key="d0">resource</data>
              <data key="d5">https://cdn.example.com/a.js</data>
            </node>`,
			want: func(t *testing.T, n *Node) {
				if n.Type.(Resource).URL != "https://cdn.example.com/a.js" {
					t.Errorf("resource = %+v", n.Type)
				}
			},
		},
		{
			name: "WebAPI",
			body: `<node id="n1">
              <data key="d0">web API</data>
              <data key="d7">Navigator.userAgent</data>
            </node>`,
			want: func(t *testing.T, n *Node) {
				if n.Type.(WebAPI).Method != "Navigator.userAgent" {
					t.Errorf("web API = %+v", n.Type)
				}
			},
		},
		{
			name: "Storage",
			body: `<node id="n1">
              <data key="d0">storage</data>
              <data key="d16">localStorage</data>
            </node>`,
			want: func(t *testing.T, n *Node) {
				if n.Type.(Storage).StorageType != "localStorage" {
					t.Errorf("storage = %+v", n.Type)
				}
			},
		},
		{
			name: "FieldlessKinds",
			body: `<node id="n1"><data key="d0">parser</data></node>`,
			want: func(t *testing.T, n *Node) {
				if _, ok := n.Type.(Parser); !ok {
					t.Errorf("type = %T, want Parser", n.Type)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := decodeString(t, tt.body, Options{})
			n, ok := g.Node("n1")
			if !ok {
				t.Fatal("node n1 not found")
			}
			tt.want(t, n)
		})
	}
}

func TestClassifyEdgeVariants(t *testing.T) {
	// Two anchor nodes for the edges under test.
	const anchors = `
    <node id="n1"><data key="d0">parser</data></node>
    <node id="n2"><data key="d0">extensions</data></node>`

	tests := []struct {
		name string
		body string
		want func(t *testing.T, e *Edge)
	}{
		{
			name: "SetAttribute",
			body: `<edge id="e1" source="n1" target="n2">
              <data key="d1">set attribute</data>
              <data key="d10">class</data>
              <data key="d11">hidden</data>
            </edge>`,
			want: func(t *testing.T, e *Edge) {
				sa := e.Type.(SetAttribute)
				if sa.Key != "class" || sa.Value != "hidden" {
					t.Errorf("set attribute = %+v", sa)
				}
			},
		},
		{
			name: "RequestStart",
			body: `<edge id="e1" source="n1" target="n2">
              <data key="d1">request start</data>
              <data key="d8">17</data>
              <data key="d9">script</data>
            </edge>`,
			want: func(t *testing.T, e *Edge) {
				rs := e.Type.(RequestStart)
				if rs.RequestID != 17 || rs.RequestType != "script" {
					t.Errorf("request start = %+v", rs)
				}
			},
		},
		{
			name: "RequestCompleteOptionalStatus",
			body: `<edge id="e1" source="n1" target="n2">
              <data key="d1">request complete</data>
              <data key="d8">17</data>
            </edge>`,
			want: func(t *testing.T, e *Edge) {
				rc := e.Type.(RequestComplete)
				if rc.RequestID != 17 || rc.Status != "" || rc.Size != 0 {
					t.Errorf("request complete = %+v", rc)
				}
			},
		},
		{
			name: "ExecuteFromAttribute",
			body: `<edge id="e1" source="n1" target="n2">
              <data key="d1">execute from attribute</data>
              <data key="d14">onclick</data>
            </edge>`,
			want: func(t *testing.T, e *Edge) {
				if e.Type.(ExecuteFromAttribute).AttrName != "onclick" {
					t.Errorf("edge = %+v", e.Type)
				}
			},
		},
		{
			name: "JSCall",
			body: `<edge id="e1" source="n1" target="n2">
              <data key="d1">js call</data>
              <data key="d7">Date.now</data>
            </edge>`,
			want: func(t *testing.T, e *Edge) {
				if e.Type.(JSCall).Method != "Date.now" {
					t.Errorf("edge = %+v", e.Type)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := decodeString(t, anchors+tt.body, Options{})
			e, ok := g.Edge("e1")
			if !ok {
				t.Fatal("edge e1 not found")
			}
			tt.want(t, e)
		})
	}
}

func TestClassifyUndecodableRequiredInt(t *testing.T) {
	// "request id" declared long but not parseable: required, so the
	// decode fails even though the attribute is present.
	body := `
    <node id="n1"><data key="d0">parser</data></node>
    <node id="n2"><data key="d0">extensions</data></node>
    <edge id="e1" source="n1" target="n2">
      <data key="d1">request start</data>
      <data key="d8">not-a-number</data>
    </edge>`

	_, err := Decode(strings.NewReader(doc(body)), Options{})
	if !errors.Is(err, errors.ErrCodeMissingRequiredField) {
		t.Fatalf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeMissingRequiredField)
	}
	if !strings.Contains(err.Error(), "request id") {
		t.Errorf("error should name the field, got %q", err.Error())
	}
}

func TestNodeKindRoundTrip(t *testing.T) {
	tests := []struct {
		t    NodeType
		want string
	}{
		{HTMLElement{TagName: "div"}, KindHTMLElement},
		{TextNode{}, KindTextNode},
		{DOMRoot{}, KindDOMRoot},
		{Script{}, KindScript},
		{Resource{}, KindResource},
		{UnknownNode{Kind: "future kind"}, "future kind"},
	}
	for _, tt := range tests {
		if got := NodeKind(tt.t); got != tt.want {
			t.Errorf("NodeKind(%T) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestEdgeKindRoundTrip(t *testing.T) {
	tests := []struct {
		t    EdgeType
		want string
	}{
		{Structure{}, KindStructure},
		{SetAttribute{Key: "id"}, KindSetAttribute},
		{RequestStart{RequestID: 1}, KindRequestStart},
		{UnknownEdge{Kind: "future edge"}, "future edge"},
	}
	for _, tt := range tests {
		if got := EdgeKind(tt.t); got != tt.want {
			t.Errorf("EdgeKind(%T) = %q, want %q", tt.t, got, tt.want)
		}
	}
}
