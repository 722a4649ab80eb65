package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pagegraph-tools/pagegraph/pkg/archive"
)

const testDoc = `<graphml xmlns="http://graphml.graphdrawing.org/xmlns">
  <key id="d0" for="node" attr.name="node type" attr.type="string"/>
  <key id="d1" for="edge" attr.name="edge type" attr.type="string"/>
  <key id="d5" for="node" attr.name="url" attr.type="string"/>
  <key id="d6" for="node" attr.name="tag name" attr.type="string"/>
  <graph edgedefault="directed">
    <node id="n1">
      <data key="d0">DOM root</data>
      <data key="d5">https://example.com/</data>
    </node>
    <node id="n2"><data key="d0">parser</data></node>
    <node id="n3">
      <data key="d0">html element</data>
      <data key="d6">div</data>
    </node>
    <edge id="e1" source="n2" target="n3"><data key="d1">create node</data></edge>
    <edge id="e2" source="n1" target="n3"><data key="d1">structure</data></edge>
  </graph>
</graphml>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := New(Config{Store: archive.NewMemoryStore()})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/xml", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestDecodeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/decode", testDoc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	body := decodeBody[struct {
		URL   string            `json:"url"`
		Nodes []json.RawMessage `json:"nodes"`
		Edges []json.RawMessage `json:"edges"`
	}](t, resp)

	if body.URL != "https://example.com/" {
		t.Errorf("url = %q", body.URL)
	}
	if len(body.Nodes) != 3 || len(body.Edges) != 2 {
		t.Errorf("payload = %d nodes / %d edges, want 3/2", len(body.Nodes), len(body.Edges))
	}
}

func TestDecodeEndpointMalformed(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/decode", "not graphml")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestDecodeEndpointEmptyBody(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/decode", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRootURLEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/query/root-url", testDoc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["url"] != "https://example.com/" {
		t.Errorf("url = %q", body["url"])
	}
}

func TestDownstreamEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/query/downstream/n2", testDoc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	effects := decodeBody[[]map[string]any](t, resp)
	if len(effects) != 0 {
		t.Errorf("effects = %d, want 0 (parsers terminate attribution)", len(effects))
	}

	// The direct variant reports the missing causal rule instead.
	direct := post(t, ts.URL+"/v1/query/downstream/n2?direct=true", testDoc)
	if direct.StatusCode != http.StatusBadRequest {
		t.Errorf("direct status = %d, want 400", direct.StatusCode)
	}
}

func TestDownstreamEndpointUnknownNode(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/query/downstream/nope", testDoc)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestModificationsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/query/modifications/n3", testDoc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	mods := decodeBody[[]map[string]any](t, resp)
	if len(mods) != 1 {
		t.Fatalf("modifications = %d, want 1 (the create edge; structure excluded)", len(mods))
	}
	if kind := mods[0]["kind"]; kind != "create node" {
		t.Errorf("modification kind = %v, want create node", kind)
	}
}

func TestModificationsEndpointWrongKind(t *testing.T) {
	ts := newTestServer(t)

	// n2 is a parser node, not an HTML element.
	resp := post(t, ts.URL+"/v1/query/modifications/n2", testDoc)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestArchiveLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// Upload
	resp := post(t, ts.URL+"/v1/graphs", testDoc)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d", resp.StatusCode)
	}
	created := decodeBody[archive.Summary](t, resp)
	if created.ID == "" {
		t.Fatal("expected a generated ID")
	}
	if created.NodeCount != 3 || created.EdgeCount != 2 {
		t.Errorf("counts = %d/%d, want 3/2", created.NodeCount, created.EdgeCount)
	}

	// List
	listResp, err := http.Get(ts.URL + "/v1/graphs")
	if err != nil {
		t.Fatal(err)
	}
	defer listResp.Body.Close()
	list := decodeBody[[]archive.Summary](t, listResp)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	// Get
	getResp, err := http.Get(ts.URL + "/v1/graphs/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer getResp.Body.Close()
	entry := decodeBody[archive.Entry](t, getResp)
	if entry.URL != "https://example.com/" {
		t.Errorf("url = %q", entry.URL)
	}
	if len(entry.Graph.Nodes) != 3 {
		t.Errorf("graph payload nodes = %d, want 3", len(entry.Graph.Nodes))
	}

	// Delete
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/v1/graphs/"+created.ID, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", delResp.StatusCode)
	}

	// Gone
	goneResp, err := http.Get(ts.URL + "/v1/graphs/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer goneResp.Body.Close()
	if goneResp.StatusCode != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", goneResp.StatusCode)
	}
}

func TestGetUnknownGraph(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/graphs/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestLenientUpload(t *testing.T) {
	ts := newTestServer(t)

	doc := strings.Replace(testDoc, "parser", "quantum entangler", 1)

	// Strict decode rejects the unknown kind.
	resp := post(t, ts.URL+"/v1/decode", doc)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("strict status = %d, want 422", resp.StatusCode)
	}

	// Lenient decode keeps it as an unknown node.
	lenResp := post(t, ts.URL+"/v1/decode?lenient=true", doc)
	if lenResp.StatusCode != http.StatusOK {
		t.Errorf("lenient status = %d, want 200", lenResp.StatusCode)
	}
}
