// Package server exposes the decoder and graph archive over HTTP.
//
// The API is JSON throughout. Recordings are uploaded as raw GraphML
// request bodies; decoded graphs are returned in the canonical export
// form and can be archived for later retrieval.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pagegraph-tools/pagegraph/pkg/archive"
	"github.com/pagegraph-tools/pagegraph/pkg/cache"
	pgerrors "github.com/pagegraph-tools/pagegraph/pkg/errors"
	"github.com/pagegraph-tools/pagegraph/pkg/export"
	"github.com/pagegraph-tools/pagegraph/pkg/observability"
	"github.com/pagegraph-tools/pagegraph/pkg/pagegraph"
)

// maxBodyBytes bounds uploaded recordings. Large crawls produce
// multi-megabyte GraphML files, so the limit is generous.
const maxBodyBytes = 256 << 20

// decodeCacheTTL bounds how long decoded uploads stay cached.
const decodeCacheTTL = 24 * time.Hour

// Config configures a Server.
type Config struct {
	Store  archive.Store
	Cache  cache.Cache // nil disables caching
	Logger *log.Logger
}

// Server serves the decode and archive API.
type Server struct {
	store  archive.Store
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
}

// New creates a Server from cfg. Store must be set.
func New(cfg Config) *Server {
	c := cfg.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		store:  cfg.Store,
		cache:  c,
		keyer:  cache.NewDefaultKeyer(),
		logger: logger,
	}
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/decode", s.handleDecode)
		r.Post("/query/root-url", s.handleRootURL)
		r.Post("/query/downstream/{node}", s.handleDownstream)
		r.Post("/query/resources/{node}", s.handleResources)
		r.Post("/query/modifications/{node}", s.handleModifications)

		r.Post("/graphs", s.handleArchive)
		r.Get("/graphs", s.handleList)
		r.Get("/graphs/{id}", s.handleGet)
		r.Delete("/graphs/{id}", s.handleDelete)
	})

	return r
}

// logRequests logs method, path, status and duration per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDecode decodes an uploaded recording and returns the
// serialized graph. Results are cached by source hash.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	source, ok := s.readBody(w, r)
	if !ok {
		return
	}
	lenient := r.URL.Query().Get("lenient") == "true"

	key := s.keyer.GraphKey(cache.Hash(source), cache.GraphKeyOpts{Lenient: lenient})
	if data, hit, err := s.cache.Get(r.Context(), key); err == nil && hit {
		observability.Cache().OnCacheHit(r.Context(), "graph")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}
	observability.Cache().OnCacheMiss(r.Context(), "graph")

	g, ok := s.decodeSource(w, r, source, lenient)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteJSON(g, &buf); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.cache.Set(r.Context(), key, buf.Bytes(), decodeCacheTTL); err != nil {
		s.logger.Debug("cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(r.Context(), "graph", buf.Len())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleRootURL returns the page URL of an uploaded recording.
func (s *Server) handleRootURL(w http.ResponseWriter, r *http.Request) {
	g, ok := s.decodeUpload(w, r)
	if !ok {
		return
	}
	url, err := g.RootURL()
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// handleDownstream returns the downstream effects of a node in an
// uploaded recording. With ?direct=true only immediate effects are
// reported.
func (s *Server) handleDownstream(w http.ResponseWriter, r *http.Request) {
	g, ok := s.decodeUpload(w, r)
	if !ok {
		return
	}

	id := pagegraph.NodeID(chi.URLParam(r, "node"))
	var (
		effects []*pagegraph.Node
		err     error
	)
	if r.URL.Query().Get("direct") == "true" {
		effects, err = g.DirectDownstreamEffects(id)
	} else {
		effects, err = g.DownstreamEffects(id)
	}
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nodeRefs(effects))
}

// handleResources returns the resources fetched by a script node.
func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	g, ok := s.decodeUpload(w, r)
	if !ok {
		return
	}
	resources, err := g.ResourcesFromScript(pagegraph.NodeID(chi.URLParam(r, "node")))
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nodeRefs(resources))
}

// handleModifications returns the modification history of an HTML
// element node.
func (s *Server) handleModifications(w http.ResponseWriter, r *http.Request) {
	g, ok := s.decodeUpload(w, r)
	if !ok {
		return
	}
	mods, err := g.HTMLElementModifications(pagegraph.NodeID(chi.URLParam(r, "node")))
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, edgeRefs(mods))
}

// handleArchive decodes an uploaded recording and stores it in the
// archive. The new entry's summary is returned.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	g, ok := s.decodeUpload(w, r)
	if !ok {
		return
	}

	entry := archive.NewEntry(g)
	if err := s.store.Put(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	observability.Archive().OnArchivePut(r.Context(), entry.ID, entry.NodeCount, entry.EdgeCount)
	s.logger.Info("archived graph", "id", entry.ID, "url", entry.URL, "nodes", entry.NodeCount)
	writeJSON(w, http.StatusCreated, entry.Summarize())
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, archive.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no such graph")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := s.store.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, archive.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no such graph")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	observability.Archive().OnArchiveDelete(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// readBody reads the request body with the size limit applied.
// On failure it writes the error response and returns ok=false.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	source, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}
	if len(source) == 0 {
		writeError(w, http.StatusBadRequest, "empty request body")
		return nil, false
	}
	return source, true
}

// decodeUpload reads and decodes the GraphML request body.
// On failure it writes the error response and returns ok=false.
func (s *Server) decodeUpload(w http.ResponseWriter, r *http.Request) (*pagegraph.Graph, bool) {
	source, ok := s.readBody(w, r)
	if !ok {
		return nil, false
	}
	lenient := r.URL.Query().Get("lenient") == "true"
	return s.decodeSource(w, r, source, lenient)
}

// decodeSource decodes recording bytes, emitting decode hook events.
// On failure it writes the error response and returns ok=false.
func (s *Server) decodeSource(w http.ResponseWriter, r *http.Request, source []byte, lenient bool) (*pagegraph.Graph, bool) {
	observability.Decoder().OnDecodeStart(r.Context(), len(source))
	start := time.Now()

	g, err := pagegraph.Decode(bytes.NewReader(source), pagegraph.Options{Lenient: lenient})
	if err != nil {
		observability.Decoder().OnDecodeComplete(r.Context(), 0, 0, time.Since(start), err)
		s.writeDecodeError(w, err)
		return nil, false
	}

	observability.Decoder().OnDecodeComplete(r.Context(), g.NodeCount(), g.EdgeCount(), time.Since(start), nil)
	return g, true
}

// writeDecodeError maps decode failures to HTTP status codes.
// Everything a decoder reports is the client's document's fault.
func (s *Server) writeDecodeError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusUnprocessableEntity, err.Error())
}

// writeQueryError maps structural query failures to HTTP status codes.
func (s *Server) writeQueryError(w http.ResponseWriter, err error) {
	switch pgerrors.GetCode(err) {
	case pgerrors.ErrCodeNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case pgerrors.ErrCodeInvalidInput, pgerrors.ErrCodeUnsupported:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// nodeRef is the wire form of a node in query responses.
type nodeRef struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

func nodeRefs(nodes []*pagegraph.Node) []nodeRef {
	out := make([]nodeRef, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeRef{ID: string(n.ID), Kind: pagegraph.NodeKind(n.Type)})
	}
	return out
}

// edgeRef is the wire form of an edge in query responses.
type edgeRef struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

func edgeRefs(edges []*pagegraph.Edge) []edgeRef {
	out := make([]edgeRef, 0, len(edges))
	for _, e := range edges {
		out = append(out, edgeRef{ID: string(e.ID), Kind: pagegraph.EdgeKind(e.Type), Timestamp: e.Timestamp})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(w, `{"error":%q}`, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
