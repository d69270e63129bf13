package wire

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gogpu/easel"
)

// FilterFunc executes one filter over a decoded request and returns the
// resulting pixel bytes, which must be exactly Width*Height*4 long. A
// FilterFunc must be a pure function of its input: identical requests
// yield identical bytes.
type FilterFunc func(req Request) ([]uint8, error)

// Server is a filter-execution service instance: the development and
// test stand-in for the production service the editor talks to. It
// serves POST /v1/filters/{name} with the wire codec.
type Server struct {
	addr string

	mu      sync.RWMutex
	filters map[string]FilterFunc

	router *chi.Mux
	srv    *http.Server
}

// NewServer creates a server that will listen on addr. Filters are
// registered separately; an unregistered name answers 404.
func NewServer(addr string) *Server {
	s := &Server{
		addr:    addr,
		filters: make(map[string]FilterFunc),
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/v1/filters/{name}", s.handleExecute)
	r.Get("/v1/filters", s.handleList)
	s.router = r
	return s
}

// Register adds a filter under the given name, replacing any previous
// registration.
func (s *Server) Register(name string, fn FilterFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters[name] = fn
}

// Handler returns the HTTP handler, for mounting or for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until ctx is canceled, then shuts it down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		easel.Logger().Info("wire: filter service listening", "addr", s.addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutCtx); err != nil {
			return fmt.Errorf("wire: shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("wire: serve: %w", err)
		}
		return nil
	}
}

// lookup returns the registered filter for name.
func (s *Server) lookup(name string) (FilterFunc, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn, ok := s.filters[name]
	return fn, ok
}

// handleExecute decodes a framed request, runs the named filter, and
// answers with raw pixels or the protocol's failure JSON.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	fn, ok := s.lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown filter: %s", name))
		return
	}

	req, err := DecodeRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := fn(req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := ValidateResponse(req, out); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// handleList answers the registered filter names, sorted, one per line.
// Debug aid only; the editor learns filters from its registry, not from
// the service.
func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	names := make([]string, 0, len(s.filters))
	for name := range s.filters {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
}

// writeError answers a failure with the protocol's JSON shape.
func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(EncodeError(detail))
}
