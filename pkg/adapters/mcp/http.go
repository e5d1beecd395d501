package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aretw0/colombia-mcp/pkg/domain"
)

const (
	// HeaderSessionID carries the session id of the streamable HTTP transport.
	HeaderSessionID = "Mcp-Session-Id"

	// EndpointPath is where JSON-RPC messages are posted.
	EndpointPath = "/mcp"

	// maxBodyBytes bounds a single JSON-RPC message.
	maxBodyBytes = 1 << 20

	// codeSessionError is the JSON-RPC server error used for session failures.
	codeSessionError = -32000

	defaultShutdownTimeout = 5 * time.Second
)

// HTTPHandler returns the streamable HTTP transport:
//
//	POST   /mcp      JSON-RPC message, answered as application/json
//	DELETE /mcp      end the session named by Mcp-Session-Id
//	GET    /mcp      405, the server never initiates streams
//	GET    /healthz  liveness
//	GET    /metrics  Prometheus metrics, when configured
//
// extra, if given, is mounted alongside, e.g. a REST view of the tools.
func (s *Server) HTTPHandler(extra ...func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Post(EndpointPath, s.handlePost)
	r.Delete(EndpointPath, s.handleDelete)
	r.Get(EndpointPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", "POST, DELETE")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	for _, mount := range extra {
		mount(r)
	}
	return r
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeRPC(w, http.StatusRequestEntityTooLarge, errorResponse(nil, mcp.INVALID_REQUEST, "Request too large"))
			return
		}
		s.logger.Warn("failed to read request body", "err", err)
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}

	var env rpcEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		writeRPC(w, http.StatusBadRequest, errorResponse(nil, mcp.PARSE_ERROR, "Parse error"))
		return
	}

	ctx := r.Context()
	if s.sessions != nil {
		id, status, msg := s.resolveSession(ctx, r, env)
		if msg != "" {
			writeRPC(w, status, errorResponse(env.ID, codeSessionError, msg))
			return
		}
		w.Header().Set(HeaderSessionID, id)
		ctx = WithSessionID(ctx, id)
	}

	rsp := s.HandleMessage(ctx, body)
	if rsp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeRPC(w, http.StatusOK, rsp)
}

// resolveSession returns the session id for the request, opening a new session
// on initialize when the client has none or an unknown one. A non-empty message
// reports a failure with its HTTP status.
func (s *Server) resolveSession(ctx context.Context, r *http.Request, env rpcEnvelope) (string, int, string) {
	id := strings.TrimSpace(r.Header.Get(HeaderSessionID))
	isInitialize := mcp.MCPMethod(env.Method) == mcp.MethodInitialize

	if id != "" {
		err := s.sessions.Resume(ctx, id)
		switch {
		case err == nil:
			return id, http.StatusOK, ""
		case errors.Is(err, domain.ErrSessionNotFound) && !isInitialize:
			return "", http.StatusNotFound, "Invalid session ID"
		case !errors.Is(err, domain.ErrSessionNotFound):
			s.logger.Error("failed to resume session", "session_id", id, "err", err)
			return "", http.StatusInternalServerError, "Session store unavailable"
		}
	}

	if !isInitialize {
		return "", http.StatusBadRequest, "Missing session ID"
	}

	id, err := s.sessions.Open(ctx, TransportHTTP)
	if err != nil {
		s.logger.Error("failed to open session", "err", err)
		return "", http.StatusInternalServerError, "Failed to create session"
	}
	s.logger.Info("session opened", "session_id", id, "remote", r.RemoteAddr)
	return id, http.StatusOK, ""
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		http.Error(w, "Sessions are not enabled", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSpace(r.Header.Get(HeaderSessionID))
	if id == "" {
		writeRPC(w, http.StatusBadRequest, errorResponse(nil, codeSessionError, "Missing session ID"))
		return
	}

	err := s.sessions.Close(r.Context(), id)
	switch {
	case err == nil:
		s.logger.Info("session closed", "session_id", id)
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domain.ErrSessionNotFound):
		writeRPC(w, http.StatusNotFound, errorResponse(nil, codeSessionError, "Invalid session ID"))
	default:
		s.logger.Error("failed to close session", "session_id", id, "err", err)
		writeRPC(w, http.StatusInternalServerError, errorResponse(nil, codeSessionError, "Session store unavailable"))
	}
}

func writeRPC(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+HeaderSessionID)
		w.Header().Set("Access-Control-Expose-Headers", HeaderSessionID)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe binds addr and serves the HTTP transport until ctx is cancelled.
// A bind failure is returned immediately.
func (s *Server) ListenAndServe(ctx context.Context, addr string, extra ...func(chi.Router)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, extra...)
}

// Serve serves the HTTP transport on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener, extra ...func(chi.Router)) error {
	httpServer := &http.Server{
		Handler:           s.HTTPHandler(extra...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (streamable HTTP)", "address", ln.Addr().String(), "endpoint", EndpointPath)
		serverErrors <- httpServer.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		s.logger.Info("shutdown signal received, shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}
