// Package server exposes the running puppet over HTTP: profile and
// environment APIs, an MJPEG preview and a websocket feed of draw commands.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/kathputli/internal/app"
	"github.com/ayusman/kathputli/internal/server/api"
	"github.com/ayusman/kathputli/internal/store"
)

// Puppet is what the server needs from the running app.
type Puppet interface {
	api.EnvironmentController
	LatestFrame() *app.Frame
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Puppet    Puppet
	// Commands, when set, is served at /api/commands.
	Commands *CommandsHub
}

// Server is the HTTP front end.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a Server and registers the routes its config supports.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		profiles := api.NewProfileHandler(s.config.Store)
		s.mux.Handle("/api/profiles", profiles)
		s.mux.Handle("/api/profiles/", profiles)
	}

	if s.config.Puppet != nil {
		s.mux.Handle("/api/environment", api.NewEnvironmentHandler(s.config.Puppet))
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Puppet))
	}

	if s.config.Commands != nil {
		s.mux.Handle("/api/commands", s.config.Commands)
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Puppet != nil {
		if f := s.config.Puppet.LatestFrame(); f != nil {
			response["frame"] = f.Seq
			response["mode"] = f.Mode
		}
	}
	if s.config.Commands != nil {
		response["clients"] = s.config.Commands.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// HTTPServer returns an http.Server for addr, for callers that need Shutdown.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
