// Package server is the out-of-band login channel: a small HTTP
// surface where a human pastes the credential artifact captured in
// their own browser. It can deliver credentials into the session store
// but has no way to read them back out.
package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fantasytools/fpl-agent/auth"
	"github.com/fantasytools/fpl-agent/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const contentTypeHTML = "text/html; charset=utf-8"

// ParseTemplate loads one HTML template from the embedded set.
func ParseTemplate(name string) (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("[ParseTemplate] %s: %w", name, err)
	}
	return tmpl, nil
}

// Server hosts the login pages and the metrics endpoint.
type Server struct {
	mux      *http.ServeMux
	config   *config.Config
	sessions *auth.Store
}

// New wires the login channel against a session store.
func New(cfg *config.Config, sessions *auth.Store) (*Server, error) {
	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		sessions: sessions,
	}
	if err := s.initRoutes(); err != nil {
		return nil, fmt.Errorf("[Server New] failed to initialise routes: %w", err)
	}
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) initRoutes() error {
	loginHandler, err := s.LoginPageHandler()
	if err != nil {
		return err
	}
	submitHandler, err := s.SubmitHandler()
	if err != nil {
		return err
	}
	s.mux.Handle("GET /login/{requestID}", loginHandler)
	s.mux.Handle("POST /auth/submit/{requestID}", submitHandler)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return nil
}
