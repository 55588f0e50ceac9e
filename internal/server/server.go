// Package server exposes the edit and preview panels over HTTP, plus a JSON API
// and a websocket that pushes the re-rendered preview after every edit.
package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kapu/socialforge-go/internal/constants"
	"github.com/kapu/socialforge-go/internal/editor"
	"github.com/kapu/socialforge-go/internal/metrics"
	"github.com/kapu/socialforge-go/internal/preview"
	"github.com/kapu/socialforge-go/internal/profile"
	"github.com/kapu/socialforge-go/internal/service/blob"
	"github.com/kapu/socialforge-go/internal/util"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type Deps struct {
	Store          *profile.Store
	Editor         *editor.Editor
	Bios           editor.BioSource
	Blobs          *blob.Store
	Preview        *preview.Renderer
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	UploadMaxBytes int64
	LiveBio        bool
}

type Server struct {
	deps   Deps
	pages  *template.Template
	hub    *Hub
	now    func() time.Time
	logger *zap.Logger
}

func New(deps Deps, logger *zap.Logger) (*Server, error) {
	pages, err := template.New("pages").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	if deps.UploadMaxBytes <= 0 {
		deps.UploadMaxBytes = constants.UploadConfig.DefaultMaxBytes
	}
	if len(deps.AllowedOrigins) == 0 {
		deps.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		deps:   deps,
		pages:  pages,
		now:    time.Now,
		logger: logger,
	}
	s.hub = NewHub(deps.Store, deps.Editor, s.renderPreview, deps.Metrics, logger)
	return s, nil
}

// Hub returns the live preview hub; the caller starts it.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(util.RequestLogger(s.logger))

	r.Get("/", s.handleIndex)
	r.Get("/edit", s.handleEditFragment)
	r.Get("/preview", s.handlePreviewFragment)

	r.Post("/edit/field", s.handleEditField)
	r.Post("/edit/toggle/verified", s.handleToggleVerified)
	r.Post("/edit/toggle/language", s.handleToggleLanguage)
	r.Post("/edit/image/{field}", s.handleEditImage)
	r.Post("/edit/bio/generate", s.handleGenerateBio)
	r.Post("/edit/reset", s.handleReset)
	r.Post("/view/{view}", s.handleSetView)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.deps.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           constants.HTTPConfig.CORSMaxAge,
		}))

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)
		r.Post("/profile/edits", s.handlePostEdit)
		r.Post("/profile/bio", s.handleAPIGenerateBio)
		r.Post("/bio", s.handleBio)
		r.Post("/bio/suggestions", s.handleBioSuggestions)
		r.Get("/state", s.handleState)
	})

	r.Get("/blobs/{id}", s.handleBlob)
	r.Get("/ws", s.hub.ServeWS)
	r.Get("/healthz", s.handleHealth)
	if s.deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.deps.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	return r
}

// NewHTTPServer wraps handler with the configured timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: constants.HTTPConfig.ReadHeaderTimeout,
		ReadTimeout:       constants.HTTPConfig.ReadTimeout,
		WriteTimeout:      constants.HTTPConfig.WriteTimeout,
		IdleTimeout:       constants.HTTPConfig.IdleTimeout,
	}
}
