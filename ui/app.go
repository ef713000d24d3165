package ui

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Readiness reports whether the base dataset is loaded
type Readiness interface {
	Ready() bool
	Source() string
}

// OpsConfig holds the operations listener configuration
type OpsConfig struct {
	Profiling bool
}

// OpsApp serves health, metrics and profiling endpoints on a separate port
type OpsApp struct {
	router  *chi.Mux
	ready   Readiness
	started time.Time
}

// NewOpsApp creates the operations router
func NewOpsApp(ready Readiness, config OpsConfig) *OpsApp {
	a := &OpsApp{
		router:  chi.NewRouter(),
		ready:   ready,
		started: time.Now(),
	}
	a.setupRoutes(config)
	return a
}

func (a *OpsApp) setupRoutes(config OpsConfig) {
	r := a.router
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/healthz", a.handleHealth)
		r.Get("/readyz", a.handleReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	if config.Profiling {
		r.Mount("/debug", middleware.Profiler())
	}
}

// Handler exposes the router for an http.Server
func (a *OpsApp) Handler() http.Handler {
	return a.router
}

func (a *OpsApp) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(a.started).Round(time.Second).String(),
	})
}

func (a *OpsApp) handleReady(w http.ResponseWriter, r *http.Request) {
	if a.ready == nil || !a.ready.Ready() {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]interface{}{"status": "loading"})
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "ready",
		"source": a.ready.Source(),
	})
}
