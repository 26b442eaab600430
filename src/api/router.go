package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"coin-arena/config"
	"coin-arena/instance"
	"coin-arena/logging"
	"coin-arena/results"
	game "coin-arena/src"
)

// Engine is the part of the game server the API reads and operates.
type Engine interface {
	Stats() game.Stats
	Snapshot() instance.Snapshot
	ResetMatch() (instance.Snapshot, error)
}

// Deps wires the API to the running server. Metrics and Results are optional.
type Deps struct {
	Config  config.Config
	Engine  Engine
	Results results.Lister
	Metrics *MetricsHandler
	Log     *logrus.Entry
}

// NewAPIRouter builds the /api router with middlewares and routes.
func NewAPIRouter(d Deps) chi.Router {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	if d.Metrics == nil {
		d.Metrics = NewMetricsHandler(d.Engine)
	}
	origins := d.Config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: d.Log, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	mh := NewMatchHandler(d.Config, d.Engine, d.Results, d.Log)
	ah := NewAuthHandler(d.Config, d.Log)
	r.Route("/v1", func(sub chi.Router) {
		sub.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		d.Metrics.Routes(sub)
		mh.Routes(sub)
		ah.Routes(sub)
	})

	return r
}
