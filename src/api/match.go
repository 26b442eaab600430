package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"coin-arena/config"
	"coin-arena/instance"
	"coin-arena/results"
)

const (
	defaultResultsLimit = 20
	maxResultsLimit     = 100
)

// MatchHandler exposes the match snapshot, finished results and the operator reset.
type MatchHandler struct {
	cfg     config.Config
	engine  Engine
	results results.Lister
	log     *logrus.Entry
}

func NewMatchHandler(cfg config.Config, engine Engine, lister results.Lister, log *logrus.Entry) *MatchHandler {
	return &MatchHandler{cfg: cfg, engine: engine, results: lister, log: log}
}

// Routes registers match routes. The reset requires an admin token.
func (h *MatchHandler) Routes(r chi.Router) {
	r.Get("/match", h.Get)
	r.Get("/results", h.ListResults)
	r.With(AuthMiddleware(h.cfg.JWTSecret, h.cfg.JWTIssuer), RequireRole(RoleAdmin)).
		Post("/admin/match/reset", h.Reset)
}

// Get GET /match
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

// ListResults GET /results?limit=20
func (h *MatchHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	limit := clamp(parseInt(r.URL.Query().Get("limit"), defaultResultsLimit), 1, maxResultsLimit)
	items := []results.MatchResult{}
	if h.results != nil {
		items = append(items, h.results.Recent(limit)...)
	}
	writeJSON(w, http.StatusOK, apiListResponse[results.MatchResult]{
		Items: items,
		Limit: limit,
		Count: len(items),
	})
}

// Reset POST /admin/match/reset
func (h *MatchHandler) Reset(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.ResetMatch()
	if errors.Is(err, instance.ErrNoPair) {
		errorJSON(w, http.StatusConflict, "no player pair to reset")
		return
	}
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "reset failed")
		return
	}
	if claims, err := getClaims(r); err == nil {
		h.log.WithField("operator", claims.Sub).Info("match reset via api")
	}
	writeJSON(w, http.StatusOK, snap)
}
