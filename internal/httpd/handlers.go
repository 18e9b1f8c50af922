package httpd

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lei/hookspool/internal/config"
	"github.com/lei/hookspool/internal/payload"
	"github.com/lei/hookspool/internal/pipeline"
	"github.com/lei/hookspool/internal/spool"
	"github.com/lei/hookspool/internal/version"
	"github.com/lei/hookspool/pkg/logger"
)

// Handlers contains HTTP handler functions for the standalone
// listener. They feed the same normalize/resolve/emit core as the
// single-connection pipeline.
type Handlers struct {
	cfg     *config.Config
	emitter *spool.Emitter
	logger  *logger.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(cfg *config.Config, log *logger.Logger) *Handlers {
	return &Handlers{
		cfg:     cfg,
		emitter: spool.NewEmitter(cfg.Settings.SpoolDir),
		logger:  log,
	}
}

// Ingest returns a handler running the given payload shape through
// the pipeline core.
func (h *Handlers) Ingest(normalize payload.Normalizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := h.logger.With(
			"request_id", middleware.GetReqID(r.Context()),
			"path", r.URL.Path,
		)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Warnw("read request body failed", "error", err)
			respond(w, http.StatusBadRequest, "")
			return
		}

		status, message := pipeline.Ingest(h.cfg, h.emitter, normalize, body, log)
		respond(w, status, message)
	}
}

// Version handles GET /version
func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, version.String()+"\n")
}

// Health handles health check requests
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// respond writes a plain-text response; an empty body sends the bare
// status only.
func respond(w http.ResponseWriter, status int, body string) {
	if body != "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(status)
	if body != "" {
		io.WriteString(w, body)
	}
}
