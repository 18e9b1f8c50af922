// Package pipeline runs the request-to-job translation for one
// inbound connection: read, normalize, resolve, emit, respond. Any
// stage short-circuits straight to the response; the connection
// always receives exactly one response.
package pipeline

import (
	"bufio"
	"errors"
	"io"
	"net/http"

	"github.com/lei/hookspool/internal/config"
	"github.com/lei/hookspool/internal/payload"
	"github.com/lei/hookspool/internal/request"
	"github.com/lei/hookspool/internal/resolve"
	"github.com/lei/hookspool/internal/response"
	"github.com/lei/hookspool/internal/spool"
	"github.com/lei/hookspool/internal/version"
	"github.com/lei/hookspool/pkg/logger"
)

// Pipeline handles one connection at a time; the hosting environment
// spawns one invocation per accepted connection.
type Pipeline struct {
	cfg     *config.Config
	emitter *spool.Emitter
	logger  *logger.Logger
}

// New creates a pipeline bound to a loaded configuration
func New(cfg *config.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		emitter: spool.NewEmitter(cfg.Settings.SpoolDir),
		logger:  log,
	}
}

// Handle reads one request from rw, runs it through the pipeline and
// writes exactly one response back.
func (p *Pipeline) Handle(rw io.ReadWriter) {
	status, body := p.run(bufio.NewReader(rw))
	if err := response.Write(rw, status, body); err != nil {
		p.logger.Errorw("write response failed", "error", err)
	}
}

func (p *Pipeline) run(r *bufio.Reader) (int, string) {
	req, err := request.Read(r)
	if err != nil {
		p.logger.Warnw("read request failed", "error", err)
		return http.StatusBadRequest, ""
	}

	log := p.logger.With("method", req.Method, "path", req.Path)

	if req.Path == "/version" {
		if req.Method != http.MethodGet {
			return http.StatusMethodNotAllowed, ""
		}
		return http.StatusOK, version.String() + "\n"
	}

	normalize, ok := payload.ByPath[req.Path]
	if !ok {
		log.Warnw("unrecognized path")
		return http.StatusNotFound, ""
	}
	if req.Method != http.MethodPost && req.Method != http.MethodPut {
		log.Warnw("method not allowed")
		return http.StatusMethodNotAllowed, ""
	}

	return Ingest(p.cfg, p.emitter, normalize, req.Body, log)
}

// Ingest normalizes a request body, resolves it against the
// configuration and emits a job file. It is the single terminal step
// mapping every pipeline outcome to a status and human-readable
// message; the stdio pipeline and the HTTP adapter both end here.
func Ingest(cfg *config.Config, emitter *spool.Emitter, normalize payload.Normalizer, body []byte, log *logger.Logger) (int, string) {
	rec, err := normalize(body)
	if err != nil {
		var fieldErr *payload.FieldError
		if errors.As(err, &fieldErr) {
			log.Warnw("payload validation failed", "field", fieldErr.Field)
			return http.StatusUnprocessableEntity, err.Error() + "\n"
		}
		log.Warnw("payload decode failed", "error", err)
		return http.StatusBadRequest, ""
	}

	job, err := resolve.Resolve(cfg, rec)
	if err != nil {
		log.Warnw("target resolution failed",
			"project", rec.Project,
			"target", rec.Target,
			"task", rec.Task,
			"error", err)
		switch {
		case errors.Is(err, resolve.ErrUnknownProject),
			errors.Is(err, resolve.ErrUnknownTarget),
			errors.Is(err, resolve.ErrUnknownTask):
			return http.StatusUnprocessableEntity, err.Error() + "\n"
		}
		var ambiguous *resolve.AmbiguityError
		if errors.As(err, &ambiguous) {
			return http.StatusUnprocessableEntity, err.Error() + "\n"
		}
		return http.StatusBadRequest, ""
	}

	path, err := emitter.Emit(job, cfg.Settings)
	if err != nil {
		// Infrastructural failure: bare status, no internal
		// paths leak to the caller.
		log.Errorw("emit job file failed", "error", err)
		return http.StatusInternalServerError, ""
	}

	log.Infow("job accepted",
		"project", job.Project,
		"target", job.MatchedTarget,
		"command", job.BuildCommand,
		"file", path)
	return http.StatusOK, "job accepted\n"
}
