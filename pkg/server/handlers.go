package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/matzehuels/forcegraph/pkg/buildinfo"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/palette"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type paletteBody struct {
	Strategy    string               `json:"strategy"`
	Colors      []string             `json:"colors"`
	Assignments []palette.Assignment `json:"assignments"`
}

// render handles POST /api/v1/render.
func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.run(w, r, format)
}

// layout handles POST /api/v1/layout.
func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, pipeline.FormatJSON)
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, format string) {
	opts, err := s.options(r, format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	g, err := graph.ReadGraph(r.Body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.renderTimeout)
	defer cancel()

	renderID := uuid.NewString()
	opts.Logger = s.logger.With("render_id", renderID)
	result, err := s.runner.Execute(ctx, g, opts)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			err = errors.Wrap(errors.ErrCodeTimeout, err, "render exceeded %s", s.renderTimeout)
		}
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set(HeaderRenderID, renderID)
	if result.Cached {
		w.Header().Set(HeaderCache, "hit")
	} else {
		w.Header().Set(HeaderCache, "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// options merges query parameters over the server defaults.
func (s *Server) options(r *http.Request, format string) (pipeline.Options, error) {
	s.defaultsMu.RLock()
	opts := s.defaults
	s.defaultsMu.RUnlock()
	opts.Formats = []string{format}
	q := r.URL.Query()

	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"scale", &opts.Scale},
	} {
		if v := q.Get(p.name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s", p.name)
			}
			*p.dst = f
		}
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid seed")
		}
		opts.Seed = seed
	}
	if v := q.Get("interactive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid interactive")
		}
		opts.Interactive = b
	}
	if v := q.Get("selected"); v != "" {
		if err := errors.ValidateNodeID(v); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid selected")
		}
		opts.Selected = v
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	if v := q.Get("engine"); v != "" {
		opts.Engine = v
	}
	return opts, nil
}

// palette handles GET /api/v1/palette.
func (s *Server) palette(w http.ResponseWriter, r *http.Request) {
	table := s.runner.Palette
	assignments, err := table.AssignmentsContext(r.Context())
	if err != nil {
		s.respondError(w, r, errors.Wrap(errors.ErrCodeStore, err, "read palette"))
		return
	}
	if assignments == nil {
		assignments = []palette.Assignment{}
	}
	body := paletteBody{
		Strategy:    table.Strategy().String(),
		Colors:      table.Colors(),
		Assignments: assignments,
	}
	s.respondJSON(w, http.StatusOK, body)
}

// health handles GET /health.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := string(errors.GetCode(err))

	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		status, code = http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput)
	}
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "code", code, "error", err)
	}
	s.respondJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: errors.UserMessage(err)}})
}
