package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/dotpipe/pkg/backend"
	"github.com/matzehuels/dotpipe/pkg/cache"
	"github.com/matzehuels/dotpipe/pkg/errors"
	"github.com/matzehuels/dotpipe/pkg/history"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 1000
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePipe(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req, err := s.opts.Defaults.Apply(backend.Request{
		Engine:    q.Get("engine"),
		Format:    q.Get("format"),
		Renderer:  q.Get("renderer"),
		Formatter: q.Get("formatter"),
	}).Normalize()
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, err := s.readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cmd, err := s.backend.Command(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	key := s.opts.Keyer.PipeKey(cmd.Argv(), body)

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	rec := history.Record{
		ID:        RequestID(r.Context()),
		Args:      cmd.Argv(),
		InputSize: len(body),
		StartedAt: time.Now().UTC(),
		Cached:    true,
	}
	out, err := cache.Fetch(ctx, s.opts.Cache, key, cache.KeyTypePipe, s.opts.CacheTTL, func() ([]byte, error) {
		rec.Cached = false
		return s.backend.Pipe(ctx, req, body, backend.WithQuiet())
	})
	s.record(r.Context(), rec, len(out), time.Since(rec.StartedAt), err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType(req.Format))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleUnflatten(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var opts backend.UnflattenOptions
	var err error
	if opts.Stagger, err = intParam(q.Get("stagger"), "stagger"); err != nil {
		writeError(w, r, err)
		return
	}
	if opts.Chain, err = intParam(q.Get("chain"), "chain"); err != nil {
		writeError(w, r, err)
		return
	}
	if v := q.Get("fanout"); v != "" {
		if opts.Fanout, err = strconv.ParseBool(v); err != nil {
			writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid fanout %q", v))
			return
		}
	}
	if _, err := opts.Args(); err != nil {
		writeError(w, r, err)
		return
	}

	body, err := s.readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	out, err := s.backend.Unflatten(ctx, string(body), opts, backend.DefaultEncoding, backend.WithQuiet())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType("gv"))
	_, _ = io.WriteString(w, out)
}

type versionResponse struct {
	Version    string `json:"version"`
	Components []int  `json:"components"`
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	cmd, err := s.backend.Command(s.opts.Defaults.Apply(backend.Request{}))
	if err != nil {
		writeError(w, r, err)
		return
	}
	key := s.opts.Keyer.VersionKey(cmd.Name)
	data, err := cache.Fetch(ctx, s.opts.Cache, key, cache.KeyTypeVersion, time.Hour, func() ([]byte, error) {
		v, err := s.backend.Version(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	var v backend.Version
	if err := json.Unmarshal(data, &v); err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "decode cached version"))
		return
	}
	writeJSON(w, http.StatusOK, versionResponse{Version: v.String(), Components: v})
}

type capabilitiesResponse struct {
	Engines    []string          `json:"engines"`
	Formats    []string          `json:"formats"`
	Renderers  []string          `json:"renderers"`
	Formatters []string          `json:"formatters"`
	Defaults   map[string]string `json:"defaults"`
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, capabilitiesResponse{
		Engines:    backend.Sorted(backend.Engines),
		Formats:    backend.Sorted(backend.Formats),
		Renderers:  backend.Sorted(backend.Renderers),
		Formatters: backend.Sorted(backend.Formatters),
		Defaults: map[string]string{
			"engine": s.opts.Defaults.Engine(),
			"format": s.opts.Defaults.Format(),
		},
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid limit %q", v))
			return
		}
		limit = n
	}
	if err := errors.ValidateLimit(limit, maxHistoryLimit); err != nil {
		writeError(w, r, err)
		return
	}

	records, err := s.opts.History.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "load history"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": records})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(body) == 0 {
		return nil, errors.New(errors.ErrCodeRequiredArgument, "request body must contain DOT source")
	}
	return body, nil
}

func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}

// record stores a history entry for a pipe call. Failures are logged, not
// returned to the client.
func (s *Server) record(ctx context.Context, rec history.Record, outSize int, elapsed time.Duration, err error) {
	rec.OutputSize = outSize
	rec.Duration = elapsed
	if err != nil {
		rec.Error = err.Error()
		rec.ExitCode = -1
		var perr *errors.ProcessError
		if stderrors.As(err, &perr) {
			rec.ExitCode = perr.ExitCode
		}
	}
	if herr := s.opts.History.Add(ctx, rec); herr != nil {
		s.opts.Logger.Warn("record history", "id", rec.ID, "err", herr)
	}
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s %q", name, v)
	}
	return n, nil
}
