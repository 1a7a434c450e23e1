package api

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/ssargent/locatew/pkg/locate"
	"github.com/ssargent/locatew/pkg/metrics"
	"github.com/ssargent/locatew/pkg/query"
	"github.com/ssargent/locatew/pkg/stats"
	"github.com/ssargent/locatew/pkg/store"
)

const (
	defaultHistory = 10
	flushEvery     = 256
)

// Server holds the API server state
type Server struct {
	searcher Searcher
	history  HistoryReader
	config   ServerConfig
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewServer creates a new API server. history may be nil.
func NewServer(searcher Searcher, history HistoryReader, config ServerConfig, m *metrics.Metrics, logger zerolog.Logger) *Server {
	if m == nil {
		m = metrics.New()
	}
	return &Server{
		searcher: searcher,
		history:  history,
		config:   config,
		metrics:  m,
		logger:   logger,
	}
}

// handleHealth reports that the server is up
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleSearch streams matching paths as text/plain, one per line.
//
//	GET /api/v1/search?q=bob&q=*.txt&all=1&basename=0&case=0&limit=10
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchRequest(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if req.Limit == 0 && r.URL.Query().Has("limit") {
		w.WriteHeader(http.StatusOK)
		return
	}

	sink := &streamSink{w: w}
	if f, ok := w.(http.Flusher); ok {
		sink.flusher = f
	}

	sum, err := s.searcher.Search(r.Context(), req, sink)
	if err == nil {
		sink.flush()
		return
	}

	switch {
	case errors.Is(err, context.Canceled):
		s.logger.Debug().Err(err).Msg("search canceled by client")
	case sum.Matched > 0 || sink.written:
		// Headers are gone; all we can do is stop the stream.
		s.logger.Error().Err(err).Int("matched", sum.Matched).Msg("search failed mid-stream")
	case store.IsUnusable(err):
		sendError(w, store.MsgRegenerate, http.StatusServiceUnavailable)
	case errors.Is(err, query.ErrNoPatterns):
		sendError(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error().Err(err).Msg("search failed")
		sendError(w, "search failed: "+err.Error(), http.StatusInternalServerError)
	}
}

// handleStats returns the statistics sidecar of the last updatedb run
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := stats.Load(s.config.StatisticsPath)
	if err != nil {
		if errors.Is(err, stats.ErrMissing) {
			sendError(w, store.MsgRegenerate, http.StatusNotFound)
			return
		}
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, st)
}

// handleHistory returns previous updatedb runs, newest first
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		sendError(w, "run history is not enabled", http.StatusNotFound)
		return
	}

	n := defaultHistory
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			sendError(w, "n must be a non-negative integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	runs, err := s.history.Recent(n)
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []stats.Statistics{}
	}
	sendSuccess(w, runs)
}

func parseSearchRequest(r *http.Request) (locate.Request, error) {
	q := r.URL.Query()

	req := locate.Request{Patterns: q["q"]}
	if len(req.Patterns) == 0 {
		return req, errors.New("at least one q parameter is required")
	}

	var err error
	if req.All, err = parseFlag(q.Get("all")); err != nil {
		return req, errors.Wrap(err, "all")
	}
	if req.Basename, err = parseFlag(q.Get("basename")); err != nil {
		return req, errors.Wrap(err, "basename")
	}
	if req.CaseSensitive, err = parseFlag(q.Get("case")); err != nil {
		return req, errors.Wrap(err, "case")
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return req, errors.Newf("limit must be a non-negative integer, got %q", v)
		}
		req.Limit = limit
	}
	return req, nil
}

func parseFlag(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

// streamSink writes matched paths to the response, flushing periodically
type streamSink struct {
	w       io.Writer
	flusher http.Flusher
	n       int
	written bool
}

func (s *streamSink) Emit(e query.Entry) error {
	if _, err := io.WriteString(s.w, e.Path+"\n"); err != nil {
		return err
	}
	s.written = true
	s.n++
	if s.n%flushEvery == 0 {
		s.flush()
	}
	return nil
}

func (s *streamSink) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
