// Package locate runs queries against a compressed path database. It ties
// the database reader, the glob matcher and the query pipeline together for
// the locate command and the search server.
package locate

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/ssargent/locatew/pkg/metrics"
	"github.com/ssargent/locatew/pkg/query"
	"github.com/ssargent/locatew/pkg/store"
)

// Request is one query
type Request struct {
	Patterns      []string
	All           bool
	Basename      bool
	CaseSensitive bool
	Limit         int // 0 = no limit
}

// Searcher runs requests against one database file
type Searcher struct {
	DatabasePath  string
	QueueCapacity int
	Separator     byte
	Logger        zerolog.Logger
	Metrics       *metrics.Metrics // Optional
}

// Search streams the paths matching req into sink. The database is opened
// per call so a rebuilt database is picked up without a restart.
func (s *Searcher) Search(ctx context.Context, req Request, sink query.Sink) (query.Summary, error) {
	start := time.Now()

	matcher, err := query.NewGlobMatcher(req.Patterns, req.CaseSensitive)
	if err != nil {
		return query.Summary{}, err
	}

	reader, err := store.NewDBReader(store.DBReaderConfig{FilePath: s.DatabasePath})
	if err != nil {
		return query.Summary{}, err
	}
	defer reader.Close()

	pipeline := query.NewPipeline(matcher, query.Options{
		All:           req.All,
		Basename:      req.Basename,
		Limit:         req.Limit,
		QueueCapacity: s.QueueCapacity,
		Separator:     s.Separator,
	}).WithLogger(s.Logger)

	sum, err := pipeline.Run(ctx, reader.Iterator(), sink)
	if s.Metrics != nil {
		s.Metrics.RecordQuery(sum, err, time.Since(start))
	}
	if err != nil {
		return sum, errors.Wrapf(err, "search %s", s.DatabasePath)
	}

	s.Logger.Debug().
		Strs("patterns", req.Patterns).
		Int("scanned", sum.Scanned).
		Int("matched", sum.Matched).
		Stringer("reason", sum.Reason).
		Dur("elapsed", time.Since(start)).
		Msg("search finished")
	return sum, nil
}

// Count returns how many entries match req, honouring req.Limit
func (s *Searcher) Count(ctx context.Context, req Request) (int, error) {
	sum, err := s.Search(ctx, req, query.Discard)
	return sum.Matched, err
}
