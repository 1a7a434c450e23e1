package query

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// errConsumerGone is what the producer reports when the consumer stopped
// pulling before the source was exhausted.
var errConsumerGone = errors.New("query stopped before the end of the database")

// Pipeline decodes entries on one goroutine and matches them on another,
// connected by a bounded queue.
type Pipeline struct {
	matcher Matcher
	opts    Options
	logger  zerolog.Logger
}

// NewPipeline creates a pipeline. A nil matcher matches every entry.
func NewPipeline(matcher Matcher, opts Options) *Pipeline {
	if opts.QueueCapacity <= 0 {
		opts.QueueCapacity = DefaultQueueCapacity
	}
	if opts.Separator == 0 {
		opts.Separator = DefaultSeparator
	}
	return &Pipeline{
		matcher: matcher,
		opts:    opts,
		logger:  zerolog.Nop(),
	}
}

// WithLogger sets the logger used for pipeline diagnostics
func (p *Pipeline) WithLogger(logger zerolog.Logger) *Pipeline {
	p.logger = logger
	return p
}

// Options returns the effective options
func (p *Pipeline) Options() Options {
	return p.opts
}

type item struct {
	line string
	err  error
}

// Run streams src through the matcher into sink. src is drained on a
// separate goroutine that Run owns; it has returned by the time Run does,
// so the caller may close whatever backs src afterwards.
//
// A source error is returned as is. Stopping at the limit is not an error.
func (p *Pipeline) Run(ctx context.Context, src Source, sink Sink) (Summary, error) {
	queue := make(chan item, p.opts.QueueCapacity)
	done := make(chan struct{})
	produced := make(chan error, 1)

	go func() {
		produced <- p.produce(src, queue, done)
	}()

	summary, err := p.consume(ctx, queue, sink)
	close(done)
	perr := <-produced

	// done is closed only after consume returns, so the producer can only
	// see it once a stop condition was reached and consume has its own result.
	if errors.Is(perr, errConsumerGone) && summary.Reason == StopLimit {
		p.logger.Debug().Int("matched", summary.Matched).Msg("limit reached, decoder stopped")
	}

	p.logger.Debug().
		Int("scanned", summary.Scanned).
		Int("matched", summary.Matched).
		Stringer("reason", summary.Reason).
		Msg("query finished")
	return summary, err
}

// produce owns src. It exits as soon as it sees done closed, so at most one
// more entry is decoded after the consumer stops.
func (p *Pipeline) produce(src Source, queue chan<- item, done <-chan struct{}) error {
	defer close(queue)

	for src.Next() {
		select {
		case <-done:
			return errConsumerGone
		default:
		}

		select {
		case queue <- item{line: src.Line()}:
		case <-done:
			return errConsumerGone
		}
	}

	if err := src.Err(); err != nil {
		select {
		case queue <- item{err: err}:
		case <-done:
			return errConsumerGone
		}
	}
	return nil
}

func (p *Pipeline) consume(ctx context.Context, queue <-chan item, sink Sink) (Summary, error) {
	var summary Summary
	for {
		var it item
		var ok bool
		select {
		case <-ctx.Done():
			summary.Reason = StopCanceled
			return summary, ctx.Err()
		case it, ok = <-queue:
		}

		if !ok {
			summary.Reason = StopExhausted
			return summary, nil
		}
		if it.err != nil {
			summary.Reason = StopDecode
			return summary, it.err
		}
		summary.Scanned++

		entry, ok := p.entry(it.line)
		if !ok || !p.matches(entry.Candidate) {
			continue
		}

		if err := sink.Emit(entry); err != nil {
			summary.Reason = StopSink
			return summary, errors.Wrap(err, "write result")
		}
		summary.Matched++

		if p.opts.Limit > 0 && summary.Matched >= p.opts.Limit {
			summary.Reason = StopLimit
			return summary, nil
		}
	}
}

// entry classifies a database line and picks the string to match. It
// returns false for directories in basename mode.
func (p *Pipeline) entry(line string) (Entry, bool) {
	path, isDir := Classify(line, p.opts.Separator)
	e := Entry{Line: line, Path: path, Candidate: path, IsDir: isDir}
	if p.opts.Basename {
		if isDir {
			return e, false
		}
		e.Candidate = Basename(path, p.opts.Separator)
	}
	return e, true
}

func (p *Pipeline) matches(candidate string) bool {
	if p.matcher == nil {
		return true
	}
	if !p.opts.All || p.matcher.Len() == 1 {
		return p.matcher.IsMatch(candidate)
	}
	return p.matcher.MatchCount(candidate) == p.matcher.Len()
}

// Classify strips the trailing separator that marks a directory entry
func Classify(line string, sep byte) (path string, isDir bool) {
	if n := len(line); n > 0 && line[n-1] == sep {
		return line[:n-1], true
	}
	return line, false
}

// Basename returns the part of path after the last separator
func Basename(path string, sep byte) string {
	return path[strings.LastIndexByte(path, sep)+1:]
}
