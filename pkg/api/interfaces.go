// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/ssargent/locatew/pkg/locate"
	"github.com/ssargent/locatew/pkg/query"
	"github.com/ssargent/locatew/pkg/stats"
)

// Searcher runs a query and streams its matches into sink
type Searcher interface {
	Search(ctx context.Context, req locate.Request, sink query.Sink) (query.Summary, error)
}

// HistoryReader returns previous updatedb runs, newest first
type HistoryReader interface {
	Recent(n int) ([]stats.Statistics, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is canceled
	StartServer(ctx context.Context, server *Server) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
