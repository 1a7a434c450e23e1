// Package di provides dependency injection container
package di

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ssargent/locatew/pkg/api" //nolint:depguard
	"github.com/ssargent/locatew/pkg/config"
	"github.com/ssargent/locatew/pkg/locate"
	"github.com/ssargent/locatew/pkg/logging"
	"github.com/ssargent/locatew/pkg/metrics"
	"github.com/ssargent/locatew/pkg/storage"
)

// Container holds all the dependencies for the application
type Container struct {
	config        *config.Config
	logger        zerolog.Logger
	logCloser     io.Closer
	metrics       *metrics.Metrics
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container with the
// default configuration.
func NewContainer() *Container {
	return &Container{
		config:        config.DefaultConfig(),
		logger:        zerolog.Nop(),
		metrics:       metrics.New(),
		serverFactory: api.NewServerFactory(),
	}
}

// Configure installs cfg and builds the logger it describes
func (c *Container) Configure(cfg *config.Config, service string) error {
	logger, closer, err := logging.New(cfg.Logging, service)
	if err != nil {
		return err
	}
	c.Close()
	c.config = cfg
	c.logger = logger
	c.logCloser = closer
	return nil
}

// GetConfig returns the active configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the application logger
func (c *Container) GetLogger() zerolog.Logger {
	return c.logger
}

// GetMetrics returns the metrics registry
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// NewSearcher returns a searcher over the configured database
func (c *Container) NewSearcher() *locate.Searcher {
	return &locate.Searcher{
		DatabasePath:  c.config.Database,
		QueueCapacity: c.config.Query.QueueCapacity,
		Separator:     os.PathSeparator,
		Logger:        c.logger,
		Metrics:       c.metrics,
	}
}

// OpenHistory opens the run history, or returns nil when it is disabled
func (c *Container) OpenHistory() (*storage.History, error) {
	if c.config.History == "" {
		return nil, nil
	}
	return storage.OpenHistory(c.config.History)
}

// HistoryReader returns an on-demand reader of the run history, or nil when
// it is disabled.
func (c *Container) HistoryReader() *storage.HistoryFile {
	if c.config.History == "" {
		return nil
	}
	return &storage.HistoryFile{Path: c.config.History}
}

// Close releases the log file, if any
func (c *Container) Close() error {
	if c.logCloser == nil {
		return nil
	}
	err := c.logCloser.Close()
	c.logCloser = nil
	return err
}
