package api

import (
	"net"
	"strconv"
	"time"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind            string
	Port            int
	APIKey          string   // Required in X-API-Key when set
	AllowedOrigins  []string // CORS origins; empty allows any
	StatisticsPath  string   // Statistics sidecar served by /stats
	ShutdownTimeout time.Duration
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}
