/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/locatew/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve searches over HTTP",
	Long: `Start a read-only HTTP server over the database.

Routes:
  GET /api/v1/health
  GET /api/v1/search?q=PATTERN[&q=PATTERN...][&all=1][&basename=1][&case=1][&limit=N]
  GET /api/v1/stats
  GET /api/v1/history?n=N
  GET /metrics

The database is reopened for every search, so a run of updatedb is picked
up without a restart.

Examples:
  locate serve
  locate serve --bind 0.0.0.0 --port 9000 --api-key mysecretkey`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := container.GetConfig()
		if cmd.Flags().Changed("bind") {
			cfg.Server.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.Server.APIKey, _ = cmd.Flags().GetString("api-key")
		}

		serverConfig := api.ServerConfig{
			Bind:           cfg.Server.Bind,
			Port:           cfg.Server.Port,
			APIKey:         cfg.Server.APIKey,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			StatisticsPath: cfg.Statistics,
		}

		// A nil *HistoryFile must not become a non-nil interface.
		var history api.HistoryReader
		if h := container.HistoryReader(); h != nil {
			history = h
		}

		server := api.NewServer(container.NewSearcher(), history, serverConfig,
			container.GetMetrics(), container.GetLogger())

		cmd.Printf("Serving %s on http://%s\n", cfg.Database, serverConfig.Addr())
		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(cmd.Context(), server)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("api-key", "", "Require this key in the X-API-Key header")
}
