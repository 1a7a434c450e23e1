/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/locatew/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the locatew configuration file",
}

// configInitCmd writes a default configuration file
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file shared by locate and updatedb.

Examples:
  locate config init
  locate config init --api-key --path ./locatew.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		withKey, _ := cmd.Flags().GetBool("api-key")
		force, _ := cmd.Flags().GetBool("force")

		if path == "" {
			path = config.GetDefaultConfigPath()
		}
		if config.ConfigExists(path) && !force {
			return errors.Newf("%s already exists; use --force to overwrite it", path)
		}

		cfg, err := config.BootstrapConfig(path, withKey)
		if err != nil {
			return err
		}

		cmd.Printf("Configuration written to %s\n", path)
		if cfg.Server.APIKey != "" {
			cmd.Printf("Server API key: %s\n", cfg.Server.APIKey)
		}
		return nil
	},
}

// configShowCmd prints the effective configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(container.GetConfig())
		if err != nil {
			return errors.Wrap(err, "marshal config")
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().String("path", "", "Where to write the file (default: OS-specific location)")
	configInitCmd.Flags().Bool("api-key", false, "Generate an API key for locate serve")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}
