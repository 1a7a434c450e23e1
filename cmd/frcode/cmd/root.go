/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/locatew/pkg/store"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "frcode",
	Short: "Front-compress path lists",
	Long: `frcode converts between a plain path list, one path per line, and the
front-compressed database format read by locate.`,
	SilenceUsage: true,
}

// compressCmd represents the compress command
var compressCmd = &cobra.Command{
	Use:   "compress <in> <out>",
	Short: "Compress a path list into a database",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := store.CompressFile(args[0], args[1])
		if err != nil {
			return err
		}
		cmd.Printf("%s: %d bytes\n", args[1], n)
		return nil
	},
}

// decompressCmd represents the decompress command
var decompressCmd = &cobra.Command{
	Use:   "decompress <in> <out>",
	Short: "Expand a database back into a path list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := store.DecompressFile(args[0], args[1])
		if err != nil {
			return err
		}
		cmd.Printf("%s: %d bytes\n", args[1], n)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(decompressCmd)
}
