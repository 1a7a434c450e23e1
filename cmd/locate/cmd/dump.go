/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ssargent/locatew/pkg/codec"
	"github.com/ssargent/locatew/pkg/store"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every entry in the database",
	Long: `Decode the whole database and print each entry as stored, directories
with their trailing separator. With --offsets each line is prefixed with the
byte offset of its record.

Examples:
  locate dump
  locate dump --offsets | head`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		offsets, _ := cmd.Flags().GetBool("offsets")
		cfg := container.GetConfig()

		reader, err := store.NewDBReader(store.DBReaderConfig{FilePath: cfg.Database})
		if err != nil {
			if store.IsUnusable(err) {
				return errors.New(store.MsgRegenerate)
			}
			return err
		}
		defer reader.Close()

		out := bufio.NewWriter(cmd.OutOrStdout())
		defer out.Flush()

		dec := reader.Iterator()
		for {
			// Offset must be read before Next consumes the record; the
			// first Next also consumes the header.
			at := dec.Offset()
			if at < int64(codec.HeaderSize) {
				at = int64(codec.HeaderSize)
			}
			if !dec.Next() {
				break
			}
			if offsets {
				fmt.Fprintf(out, "%d\t", at)
			}
			fmt.Fprintln(out, dec.Line())
		}
		if err := dec.Err(); err != nil {
			if store.IsUnusable(err) {
				return errors.New(store.MsgRegenerate)
			}
			return err
		}
		return out.Flush()
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().Bool("offsets", false, "prefix each entry with the byte offset of its record")
}
