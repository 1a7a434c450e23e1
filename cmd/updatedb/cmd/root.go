/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ssargent/locatew/pkg/codec"
	"github.com/ssargent/locatew/pkg/config"
	"github.com/ssargent/locatew/pkg/di"
	"github.com/ssargent/locatew/pkg/stats"
	"github.com/ssargent/locatew/pkg/store"
	"github.com/ssargent/locatew/pkg/walk"
)

var container *di.Container

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "updatedb",
	Short: "Build the locate database",
	Long: `updatedb walks every fixed drive (or the configured roots), compresses the
resulting path list into the locate database, and records statistics about
the run for locate --statistics.

Examples:
  updatedb
  updatedb --root /home --root /srv --exclude node_modules/ -v`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PreRunE:      configure,
	RunE:         runUpdate,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.Flags().String("database", "", "Path to the database (overrides the config file)")
	rootCmd.Flags().String("statistics", "", "Path to the statistics file (overrides the config file)")
	rootCmd.Flags().StringSlice("root", nil, "Directory to index; repeatable (default: every fixed drive)")
	rootCmd.Flags().StringSlice("exclude", nil, "gitignore-style pattern to skip; repeatable")
	rootCmd.Flags().String("exclude-file", "", "File of gitignore-style patterns to skip")
	rootCmd.Flags().Int("workers", 0, "Roots walked concurrently (default: number of CPUs)")
	rootCmd.Flags().String("metrics-textfile", "", "Write Prometheus metrics to this file")
	rootCmd.Flags().String("log-level", "", "Log level (overrides the config file)")
	rootCmd.Flags().BoolP("verbose", "v", false, "Print statistics when done")
}

func configure(cmd *cobra.Command, args []string) error {
	if container == nil {
		return errors.New("dependency container not initialized")
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("database"); v != "" {
		cfg.Database = v
	}
	if v, _ := flags.GetString("statistics"); v != "" {
		cfg.Statistics = v
	}
	if v, _ := flags.GetStringSlice("root"); len(v) > 0 {
		cfg.Walk.Roots = v
	}
	if v, _ := flags.GetStringSlice("exclude"); len(v) > 0 {
		cfg.Walk.Excludes = append(cfg.Walk.Excludes, v...)
	}
	if v, _ := flags.GetString("exclude-file"); v != "" {
		cfg.Walk.ExcludeFile = v
	}
	if v, _ := flags.GetInt("workers"); v > 0 {
		cfg.Walk.Workers = v
	}
	if v, _ := flags.GetString("metrics-textfile"); v != "" {
		cfg.Metrics.Textfile = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}

	return container.Configure(cfg, "updatedb")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	start := time.Now()
	cfg := container.GetConfig()
	logger := container.GetLogger()

	roots := cfg.Walk.Roots
	if len(roots) == 0 {
		var err error
		if roots, err = walk.FixedDrives(); err != nil {
			return err
		}
	}

	walker, err := walk.New(walk.Options{
		Excludes:    cfg.Walk.Excludes,
		ExcludeFile: cfg.Walk.ExcludeFile,
		Separator:   os.PathSeparator,
		Workers:     cfg.Walk.Workers,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	writer, err := store.NewDBWriter(store.DBWriterConfig{FilePath: cfg.Database})
	if err != nil {
		return err
	}

	// The walk feeds the encoder through a pipe, so the path list is never
	// held in memory or written out uncompressed.
	pr, pw := io.Pipe()
	var counts walk.Counts
	var walkTime time.Duration
	walkDone := make(chan error, 1)
	go func() {
		c, err := walker.WalkAll(cmd.Context(), roots, pw)
		counts, walkTime = c, time.Since(start)
		pw.CloseWithError(err)
		walkDone <- err
	}()

	_, err = writer.Compress(codec.ScanLines(pr))
	pr.CloseWithError(errors.New("encoder stopped"))
	if walkErr := <-walkDone; walkErr != nil && err == nil {
		err = walkErr
	}
	if err != nil {
		_ = writer.Abort()
		return err
	}
	if err := writer.Commit(); err != nil {
		return err
	}
	encodeTime := time.Since(start) - walkTime

	st := &stats.Statistics{
		Dirs:       uint64(counts.Dirs),
		Files:      uint64(counts.Files),
		FilesBytes: uint64(counts.FileBytes),
		DBSize:     uint64(writer.Size()),
		Checksum:   writer.Checksum(),
		CreatedAt:  time.Now().UTC(),
	}
	st.SetElapsed(time.Since(start))

	recordHistory(st)
	if err := st.Save(cfg.Statistics); err != nil {
		return err
	}

	m := container.GetMetrics()
	m.RecordRun(st, walkTime, encodeTime)
	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return err
		}
	}

	logger.Info().
		Str("database", cfg.Database).
		Uint64("dirs", st.Dirs).
		Uint64("files", st.Files).
		Uint64("db_size", st.DBSize).
		Str("checksum", st.Checksum).
		Dur("elapsed", time.Since(start)).
		Msg("database updated")

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return st.Report(cmd.OutOrStdout(), filepath.Base(cfg.Database))
	}
	return nil
}

// recordHistory appends the run to the history. A failure, such as a server
// holding the store open, only costs the history entry.
func recordHistory(st *stats.Statistics) {
	logger := container.GetLogger()
	h, err := container.OpenHistory()
	if err != nil {
		logger.Warn().Err(err).Msg("run history unavailable")
		return
	}
	if h == nil {
		return
	}
	defer h.Close()

	if _, err := h.Append(st); err != nil {
		logger.Warn().Err(err).Msg("could not record run")
	}
}
