/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ssargent/locatew/pkg/config"
	"github.com/ssargent/locatew/pkg/di"
	"github.com/ssargent/locatew/pkg/locate"
	"github.com/ssargent/locatew/pkg/query"
	"github.com/ssargent/locatew/pkg/stats"
	"github.com/ssargent/locatew/pkg/store"
)

var container *di.Container

// SetContainer injects the dependency container used by every command
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "locate [flags] PATTERN...",
	Short: "Find files by name",
	Long: `locate reads the database built by updatedb and prints every path
matching at least one PATTERN (or all of them with --all).

A PATTERN without glob characters matches anywhere in the path, as if it
were written *PATTERN*. A PATTERN starting or ending with * is used as is,
and a leading / anchors the rest of it to the whole path.

Examples:
  locate notes.txt
  locate -b -c "*.go"
  locate -a bob "*.md"
  locate -S --history 5`,
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	PersistentPreRunE: configure,
	RunE:              runLocate,
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
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().String("database", "", "Path to the database (overrides the config file)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides the config file)")

	rootCmd.Flags().BoolP("statistics", "S", false, "don't search for entries, print statistics about database")
	rootCmd.Flags().Int("history", 0, "with --statistics, also list the N most recent updatedb runs")
	rootCmd.Flags().BoolP("all", "a", false, "only print entries that match all patterns")
	rootCmd.Flags().BoolP("basename", "b", false, "match only the base name of path names")
	rootCmd.Flags().BoolP("count", "c", false, "only print number of found entries")
	rootCmd.Flags().BoolP("case-sensitive", "C", false, "case distinctions when matching patterns")
	rootCmd.Flags().IntP("limit", "l", 0, "limit output (or counting) to LIMIT entries")
}

// configure loads the configuration and hands it to the container
func configure(cmd *cobra.Command, args []string) error {
	if container == nil {
		return errors.New("dependency container not initialized")
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}
	if db, _ := cmd.Flags().GetString("database"); db != "" {
		cfg.Database = db
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	return container.Configure(cfg, cmd.Root().Name())
}

func runLocate(cmd *cobra.Command, args []string) error {
	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	if showStats, _ := cmd.Flags().GetBool("statistics"); showStats {
		n, _ := cmd.Flags().GetInt("history")
		return printStatistics(out, n)
	}

	if len(args) == 0 {
		return errors.New("at least one pattern is required")
	}

	count, _ := cmd.Flags().GetBool("count")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return errors.Newf("invalid limit %d", limit)
	}
	if limit == 0 && cmd.Flags().Changed("limit") {
		if count {
			fmt.Fprintln(out, "0")
		}
		return nil
	}

	req := locate.Request{Patterns: args, Limit: limit}
	req.All, _ = cmd.Flags().GetBool("all")
	req.Basename, _ = cmd.Flags().GetBool("basename")
	req.CaseSensitive, _ = cmd.Flags().GetBool("case-sensitive")

	sink := query.NewWriterSink(out)
	if count {
		sink = query.Discard
	}

	sum, err := container.NewSearcher().Search(cmd.Context(), req, sink)
	if err != nil {
		if store.IsUnusable(err) {
			logger := container.GetLogger()
			logger.Debug().Err(err).Msg("database unusable")
			return errors.New(store.MsgRegenerate)
		}
		return err
	}

	if count {
		fmt.Fprintln(out, humanize.Comma(int64(sum.Matched)))
	}
	return out.Flush()
}

// printStatistics prints the sidecar of the last run and, when n > 0, the
// most recent runs from the history.
func printStatistics(w io.Writer, n int) error {
	cfg := container.GetConfig()

	st, err := stats.Load(cfg.Statistics)
	if err != nil {
		if errors.Is(err, stats.ErrMissing) {
			return errors.New(store.MsgRegenerate)
		}
		return err
	}
	if err := st.Report(w, filepath.Base(cfg.Database)); err != nil {
		return err
	}
	if n <= 0 {
		return nil
	}

	history := container.HistoryReader()
	if history == nil {
		fmt.Fprintln(w, "Run history is disabled.")
		return nil
	}
	runs, err := history.Recent(n)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Recent runs:")
	for _, run := range runs {
		fmt.Fprintf(w, "      %-16s %s files, %s directories, %s, %s  %s\n",
			humanize.Time(run.CreatedAt),
			humanize.Comma(int64(run.Files)),
			humanize.Comma(int64(run.Dirs)),
			humanize.Bytes(run.DBSize),
			time.Duration(run.Elapsed)*time.Second,
			run.RunID,
		)
	}
	return nil
}
