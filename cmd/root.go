/*
Copyright © 2025 jesse galley <jesse@jessegalley.net>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/davecgh/go-spew/spew"
	"github.com/jessegalley/fileio/internal/bench"
	"github.com/jessegalley/fileio/internal/config"
	"github.com/jessegalley/fileio/internal/logger"
	"github.com/jessegalley/fileio/internal/metrics"
	"github.com/jessegalley/fileio/internal/report"
	"github.com/spf13/cobra"
)

// program info const
const progVersion string = "0.1.0"
const progAuthor string = "jesse galley <jesse@jessegalley.net>"

// options holds everything the command line resolves to
type options struct {
	cfg        *config.Config
	cfgFile    string // optional yaml config file
	cpuProfile string // write a cpu profile here
	version    bool   // print version and exit
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	o := &options{cfg: config.NewConfig()}

	cmd := &cobra.Command{
		Use:   "fileio <file_name>",
		Short: "Measure raw read/write latency and throughput of a single file.",
		Long: `Creates (or truncates) file_name, fills it, then runs four direct io
benchmarks over it in order: sequential read, sequential write, random
read (pread) and random write (pwrite). Each reports the average syscall
latency and the throughput. The file is removed when every phase succeeds
and left in place for inspection otherwise.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if o.version {
				return nil
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// from here on failures are benchmark failures, not usage errors
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true

			if o.version {
				fmt.Fprintf(cmd.OutOrStdout(), "fileio v%s\n%s\n", progVersion, progAuthor)
				return nil
			}

			if err := run(cmd, o, args[0]); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			return nil
		},
	}

	config.BindFlags(cmd.Flags(), o.cfg)
	cmd.Flags().StringVar(&o.cfgFile, "config", "", "yaml config file")
	cmd.Flags().StringVar(&o.cpuProfile, "cpuprofile", "", "write a cpu profile to this file")
	cmd.Flags().BoolVarP(&o.version, "version", "V", false, "print version and exit")

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// run resolves the configuration and drives one full benchmark of path
func run(cmd *cobra.Command, o *options, path string) error {
	// merge flags, env and the config file over the defaults
	cfg := o.cfg
	if err := config.Load(cmd.Flags(), o.cfgFile, cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// validate output format
	format, err := report.ValidateFormat(cfg.OutFmt)
	if err != nil {
		return fmt.Errorf("invalid output format: %w", err)
	}

	// set up logging, stderr unless a log file was given
	log, closer := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	defer closer.Close()

	// dump the effective config when debugging
	if cfg.Debug {
		spew.Fdump(cmd.ErrOrStderr(), cfg)
	}

	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			return fmt.Errorf("failed to create cpu profile: %w", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	out := cmd.OutOrStdout()

	// progress lines would break machine readable output
	var progress io.Writer = io.Discard
	if format == report.TableFormat {
		progress = out
	}

	// every result is printed as soon as its phase completes and
	// recorded for the optional metrics file
	recorder := metrics.NewRecorder()
	driver := bench.NewDriver(cfg, nil, nil, log)
	runner := bench.NewRunner(driver, cfg.DirectIO, progress, log)
	runner.OnResult = func(res bench.Result) error {
		s, err := report.FormatResult(res, format)
		if err != nil {
			return err
		}
		recorder.Observe(res)
		_, err = fmt.Fprint(out, s)
		return err
	}

	log.Info("starting benchmarks",
		"path", path,
		"buffer_size", cfg.BufferSize,
		"file_size", cfg.FileSize,
		"iterations", cfg.Iterations,
		"direct", cfg.DirectIO)

	// run the benchmarks
	if _, err := runner.Run(path); err != nil {
		return err
	}

	// metrics only reflect a complete run
	if cfg.MetricsFile != "" {
		if err := recorder.WriteFile(cfg.MetricsFile); err != nil {
			return err
		}
		log.Info("wrote metrics", "path", cfg.MetricsFile)
	}

	return nil
}
