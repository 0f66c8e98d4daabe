package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sdcio/parsort/pkg/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var configFile string
var debug bool
var trace bool
var jsonLog bool

// flag overrides, applied on top of the config file
var algorithm string
var workers int
var items int
var seed uint32
var lockOSThread bool
var metricsAddress string
var metricsDump bool

var cfg *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "parsort",
	Short:         "parallel merge sort strategies over a shared worker pool",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		setupLogger()
		var err error
		cfg, err = config.New(configFile)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		if err := applyFlags(cmd.Flags(), cfg); err != nil {
			return err
		}
		log.Debugf("config: sort=%+v pool=%+v prometheus=%+v", *cfg.Sort, *cfg.Pool, *cfg.Prometheus)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupCloseHandler(cancel)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "set log level to DEBUG")
	rootCmd.PersistentFlags().BoolVarP(&trace, "trace", "t", false, "set log level to TRACE")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json", false, "log in JSON format")

	rootCmd.PersistentFlags().StringVarP(&algorithm, "algorithm", "a", "", "sort algorithm")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "worker pool size (default: number of CPUs)")
	rootCmd.PersistentFlags().IntVarP(&items, "items", "n", 0, "number of integers to sort")
	rootCmd.PersistentFlags().Uint32VarP(&seed, "seed", "s", 0, "input generator seed (default: derived from the pid)")
	rootCmd.PersistentFlags().BoolVar(&lockOSThread, "lock-os-thread", false, "pin each pool worker to an OS thread")
	rootCmd.PersistentFlags().StringVar(&metricsAddress, "metrics-address", "", "serve prometheus metrics on this address while running")
	rootCmd.PersistentFlags().BoolVar(&metricsDump, "metrics", false, "print prometheus metrics to stderr when done")
}

func setupLogger() {
	log.SetOutput(os.Stderr)
	if jsonLog {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetLevel(log.InfoLevel)
	if debug {
		log.SetLevel(log.DebugLevel)
	}
	if trace {
		log.SetLevel(log.TraceLevel)
	}
}

// applyFlags copies explicitly set flags over the file config.
func applyFlags(fs *pflag.FlagSet, c *config.Config) error {
	if fs.Changed("algorithm") {
		c.Sort.Algorithm = algorithm
	}
	if fs.Changed("items") {
		c.Sort.Items = items
	}
	if fs.Changed("seed") {
		c.Sort.Seed = seed
	}
	if fs.Changed("workers") {
		if workers < 1 {
			return fmt.Errorf("--workers must be at least 1, got %d", workers)
		}
		c.Pool.Workers = workers
	}
	if fs.Changed("lock-os-thread") {
		c.Pool.LockOSThread = lockOSThread
	}
	if fs.Changed("metrics-address") {
		c.Prometheus.Address = metricsAddress
	}
	if fs.Changed("metrics") {
		c.Prometheus.Dump = metricsDump
	}
	return c.ValidateSetDefaults()
}

func setupCloseHandler(cancelFn context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-c
		fmt.Fprintf(os.Stderr, "\nreceived signal '%s'. terminating...\n", sig.String())
		cancelFn()
	}()
}
