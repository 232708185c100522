package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	crerrors "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/vango-dev/mutate/internal/config"
	"github.com/vango-dev/mutate/internal/errors"
	"github.com/vango-dev/mutate/pkg/mutate"
	"golang.org/x/sync/errgroup"
)

type runOptions struct {
	Hosts      int
	Nodes      int
	Rounds     int
	Mode       string
	ConfigPath string
	Watch      bool
	Metrics    bool
	Plot       bool
	Verbose    bool

	// Dir is where the search for a configuration file starts when
	// ConfigPath is empty. Defaults to the working directory.
	Dir string
}

// runResult is what a run produced.
type runResult struct {
	ID       string
	Elapsed  time.Duration
	Hosts    []*host
	Registry *prometheus.Registry
}

func runCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark",
		Long: `Run the benchmark.

Every round inserts a section of --nodes children into each host's
document, changes an attribute on every child and removes the section.

Modes:
  native     the engine observes the tree itself
  synthetic  tree operations report their own changes
  (empty)    use capability.native from the configuration

Without --config the nearest mutate.json, mutate.yaml or mutate.yml in the
working directory or one of its parents is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			res, err := run(ctx, opts, os.Stderr)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), res, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Hosts, "hosts", 1, "Independent engines to run concurrently")
	cmd.Flags().IntVarP(&opts.Nodes, "nodes", "n", 200, "Children per inserted section")
	cmd.Flags().IntVarP(&opts.Rounds, "rounds", "r", 10, "Rounds per host")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "", "Observation mode: native or synthetic")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Configuration file or directory (default: nearest one above the working directory)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Reload the configuration file while running")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "Print Prometheus metrics after the run")
	cmd.Flags().BoolVar(&opts.Plot, "plot", false, "Plot round latency per host")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging")

	return cmd
}

// findConfig loads --config, or else the nearest configuration file above
// opts.Dir. Without either the defaults are used.
func findConfig(opts runOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	root, err := config.FindProjectRoot(dir)
	if errors.CodeOf(err) == errors.CodeConfigNotFound {
		return config.New(), nil
	}
	if err != nil {
		return nil, err
	}
	return config.Load(root)
}

func loadConfig(opts runOptions) (*config.Config, bool, error) {
	cfg, err := findConfig(opts)
	if err != nil {
		return nil, false, err
	}

	switch opts.Mode {
	case "":
		return cfg, cfg.Capability.Native, nil
	case "native":
		return cfg, true, nil
	case "synthetic":
		return cfg, false, nil
	default:
		return nil, false, errors.New(errors.CodeUnknownMode).
			WithDetail("Unknown mode " + strconv.Quote(opts.Mode)).
			WithSuggestion("Use --mode native or --mode synthetic")
	}
}

func run(ctx context.Context, opts runOptions, logOut io.Writer) (*runResult, error) {
	cfg, native, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if opts.Hosts < 1 || opts.Nodes < 0 || opts.Rounds < 0 {
		return nil, errors.Newf(errors.CategoryCLI, "hosts must be positive and nodes, rounds not negative")
	}

	level := cfg.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	res := &runResult{ID: uuid.NewString()}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})).With("run", res.ID)

	if cfg.Path() != "" {
		logger.Info("using configuration", "path", cfg.Path())
	} else if opts.Watch {
		logger.Warn("nothing to watch: no configuration file found")
	}

	var metrics *mutate.Metrics
	if cfg.Metrics.Enabled || opts.Metrics {
		res.Registry = prometheus.NewRegistry()
		metrics = mutate.NewMetrics(
			mutate.WithRegistry(res.Registry),
			mutate.WithNamespace(cfg.Metrics.Namespace),
			mutate.WithSubsystem(cfg.Metrics.Subsystem),
		)
	}

	for i := 0; i < opts.Hosts; i++ {
		h, err := newHost(i, cfg, native, metrics, logger)
		if err != nil {
			return nil, err
		}
		res.Hosts = append(res.Hosts, h)
	}

	loopCtx, stopLoops := context.WithCancel(ctx)
	defer stopLoops()

	var loops errgroup.Group
	for _, h := range res.Hosts {
		loops.Go(func() error {
			return ignoreCanceled(h.loop.Run(loopCtx))
		})
	}
	if opts.Watch && cfg.Path() != "" {
		loops.Go(func() error {
			return config.Watch(loopCtx, cfg.Path(), func(next *config.Config) {
				for _, h := range res.Hosts {
					h.loop.Schedule(func() { h.apply(next) })
				}
			}, config.WithLogger(logger))
		})
	}

	logger.Info("run started", "hosts", opts.Hosts, "nodes", opts.Nodes, "rounds", opts.Rounds, "native", native)
	start := time.Now()

	drivers, driveCtx := errgroup.WithContext(ctx)
	for _, h := range res.Hosts {
		drivers.Go(func() error {
			return h.drive(driveCtx, opts.Rounds, opts.Nodes)
		})
	}
	err = drivers.Wait()
	res.Elapsed = time.Since(start)

	stopLoops()
	if lerr := loops.Wait(); err == nil {
		err = lerr
	}
	if err != nil {
		return nil, crerrors.Wrap(err, "benchmark run")
	}
	logger.Info("run finished", "elapsed", res.Elapsed)
	return res, nil
}

func ignoreCanceled(err error) error {
	if crerrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func report(w io.Writer, res *runResult, opts runOptions) error {
	fmt.Fprintf(w, "run %s finished in %s\n\n", res.ID, res.Elapsed.Round(time.Millisecond))

	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Host", "Mode", "Inserted", "Removed", "Attributes", "Unbound", "Swaps", "p50", "p99", "Max"})
	var total hostStats
	for _, h := range res.Hosts {
		s := h.stats
		mode := "synthetic"
		if s.Native {
			mode = "native"
		}
		tbl.Append([]string{
			strconv.Itoa(s.Host),
			mode,
			strconv.Itoa(s.Inserted),
			strconv.Itoa(s.Removed),
			strconv.Itoa(s.Attributes),
			strconv.Itoa(s.Unbound),
			strconv.Itoa(s.Swaps),
			micros(h.latency.ValueAtQuantile(50)),
			micros(h.latency.ValueAtQuantile(99)),
			micros(h.latency.Max()),
		})
		total.Inserted += s.Inserted
		total.Removed += s.Removed
		total.Attributes += s.Attributes
		total.Unbound += s.Unbound
	}
	tbl.SetFooter([]string{"", "total",
		strconv.Itoa(total.Inserted), strconv.Itoa(total.Removed),
		strconv.Itoa(total.Attributes), strconv.Itoa(total.Unbound),
		"", "", "", ""})
	tbl.Render()

	if opts.Plot {
		for _, h := range res.Hosts {
			if len(h.rounds) < 2 {
				continue
			}
			fmt.Fprintf(w, "\nhost %d round latency (µs)\n", h.id)
			fmt.Fprintln(w, asciigraph.Plot(h.rounds, asciigraph.Height(8)))
		}
	}

	if opts.Metrics && res.Registry != nil {
		fmt.Fprintln(w)
		families, err := res.Registry.Gather()
		if err != nil {
			return err
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
				return err
			}
		}
	}
	return nil
}

func micros(v int64) string {
	return (time.Duration(v) * time.Microsecond).String()
}
