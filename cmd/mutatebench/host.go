package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/vango-dev/mutate/internal/config"
	"github.com/vango-dev/mutate/pkg/dom"
	"github.com/vango-dev/mutate/pkg/mutate"
	"github.com/vango-dev/mutate/pkg/mutate/events"
	"github.com/vango-dev/mutate/pkg/mutate/node"
	"github.com/vango-dev/mutate/pkg/schedule"
	"go.opentelemetry.io/otel"
)

const (
	minRoundLatency = time.Microsecond
	maxRoundLatency = 10 * time.Second
)

// hostStats counts what one host's listeners received.
type hostStats struct {
	Host       int
	Native     bool
	Inserted   int
	Removed    int
	Attributes int
	Unbound    int
	Swaps      int
}

// host is one document driven by one engine on its own loop. The engine,
// the tree and stats belong to the loop goroutine; latency and rounds belong
// to the driver.
type host struct {
	id      int
	loop    *schedule.Loop
	engine  *mutate.Engine
	doc     *dom.Node
	mutator *node.Mutator
	events  *events.Registry
	logger  *slog.Logger
	removed events.Handler
	latency *hdrhistogram.Histogram
	rounds  []float64
	stats   hostStats
}

func newHost(id int, cfg *config.Config, native bool, metrics *mutate.Metrics, logger *slog.Logger) (*host, error) {
	logger = logger.With("host", id)
	loop := schedule.NewLoop()

	opts := []mutate.Option{
		mutate.WithScheduler(loop),
		mutate.WithLogger(logger),
		mutate.WithTracer(otel.Tracer(cfg.Tracing.TracerName)),
		mutate.WithDedupe(mutate.ChannelInsertion, cfg.Dedupe.Insertion),
		mutate.WithDedupe(mutate.ChannelRemoval, cfg.Dedupe.Removal),
		mutate.WithDedupe(mutate.ChannelAttribute, cfg.Dedupe.Attribute),
	}
	if metrics != nil {
		opts = append(opts, mutate.WithMetrics(metrics))
	}
	if native {
		opts = append(opts, mutate.WithNativeObservation())
	}

	h := &host{
		id:      id,
		loop:    loop,
		engine:  mutate.New(opts...),
		doc:     dom.NewDocument(),
		logger:  logger,
		latency: hdrhistogram.New(minRoundLatency.Microseconds(), maxRoundLatency.Microseconds(), 3),
		stats:   hostStats{Host: id, Native: native},
	}
	h.mutator = node.New(h.engine)
	h.events = events.NewRegistry(h.engine, events.WithLogger(logger))
	h.removed = events.Func(func(events.Event) { h.stats.Unbound++ })
	h.engine.OnCapabilityChange(func(c mutate.Capability) {
		h.stats.Swaps++
		h.stats.Native = c != nil
	})

	root := h.doc.DocumentElement()
	if _, err := h.engine.OnInsertion(root, func(mutate.ChangeEvent) { h.stats.Inserted++ }); err != nil {
		return nil, err
	}
	if _, err := h.engine.OnRemoval(root, func(mutate.ChangeEvent) { h.stats.Removed++ }); err != nil {
		return nil, err
	}
	if _, err := h.engine.OnAttributeChange(root, func(mutate.ChangeEvent) { h.stats.Attributes++ }); err != nil {
		return nil, err
	}
	return h, nil
}

// round inserts a section of n children, touches an attribute on each
// child and removes the section again.
func (h *host) round(r, n int) error {
	kids := make([]*dom.Node, n)
	for i := range kids {
		kids[i] = h.doc.CreateElement("div")
	}
	section := h.doc.CreateElement("section", kids)
	h.events.AddEventListener(section, events.TypeRemoved, h.removed)

	if err := h.mutator.AppendChild(h.doc.Body(), section); err != nil {
		return err
	}
	value := strconv.Itoa(r)
	for _, c := range kids {
		h.mutator.SetAttribute(c, "data-round", value)
	}
	return h.mutator.RemoveChild(h.doc.Body(), section)
}

// drive runs rounds and waits for every resulting event to be delivered.
func (h *host) drive(ctx context.Context, rounds, n int) error {
	for r := 0; r < rounds; r++ {
		start := time.Now()
		var err error
		if doErr := h.loop.Do(ctx, func() { err = h.round(r, n) }); doErr != nil {
			return doErr
		}
		if err != nil {
			return err
		}
		if err := h.settle(ctx); err != nil {
			return err
		}
		elapsed := time.Since(start)
		_ = h.latency.RecordValue(elapsed.Microseconds())
		h.rounds = append(h.rounds, float64(elapsed.Microseconds()))
	}
	return nil
}

// settle waits until the loop has no work left and every channel is idle.
func (h *host) settle(ctx context.Context) error {
	for {
		idle := false
		err := h.loop.Do(ctx, func() {
			idle = h.loop.Pending() == 0 &&
				h.engine.State(mutate.ChannelInsertion) == mutate.StateIdle &&
				h.engine.State(mutate.ChannelRemoval) == mutate.StateIdle &&
				h.engine.State(mutate.ChannelAttribute) == mutate.StateIdle
		})
		if err != nil {
			return err
		}
		if idle {
			return nil
		}
	}
}

// apply switches the observation strategy to match cfg. It must run on the
// loop goroutine.
func (h *host) apply(cfg *config.Config) {
	native := h.engine.Capability() != nil
	if cfg.Capability.Native == native {
		return
	}
	if cfg.Capability.Native {
		h.engine.SetCapability(mutate.Native(h.loop))
	} else {
		h.engine.SetCapability(nil)
	}
	h.logger.Info("capability switched", "native", cfg.Capability.Native)
}
