package mutate

import (
	"log/slog"

	"github.com/vango-dev/mutate/pkg/dom"
	"github.com/vango-dev/mutate/pkg/schedule"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTracerName is the tracer used when WithTracer is not given.
const DefaultTracerName = "github.com/vango-dev/mutate"

// Engine dispatches mutation events to node-scoped and document-scoped
// listeners.
type Engine struct {
	sched     schedule.Scheduler
	sw        *Switch
	store     *Store
	registry  *registry
	lifecycle *lifecycle
	batchers  [len(channels)]*batcher

	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

type options struct {
	sched   schedule.Scheduler
	sw      *Switch
	native  bool
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	dedupe  [len(channels)]bool
}

// Option configures an Engine.
type Option func(*options)

// WithScheduler sets the scheduler flushes run on. The default is a new
// schedule.Queue, available through Engine.Scheduler.
func WithScheduler(s schedule.Scheduler) Option {
	return func(o *options) {
		o.sched = s
	}
}

// WithSwitch shares an existing capability switch with the engine.
func WithSwitch(sw *Switch) Option {
	return func(o *options) {
		o.sw = sw
	}
}

// WithNativeObservation starts the engine with the Native capability bound
// to its scheduler.
func WithNativeObservation() Option {
	return func(o *options) {
		o.native = true
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records engine activity into m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracer sets the tracer used for flush spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithDedupe turns per-target deduplication on or off for ch. By default it
// is on for insertion and removal and off for attribute changes.
func WithDedupe(ch Channel, on bool) Option {
	return func(o *options) {
		if i, ok := ch.index(); ok {
			o.dedupe[i] = on
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	o := options{}
	o.dedupe[ChannelInsertion-1] = true
	o.dedupe[ChannelRemoval-1] = true
	for _, opt := range opts {
		opt(&o)
	}
	if o.sched == nil {
		o.sched = schedule.NewQueue()
	}
	if o.sw == nil {
		o.sw = NewSwitch(nil)
	}
	if o.native {
		o.sw.Set(Native(o.sched))
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(DefaultTracerName)
	}

	e := &Engine{
		sched:   o.sched,
		sw:      o.sw,
		store:   NewStore(),
		logger:  o.logger,
		metrics: o.metrics,
		tracer:  o.tracer,
	}
	e.lifecycle = &lifecycle{store: e.store, sw: e.sw, logger: e.logger, metrics: e.metrics}
	e.registry = &registry{store: e.store, metrics: e.metrics, observe: e.observe}
	for i, ch := range channels {
		b := &batcher{
			channel: ch,
			sched:   e.sched,
			dedupe:  o.dedupe[i],
			metrics: e.metrics,
			guard: func(what string, fn func()) {
				e.safeExecute(ch, what, fn)
			},
		}
		if ch == ChannelAttribute {
			b.process = e.processAttributes
		} else {
			b.process = e.processTree(ch)
		}
		e.batchers[i] = b
	}
	return e
}

// Scheduler returns the scheduler flushes run on.
func (e *Engine) Scheduler() schedule.Scheduler {
	return e.sched
}

// Switch returns the engine's capability switch.
func (e *Engine) Switch() *Switch {
	return e.sw
}

// Capability returns the active native capability, or nil.
func (e *Engine) Capability() Capability {
	return e.sw.Get()
}

// SetCapability replaces the native capability. Live observations are torn
// down and recreated against c.
func (e *Engine) SetCapability(c Capability) {
	e.logger.Debug("capability changed", "native", c != nil)
	e.sw.Set(c)
}

// OnCapabilityChange registers fn to be called after every capability
// change.
func (e *Engine) OnCapabilityChange(fn func(Capability)) *Subscription {
	return e.sw.OnChange(fn)
}

// State returns the dispatch state of ch. Unknown channels are always idle.
func (e *Engine) State(ch Channel) State {
	b, ok := e.batcher(ch)
	if !ok {
		return StateIdle
	}
	return b.state()
}

// Pending returns the number of events waiting to be flushed on ch.
func (e *Engine) Pending(ch Channel) int {
	b, ok := e.batcher(ch)
	if !ok {
		return 0
	}
	return b.size()
}

// Observers returns the number of listeners sharing the native observation
// of doc for ch.
func (e *Engine) Observers(doc *dom.Node, ch Channel) int {
	if _, ok := ch.index(); !ok {
		return 0
	}
	return e.lifecycle.count(doc, observationKey(ch))
}

func (e *Engine) batcher(ch Channel) (*batcher, bool) {
	i, ok := ch.index()
	if !ok {
		return nil, false
	}
	return e.batchers[i], true
}

// observe joins the native observation that feeds ch for doc.
func (e *Engine) observe(ch Channel, doc *dom.Node) func() {
	root := doc.DocumentElement()
	if root == nil {
		return func() {}
	}
	if ch == ChannelAttribute {
		return e.lifecycle.acquire(root, keyAttributeObservation, dom.ObserveOptions{
			Attributes:        true,
			AttributeOldValue: true,
			Subtree:           true,
		}, e.handleAttributeRecords)
	}
	return e.lifecycle.acquire(root, keyTreeObservation, dom.ObserveOptions{
		ChildList: true,
		Subtree:   true,
	}, e.handleTreeRecords)
}

func observationKey(ch Channel) Key {
	if ch == ChannelAttribute {
		return keyAttributeObservation
	}
	return keyTreeObservation
}
