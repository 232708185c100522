package events

import (
	"log/slog"

	merrors "github.com/vango-dev/mutate/internal/errors"
	"github.com/vango-dev/mutate/pkg/dom"
	"github.com/vango-dev/mutate/pkg/mutate"
)

// ErrEventExists is returned by AddEvent for a type that is already defined.
var ErrEventExists = merrors.New(merrors.CodeEventExists)

type targetKey struct {
	target    *dom.Node
	eventType string
}

type targetData struct {
	handlers []Handler
	sub      *mutate.Subscription
}

// Registry binds named events to nodes.
type Registry struct {
	engine  *mutate.Engine
	logger  *slog.Logger
	defs    map[string]Definition
	targets map[targetKey]*targetData
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry returns a Registry with the inserted, removed and attributes
// events defined.
func NewRegistry(e *mutate.Engine, opts ...Option) *Registry {
	r := &Registry{
		engine:  e,
		logger:  slog.Default(),
		defs:    make(map[string]Definition),
		targets: make(map[targetKey]*targetData),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, def := range []Definition{Inserted, Removed, Attributes} {
		r.defs[def.Type] = def
	}
	return r
}

// AddEvent defines an event. eventType overrides def.Type when not empty.
func (r *Registry) AddEvent(def Definition, eventType string) error {
	if eventType == "" {
		eventType = def.Type
	}
	if _, ok := r.defs[eventType]; ok {
		return merrors.New(merrors.CodeEventExists).
			Wrap(merrors.Newf(merrors.CategoryRuntime, "event type %q", eventType)).
			Raise()
	}
	r.defs[eventType] = def
	return nil
}

// AddEventListener adds h for events of eventType on target. Adding the same
// handler twice has no effect. Types without a definition only receive
// events passed to Dispatch.
func (r *Registry) AddEventListener(target *dom.Node, eventType string, h Handler) {
	key := targetKey{target, eventType}
	data, ok := r.targets[key]
	if !ok {
		data = &targetData{}
		r.targets[key] = data
	}
	for _, existing := range data.handlers {
		if existing == h {
			return
		}
	}
	if len(data.handlers) == 0 {
		if def, ok := r.defs[eventType]; ok {
			data.sub = def.Subscribe(r.engine, target, func(ev mutate.ChangeEvent) {
				r.fire(key, def, ev)
			})
			r.logger.Debug("event bound", "type", eventType, "target", target.String())
		}
	}
	data.handlers = append(data.handlers, h)
}

// RemoveEventListener removes h. The engine subscription is released with
// the last handler.
func (r *Registry) RemoveEventListener(target *dom.Node, eventType string, h Handler) {
	key := targetKey{target, eventType}
	data, ok := r.targets[key]
	if !ok {
		return
	}
	for i, existing := range data.handlers {
		if existing == h {
			data.handlers = append(data.handlers[:i:i], data.handlers[i+1:]...)
			break
		}
	}
	if len(data.handlers) == 0 {
		r.unbind(key, data)
	}
}

// Dispatch calls the handlers for ev.Type on target in the order they were
// added. It reports whether any handler ran.
func (r *Registry) Dispatch(target *dom.Node, ev Event) bool {
	data, ok := r.targets[targetKey{target, ev.Type}]
	if !ok || len(data.handlers) == 0 {
		return false
	}
	ev.Target = target
	handlers := append([]Handler(nil), data.handlers...)
	for _, h := range handlers {
		h.HandleEvent(ev)
	}
	return true
}

// Handlers returns the number of handlers for eventType on target.
func (r *Registry) Handlers(target *dom.Node, eventType string) int {
	data, ok := r.targets[targetKey{target, eventType}]
	if !ok {
		return 0
	}
	return len(data.handlers)
}

func (r *Registry) fire(key targetKey, def Definition, change mutate.ChangeEvent) {
	ev := Event{Type: key.eventType}
	if change.Kind == mutate.ChannelAttribute {
		ev.AttributeName = change.AttributeName
		ev.OldValue = change.OldValue
		ev.NewValue = change.NewValue
	}
	if !r.Dispatch(key.target, ev) || !def.Once {
		return
	}
	if data, ok := r.targets[key]; ok {
		data.handlers = nil
		r.unbind(key, data)
	}
}

func (r *Registry) unbind(key targetKey, data *targetData) {
	if data.sub != nil {
		if err := data.sub.Dispose(); err != nil {
			r.logger.Error("event unbind", "type", key.eventType, "error", err)
		}
		data.sub = nil
	}
	delete(r.targets, key)
}
