package mutate

import (
	"log/slog"

	"github.com/vango-dev/mutate/pkg/dom"
)

// observation is one shared native observer of a target.
type observation struct {
	target    *dom.Node
	key       Key
	options   dom.ObserveOptions
	handler   func([]dom.MutationRecord)
	observer  Observer
	count     int
	offChange *Subscription
}

func (o *observation) connect(c Capability) {
	if c == nil {
		return
	}
	o.observer = c.NewObserver(o.handler)
	o.observer.Observe(o.target, o.options)
}

func (o *observation) disconnect() {
	if o.observer != nil {
		o.observer.Disconnect()
		o.observer = nil
	}
}

// lifecycle reference counts observations so that every listener on the
// same (target, key) shares one native observer.
type lifecycle struct {
	store   *Store
	sw      *Switch
	logger  *slog.Logger
	metrics *Metrics
}

// acquire starts or joins the observation of target under key and returns
// its release. Release is idempotent.
func (l *lifecycle) acquire(target *dom.Node, key Key, opts dom.ObserveOptions, handler func([]dom.MutationRecord)) func() {
	scope := scopeOf(target)
	obs := load(l.store, scope, key, func() *observation {
		return &observation{target: target, key: key, options: opts, handler: handler}
	})
	obs.count++
	if obs.count == 1 {
		obs.connect(l.sw.Get())
		obs.offChange = l.sw.OnChange(func(c Capability) {
			obs.disconnect()
			obs.connect(c)
			l.logger.Debug("observation reconnected", "key", string(key), "target", target.String(), "native", c != nil)
		})
		l.metrics.handleOpened(key)
		l.logger.Debug("observation started", "key", string(key), "target", target.String(), "native", obs.observer != nil)
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		obs.count--
		if obs.count > 0 {
			return
		}
		obs.disconnect()
		_ = obs.offChange.Dispose()
		l.store.Delete(scope, key)
		l.metrics.handleClosed(key)
		l.logger.Debug("observation stopped", "key", string(key), "target", target.String())
	}
}

// count returns the number of holders of the observation under (scope, key).
func (l *lifecycle) count(scope *dom.Node, key Key) int {
	obs, ok := lookup[*observation](l.store, scope, key)
	if !ok {
		return 0
	}
	return obs.count
}
