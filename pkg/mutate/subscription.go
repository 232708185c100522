package mutate

import "sync/atomic"

// Subscription is the handle returned by every subscribe call.
type Subscription struct {
	name     string
	dispose  func()
	disposed atomic.Bool
}

func newSubscription(name string, dispose func()) *Subscription {
	return &Subscription{name: name, dispose: dispose}
}

// Dispose removes the subscription. Calling it more than once returns an
// error matching ErrDoubleDisposal; the second call has no other effect.
func (s *Subscription) Dispose() error {
	if !s.disposed.CompareAndSwap(false, true) {
		return doubleDisposalError(s.name)
	}
	if s.dispose != nil {
		s.dispose()
	}
	return nil
}

// Disposed reports whether Dispose has been called.
func (s *Subscription) Disposed() bool {
	return s.disposed.Load()
}

// Name returns the name of the call that created the subscription.
func (s *Subscription) Name() string {
	return s.name
}
