package mutate

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vango-dev/mutate/pkg/dom"
)

func TestStore(t *testing.T) {
	s := NewStore()
	a := dom.NewDocument()
	b := dom.NewDocument()

	_, ok := s.Get(a, "k")
	require.False(t, ok)
	require.False(t, s.Has(a))

	s.Set(a, "k", 1)
	s.Set(a, "k", 2)
	s.Set(a, "j", 3)
	s.Set(b, "k", 4)
	require.Equal(t, 3, s.Len())
	require.Equal(t, 2, s.Roots())

	v, ok := s.Get(a, "k")
	require.True(t, ok)
	require.Equal(t, 2, v)

	s.Delete(a, "k")
	require.True(t, s.Has(a))
	s.Delete(a, "missing")
	require.True(t, s.Has(a))
	s.Delete(a, "j")
	require.False(t, s.Has(a))
	require.Equal(t, 1, s.Roots())

	v, ok = s.Get(b, "k")
	require.True(t, ok)
	require.Equal(t, 4, v)
}

func TestStoreLoad(t *testing.T) {
	s := NewStore()
	doc := dom.NewDocument()

	calls := 0
	create := func() *rootListeners {
		calls++
		return &rootListeners{}
	}
	first := load(s, doc, rootListenersKey(ChannelRemoval), create)
	second := load(s, doc, rootListenersKey(ChannelRemoval), create)
	require.Same(t, first, second)
	require.Equal(t, 1, calls)

	got, ok := lookup[*rootListeners](s, doc, rootListenersKey(ChannelRemoval))
	require.True(t, ok)
	require.Same(t, first, got)

	_, ok = lookup[*rootListeners](s, doc, rootListenersKey(ChannelInsertion))
	require.False(t, ok)
}

func TestSwitch(t *testing.T) {
	sw := NewSwitch(nil)
	require.Nil(t, sw.Get())

	var got []Capability
	var second *Subscription
	first := sw.OnChange(func(c Capability) {
		got = append(got, c)
		// Removing a listener during notification does not skip it.
		if second != nil && !second.Disposed() {
			require.NoError(t, second.Dispose())
		}
	})
	calls := 0
	second = sw.OnChange(func(Capability) { calls++ })

	c := &countingCapability{}
	sw.Set(c)
	require.Same(t, c, sw.Get())
	require.Equal(t, 1, calls)
	require.Len(t, got, 1)

	sw.Set(nil)
	require.Equal(t, 1, calls)
	require.Len(t, got, 2)
	require.Nil(t, got[1])

	require.NoError(t, first.Dispose())
	require.Error(t, first.Dispose())
}

func TestChannelString(t *testing.T) {
	tests := []struct {
		ch   Channel
		want string
	}{
		{ChannelInsertion, "insertion"},
		{ChannelRemoval, "removal"},
		{ChannelAttribute, "attribute"},
		{Channel(9), "unknown"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.ch.String())
	}
	require.Equal(t, "flushing", StateFlushing.String())
}

func TestUnknownChannel(t *testing.T) {
	e, q, doc := newTestEngine(t, WithDedupe(Channel(0), false), WithDedupe(Channel(7), true))
	_, err := e.OnInsertion(doc.DocumentElement(), func(ChangeEvent) {})
	require.NoError(t, err)
	e.DispatchInsertion(doc.Body(), nil)

	for _, ch := range []Channel{0, 4, 255} {
		require.Equal(t, StateIdle, e.State(ch))
		require.Equal(t, 0, e.Pending(ch))
		require.Equal(t, 0, e.Observers(doc, ch))
	}
	require.Equal(t, StateAccumulating, e.State(ChannelInsertion))
	require.Equal(t, 1, e.Pending(ChannelInsertion))
	q.Drain()
}
