package mutate

import (
	"github.com/cockroachdb/redact"
	"github.com/vango-dev/mutate/pkg/dom"
)

// Channel identifies one of the independent dispatch pipelines.
type Channel uint8

const (
	ChannelInsertion Channel = iota + 1
	ChannelRemoval
	ChannelAttribute
)

// channels lists every channel in dispatch-table order.
var channels = [...]Channel{ChannelInsertion, ChannelRemoval, ChannelAttribute}

// String returns the string representation of the Channel.
func (c Channel) String() string {
	switch c {
	case ChannelInsertion:
		return "insertion"
	case ChannelRemoval:
		return "removal"
	case ChannelAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// index returns the position of c in channels.
func (c Channel) index() (int, bool) {
	i := int(c) - 1
	return i, i >= 0 && i < len(channels)
}

// SafeValue marks Channel as safe to include in redacted messages.
func (Channel) SafeValue() {}

var _ redact.SafeValue = Channel(0)

// ChangeEvent describes one delivered change.
type ChangeEvent struct {
	Kind   Channel
	Target *dom.Node

	// AttributeName and OldValue are set for ChannelAttribute. NewValue is
	// the attribute's value when the event is delivered.
	AttributeName string
	OldValue      string
	NewValue      string
}

// Listener receives change events.
type Listener func(ChangeEvent)
