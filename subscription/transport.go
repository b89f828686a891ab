package subscription

import (
	"github.com/pkg/errors"

	"go.viam.com/viz/wire"
)

// Subscription failure reasons. They surface through component status and
// recover automatically once connectivity returns.
var (
	ErrNotConnected         = errors.New("transport not connected")
	ErrEmptyTopic           = errors.New("no topic configured")
	ErrUnknownComponentType = errors.New("component type has no wire message type mapping")
)

// topicPlaceholder is the unconfigured-topic sentinel some UIs ship in
// freshly created components.
const topicPlaceholder = "<topic>"

// Transport is the connection collaborator that physically delivers
// messages. The core never opens sockets itself.
type Transport interface {
	// Connected reports whether the underlying connection is usable.
	Connected() bool
	// Subscribe opens a topic subscription. onMessage is invoked for every
	// arriving payload, onError for transport-level failures.
	Subscribe(topic, wireType string, queueSize int, onMessage func(wire.Envelope), onError func(error)) error
	// Unsubscribe releases a topic subscription. Unsubscribing an unknown
	// topic is a no-op.
	Unsubscribe(topic string) error
}
