// Package signal carries peer change notifications between clients.
//
// A ChangeSignal exposes two observable values: whether the notification
// channel is connected and an opaque token that changes on every inbound
// notification. Updates wakes observers whenever either of them changes;
// it is coalescing, so several changes may be reported by one wake-up.
// Connections counts established connections, so an observer can tell that
// a reconnect happened even when the disconnect and the reconnect were
// folded into a single wake-up.
package signal

// ChangeSignal is the notification channel seen by the reconciliation engine.
type ChangeSignal interface {
	Connected() bool
	// Connections is the number of times the channel has connected.
	// It only grows.
	Connections() uint64
	LastToken() string
	// Send broadcasts a short text to peers. Delivery is best effort.
	Send(msg string)
	Updates() <-chan struct{}
}
