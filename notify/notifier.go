// Package notify abstracts the cross-instance change signal that the
// browser original implemented with localStorage storage events. Any pub/sub
// primitive can satisfy it; the default implementation is Watermill's
// in-process gochannel.
package notify

import "context"

// Topics used by the application.
const (
	TopicSettingsUpdated = "admin_settings_updated"
)

// Notifier delivers small change signals between application instances.
// Delivery is best-effort: a lost signal is corrected by the next periodic
// sync tick.
type Notifier interface {
	Publish(topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
	Close() error
}
