// Package eventlog publishes picture-downloaded notifications, an
// observability add-on with no bearing on the decode pipeline itself.
package eventlog

import "time"

// Event describes one picture having been fetched and written to disk.
type Event struct {
	PictureIndex int
	Bytes        int
	Format       string
	At           time.Time
}

// Publisher sends an Event somewhere. Implementations must not block the
// caller indefinitely — a broker that never acknowledges should time out,
// not hang the decode loop.
type Publisher interface {
	Publish(event Event) error
}

// NoopPublisher is the default Publisher: every call succeeds without
// touching the network. Used whenever no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(Event) error { return nil }
