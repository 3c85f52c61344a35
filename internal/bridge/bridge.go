package bridge

import (
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
)

// DefaultBuffer is the event buffer size. At the 60Hz tick rate a full
// buffer means the consumer is more than a second behind, at which point
// dropping is the right call: the next tick supersedes anything queued.
const DefaultBuffer = 64

// Bridge carries events in both directions without acknowledgment.
// Publish and Submit never block; when a buffer is full the event is
// dropped and counted.
type Bridge struct {
	outbound chan Event
	inbound  chan Event

	validate *validator.Validate
	logger   *log.Logger

	droppedOut atomic.Int64
	droppedIn  atomic.Int64
	closed     atomic.Bool
}

// New creates a bridge with the given buffer size per direction; sizes
// below one use DefaultBuffer.
func New(buffer int, logger *log.Logger) *Bridge {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Bridge{
		outbound: make(chan Event, buffer),
		inbound:  make(chan Event, buffer),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Publish sends an outbound event toward the UI. Invalid payloads are
// dropped with a warning; malformed data must not reach the coordinator.
func (b *Bridge) Publish(ev Event) {
	b.send(b.outbound, ev, &b.droppedOut, "outbound")
}

// Submit sends an inbound event (a seek request) toward the engine.
func (b *Bridge) Submit(ev Event) {
	b.send(b.inbound, ev, &b.droppedIn, "inbound")
}

// Events is the outbound stream consumed by the UI.
func (b *Bridge) Events() <-chan Event {
	return b.outbound
}

// Inbound is the seek-request stream consumed by the session.
func (b *Bridge) Inbound() <-chan Event {
	return b.inbound
}

// Dropped returns how many outbound and inbound events were discarded.
func (b *Bridge) Dropped() (outbound, inbound int64) {
	return b.droppedOut.Load(), b.droppedIn.Load()
}

// Close tears the bridge down. Events published after Close are ignored.
func (b *Bridge) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.outbound)
		close(b.inbound)
	}
}

func (b *Bridge) send(ch chan Event, ev Event, dropped *atomic.Int64, direction string) {
	if b.closed.Load() {
		return
	}
	if err := b.validate.Struct(ev); err != nil {
		b.logger.Warn("dropping invalid bridge event",
			"direction", direction, "event", ev, "err", err)
		return
	}
	select {
	case ch <- ev:
	default:
		dropped.Add(1)
		b.logger.Warn("bridge buffer full, dropping event",
			"direction", direction, "event", ev, "dropped", dropped.Load())
	}
}
