package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Event kinds published by the host.
const (
	TimerSignaled = "timer.signaled"
	TimerState    = "timer.state"
	TaskState     = "task.state"
	TaskRemoved   = "task.removed"
	ConfigApplied = "config.applied"
	ReportWritten = "report.written"
)

// Event is an in-memory notification. Data should be JSON-serializable since
// the storage sink persists it as-is.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data,omitempty"`
}

// Bus fans events out to subscribers.
//
// Publish never blocks: a subscriber whose buffer is full misses the event.
type Bus interface {
	Publish(e Event)
	Subscribe(buffer int) (ch <-chan Event, unsubscribe func())
	Dropped() uint64
}

func New() Bus {
	return &memBus{subs: map[uint64]chan Event{}}
}

type memBus struct {
	// mu is read-held for the whole fanout so unsubscribe (write-held)
	// cannot close a channel mid-send.
	mu      sync.RWMutex
	subs    map[uint64]chan Event
	seq     atomic.Uint64
	dropped atomic.Uint64
}

func (b *memBus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

func (b *memBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
}

// Dropped counts deliveries skipped because a subscriber was full.
func (b *memBus) Dropped() uint64 { return b.dropped.Load() }
