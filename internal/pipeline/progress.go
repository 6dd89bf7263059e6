package pipeline

import (
	"sync"
	"time"
)

// sessionBuffer bounds how many progress lines a session can hold before the
// broadcaster starts dropping; a stalled or absent reader never blocks a job.
const sessionBuffer = 100

// Broadcaster fans job progress lines out to ephemeral per-job sessions.
// Sessions live in memory only and disappear on restart; jobs run to
// completion whether or not anyone is listening.
type Broadcaster struct {
	mu       sync.RWMutex
	sessions map[string]chan string
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{sessions: make(map[string]chan string)}
}

// Register creates a session and returns its receive side. The channel is
// closed on Unregister, which is how readers learn the job is done.
func (b *Broadcaster) Register(sessionID string) <-chan string {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan string, sessionBuffer)
	b.sessions[sessionID] = ch
	return ch
}

// Attach returns the receive side of an existing session, or nil when the
// session is unknown or already reaped. Sessions expect a single reader.
func (b *Broadcaster) Attach(sessionID string) <-chan string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ch, ok := b.sessions[sessionID]
	if !ok {
		return nil
	}
	return ch
}

// Send delivers a line to a session without blocking. Lines sent to an
// unknown session or to a full buffer are dropped.
func (b *Broadcaster) Send(sessionID, message string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ch, ok := b.sessions[sessionID]
	if !ok {
		return
	}
	select {
	case ch <- message:
	default:
	}
}

// Unregister removes a session and closes its channel. Closing under the
// write lock is safe because Send holds the read lock for the duration of
// its send.
func (b *Broadcaster) Unregister(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.sessions[sessionID]; ok {
		delete(b.sessions, sessionID)
		close(ch)
	}
}

// ScheduleUnregister tears a session down after a grace period, giving a
// reader that connected late a chance to drain the buffered lines.
func (b *Broadcaster) ScheduleUnregister(sessionID string, delay time.Duration) {
	go func() {
		time.Sleep(delay)
		b.Unregister(sessionID)
	}()
}

// Len reports the number of live sessions.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}
