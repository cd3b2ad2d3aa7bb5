package bot

import "sync"

// Tracker remembers the most recent image event seen in each room.
//
// Entries are created or overwritten on every image event and are never
// removed; the map grows by one entry per room for the life of the process.
// All methods are safe for concurrent use, so hosts that deliver events for
// the same room concurrently cannot lose updates.
type Tracker struct {
	mu     sync.RWMutex
	latest map[string]string
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{latest: make(map[string]string)}
}

// Observe records eventID as the latest image in roomID.
func (t *Tracker) Observe(roomID, eventID string) {
	t.mu.Lock()
	t.latest[roomID] = eventID
	t.mu.Unlock()
}

// Latest returns the latest image event in roomID.
func (t *Tracker) Latest(roomID string) (eventID string, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	eventID, ok = t.latest[roomID]
	return eventID, ok
}

// Len returns the number of rooms with a tracked image.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.latest)
}
