// FilePath: internal/liveness/liveness.go

// Package liveness tracks which devices have been heard from recently.
// It is an explicit component with an injected clock and TTL rather
// than a module-level map, so it can be tested without sleeping.
package liveness

import (
	"sort"
	"sync"
	"time"
)

// Tracker records the last activity instant per device and answers
// online/offline questions against a fixed timeout.
type Tracker struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	timeout  time.Duration
	now      func() time.Time
}

// New creates a Tracker. now may be nil, defaulting to time.Now.
func New(timeout time.Duration, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		lastSeen: make(map[string]time.Time),
		timeout:  timeout,
		now:      now,
	}
}

// Touch records activity for a device. Any inbound message counts,
// heartbeats and sensor data alike.
func (t *Tracker) Touch(macAddress string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSeen[macAddress] = t.now()
}

// IsOnline reports whether the device was heard from within the
// timeout. Devices never seen are offline.
func (t *Tracker) IsOnline(macAddress string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	seen, ok := t.lastSeen[macAddress]
	if !ok {
		return false
	}
	return t.now().Sub(seen) < t.timeout
}

// LastSeen returns the last activity instant for a device.
func (t *Tracker) LastSeen(macAddress string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	seen, ok := t.lastSeen[macAddress]
	return seen, ok
}

// Online returns the sorted mac addresses currently within the
// timeout.
func (t *Tracker) Online() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()

	var out []string
	for mac, seen := range t.lastSeen {
		if now.Sub(seen) < t.timeout {
			out = append(out, mac)
		}
	}
	sort.Strings(out)
	return out
}
