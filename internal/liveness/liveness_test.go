// FilePath: internal/liveness/liveness_test.go
package liveness

import (
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestOnlineWithinTimeout(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	tracker := New(15*time.Second, clock.Now)

	tracker.Touch("aa:01")
	if !tracker.IsOnline("aa:01") {
		t.Error("device should be online right after a touch")
	}

	clock.Advance(14 * time.Second)
	if !tracker.IsOnline("aa:01") {
		t.Error("device should still be online inside the timeout")
	}

	clock.Advance(2 * time.Second)
	if tracker.IsOnline("aa:01") {
		t.Error("device should be offline after the timeout elapses")
	}
}

func TestNeverSeenIsOffline(t *testing.T) {
	tracker := New(15*time.Second, nil)
	if tracker.IsOnline("aa:99") {
		t.Error("unknown device must be offline")
	}
	if _, ok := tracker.LastSeen("aa:99"); ok {
		t.Error("unknown device must have no last-seen instant")
	}
}

func TestOnlineListSortedAndFiltered(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	tracker := New(15*time.Second, clock.Now)

	tracker.Touch("bb:02")
	tracker.Touch("aa:01")
	clock.Advance(20 * time.Second)
	tracker.Touch("cc:03")

	online := tracker.Online()
	if len(online) != 1 || online[0] != "cc:03" {
		t.Fatalf("online = %v, want [cc:03]", online)
	}

	tracker.Touch("aa:01")
	online = tracker.Online()
	if len(online) != 2 || online[0] != "aa:01" || online[1] != "cc:03" {
		t.Fatalf("online = %v, want [aa:01 cc:03]", online)
	}
}
