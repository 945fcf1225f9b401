package volume

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType says what happened to a volume between two inventory polls.
type EventType int

const (
	Added EventType = iota
	Removed
)

func (t EventType) String() string {
	if t == Added {
		return "added"
	}
	return "removed"
}

// Event is one observed inventory change.
type Event struct {
	Type   EventType
	Volume Volume
}

// Watcher polls an Enumerator and reports volumes appearing and
// disappearing. There is no OS notification hook here; a short polling
// interval is how device arrival is observed.
type Watcher struct {
	enum     Enumerator
	interval time.Duration
}

// NewWatcher returns a Watcher polling enum every interval.
func NewWatcher(enum Enumerator, interval time.Duration) *Watcher {
	return &Watcher{enum: enum, interval: interval}
}

// Watch starts polling until ctx is cancelled. The first successful poll is
// the baseline and emits nothing; every later one emits the diff, removals
// before additions. Failed polls keep the last snapshot so a transient
// query error does not report every volume as removed. The channel is
// closed when the watch ends.
func (w *Watcher) Watch(ctx context.Context) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		known, haveBaseline := w.poll(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			current, ok := w.poll(ctx)
			if !ok {
				continue
			}
			if haveBaseline {
				for _, ev := range diffSnapshots(known, current) {
					select {
					case events <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
			known, haveBaseline = current, true
		}
	}()

	return events
}

func (w *Watcher) poll(ctx context.Context) (map[string]Volume, bool) {
	vols, err := w.enum.Enumerate(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Msg("volume poll failed, keeping last snapshot")
		}
		return nil, false
	}
	snapshot := make(map[string]Volume, len(vols))
	for _, v := range vols {
		snapshot[v.DeviceID] = v
	}
	return snapshot, true
}

// diffSnapshots reports removals first, then additions. A device identifier
// reused for a different volume (label changed under the same designator)
// counts as both.
func diffSnapshots(prev, current map[string]Volume) []Event {
	var events []Event
	for id, old := range prev {
		now, ok := current[id]
		if !ok || now.Label != old.Label {
			events = append(events, Event{Type: Removed, Volume: old})
		}
	}
	for id, now := range current {
		old, ok := prev[id]
		if !ok || old.Label != now.Label {
			events = append(events, Event{Type: Added, Volume: now})
		}
	}
	return events
}
