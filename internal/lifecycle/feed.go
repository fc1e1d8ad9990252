package lifecycle

import "sync"

// Feed keeps a bounded ring of recent events per game and fans them out to
// live subscribers. Slow subscribers lose events rather than block the
// publisher; they can recover via ReplayAfter.
type Feed struct {
	mu      sync.Mutex
	cap     int
	buffers map[string]*gameBuffer
	closed  bool
}

type gameBuffer struct {
	nextSeq  int64
	events   []GameEvent
	watchers map[chan GameEvent]struct{}
}

func NewFeed(capPerGame int) *Feed {
	if capPerGame <= 0 {
		capPerGame = 500
	}
	return &Feed{cap: capPerGame, buffers: make(map[string]*gameBuffer)}
}

// Publish assigns the event's sequence number, stores it, and notifies
// watchers. Returns the stamped event.
func (f *Feed) Publish(ev GameEvent) GameEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ev
	}
	b := f.buffers[ev.GameID]
	if b == nil {
		b = &gameBuffer{watchers: make(map[chan GameEvent]struct{})}
		f.buffers[ev.GameID] = b
	}
	b.nextSeq++
	ev.Seq = b.nextSeq
	b.events = append(b.events, ev)
	if len(b.events) > f.cap {
		b.events = b.events[len(b.events)-f.cap:]
	}
	for ch := range b.watchers {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

// ReplayAfter returns buffered events for the game with Seq > after, oldest
// first. after=0 replays the whole buffer.
func (f *Feed) ReplayAfter(gameID string, after int64) []GameEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.buffers[gameID]
	if b == nil {
		return nil
	}
	out := make([]GameEvent, 0, len(b.events))
	for _, ev := range b.events {
		if ev.Seq > after {
			out = append(out, ev)
		}
	}
	return out
}

// Subscribe returns a channel of future events for the game and a cancel
// function. The channel is closed on cancel or feed shutdown.
func (f *Feed) Subscribe(gameID string) (<-chan GameEvent, func()) {
	ch := make(chan GameEvent, 32)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	b := f.buffers[gameID]
	if b == nil {
		b = &gameBuffer{watchers: make(map[chan GameEvent]struct{})}
		f.buffers[gameID] = b
	}
	b.watchers[ch] = struct{}{}
	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := b.watchers[ch]; ok {
			delete(b.watchers, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Close shuts every watcher channel; further publishes are dropped.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for _, b := range f.buffers {
		for ch := range b.watchers {
			close(ch)
			delete(b.watchers, ch)
		}
	}
}
