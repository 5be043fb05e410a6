package state

import "sync"

// feed fans the latest value out to subscribers. A slow subscriber skips
// intermediate values and only ever sees the newest one.
type feed[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	next   int
	closed bool
}

func newFeed[T any]() *feed[T] {
	return &feed[T]{subs: make(map[int]chan T)}
}

// subscribe registers a channel primed with the value current returns. current
// runs under the feed lock so no publish falls between the two.
func (f *feed[T]) subscribe(current func() T) (<-chan T, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan T, 1)
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- current()
	id := f.next
	f.next++
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if c, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(c)
			}
		})
	}
}

// publishWith stores and sends a value while holding the feed lock, so
// concurrent publishers are seen by subscribers in the order they stored.
func (f *feed[T]) publishWith(store func() T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := store()
	for _, ch := range f.subs {
		select {
		case ch <- v:
		default:
			// replace the stale value nobody has read yet
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

func (f *feed[T]) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}
