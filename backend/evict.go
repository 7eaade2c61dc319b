package backend

import "container/list"

// Policy selects which key the in-memory backend removes when it is full.
// The policies mirror the Redis allkeys-lru, allkeys-lfu and FIFO-style
// maxmemory behaviors.
type Policy int

const (
	// LRU evicts the least recently used key.
	LRU Policy = iota
	// LFU evicts the least frequently used key.
	LFU
	// FIFO evicts the oldest key.
	FIFO
)

// evictor tracks access order for the memory backend's bounded mode.
type evictor interface {
	onAccess(key string)
	onInsert(key string)
	evict() string
	remove(key string)
}

// Compile-time interface assertions.
var (
	_ evictor = (*recencyEvictor)(nil)
	_ evictor = (*frequencyEvictor)(nil)
)

// recencyEvictor covers both LRU and FIFO: the only difference is whether
// an access moves the key to the front of the order list.
type recencyEvictor struct {
	moveOnAccess bool
	order        *list.List
	items        map[string]*list.Element
}

func newRecencyEvictor(moveOnAccess bool) *recencyEvictor {
	return &recencyEvictor{
		moveOnAccess: moveOnAccess,
		order:        list.New(),
		items:        make(map[string]*list.Element),
	}
}

func (e *recencyEvictor) onAccess(key string) {
	if !e.moveOnAccess {
		return
	}
	if elem, ok := e.items[key]; ok {
		e.order.MoveToFront(elem)
	}
}

func (e *recencyEvictor) onInsert(key string) {
	if elem, ok := e.items[key]; ok {
		if e.moveOnAccess {
			e.order.MoveToFront(elem)
		}
		return
	}
	e.items[key] = e.order.PushFront(key)
}

func (e *recencyEvictor) evict() string {
	elem := e.order.Back()
	if elem == nil {
		return ""
	}
	key := elem.Value.(string)
	e.order.Remove(elem)
	delete(e.items, key)
	return key
}

func (e *recencyEvictor) remove(key string) {
	if elem, ok := e.items[key]; ok {
		e.order.Remove(elem)
		delete(e.items, key)
	}
}

// frequencyEvictor implements LFU with a plain frequency map. Eviction
// scans for the minimum, which is fine at the sizes a dev backend sees.
// Ties break on insertion order via a generation counter.
type frequencyEvictor struct {
	freq map[string]int64
	gen  map[string]int64
	next int64
}

func newFrequencyEvictor() *frequencyEvictor {
	return &frequencyEvictor{
		freq: make(map[string]int64),
		gen:  make(map[string]int64),
	}
}

func (e *frequencyEvictor) onAccess(key string) {
	if _, ok := e.freq[key]; ok {
		e.freq[key]++
	}
}

func (e *frequencyEvictor) onInsert(key string) {
	if _, ok := e.freq[key]; ok {
		e.freq[key]++
		return
	}
	e.freq[key] = 1
	e.gen[key] = e.next
	e.next++
}

func (e *frequencyEvictor) evict() string {
	var (
		victim string
		found  bool
	)
	for key, f := range e.freq {
		if !found || f < e.freq[victim] || (f == e.freq[victim] && e.gen[key] < e.gen[victim]) {
			victim = key
			found = true
		}
	}
	if !found {
		return ""
	}
	delete(e.freq, victim)
	delete(e.gen, victim)
	return victim
}

func (e *frequencyEvictor) remove(key string) {
	delete(e.freq, key)
	delete(e.gen, key)
}

func newEvictor(p Policy) evictor {
	switch p {
	case LFU:
		return newFrequencyEvictor()
	case FIFO:
		return newRecencyEvictor(false)
	default:
		return newRecencyEvictor(true)
	}
}
