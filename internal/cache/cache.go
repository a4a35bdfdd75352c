// Package cache implements the generic content-addressed cache behind the
// renderer's outline, bitmap and composite caches (there is no font cache).
// Each cache maps a hashable key to a value produced on first
// access by a construct callback, and retains the value under a reference
// count until it is trimmed by an LRU cut.
//
// The shape (get-or-construct, explicit Reset-on-reuse) follows
// internal/lossless's ColorCache; the eviction order is the idiomatic
// stdlib container/list LRU, since the pack carries no ready-made LRU
// cache to ground that part on directly.
package cache

import "container/list"

// Sizer lets a value report how many bytes (or, for count-bounded caches,
// how many units) it contributes to the cache's aggregate size.
type Sizer interface {
	CacheSize() int64
}

// Construct builds the value for a miss on key. It returns the value and
// whether construction succeeded; a false ok marks the value invalid
// exactly as specified in §4.1 and §7 ("construct may mark a value
// invalid; callers treat invalid exactly as missing data").
type Construct[K comparable, V Sizer] func(key K) (V, bool)

type entry[K comparable, V Sizer] struct {
	key      K
	value    V
	valid    bool
	refs     int
	listElem *list.Element
}

// Cache is a generic content-addressed cache with construct-on-miss
// semantics, manual reference counting, and LRU-ordered eviction.
//
// Cache is not safe for concurrent use; the renderer that owns it runs
// single-threaded per §5.
type Cache[K comparable, V Sizer] struct {
	construct Construct[K, V]
	entries   map[K]*entry[K, V]
	order     *list.List // front = most recently used
	size      int64
	byCount   bool // when true, Cut bounds entry count rather than byte size
}

// NewCache creates a cache whose aggregate footprint is measured by summed
// V.CacheSize(). Used for the bitmap and composite caches (§4.1).
func NewCache[K comparable, V Sizer](construct Construct[K, V]) *Cache[K, V] {
	return &Cache[K, V]{
		construct: construct,
		entries:   make(map[K]*entry[K, V]),
		order:     list.New(),
	}
}

// NewCountBoundedCache creates a cache whose Cut bounds the number of
// entries rather than their summed size. Used for the outline cache
// (§4.1: "the outline cache is bounded by count").
func NewCountBoundedCache[K comparable, V Sizer](construct Construct[K, V]) *Cache[K, V] {
	c := NewCache(construct)
	c.byCount = true
	return c
}

// Get returns the value for key, constructing it on miss. The returned
// Ref must eventually be released via DecRef. A value that failed
// construction (ok=false from the Construct callback) is surfaced via
// Ref.Valid=false; the cache still tracks it so repeated misses against
// the same key don't re-run construction.
type Ref[V any] struct {
	Value V
	Valid bool
}

func (c *Cache[K, V]) Get(key K) Ref[V] {
	return c.getOrConstruct(key, c.construct)
}

// GetOrConstruct behaves like Get but uses construct in place of the
// cache's own Construct callback. It serves callers (e.g. the composite
// cache, §4.6.2) whose construction logic depends on data that isn't
// reconstructible from the key alone — the key there is a content digest
// of the run's inputs, and the inputs themselves must be supplied by the
// caller at lookup time rather than re-derived from the digest.
func (c *Cache[K, V]) GetOrConstruct(key K, construct Construct[K, V]) Ref[V] {
	return c.getOrConstruct(key, construct)
}

func (c *Cache[K, V]) getOrConstruct(key K, construct Construct[K, V]) Ref[V] {
	if e, ok := c.entries[key]; ok {
		c.order.MoveToFront(e.listElem)
		return Ref[V]{Value: e.value, Valid: e.valid}
	}

	value, ok := construct(key)
	e := &entry[K, V]{key: key, value: value, valid: ok}
	e.listElem = c.order.PushFront(e)
	c.entries[key] = e
	if ok {
		if c.byCount {
			c.size++
		} else {
			c.size += value.CacheSize()
		}
	}
	return Ref[V]{Value: value, Valid: ok}
}

// IncRef increments the reference count for key. It is a no-op if key is
// not present (e.g. the value failed construction and was never really
// "live").
func (c *Cache[K, V]) IncRef(key K) {
	if e, ok := c.entries[key]; ok {
		e.refs++
	}
}

// DecRef decrements the reference count for key. Entries at refs<=0 remain
// in the cache (they are merely eligible for eviction by Cut); DecRef never
// evicts directly, matching §4.1 ("eviction only retires unreferenced
// entries") which happens lazily at Cut time.
func (c *Cache[K, V]) DecRef(key K) {
	if e, ok := c.entries[key]; ok && e.refs > 0 {
		e.refs--
	}
}

// Cut evicts least-recently-used, unreferenced entries until the
// aggregate size (bytes, or count for count-bounded caches) is <= maxSize.
func (c *Cache[K, V]) Cut(maxSize int64) {
	for c.size > maxSize {
		elem := c.order.Back()
		evicted := false
		for elem != nil {
			e := elem.Value.(*entry[K, V])
			if e.refs <= 0 {
				c.order.Remove(elem)
				delete(c.entries, e.key)
				if e.valid {
					if c.byCount {
						c.size--
					} else {
						c.size -= e.value.CacheSize()
					}
				}
				evicted = true
				break
			}
			elem = elem.Prev()
		}
		if !evicted {
			return // every remaining entry is still referenced
		}
	}
}

// Len reports the number of live entries, for tests.
func (c *Cache[K, V]) Len() int { return len(c.entries) }

// Size reports the current aggregate size (bytes, or count).
func (c *Cache[K, V]) Size() int64 { return c.size }
