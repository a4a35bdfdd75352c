package cache

import "testing"

type intVal int

func (v intVal) CacheSize() int64 { return int64(v) }

func TestGetConstructsOnceAndReusesOnHit(t *testing.T) {
	calls := 0
	c := NewCache(func(key int) (intVal, bool) {
		calls++
		return intVal(key * 10), true
	})

	r1 := c.Get(5)
	r2 := c.Get(5)
	if !r1.Valid || !r2.Valid {
		t.Fatal("expected both gets to be valid")
	}
	if r1.Value != 50 || r2.Value != 50 {
		t.Fatalf("got values %v, %v, want 50, 50", r1.Value, r2.Value)
	}
	if calls != 1 {
		t.Fatalf("construct called %d times, want 1", calls)
	}
}

func TestInvalidConstructIsTreatedAsMiss(t *testing.T) {
	c := NewCache(func(key int) (intVal, bool) {
		return 0, false
	})
	r := c.Get(1)
	if r.Valid {
		t.Fatal("expected invalid ref for failed construction")
	}
}

func TestCutEvictsOnlyUnreferenced(t *testing.T) {
	c := NewCache(func(key int) (intVal, bool) { return intVal(key), true })

	c.Get(1) // size contribution 1
	c.IncRef(1)
	c.Get(2) // size contribution 2
	c.Get(3) // size contribution 3

	c.Cut(0)
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (only the referenced entry should survive)", c.Len())
	}
	r := c.Get(1)
	if !r.Valid || r.Value != 1 {
		t.Fatal("referenced entry 1 should still be present and valid")
	}
}

func TestCutEvictsLeastRecentlyUsedFirst(t *testing.T) {
	c := NewCache(func(key int) (intVal, bool) { return intVal(1), true })

	c.Get(1)
	c.Get(2)
	c.Get(3)
	c.Get(1) // touch 1, making 2 the LRU entry

	c.Cut(2)
	if _, ok := c.entries[2]; ok {
		t.Fatal("entry 2 should have been evicted as least-recently-used")
	}
	if _, ok := c.entries[1]; !ok {
		t.Fatal("entry 1 should have survived (recently touched)")
	}
}

func TestCountBoundedCacheBoundsByEntryCount(t *testing.T) {
	c := NewCountBoundedCache(func(key int) (intVal, bool) { return intVal(1000), true })
	for i := 0; i < 5; i++ {
		c.Get(i)
	}
	c.Cut(2)
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
}

func TestDecRefOnAbsentKeyIsNoop(t *testing.T) {
	c := NewCache(func(key int) (intVal, bool) { return intVal(key), true })
	c.DecRef(42) // must not panic
}
