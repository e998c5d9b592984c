package dedup

import (
	"fmt"
	"sync"
	"testing"
)

func TestSeenAndRecord(t *testing.T) {
	c := New(10)

	if c.Seen(1, "a") {
		t.Error("fresh cache should not have seen anything")
	}
	c.Record(1, "a")
	if !c.Seen(1, "a") {
		t.Error("expected activity to be seen after Record")
	}
	if c.Seen(2, "a") {
		t.Error("chat histories must be independent")
	}
}

func TestEvictionOldestFirst(t *testing.T) {
	c := New(3)
	for _, id := range []string{"a", "b", "c"} {
		c.Record(1, id)
	}
	c.Record(1, "d")

	if c.Seen(1, "a") {
		t.Error("oldest entry should have been evicted")
	}
	for _, id := range []string{"b", "c", "d"} {
		if !c.Seen(1, id) {
			t.Errorf("expected %s to still be present", id)
		}
	}
}

func TestRecordDuplicateDoesNotEvict(t *testing.T) {
	c := New(2)
	c.Record(1, "a")
	c.Record(1, "b")
	c.Record(1, "b")
	c.Record(1, "b")

	if !c.Seen(1, "a") {
		t.Error("duplicate records must not push out older entries")
	}
}

func TestClear(t *testing.T) {
	c := New(10)
	c.Record(1, "a")
	c.Record(2, "b")
	c.Clear(1)

	if c.Seen(1, "a") {
		t.Error("expected chat 1 history cleared")
	}
	if !c.Seen(2, "b") {
		t.Error("clearing one chat must not touch another")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(100)
	var wg sync.WaitGroup
	for chat := int64(0); chat < 8; chat++ {
		wg.Add(1)
		go func(chat int64) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("act-%d", i)
				c.Record(chat, id)
				c.Seen(chat, id)
			}
		}(chat)
	}
	wg.Wait()

	for chat := int64(0); chat < 8; chat++ {
		if !c.Seen(chat, "act-199") {
			t.Errorf("chat %d lost its most recent entry", chat)
		}
	}
}
