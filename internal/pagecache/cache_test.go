package pagecache

import (
	"fmt"
	"sync"
	"testing"
)

func TestGetPut(t *testing.T) {
	c := New()

	if _, ok := c.Get("doc1", 1); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("doc1", 1, "# Page 1")

	content, ok := c.Get("doc1", 1)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if content != "# Page 1" {
		t.Errorf("got %q, want %q", content, "# Page 1")
	}

	// Repeated gets return identical content.
	for i := 0; i < 3; i++ {
		got, _ := c.Get("doc1", 1)
		if got != content {
			t.Fatalf("get %d returned different content", i)
		}
	}
}

func TestPutOverwrites(t *testing.T) {
	c := New()
	c.Put("doc1", 1, "first")
	c.Put("doc1", 1, "second")

	content, _ := c.Get("doc1", 1)
	if content != "second" {
		t.Errorf("last writer should win, got %q", content)
	}
	if c.Size() != 1 {
		t.Errorf("overwrite should not grow cache, size=%d", c.Size())
	}
}

func TestKeysAreComposite(t *testing.T) {
	c := New()
	c.Put("doc1", 1, "a")
	c.Put("doc1", 2, "b")
	c.Put("doc2", 1, "c")

	if c.Size() != 3 {
		t.Fatalf("expected 3 entries, got %d", c.Size())
	}
	if content, _ := c.Get("doc2", 1); content != "c" {
		t.Errorf("doc2 page 1: got %q", content)
	}
}

func TestInvalidateScopedToDocument(t *testing.T) {
	c := New()
	c.Put("doc1", 1, "a")
	c.Put("doc1", 2, "b")
	c.Put("doc2", 1, "c")

	removed := c.Invalidate("doc1")
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if _, ok := c.Get("doc1", 1); ok {
		t.Error("doc1 page 1 should be gone")
	}
	if _, ok := c.Get("doc2", 1); !ok {
		t.Error("doc2 page 1 should survive")
	}
	if c.Size() != 1 {
		t.Errorf("expected size 1, got %d", c.Size())
	}
}

func TestInvalidateUnknownDocument(t *testing.T) {
	c := New()
	c.Put("doc1", 1, "a")

	if removed := c.Invalidate("nope"); removed != 0 {
		t.Errorf("expected 0 removed, got %d", removed)
	}
	if c.Size() != 1 {
		t.Errorf("expected size 1, got %d", c.Size())
	}
}

func TestInvalidateAll(t *testing.T) {
	c := New()
	c.Put("doc1", 1, "a")
	c.Put("doc1", 2, "b")
	c.Put("doc2", 7, "c")

	removed := c.InvalidateAll()
	if removed != 3 {
		t.Errorf("expected prior count 3, got %d", removed)
	}
	if c.Size() != 0 {
		t.Errorf("expected empty cache, size=%d", c.Size())
	}
}

func TestSizeMonotonicUnderPuts(t *testing.T) {
	c := New()
	prev := 0
	for i := 1; i <= 50; i++ {
		c.Put("doc", i%10+1, fmt.Sprintf("content %d", i))
		if c.Size() < prev {
			t.Fatalf("size decreased from %d to %d without invalidation", prev, c.Size())
		}
		prev = c.Size()
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for p := 1; p <= 100; p++ {
				c.Put("doc", p, fmt.Sprintf("writer %d", n))
				c.Get("doc", p)
			}
		}(i)
	}
	wg.Wait()

	if c.Size() != 100 {
		t.Errorf("expected 100 entries, got %d", c.Size())
	}
}
