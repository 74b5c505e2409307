package cache

import (
	"sync"
	"testing"
	"time"

	"taskbuddy-api/internal/models"
)

func TestMemoryTaskLists_SetGet_NoTTL(t *testing.T) {
	c := NewMemoryTaskLists(0)
	c.Set("u-1", []models.Task{{ID: "t-1", Title: "a"}}, 0)
	got, ok := c.Get("u-1")
	if !ok || len(got) != 1 || got[0].ID != "t-1" {
		t.Fatalf("expected hit with one task, got ok=%v tasks=%v", ok, got)
	}
	if c.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", c.Len())
	}
}

func TestMemoryTaskLists_ReturnsCopies(t *testing.T) {
	c := NewMemoryTaskLists(0)
	in := []models.Task{{ID: "t-1", Title: "a", Order: models.IntPtr(0)}}
	c.Set("u-1", in, 0)
	in[0].Title = "mutated"

	got, _ := c.Get("u-1")
	if got[0].Title != "a" {
		t.Fatalf("cache shares memory with caller input")
	}
	got[0].Title = "mutated"
	*got[0].Order = 7

	again, _ := c.Get("u-1")
	if again[0].Title != "a" || *again[0].Order != 0 {
		t.Fatalf("cache shares memory with returned snapshot")
	}
}

func TestMemoryTaskLists_TTL_Expiry(t *testing.T) {
	c := NewMemoryTaskLists(time.Second)

	// Freeze time via now indirection
	base := time.Now()
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })

	c.Set("u-1", []models.Task{{ID: "t-1"}}, time.Second)
	if _, ok := c.Get("u-1"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	base = base.Add(2 * time.Second)
	if _, ok := c.Get("u-1"); ok {
		t.Fatalf("expected miss after expiry")
	}
	if c.Update("u-1", func(ts []models.Task) []models.Task { return ts }) {
		t.Fatalf("expected Update to skip an expired entry")
	}
	c.PurgeExpired()
	if c.Len() != 0 {
		t.Fatalf("expected Len=0 after purge, got %d", c.Len())
	}
}

func TestMemoryTaskLists_Update_Delete(t *testing.T) {
	c := NewMemoryTaskLists(0)
	if c.Update("u-1", func(ts []models.Task) []models.Task { return ts }) {
		t.Fatalf("expected Update on missing user to report false")
	}
	c.Set("u-1", nil, 0)
	ok := c.Update("u-1", func(ts []models.Task) []models.Task {
		return append(ts, models.Task{ID: "t-2"})
	})
	if !ok {
		t.Fatalf("expected Update to succeed")
	}
	got, _ := c.Get("u-1")
	if len(got) != 1 || got[0].ID != "t-2" {
		t.Fatalf("unexpected list after update: %v", got)
	}
	c.Delete("u-1")
	if _, ok := c.Get("u-1"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestMemoryTaskLists_Concurrent(t *testing.T) {
	c := NewMemoryTaskLists(0)
	c.Set("u-1", nil, 0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update("u-1", func(ts []models.Task) []models.Task {
				return append(ts, models.Task{ID: "x"})
			})
			_, _ = c.Get("u-1")
		}()
	}
	wg.Wait()
	got, _ := c.Get("u-1")
	if len(got) != 50 {
		t.Fatalf("expected 50 tasks, got %d", len(got))
	}
}
