package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if v, err := c.Get(ctx, "k"); err != nil || string(v) != "v" {
		t.Fatalf("get before expiry: %q %v", v, err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound after expiry, got %v", err)
	}
	if _, err := c.Get(ctx, "forever"); err != nil {
		t.Fatalf("zero ttl entry expired: %v", err)
	}
}

func TestJSONHelpersAndDelete(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	type item struct{ Title string }
	if err := SetJSON(ctx, c, "a", []item{{Title: "Swagbucks"}}, time.Minute); err != nil {
		t.Fatal(err)
	}
	var got []item
	if err := GetJSON(ctx, c, "a", &got); err != nil || len(got) != 1 || got[0].Title != "Swagbucks" {
		t.Fatalf("GetJSON = %+v, %v", got, err)
	}

	_ = c.Delete(ctx, "a", "missing")
	if c.Len() != 0 {
		t.Fatalf("len after delete = %d", c.Len())
	}
	if err := GetJSON(ctx, c, "a", &got); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
