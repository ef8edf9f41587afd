package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Errorf("null cache must always miss (hit=%v, err=%v)", hit, err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "goblin", []byte("<html>"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "goblin")
	if err != nil || !hit {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	if string(data) != "<html>" {
		t.Errorf("data = %q", data)
	}

	if err := c.Delete(ctx, "goblin"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "goblin"); hit {
		t.Error("deleted key still present")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), -time.Second); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
}

func TestFileCacheMissingKey(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(context.Background(), "nope"); err != nil || hit {
		t.Errorf("hit=%v err=%v", hit, err)
	}
	if err := c.Delete(context.Background(), "nope"); err != nil {
		t.Errorf("deleting a missing key should be a no-op: %v", err)
	}
}

func TestRenderKeyDistinguishesOptions(t *testing.T) {
	hash := Hash([]byte(`{"name":"Goblin"}`))

	base := RenderKey(hash, RenderKeyOpts{Format: "html", Layout: "Basic 5e", Columns: 2})
	tests := []struct {
		name string
		opts RenderKeyOpts
	}{
		{"different format", RenderKeyOpts{Format: "json", Layout: "Basic 5e", Columns: 2}},
		{"different layout", RenderKeyOpts{Format: "html", Layout: "Compact", Columns: 2}},
		{"different columns", RenderKeyOpts{Format: "html", Layout: "Basic 5e", Columns: 3}},
		{"different width", RenderKeyOpts{Format: "html", Layout: "Basic 5e", Columns: 2, ColumnWidth: "320px"}},
	}
	for _, tt := range tests {
		if RenderKey(hash, tt.opts) == base {
			t.Errorf("%s: key collision", tt.name)
		}
	}

	if RenderKey(hash, RenderKeyOpts{Format: "html", Layout: "Basic 5e", Columns: 2}) != base {
		t.Error("identical options must produce identical keys")
	}
	if RenderKey(Hash([]byte("other")), RenderKeyOpts{Format: "html", Layout: "Basic 5e", Columns: 2}) == base {
		t.Error("different records must produce different keys")
	}
}

func TestImportKey(t *testing.T) {
	a := ImportKey("5etools", "abc")
	b := ImportKey("tetracube", "abc")
	if a == b {
		t.Error("importer must be part of the key")
	}
}

func TestHashStable(t *testing.T) {
	if Hash([]byte("x")) != Hash([]byte("x")) {
		t.Error("hash not deterministic")
	}
	if len(Hash([]byte("x"))) != 64 {
		t.Errorf("hash length = %d", len(Hash([]byte("x"))))
	}
}
