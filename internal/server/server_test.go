package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pellig/statblock/pkg/cache"
	"github.com/pellig/statblock/pkg/monster"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func testServer(t *testing.T) *Server {
	t.Helper()
	b := NewBestiary()
	b.Add(monster.Monster{
		"name":  "Ancient Red Dragon",
		"size":  "Gargantuan",
		"type":  "dragon",
		"ac":    "22 (natural armor)",
		"hp":    "546 (28d20+252)",
		"speed": "40 ft., climb 40 ft., fly 80 ft.",
		"cr":    "24",
		"actions": []any{
			map[string]any{"name": "Bite", "desc": "Melee Weapon Attack: +17 to hit."},
		},
	})
	return New(Config{Bestiary: b, Logger: quietLogger()})
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, testServer(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestListCreatures(t *testing.T) {
	rec := get(t, testServer(t), "/creatures")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ancient-red-dragon") {
		t.Errorf("list missing slug: %s", rec.Body.String())
	}
}

func TestCreatureHTML(t *testing.T) {
	rec := get(t, testServer(t), "/creatures/ancient-red-dragon")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"Ancient Red Dragon", "546 (28d20+252)", "sb-column"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestCreatureJSON(t *testing.T) {
	rec := get(t, testServer(t), "/creatures/ancient-red-dragon?format=json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var doc struct {
		Layout  string             `json:"layout"`
		Columns [][]map[string]any `json:"columns"`
		PassID  string             `json:"passId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if doc.Layout != "Basic 5e" || doc.PassID == "" {
		t.Errorf("doc = %+v", doc)
	}
	if len(doc.Columns) == 0 {
		t.Error("no columns in response")
	}
}

func TestCreatureNotFound(t *testing.T) {
	rec := get(t, testServer(t), "/creatures/tarrasque")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "MONSTER_NOT_FOUND") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCreatureBadColumns(t *testing.T) {
	rec := get(t, testServer(t), "/creatures/ancient-red-dragon?columns=banana")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCreatureUnknownLayout(t *testing.T) {
	rec := get(t, testServer(t), "/creatures/ancient-red-dragon?layout=nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCreatureBadFormat(t *testing.T) {
	rec := get(t, testServer(t), "/creatures/ancient-red-dragon?format=pdf")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRenderUsesCache(t *testing.T) {
	b := NewBestiary()
	b.Add(monster.Monster{"name": "Goblin", "hp": "7 (2d6)"})
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := New(Config{Bestiary: b, Cache: c, Logger: quietLogger()})

	first := get(t, s, "/creatures/goblin")
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d", first.Code)
	}
	second := get(t, s, "/creatures/goblin")
	if second.Code != http.StatusOK {
		t.Fatalf("status = %d", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("cached response differs from rendered response")
	}
}

func TestLoadBestiary(t *testing.T) {
	dir := t.TempDir()
	good := `{"name": "Skeleton", "hp": "13 (2d8+4)"}`
	bad := `{"title": "not a creature"}`
	if err := os.WriteFile(filepath.Join(dir, "skeleton.json"), []byte(good), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	b, err := LoadBestiary(dir, quietLogger())
	if err != nil {
		t.Fatalf("LoadBestiary: %v", err)
	}
	if b.Len() != 1 {
		t.Errorf("loaded %d creatures, want 1", b.Len())
	}
	if _, ok := b.Get("skeleton"); !ok {
		t.Error("skeleton missing")
	}

	if _, err := LoadBestiary(filepath.Join(dir, "missing"), quietLogger()); err == nil {
		t.Error("missing directory should error")
	}
}
