package sources

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write sources file: %v", err)
	}
	return file
}

func TestLoadRegistryYAML(t *testing.T) {
	file := writeFile(t, "sources.yaml", `
sources:
  - id: beyondchats
    name: BeyondChats Blog
    listing_url: https://beyondchats.com/blogs/
    request_delay_ms: 750
    config:
      accept_language: en-IN
  - id: other
    listing_url: https://other.example/blog/
`)

	reg, err := LoadRegistry(file, Defaults{BatchSize: 5, RequestDelay: time.Second})
	if err != nil {
		t.Fatalf("LoadRegistry returned error: %v", err)
	}

	all := reg.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(all))
	}
	if all[0].ID != "beyondchats" || all[1].ID != "other" {
		t.Fatalf("expected file order to be kept, got %q, %q", all[0].ID, all[1].ID)
	}

	s, ok := reg.ByID("beyondchats")
	if !ok {
		t.Fatalf("expected source beyondchats to be loaded")
	}
	if s.RequestDelay() != 750*time.Millisecond {
		t.Fatalf("unexpected request delay: %v", s.RequestDelay())
	}
	if s.BatchSize != 5 {
		t.Fatalf("expected default batch size, got %d", s.BatchSize)
	}

	other, _ := reg.ByID("other")
	if other.Name != "other" {
		t.Fatalf("expected name to default to id, got %q", other.Name)
	}
	if other.RequestDelay() != time.Second {
		t.Fatalf("expected default delay, got %v", other.RequestDelay())
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	file := writeFile(t, "sources.json", `{"sources":[{"id":"a","listing_url":"https://a.example/","batch_size":2}]}`)

	reg, err := LoadRegistry(file, Defaults{})
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	s, ok := reg.ByID("a")
	if !ok || s.BatchSize != 2 {
		t.Fatalf("unexpected source %#v", s)
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	file := writeFile(t, "sources.yaml", `
sources:
  - id: duplicate
    listing_url: https://p1.example/
  - id: duplicate
    listing_url: https://p2.example/
`)

	if _, err := LoadRegistry(file, Defaults{}); err == nil {
		t.Fatalf("expected duplicate source error, got nil")
	}
}

func TestLoadRegistryRejectsRelativeURL(t *testing.T) {
	file := writeFile(t, "sources.yaml", `
sources:
  - id: rel
    listing_url: /blogs/
`)

	if _, err := LoadRegistry(file, Defaults{}); err == nil {
		t.Fatalf("expected validation error for relative listing_url")
	}
}

func TestSingleSourceUsesHostAsID(t *testing.T) {
	reg, err := SingleSource("https://beyondchats.com/blogs/", Defaults{BatchSize: 3})
	if err != nil {
		t.Fatalf("SingleSource: %v", err)
	}
	s, ok := reg.ByID("beyondchats.com")
	if !ok {
		t.Fatalf("expected host-keyed source, got %#v", reg.All())
	}
	if s.BatchSize != 3 {
		t.Fatalf("expected batch size 3, got %d", s.BatchSize)
	}
	if s.RequestDelay() != 0 {
		t.Fatalf("expected zero delay from zero defaults, got %v", s.RequestDelay())
	}
}

func TestHeadersPreferSourceConfig(t *testing.T) {
	h := Headers(Source{Config: map[string]any{
		ConfigUserAgentKey:    "CustomAgent/1.0",
		ConfigCacheControlKey: "max-age=0",
	}}, "DefaultAgent")

	if h["User-Agent"] != "CustomAgent/1.0" {
		t.Fatalf("User-Agent = %q", h["User-Agent"])
	}
	if h["Accept"] != DefaultAccept || h["Accept-Language"] != DefaultAcceptLanguage {
		t.Fatalf("expected browser defaults, got %#v", h)
	}
	if h["Cache-Control"] != "max-age=0" {
		t.Fatalf("Cache-Control = %q", h["Cache-Control"])
	}

	if _, ok := Headers(Source{}, "UA")["Cache-Control"]; ok {
		t.Fatalf("expected Cache-Control to be omitted when unset")
	}
}
