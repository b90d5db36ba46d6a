package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Package sources contains the blog source registry (YAML/JSON) and request helpers.

// Source describes one paginated blog to archive.
type Source struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	ListingURL     string         `json:"listing_url" yaml:"listing_url"`
	BatchSize      int            `json:"batch_size" yaml:"batch_size"`
	RequestDelayMs int            `json:"request_delay_ms" yaml:"request_delay_ms"`
	Config         map[string]any `json:"config" yaml:"config"`
}

type registryFile struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

// Registry holds the sources loaded from a registry file.
type Registry struct {
	mu      sync.RWMutex
	sources []Source
	idx     map[string]Source
}

const defaultBatchSize = 5

// Defaults are applied to sources that leave batch size or delay unset.
type Defaults struct {
	BatchSize    int
	RequestDelay time.Duration
}

// LoadRegistry loads the source registry from file.
func LoadRegistry(path string, defaults Defaults) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	reg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(reg.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	return NewRegistry(reg.Sources, defaults)
}

// NewRegistry validates the given sources and builds a registry from them.
func NewRegistry(list []Source, defaults Defaults) (*Registry, error) {
	r := &Registry{
		sources: make([]Source, 0, len(list)),
		idx:     make(map[string]Source, len(list)),
	}
	for i := range list {
		s := sanitizeSource(list[i], defaults)
		if err := validateSource(s); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, exists := r.idx[s.ID]; exists {
			return nil, fmt.Errorf("duplicate source id %q", s.ID)
		}
		r.sources = append(r.sources, s)
		r.idx[s.ID] = s
	}
	return r, nil
}

// SingleSource builds a one-entry registry for the given listing URL.
func SingleSource(listingURL string, defaults Defaults) (*Registry, error) {
	host := listingURL
	if u, err := url.Parse(listingURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return NewRegistry([]Source{{
		ID:         host,
		Name:       host,
		ListingURL: listingURL,
	}}, defaults)
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalRegistry(name string, data []byte, fn unmarshalFn) (registryFile, error) {
	var reg registryFile
	if err := fn(data, &reg); err != nil {
		return registryFile{}, fmt.Errorf("decode %s sources: %w", name, err)
	}
	return reg, nil
}

func sanitizeSource(s Source, defaults Defaults) Source {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.ListingURL = strings.TrimSpace(s.ListingURL)
	if s.Name == "" {
		s.Name = s.ID
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	if s.BatchSize <= 0 {
		s.BatchSize = defaults.BatchSize
		if s.BatchSize <= 0 {
			s.BatchSize = defaultBatchSize
		}
	}
	if s.RequestDelayMs <= 0 {
		s.RequestDelayMs = int(defaults.RequestDelay / time.Millisecond)
	}
	return s
}

func validateSource(s Source) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.ListingURL == "" {
		return fmt.Errorf("listing_url is required for source %q", s.ID)
	}
	u, err := url.Parse(s.ListingURL)
	if err != nil {
		return fmt.Errorf("parse listing_url for source %q: %w", s.ID, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("listing_url for source %q must be an absolute http(s) URL", s.ID)
	}
	return nil
}

// All returns a copy of the registered sources in file order.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// ByID returns the source with the given id, if registered.
func (r *Registry) ByID(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Source{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.idx[id]
	return s, ok
}

// RequestDelay returns the pause between article fetches for the source.
func (s Source) RequestDelay() time.Duration {
	if s.RequestDelayMs <= 0 {
		return 0
	}
	return time.Duration(s.RequestDelayMs) * time.Millisecond
}
