package swapi

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/holocron-dev/holocron/pkg/apperrors"
)

// FixtureSource serves documents from a YAML file keyed by URL, for offline
// seeding and tests:
//
//	documents:
//	  "https://swapi.dev/api/planets/":
//	    next: null
//	    results:
//	      - name: Tatooine
//	        url: "https://swapi.dev/api/planets/1/"
type FixtureSource struct {
	docs map[string][]byte
}

var _ Source = (*FixtureSource)(nil)

type fixtureFile struct {
	Documents map[string]any `yaml:"documents"`
}

// LoadFixture reads a fixture file from disk.
func LoadFixture(path string) (*FixtureSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture YAML. Each document is re-encoded as JSON so
// the importer decodes it exactly like a live response.
func ParseFixture(data []byte) (*FixtureSource, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	docs := make(map[string][]byte, len(f.Documents))
	for url, doc := range f.Documents {
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode fixture document %s: %w", url, err)
		}
		docs[url] = raw
	}
	return &FixtureSource{docs: docs}, nil
}

// Len returns the number of documents in the fixture.
func (s *FixtureSource) Len() int {
	return len(s.docs)
}

// Get returns the document stored under url.
func (s *FixtureSource) Get(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, ok := s.docs[url]
	if !ok {
		return nil, fmt.Errorf("fixture document %s: %w", url, apperrors.ErrNotFound)
	}
	return doc, nil
}
