package swapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoNaturalKey is returned when a fetched document has neither a name nor
// a title.
var ErrNoNaturalKey = errors.New("document has no name or title")

type page[T any] struct {
	Results []T     `json:"results"`
	Next    *string `json:"next"`
}

// FetchAll collects every record of a paginated collection by following next
// pointers from startURL. When a page fails, pagination stops and the records
// gathered so far are returned together with the error.
func FetchAll[T any](ctx context.Context, src Source, startURL string) ([]T, error) {
	results := make([]T, 0)
	seen := make(map[string]bool)

	for url := startURL; url != ""; {
		if seen[url] {
			return results, fmt.Errorf("pagination loop at %s", url)
		}
		seen[url] = true

		body, err := src.Get(ctx, url)
		if err != nil {
			return results, err
		}

		var p page[T]
		if err := json.Unmarshal(body, &p); err != nil {
			return results, fmt.Errorf("failed to decode page %s: %w", url, err)
		}
		results = append(results, p.Results...)

		url = ""
		if p.Next != nil {
			url = *p.Next
		}
	}

	return results, nil
}

// FetchRecord fetches and decodes a single record.
func FetchRecord[T any](ctx context.Context, src Source, url string) (*T, error) {
	body, err := src.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	var record T
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return &record, nil
}

// FetchNaturalKey fetches a record and returns its name, or its title for
// films.
func FetchNaturalKey(ctx context.Context, src Source, url string) (string, error) {
	rec, err := FetchRecord[struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	}](ctx, src, url)
	if err != nil {
		return "", err
	}

	switch {
	case rec.Name != "":
		return rec.Name, nil
	case rec.Title != "":
		return rec.Title, nil
	default:
		return "", fmt.Errorf("%s: %w", url, ErrNoNaturalKey)
	}
}
