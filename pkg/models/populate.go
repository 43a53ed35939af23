package models

import "time"

// ImportCounts tallies one entity type during a populate run.
type ImportCounts struct {
	Fetched  int `json:"fetched"`
	Created  int `json:"created"`
	Existing int `json:"existing"`
}

// PopulateReport summarises a populate run.
type PopulateReport struct {
	AlreadyPopulated bool          `json:"already_populated"`
	Forced           bool          `json:"forced"`
	Planets          ImportCounts  `json:"planets"`
	Films            ImportCounts  `json:"films"`
	People           ImportCounts  `json:"people"`
	Species          ImportCounts  `json:"species"`
	LinksAdded       int           `json:"links_added"`
	LinksSkipped     int           `json:"links_skipped"`
	FetchErrors      []string      `json:"fetch_errors,omitempty"`
	Cache            *CacheStats   `json:"cache,omitempty"`
	Duration         time.Duration `json:"duration"`
}

// CacheStats counts source document lookups answered by the run's cache.
type CacheStats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}
