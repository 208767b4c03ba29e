// Copyright 2026 The OpsDash Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package investigate implements the lead event investigation pipeline:
// one fetch per (query, client, source, date-range) change, then idempotent
// in-memory refiltering per categorical chip change.
package investigate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/opsdash/opsdash/internal/observability/logger"
	"github.com/opsdash/opsdash/internal/upstream"
)

// ErrSuperseded is returned when a newer Search was started while this one
// was in flight. The late result is discarded so it can never clobber the
// newer result set.
var ErrSuperseded = errors.New("search superseded by a newer request")

// Chip is the secondary categorical filter applied client-side over the last
// fetched result set.
type Chip string

const (
	ChipAll      Chip = "all"
	ChipErrors   Chip = "errors"
	ChipSales    Chip = "sales"
	ChipNewLeads Chip = "new_leads"
)

// Fetcher is the single upstream operation the pipeline needs.
type Fetcher interface {
	Investigate(ctx context.Context, p upstream.InvestigateParams) ([]upstream.EventRecord, error)
}

// Service holds the last fetched result set and serves chip refilters from
// memory. A generation counter orders overlapping searches.
type Service struct {
	fetcher Fetcher

	mu      sync.Mutex
	gen     uint64
	params  upstream.InvestigateParams
	results []upstream.EventRecord
}

// NewService creates a new investigation service
func NewService(fetcher Fetcher) *Service {
	return &Service{fetcher: fetcher}
}

// Search fetches a fresh result set for the given parameters and stores it as
// the current one. If a newer Search started while the fetch was in flight,
// the stale result is dropped and ErrSuperseded returned.
func (s *Service) Search(ctx context.Context, p upstream.InvestigateParams) ([]upstream.EventRecord, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	records, err := s.fetcher.Investigate(ctx, p)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		slog.DebugContext(ctx, "discarding stale investigation result",
			logger.Component("investigate"),
			logger.Generation(gen),
		)
		return nil, ErrSuperseded
	}
	if err != nil {
		// Keep the previous result set; the caller degrades to empty.
		return nil, err
	}

	s.params = p
	s.results = records
	return records, nil
}

// Filter applies a categorical chip over the last fetched result set. It
// never issues a network request.
func (s *Service) Filter(chip Chip) []upstream.EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]upstream.EventRecord, 0, len(s.results))
	for _, record := range s.results {
		if Matches(chip, record) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// Last returns the parameters of the current result set.
func (s *Service) Last() upstream.InvestigateParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Matches reports whether a record belongs to a chip's category.
func Matches(chip Chip, record upstream.EventRecord) bool {
	switch chip {
	case ChipErrors:
		return record.Status == "error" || strings.Contains(record.EventType, "error")
	case ChipSales:
		return record.EventType == "sale" || record.SaleAmount > 0
	case ChipNewLeads:
		return record.EventType == "new_lead"
	case ChipAll:
		fallthrough
	default:
		return true
	}
}
