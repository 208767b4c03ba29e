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

// Package dashboard aggregates metrics from the upstream services into the
// overview payloads the UI renders. Upstream failures never propagate: each
// branch degrades to its zero value and flips the Degraded flag, so the
// dashboard always renders something.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opsdash/opsdash/internal/client"
	"github.com/opsdash/opsdash/internal/observability/logger"
	"github.com/opsdash/opsdash/internal/period"
	"github.com/opsdash/opsdash/internal/upstream"
)

// LeadsAPI is the slice of the lead automation client the dashboard uses.
type LeadsAPI interface {
	Health(ctx context.Context) (upstream.Health, error)
	Stats(ctx context.Context, r period.Range) (upstream.LeadStats, error)
	Activity(ctx context.Context, r period.Range) ([]upstream.ActivityEntry, error)
}

// SDRAPI is the slice of the SDR client the dashboard uses.
type SDRAPI interface {
	Metrics(ctx context.Context, r period.Range) (upstream.SDRMetrics, error)
	Conversations(ctx context.Context, clientSlug string) ([]upstream.Conversation, error)
}

// CalcAPI is the slice of the calculator client the dashboard uses.
type CalcAPI interface {
	Summary(ctx context.Context) (upstream.BillingSummary, error)
}

// ReportAPI is the slice of the reporting client the dashboard uses.
type ReportAPI interface {
	Counts(ctx context.Context) (upstream.ExecutionCounts, error)
}

// ClientLister reads the tenant registry.
type ClientLister interface {
	List(ctx context.Context, limit, offset int) ([]*client.Client, error)
}

// Stats is the aggregated overview for one period.
type Stats struct {
	Leads       upstream.LeadStats       `json:"leads"`
	SDR         upstream.SDRMetrics      `json:"sdr"`
	Reports     upstream.ExecutionCounts `json:"reports"`
	Billing     upstream.BillingSummary  `json:"billing"`
	Degraded    bool                     `json:"degraded"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// HealthSnapshot is the platform health view. Stale marks a snapshot served
// from cache because the upstream could not be reached.
type HealthSnapshot struct {
	Status    string          `json:"status"` // healthy, offline
	Upstream  upstream.Health `json:"upstream"`
	Stale     bool            `json:"stale"`
	CheckedAt time.Time       `json:"checked_at"`
}

// ClientPreview is one registry entry joined with live conversation counts.
type ClientPreview struct {
	ID            string `json:"id"`
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	Active        bool   `json:"active"`
	Conversations int    `json:"conversations"`
}

// Service aggregates the upstream services.
type Service struct {
	leads   LeadsAPI
	sdr     SDRAPI
	calc    CalcAPI
	reports ReportAPI
	clients ClientLister

	mu         sync.RWMutex
	lastHealth *HealthSnapshot
}

// NewService creates a new dashboard service
func NewService(leads LeadsAPI, sdr SDRAPI, calc CalcAPI, reports ReportAPI, clients ClientLister) *Service {
	return &Service{
		leads:   leads,
		sdr:     sdr,
		calc:    calc,
		reports: reports,
		clients: clients,
	}
}

// Stats fans out to every upstream and assembles the overview. Failed
// branches contribute their zero value; the error is logged, never returned.
func (s *Service) Stats(ctx context.Context, r period.Range) Stats {
	stats := Stats{GeneratedAt: time.Now()}

	var mu sync.Mutex
	degrade := func(name string, err error) {
		slog.WarnContext(ctx, "dashboard branch degraded",
			logger.Component("dashboard"),
			logger.Upstream(name),
			logger.Error(err),
		)
		mu.Lock()
		stats.Degraded = true
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		leads, err := s.leads.Stats(ctx, r)
		if err != nil {
			degrade("leads", err)
			return nil
		}
		mu.Lock()
		stats.Leads = leads
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		sdr, err := s.sdr.Metrics(ctx, r)
		if err != nil {
			degrade("sdr", err)
			return nil
		}
		mu.Lock()
		stats.SDR = sdr
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		counts, err := s.reports.Counts(ctx)
		if err != nil {
			degrade("report", err)
			return nil
		}
		mu.Lock()
		stats.Reports = counts
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		billing, err := s.calc.Summary(ctx)
		if err != nil {
			degrade("calc", err)
			return nil
		}
		mu.Lock()
		stats.Billing = billing
		mu.Unlock()
		return nil
	})

	// Branches swallow their own errors; Wait only orders completion.
	_ = g.Wait()
	return stats
}

// Activity returns the recent-activity feed, empty on upstream failure.
func (s *Service) Activity(ctx context.Context, r period.Range) []upstream.ActivityEntry {
	entries, err := s.leads.Activity(ctx, r)
	if err != nil {
		slog.WarnContext(ctx, "activity feed unavailable",
			logger.Component("dashboard"),
			logger.Error(err),
		)
		return []upstream.ActivityEntry{}
	}
	if entries == nil {
		entries = []upstream.ActivityEntry{}
	}
	return entries
}

// ClientsPreview joins the registry with live SDR conversation counts.
// Registry errors propagate; the conversation counts degrade to zero.
func (s *Service) ClientsPreview(ctx context.Context) ([]ClientPreview, error) {
	registered, err := s.clients.List(ctx, 100, 0)
	if err != nil {
		return nil, err
	}

	countBySlug := map[string]int{}
	conversations, err := s.sdr.Conversations(ctx, "")
	if err != nil {
		slog.WarnContext(ctx, "conversation counts unavailable",
			logger.Component("dashboard"),
			logger.Error(err),
		)
	} else {
		for _, conv := range conversations {
			countBySlug[conv.ClientSlug]++
		}
	}

	previews := make([]ClientPreview, 0, len(registered))
	for _, c := range registered {
		previews = append(previews, ClientPreview{
			ID:            c.ID,
			Slug:          c.Slug,
			Name:          c.Name,
			Active:        c.Active,
			Conversations: countBySlug[c.Slug],
		})
	}
	return previews, nil
}

// Health checks the lead automation service. On failure the last good
// snapshot is served marked stale; with no history the platform is reported
// offline.
func (s *Service) Health(ctx context.Context) HealthSnapshot {
	h, err := s.leads.Health(ctx)
	if err == nil {
		snapshot := HealthSnapshot{
			Status:    "healthy",
			Upstream:  h,
			CheckedAt: time.Now(),
		}
		s.mu.Lock()
		s.lastHealth = &snapshot
		s.mu.Unlock()
		return snapshot
	}

	slog.WarnContext(ctx, "health check failed",
		logger.Component("dashboard"),
		logger.Error(err),
	)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastHealth != nil {
		cached := *s.lastHealth
		cached.Status = "offline"
		cached.Stale = true
		return cached
	}
	return HealthSnapshot{Status: "offline", CheckedAt: time.Now()}
}
