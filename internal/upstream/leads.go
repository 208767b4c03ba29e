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

package upstream

import (
	"context"
	"net/url"
	"time"

	"github.com/opsdash/opsdash/internal/period"
)

// LeadsClient talks to the lead automation service.
type LeadsClient struct {
	*Client
}

// NewLeadsClient creates a client for the lead automation API.
func NewLeadsClient(cfg Config) *LeadsClient {
	return &LeadsClient{Client: newClient("leads", cfg)}
}

// Health is the upstream health payload.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}

// LeadStats is the aggregate returned by the stats endpoint.
type LeadStats struct {
	TotalLeads  int     `json:"total_leads"`
	NewLeads    int     `json:"new_leads"`
	Sales       int     `json:"sales"`
	SalesAmount float64 `json:"sales_amount"`
	Errors      int     `json:"errors"`
}

// ActivityEntry is one row of the recent-activity feed.
type ActivityEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	ClientSlug string    `json:"client_slug"`
	EventType  string    `json:"event_type"`
	Message    string    `json:"message"`
}

// EventRecord is one lead event log row. The shape is passed through to the
// UI; only the fields used by the categorical filters are typed strictly.
type EventRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	EventType  string    `json:"event_type"`
	Status     string    `json:"status"`
	Phone      string    `json:"phone"`
	SaleAmount float64   `json:"sale_amount"`
	Origin     string    `json:"origin"`
	ClientSlug string    `json:"client_slug"`
	Message    string    `json:"message,omitempty"`
	Trail      []string  `json:"trail,omitempty"`
}

// InvestigateParams parameterizes an investigation search.
type InvestigateParams struct {
	Query      string
	ClientSlug string
	Source     string
	Range      period.Range
}

// Alert is a platform alert raised by the lead automation service.
type Alert struct {
	ID        string    `json:"id"`
	Severity  string    `json:"severity"`
	ClientID  string    `json:"client_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Acked     bool      `json:"acked"`
}

// Health fetches the upstream health status.
func (c *LeadsClient) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.get(ctx, "/health", nil, &h); err != nil {
		return Health{}, err
	}
	return h, nil
}

// Stats fetches aggregate lead metrics for a period.
func (c *LeadsClient) Stats(ctx context.Context, r period.Range) (LeadStats, error) {
	var s LeadStats
	if err := c.get(ctx, "/api/dashboard/stats", r.Query(), &s); err != nil {
		return LeadStats{}, err
	}
	return s, nil
}

// Activity fetches the recent-activity feed for a period.
func (c *LeadsClient) Activity(ctx context.Context, r period.Range) ([]ActivityEntry, error) {
	var entries []ActivityEntry
	if err := c.getList(ctx, "/api/dashboard/activity", r.Query(), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ClientLogs fetches the event log of one client.
func (c *LeadsClient) ClientLogs(ctx context.Context, clientSlug string, r period.Range) ([]EventRecord, error) {
	query := r.Query()
	var records []EventRecord
	if err := c.getList(ctx, "/api/dashboard/client/"+url.PathEscape(clientSlug)+"/logs", query, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Investigate runs a free-text search over lead event logs.
func (c *LeadsClient) Investigate(ctx context.Context, p InvestigateParams) ([]EventRecord, error) {
	query := p.Range.Query()
	if p.Query != "" {
		query.Set("q", p.Query)
	}
	if p.ClientSlug != "" {
		query.Set("client", p.ClientSlug)
	}
	if p.Source != "" {
		query.Set("source", p.Source)
	}

	var records []EventRecord
	if err := c.getList(ctx, "/api/dashboard/investigate", query, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Alerts fetches open platform alerts.
func (c *LeadsClient) Alerts(ctx context.Context) ([]Alert, error) {
	var alerts []Alert
	if err := c.getList(ctx, "/api/alerts", nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// AckAlert acknowledges one alert.
func (c *LeadsClient) AckAlert(ctx context.Context, alertID string) error {
	return c.post(ctx, "/api/alerts/"+url.PathEscape(alertID)+"/ack", nil, nil)
}
