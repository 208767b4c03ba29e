package upstream

import (
	"context"
	"time"

	"github.com/opsdash/opsdash/internal/period"
)

// ReportClient talks to the reporting service.
type ReportClient struct {
	*Client
}

// NewReportClient creates a client for the reporting API.
func NewReportClient(cfg Config) *ReportClient {
	return &ReportClient{Client: newClient("report", cfg)}
}

// Execution states of a report run.
const (
	ExecutionPending = "pending"
	ExecutionRunning = "running"
	ExecutionDone    = "done"
	ExecutionFailed  = "failed"
)

// Execution is one report run recorded by the reporting service.
type Execution struct {
	ID         string     `json:"id"`
	ClientSlug string     `json:"client_slug"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// ExecutionCounts is the per-status breakdown shown on the overview.
type ExecutionCounts struct {
	Pending int `json:"pending"`
	Running int `json:"running"`
	Done    int `json:"done"`
	Failed  int `json:"failed"`
}

// Executions lists report runs for a period.
func (c *ReportClient) Executions(ctx context.Context, r period.Range) ([]Execution, error) {
	var executions []Execution
	if err := c.getList(ctx, "/api/relatorio/executions", r.Query(), &executions); err != nil {
		return nil, err
	}
	return executions, nil
}

// Counts fetches the per-status execution breakdown.
func (c *ReportClient) Counts(ctx context.Context) (ExecutionCounts, error) {
	var counts ExecutionCounts
	if err := c.get(ctx, "/api/relatorio/counts", nil, &counts); err != nil {
		return ExecutionCounts{}, err
	}
	return counts, nil
}

// Trigger starts a report run for one client.
func (c *ReportClient) Trigger(ctx context.Context, clientSlug string) (Execution, error) {
	var exec Execution
	body := map[string]string{"client_slug": clientSlug}
	if err := c.post(ctx, "/api/relatorio/trigger", body, &exec); err != nil {
		return Execution{}, err
	}
	return exec, nil
}
