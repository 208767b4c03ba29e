package upstream

import "context"

// CalcClient talks to the billing calculator service.
type CalcClient struct {
	*Client
}

// NewCalcClient creates a client for the calculator API.
func NewCalcClient(cfg Config) *CalcClient {
	return &CalcClient{Client: newClient("calc", cfg)}
}

// Plan is one billing plan offered to clients.
type Plan struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	MonthlyPrice float64 `json:"monthly_price"`
	LeadQuota    int     `json:"lead_quota"`
}

// EstimateRequest parameterizes a billing estimate.
type EstimateRequest struct {
	PlanID    string `json:"plan_id"`
	LeadCount int    `json:"lead_count"`
	SDRSeats  int    `json:"sdr_seats"`
}

// Estimate is the calculator's price breakdown.
type Estimate struct {
	PlanID   string  `json:"plan_id"`
	Base     float64 `json:"base"`
	Overage  float64 `json:"overage"`
	Seats    float64 `json:"seats"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

// BillingSummary is the platform-wide revenue aggregate shown on the
// dashboard overview.
type BillingSummary struct {
	ActiveSubscriptions int     `json:"active_subscriptions"`
	MonthlyRevenue      float64 `json:"monthly_revenue"`
	Currency            string  `json:"currency"`
}

// Plans lists the billing plans.
func (c *CalcClient) Plans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	if err := c.getList(ctx, "/api/calc/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Estimate computes a price estimate.
func (c *CalcClient) Estimate(ctx context.Context, req EstimateRequest) (Estimate, error) {
	var est Estimate
	if err := c.post(ctx, "/api/calc/estimate", req, &est); err != nil {
		return Estimate{}, err
	}
	return est, nil
}

// Summary fetches the platform-wide billing aggregate.
func (c *CalcClient) Summary(ctx context.Context) (BillingSummary, error) {
	var s BillingSummary
	if err := c.get(ctx, "/api/calc/summary", nil, &s); err != nil {
		return BillingSummary{}, err
	}
	return s, nil
}
