package upstream

import (
	"context"
	"net/url"
	"time"

	"github.com/opsdash/opsdash/internal/period"
)

// SDRClient talks to the SDR chatbot platform.
type SDRClient struct {
	*Client
}

// NewSDRClient creates a client for the SDR API.
func NewSDRClient(cfg Config) *SDRClient {
	return &SDRClient{Client: newClient("sdr", cfg)}
}

// Conversation is one chatbot conversation thread.
type Conversation struct {
	ID         string    `json:"id"`
	ClientSlug string    `json:"client_slug"`
	Phone      string    `json:"phone"`
	Stage      string    `json:"stage"`
	Score      int       `json:"score"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SDRLead is a lead tracked by the chatbot pipeline.
type SDRLead struct {
	ID         string    `json:"id"`
	ClientSlug string    `json:"client_slug"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Stage      string    `json:"stage"`
	Score      int       `json:"score"`
	CreatedAt  time.Time `json:"created_at"`
}

// SDRMetrics is the aggregate returned by the SDR metrics endpoint.
type SDRMetrics struct {
	ActiveConversations int `json:"active_conversations"`
	QualifiedLeads      int `json:"qualified_leads"`
	MessagesSent        int `json:"messages_sent"`
	TokensUsed          int `json:"tokens_used"`
}

// Connection states reported by the WhatsApp gateway.
const (
	ConnectionOpen       = "open"
	ConnectionConnecting = "connecting"
	ConnectionClosed     = "closed"
)

// ConnectionStatus is the WhatsApp gateway pairing state for one instance.
// QRCode is only populated while the instance is waiting to be paired.
type ConnectionStatus struct {
	InstanceID string    `json:"instance_id"`
	State      string    `json:"state"`
	QRCode     string    `json:"qr_code,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Conversations lists conversations, optionally filtered by client.
func (c *SDRClient) Conversations(ctx context.Context, clientSlug string) ([]Conversation, error) {
	query := url.Values{}
	if clientSlug != "" {
		query.Set("client", clientSlug)
	}
	var conversations []Conversation
	if err := c.getList(ctx, "/api/sdr/conversations", query, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// Leads lists chatbot leads, optionally filtered by client.
func (c *SDRClient) Leads(ctx context.Context, clientSlug string) ([]SDRLead, error) {
	query := url.Values{}
	if clientSlug != "" {
		query.Set("client", clientSlug)
	}
	var leads []SDRLead
	if err := c.getList(ctx, "/api/sdr/leads", query, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// Metrics fetches aggregate SDR metrics for a period.
func (c *SDRClient) Metrics(ctx context.Context, r period.Range) (SDRMetrics, error) {
	var m SDRMetrics
	if err := c.get(ctx, "/api/sdr/metrics", r.Query(), &m); err != nil {
		return SDRMetrics{}, err
	}
	return m, nil
}

// WhatsAppStatus fetches the gateway pairing state for one instance.
func (c *SDRClient) WhatsAppStatus(ctx context.Context, instanceID string) (ConnectionStatus, error) {
	query := url.Values{}
	query.Set("instance", instanceID)
	var status ConnectionStatus
	if err := c.get(ctx, "/api/sdr/whatsapp/status", query, &status); err != nil {
		return ConnectionStatus{}, err
	}
	return status, nil
}
