package client

import (
	"time"
)

// Client represents one tenant account scoped to an automation pipeline:
// lead automation, the SDR chatbot, or reporting.
type Client struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	InstanceID    string    `json:"instance_id"`
	SpreadsheetID string    `json:"spreadsheet_id"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
