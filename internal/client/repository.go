package client

import (
	"context"
	"errors"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrSlugTaken      = errors.New("client slug already in use")
)

// Repository defines the interface for client storage
type Repository interface {
	Create(ctx context.Context, client *Client) error
	GetByID(ctx context.Context, id string) (*Client, error)
	GetBySlug(ctx context.Context, slug string) (*Client, error)
	Update(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*Client, error)
}
