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

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/opsdash/opsdash/internal/client"
)

// ClientRepository implements client.Repository
type ClientRepository struct {
	db *DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create inserts a new client
func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO clients (id, slug, name, instance_id, spreadsheet_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Slug, c.Name, c.InstanceID, c.SpreadsheetID, c.Active, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

// GetByID retrieves a client by ID
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*client.Client, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx, `
		SELECT id, slug, name, instance_id, spreadsheet_id, active, created_at, updated_at
		FROM clients WHERE id = $1
	`, id))
}

// GetBySlug retrieves a client by slug
func (r *ClientRepository) GetBySlug(ctx context.Context, slug string) (*client.Client, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx, `
		SELECT id, slug, name, instance_id, spreadsheet_id, active, created_at, updated_at
		FROM clients WHERE slug = $1
	`, slug))
}

// Update updates a client
func (r *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE clients
		SET name = $2, instance_id = $3, spreadsheet_id = $4, active = $5, updated_at = $6
		WHERE id = $1
	`, c.ID, c.Name, c.InstanceID, c.SpreadsheetID, c.Active, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return client.ErrClientNotFound
	}
	return nil
}

// Delete removes a client
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return client.ErrClientNotFound
	}
	return nil
}

// List lists clients with pagination, newest first
func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]*client.Client, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, slug, name, instance_id, spreadsheet_id, active, created_at, updated_at
		FROM clients
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*client.Client
	for rows.Next() {
		var c client.Client
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.InstanceID, &c.SpreadsheetID, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, &c)
	}

	return clients, nil
}

func (r *ClientRepository) scanOne(row pgx.Row) (*client.Client, error) {
	var c client.Client
	err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.InstanceID, &c.SpreadsheetID, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, client.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	return &c, nil
}
