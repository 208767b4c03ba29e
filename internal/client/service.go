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

package client

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/opsdash/opsdash/internal/audit"
)

// slugPattern constrains slugs to URL- and spreadsheet-tab-safe names.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Service provides client registry business logic
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new client service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
	}
}

// CreateInput carries the writable fields of a client.
type CreateInput struct {
	Slug          string
	Name          string
	InstanceID    string
	SpreadsheetID string
}

// Create registers a new client. Slugs must be unique across the platform.
func (s *Service) Create(ctx context.Context, in CreateInput, actorID string) (*Client, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("client name is required")
	}
	if !slugPattern.MatchString(in.Slug) {
		return nil, fmt.Errorf("invalid slug %q: must be lowercase letters, digits and hyphens", in.Slug)
	}

	if _, err := s.repo.GetBySlug(ctx, in.Slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, ErrClientNotFound) {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}

	now := time.Now()
	c := &Client{
		ID:            uuid.New().String(),
		Slug:          in.Slug,
		Name:          in.Name,
		InstanceID:    in.InstanceID,
		SpreadsheetID: in.SpreadsheetID,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeClientCreated,
		ClientID: c.ID,
		ActorID:  actorID,
		Resource: c.Slug,
	})

	return c, nil
}

// Get retrieves a client by ID
func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug retrieves a client by slug
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Client, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// List lists clients with pagination
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Client, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// UpdateInput carries the mutable fields of a client. Nil pointers leave the
// stored value untouched.
type UpdateInput struct {
	Name          *string
	InstanceID    *string
	SpreadsheetID *string
	Active        *bool
}

// Update applies a partial update to a client.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput, actorID string) (*Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("client name is required")
		}
		c.Name = *in.Name
	}
	if in.InstanceID != nil {
		c.InstanceID = *in.InstanceID
	}
	if in.SpreadsheetID != nil {
		c.SpreadsheetID = *in.SpreadsheetID
	}
	activated := false
	if in.Active != nil && *in.Active != c.Active {
		c.Active = *in.Active
		activated = c.Active
	}
	c.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	eventType := audit.TypeClientUpdated
	if in.Active != nil && activated {
		eventType = audit.TypeClientActivated
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     eventType,
		ClientID: c.ID,
		ActorID:  actorID,
		Resource: c.Slug,
	})

	return c, nil
}

// Delete removes a client from the registry.
func (s *Service) Delete(ctx context.Context, id string, actorID string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeClientDeleted,
		ClientID: c.ID,
		ActorID:  actorID,
		Resource: c.Slug,
	})

	return nil
}
