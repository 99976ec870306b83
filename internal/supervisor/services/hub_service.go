// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package services

import (
	"context"

	"github.com/frontlinehq/frontline/internal/broadcast"
)

// HubService wraps the WebSocket hub as a supervised service.
type HubService struct {
	hub *broadcast.Hub
}

// NewHubService creates a hub service wrapper.
func NewHubService(hub *broadcast.Hub) *HubService {
	return &HubService{hub: hub}
}

// Serve implements suture.Service.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for supervisor logging.
func (s *HubService) String() string {
	return s.hub.String()
}
