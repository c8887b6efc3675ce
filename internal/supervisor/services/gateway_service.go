// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package services

import (
	"context"
)

// HubRunner matches *gateway.Hub's Run method without importing the
// gateway package.
type HubRunner interface {
	Run(ctx context.Context)
}

// GatewayHubService wraps the realtime gateway hub as a supervised service.
type GatewayHubService struct {
	hub  HubRunner
	name string
}

// NewGatewayHubService wraps hub as a supervised service.
func NewGatewayHubService(hub HubRunner) *GatewayHubService {
	return &GatewayHubService{
		hub:  hub,
		name: "gateway-hub",
	}
}

// Serve implements suture.Service. The hub runs until ctx is cancelled,
// closing all clients on the way out.
func (s *GatewayHubService) Serve(ctx context.Context) error {
	s.hub.Run(ctx)
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (s *GatewayHubService) String() string {
	return s.name
}
