// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

// Package ledger persists alerts and emergencies. The realtime gateway
// coordinates writes; the HTTP surface reads. Records are append-mostly:
// alerts mutate only through Resolve, emergencies only through status
// transitions appended to their timeline.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/Aryam2121/CoalMine-B/internal/models"
)

var (
	// ErrAlertNotFound is returned when resolving an unknown alert id.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrEmergencyNotFound is returned for unknown emergency ids.
	ErrEmergencyNotFound = errors.New("emergency not found")

	// ErrEmergencyTerminal is returned when transitioning an emergency
	// that already reached a terminal status.
	ErrEmergencyTerminal = errors.New("emergency already in terminal status")
)

// AlertInput carries the fields for a new alert.
type AlertInput struct {
	Message   string
	Severity  models.AlertSeverity
	CreatedBy string // facility that originated the alert
}

// Ledger is the durable record of alerts and emergencies.
type Ledger interface {
	// CreateAlert persists a new unresolved alert and returns it.
	CreateAlert(ctx context.Context, in AlertInput) (*models.Alert, error)

	// ResolveAlert marks the alert resolved by resolverID. Resolving an
	// already-resolved alert is a no-op: the stored record is returned
	// unchanged and resolvedNow is false.
	ResolveAlert(ctx context.Context, id, resolverID string) (alert *models.Alert, resolvedNow bool, err error)

	// GetAlert returns the alert with the given id.
	GetAlert(ctx context.Context, id string) (*models.Alert, error)

	// UnresolvedAlerts returns all alerts that have not been resolved.
	UnresolvedAlerts(ctx context.Context) ([]*models.Alert, error)

	// CreateEmergency persists a new emergency. The ledger assigns the
	// emergency id and creation timestamp when unset.
	CreateEmergency(ctx context.Context, e *models.Emergency) (*models.Emergency, error)

	// UpdateEmergencyStatus transitions an emergency and appends the
	// transition to its timeline. Resolving sets the resolution fields;
	// terminal emergencies reject further transitions.
	UpdateEmergencyStatus(ctx context.Context, id string, status models.EmergencyStatus, userID string) (*models.Emergency, error)

	// ActiveEmergencies returns emergencies in active or responding status.
	ActiveEmergencies(ctx context.Context) ([]*models.Emergency, error)
}

// prepareEmergency fills generated fields shared by all implementations.
func prepareEmergency(e *models.Emergency, now time.Time) {
	if e.EmergencyID == "" {
		e.EmergencyID = models.NewEmergencyID(now)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.Status == "" {
		e.Status = models.StatusActive
	}
	if len(e.Timeline) == 0 {
		e.AddTimelineEvent("Emergency reported", e.ReportedBy, e.Description, now)
	}
}

// transitionEmergency applies a status change and timeline entry in place.
func transitionEmergency(e *models.Emergency, status models.EmergencyStatus, userID string, now time.Time) error {
	if e.IsTerminal() {
		return ErrEmergencyTerminal
	}
	e.Status = status
	e.AddTimelineEvent("Status changed to "+string(status), userID, "", now)
	if status == models.StatusResolved {
		e.ResolvedAt = &now
		e.ResolvedBy = userID
	}
	return nil
}
