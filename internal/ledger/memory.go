// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/Aryam2121/CoalMine-B/internal/models"
)

// MemoryLedger implements Ledger in memory. Used by tests and by
// configurations without a storage path.
type MemoryLedger struct {
	mu          sync.Mutex
	alerts      map[string]*models.Alert
	emergencies map[string]*models.Emergency
	now         func() time.Time

	// FailWith, when set, makes every write return the given error.
	// Tests use it to exercise persistence-failure paths.
	FailWith error
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		alerts:      make(map[string]*models.Alert),
		emergencies: make(map[string]*models.Emergency),
		now:         time.Now,
	}
}

// SetClock overrides the ledger clock. Tests only.
func (l *MemoryLedger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// CreateAlert persists a new unresolved alert.
func (l *MemoryLedger) CreateAlert(ctx context.Context, in AlertInput) (*models.Alert, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.FailWith != nil {
		return nil, l.FailWith
	}

	alert := &models.Alert{
		ID:        models.NewAlertID(),
		Message:   in.Message,
		Severity:  in.Severity,
		CreatedBy: in.CreatedBy,
		CreatedAt: l.now().UTC(),
	}
	l.alerts[alert.ID] = alert
	copied := *alert
	return &copied, nil
}

// ResolveAlert marks an alert resolved; no-op when already resolved.
func (l *MemoryLedger) ResolveAlert(ctx context.Context, id, resolverID string) (*models.Alert, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.FailWith != nil {
		return nil, false, l.FailWith
	}

	alert, ok := l.alerts[id]
	if !ok {
		return nil, false, ErrAlertNotFound
	}
	if alert.Resolved {
		copied := *alert
		return &copied, false, nil
	}

	now := l.now().UTC()
	alert.Resolved = true
	alert.ResolvedBy = resolverID
	alert.ResolvedAt = &now
	copied := *alert
	return &copied, true, nil
}

// GetAlert returns the alert with the given id.
func (l *MemoryLedger) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	alert, ok := l.alerts[id]
	if !ok {
		return nil, ErrAlertNotFound
	}
	copied := *alert
	return &copied, nil
}

// UnresolvedAlerts returns all alerts that have not been resolved.
func (l *MemoryLedger) UnresolvedAlerts(ctx context.Context) ([]*models.Alert, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*models.Alert
	for _, alert := range l.alerts {
		if !alert.Resolved {
			copied := *alert
			out = append(out, &copied)
		}
	}
	return out, nil
}

// CreateEmergency persists a new emergency.
func (l *MemoryLedger) CreateEmergency(ctx context.Context, e *models.Emergency) (*models.Emergency, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.FailWith != nil {
		return nil, l.FailWith
	}

	prepareEmergency(e, l.now().UTC())
	l.emergencies[e.EmergencyID] = e
	return e, nil
}

// UpdateEmergencyStatus transitions an emergency.
func (l *MemoryLedger) UpdateEmergencyStatus(ctx context.Context, id string, status models.EmergencyStatus, userID string) (*models.Emergency, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.FailWith != nil {
		return nil, l.FailWith
	}

	e, ok := l.emergencies[id]
	if !ok {
		return nil, ErrEmergencyNotFound
	}
	if err := transitionEmergency(e, status, userID, l.now().UTC()); err != nil {
		return nil, err
	}
	return e, nil
}

// ActiveEmergencies returns emergencies in active or responding status.
func (l *MemoryLedger) ActiveEmergencies(ctx context.Context) ([]*models.Emergency, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*models.Emergency
	for _, e := range l.emergencies {
		if e.Status == models.StatusActive || e.Status == models.StatusResponding {
			out = append(out, e)
		}
	}
	return out, nil
}

// AlertCount returns the number of stored alerts. Tests only.
func (l *MemoryLedger) AlertCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.alerts)
}
