// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Aryam2121/CoalMine-B/internal/models"
)

func TestCreateAlert(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	alert, err := l.CreateAlert(ctx, AlertInput{
		Message:   "Methane rising in shaft B",
		Severity:  models.AlertWarning,
		CreatedBy: "mine-1",
	})
	if err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}
	if alert.ID == "" {
		t.Error("alert id not assigned")
	}
	if alert.Resolved {
		t.Error("new alert must be unresolved")
	}
	if alert.CreatedAt.IsZero() {
		t.Error("creation timestamp not assigned")
	}
	if alert.CreatedBy != "mine-1" {
		t.Errorf("CreatedBy = %q, want mine-1", alert.CreatedBy)
	}
}

func TestResolveAlertIdempotent(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	alert, err := l.CreateAlert(ctx, AlertInput{Message: "test alert", Severity: models.AlertCritical})
	if err != nil {
		t.Fatal(err)
	}

	resolved, resolvedNow, err := l.ResolveAlert(ctx, alert.ID, "supervisor-1")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if !resolvedNow {
		t.Error("first resolve must report resolvedNow")
	}
	if !resolved.Resolved || resolved.ResolvedBy != "supervisor-1" || resolved.ResolvedAt == nil {
		t.Errorf("resolution fields not set: %+v", resolved)
	}
	firstResolvedAt := *resolved.ResolvedAt

	// A second acknowledgement changes nothing.
	again, resolvedNow, err := l.ResolveAlert(ctx, alert.ID, "someone-else")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if resolvedNow {
		t.Error("second resolve must not report resolvedNow")
	}
	if again.ResolvedBy != "supervisor-1" {
		t.Errorf("ResolvedBy overwritten to %q", again.ResolvedBy)
	}
	if !again.ResolvedAt.Equal(firstResolvedAt) {
		t.Error("ResolvedAt overwritten by second resolve")
	}
}

func TestResolveAlertNotFound(t *testing.T) {
	l := NewMemoryLedger()
	_, _, err := l.ResolveAlert(context.Background(), "missing", "user")
	if !errors.Is(err, ErrAlertNotFound) {
		t.Errorf("err = %v, want ErrAlertNotFound", err)
	}
}

func TestUnresolvedAlerts(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	a1, _ := l.CreateAlert(ctx, AlertInput{Message: "first", Severity: models.AlertWarning})
	a2, _ := l.CreateAlert(ctx, AlertInput{Message: "second", Severity: models.AlertCritical})
	if _, _, err := l.ResolveAlert(ctx, a1.ID, "user"); err != nil {
		t.Fatal(err)
	}

	open, err := l.UnresolvedAlerts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 1 || open[0].ID != a2.ID {
		t.Errorf("unresolved = %+v, want only %s", open, a2.ID)
	}
}

func TestCreateEmergencyAssignsGeneratedFields(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	e, err := l.CreateEmergency(ctx, &models.Emergency{
		MineID:      "mine-1",
		ReportedBy:  "miner-3",
		Type:        models.EmergencyGasLeak,
		Severity:    models.SeverityCritical,
		Description: "gas smell near face",
	})
	if err != nil {
		t.Fatalf("CreateEmergency: %v", err)
	}
	if !strings.HasPrefix(e.EmergencyID, "EMG-") {
		t.Errorf("emergency id %q should carry EMG- prefix", e.EmergencyID)
	}
	if e.Status != models.StatusActive {
		t.Errorf("status = %q, want active", e.Status)
	}
	if e.CreatedAt.IsZero() {
		t.Error("creation timestamp not assigned")
	}
	if len(e.Timeline) != 1 || e.Timeline[0].Event != "Emergency reported" {
		t.Errorf("initial timeline = %+v", e.Timeline)
	}
	if e.Timeline[0].PerformedBy != "miner-3" {
		t.Errorf("timeline PerformedBy = %q, want miner-3", e.Timeline[0].PerformedBy)
	}
}

func TestUpdateEmergencyStatus(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	e, err := l.CreateEmergency(ctx, &models.Emergency{
		MineID: "mine-1",
		Type:   models.EmergencyCollapse,
	})
	if err != nil {
		t.Fatal(err)
	}

	e, err = l.UpdateEmergencyStatus(ctx, e.EmergencyID, models.StatusResponding, "coordinator-1")
	if err != nil {
		t.Fatalf("transition to responding: %v", err)
	}
	if e.Status != models.StatusResponding {
		t.Errorf("status = %q, want responding", e.Status)
	}
	if len(e.Timeline) != 2 {
		t.Errorf("timeline length = %d, want 2", len(e.Timeline))
	}

	e, err = l.UpdateEmergencyStatus(ctx, e.EmergencyID, models.StatusResolved, "coordinator-1")
	if err != nil {
		t.Fatalf("transition to resolved: %v", err)
	}
	if e.ResolvedAt == nil || e.ResolvedBy != "coordinator-1" {
		t.Errorf("resolution fields not set: %+v", e)
	}

	// Terminal emergencies reject further transitions.
	_, err = l.UpdateEmergencyStatus(ctx, e.EmergencyID, models.StatusActive, "coordinator-1")
	if !errors.Is(err, ErrEmergencyTerminal) {
		t.Errorf("err = %v, want ErrEmergencyTerminal", err)
	}
}

func TestUpdateEmergencyStatusNotFound(t *testing.T) {
	l := NewMemoryLedger()
	_, err := l.UpdateEmergencyStatus(context.Background(), "EMG-0-missing", models.StatusResponding, "u")
	if !errors.Is(err, ErrEmergencyNotFound) {
		t.Errorf("err = %v, want ErrEmergencyNotFound", err)
	}
}

func TestActiveEmergencies(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	active, _ := l.CreateEmergency(ctx, &models.Emergency{MineID: "m1", Type: models.EmergencyFire})
	responding, _ := l.CreateEmergency(ctx, &models.Emergency{MineID: "m1", Type: models.EmergencyInjury})
	done, _ := l.CreateEmergency(ctx, &models.Emergency{MineID: "m2", Type: models.EmergencyFlooding})

	if _, err := l.UpdateEmergencyStatus(ctx, responding.EmergencyID, models.StatusResponding, "u"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.UpdateEmergencyStatus(ctx, done.EmergencyID, models.StatusResolved, "u"); err != nil {
		t.Fatal(err)
	}

	got, err := l.ActiveEmergencies(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("active count = %d, want 2", len(got))
	}
	ids := map[string]bool{}
	for _, e := range got {
		ids[e.EmergencyID] = true
	}
	if !ids[active.EmergencyID] || !ids[responding.EmergencyID] {
		t.Errorf("active set = %v", ids)
	}
}

func TestMemoryLedgerFailureInjection(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.FailWith = errors.New("storage down")

	if _, err := l.CreateAlert(ctx, AlertInput{Message: "x", Severity: models.AlertWarning}); err == nil {
		t.Error("CreateAlert should fail")
	}
	if _, err := l.CreateEmergency(ctx, &models.Emergency{Type: models.EmergencyFire}); err == nil {
		t.Error("CreateEmergency should fail")
	}
	if l.AlertCount() != 0 {
		t.Error("failed writes must not persist")
	}
}

func TestLedgerClockOverride(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l.SetClock(func() time.Time { return fixed })

	alert, err := l.CreateAlert(ctx, AlertInput{Message: "clock test", Severity: models.AlertWarning})
	if err != nil {
		t.Fatal(err)
	}
	if !alert.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", alert.CreatedAt, fixed)
	}
}
