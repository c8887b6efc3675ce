// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package models

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func floatPtr(v float64) *float64 { return &v }

func TestEnvironmentalReadingMerge(t *testing.T) {
	current := EnvironmentalReading{
		GasLevels: GasLevels{
			Methane: floatPtr(1.2),
			Oxygen:  floatPtr(20.9),
		},
		Temperature: floatPtr(28),
		Ventilation: Ventilation{Status: "normal"},
	}

	current.Merge(EnvironmentalReading{
		GasLevels:   GasLevels{Methane: floatPtr(1.8)},
		Humidity:    floatPtr(65),
		Ventilation: Ventilation{Airflow: floatPtr(12.5)},
	})

	if got := *current.GasLevels.Methane; got != 1.8 {
		t.Errorf("Methane = %v, want 1.8", got)
	}
	if current.GasLevels.Oxygen == nil || *current.GasLevels.Oxygen != 20.9 {
		t.Error("Oxygen should keep prior value when absent from partial")
	}
	if current.Temperature == nil || *current.Temperature != 28 {
		t.Error("Temperature should keep prior value")
	}
	if current.Humidity == nil || *current.Humidity != 65 {
		t.Error("Humidity should take partial value")
	}
	if current.Ventilation.Status != "normal" {
		t.Error("Ventilation status should keep prior value")
	}
	if current.Ventilation.Airflow == nil || *current.Ventilation.Airflow != 12.5 {
		t.Error("Ventilation airflow should take partial value")
	}
}

func TestFacilitySnapshotClone(t *testing.T) {
	orig := &FacilitySnapshot{
		MineID: "mine-1",
		Personnel: []PersonnelStatus{
			{UserID: "u1", VitalSigns: &VitalSigns{HeartRate: 80}},
		},
		Equipment: []EquipmentStatus{
			{EquipmentID: "e1", Status: EquipmentOperational, Alerts: []string{"a"}},
		},
		Environmental: EnvironmentalReading{Temperature: floatPtr(25)},
	}

	clone := orig.Clone()

	clone.Personnel[0].UserID = "changed"
	clone.Personnel[0].VitalSigns.HeartRate = 120
	clone.Equipment[0].Status = EquipmentMalfunction
	clone.Equipment[0].Alerts[0] = "changed"

	if orig.Personnel[0].UserID != "u1" {
		t.Error("clone mutation leaked into original personnel entry")
	}
	if orig.Personnel[0].VitalSigns.HeartRate != 80 {
		t.Error("clone mutation leaked into original vital signs")
	}
	if orig.Equipment[0].Status != EquipmentOperational {
		t.Error("clone mutation leaked into original equipment entry")
	}
	if orig.Equipment[0].Alerts[0] != "a" {
		t.Error("clone mutation leaked into original equipment alerts")
	}
}

func TestFacilitySnapshotFind(t *testing.T) {
	snap := &FacilitySnapshot{
		Personnel: []PersonnelStatus{{UserID: "u1"}, {UserID: "u2"}},
		Equipment: []EquipmentStatus{{EquipmentID: "e1"}},
	}

	if got := snap.FindPersonnel("u2"); got != 1 {
		t.Errorf("FindPersonnel(u2) = %d, want 1", got)
	}
	if got := snap.FindPersonnel("missing"); got != -1 {
		t.Errorf("FindPersonnel(missing) = %d, want -1", got)
	}
	if got := snap.FindEquipment("e1"); got != 0 {
		t.Errorf("FindEquipment(e1) = %d, want 0", got)
	}
	if got := snap.FindEquipment("missing"); got != -1 {
		t.Errorf("FindEquipment(missing) = %d, want -1", got)
	}
}

func TestNewEmergencyID(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	id := NewEmergencyID(now)

	wantPrefix := fmt.Sprintf("EMG-%d-", now.UnixMilli())
	if !strings.HasPrefix(id, wantPrefix) {
		t.Errorf("id %q should carry the %q prefix", id, wantPrefix)
	}
	parts := strings.Split(id, "-")
	if len(parts) != 3 || len(parts[2]) != 8 {
		t.Errorf("id %q should end with an 8-character suffix", id)
	}

	if NewEmergencyID(now) == id {
		t.Error("consecutive ids for the same timestamp must differ")
	}
}

func TestEmergencyTimelineAndTerminal(t *testing.T) {
	e := &Emergency{Status: StatusActive}
	if e.IsTerminal() {
		t.Error("active emergency must not be terminal")
	}

	at := time.Now()
	e.AddTimelineEvent("Status changed to responding", "rescuer-1", "team dispatched", at)
	if len(e.Timeline) != 1 {
		t.Fatalf("timeline length = %d, want 1", len(e.Timeline))
	}
	if e.Timeline[0].PerformedBy != "rescuer-1" {
		t.Errorf("PerformedBy = %q, want rescuer-1", e.Timeline[0].PerformedBy)
	}

	for _, status := range []EmergencyStatus{StatusResolved, StatusFalseAlarm} {
		e.Status = status
		if !e.IsTerminal() {
			t.Errorf("status %q must be terminal", status)
		}
	}
	for _, status := range []EmergencyStatus{StatusActive, StatusResponding, StatusContained} {
		e.Status = status
		if e.IsTerminal() {
			t.Errorf("status %q must not be terminal", status)
		}
	}
}

func TestEnumValidity(t *testing.T) {
	if !AlertCritical.Valid() || !AlertWarning.Valid() {
		t.Error("known severities must be valid")
	}
	if AlertSeverity("panic").Valid() {
		t.Error("unknown severity must be invalid")
	}

	if !EmergencyGasLeak.Valid() || !EmergencyOther.Valid() {
		t.Error("known emergency types must be valid")
	}
	if EmergencyType("asteroid").Valid() {
		t.Error("unknown emergency type must be invalid")
	}
}
