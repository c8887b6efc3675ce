// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AlertSeverity enumerates alert severities.
type AlertSeverity string

const (
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)

// Valid reports whether the severity is a known value.
func (s AlertSeverity) Valid() bool {
	return s == AlertWarning || s == AlertCritical
}

// Alert is a durable alert record. Created by threshold breaches or
// explicit user action; mutated only by Resolve.
type Alert struct {
	ID         string        `json:"id"`
	Message    string        `json:"message"`
	Severity   AlertSeverity `json:"type"`
	CreatedBy  string        `json:"created_by,omitempty"` // facility that originated the alert
	Resolved   bool          `json:"resolved"`
	ResolvedBy string        `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// NewAlertID returns a new unique alert id.
func NewAlertID() string {
	return uuid.New().String()
}

// EmergencyType enumerates hazard categories.
type EmergencyType string

const (
	EmergencyFire             EmergencyType = "fire"
	EmergencyExplosion        EmergencyType = "explosion"
	EmergencyGasLeak          EmergencyType = "gas_leak"
	EmergencyCollapse         EmergencyType = "collapse"
	EmergencyFlooding         EmergencyType = "flooding"
	EmergencyEquipmentFailure EmergencyType = "equipment_failure"
	EmergencyInjury           EmergencyType = "injury"
	EmergencyEntrapment       EmergencyType = "entrapment"
	EmergencyPowerFailure     EmergencyType = "power_failure"
	EmergencyOther            EmergencyType = "other"
)

// Valid reports whether the emergency type is a known value.
func (t EmergencyType) Valid() bool {
	switch t {
	case EmergencyFire, EmergencyExplosion, EmergencyGasLeak, EmergencyCollapse,
		EmergencyFlooding, EmergencyEquipmentFailure, EmergencyInjury,
		EmergencyEntrapment, EmergencyPowerFailure, EmergencyOther:
		return true
	}
	return false
}

// EmergencySeverity enumerates emergency severities.
type EmergencySeverity string

const (
	SeverityMinor        EmergencySeverity = "minor"
	SeverityModerate     EmergencySeverity = "moderate"
	SeverityMajor        EmergencySeverity = "major"
	SeverityCritical     EmergencySeverity = "critical"
	SeverityCatastrophic EmergencySeverity = "catastrophic"
)

// EmergencyStatus enumerates emergency lifecycle states. StatusResolved is
// terminal; a resolved emergency is never reopened, a recurrence is a new
// Emergency.
type EmergencyStatus string

const (
	StatusActive     EmergencyStatus = "active"
	StatusResponding EmergencyStatus = "responding"
	StatusContained  EmergencyStatus = "contained"
	StatusResolved   EmergencyStatus = "resolved"
	StatusFalseAlarm EmergencyStatus = "false_alarm"
)

// TimelineEvent is one append-only entry in an emergency's timeline.
type TimelineEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Event       string    `json:"event"`
	PerformedBy string    `json:"performed_by,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// AffectedPerson tracks one worker involved in an emergency.
type AffectedPerson struct {
	UserID            string `json:"user_id"`
	Status            string `json:"status,omitempty"` // safe, injured, missing, evacuated, unknown
	LastKnownLocation string `json:"last_known_location,omitempty"`
}

// ResponderAssignment tracks one response-team member.
type ResponderAssignment struct {
	UserID     string    `json:"user_id"`
	Role       string    `json:"role,omitempty"` // coordinator, responder, medic, engineer, safety_officer
	AssignedAt time.Time `json:"assigned_at"`
	Status     string    `json:"status,omitempty"`
}

// EvacuationStatus tracks evacuation progress for an emergency.
type EvacuationStatus struct {
	Initiated          bool       `json:"initiated"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	PersonnelEvacuated int        `json:"personnel_evacuated,omitempty"`
	PersonnelRemaining int        `json:"personnel_remaining,omitempty"`
	EvacuationRoutes   []string   `json:"evacuation_routes,omitempty"`
}

// CommunicationEntry is one message in an emergency's communication log.
type CommunicationEntry struct {
	Timestamp time.Time `json:"timestamp"`
	From      string    `json:"from"`
	Message   string    `json:"message"`
	Channel   string    `json:"channel,omitempty"`
}

// Emergency is a durable SOS / crisis record.
type Emergency struct {
	EmergencyID       string                `json:"emergency_id"`
	MineID            string                `json:"mine_id"`
	ReportedBy        string                `json:"reported_by"`
	Type              EmergencyType         `json:"emergency_type"`
	Severity          EmergencySeverity     `json:"severity"`
	Status            EmergencyStatus       `json:"status"`
	Location          Location              `json:"location"`
	Description       string                `json:"description"`
	AffectedPersonnel []AffectedPerson      `json:"affected_personnel,omitempty"`
	ResponseTeam      []ResponderAssignment `json:"response_team,omitempty"`
	Timeline          []TimelineEvent       `json:"timeline"`
	Evacuation        EvacuationStatus      `json:"evacuation_status"`
	CommunicationLog  []CommunicationEntry  `json:"communication_log,omitempty"`
	ResolvedAt        *time.Time            `json:"resolved_at,omitempty"`
	ResolvedBy        string                `json:"resolved_by,omitempty"`
	Resolution        string                `json:"resolution,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}

// NewEmergencyID returns a human-readable unique emergency id of the form
// EMG-<unix-millis>-<suffix>.
func NewEmergencyID(now time.Time) string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("EMG-%d-%s", now.UnixMilli(), suffix)
}

// AddTimelineEvent appends an event to the emergency timeline.
func (e *Emergency) AddTimelineEvent(event, performedBy, notes string, at time.Time) {
	e.Timeline = append(e.Timeline, TimelineEvent{
		Timestamp:   at,
		Event:       event,
		PerformedBy: performedBy,
		Notes:       notes,
	})
}

// IsTerminal reports whether the emergency has reached a terminal status.
func (e *Emergency) IsTerminal() bool {
	return e.Status == StatusResolved || e.Status == StatusFalseAlarm
}
