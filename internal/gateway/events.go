// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package gateway

import (
	"strings"

	"github.com/goccy/go-json"

	"github.com/Aryam2121/CoalMine-B/internal/models"
)

// Inbound event types (client -> gateway).
const (
	EventJoinMine          = "join:mine"
	EventLeaveMine         = "leave:mine"
	EventLocationUpdate    = "location:update"
	EventEquipmentStatus   = "equipment:status"
	EventEnvironmentUpdate = "environment:update"
	EventEmergencySOS      = "emergency:sos"
	EventAlertCreate       = "alert:create"
	EventAlertAcknowledge  = "alert:acknowledge"
	EventChatMessage       = "chat:message"
	EventNotificationSend  = "notification:send"
)

// Outbound event types (gateway -> client).
const (
	EventLocationUpdated     = "location:updated"
	EventEquipmentUpdated    = "equipment:updated"
	EventEquipmentAlert      = "equipment:alert"
	EventEnvironmentUpdated  = "environment:updated"
	EventEnvironmentDanger   = "environment:danger"
	EventEmergencyAlert      = "emergency:alert"
	EventEmergencyConfirmed  = "emergency:confirmed"
	EventEmergencyError      = "emergency:error"
	EventAlertNew            = "alert:new"
	EventAlertResolved       = "alert:resolved"
	EventAlertError          = "alert:error"
	EventChatNew             = "chat:new"
	EventNotificationReceive = "notification:receive"
	EventError               = "error"
)

// Message is one WebSocket frame in either direction: a named event with
// a JSON payload.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Envelope is the decoded form of an inbound frame; Data stays raw until
// the dispatcher knows which payload struct to decode into.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// TargetKind discriminates broadcast scopes.
type TargetKind int

const (
	// TargetBroadcast addresses every connected client.
	TargetBroadcast TargetKind = iota

	// TargetFacility addresses the members of one facility room.
	TargetFacility

	// TargetUser addresses every connection of one user.
	TargetUser
)

// Target is a tagged broadcast scope, decided once at the call site
// instead of re-parsed from string conventions downstream.
type Target struct {
	Kind TargetKind
	ID   string
}

// BroadcastTarget addresses all connected clients.
func BroadcastTarget() Target { return Target{Kind: TargetBroadcast} }

// FacilityTarget addresses the room of one mine.
func FacilityTarget(mineID string) Target { return Target{Kind: TargetFacility, ID: mineID} }

// UserTarget addresses the connections of one user.
func UserTarget(userID string) Target { return Target{Kind: TargetUser, ID: userID} }

// ParseTarget converts a wire-level target descriptor to a Target. This is
// the only place the legacy string convention ("mine:<id>", "user:<id>",
// anything else broadcasts) is interpreted; everything past the wire
// boundary works with the typed Target.
func ParseTarget(s string) Target {
	switch {
	case strings.HasPrefix(s, "mine:"):
		return FacilityTarget(strings.TrimPrefix(s, "mine:"))
	case strings.HasPrefix(s, "user:"):
		return UserTarget(strings.TrimPrefix(s, "user:"))
	default:
		return BroadcastTarget()
	}
}

// Inbound payloads. Validation tags gate required fields; a failed
// validation rejects the event back to the sender with no state change.

// RoomPayload is the payload of join:mine and leave:mine.
type RoomPayload struct {
	MineID string `json:"mineId" validate:"required"`
}

// LocationUpdatePayload is the payload of location:update.
type LocationUpdatePayload struct {
	MineID     string             `json:"mineId" validate:"required"`
	UserID     string             `json:"userId" validate:"required"`
	Location   models.Location    `json:"location"`
	VitalSigns *models.VitalSigns `json:"vitalSigns,omitempty"`
}

// EquipmentStatusPayload is the payload of equipment:status.
type EquipmentStatusPayload struct {
	MineID      string                          `json:"mineId" validate:"required"`
	EquipmentID string                          `json:"equipmentId" validate:"required"`
	Status      models.EquipmentOperatingStatus `json:"status" validate:"required,oneof=operational warning malfunction offline maintenance"`
	Metrics     models.EquipmentMetrics         `json:"metrics"`
}

// EnvironmentUpdatePayload is the payload of environment:update.
// Conditions is a partial reading; absent fields keep prior values.
type EnvironmentUpdatePayload struct {
	MineID     string                      `json:"mineId" validate:"required"`
	Conditions models.EnvironmentalReading `json:"conditions"`
}

// EmergencySOSPayload is the payload of emergency:sos.
type EmergencySOSPayload struct {
	MineID        string               `json:"mineId" validate:"required"`
	EmergencyType models.EmergencyType `json:"emergencyType" validate:"required"`
	Location      models.Location      `json:"location"`
	Description   string               `json:"description"`
}

// AlertCreatePayload is the payload of alert:create.
type AlertCreatePayload struct {
	MineID  string               `json:"mineId" validate:"required"`
	Message string               `json:"message" validate:"required,min=5,max=255"`
	Type    models.AlertSeverity `json:"type" validate:"required,oneof=warning critical"`
}

// AlertAcknowledgePayload is the payload of alert:acknowledge.
type AlertAcknowledgePayload struct {
	AlertID string `json:"alertId" validate:"required"`
	MineID  string `json:"mineId" validate:"required"`
}

// ChatMessagePayload is the payload of chat:message.
type ChatMessagePayload struct {
	MineID  string `json:"mineId" validate:"required"`
	Message string `json:"message" validate:"required"`
	Channel string `json:"channel"`
}

// NotificationSendPayload is the payload of notification:send.
type NotificationSendPayload struct {
	Target       string          `json:"target" validate:"required"`
	Notification json.RawMessage `json:"notification" validate:"required"`
}

// Outbound payloads.

// LocationUpdatedData is broadcast to the room on a personnel update.
type LocationUpdatedData struct {
	UserID    string          `json:"userId"`
	Location  models.Location `json:"location"`
	Timestamp string          `json:"timestamp"`
}

// EquipmentUpdatedData is broadcast to the room on an equipment update.
type EquipmentUpdatedData struct {
	EquipmentID string                          `json:"equipmentId"`
	Status      models.EquipmentOperatingStatus `json:"status"`
	Metrics     models.EquipmentMetrics         `json:"metrics"`
	Timestamp   string                          `json:"timestamp"`
}

// EquipmentAlertData is broadcast when a machine enters a degraded status.
type EquipmentAlertData struct {
	EquipmentID string                          `json:"equipmentId"`
	Status      models.EquipmentOperatingStatus `json:"status"`
	Alert       *models.Alert                   `json:"alert"`
}

// EnvironmentUpdatedData is broadcast to the room on an environment update.
type EnvironmentUpdatedData struct {
	Conditions models.EnvironmentalReading `json:"conditions"`
	Timestamp  string                      `json:"timestamp"`
}

// EnvironmentDangerData is broadcast when gas thresholds are breached.
type EnvironmentDangerData struct {
	GasLevels models.GasLevels `json:"gasLevels"`
	Message   string           `json:"message"`
}

// EmergencyAlertData is broadcast to the room and globally on SOS.
type EmergencyAlertData struct {
	Emergency *models.Emergency `json:"emergency"`
	MineID    string            `json:"mineId"`
	Timestamp string            `json:"timestamp"`
}

// EmergencyConfirmedData is the sender-only SOS confirmation.
type EmergencyConfirmedData struct {
	EmergencyID string `json:"emergencyId"`
	Message     string `json:"message"`
}

// AlertResolvedData is broadcast to the room when an alert is resolved.
type AlertResolvedData struct {
	AlertID    string `json:"alertId"`
	ResolvedBy string `json:"resolvedBy"`
	ResolvedAt string `json:"resolvedAt"`
}

// ChatNewData is broadcast to the room for chat messages.
type ChatNewData struct {
	From      string `json:"from"`
	Message   string `json:"message"`
	Channel   string `json:"channel"`
	Timestamp string `json:"timestamp"`
}

// ErrorData is sent to the originating connection when an inbound event
// is rejected.
type ErrorData struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}
