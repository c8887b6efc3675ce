// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/Aryam2121/CoalMine-B/internal/ledger"
	"github.com/Aryam2121/CoalMine-B/internal/logging"
	"github.com/Aryam2121/CoalMine-B/internal/metrics"
	"github.com/Aryam2121/CoalMine-B/internal/models"
	"github.com/Aryam2121/CoalMine-B/internal/monitor"
	"github.com/Aryam2121/CoalMine-B/internal/threshold"
	"github.com/Aryam2121/CoalMine-B/internal/validation"
)

// Dispatcher routes inbound events to their handlers. Every handler
// follows the same discipline: validate, persist, then broadcast; a
// failed persist never broadcasts.
type Dispatcher struct {
	hub    *Hub
	store  *monitor.Store
	ledger ledger.Ledger
	limits threshold.Limits
	now    func() time.Time
}

// NewDispatcher wires the dispatcher to its collaborators.
func NewDispatcher(hub *Hub, store *monitor.Store, ldg ledger.Ledger, limits threshold.Limits) *Dispatcher {
	return &Dispatcher{
		hub:    hub,
		store:  store,
		ledger: ldg,
		limits: limits,
		now:    time.Now,
	}
}

// Handle dispatches one inbound envelope.
func (d *Dispatcher) Handle(ctx context.Context, c *Client, env Envelope) {
	if c.identity.UserID == "" {
		metrics.RecordInboundEvent(env.Event, "validation_error")
		c.ReplyError(env.Event, "not authenticated")
		return
	}

	switch env.Event {
	case EventJoinMine:
		d.handleJoin(c, env)
	case EventLeaveMine:
		d.handleLeave(c, env)
	case EventLocationUpdate:
		d.handleLocationUpdate(ctx, c, env)
	case EventEquipmentStatus:
		d.handleEquipmentStatus(ctx, c, env)
	case EventEnvironmentUpdate:
		d.handleEnvironmentUpdate(ctx, c, env)
	case EventEmergencySOS:
		d.handleEmergencySOS(ctx, c, env)
	case EventAlertCreate:
		d.handleAlertCreate(ctx, c, env)
	case EventAlertAcknowledge:
		d.handleAlertAcknowledge(ctx, c, env)
	case EventChatMessage:
		d.handleChatMessage(c, env)
	case EventNotificationSend:
		d.handleNotificationSend(c, env)
	default:
		metrics.RecordInboundEvent(env.Event, "validation_error")
		c.ReplyError(env.Event, "unknown event type")
	}
}

// bind decodes and validates an inbound payload. On failure the event is
// rejected back to the sender and bind returns false.
func (d *Dispatcher) bind(c *Client, env Envelope, v interface{}) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		metrics.RecordInboundEvent(env.Event, "validation_error")
		c.ReplyError(env.Event, "invalid payload")
		return false
	}
	if err := validation.ValidateStruct(v); err != nil {
		metrics.RecordInboundEvent(env.Event, "validation_error")
		c.ReplyError(env.Event, err.Error())
		return false
	}
	return true
}

func (d *Dispatcher) handleJoin(c *Client, env Envelope) {
	var p RoomPayload
	if !d.bind(c, env, &p) {
		return
	}
	d.hub.JoinRoom(c, p.MineID)
	metrics.RecordInboundEvent(env.Event, "ok")
}

func (d *Dispatcher) handleLeave(c *Client, env Envelope) {
	var p RoomPayload
	if !d.bind(c, env, &p) {
		return
	}
	d.hub.LeaveRoom(c, p.MineID)
	metrics.RecordInboundEvent(env.Event, "ok")
}

func (d *Dispatcher) handleLocationUpdate(ctx context.Context, c *Client, env Envelope) {
	var p LocationUpdatePayload
	if !d.bind(c, env, &p) {
		return
	}

	snap, err := d.store.UpsertPersonnel(ctx, p.MineID, p.UserID, p.Location, p.VitalSigns)
	if err != nil {
		d.dropOnPersistError(c, env, p.MineID, err)
		return
	}

	d.hub.EmitToFacility(p.MineID, EventLocationUpdated, LocationUpdatedData{
		UserID:    p.UserID,
		Location:  p.Location,
		Timestamp: snap.Timestamp.Format(time.RFC3339),
	})
	metrics.RecordInboundEvent(env.Event, "ok")
}

func (d *Dispatcher) handleEquipmentStatus(ctx context.Context, c *Client, env Envelope) {
	var p EquipmentStatusPayload
	if !d.bind(c, env, &p) {
		return
	}

	previous, snap, err := d.store.UpsertEquipment(ctx, p.MineID, p.EquipmentID, p.Status, p.Metrics)
	if err != nil {
		d.dropOnPersistError(c, env, p.MineID, err)
		return
	}

	d.hub.EmitToFacility(p.MineID, EventEquipmentUpdated, EquipmentUpdatedData{
		EquipmentID: p.EquipmentID,
		Status:      p.Status,
		Metrics:     p.Metrics,
		Timestamp:   snap.Timestamp.Format(time.RFC3339),
	})
	metrics.RecordInboundEvent(env.Event, "ok")

	directive := threshold.ClassifyEquipmentTransition(previous, p.Status, p.EquipmentID)
	if directive == nil {
		return
	}

	alert, err := d.ledger.CreateAlert(ctx, ledger.AlertInput{
		Message:   directive.Message,
		Severity:  directive.Severity,
		CreatedBy: p.MineID,
	})
	if err != nil {
		logging.Error().
			Err(err).
			Str("mine_id", p.MineID).
			Str("equipment_id", p.EquipmentID).
			Msg("Failed to persist equipment alert")
		return
	}
	metrics.AlertsCreated.WithLabelValues(string(directive.Severity), "equipment").Inc()

	d.hub.EmitToFacility(p.MineID, EventEquipmentAlert, EquipmentAlertData{
		EquipmentID: p.EquipmentID,
		Status:      p.Status,
		Alert:       alert,
	})
}

func (d *Dispatcher) handleEnvironmentUpdate(ctx context.Context, c *Client, env Envelope) {
	var p EnvironmentUpdatePayload
	if !d.bind(c, env, &p) {
		return
	}

	snap, err := d.store.MergeEnvironment(ctx, p.MineID, p.Conditions)
	if err != nil {
		d.dropOnPersistError(c, env, p.MineID, err)
		return
	}

	d.hub.EmitToFacility(p.MineID, EventEnvironmentUpdated, EnvironmentUpdatedData{
		Conditions: snap.Environmental,
		Timestamp:  snap.Timestamp.Format(time.RFC3339),
	})
	metrics.RecordInboundEvent(env.Event, "ok")

	// Danger classification looks at the incoming reading, not the merged
	// state, so each dangerous report re-fires even while levels hold.
	directive := threshold.ClassifyEnvironment(p.Conditions.GasLevels, d.limits)
	if directive == nil {
		return
	}

	_, err = d.ledger.CreateAlert(ctx, ledger.AlertInput{
		Message:   directive.Message,
		Severity:  directive.Severity,
		CreatedBy: p.MineID,
	})
	if err != nil {
		logging.Error().
			Err(err).
			Str("mine_id", p.MineID).
			Msg("Failed to persist environmental alert")
		return
	}
	metrics.AlertsCreated.WithLabelValues(string(directive.Severity), "environment").Inc()

	d.hub.EmitToFacility(p.MineID, EventEnvironmentDanger, EnvironmentDangerData{
		GasLevels: p.Conditions.GasLevels,
		Message:   directive.Message + " - " + threshold.EvacuationWarning,
	})
}

func (d *Dispatcher) handleEmergencySOS(ctx context.Context, c *Client, env Envelope) {
	var p EmergencySOSPayload
	if !d.bind(c, env, &p) {
		return
	}
	if !p.EmergencyType.Valid() {
		metrics.RecordInboundEvent(env.Event, "validation_error")
		c.ReplyError(env.Event, "unknown emergency type")
		return
	}

	description := p.Description
	if description == "" {
		description = "SOS Emergency Alert"
	}

	emergency := &models.Emergency{
		MineID:      p.MineID,
		ReportedBy:  c.identity.UserID,
		Type:        p.EmergencyType,
		Severity:    models.SeverityCritical, // SOS is always critical
		Location:    p.Location,
		Description: description,
	}

	emergency, err := d.ledger.CreateEmergency(ctx, emergency)
	if err != nil {
		d.sosFailure(c, env, p.MineID, err)
		return
	}

	area := p.Location.Area
	if area == "" {
		area = "Unknown Location"
	}
	_, err = d.ledger.CreateAlert(ctx, ledger.AlertInput{
		Message:   fmt.Sprintf("SOS EMERGENCY: %s at %s", p.EmergencyType, area),
		Severity:  models.AlertCritical,
		CreatedBy: p.MineID,
	})
	if err != nil {
		d.sosFailure(c, env, p.MineID, err)
		return
	}

	metrics.EmergenciesCreated.WithLabelValues(string(p.EmergencyType)).Inc()
	metrics.AlertsCreated.WithLabelValues(string(models.AlertCritical), "emergency").Inc()
	metrics.RecordInboundEvent(env.Event, "ok")

	data := EmergencyAlertData{
		Emergency: emergency,
		MineID:    p.MineID,
		Timestamp: emergency.CreatedAt.Format(time.RFC3339),
	}
	d.hub.EmitToFacility(p.MineID, EventEmergencyAlert, data)
	d.hub.EmitToAll(EventEmergencyAlert, data)

	c.Reply(EventEmergencyConfirmed, EmergencyConfirmedData{
		EmergencyID: emergency.EmergencyID,
		Message:     "Emergency alert sent successfully",
	})

	logging.Warn().
		Str("emergency_id", emergency.EmergencyID).
		Str("mine_id", p.MineID).
		Str("type", string(p.EmergencyType)).
		Str("reported_by", c.identity.UserID).
		Msg("SOS emergency reported")
}

// sosFailure reports an SOS persistence failure to the sender only.
// Nothing is broadcast: responders must never see an emergency the ledger
// did not record.
func (d *Dispatcher) sosFailure(c *Client, env Envelope, mineID string, err error) {
	metrics.RecordInboundEvent(env.Event, "persistence_error")
	logging.Error().
		Err(err).
		Str("mine_id", mineID).
		Str("user_id", c.identity.UserID).
		Msg("Failed to persist SOS emergency")
	c.Reply(EventEmergencyError, ErrorData{
		Event:   env.Event,
		Message: "Failed to send emergency alert. Use radio backup immediately!",
	})
}

func (d *Dispatcher) handleAlertCreate(ctx context.Context, c *Client, env Envelope) {
	var p AlertCreatePayload
	if !d.bind(c, env, &p) {
		return
	}

	alert, err := d.ledger.CreateAlert(ctx, ledger.AlertInput{
		Message:   p.Message,
		Severity:  p.Type,
		CreatedBy: p.MineID,
	})
	if err != nil {
		d.dropOnPersistError(c, env, p.MineID, err)
		return
	}
	metrics.AlertsCreated.WithLabelValues(string(p.Type), "user").Inc()
	metrics.RecordInboundEvent(env.Event, "ok")

	d.hub.EmitToFacility(p.MineID, EventAlertNew, alert)
}

func (d *Dispatcher) handleAlertAcknowledge(ctx context.Context, c *Client, env Envelope) {
	var p AlertAcknowledgePayload
	if !d.bind(c, env, &p) {
		return
	}

	alert, resolvedNow, err := d.ledger.ResolveAlert(ctx, p.AlertID, c.identity.UserID)
	if errors.Is(err, ledger.ErrAlertNotFound) {
		metrics.RecordInboundEvent(env.Event, "validation_error")
		c.Reply(EventAlertError, ErrorData{Event: env.Event, Message: "Alert not found"})
		return
	}
	if err != nil {
		metrics.RecordInboundEvent(env.Event, "persistence_error")
		logging.Error().
			Err(err).
			Str("alert_id", p.AlertID).
			Msg("Failed to resolve alert")
		c.Reply(EventAlertError, ErrorData{Event: env.Event, Message: "Failed to acknowledge alert"})
		return
	}
	metrics.RecordInboundEvent(env.Event, "ok")

	// Second acknowledgement of the same alert changes nothing and stays
	// silent; only the first resolution is announced.
	if !resolvedNow {
		return
	}

	d.hub.EmitToFacility(p.MineID, EventAlertResolved, AlertResolvedData{
		AlertID:    alert.ID,
		ResolvedBy: alert.ResolvedBy,
		ResolvedAt: alert.ResolvedAt.Format(time.RFC3339),
	})
}

func (d *Dispatcher) handleChatMessage(c *Client, env Envelope) {
	var p ChatMessagePayload
	if !d.bind(c, env, &p) {
		return
	}

	channel := p.Channel
	if channel == "" {
		channel = "general"
	}

	d.hub.EmitToFacility(p.MineID, EventChatNew, ChatNewData{
		From:      c.identity.UserID,
		Message:   p.Message,
		Channel:   channel,
		Timestamp: d.now().UTC().Format(time.RFC3339),
	})
	metrics.RecordInboundEvent(env.Event, "ok")
}

func (d *Dispatcher) handleNotificationSend(c *Client, env Envelope) {
	var p NotificationSendPayload
	if !d.bind(c, env, &p) {
		return
	}

	d.hub.Emit(ParseTarget(p.Target), EventNotificationReceive, p.Notification)
	metrics.RecordInboundEvent(env.Event, "ok")
}

// dropOnPersistError logs a persistence failure for a telemetry-shaped
// event and drops it without broadcasting.
func (d *Dispatcher) dropOnPersistError(c *Client, env Envelope, mineID string, err error) {
	metrics.RecordInboundEvent(env.Event, "persistence_error")
	logging.Error().
		Err(err).
		Str("event", env.Event).
		Str("mine_id", mineID).
		Str("user_id", c.identity.UserID).
		Msg("Persistence failure, event dropped")
}
