// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

// Package threshold classifies telemetry updates against safety thresholds.
// All functions are pure; callers own persistence and broadcast.
package threshold

import (
	"fmt"

	"github.com/Aryam2121/CoalMine-B/internal/models"
)

// Directive instructs the caller to synthesize an alert.
type Directive struct {
	Severity models.AlertSeverity
	Message  string
}

// Limits holds the configured environmental danger thresholds.
type Limits struct {
	// MethanePct is the methane danger threshold in percent by volume.
	MethanePct float64

	// CarbonMonoxidePPM is the CO danger threshold in parts per million.
	CarbonMonoxidePPM float64
}

// DefaultLimits are the statutory defaults: methane above 1.5% or carbon
// monoxide above 50 ppm requires evacuation readiness.
func DefaultLimits() Limits {
	return Limits{MethanePct: 1.5, CarbonMonoxidePPM: 50}
}

// EvacuationWarning is broadcast alongside gas-threshold alerts.
const EvacuationWarning = "Evacuation may be required"

// ClassifyEquipmentTransition inspects an equipment status transition and
// returns a Directive when the transition ENTERS warning or malfunction.
//
// The rule is edge-triggered: repeated reports of the same degraded status
// do not re-fire, and a return to operational produces nothing (no
// "all clear" alert is synthesized).
func ClassifyEquipmentTransition(previous, next models.EquipmentOperatingStatus, equipmentID string) *Directive {
	if next != models.EquipmentWarning && next != models.EquipmentMalfunction {
		return nil
	}
	if next == previous {
		return nil
	}

	severity := models.AlertWarning
	if next == models.EquipmentMalfunction {
		severity = models.AlertCritical
	}

	return &Directive{
		Severity: severity,
		Message:  fmt.Sprintf("Equipment Alert: %s status changed to %s", equipmentID, next),
	}
}

// ClassifyEnvironment inspects gas levels against limits and returns a
// critical Directive when any danger threshold is exceeded.
//
// Unlike equipment classification this check is level-triggered: it is
// stateless per call and re-fires on every update while levels remain
// above threshold, so a persistent danger keeps producing alerts.
func ClassifyEnvironment(gas models.GasLevels, limits Limits) *Directive {
	methaneHigh := gas.Methane != nil && *gas.Methane > limits.MethanePct
	coHigh := gas.CarbonMonoxide != nil && *gas.CarbonMonoxide > limits.CarbonMonoxidePPM
	if !methaneHigh && !coHigh {
		return nil
	}

	var methane, co float64
	if gas.Methane != nil {
		methane = *gas.Methane
	}
	if gas.CarbonMonoxide != nil {
		co = *gas.CarbonMonoxide
	}

	return &Directive{
		Severity: models.AlertCritical,
		Message:  fmt.Sprintf("Dangerous gas levels detected! CH4: %v%%, CO: %vppm", methane, co),
	}
}
