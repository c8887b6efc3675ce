// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

// Package models defines the domain types shared across the realtime
// monitoring subsystem: facility snapshots, personnel and equipment status,
// environmental readings, alerts, and emergencies.
package models

import "time"

// PersonnelOperatingStatus enumerates the operating state of a tracked worker.
type PersonnelOperatingStatus string

const (
	PersonnelActive    PersonnelOperatingStatus = "active"
	PersonnelIdle      PersonnelOperatingStatus = "idle"
	PersonnelOnBreak   PersonnelOperatingStatus = "on_break"
	PersonnelEmergency PersonnelOperatingStatus = "emergency"
	PersonnelOffline   PersonnelOperatingStatus = "offline"
)

// EquipmentOperatingStatus enumerates equipment health states.
type EquipmentOperatingStatus string

const (
	EquipmentOperational EquipmentOperatingStatus = "operational"
	EquipmentWarning     EquipmentOperatingStatus = "warning"
	EquipmentMalfunction EquipmentOperatingStatus = "malfunction"
	EquipmentOffline     EquipmentOperatingStatus = "offline"
	EquipmentMaintenance EquipmentOperatingStatus = "maintenance"
)

// Location identifies a position inside a mine: GPS coordinates plus the
// named area and level used for human-facing messages.
type Location struct {
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Area      string  `json:"area,omitempty"`
	Level     string  `json:"level,omitempty"`
}

// VitalSigns carries a worker's monitored vitals.
type VitalSigns struct {
	HeartRate       float64 `json:"heart_rate,omitempty"`
	BodyTemperature float64 `json:"body_temperature,omitempty"`
	OxygenLevel     float64 `json:"oxygen_level,omitempty"`
	StressLevel     string  `json:"stress_level,omitempty"`
}

// PersonnelStatus is one worker's entry within a facility snapshot.
type PersonnelStatus struct {
	UserID     string                   `json:"user_id"`
	Name       string                   `json:"name,omitempty"`
	Role       string                   `json:"role,omitempty"`
	Location   Location                 `json:"location"`
	Status     PersonnelOperatingStatus `json:"status,omitempty"`
	LastUpdate time.Time                `json:"last_update"`
	VitalSigns *VitalSigns              `json:"vital_signs,omitempty"`
}

// EquipmentMetrics carries the monitored operating metrics of a machine.
type EquipmentMetrics struct {
	Temperature float64 `json:"temperature,omitempty"`
	Vibration   float64 `json:"vibration,omitempty"`
	Pressure    float64 `json:"pressure,omitempty"`
	FuelLevel   float64 `json:"fuel_level,omitempty"`
	Runtime     float64 `json:"runtime,omitempty"`
}

// EquipmentStatus is one machine's entry within a facility snapshot.
type EquipmentStatus struct {
	EquipmentID string                   `json:"equipment_id"`
	Name        string                   `json:"name,omitempty"`
	Type        string                   `json:"type,omitempty"`
	Status      EquipmentOperatingStatus `json:"status"`
	Location    string                   `json:"location,omitempty"`
	Metrics     EquipmentMetrics         `json:"metrics"`
	Alerts      []string                 `json:"alerts,omitempty"`
	LastUpdate  time.Time                `json:"last_update"`
}

// GasLevels carries gas concentration readings. Methane is percent by
// volume; the others are parts per million except oxygen (percent).
type GasLevels struct {
	Methane         *float64 `json:"methane,omitempty"`
	CarbonMonoxide  *float64 `json:"carbon_monoxide,omitempty"`
	CarbonDioxide   *float64 `json:"carbon_dioxide,omitempty"`
	Oxygen          *float64 `json:"oxygen,omitempty"`
	HydrogenSulfide *float64 `json:"hydrogen_sulfide,omitempty"`
}

// AirQuality carries particulate and visibility readings.
type AirQuality struct {
	ParticulateMatter *float64 `json:"particulate_matter,omitempty"`
	DustLevel         *float64 `json:"dust_level,omitempty"`
	Visibility        string   `json:"visibility,omitempty"`
}

// Ventilation carries airflow status.
type Ventilation struct {
	Airflow *float64 `json:"airflow,omitempty"`
	Status  string   `json:"status,omitempty"`
}

// EnvironmentalReading is a facility's current environmental state.
// Pointer fields distinguish "not reported" from zero so that partial
// updates can merge without clobbering prior readings.
type EnvironmentalReading struct {
	GasLevels   GasLevels   `json:"gas_levels"`
	AirQuality  AirQuality  `json:"air_quality"`
	Temperature *float64    `json:"temperature,omitempty"`
	Humidity    *float64    `json:"humidity,omitempty"`
	Pressure    *float64    `json:"pressure,omitempty"`
	Ventilation Ventilation `json:"ventilation"`
}

// Merge overlays the supplied partial reading onto r. Fields absent from
// the partial reading retain their prior values.
func (r *EnvironmentalReading) Merge(partial EnvironmentalReading) {
	mergeFloat := func(dst **float64, src *float64) {
		if src != nil {
			*dst = src
		}
	}

	mergeFloat(&r.GasLevels.Methane, partial.GasLevels.Methane)
	mergeFloat(&r.GasLevels.CarbonMonoxide, partial.GasLevels.CarbonMonoxide)
	mergeFloat(&r.GasLevels.CarbonDioxide, partial.GasLevels.CarbonDioxide)
	mergeFloat(&r.GasLevels.Oxygen, partial.GasLevels.Oxygen)
	mergeFloat(&r.GasLevels.HydrogenSulfide, partial.GasLevels.HydrogenSulfide)

	mergeFloat(&r.AirQuality.ParticulateMatter, partial.AirQuality.ParticulateMatter)
	mergeFloat(&r.AirQuality.DustLevel, partial.AirQuality.DustLevel)
	if partial.AirQuality.Visibility != "" {
		r.AirQuality.Visibility = partial.AirQuality.Visibility
	}

	mergeFloat(&r.Temperature, partial.Temperature)
	mergeFloat(&r.Humidity, partial.Humidity)
	mergeFloat(&r.Pressure, partial.Pressure)

	mergeFloat(&r.Ventilation.Airflow, partial.Ventilation.Airflow)
	if partial.Ventilation.Status != "" {
		r.Ventilation.Status = partial.Ventilation.Status
	}
}

// FacilitySnapshot is the authoritative current state of one mine.
// Exactly one snapshot per facility is treated as current for reads;
// every mutation is also appended to history as a new timestamped record.
type FacilitySnapshot struct {
	MineID        string               `json:"mine_id"`
	Timestamp     time.Time            `json:"timestamp"`
	Personnel     []PersonnelStatus    `json:"active_personnel"`
	Equipment     []EquipmentStatus    `json:"equipment_status"`
	Environmental EnvironmentalReading `json:"environmental_conditions"`
}

// FindPersonnel returns the index of the personnel entry for userID,
// or -1 if absent.
func (s *FacilitySnapshot) FindPersonnel(userID string) int {
	for i := range s.Personnel {
		if s.Personnel[i].UserID == userID {
			return i
		}
	}
	return -1
}

// FindEquipment returns the index of the equipment entry for equipmentID,
// or -1 if absent.
func (s *FacilitySnapshot) FindEquipment(equipmentID string) int {
	for i := range s.Equipment {
		if s.Equipment[i].EquipmentID == equipmentID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the snapshot so that readers never alias
// the store's internal state.
func (s *FacilitySnapshot) Clone() *FacilitySnapshot {
	out := &FacilitySnapshot{
		MineID:        s.MineID,
		Timestamp:     s.Timestamp,
		Environmental: s.Environmental,
	}
	if s.Personnel != nil {
		out.Personnel = make([]PersonnelStatus, len(s.Personnel))
		copy(out.Personnel, s.Personnel)
		for i := range out.Personnel {
			if vs := out.Personnel[i].VitalSigns; vs != nil {
				vsCopy := *vs
				out.Personnel[i].VitalSigns = &vsCopy
			}
		}
	}
	if s.Equipment != nil {
		out.Equipment = make([]EquipmentStatus, len(s.Equipment))
		copy(out.Equipment, s.Equipment)
		for i := range out.Equipment {
			if alerts := out.Equipment[i].Alerts; alerts != nil {
				out.Equipment[i].Alerts = append([]string(nil), alerts...)
			}
		}
	}
	return out
}
