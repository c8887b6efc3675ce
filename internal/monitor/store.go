// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

// Package monitor owns the authoritative current FacilitySnapshot for each
// mine and appends every mutation to durable history.
//
// Concurrency discipline: all mutation of one facility's snapshot is
// serialized behind a per-facility mutex, so concurrent producers on the
// same mine cannot lose updates; mutations across different mines run
// fully concurrently. A mutation is committed to the in-memory current
// snapshot only after the history append succeeds, which lets callers
// broadcast strictly after durability.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Aryam2121/CoalMine-B/internal/metrics"
	"github.com/Aryam2121/CoalMine-B/internal/models"
)

// ErrFacilityNotFound is returned by reads of a facility that has never
// reported telemetry. Writes never return it; unknown facilities are
// created lazily.
var ErrFacilityNotFound = errors.New("facility not found")

// History is the persistence backend for snapshots: an append-only log of
// timestamped records plus a cached current record per facility.
type History interface {
	// Append persists snap as a new timestamped record and replaces the
	// cached current record for snap.MineID.
	Append(ctx context.Context, snap *models.FacilitySnapshot) error

	// Current returns the cached current record for mineID, or
	// ErrFacilityNotFound if the facility has no history.
	Current(ctx context.Context, mineID string) (*models.FacilitySnapshot, error)
}

// Store is the facility state store.
type Store struct {
	mu         sync.RWMutex
	facilities map[string]*facility

	history History
	now     func() time.Time
}

// facility is one mine's serialization scope. Its mutex linearizes every
// read-modify-write of the snapshot it owns.
type facility struct {
	mu   sync.Mutex
	snap *models.FacilitySnapshot
}

// NewStore creates a Store backed by the given history.
func NewStore(history History) *Store {
	return &Store{
		facilities: make(map[string]*facility),
		history:    history,
		now:        time.Now,
	}
}

// facilityFor returns the serialization scope for mineID, creating it
// lazily. On first access the current snapshot is recovered from history
// so a process restart does not forget facility state.
func (s *Store) facilityFor(ctx context.Context, mineID string) *facility {
	s.mu.RLock()
	f, ok := s.facilities[mineID]
	s.mu.RUnlock()
	if ok {
		return f
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok = s.facilities[mineID]; ok {
		return f
	}

	f = &facility{}
	if snap, err := s.history.Current(ctx, mineID); err == nil {
		f.snap = snap
	} else {
		f.snap = &models.FacilitySnapshot{MineID: mineID}
	}
	s.facilities[mineID] = f
	return f
}

// mutate runs fn against a working copy of the facility's snapshot under
// the per-facility lock, appends the result to history, and commits it as
// current only if the append succeeds. On failure the prior snapshot is
// left untouched.
func (s *Store) mutate(ctx context.Context, mineID, operation string, fn func(snap *models.FacilitySnapshot)) (*models.FacilitySnapshot, error) {
	f := s.facilityFor(ctx, mineID)

	f.mu.Lock()
	defer f.mu.Unlock()

	working := f.snap.Clone()
	working.Timestamp = s.now().UTC()
	fn(working)

	start := time.Now()
	err := s.history.Append(ctx, working)
	metrics.RecordStoreWrite(operation, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	f.snap = working
	return working.Clone(), nil
}

// UpsertPersonnel updates or creates the personnel entry for userID within
// mineID's snapshot. Location and the last-update timestamp are always
// replaced; vital signs only when supplied.
func (s *Store) UpsertPersonnel(ctx context.Context, mineID, userID string, loc models.Location, vitals *models.VitalSigns) (*models.FacilitySnapshot, error) {
	return s.mutate(ctx, mineID, "personnel_upsert", func(snap *models.FacilitySnapshot) {
		now := snap.Timestamp
		idx := snap.FindPersonnel(userID)
		if idx < 0 {
			snap.Personnel = append(snap.Personnel, models.PersonnelStatus{
				UserID: userID,
				Status: models.PersonnelActive,
			})
			idx = len(snap.Personnel) - 1
		}

		entry := &snap.Personnel[idx]
		entry.Location = loc
		entry.LastUpdate = now
		if vitals != nil {
			vs := *vitals
			entry.VitalSigns = &vs
		}
	})
}

// UpsertEquipment updates or creates the equipment entry for equipmentID
// and returns the status prior to the update so the caller can detect a
// transition edge. A previously unseen machine reports an empty previous
// status.
func (s *Store) UpsertEquipment(ctx context.Context, mineID, equipmentID string, status models.EquipmentOperatingStatus, metricsIn models.EquipmentMetrics) (models.EquipmentOperatingStatus, *models.FacilitySnapshot, error) {
	var previous models.EquipmentOperatingStatus

	snap, err := s.mutate(ctx, mineID, "equipment_upsert", func(snap *models.FacilitySnapshot) {
		idx := snap.FindEquipment(equipmentID)
		if idx < 0 {
			snap.Equipment = append(snap.Equipment, models.EquipmentStatus{
				EquipmentID: equipmentID,
			})
			idx = len(snap.Equipment) - 1
		}

		entry := &snap.Equipment[idx]
		previous = entry.Status
		entry.Status = status
		entry.Metrics = metricsIn
		entry.LastUpdate = snap.Timestamp
	})
	if err != nil {
		return "", nil, err
	}
	return previous, snap, nil
}

// MergeEnvironment shallow-merges the supplied partial reading into the
// facility's environmental conditions. Fields absent from the partial
// reading keep their prior values.
func (s *Store) MergeEnvironment(ctx context.Context, mineID string, partial models.EnvironmentalReading) (*models.FacilitySnapshot, error) {
	return s.mutate(ctx, mineID, "environment_merge", func(snap *models.FacilitySnapshot) {
		snap.Environmental.Merge(partial)
	})
}

// GetCurrent returns the current snapshot for mineID, falling back to
// history when the facility has not been touched since process start.
// Pure reads are the only path that can observe ErrFacilityNotFound.
func (s *Store) GetCurrent(ctx context.Context, mineID string) (*models.FacilitySnapshot, error) {
	s.mu.RLock()
	f, ok := s.facilities[mineID]
	s.mu.RUnlock()

	if ok {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.snap.Clone(), nil
	}

	snap, err := s.history.Current(ctx, mineID)
	if err != nil {
		return nil, err
	}
	return snap, nil
}
