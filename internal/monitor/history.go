// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package monitor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/Aryam2121/CoalMine-B/internal/models"
)

// Key prefixes for BadgerDB storage.
const (
	snapshotKeyPrefix        = "snapshot:"
	snapshotCurrentKeyPrefix = "snapshot_current:"
)

// BadgerHistory implements History using BadgerDB. Every append writes a
// timestamped history record (expiring after the retention window) and
// replaces the facility's current record.
type BadgerHistory struct {
	db        *badger.DB
	retention time.Duration
}

// NewBadgerHistory creates a BadgerDB-backed history. retention bounds how
// long historical records are kept; the current record never expires.
func NewBadgerHistory(db *badger.DB, retention time.Duration) *BadgerHistory {
	return &BadgerHistory{db: db, retention: retention}
}

// Append persists snap as a new timestamped record and updates the
// current record.
func (h *BadgerHistory) Append(ctx context.Context, snap *models.FacilitySnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	historyKey := []byte(snapshotKeyPrefix + snap.MineID + ":" + strconv.FormatInt(snap.Timestamp.UnixNano(), 10))
	currentKey := []byte(snapshotCurrentKeyPrefix + snap.MineID)

	return h.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(historyKey, data)
		if h.retention > 0 {
			entry = entry.WithTTL(h.retention)
		}
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		if err := txn.Set(currentKey, data); err != nil {
			return fmt.Errorf("set current: %w", err)
		}
		return nil
	})
}

// Current returns the cached current record for mineID.
func (h *BadgerHistory) Current(ctx context.Context, mineID string) (*models.FacilitySnapshot, error) {
	var snap models.FacilitySnapshot

	err := h.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotCurrentKeyPrefix + mineID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrFacilityNotFound
		}
		if err != nil {
			return fmt.Errorf("get current: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// MemoryHistory implements History in memory. Used by tests and by
// configurations without a storage path.
type MemoryHistory struct {
	mu      sync.Mutex
	current map[string]*models.FacilitySnapshot
	appends map[string]int

	// FailWith, when set, makes every Append return the given error.
	// Tests use it to exercise persistence-failure paths.
	FailWith error
}

// NewMemoryHistory creates an empty in-memory history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		current: make(map[string]*models.FacilitySnapshot),
		appends: make(map[string]int),
	}
}

// Append records snap as the facility's current state.
func (h *MemoryHistory) Append(ctx context.Context, snap *models.FacilitySnapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.FailWith != nil {
		return h.FailWith
	}
	h.current[snap.MineID] = snap.Clone()
	h.appends[snap.MineID]++
	return nil
}

// Current returns the facility's most recent appended snapshot.
func (h *MemoryHistory) Current(ctx context.Context, mineID string) (*models.FacilitySnapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	snap, ok := h.current[mineID]
	if !ok {
		return nil, ErrFacilityNotFound
	}
	return snap.Clone(), nil
}

// AppendCount returns how many appends were recorded for mineID.
func (h *MemoryHistory) AppendCount(mineID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.appends[mineID]
}
