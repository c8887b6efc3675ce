// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/Aryam2121/CoalMine-B/internal/metrics"
	"github.com/Aryam2121/CoalMine-B/internal/models"
)

// Key prefixes for BadgerDB storage.
const (
	alertKeyPrefix     = "alert:"
	emergencyKeyPrefix = "emergency:"
)

// BadgerLedger implements Ledger using BadgerDB for durable storage.
type BadgerLedger struct {
	db  *badger.DB
	now func() time.Time
}

// NewBadgerLedger creates a BadgerDB-backed ledger.
func NewBadgerLedger(db *badger.DB) *BadgerLedger {
	return &BadgerLedger{db: db, now: time.Now}
}

// CreateAlert persists a new unresolved alert.
func (l *BadgerLedger) CreateAlert(ctx context.Context, in AlertInput) (*models.Alert, error) {
	alert := &models.Alert{
		ID:        models.NewAlertID(),
		Message:   in.Message,
		Severity:  in.Severity,
		CreatedBy: in.CreatedBy,
		CreatedAt: l.now().UTC(),
	}

	start := time.Now()
	err := l.setJSON(alertKeyPrefix+alert.ID, alert)
	metrics.RecordStoreWrite("alert_create", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return alert, nil
}

// ResolveAlert marks an alert resolved. Already-resolved alerts are
// returned unchanged with resolvedNow false.
func (l *BadgerLedger) ResolveAlert(ctx context.Context, id, resolverID string) (*models.Alert, bool, error) {
	var (
		alert       models.Alert
		resolvedNow bool
	)

	err := l.db.Update(func(txn *badger.Txn) error {
		key := []byte(alertKeyPrefix + id)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrAlertNotFound
		}
		if err != nil {
			return fmt.Errorf("get alert: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &alert)
		}); err != nil {
			return err
		}

		if alert.Resolved {
			return nil
		}

		now := l.now().UTC()
		alert.Resolved = true
		alert.ResolvedBy = resolverID
		alert.ResolvedAt = &now
		resolvedNow = true

		data, err := json.Marshal(&alert)
		if err != nil {
			return fmt.Errorf("marshal alert: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return nil, false, err
	}
	if resolvedNow {
		metrics.AlertsResolved.Inc()
	}
	return &alert, resolvedNow, nil
}

// GetAlert returns the alert with the given id.
func (l *BadgerLedger) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	var alert models.Alert
	if err := l.getJSON(alertKeyPrefix+id, &alert, ErrAlertNotFound); err != nil {
		return nil, err
	}
	return &alert, nil
}

// UnresolvedAlerts returns all alerts that have not been resolved.
func (l *BadgerLedger) UnresolvedAlerts(ctx context.Context) ([]*models.Alert, error) {
	var out []*models.Alert

	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(alertKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var alert models.Alert
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &alert)
			}); err != nil {
				return err
			}
			if !alert.Resolved {
				a := alert
				out = append(out, &a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEmergency persists a new emergency, assigning id and creation
// timestamp when unset.
func (l *BadgerLedger) CreateEmergency(ctx context.Context, e *models.Emergency) (*models.Emergency, error) {
	prepareEmergency(e, l.now().UTC())

	start := time.Now()
	err := l.setJSON(emergencyKeyPrefix+e.EmergencyID, e)
	metrics.RecordStoreWrite("emergency_create", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateEmergencyStatus transitions an emergency and appends the change to
// its timeline.
func (l *BadgerLedger) UpdateEmergencyStatus(ctx context.Context, id string, status models.EmergencyStatus, userID string) (*models.Emergency, error) {
	var e models.Emergency

	err := l.db.Update(func(txn *badger.Txn) error {
		key := []byte(emergencyKeyPrefix + id)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEmergencyNotFound
		}
		if err != nil {
			return fmt.Errorf("get emergency: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		}); err != nil {
			return err
		}

		if err := transitionEmergency(&e, status, userID, l.now().UTC()); err != nil {
			return err
		}

		data, err := json.Marshal(&e)
		if err != nil {
			return fmt.Errorf("marshal emergency: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ActiveEmergencies returns emergencies in active or responding status.
func (l *BadgerLedger) ActiveEmergencies(ctx context.Context) ([]*models.Emergency, error) {
	var out []*models.Emergency

	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(emergencyKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var e models.Emergency
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			if e.Status == models.StatusActive || e.Status == models.StatusResponding {
				rec := e
				out = append(out, &rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// setJSON marshals v and stores it under key.
func (l *BadgerLedger) setJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// getJSON loads key into v, mapping a missing key to notFound.
func (l *BadgerLedger) getJSON(key string, v interface{}, notFound error) error {
	return l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return notFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}
