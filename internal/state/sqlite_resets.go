package state

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// RecordReset stores the identity of a device that was sent a reset report.
func (s *SQLiteStore) RecordReset(rec *core.ResetRecord) error {
	if s.db == nil {
		return errNotOpened
	}
	if rec.ID == "" {
		rec.ID = generateID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx(),
		`INSERT INTO device_resets (id, run_id, manufacturer, product, serial, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Manufacturer, rec.Product, rec.Serial, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record reset: %w", err)
	}

	s.logger.Debug("reset recorded", slog.String("serial", rec.Serial))
	return nil
}

// ListResets returns recorded resets newest first.
func (s *SQLiteStore) ListResets(limit int) ([]*core.ResetRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx(),
		`SELECT id, run_id, manufacturer, product, serial, created_at FROM device_resets
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list resets: %w", err)
	}
	defer rows.Close()

	var out []*core.ResetRecord
	for rows.Next() {
		var rec core.ResetRecord
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Manufacturer, &rec.Product, &rec.Serial, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reset: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
