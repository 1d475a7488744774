package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

const packageColumns = `id, run_id, environment, path, board_identity, sha256, size, members, created_at`

// RecordPackage stores a created package. ID and CreatedAt are filled in
// when empty.
func (s *SQLiteStore) RecordPackage(rec *core.PackageRecord) error {
	if s.db == nil {
		return errNotOpened
	}
	if rec.ID == "" {
		rec.ID = generateID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	members, err := json.Marshal(rec.Members)
	if err != nil {
		return fmt.Errorf("failed to encode members: %w", err)
	}

	_, err = s.db.ExecContext(ctx(),
		`INSERT INTO packages (`+packageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Environment, rec.Path, string(rec.BoardIdentity),
		rec.SHA256, rec.Size, string(members), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record package: %w", err)
	}

	s.logger.Debug("package recorded",
		slog.String("environment", rec.Environment),
		slog.String("path", rec.Path),
		slog.String("sha256", rec.SHA256))
	return nil
}

// ListPackages returns packages newest first. An empty env lists every
// environment; a non-positive limit returns every row.
func (s *SQLiteStore) ListPackages(env string, limit int) ([]*core.PackageRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx(),
		`SELECT `+packageColumns+` FROM packages
		 WHERE (? = '' OR environment = ?)
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		env, env, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	var out []*core.PackageRecord
	for rows.Next() {
		rec, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LatestPackage returns the newest package for env, or nil if none exists.
func (s *SQLiteStore) LatestPackage(env string) (*core.PackageRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	row := s.db.QueryRowContext(ctx(),
		`SELECT `+packageColumns+` FROM packages WHERE environment = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`, env)
	rec, err := scanPackage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest package: %w", err)
	}
	return rec, nil
}

func scanPackage(sc scanner) (*core.PackageRecord, error) {
	var (
		rec     core.PackageRecord
		board   string
		members string
	)
	err := sc.Scan(&rec.ID, &rec.RunID, &rec.Environment, &rec.Path, &board,
		&rec.SHA256, &rec.Size, &members, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.BoardIdentity = core.BoardIdentity(board)
	if err := json.Unmarshal([]byte(members), &rec.Members); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return &rec, nil
}
