// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/frontlinehq/frontline/internal/metrics"
)

// txExecer is the subset of *sql.Tx the batch writers use.
type txExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// withTx runs fn inside a transaction, rolling back on error.
func (db *DB) withTx(ctx context.Context, fn func(tx txExecer) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// enforceRetention evicts the oldest rows (by timestamp) once table
// exceeds cap.
func (db *DB) enforceRetention(ctx context.Context, table string, cap int) error {
	return db.enforceRetentionByColumn(ctx, table, "timestamp", cap)
}

// enforceRetentionByColumn evicts rows ordered by the given time column.
// Table and column names come from compile-time constants, never user input.
func (db *DB) enforceRetentionByColumn(ctx context.Context, table, column string, cap int) error {
	query := fmt.Sprintf(
		`DELETE FROM %s WHERE id IN (
			SELECT id FROM %s ORDER BY %s DESC OFFSET %d
		)`, table, table, column, cap)

	res, err := db.conn.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("enforce retention on %s: %w", table, err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		metrics.RetentionEvictions.WithLabelValues(table).Add(float64(n))
	}
	return nil
}
