/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/carverauto/netmon/pkg/models"
)

var errEmptyPath = errors.New("sqlite path is required")

const createDevicesTable = `
CREATE TABLE IF NOT EXISTS devices (
	position        INTEGER NOT NULL,
	id              TEXT PRIMARY KEY,
	address         TEXT NOT NULL UNIQUE,
	label           TEXT NOT NULL DEFAULT '',
	actuator_linked INTEGER NOT NULL DEFAULT 0
)`

// SQLitePersister keeps the device list in a single SQLite table.
type SQLitePersister struct {
	db *sql.DB
}

var _ Persister = (*SQLitePersister)(nil)

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLitePersister, error) {
	if path == "" {
		return nil, errEmptyPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}

	// One writer at a time; the registry serializes mutations anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}

	if _, err := db.ExecContext(ctx, createDevicesTable); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to create devices table: %w", err)
	}

	return &SQLitePersister{db: db}, nil
}

// Load returns the stored devices in registry order.
func (p *SQLitePersister) Load(ctx context.Context) ([]models.Device, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, address, label, actuator_linked FROM devices ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var devices []models.Device

	for rows.Next() {
		var (
			d      models.Device
			linked int
		)

		if err := rows.Scan(&d.ID, &d.Address, &d.Label, &linked); err != nil {
			return nil, err
		}

		d.ActuatorLinked = linked != 0
		devices = append(devices, d)
	}

	return devices, rows.Err()
}

// Save replaces the stored list in one transaction.
func (p *SQLitePersister) Save(ctx context.Context, devices []models.Device) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM devices`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO devices (position, id, address, label, actuator_linked) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, d := range devices {
		linked := 0
		if d.ActuatorLinked {
			linked = 1
		}

		if _, err = stmt.ExecContext(ctx, i, d.ID, d.Address, d.Label, linked); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Close releases the database handle.
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}
