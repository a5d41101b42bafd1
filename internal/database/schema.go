package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the tables the service needs.  Column widths follow the
// desk (6) and owner name (64) limits enforced by the API.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS desks (
        id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        name       VARCHAR(6)      NOT NULL,
        created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (id),
        UNIQUE KEY uq_desks_name (name)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
        id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        name       VARCHAR(64)     NOT NULL,
        desk_id    BIGINT UNSIGNED NOT NULL,
        starts_at  DATETIME        NOT NULL,
        ends_at    DATETIME        NOT NULL,
        created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (id),
        KEY idx_bookings_desk_start (desk_id, starts_at),
        KEY idx_bookings_ends_at (ends_at),
        CONSTRAINT fk_bookings_desk FOREIGN KEY (desk_id) REFERENCES desks (id),
        CONSTRAINT chk_bookings_interval CHECK (starts_at < ends_at)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS booking_events (
        id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        event_id   CHAR(36)        NOT NULL,
        booking_id BIGINT UNSIGNED NOT NULL,
        desk_id    BIGINT UNSIGNED NOT NULL,
        desk_name  VARCHAR(6)      NOT NULL,
        name       VARCHAR(64)     NOT NULL,
        starts_at  DATETIME        NOT NULL,
        ends_at    DATETIME        NOT NULL,
        created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (id),
        UNIQUE KEY uq_booking_events_event (event_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.  Statements are idempotent so it is
// safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
