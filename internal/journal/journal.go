// Package journal provides SQLite-backed persistence for emitted alerts.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/selenkaonchain/spreadbot/internal/models"
	_ "modernc.org/sqlite"
)

// Journal records every alert handed to the notifier, for auditing and
// debugging threshold tuning.
type Journal struct {
	db *sql.DB
}

// New opens or creates the SQLite database at dbPath. ":memory:" is accepted
// for tests.
func New(dbPath string) (*Journal, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	j := &Journal{db: db}
	if err := j.createTable(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return j, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) createTable() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id           TEXT PRIMARY KEY,
			market_id    TEXT NOT NULL,
			question     TEXT NOT NULL,
			event_slug   TEXT,
			score        REAL NOT NULL,
			spread       REAL NOT NULL,
			volume       REAL NOT NULL,
			volume_delta REAL NOT NULL,
			price_move   REAL NOT NULL,
			detected_at  INTEGER NOT NULL,
			sent_at      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_sent_at ON alerts(sent_at)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_market ON alerts(market_id)`,
	}
	for _, stmt := range stmts {
		if _, err := j.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record stores one delivered alert.
func (j *Journal) Record(alert models.Alert, sentAt time.Time) error {
	_, err := j.db.Exec(`
		INSERT INTO alerts
			(id, market_id, question, event_slug, score, spread, volume,
			 volume_delta, price_move, detected_at, sent_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		uuid.New().String(), alert.Market.ID, alert.Market.Question, alert.Market.EventSlug,
		alert.Score, alert.Market.Spread, alert.Market.Volume,
		alert.VolumeDelta, alert.PriceMove,
		alert.DetectedAt.UnixNano(), sentAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// Recent returns the n most recently sent alerts, newest first.
func (j *Journal) Recent(n int) ([]models.Alert, error) {
	rows, err := j.db.Query(`
		SELECT market_id, question, event_slug, score, spread, volume,
		       volume_delta, price_move, detected_at
		FROM alerts ORDER BY sent_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var detectedAtNano int64
		err := rows.Scan(
			&a.Market.ID, &a.Market.Question, &a.Market.EventSlug,
			&a.Score, &a.Market.Spread, &a.Market.Volume,
			&a.VolumeDelta, &a.PriceMove, &detectedAtNano,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.DetectedAt = time.Unix(0, detectedAtNano)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
