package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sightline/sightline/internal/models"
)

// ErrNotFound reports a scan id with no stored record.
var ErrNotFound = errors.New("scan not found")

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

const scanColumns = "id, url, domain, document_title, page_url, score, has_form, issues, owner_id, created_at"

// SaveScan persists one completed scan.
func (db *DB) SaveScan(ctx context.Context, record *models.ScanRecord) error {
	issuesJSON, err := json.Marshal(record.Issues)
	if err != nil {
		return fmt.Errorf("marshaling issues: %w", err)
	}

	_, err = db.pool.Exec(ctx, `
		INSERT INTO scans (`+scanColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		record.ID,
		record.URL,
		record.Domain,
		record.DocumentTitle,
		record.PageURL,
		record.Score,
		record.HasForm,
		issuesJSON,
		record.OwnerID,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting scan: %w", err)
	}

	db.logger.Debug("Scan saved", "scan_id", record.ID.String(), "domain", record.Domain, "score", record.Score)
	return nil
}

// GetScan loads one scan by id.
func (db *DB) GetScan(ctx context.Context, id uuid.UUID) (*models.ScanRecord, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+scanColumns+` FROM scans WHERE id = $1`, id)

	record, err := scanRecordRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading scan %s: %w", id, err)
	}
	return record, nil
}

// ListScans returns the most recent scans, newest first. An empty
// domain lists across all domains. Limits outside 1..100 are clamped.
func (db *DB) ListScans(ctx context.Context, domain string, limit int) ([]models.ScanRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `SELECT ` + scanColumns + ` FROM scans ORDER BY created_at DESC LIMIT $1`
	args := []any{limit}
	if domain != "" {
		query = `SELECT ` + scanColumns + ` FROM scans WHERE domain = $1 ORDER BY created_at DESC LIMIT $2`
		args = []any{strings.ToLower(domain), limit}
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	defer rows.Close()

	records := make([]models.ScanRecord, 0, limit)
	for rows.Next() {
		record, err := scanRecordRow(rows)
		if err != nil {
			return nil, fmt.Errorf("reading scan row: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scans: %w", err)
	}

	return records, nil
}

// DeleteScan removes one scan by id.
func (db *DB) DeleteScan(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM scans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting scan %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanRecordRow hydrates one record from a row in scanColumns order.
func scanRecordRow(row pgx.Row) (*models.ScanRecord, error) {
	var record models.ScanRecord
	var issuesJSON []byte

	err := row.Scan(
		&record.ID,
		&record.URL,
		&record.Domain,
		&record.DocumentTitle,
		&record.PageURL,
		&record.Score,
		&record.HasForm,
		&issuesJSON,
		&record.OwnerID,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(issuesJSON) > 0 {
		if err := json.Unmarshal(issuesJSON, &record.Issues); err != nil {
			return nil, fmt.Errorf("unmarshaling issues: %w", err)
		}
	}
	return &record, nil
}
