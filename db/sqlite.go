// sqlite.go implements the persistent record store. Tables and analytics
// are stored as JSON columns; the schema lives in db/migrations.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"go_extractor/core"
)

// SQLiteStore is a core.RecordStore backed by SQLite.
//
// Thread-Safety: safe for concurrent use; the connection pool is
// configured for a single writer (see connection.go).
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore opens the database at path, applies pending migrations,
// and returns a ready store.
//
// Example:
//
//	store, err := db.NewSQLiteStore("extractions.db", "file://db/migrations")
func NewSQLiteStore(path, migrationsPath string) (*SQLiteStore, error) {
	// The migrator owns and closes its connection; the store gets a
	// fresh one afterwards.
	migrateConn, err := NewSQLiteConnection(DefaultConnectionConfig(path))
	if err != nil {
		return nil, err
	}
	if err := MigrateUp(migrateConn, migrationsPath); err != nil {
		return nil, err
	}

	versionConn, err := NewSQLiteConnection(DefaultConnectionConfig(path))
	if err != nil {
		return nil, err
	}
	version, dirty, err := MigrationVersion(versionConn, migrationsPath)
	if err != nil {
		return nil, err
	}
	if dirty {
		return nil, fmt.Errorf("db: schema version %d is dirty, repair the database before use", version)
	}

	conn, err := NewSQLiteConnection(DefaultConnectionConfig(path))
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{conn: conn}, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Create inserts a new record in processing state.
func (s *SQLiteStore) Create(ctx context.Context, filename string) (*core.ExtractionRecord, error) {
	record := &core.ExtractionRecord{
		ID:         uuid.NewString(),
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
		Status:     core.StatusProcessing,
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO extractions (id, filename, uploaded_at, status) VALUES (?, ?, ?, ?)`,
		record.ID, record.Filename, record.UploadedAt, string(record.Status))
	if err != nil {
		return nil, fmt.Errorf("db: inserting record: %w", err)
	}
	return record, nil
}

// Update finalizes or modifies a record by id.
func (s *SQLiteStore) Update(ctx context.Context, id string, status core.RecordStatus, table *core.NormalizedTable, analytics *core.AnalyticsResult, errMsg string, diagnostics []string) error {
	tableJSON, err := marshalNullable(table)
	if err != nil {
		return fmt.Errorf("db: encoding table: %w", err)
	}
	analyticsJSON, err := marshalNullable(analytics)
	if err != nil {
		return fmt.Errorf("db: encoding analytics: %w", err)
	}
	diagnosticsJSON, err := marshalNullable(diagnostics)
	if err != nil {
		return fmt.Errorf("db: encoding diagnostics: %w", err)
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE extractions
		 SET status = ?, extracted_data = ?, analytics_data = ?, error_message = ?, diagnostics = ?
		 WHERE id = ?`,
		string(status), tableJSON, analyticsJSON, errMsg, diagnosticsJSON, id)
	if err != nil {
		return fmt.Errorf("db: updating record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db: checking update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return nil
}

// Get returns the record with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*core.ExtractionRecord, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, filename, uploaded_at, status, extracted_data, analytics_data, error_message, diagnostics
		 FROM extractions WHERE id = ?`, id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return record, err
}

// List returns all records, most recently uploaded first.
func (s *SQLiteStore) List(ctx context.Context) ([]*core.ExtractionRecord, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, filename, uploaded_at, status, extracted_data, analytics_data, error_message, diagnostics
		 FROM extractions ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("db: listing records: %w", err)
	}
	defer rows.Close()

	var records []*core.ExtractionRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Stats aggregates record counts.
func (s *SQLiteStore) Stats(ctx context.Context) (*core.StoreStats, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM extractions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("db: aggregating stats: %w", err)
	}
	defer rows.Close()

	stats := &core.StoreStats{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("db: scanning stats: %w", err)
		}
		stats.Total += count
		switch core.RecordStatus(status) {
		case core.StatusCompleted:
			stats.Completed = count
		case core.StatusFailed:
			stats.Failed = count
		case core.StatusProcessing:
			stats.Processing = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if finished := stats.Completed + stats.Failed; finished > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(finished)
	}
	return stats, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord reads one extraction row, decoding the JSON columns.
func scanRecord(s scanner) (*core.ExtractionRecord, error) {
	var record core.ExtractionRecord
	var status string
	var tableJSON, analyticsJSON, diagnosticsJSON sql.NullString

	err := s.Scan(&record.ID, &record.Filename, &record.UploadedAt, &status,
		&tableJSON, &analyticsJSON, &record.ErrorMessage, &diagnosticsJSON)
	if err != nil {
		return nil, err
	}
	record.Status = core.RecordStatus(status)

	if tableJSON.Valid && tableJSON.String != "" {
		record.Table = &core.NormalizedTable{}
		if err := json.Unmarshal([]byte(tableJSON.String), record.Table); err != nil {
			return nil, fmt.Errorf("db: decoding table: %w", err)
		}
	}
	if analyticsJSON.Valid && analyticsJSON.String != "" {
		record.Analytics = &core.AnalyticsResult{}
		if err := json.Unmarshal([]byte(analyticsJSON.String), record.Analytics); err != nil {
			return nil, fmt.Errorf("db: decoding analytics: %w", err)
		}
	}
	if diagnosticsJSON.Valid && diagnosticsJSON.String != "" {
		if err := json.Unmarshal([]byte(diagnosticsJSON.String), &record.Diagnostics); err != nil {
			return nil, fmt.Errorf("db: decoding diagnostics: %w", err)
		}
	}
	return &record, nil
}

// marshalNullable encodes v as JSON, mapping nil to SQL NULL.
func marshalNullable(v interface{}) (sql.NullString, error) {
	switch val := v.(type) {
	case *core.NormalizedTable:
		if val == nil {
			return sql.NullString{}, nil
		}
	case *core.AnalyticsResult:
		if val == nil {
			return sql.NullString{}, nil
		}
	case []string:
		if val == nil {
			return sql.NullString{}, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
