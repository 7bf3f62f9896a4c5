// Package sqlite implements the completed-assessment archive on an embedded
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/raecer/intake-api/internal/proctcae"
)

// ArchivedAssessment is one completed intake assessment: the extracted
// patient summary plus the PRO-CTCAE record derived from it.
type ArchivedAssessment struct {
	SessionID       string                   `json:"session_id"`
	AssessedAt      time.Time                `json:"assessed_at"`
	PatientSummary  *proctcae.PatientSummary `json:"patient_summary"`
	Record          *proctcae.Record         `json:"record,omitempty"`
	ClinicalSummary string                   `json:"clinical_summary,omitempty"`
}

// Archive stores completed assessments for later review and batch
// reprocessing.
type Archive struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS assessments (
	session_id       TEXT PRIMARY KEY,
	assessed_at      TEXT NOT NULL,
	patient_json     TEXT NOT NULL,
	record_json      TEXT,
	clinical_summary TEXT
);`

// NewArchive opens (and if needed initializes) the archive database at path.
func NewArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the underlying database
func (a *Archive) Close() error {
	return a.db.Close()
}

// SaveAssessment upserts one assessment row
func (a *Archive) SaveAssessment(ctx context.Context, assessment ArchivedAssessment) error {
	patientJSON, err := json.Marshal(assessment.PatientSummary)
	if err != nil {
		return fmt.Errorf("failed to marshal patient summary: %w", err)
	}

	var recordJSON sql.NullString
	if assessment.Record != nil {
		data, err := json.Marshal(assessment.Record)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		recordJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO assessments (session_id, assessed_at, patient_json, record_json, clinical_summary)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			assessed_at = excluded.assessed_at,
			patient_json = excluded.patient_json,
			record_json = excluded.record_json,
			clinical_summary = excluded.clinical_summary`,
		assessment.SessionID,
		assessment.AssessedAt.UTC().Format(time.RFC3339),
		string(patientJSON),
		recordJSON,
		assessment.ClinicalSummary,
	)
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}
	return nil
}

// List returns archived assessments ordered by assessment time. With
// onlyMissing set, only rows without a PRO-CTCAE record are returned.
func (a *Archive) List(ctx context.Context, onlyMissing bool) ([]ArchivedAssessment, error) {
	query := `SELECT session_id, assessed_at, patient_json, record_json, clinical_summary
		FROM assessments`
	if onlyMissing {
		query += ` WHERE record_json IS NULL`
	}
	query += ` ORDER BY assessed_at`

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var assessments []ArchivedAssessment
	for rows.Next() {
		var (
			assessment      ArchivedAssessment
			assessedAt      string
			patientJSON     string
			recordJSON      sql.NullString
			clinicalSummary sql.NullString
		)
		if err := rows.Scan(&assessment.SessionID, &assessedAt, &patientJSON, &recordJSON, &clinicalSummary); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}

		assessment.AssessedAt, err = time.Parse(time.RFC3339, assessedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse assessed_at: %w", err)
		}
		if err := json.Unmarshal([]byte(patientJSON), &assessment.PatientSummary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal patient summary: %w", err)
		}
		if recordJSON.Valid {
			if err := json.Unmarshal([]byte(recordJSON.String), &assessment.Record); err != nil {
				return nil, fmt.Errorf("failed to unmarshal record: %w", err)
			}
		}
		assessment.ClinicalSummary = clinicalSummary.String

		assessments = append(assessments, assessment)
	}

	return assessments, rows.Err()
}

// UpdateRecord attaches a regenerated PRO-CTCAE record to an archived summary
func (a *Archive) UpdateRecord(ctx context.Context, sessionID string, record *proctcae.Record, clinicalSummary string) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	result, err := a.db.ExecContext(ctx, `
		UPDATE assessments SET record_json = ?, clinical_summary = ? WHERE session_id = ?`,
		string(recordJSON), clinicalSummary, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no archived assessment for session %s", sessionID)
	}
	return nil
}
