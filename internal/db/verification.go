package db

import (
	"fmt"
	"time"
)

// Verification is the outcome of comparing one reconstruction against its
// reference movie.
type Verification struct {
	ID            int64     `json:"id"`
	RunID         string    `json:"run_id"`
	ConditionHash string    `json:"condition_hash"`
	MaxAbsDiff    int       `json:"max_abs_diff"`
	Passed        bool      `json:"passed"`
	Message       string    `json:"message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// RecordVerification appends v and sets its ID. A zero CreatedAt is set to
// the current time.
func (db *DB) RecordVerification(v *Verification) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	res, err := db.Exec(`
		INSERT INTO verification (run_id, condition_hash, max_abs_diff, passed, message, created_unix_nanos)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.RunID, v.ConditionHash, v.MaxAbsDiff, v.Passed, v.Message, v.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record verification: %w", err)
	}
	if v.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read verification id: %w", err)
	}
	return nil
}

// Verifications returns the outcomes of runID, or of every run when runID
// is empty, oldest first.
func (db *DB) Verifications(runID string) ([]Verification, error) {
	query := `SELECT verification_id, run_id, condition_hash, max_abs_diff, passed, message, created_unix_nanos
		FROM verification`
	var args []any
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY verification_id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verifications: %w", err)
	}
	defer rows.Close()

	var out []Verification
	for rows.Next() {
		var (
			v     Verification
			nanos int64
		)
		if err := rows.Scan(&v.ID, &v.RunID, &v.ConditionHash, &v.MaxAbsDiff, &v.Passed, &v.Message, &nanos); err != nil {
			return nil, err
		}
		v.CreatedAt = time.Unix(0, nanos)
		out = append(out, v)
	}
	return out, rows.Err()
}
