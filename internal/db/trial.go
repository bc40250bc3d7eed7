package db

import (
	"database/sql"
	"fmt"
)

// TrialKey identifies one presentation of a condition.
type TrialKey struct {
	AnimalID int `json:"animal_id"`
	Session  int `json:"session"`
	ScanIdx  int `json:"scan_idx"`
	TrialIdx int `json:"trial_idx"`
}

func (k TrialKey) String() string {
	return fmt.Sprintf("%d/%d/%d/%d", k.AnimalID, k.Session, k.ScanIdx, k.TrialIdx)
}

// Trial is a presentation with the measured frame flip times in seconds.
type Trial struct {
	TrialKey
	ConditionHash string    `json:"condition_hash"`
	FlipTimes     []float64 `json:"flip_times"`
}

// PutTrial stores t, replacing a trial with the same key.
func (db *DB) PutTrial(t Trial) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO trial (animal_id, session, scan_idx, trial_idx, condition_hash, flip_times)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.AnimalID, t.Session, t.ScanIdx, t.TrialIdx, t.ConditionHash, floatsToBlob(t.FlipTimes),
	)
	if err != nil {
		return fmt.Errorf("failed to store trial %s: %w", t.TrialKey, err)
	}
	return nil
}

// TrialsForCondition returns the trials that showed hash, in key order.
func (db *DB) TrialsForCondition(hash string) ([]Trial, error) {
	rows, err := db.Query(`
		SELECT animal_id, session, scan_idx, trial_idx, condition_hash, flip_times
		FROM trial WHERE condition_hash = ?
		ORDER BY animal_id, session, scan_idx, trial_idx`, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to query trials: %w", err)
	}
	return scanTrials(rows)
}

// Trials returns every stored trial in key order.
func (db *DB) Trials() ([]Trial, error) {
	rows, err := db.Query(`
		SELECT animal_id, session, scan_idx, trial_idx, condition_hash, flip_times
		FROM trial ORDER BY animal_id, session, scan_idx, trial_idx`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trials: %w", err)
	}
	return scanTrials(rows)
}

func scanTrials(rows *sql.Rows) ([]Trial, error) {
	defer rows.Close()

	var trials []Trial
	for rows.Next() {
		var (
			t    Trial
			blob []byte
		)
		if err := rows.Scan(&t.AnimalID, &t.Session, &t.ScanIdx, &t.TrialIdx, &t.ConditionHash, &blob); err != nil {
			return nil, err
		}
		flips, err := blobToFloats(blob)
		if err != nil {
			return nil, fmt.Errorf("trial %s: %w", t.TrialKey, err)
		}
		t.FlipTimes = flips
		trials = append(trials, t)
	}
	return trials, rows.Err()
}
