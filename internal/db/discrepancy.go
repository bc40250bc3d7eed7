package db

import "fmt"

// Discrepancy is the difference between the frames a trial should have
// shown and the flips that were recorded.
type Discrepancy struct {
	TrialKey
	ConditionHash  string  `json:"condition_hash"`
	ExpectedFrames float64 `json:"expected_frames"`
	Flips          int     `json:"flips"`
	Value          float64 `json:"discrepancy"`
}

// RecordDiscrepancy stores d, replacing an earlier value for the same trial.
func (db *DB) RecordDiscrepancy(d Discrepancy) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO discrepancy (
			animal_id, session, scan_idx, trial_idx, condition_hash, expected_frames, flips, discrepancy
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.AnimalID, d.Session, d.ScanIdx, d.TrialIdx, d.ConditionHash, d.ExpectedFrames, d.Flips, d.Value,
	)
	if err != nil {
		return fmt.Errorf("failed to record discrepancy for %s: %w", d.TrialKey, err)
	}
	return nil
}

// Discrepancies returns every stored discrepancy in trial key order.
func (db *DB) Discrepancies() ([]Discrepancy, error) {
	rows, err := db.Query(`
		SELECT animal_id, session, scan_idx, trial_idx, condition_hash, expected_frames, flips, discrepancy
		FROM discrepancy ORDER BY animal_id, session, scan_idx, trial_idx`)
	if err != nil {
		return nil, fmt.Errorf("failed to query discrepancies: %w", err)
	}
	defer rows.Close()

	var out []Discrepancy
	for rows.Next() {
		var d Discrepancy
		if err := rows.Scan(&d.AnimalID, &d.Session, &d.ScanIdx, &d.TrialIdx,
			&d.ConditionHash, &d.ExpectedFrames, &d.Flips, &d.Value); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
