package db

import (
	"database/sql"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

// PutCondition stores the parameters of a Trippy condition under hash,
// replacing any previous record. A packed phase movie is stored when p has
// one; otherwise the seed is.
func (db *DB) PutCondition(hash string, p stimulus.Params) error {
	var (
		seed       sql.NullInt64
		packed     []byte
		rows, cols int
	)
	if p.PackedPhase != nil {
		rows, cols = p.PackedPhase.Dims()
		packed = floatsToBlob(mat.DenseCopyOf(p.PackedPhase).RawMatrix().Data)
	} else if p.Seed != nil {
		seed = sql.NullInt64{Int64: int64(*p.Seed), Valid: true}
	} else {
		return fmt.Errorf("condition %s has neither a seed nor a packed phase movie", hash)
	}

	_, err := db.Exec(`
		INSERT OR REPLACE INTO trippy_condition (
			condition_hash, stimulus_version, fps, rng_seed, up_factor, temp_freq,
			temp_kernel_length, duration, spatial_freq, tex_xdim, tex_ydim,
			xnodes, ynodes, packed_rows, packed_cols, packed_phase_movie
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		hash, stimulus.TrippyVersion, p.FrameRate, seed, p.UpscaleFactor, p.TemporalFrequency,
		p.TemporalKernelLength, p.Duration, p.SpatialFrequency, p.TextureWidth, p.TextureHeight,
		p.NodesX, p.NodesY, rows, cols, packed,
	)
	if err != nil {
		return fmt.Errorf("failed to store condition %s: %w", hash, err)
	}
	return nil
}

// GetCondition returns the stored record for hash in the shape of a
// condition fetched from the experiment database.
func (db *DB) GetCondition(hash string) (stimulus.Condition, error) {
	var (
		version                        string
		fps, tempFreq, dur, spatial    float64
		seed                           sql.NullInt64
		up, kernel, texX, texY, nx, ny int
		rows, cols                     int
		packed                         []byte
	)
	err := db.QueryRow(`
		SELECT stimulus_version, fps, rng_seed, up_factor, temp_freq, temp_kernel_length,
			duration, spatial_freq, tex_xdim, tex_ydim, xnodes, ynodes,
			packed_rows, packed_cols, packed_phase_movie
		FROM trippy_condition WHERE condition_hash = ?`, hash,
	).Scan(&version, &fps, &seed, &up, &tempFreq, &kernel,
		&dur, &spatial, &texX, &texY, &nx, &ny,
		&rows, &cols, &packed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("condition %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load condition %s: %w", hash, err)
	}

	cond := stimulus.Condition{
		stimulus.FieldConditionHash: hash,
		stimulus.FieldVersion:       version,
		stimulus.FieldFPS:           fps,
		stimulus.FieldUpFactor:      up,
		stimulus.FieldTempFreq:      tempFreq,
		stimulus.FieldTempKernel:    kernel,
		stimulus.FieldDuration:      dur,
		stimulus.FieldSpatialFreq:   spatial,
		stimulus.FieldTexWidth:      texX,
		stimulus.FieldTexHeight:     texY,
		stimulus.FieldNodesX:        nx,
		stimulus.FieldNodesY:        ny,
	}
	if seed.Valid {
		cond[stimulus.FieldSeed] = seed.Int64
	}
	if packed != nil {
		data, err := blobToFloats(packed)
		if err != nil {
			return nil, fmt.Errorf("condition %s: %w", hash, err)
		}
		if len(data) != rows*cols || rows == 0 {
			return nil, fmt.Errorf("condition %s: packed phase has %d values for %dx%d", hash, len(data), rows, cols)
		}
		cond[stimulus.FieldPackedPhase] = mat.NewDense(rows, cols, data)
	}
	return cond, nil
}

// ListConditionHashes returns every stored condition hash in order.
func (db *DB) ListConditionHashes() ([]string, error) {
	rows, err := db.Query(`SELECT condition_hash FROM trippy_condition ORDER BY condition_hash`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conditions: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}
