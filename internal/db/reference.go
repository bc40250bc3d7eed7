package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

// PutReferenceMovie archives the movie recorded when hash was presented.
func (db *DB) PutReferenceMovie(hash string, m *stimulus.Movie) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO reference_movie (condition_hash, frames, height, width, fps, pixels)
		VALUES (?, ?, ?, ?, ?, ?)`,
		hash, m.Frames, m.Height, m.Width, m.FPS, m.Pix,
	)
	if err != nil {
		return fmt.Errorf("failed to store reference movie %s: %w", hash, err)
	}
	return nil
}

// GetReferenceMovie loads the archived movie for hash.
func (db *DB) GetReferenceMovie(hash string) (*stimulus.Movie, error) {
	var (
		frames, height, width int
		fps                   float64
		pix                   []byte
	)
	err := db.QueryRow(`
		SELECT frames, height, width, fps, pixels FROM reference_movie WHERE condition_hash = ?`, hash,
	).Scan(&frames, &height, &width, &fps, &pix)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reference movie %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reference movie %s: %w", hash, err)
	}
	if len(pix) != frames*height*width {
		return nil, fmt.Errorf("reference movie %s: %d pixels for shape (%d, %d, %d)", hash, len(pix), frames, height, width)
	}
	return &stimulus.Movie{Frames: frames, Height: height, Width: width, FPS: fps, Pix: pix}, nil
}
