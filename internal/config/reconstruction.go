package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

// ReconstructionConfig overrides the Trippy parameters used when a movie is
// rendered from a bare seed, plus the verification settings. Field names
// follow the condition record so a record's parameters can be pasted in.
type ReconstructionConfig struct {
	// Stimulus params
	FrameRate            *float64 `json:"fps,omitempty"`
	TextureWidth         *int     `json:"tex_xdim,omitempty"`
	TextureHeight        *int     `json:"tex_ydim,omitempty"`
	NodesX               *int     `json:"xnodes,omitempty"`
	NodesY               *int     `json:"ynodes,omitempty"`
	UpscaleFactor        *int     `json:"up_factor,omitempty"`
	Duration             *float64 `json:"duration,omitempty"`
	TemporalFrequency    *float64 `json:"temp_freq,omitempty"`
	TemporalKernelLength *int     `json:"temp_kernel_length,omitempty"`
	SpatialFrequency     *float64 `json:"spatial_freq,omitempty"`

	// Verification params
	Tolerance     *int    `json:"tolerance,omitempty"`      // max |a-b| gray levels accepted
	VerifyTimeout *string `json:"verify_timeout,omitempty"` // duration string like "10m"
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// DefaultReconstructionConfig returns a config with every field set to the
// standard 15 s clip.
func DefaultReconstructionConfig() *ReconstructionConfig {
	d := stimulus.DefaultParams()
	return &ReconstructionConfig{
		FrameRate:            ptrFloat64(d.FrameRate),
		TextureWidth:         ptrInt(d.TextureWidth),
		TextureHeight:        ptrInt(d.TextureHeight),
		NodesX:               ptrInt(d.NodesX),
		NodesY:               ptrInt(d.NodesY),
		UpscaleFactor:        ptrInt(d.UpscaleFactor),
		Duration:             ptrFloat64(d.Duration),
		TemporalFrequency:    ptrFloat64(d.TemporalFrequency),
		TemporalKernelLength: ptrInt(d.TemporalKernelLength),
		SpatialFrequency:     ptrFloat64(d.SpatialFrequency),
		Tolerance:            ptrInt(0),
		VerifyTimeout:        ptrString("10m"),
	}
}

// LoadReconstructionConfig loads a ReconstructionConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Omitted fields fall
// back to the defaults through the Get* methods.
func LoadReconstructionConfig(path string) (*ReconstructionConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &ReconstructionConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that are set. Stimulus parameters are checked
// in full by stimulus.Params.Validate once a seed is known.
func (c *ReconstructionConfig) Validate() error {
	if c.TemporalKernelLength != nil {
		if n := *c.TemporalKernelLength; n < 3 || n%2 == 0 {
			return fmt.Errorf("temp_kernel_length must be odd and >= 3, got %d", n)
		}
	}
	if c.FrameRate != nil && *c.FrameRate <= 0 {
		return fmt.Errorf("fps must be positive, got %f", *c.FrameRate)
	}
	if c.Duration != nil && *c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", *c.Duration)
	}
	if c.Tolerance != nil && (*c.Tolerance < 0 || *c.Tolerance > 255) {
		return fmt.Errorf("tolerance must be between 0 and 255, got %d", *c.Tolerance)
	}
	if c.VerifyTimeout != nil && *c.VerifyTimeout != "" {
		if _, err := time.ParseDuration(*c.VerifyTimeout); err != nil {
			return fmt.Errorf("invalid verify_timeout '%s': %w", *c.VerifyTimeout, err)
		}
	}
	return nil
}

// Params returns the stimulus parameters for seed with every unset field
// taken from stimulus.DefaultParams.
func (c *ReconstructionConfig) Params(seed uint32) stimulus.Params {
	p := stimulus.DefaultParams()
	setFloat(&p.FrameRate, c.FrameRate)
	setInt(&p.TextureWidth, c.TextureWidth)
	setInt(&p.TextureHeight, c.TextureHeight)
	setInt(&p.NodesX, c.NodesX)
	setInt(&p.NodesY, c.NodesY)
	setInt(&p.UpscaleFactor, c.UpscaleFactor)
	setFloat(&p.Duration, c.Duration)
	setFloat(&p.TemporalFrequency, c.TemporalFrequency)
	setInt(&p.TemporalKernelLength, c.TemporalKernelLength)
	setFloat(&p.SpatialFrequency, c.SpatialFrequency)
	return p.Seeded(seed)
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// GetTolerance returns the tolerance value or the default of 0.
func (c *ReconstructionConfig) GetTolerance() int {
	if c.Tolerance == nil {
		return 0
	}
	return *c.Tolerance
}

// GetVerifyTimeout parses and returns the VerifyTimeout as a time.Duration.
func (c *ReconstructionConfig) GetVerifyTimeout() time.Duration {
	if c.VerifyTimeout == nil || *c.VerifyTimeout == "" {
		return 10 * time.Minute
	}
	d, err := time.ParseDuration(*c.VerifyTimeout)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}
