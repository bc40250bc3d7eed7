package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"math"
	"reflect"

	"github.com/icza/mjpeg"

	"github.com/banshee-data/monet-trippy/internal/monitoring"
	"github.com/banshee-data/monet-trippy/internal/stimulus"
)

// DefaultQuality is the JPEG quality used for AVI frames.
const DefaultQuality = 90

// WriteAVI encodes every frame of m as a JPEG and writes them to an MJPEG
// AVI at path. The frame rate is rounded to the nearest integer since the
// container header stores whole frames per second.
func WriteAVI(path string, m *stimulus.Movie, quality int) (err error) {
	if m.Frames == 0 || m.Width == 0 || m.Height == 0 {
		return errors.New("cannot export an empty movie")
	}
	if quality < 1 || quality > 100 {
		return fmt.Errorf("jpeg quality %d out of range [1, 100]", quality)
	}
	fps := int32(math.Round(m.FPS))
	if fps < 1 {
		return fmt.Errorf("frame rate %g too low for AVI export", m.FPS)
	}

	defer monitoring.Timed("export " + path)()

	aw, err := mjpeg.New(path, int32(m.Width), int32(m.Height), fps)
	if err != nil {
		return fmt.Errorf("create avi %s: %w", path, err)
	}
	defer func() {
		if cerr := aw.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close avi %s: %w", path, cerr)
		}
	}()

	var buf bytes.Buffer
	opts := &jpeg.Options{Quality: quality}
	for t := 0; t < m.Frames; t++ {
		if err := jpeg.Encode(&buf, m.Frame(t), opts); err != nil {
			return fmt.Errorf("encode frame %d: %w", t, err)
		}
		if err := aw.AddFrame(buf.Bytes()); err != nil {
			return fmt.Errorf("add frame %d: %w", t, err)
		}
		buf.Reset()
	}
	return nil
}

// DefaultFilename names an exported movie after the stimulus type, e.g.
// "Trippy.avi" or "Trippy_seed7.avi" for suffix "_seed7".
func DefaultFilename(v stimulus.Visual, suffix string) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := "Visual"
	if t != nil && t.Name() != "" {
		name = t.Name()
	}
	return name + suffix + ".avi"
}
