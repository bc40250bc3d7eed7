package stimulus

// Visual is a stimulus movie that can be synchronized with recorded
// activity to compute receptive fields.
type Visual interface {
	// Params uniquely summarizes the stimulus.
	Params() map[string]any
	// FrameCount is the number of frames displayed during a trial.
	FrameCount() int
	// FPS is the display frame rate.
	FPS() float64
	// Movie is the grayscale movie of shape (frames, height, width).
	Movie() (*Movie, error)
}

var (
	_ Visual = (*Trippy)(nil)
	_ Visual = (*Monet2)(nil)
)
