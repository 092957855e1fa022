package camstudio

// Stats is a read-only snapshot of engine state, published once per tick
// after each successful render. Values describe the most recent frame.
type Stats struct {
	// FPS is the frame rate estimated from recent frame times.
	FPS float64

	// Width and Height are the current output surface dimensions.
	Width, Height int

	// FrameTimeMs is the duration of the last rendered frame.
	FrameTimeMs float64

	// DroppedFrames counts frames skipped since engine construction
	// (context lost, disposed mid-tick).
	DroppedFrames uint64
}
