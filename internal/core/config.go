package core

// RuntimeConfig describes the terminal a frontend draws into.
type RuntimeConfig struct {
	ScreenW int // Screen width in characters
	ScreenH int // Screen height in characters
	FPS     int // Frames per second of the render loop
}

// DefaultConfig returns an 80x24 terminal at 60 frames per second.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW: 80,
		ScreenH: 24,
		FPS:     60,
	}
}

// WithSize returns a copy with the given dimensions. Non-positive values
// keep the current ones.
func (c RuntimeConfig) WithSize(w, h int) RuntimeConfig {
	if w > 0 {
		c.ScreenW = w
	}
	if h > 0 {
		c.ScreenH = h
	}
	return c
}
