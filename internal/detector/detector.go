package detector

import "gocv.io/x/gocv"

// Detector defines the interface for pose detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks of the most
	// prominent person. Returns a nil pose if nobody is detected.
	Detect(frame *gocv.Mat) (*Pose, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64 `yaml:"min_confidence"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`

	// MinVisibility is the per-landmark visibility below which a landmark
	// is reported as absent.
	MinVisibility float64 `yaml:"min_visibility"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		MinVisibility:   0.5,
	}
}
