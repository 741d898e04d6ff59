package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	pose  *Pose
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPose sets the pose that will be returned by Detect. nil means nobody.
func (m *MockDetector) SetPose(pose *Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pose = pose
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured pose or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Pose, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.pose.Clone(), nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// NeutralPose returns a person standing square to the camera with arms hanging down.
func NeutralPose() *Pose {
	p := &Pose{Score: 0.95}

	p.Set(Nose, 0.50, 0.25)
	// Subject's left is the image's right.
	p.Set(LeftEye, 0.53, 0.22)
	p.Set(RightEye, 0.47, 0.22)
	p.Set(LeftEar, 0.56, 0.23)
	p.Set(RightEar, 0.44, 0.23)

	p.Set(LeftShoulder, 0.60, 0.40)
	p.Set(RightShoulder, 0.40, 0.40)
	p.Set(LeftElbow, 0.62, 0.55)
	p.Set(RightElbow, 0.38, 0.55)
	p.Set(LeftWrist, 0.63, 0.70)
	p.Set(RightWrist, 0.37, 0.70)

	p.Set(LeftHip, 0.57, 0.70)
	p.Set(RightHip, 0.43, 0.70)
	p.Set(LeftKnee, 0.57, 0.85)
	p.Set(RightKnee, 0.43, 0.85)
	p.Set(LeftAnkle, 0.57, 0.98)
	p.Set(RightAnkle, 0.43, 0.98)

	return p
}

// ArmsRaisedPose returns the neutral pose with both forearms raised above the elbows.
func ArmsRaisedPose() *Pose {
	p := NeutralPose()

	p.Set(LeftElbow, 0.72, 0.40)
	p.Set(RightElbow, 0.28, 0.40)
	p.Set(LeftWrist, 0.72, 0.25)
	p.Set(RightWrist, 0.28, 0.25)

	return p
}

// HeadTiltPose returns the neutral pose with the head tilted toward the subject's right shoulder.
func HeadTiltPose() *Pose {
	p := NeutralPose()

	p.Set(LeftEye, 0.53, 0.20)
	p.Set(RightEye, 0.47, 0.24)

	return p
}
