package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestPose_Get(t *testing.T) {
	t.Run("nil pose reports every joint absent", func(t *testing.T) {
		var pose *Pose
		for j := Joint(0); j < NumJoints; j++ {
			if _, ok := pose.Get(j); ok {
				t.Errorf("expected %s to be absent on nil pose", j)
			}
		}
		if pose.PresentCount() != 0 {
			t.Errorf("expected 0 present landmarks, got %d", pose.PresentCount())
		}
	})

	t.Run("set landmark is present", func(t *testing.T) {
		pose := &Pose{}
		pose.Set(LeftElbow, 0.5, 0.6)

		lm, ok := pose.Get(LeftElbow)
		if !ok {
			t.Fatal("expected LeftElbow to be present")
		}
		if lm.X != 0.5 || lm.Y != 0.6 {
			t.Errorf("expected (0.5, 0.6), got (%f, %f)", lm.X, lm.Y)
		}
		if _, ok := pose.Get(RightElbow); ok {
			t.Error("expected RightElbow to be absent")
		}
	})

	t.Run("out of range joint is absent", func(t *testing.T) {
		pose := NeutralPose()
		if _, ok := pose.Get(NumJoints); ok {
			t.Error("expected NumJoints to be absent")
		}
		if _, ok := pose.Get(Joint(-1)); ok {
			t.Error("expected negative joint to be absent")
		}
	})
}

func TestPose_Clone(t *testing.T) {
	original := NeutralPose()
	clone := original.Clone()
	clone.Set(Nose, 0.1, 0.1)

	if original.Points[Nose].X == 0.1 {
		t.Error("modifying the clone changed the original")
	}

	var nilPose *Pose
	if nilPose.Clone() != nil {
		t.Error("expected nil clone of nil pose")
	}
}

func TestParseJoint(t *testing.T) {
	tests := []struct {
		name    string
		want    Joint
		wantErr bool
	}{
		{name: "LeftShoulder", want: LeftShoulder},
		{name: "rightwrist", want: RightWrist},
		{name: "NOSE", want: Nose},
		{name: "LeftTentacle", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJoint(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownJoint) {
					t.Errorf("expected ErrUnknownJoint, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseJoint(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestJoint_String(t *testing.T) {
	if LeftEye.String() != "LeftEye" {
		t.Errorf("expected LeftEye, got %s", LeftEye.String())
	}
	if NumJoints.String() != "Joint(17)" {
		t.Errorf("expected Joint(17), got %s", NumJoints.String())
	}
}

func TestParsePoseResponse(t *testing.T) {
	t.Run("empty landmarks means nobody", func(t *testing.T) {
		pose, err := parsePoseResponse([]byte(`{"landmarks": []}`), 0.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pose != nil {
			t.Errorf("expected nil pose, got %+v", pose)
		}
	})

	t.Run("maps mediapipe indices and visibility", func(t *testing.T) {
		landmarks := make([]map[string]float64, 33)
		for i := range landmarks {
			landmarks[i] = map[string]float64{"x": 0.5, "y": 0.5, "visibility": 0.9}
		}
		landmarks[13] = map[string]float64{"x": 0.25, "y": 0.75, "visibility": 0.9}
		landmarks[14] = map[string]float64{"x": 0.3, "y": 0.3, "visibility": 0.1}
		landmarks[15] = map[string]float64{"x": 1.4, "y": 0.3, "visibility": 0.9}

		line := mustJSON(t, map[string]any{"landmarks": landmarks, "score": 0.8})
		pose, err := parsePoseResponse(line, 0.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lm, ok := pose.Get(LeftElbow)
		if !ok {
			t.Fatal("expected LeftElbow present")
		}
		if math.Abs(lm.X-0.25) > epsilon || math.Abs(lm.Y-0.75) > epsilon {
			t.Errorf("LeftElbow = (%f, %f), want (0.25, 0.75)", lm.X, lm.Y)
		}
		if _, ok := pose.Get(RightElbow); ok {
			t.Error("low visibility RightElbow should be absent")
		}
		if _, ok := pose.Get(LeftWrist); ok {
			t.Error("out of frame LeftWrist should be absent")
		}
		if pose.Score != 0.8 {
			t.Errorf("score = %f, want 0.8", pose.Score)
		}
	})

	t.Run("short landmark list leaves missing joints absent", func(t *testing.T) {
		line := []byte(`{"landmarks": [{"x": 0.5, "y": 0.4, "visibility": 1}]}`)
		pose, err := parsePoseResponse(line, 0.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := pose.Get(Nose); !ok {
			t.Error("expected Nose present")
		}
		if pose.PresentCount() != 1 {
			t.Errorf("expected 1 present landmark, got %d", pose.PresentCount())
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := parsePoseResponse([]byte(`{`), 0.5); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}

func TestFaceToPose(t *testing.T) {
	pose := faceToPose(240, 320, 100, 12.5, 480, 640)

	nose, ok := pose.Get(Nose)
	if !ok {
		t.Fatal("expected Nose present")
	}
	if math.Abs(nose.X-0.5) > epsilon || math.Abs(nose.Y-0.5) > epsilon {
		t.Errorf("Nose = (%f, %f), want (0.5, 0.5)", nose.X, nose.Y)
	}

	left, _ := pose.Get(LeftEye)
	right, _ := pose.Get(RightEye)
	if left.X <= right.X {
		t.Error("subject's left eye should be on the image's right")
	}
	if left.Y != right.Y {
		t.Error("estimated eyes should be level")
	}
	if _, ok := pose.Get(LeftShoulder); ok {
		t.Error("face detector should not report shoulders")
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns nil pose by default", func(t *testing.T) {
		mock := NewMockDetector()

		pose, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if pose != nil {
			t.Errorf("expected nil pose, got %v", pose)
		}
	})

	t.Run("returns a copy of the configured pose", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetPose(ArmsRaisedPose())

		pose, err := mock.Detect(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		pose.Set(Nose, 0, 0)

		again, _ := mock.Detect(nil)
		if again.Points[Nose].X == 0 {
			t.Error("caller mutation leaked into the mock")
		}
		if mock.Calls() != 2 {
			t.Errorf("expected 2 calls, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		pose, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if pose != nil {
			t.Errorf("expected nil pose when error is set, got %v", pose)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*FaceDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPresets(t *testing.T) {
	t.Run("neutral pose has every joint", func(t *testing.T) {
		if got := NeutralPose().PresentCount(); got != int(NumJoints) {
			t.Errorf("expected %d present joints, got %d", NumJoints, got)
		}
	})

	t.Run("raised wrists are above elbows", func(t *testing.T) {
		p := ArmsRaisedPose()
		if p.Points[LeftWrist].Y >= p.Points[LeftElbow].Y {
			t.Error("left wrist should be above left elbow (lower Y)")
		}
		if p.Points[RightWrist].Y >= p.Points[RightElbow].Y {
			t.Error("right wrist should be above right elbow (lower Y)")
		}
	})

	t.Run("tilted head has uneven eyes", func(t *testing.T) {
		p := HeadTiltPose()
		if p.Points[LeftEye].Y == p.Points[RightEye].Y {
			t.Error("expected eyes at different heights")
		}
	})
}
