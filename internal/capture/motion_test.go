package capture

import (
	"testing"
	"time"
)

func TestNewMotionDetector_Threshold(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "explicit", in: 5, want: 5},
		{name: "fractional", in: 0.5, want: 0.5},
		{name: "zero falls back", in: 0, want: DefaultMotionThreshold},
		{name: "negative falls back", in: -3, want: DefaultMotionThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.in)
			defer md.Close()

			if md.threshold != tt.want {
				t.Errorf("threshold = %f, want %f", md.threshold, tt.want)
			}
			if md.initialized {
				t.Error("a new detector has no baseline")
			}
		})
	}
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	md.SetThreshold(5.0)
	if md.threshold != 5.0 {
		t.Errorf("threshold = %f, want 5.0", md.threshold)
	}

	// Non-positive values are ignored.
	md.SetThreshold(-1.0)
	if md.threshold != 5.0 {
		t.Errorf("threshold = %f, want 5.0 after a negative update", md.threshold)
	}
}

func TestMotionDetector_Sequences(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	tests := []struct {
		name      string
		threshold float64
		levels    []float64
		// want holds the expected result for every frame after the first.
		want []bool
	}{
		{name: "static scene", threshold: 1, levels: []float64{0, 0, 0}, want: []bool{false, false}},
		{name: "lights on", threshold: 1, levels: []float64{0, 255}, want: []bool{true}},
		{name: "on then steady", threshold: 1, levels: []float64{0, 255, 255}, want: []bool{true, false}},
		{name: "below the diff threshold", threshold: 1, levels: []float64{100, 110}, want: []bool{false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			defer md.Close()

			frames := SolidFrames(160, 120, tt.levels...)
			defer CloseFrames(frames)

			if moved, pct := md.Detect(frames[0]); moved || pct != 0 {
				t.Fatalf("first frame = (%v, %f), want baseline only", moved, pct)
			}
			for i, want := range tt.want {
				moved, pct := md.Detect(frames[i+1])
				if moved != want {
					t.Errorf("frame %d: moved = %v (%.1f%%), want %v", i+1, moved, pct, want)
				}
			}
		})
	}
}

func TestMotionDetector_FullChangePercent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frames := SolidFrames(160, 120, 0, 255)
	defer CloseFrames(frames)

	md.Detect(frames[0])
	if _, pct := md.Detect(frames[1]); pct < 50 {
		t.Errorf("changePercent = %f, want > 50 for black to white", pct)
	}
}

func TestMotionDetector_ResetAndClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	frames := SolidFrames(64, 48, 0, 255)
	defer CloseFrames(frames)

	md.Detect(frames[0])
	if !md.initialized {
		t.Fatal("expected a baseline after the first frame")
	}

	md.Reset()
	if md.initialized || !md.prevGray.Empty() {
		t.Error("Reset should drop the baseline")
	}
	if moved, _ := md.Detect(frames[1]); moved {
		t.Error("the first frame after Reset only sets the baseline")
	}

	// Close is idempotent and the detector recovers afterwards.
	md.Close()
	md.Close()
	if moved, _ := md.Detect(frames[0]); moved {
		t.Error("the first frame after Close only sets the baseline")
	}
	md.Close()
}

func TestMotionDetector_SizeChangeRebaselines(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	small := SolidFrames(64, 48, 0)
	large := SolidFrames(128, 96, 255)
	defer CloseFrames(small)
	defer CloseFrames(large)

	md.Detect(small[0])
	if detected, _ := md.Detect(large[0]); detected {
		t.Error("a frame of a new size should only set the baseline")
	}
}

func TestMotionDetector_EmptyFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if moved, pct := md.Detect(nil); moved || pct != 0 {
		t.Errorf("Detect(nil) = (%v, %f)", moved, pct)
	}
}

func TestGate(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	g := NewGate(2 * time.Second)

	steps := []struct {
		name        string
		motion      bool
		at          time.Duration
		wantActive  bool
		wantChanged bool
	}{
		{"still at start", false, 0, false, false},
		{"motion opens", true, 100 * time.Millisecond, true, true},
		{"more motion", true, 200 * time.Millisecond, true, false},
		{"quiet within timeout", false, 2 * time.Second, true, false},
		{"quiet past timeout closes", false, 2300 * time.Millisecond, false, true},
		{"still closed", false, 5 * time.Second, false, false},
		{"motion reopens", true, 6 * time.Second, true, true},
	}

	for _, s := range steps {
		active, changed := g.Observe(s.motion, start.Add(s.at))
		if active != s.wantActive || changed != s.wantChanged {
			t.Errorf("%s: Observe() = (%v, %v), want (%v, %v)", s.name, active, changed, s.wantActive, s.wantChanged)
		}
		if g.Active() != active {
			t.Errorf("%s: Active() = %v, want %v", s.name, g.Active(), active)
		}
	}
}
