package testdata

import (
	"testing"

	"github.com/ayusman/kathputli/internal/detector"
)

func TestSequences(t *testing.T) {
	names := Sequences()
	if len(names) < 2 {
		t.Fatalf("Sequences() = %v, want at least 2", names)
	}
	for _, name := range names {
		if _, err := LoadSequence(name); err != nil {
			t.Errorf("LoadSequence(%q) error = %v", name, err)
		}
	}
}

func TestLoadSequence_Wave(t *testing.T) {
	poses, err := LoadSequence("wave")
	if err != nil {
		t.Fatalf("LoadSequence() error = %v", err)
	}
	if len(poses) != 4 {
		t.Fatalf("len = %d, want 4", len(poses))
	}
	if poses[2] != nil {
		t.Error("frame 2 should be empty")
	}

	lm, ok := poses[1].Get(detector.RightWrist)
	if !ok || lm.X != 0.28 || lm.Y != 0.20 {
		t.Errorf("RightWrist = %+v, %v", lm, ok)
	}
	if _, ok := poses[0].Get(detector.LeftHip); ok {
		t.Error("joints not listed should be absent")
	}
}

func TestLoadSequence_Missing(t *testing.T) {
	if _, err := LoadSequence("nope"); err == nil {
		t.Error("expected error for missing sequence")
	}
}
