package capture

import (
	"testing"
)

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantFPS int
	}{
		{
			name:    "defaults",
			cfg:     DefaultConfig(),
			wantFPS: 5,
		},
		{
			name:    "zero config takes defaults",
			cfg:     Config{DeviceID: 1},
			wantFPS: 5,
		},
		{
			name:    "explicit rate",
			cfg:     Config{DeviceID: 2, FPS: 30},
			wantFPS: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.cfg)
			if cam == nil {
				t.Fatal("NewCamera returned nil")
			}

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
			if cam.IsOpen() {
				t.Error("camera should not be running initially")
			}
		})
	}
}

func TestNewCamera_FillsSize(t *testing.T) {
	cam := NewCamera(Config{Width: 0, Height: 720}).(*cameraImpl)

	if cam.cfg.Width != DefaultWidth || cam.cfg.Height != DefaultHeight {
		t.Errorf("size = %dx%d, want %dx%d", cam.cfg.Width, cam.cfg.Height, DefaultWidth, DefaultHeight)
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	tests := []struct {
		name    string
		fps     int
		wantFPS int
	}{
		{name: "set to 10", fps: 10, wantFPS: 10},
		{name: "set to 1", fps: 1, wantFPS: 1},
		{name: "zero keeps previous", fps: 0, wantFPS: 1},
		{name: "negative keeps previous", fps: -5, wantFPS: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetFPS(tt.fps)
			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
		})
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(DefaultConfig())
	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat.Empty() {
			t.Error("ReadFrame() returned empty mat")
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	if _, err := cam.ReadFrame(); err != ErrCameraNotOpen {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on not opened camera should return nil, got: %v", err)
	}
}
