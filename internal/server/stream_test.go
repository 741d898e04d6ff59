package server

import (
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayusman/kathputli/internal/app"
)

func TestStreamHandler_MethodNotAllowed(t *testing.T) {
	h := NewStreamHandler(&fakePuppet{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stream", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestStreamHandler_NoFrames(t *testing.T) {
	h := NewStreamHandler(&fakePuppet{})

	ctx, cancel := context.WithTimeout(context.Background(), 3*StreamInterval)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); got != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("Content-Type = %q", got)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected no parts without frames, got %d bytes", rec.Body.Len())
	}
}

func TestStreamHandler_SendsFrameOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv encode in short mode")
	}

	canvas := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for i := range canvas.Pix {
		canvas.Pix[i] = 0xff
	}
	canvas.Set(1, 1, color.RGBA{R: 0xff, A: 0xff})

	f := sampleFrame(7)
	f.Canvas = canvas
	h := NewStreamHandler(&fakePuppet{frame: f})

	ctx, cancel := context.WithTimeout(context.Background(), 5*StreamInterval)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	body := rec.Body.String()
	if n := strings.Count(body, "--frame\r\n"); n != 1 {
		t.Errorf("expected the same frame to be sent once, got %d parts", n)
	}
	if !strings.Contains(body, "Content-Type: image/jpeg") {
		t.Error("expected a jpeg part")
	}
}

func TestEncodeJPEG(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv encode in short mode")
	}

	f := &app.Frame{Canvas: image.NewRGBA(image.Rect(0, 0, 16, 16))}
	data, err := encodeJPEG(f)
	if err != nil {
		t.Fatalf("encodeJPEG() error = %v", err)
	}
	// JPEG SOI marker.
	if len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
		t.Errorf("expected JPEG data, got % x", data[:min(len(data), 4)])
	}
}
