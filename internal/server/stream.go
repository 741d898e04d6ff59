package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/kathputli/internal/app"
)

// StreamInterval is the MJPEG frame period (~15 FPS).
const StreamInterval = 66 * time.Millisecond

// FrameSource provides the most recent composed frame.
type FrameSource interface {
	LatestFrame() *app.Frame
}

// StreamHandler serves the composed canvas as MJPEG.
type StreamHandler struct {
	source FrameSource
}

// NewStreamHandler creates a StreamHandler reading from source.
func NewStreamHandler(source FrameSource) *StreamHandler {
	return &StreamHandler{source: source}
}

// ServeHTTP streams frames until the client goes away. A frame is only sent
// once; the stream idles while the pipeline is quiet.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(StreamInterval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		f := h.source.LatestFrame()
		if f == nil || f.Canvas == nil || f.Seq == lastSeq {
			continue
		}
		lastSeq = f.Seq

		data, err := encodeJPEG(f)
		if err != nil {
			log.Printf("stream encode error: %v", err)
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
		if _, err := w.Write(data); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
	}
}

func encodeJPEG(f *app.Frame) ([]byte, error) {
	mat, err := gocv.ImageToMatRGB(f.Canvas)
	if err != nil {
		return nil, fmt.Errorf("convert canvas: %w", err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory released by Close.
	return append([]byte(nil), buf.GetBytes()...), nil
}
