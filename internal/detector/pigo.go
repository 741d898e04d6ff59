package detector

import (
	"fmt"
	"os"
	"sync"

	pigo "github.com/esimov/pigo/core"
	"gocv.io/x/gocv"
)

// Face cascade tuning.
const (
	faceMinSize      = 60
	faceShiftFactor  = 0.1
	faceScaleFactor  = 1.1
	faceMinQuality   = 5.0
	faceIoUThreshold = 0.2

	// Eye offsets relative to the detected face size.
	eyeSpreadRatio = 0.2
	eyeRaiseRatio  = 0.1
)

// FaceDetector is a Detector that only finds faces, using the pigo cascade.
// It reports Nose, LeftEye and RightEye; every other joint is absent.
// It is the fallback when the pose service is unavailable, enough to drive
// the tracked torso anchor.
type FaceDetector struct {
	classifier *pigo.Pigo
	mu         sync.Mutex
}

// NewFaceDetector loads a pigo "facefinder" cascade from cascadePath.
func NewFaceDetector(cascadePath string) (*FaceDetector, error) {
	data, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("read face cascade: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack face cascade: %w", err)
	}

	return &FaceDetector{classifier: classifier}, nil
}

// Detect finds the best-scoring face in the frame.
func (d *FaceDetector) Detect(frame *gocv.Mat) (*Pose, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	rows, cols := gray.Rows(), gray.Cols()
	params := pigo.CascadeParams{
		MinSize:     faceMinSize,
		MaxSize:     min(rows, cols),
		ShiftFactor: faceShiftFactor,
		ScaleFactor: faceScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: gray.ToBytes(),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	d.mu.Lock()
	dets := d.classifier.RunCascade(params, 0)
	dets = d.classifier.ClusterDetections(dets, faceIoUThreshold)
	d.mu.Unlock()

	best := -1
	for i, det := range dets {
		if float64(det.Q) < faceMinQuality {
			continue
		}
		if best < 0 || det.Q > dets[best].Q {
			best = i
		}
	}
	if best < 0 {
		return nil, nil
	}

	return faceToPose(dets[best].Row, dets[best].Col, dets[best].Scale, float64(dets[best].Q), rows, cols), nil
}

// Close is a no-op; the cascade lives in memory only.
func (d *FaceDetector) Close() error {
	return nil
}

// faceToPose converts a face box (center row/col, size in pixels) into a
// normalized pose. The subject's left eye appears on the image's right.
func faceToPose(row, col, scale int, quality float64, rows, cols int) *Pose {
	w, h := float64(cols), float64(rows)
	cx, cy, s := float64(col), float64(row), float64(scale)

	pose := &Pose{Score: quality}
	pose.Set(Nose, cx/w, cy/h)
	pose.Set(LeftEye, (cx+s*eyeSpreadRatio)/w, (cy-s*eyeRaiseRatio)/h)
	pose.Set(RightEye, (cx-s*eyeSpreadRatio)/w, (cy-s*eyeRaiseRatio)/h)
	return pose
}
