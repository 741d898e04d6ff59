package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// IdleShutdown is how long the pose service may sit unused before it is stopped.
const IdleShutdown = 30 * time.Second

const poseScriptName = "pose_service.py"

// mediaPipeIndex maps each Joint to its index in MediaPipe's 33-point pose model.
var mediaPipeIndex = [NumJoints]int{
	Nose:          0,
	LeftEye:       2,
	RightEye:      5,
	LeftEar:       7,
	RightEar:      8,
	LeftShoulder:  11,
	RightShoulder: 12,
	LeftElbow:     13,
	RightElbow:    14,
	LeftWrist:     15,
	RightWrist:    16,
	LeftHip:       23,
	RightHip:      24,
	LeftKnee:      25,
	RightKnee:     26,
	LeftAnkle:     27,
	RightAnkle:    28,
}

// MediaPipeDetector implements Detector using a Python MediaPipe pose subprocess.
//
// Protocol: each request is a 4-byte big-endian length followed by a JPEG
// frame; each response is a single JSON line.
type MediaPipeDetector struct {
	config     Config
	scriptPath string
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	mu         sync.Mutex
	started    bool
	lastUsed   time.Time
	idleTimer  *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe pose detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	scriptPath := findScript(poseScriptName)
	if scriptPath == "" {
		return nil, fmt.Errorf("%s not found", poseScriptName)
	}

	return &MediaPipeDetector{
		config:     config,
		scriptPath: scriptPath,
	}, nil
}

// Detect analyzes a frame and returns the detected pose, or nil if nobody is visible.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) (*Pose, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := d.stdin.Write(length); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	pose, err := parsePoseResponse([]byte(line), d.config.MinVisibility)
	if err != nil {
		return nil, err
	}

	d.lastUsed = time.Now()
	d.resetIdleTimer()

	return pose, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, d.scriptPath,
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', 2, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', 2, 64),
	)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start pose service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	d.lastUsed = time.Now()
	log.Printf("Pose service started (%s)", d.scriptPath)

	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(IdleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if err := d.shutdown(); err != nil {
			log.Printf("Pose service exited: %v", err)
		}
	})
}

// poseResponse is the JSON line written by the pose service.
// An empty landmark list means no person was found.
type poseResponse struct {
	Landmarks []jsonLandmark `json:"landmarks"`
	Score     float64        `json:"score"`
}

type jsonLandmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility"`
}

func parsePoseResponse(line []byte, minVisibility float64) (*Pose, error) {
	var resp poseResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(resp.Landmarks) == 0 {
		return nil, nil
	}

	pose := &Pose{Score: resp.Score}
	for j := Joint(0); j < NumJoints; j++ {
		idx := mediaPipeIndex[j]
		if idx >= len(resp.Landmarks) {
			continue
		}
		lm := resp.Landmarks[idx]
		pose.Points[j] = Landmark{
			X:          lm.X,
			Y:          lm.Y,
			Visibility: lm.Visibility,
			Present:    lm.Visibility >= minVisibility && inFrame(lm.X, lm.Y),
		}
	}

	return pose, nil
}

// inFrame rejects landmarks MediaPipe extrapolated outside the image.
func inFrame(x, y float64) bool {
	return x >= 0 && x <= 1 && y >= 0 && y <= 1
}

func findScript(name string) string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", name),
		filepath.Join("..", "scripts", name),
		filepath.Join(execDir, "scripts", name),
		filepath.Join(os.Getenv("HOME"), ".kathputli", "scripts", name),
	}

	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".kathputli/venv/bin/python"),
	}

	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
