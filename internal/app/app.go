// Package app drives the puppet: it reads camera frames, detects the pose,
// derives the rig and renders the puppet once per tick.
package app

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/ayusman/kathputli/internal/capture"
	"github.com/ayusman/kathputli/internal/detector"
	"github.com/ayusman/kathputli/internal/environment"
	"github.com/ayusman/kathputli/internal/geom"
	"github.com/ayusman/kathputli/internal/puppet"
	"github.com/ayusman/kathputli/internal/rig"
	"github.com/ayusman/kathputli/internal/sprite"
	"github.com/ayusman/kathputli/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while the performer is moving.
	ActiveFPS = 15
	// IdleTimeout is how long without motion before dropping back to IdleFPS.
	IdleTimeout = 2 * time.Second
	// EventBuffer is how many environment events may queue between frames.
	EventBuffer = 32
)

// Mode selects what the app draws.
type Mode string

// Drawing modes.
const (
	ModePuppet     Mode = "puppet"
	ModeStickman   Mode = "stickman"
	ModeSilhouette Mode = "silhouette"
)

// Modes lists the drawing modes in menu order.
var Modes = []Mode{ModePuppet, ModeStickman, ModeSilhouette}

// ParseMode validates a mode name.
func ParseMode(name string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(string(m), name) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", name)
}

// ErrStop may be returned by a Presenter to end the pipeline.
var ErrStop = errors.New("stop requested")

// Presenter shows a finished frame, typically in a window.
type Presenter interface {
	Present(f *Frame) error
}

// Frame is everything produced for one tick.
type Frame struct {
	Seq       uint64
	Timestamp time.Time
	Mode      Mode
	// Pose is nil when nobody was detected.
	Pose     *detector.Pose
	Rig      rig.Output
	Commands []puppet.DrawCommand
	Env      environment.State
	Advisory string
	Canvas   image.Image
}

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	Camera   capture.Config
	Detector detector.Config
	// CascadePath is a pigo face cascade used when the pose service is missing.
	CascadePath  string
	Rig          rig.Config
	Render       puppet.Config
	Sprites      *sprite.Library
	Pivots       map[puppet.PartID]geom.Point
	Mode         Mode
	// Environment is the starting state; the zero value means the default.
	Environment  environment.State
	MotionThresh float64
	// Seed drives the shiver jitter. Zero uses the clock.
	Seed int64
}

// App orchestrates capture, detection, rigging and rendering.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	gate     *capture.Gate
	detector detector.Detector
	renderer *puppet.Renderer
	sprites  *sprite.Library
	rigCfg   rig.Config

	mu        sync.RWMutex
	enabled   bool
	mode      Mode
	env       environment.State
	latest    *Frame
	callbacks []func(*Frame)
	presenter Presenter
	stopCh    chan struct{}
	doneCh    chan struct{}

	events chan environment.Event

	// procMu serializes frame production; rng and seq belong to it.
	procMu   sync.Mutex
	rng      *rand.Rand
	seq      uint64
	lastPose *detector.Pose
}

// New builds an App. Missing sprite parts and bad rig or render settings are
// reported here, before anything runs.
func New(config Config) (*App, error) {
	if config.Mode == "" {
		config.Mode = ModePuppet
	}
	if _, err := ParseMode(string(config.Mode)); err != nil {
		return nil, err
	}
	if config.Sprites == nil {
		config.Sprites = sprite.Placeholders()
	}
	if config.Environment == (environment.State{}) {
		config.Environment = environment.Default()
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}

	if config.Store != nil {
		if err := loadActiveProfile(&config); err != nil {
			return nil, err
		}
	}

	if err := config.Rig.Validate(); err != nil {
		return nil, err
	}

	reg, err := config.Sprites.Registry(config.Pivots)
	if err != nil {
		return nil, err
	}
	renderer, err := puppet.NewRenderer(reg, config.Render)
	if err != nil {
		return nil, err
	}

	env := config.Environment.Normalize()
	if config.Store != nil {
		saved, err := config.Store.Settings().LoadEnvironment(env)
		if err != nil {
			log.Printf("Failed to load saved environment: %v", err)
		}
		env = saved
	}

	a := &App{
		config:   config,
		camera:   capture.NewCamera(config.Camera),
		motion:   capture.NewMotionDetector(config.MotionThresh),
		gate:     capture.NewGate(IdleTimeout),
		renderer: renderer,
		sprites:  config.Sprites,
		rigCfg:   config.Rig,
		enabled:  true,
		mode:     config.Mode,
		env:      env,
		events:   make(chan environment.Event, EventBuffer),
		rng:      rand.New(rand.NewSource(config.Seed)),
	}

	// Try MediaPipe first, then the face-only cascade, then the mock.
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe pose detection")
	} else if fd, ferr := newFaceDetector(config.CascadePath); ferr == nil {
		a.detector = fd
		log.Printf("MediaPipe not available (%v), using face detection only", err)
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a, nil
}

func newFaceDetector(path string) (detector.Detector, error) {
	if path == "" {
		return nil, errors.New("no face cascade configured")
	}
	return detector.NewFaceDetector(path)
}

// loadActiveProfile replaces the rig and render settings with the saved
// active profile, if one is set.
func loadActiveProfile(config *Config) error {
	id, err := config.Store.Settings().Get(store.KeyActiveProfile)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read active profile: %w", err)
	}

	p, err := config.Store.Profiles().GetByID(id)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("Active profile %s no longer exists, using configured calibration", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load profile %s: %w", id, err)
	}

	config.Rig = p.Rig
	config.Render = p.Render
	log.Printf("Using calibration profile %q", p.Name)
	return nil
}

// SetEnabled enables or disables frame processing.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether frame processing is enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetMode switches what is drawn from the next frame on.
func (a *App) SetMode(m Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mode = m
}

// Mode returns the current drawing mode.
func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// SetDetector replaces the pose detector.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the pose detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// SetCamera replaces the frame source. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Camera returns the frame source.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// SetPresenter sets where finished frames are shown.
func (a *App) SetPresenter(p Presenter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.presenter = p
}

// OnFrame registers a callback run after every frame, on the pipeline goroutine.
func (a *App) OnFrame(cb func(*Frame)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, cb)
}

// Renderer returns the puppet renderer.
func (a *App) Renderer() *puppet.Renderer {
	return a.renderer
}

// Post queues an environment event for the next frame. It never blocks; when
// the queue is full the event is dropped.
func (a *App) Post(ev environment.Event) bool {
	select {
	case a.events <- ev:
		return true
	default:
		log.Printf("Environment event %s dropped, queue full", ev)
		return false
	}
}

// Environment returns the state used for the most recent frame.
func (a *App) Environment() environment.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.env
}

// LatestFrame returns the most recent frame, or nil before the first one.
func (a *App) LatestFrame() *Frame {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

// Start opens the camera and begins the pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("Puppet pipeline started")
	return nil
}

// Done is closed when the pipeline exits, whether stopped or asked to quit
// by the presenter. It is nil before Start.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.doneCh
}

// Stop halts the pipeline and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	if stopCh != nil {
		close(stopCh)
		a.stopCh = nil
	}
	a.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.motion.Close()

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Puppet pipeline stopped")
}
