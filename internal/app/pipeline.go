package app

import (
	"errors"
	"image"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/kathputli/internal/detector"
	"github.com/ayusman/kathputli/internal/environment"
	"github.com/ayusman/kathputli/internal/overlay"
	"github.com/ayusman/kathputli/internal/rig"
	"github.com/ayusman/kathputli/internal/sprite"
)

// runPipeline is the frame loop. Each tick it reads a frame, feeds the
// motion gate, detects the pose while the performer is active and hands the
// result to ProcessPose. When the gate is closed the last pose is held.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(time.Second / time.Duration(IdleFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			moving, _ := a.motion.Detect(frame)
			active, changed := a.gate.Observe(moving, time.Now())
			if changed {
				fps := IdleFPS
				if active {
					fps = ActiveFPS
				}
				a.camera.SetFPS(fps)
				ticker.Reset(time.Second / time.Duration(fps))
				if active {
					log.Println("Switched to active mode")
				} else {
					log.Println("Switched to idle mode")
				}
			}

			pose, ok := a.detectPose(frame, active)
			frame.Close()
			if !ok {
				continue
			}

			f := a.ProcessPose(pose)
			if err := a.present(f); errors.Is(err, ErrStop) {
				log.Println("Presenter requested stop")
				return
			}
		}
	}
}

// detectPose returns the pose to draw for frame. While idle the last pose
// is held. ok is false when the detector failed and the frame is dropped.
func (a *App) detectPose(frame *gocv.Mat, active bool) (pose *detector.Pose, ok bool) {
	if !active {
		return a.heldPose(), true
	}
	d := a.Detector()
	if d == nil {
		return a.heldPose(), true
	}
	pose, err := d.Detect(frame)
	if err != nil {
		log.Printf("Error detecting pose: %v", err)
		return nil, false
	}
	return pose, true
}

func (a *App) heldPose() *detector.Pose {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	return a.lastPose
}

// ProcessPose applies queued environment events, then rigs and draws pose
// in the current mode. A nil pose is a valid input and draws the puppet at
// rest. Registered callbacks run before it returns.
func (a *App) ProcessPose(pose *detector.Pose) *Frame {
	a.procMu.Lock()
	env := a.drainEvents()
	mode := a.Mode()

	a.seq++
	f := &Frame{
		Seq:       a.seq,
		Timestamp: time.Now(),
		Mode:      mode,
		Pose:      pose,
		Env:       env,
	}
	a.lastPose = pose

	f.Rig = rig.Compute(pose, a.rigCfg)
	f.Commands = a.renderer.Render(f.Rig, env)
	if show, text := environment.Advisory(env); show {
		f.Advisory = text
	}
	f.Canvas = a.drawCanvas(f)
	a.procMu.Unlock()

	a.mu.Lock()
	a.latest = f
	callbacks := append([]func(*Frame){}, a.callbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(f)
	}
	return f
}

// drainEvents applies every queued event and returns the resulting state.
// It is the only writer of the environment state.
func (a *App) drainEvents() environment.State {
	a.mu.RLock()
	env := a.env
	a.mu.RUnlock()

	before := env
drain:
	for {
		select {
		case ev := <-a.events:
			env = env.Apply(ev)
		default:
			break drain
		}
	}

	if env == before {
		return env
	}

	a.mu.Lock()
	a.env = env
	a.mu.Unlock()
	log.Printf("Environment now air=%d temperature=%.0f", env.AirIndex, env.Temperature)

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SaveEnvironment(env); err != nil {
			log.Printf("Failed to save environment: %v", err)
		}
	}
	return env
}

func (a *App) drawCanvas(f *Frame) image.Image {
	size := a.rigCfg.Canvas
	var canvas image.Image

	switch f.Mode {
	case ModeStickman, ModeSilhouette:
		draw := overlay.RenderStickman
		if f.Mode == ModeSilhouette {
			draw = overlay.RenderSilhouette
		}
		mat := draw(f.Pose, int(size.W), int(size.H))
		img, err := mat.ToImage()
		mat.Close()
		if err != nil {
			log.Printf("Error converting overlay: %v", err)
			img = sprite.NewCanvas(size, sprite.Background)
		}
		canvas = img
	default:
		bg := sprite.NewCanvas(size, sprite.Background)
		canvas = sprite.Compose(bg, f.Commands, a.sprites, environment.ShiverAmplitude(f.Env), a.rng)
	}

	if f.Advisory != "" {
		canvas = sprite.DrawAdvisory(canvas, f.Advisory)
	}
	return canvas
}

func (a *App) present(f *Frame) error {
	a.mu.RLock()
	p := a.presenter
	a.mu.RUnlock()

	if p == nil {
		return nil
	}
	err := p.Present(f)
	if err != nil && !errors.Is(err, ErrStop) {
		log.Printf("Error presenting frame: %v", err)
	}
	return err
}
