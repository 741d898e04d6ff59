package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/kathputli/internal/app"
	"github.com/ayusman/kathputli/internal/applog"
	"github.com/ayusman/kathputli/internal/config"
	"github.com/ayusman/kathputli/internal/environment"
	"github.com/ayusman/kathputli/internal/hotkeys"
	"github.com/ayusman/kathputli/internal/present"
	"github.com/ayusman/kathputli/internal/sensor"
	"github.com/ayusman/kathputli/internal/server"
	"github.com/ayusman/kathputli/internal/store"
	"github.com/ayusman/kathputli/internal/tray"
)

func main() {
	fmt.Println("Kathputli - Pose Puppet")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}
	defaultDir := filepath.Join(homeDir, ".kathputli")

	configPath := flag.String("config", filepath.Join(defaultDir, "config.yaml"), "path to the YAML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dataDir := cfg.Server.DataDir
	if dataDir == "" {
		dataDir = defaultDir
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	if cfg.Log.Dir == "" {
		cfg.Log.Dir = filepath.Join(dataDir, "logs")
	}
	logFile, err := applog.Setup(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	st, err := store.New(filepath.Join(dataDir, "kathputli.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	a, err := newApp(cfg, st)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	hub := server.NewCommandsHub()
	a.OnFrame(hub.Publish)

	if cfg.Server.Window {
		win := present.NewWindow("Kathputli", a)
		defer win.Close()
		a.SetPresenter(win)
	}

	webDir := cfg.Server.StaticDir
	if webDir == "" {
		webDir = findWebDir(dataDir)
	}
	if webDir != "" {
		log.Printf("Serving static files from: %s", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Puppet:    a,
		Commands:  hub,
	})
	httpSrv := srv.HTTPServer(cfg.Server.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	var t *tray.Tray
	if cfg.Server.Tray {
		t = newTray(a, stop, "http://"+browserAddr(cfg.Server.Addr))
	}

	if err := a.Start(); err != nil {
		log.Printf("Camera unavailable, serving without the live pipeline: %v", err)
	}
	g.Go(func() error {
		// A presenter asking to quit ends the whole process.
		select {
		case <-a.Done():
			stop()
		case <-gctx.Done():
		}
		a.Stop()
		return nil
	})

	sensorDir := cfg.Sensors.Dir
	if sensorDir == "" {
		sensorDir = filepath.Join(dataDir, "sensors")
	}
	poller := sensor.NewPoller(sensor.NewManager(sensorDir), sensor.NewExecutor(cfg.Sensors.Timeout), a, cfg.Sensors.Interval)
	g.Go(func() error {
		if err := poller.Run(gctx); err != nil {
			log.Printf("Sensors disabled: %v", err)
		}
		return nil
	})

	if cfg.Server.Hotkeys {
		l := hotkeys.Start(a, hotkeys.DefaultBindings())
		defer l.Stop()
	}

	if t != nil {
		go func() {
			<-gctx.Done()
			t.Quit()
		}()
		t.Run()
		stop()
	}

	if err := g.Wait(); err != nil {
		log.Printf("Exited with error: %v", err)
	}
}

func newApp(cfg *config.Config, st *store.Store) (*app.App, error) {
	rigCfg, err := cfg.RigConfig()
	if err != nil {
		return nil, err
	}
	renderCfg, err := cfg.RenderConfig()
	if err != nil {
		return nil, err
	}
	mode, err := app.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	lib, err := cfg.SpriteLibrary()
	if err != nil {
		return nil, err
	}

	return app.New(app.Config{
		Store:       st,
		Camera:      cfg.Camera,
		Detector:    cfg.Detector,
		CascadePath: cfg.CascadePath,
		Rig:         rigCfg,
		Render:      renderCfg,
		Sprites:     lib,
		Pivots:      cfg.Pivots(),
		Mode:        mode,
		Environment: cfg.Environment,
	})
}

func newTray(a *app.App, quit func(), settingsURL string) *tray.Tray {
	t := tray.New(a.Mode(), a.Environment())
	t.OnToggle(a.SetEnabled)
	t.OnMode(a.SetMode)
	t.OnEvent(func(ev environment.Event) { a.Post(ev) })
	t.OnSettings(func() {
		if err := openBrowser(settingsURL); err != nil {
			log.Printf("Failed to open settings: %v", err)
		}
	})
	t.OnQuit(quit)

	var last environment.State
	a.OnFrame(func(f *app.Frame) {
		if f.Env != last {
			last = f.Env
			t.SetEnvironment(f.Env)
		}
	})
	return t
}

// browserAddr turns a listen address like ":8080" into one a browser can open.
func browserAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
