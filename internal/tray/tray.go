// Package tray provides the system tray menu for kathputli: enable toggle,
// drawing mode, environment controls and quit.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/kathputli/internal/app"
	"github.com/ayusman/kathputli/internal/environment"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(enabled bool)
	onMode     func(m app.Mode)
	onEvent    func(ev environment.Event)
	onSettings func()
	onQuit     func()
	enabled    bool
	mode       app.Mode
	env        environment.State
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuModes  map[app.Mode]*systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a Tray that starts enabled in the given mode.
func New(mode app.Mode, env environment.State) *Tray {
	return &Tray{
		enabled: true,
		mode:    mode,
		env:     env,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnMode sets the callback for drawing mode changes.
func (t *Tray) OnMode(fn func(m app.Mode)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMode = fn
}

// OnEvent sets the callback for environment menu items.
func (t *Tray) OnEvent(fn func(ev environment.Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEvent = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Kathputli")
	systray.SetTooltip("Kathputli pose puppet")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle pose tracking")
	systray.AddSeparator()

	t.menuModes = make(map[app.Mode]*systray.MenuItem, len(app.Modes))
	for _, m := range app.Modes {
		t.menuModes[m] = systray.AddMenuItemCheckbox(modeTitle(m), "Draw as "+string(m), m == t.mode)
	}
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem(statusTitle(t.env), "Current environment")
	t.menuStatus.Disable()
	t.mu.Unlock()

	events := []struct {
		ev    environment.Event
		title string
	}{
		{environment.AirUp, "Cleaner Air"},
		{environment.AirDown, "Dirtier Air"},
		{environment.Warmer, "Warmer"},
		{environment.Colder, "Colder"},
		{environment.Reset, "Reset Environment"},
	}
	for _, e := range events {
		item := systray.AddMenuItem(e.title, "")
		ev := e.ev
		go func() {
			for range item.ClickedCh {
				t.handleEvent(ev)
			}
		}()
	}
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Kathputli")

	for m, item := range t.menuModes {
		m, item := m, item
		go func() {
			for range item.ClickedCh {
				t.handleMode(m)
			}
		}()
	}

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleMode(m app.Mode) {
	t.mu.Lock()
	t.mode = m
	for mode, item := range t.menuModes {
		if mode == m {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
	callback := t.onMode
	t.mu.Unlock()

	if callback != nil {
		callback(m)
	}
}

func (t *Tray) handleEvent(ev environment.Event) {
	t.mu.RLock()
	callback := t.onEvent
	t.mu.RUnlock()

	if callback != nil {
		callback(ev)
	}
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetEnvironment updates the environment status line.
func (t *Tray) SetEnvironment(s environment.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.env = s
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(statusTitle(s))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Mode returns the selected drawing mode.
func (t *Tray) Mode() app.Mode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}

func modeTitle(m app.Mode) string {
	switch m {
	case app.ModeStickman:
		return "Stick Figure"
	case app.ModeSilhouette:
		return "Silhouette"
	default:
		return "Puppet"
	}
}

func statusTitle(s environment.State) string {
	title := fmt.Sprintf("Air %d, %.0f°C", s.AirIndex, s.Temperature)
	if ok, _ := environment.Advisory(s); ok {
		title += " (mask)"
	}
	return title
}
