// Package hotkeys maps global keyboard shortcuts to environment events.
package hotkeys

import (
	"log"
	"sync"
	"time"

	"golang.design/x/hotkey"

	"github.com/ayusman/kathputli/internal/environment"
)

// Debounce is the minimum gap between two events from one shortcut.
const Debounce = 200 * time.Millisecond

// Poster accepts environment events.
type Poster interface {
	Post(ev environment.Event) bool
}

// Binding ties one shortcut to one event.
type Binding struct {
	Name  string
	Mods  []hotkey.Modifier
	Key   hotkey.Key
	Event environment.Event
}

// DefaultBindings returns Ctrl+Shift+Up/Down for air quality and
// Ctrl+Shift+Right/Left for temperature.
func DefaultBindings() []Binding {
	mods := []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}
	return []Binding{
		{Name: "Cleaner Air", Mods: mods, Key: hotkey.KeyUp, Event: environment.AirUp},
		{Name: "Dirtier Air", Mods: mods, Key: hotkey.KeyDown, Event: environment.AirDown},
		{Name: "Warmer", Mods: mods, Key: hotkey.KeyRight, Event: environment.Warmer},
		{Name: "Colder", Mods: mods, Key: hotkey.KeyLeft, Event: environment.Colder},
	}
}

// Listener owns the registered shortcuts.
type Listener struct {
	poster  Poster
	hotkeys []*hotkey.Hotkey
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// Start registers bindings and forwards key presses to p. Shortcuts that
// cannot be registered are logged and skipped.
func Start(p Poster, bindings []Binding) *Listener {
	l := &Listener{poster: p, stopCh: make(chan struct{})}

	for _, b := range bindings {
		hk := hotkey.New(b.Mods, b.Key)
		if err := hk.Register(); err != nil {
			log.Printf("Failed to register hotkey %s: %v", b.Name, err)
			continue
		}
		log.Printf("Registered hotkey: %s", b.Name)
		l.hotkeys = append(l.hotkeys, hk)

		l.wg.Add(1)
		go l.listen(hk, b)
	}
	return l
}

func (l *Listener) listen(hk *hotkey.Hotkey, b Binding) {
	defer l.wg.Done()

	keydown := hk.Keydown()
	for {
		select {
		case <-l.stopCh:
			return
		case _, ok := <-keydown:
			if !ok {
				return
			}
			dispatch(l.poster, b)
			time.Sleep(Debounce)
		}
	}
}

func dispatch(p Poster, b Binding) {
	if !p.Post(b.Event) {
		log.Printf("hotkey %s dropped: event queue full", b.Name)
	}
}

// Registered returns how many shortcuts are active.
func (l *Listener) Registered() int {
	return len(l.hotkeys)
}

// Stop unregisters every shortcut and waits for the listeners to exit.
func (l *Listener) Stop() {
	close(l.stopCh)
	for _, hk := range l.hotkeys {
		if err := hk.Unregister(); err != nil {
			log.Printf("Failed to unregister hotkey: %v", err)
		}
	}
	l.wg.Wait()
}
