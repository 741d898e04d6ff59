package present

import (
	"errors"
	"testing"

	"github.com/ayusman/kathputli/internal/app"
	"github.com/ayusman/kathputli/internal/environment"
)

type recordingPoster struct {
	events []environment.Event
}

func (p *recordingPoster) Post(ev environment.Event) bool {
	p.events = append(p.events, ev)
	return true
}

func TestWindow_HandleKey(t *testing.T) {
	tests := []struct {
		name     string
		key      int
		wantStop bool
		wantEv   environment.Event
	}{
		{name: "no key", key: -1},
		{name: "quit", key: 'q', wantStop: true},
		{name: "escape", key: keyEsc, wantStop: true},
		{name: "air up", key: 'a', wantEv: environment.AirUp},
		{name: "air down", key: 'z', wantEv: environment.AirDown},
		{name: "warmer", key: 't', wantEv: environment.Warmer},
		{name: "colder", key: 'g', wantEv: environment.Colder},
		{name: "reset", key: 'r', wantEv: environment.Reset},
		{name: "modifier bits masked", key: 0x100000 | 'z', wantEv: environment.AirDown},
		{name: "unbound", key: 'x'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recordingPoster{}
			w := &Window{poster: p}

			err := w.handleKey(tt.key)
			if got := errors.Is(err, app.ErrStop); got != tt.wantStop {
				t.Fatalf("handleKey(%d) stop = %v, want %v", tt.key, got, tt.wantStop)
			}

			if tt.wantEv == "" {
				if len(p.events) != 0 {
					t.Errorf("expected no events, got %v", p.events)
				}
				return
			}
			if len(p.events) != 1 || p.events[0] != tt.wantEv {
				t.Errorf("events = %v, want [%s]", p.events, tt.wantEv)
			}
		})
	}
}

func TestWindow_PresentWithoutCanvas(t *testing.T) {
	w := &Window{}
	if err := w.Present(&app.Frame{}); err != nil {
		t.Errorf("Present() error = %v", err)
	}
}
