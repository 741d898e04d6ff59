package sensor

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/ayusman/kathputli/internal/environment"
)

// Puppet is the environment owner a Poller feeds.
type Puppet interface {
	Environment() environment.State
	Post(ev environment.Event) bool
}

// Poller reads every sensor on an interval and steps the environment
// toward the readings.
type Poller struct {
	manager  *Manager
	executor *Executor
	puppet   Puppet
	interval time.Duration

	// mu guards the projection of events posted but not yet applied.
	mu        sync.Mutex
	seen      environment.State
	projected *environment.State
}

// DefaultInterval is used when NewPoller is given a non-positive interval.
const DefaultInterval = time.Minute

// NewPoller creates a Poller.
func NewPoller(m *Manager, e *Executor, p Puppet, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{manager: m, executor: e, puppet: p, interval: interval}
}

// Run polls until ctx is done. It returns nil on cancellation.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.manager.Discover(); err != nil {
		return err
	}
	sensors := p.manager.List()
	if len(sensors) == 0 {
		return nil
	}
	for _, s := range sensors {
		log.Printf("Polling sensor %s every %v", s.Manifest.Name, p.interval)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.PollOnce(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// PollOnce reads each sensor once and posts the resulting events. It
// returns how many events were accepted. Steps are computed against the
// state the accepted events will produce, so sensors reporting the same
// quantity do not stack their deltas.
func (p *Poller) PollOnce(ctx context.Context) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.puppet.Environment()
	base := current
	if p.projected != nil && current == p.seen {
		// Nothing applied since the last poll; its events are still queued.
		current = *p.projected
	}

	posted := 0
	for _, s := range p.manager.List() {
		reading, err := p.executor.Read(ctx, s, &Request{Action: ActionRead, Current: current})
		if err != nil {
			log.Printf("Sensor read failed: %v", err)
			continue
		}
		for _, ev := range Events(current, reading) {
			if p.puppet.Post(ev) {
				current = current.Apply(ev)
				posted++
			}
		}
	}

	p.seen = base
	p.projected = &current
	return posted
}

// Events returns the step events that move current closest to the reading.
func Events(current environment.State, r *Reading) []environment.Event {
	var events []environment.Event

	if r.AirIndex != nil {
		target := environment.State{AirIndex: *r.AirIndex}.Normalize().AirIndex
		n := steps(float64(target-current.AirIndex), environment.AirStep)
		events = appendSteps(events, n, environment.AirUp, environment.AirDown)
	}
	if r.Temperature != nil {
		target := environment.State{Temperature: *r.Temperature}.Normalize().Temperature
		n := steps(target-current.Temperature, environment.TemperatureStep)
		events = appendSteps(events, n, environment.Warmer, environment.Colder)
	}

	return events
}

func steps(delta, step float64) int {
	return int(math.Round(delta / step))
}

func appendSteps(events []environment.Event, n int, up, down environment.Event) []environment.Event {
	for ; n > 0; n-- {
		events = append(events, up)
	}
	for ; n < 0; n++ {
		events = append(events, down)
	}
	return events
}
