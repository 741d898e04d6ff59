package sensor

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ManifestFile is the manifest name expected in each sensor directory.
const ManifestFile = "sensor.json"

// ErrSensorNotFound is returned when a requested sensor cannot be found.
var ErrSensorNotFound = errors.New("sensor not found")

// Manager discovers sensors under a directory.
type Manager struct {
	dir     string
	sensors map[string]*Sensor
	mu      sync.RWMutex
}

// NewManager creates a Manager for dir.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:     dir,
		sensors: make(map[string]*Sensor),
	}
}

// Discover scans each subdirectory of the sensor directory for a manifest.
// A missing directory yields no sensors. Unreadable manifests are skipped.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sensors = make(map[string]*Sensor)

	info, err := os.Stat(m.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(m.dir, entry.Name())
		data, err := os.ReadFile(filepath.Join(path, ManifestFile))
		if err != nil {
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			log.Printf("Skipping sensor %s: %v", entry.Name(), err)
			continue
		}
		if manifest.Name == "" || manifest.Executable == "" {
			log.Printf("Skipping sensor %s: manifest needs name and executable", entry.Name())
			continue
		}

		m.sensors[manifest.Name] = &Sensor{
			Manifest:   manifest,
			Path:       path,
			Executable: filepath.Join(path, manifest.Executable),
		}
	}

	return nil
}

// Get returns a sensor by name.
func (m *Manager) Get(name string) (*Sensor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sensors[name]
	if !ok {
		return nil, ErrSensorNotFound
	}
	return s, nil
}

// List returns the discovered sensors sorted by name.
func (m *Manager) List() []*Sensor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sensors := make([]*Sensor, 0, len(m.sensors))
	for _, s := range m.sensors {
		sensors = append(sensors, s)
	}
	sort.Slice(sensors, func(i, j int) bool {
		return sensors[i].Manifest.Name < sensors[j].Manifest.Name
	})
	return sensors
}

// Dir returns the sensor directory path.
func (m *Manager) Dir() string {
	return m.dir
}
