// Package sensor polls external environment sensors. A sensor is any
// executable that reads a JSON request on stdin and answers with a JSON
// reading of air quality and/or temperature.
package sensor

import "github.com/ayusman/kathputli/internal/environment"

// Manifest describes a sensor as declared in its sensor.json.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Executable  string `json:"executable"`
	// Reports lists the quantities the sensor provides: "air_index", "temperature".
	Reports []string `json:"reports"`
}

// Request is sent to a sensor on every poll.
type Request struct {
	Action  string            `json:"action"`
	Current environment.State `json:"current"`
}

// Reading is a sensor's answer. Absent quantities are nil.
type Reading struct {
	Success     bool     `json:"success"`
	Error       string   `json:"error,omitempty"`
	AirIndex    *int     `json:"air_index,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Sensor is a discovered sensor and where it lives.
type Sensor struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// ActionRead is the only request action.
const ActionRead = "read"
