// Package main is a sample environment sensor. It answers read requests
// from a reading.yaml kept next to its manifest, so an external job (or a
// person) can drive the puppet's environment by editing one file.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/kathputli/internal/sensor"
)

// ReadingFile is read from the sensor's working directory.
const ReadingFile = "reading.yaml"

type fileReading struct {
	AirIndex    *int     `yaml:"air_index"`
	Temperature *float64 `yaml:"temperature"`
}

func main() {
	var req sensor.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(sensor.Reading{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}
	if req.Action != sensor.ActionRead {
		writeResponse(sensor.Reading{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	writeResponse(read(ReadingFile))
}

func read(path string) sensor.Reading {
	data, err := os.ReadFile(path)
	if err != nil {
		return sensor.Reading{Error: fmt.Sprintf("read %s: %v", path, err)}
	}

	var fr fileReading
	if err := yaml.Unmarshal(data, &fr); err != nil {
		return sensor.Reading{Error: fmt.Sprintf("parse %s: %v", path, err)}
	}

	return sensor.Reading{
		Success:     true,
		AirIndex:    fr.AirIndex,
		Temperature: fr.Temperature,
	}
}

func writeResponse(r sensor.Reading) {
	if err := json.NewEncoder(os.Stdout).Encode(r); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write response: %v\n", err)
		os.Exit(1)
	}
}
