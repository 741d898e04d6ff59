// Package testdata embeds recorded pose sequences for pipeline tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ayusman/kathputli/internal/detector"
)

//go:embed poses/*.json
var posesFS embed.FS

// sequence is the on-disk format: each frame maps joint names to [x, y];
// a null frame means nobody was detected.
type sequence struct {
	Name   string                   `json:"name"`
	Frames []map[string][2]float64 `json:"frames"`
}

// LoadSequence loads the named pose sequence (file name without .json).
func LoadSequence(name string) ([]*detector.Pose, error) {
	data, err := posesFS.ReadFile(path.Join("poses", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("load sequence %s: %w", name, err)
	}

	var seq sequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("decode sequence %s: %w", name, err)
	}

	poses := make([]*detector.Pose, len(seq.Frames))
	for i, frame := range seq.Frames {
		if frame == nil {
			continue
		}
		p := &detector.Pose{Score: 1}
		for jointName, xy := range frame {
			j, err := detector.ParseJoint(jointName)
			if err != nil {
				return nil, fmt.Errorf("sequence %s frame %d: %w", name, i, err)
			}
			p.Set(j, xy[0], xy[1])
		}
		poses[i] = p
	}
	return poses, nil
}

// Sequences lists the embedded sequence names.
func Sequences() []string {
	entries, err := posesFS.ReadDir("poses")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}
