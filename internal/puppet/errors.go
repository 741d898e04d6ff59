package puppet

import "fmt"

// ConfigurationError reports a sprite part or joint name that the static
// configuration references but nothing defines. It is fatal at startup.
type ConfigurationError struct {
	Kind string // "part" or "joint"
	Name string
	Msg  string
}

func (e *ConfigurationError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("configuration error: %s %q: %s", e.Kind, e.Name, e.Msg)
	}
	return fmt.Sprintf("configuration error: unknown %s %q", e.Kind, e.Name)
}

func missingPart(id PartID) error {
	return &ConfigurationError{Kind: "part", Name: string(id)}
}
