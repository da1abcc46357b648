package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyGame    = "game"
	keyLogging = "logging"
	keySetup   = "setup"
)

// knownTopLevelKeys lists the YAML keys that correspond to exported Config fields.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyGame:    true,
	keyLogging: true,
	keySetup:   true,
}

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// the target Config. Within a section present in the overlay only the fields
// it sets change. Sections absent in the overlay are left unchanged.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]interface{}
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file: nothing to merge.
	if len(overlay) == 0 {
		return nil
	}

	for key, value := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}

		sectionBytes, marshalErr := yaml.Marshal(value)
		if marshalErr != nil {
			return fmt.Errorf("re-marshalling overlay section %q: %w", key, marshalErr)
		}

		if err = unmarshalSection(target, key, sectionBytes); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// unmarshalSection decodes one section on top of the matching field of target.
func unmarshalSection(target *Config, key string, data []byte) error {
	switch key {
	case keyGame:
		v := target.Game
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Game = v
		return nil
	case keyLogging:
		v := target.Logging
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Logging = v
		return nil
	case keySetup:
		v := target.Setup
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Setup = v
		return nil
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}
