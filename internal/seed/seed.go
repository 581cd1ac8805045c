// Package seed loads the initial set of activities a registry starts with.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Shivanand-hulikatti/activities-signup/internal/model"
)

//go:embed activities.yaml
var defaultSeed []byte

// ErrInvalidSeed is returned when a seed document breaks a registry invariant.
var ErrInvalidSeed = errors.New("invalid seed")

type document struct {
	Activities []model.Activity `yaml:"activities" toml:"activities"`
}

// Default returns the built-in school activities.
func Default() ([]model.Activity, error) {
	return Parse(defaultSeed)
}

// Load reads activities from a YAML or, for a .toml extension, TOML file.
// An empty path yields Default.
func Load(path string) ([]model.Activity, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML seed document.
func Parse(data []byte) ([]model.Activity, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return finish(doc)
}

// ParseTOML decodes and validates a TOML seed document, one
// [[activities]] table per activity.
func ParseTOML(data []byte) ([]model.Activity, error) {
	var doc document
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return finish(doc)
}

func finish(doc document) ([]model.Activity, error) {
	if err := Validate(doc.Activities); err != nil {
		return nil, err
	}
	for i := range doc.Activities {
		doc.Activities[i] = doc.Activities[i].Clone()
	}
	return doc.Activities, nil
}

// Validate checks names, capacities and participant lists.
func Validate(activities []model.Activity) error {
	names := make(map[string]struct{}, len(activities))
	for _, a := range activities {
		if a.Name == "" {
			return fmt.Errorf("%w: activity with empty name", ErrInvalidSeed)
		}
		if _, dup := names[a.Name]; dup {
			return fmt.Errorf("%w: duplicate activity %q", ErrInvalidSeed, a.Name)
		}
		names[a.Name] = struct{}{}

		if a.MaxParticipants <= 0 {
			return fmt.Errorf("%w: %q max_participants must be positive", ErrInvalidSeed, a.Name)
		}
		if len(a.Participants) > a.MaxParticipants {
			return fmt.Errorf("%w: %q has %d participants for %d places",
				ErrInvalidSeed, a.Name, len(a.Participants), a.MaxParticipants)
		}
		seen := make(map[string]struct{}, len(a.Participants))
		for _, p := range a.Participants {
			if p == "" {
				return fmt.Errorf("%w: %q has an empty participant", ErrInvalidSeed, a.Name)
			}
			if _, dup := seen[p]; dup {
				return fmt.Errorf("%w: %q lists %s twice", ErrInvalidSeed, a.Name, p)
			}
			seen[p] = struct{}{}
		}
	}
	return nil
}
