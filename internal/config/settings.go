package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings represents a funcalc.yaml file.
type Settings struct {
	// Prompt is the REPL prompt. Defaults to DefaultPrompt.
	Prompt string `yaml:"prompt,omitempty"`

	// Surround is how many characters before and after an error point
	// are shown in error messages.
	Surround int `yaml:"surround,omitempty"`

	// LoopLimit caps the number of loop re-entries during one evaluation.
	// Zero means DefaultLoopLimit, a negative value disables the limit.
	LoopLimit int `yaml:"loop_limit,omitempty"`

	// Degrees makes trig functions take and return degrees.
	Degrees bool `yaml:"degrees,omitempty"`

	// Base is the numeric base integers are displayed in (10 or 16).
	Base int `yaml:"base,omitempty"`

	// History is the sqlite file REPL input is recorded in.
	// Relative paths are resolved against the settings file directory.
	// Empty disables history.
	History string `yaml:"history,omitempty"`

	// Modules lists registered modules imported into every new session.
	Modules []string `yaml:"modules,omitempty"`
}

// Default returns settings with every default applied.
func Default() *Settings {
	s := &Settings{}
	s.setDefaults()
	return s
}

// LoadSettings reads and parses a funcalc.yaml file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	s, err := ParseSettings(data, path)
	if err != nil {
		return nil, err
	}
	if s.History != "" && !filepath.IsAbs(s.History) {
		s.History = filepath.Join(filepath.Dir(path), s.History)
	}
	return s, nil
}

// ParseSettings parses funcalc.yaml content from bytes.
// The path argument is used only for error messages.
func ParseSettings(data []byte, path string) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.validate(path); err != nil {
		return nil, err
	}
	s.setDefaults()
	return &s, nil
}

// FindSettings searches for a settings file starting from dir and walking up
// to parent directories. Returns "" and nil error if none is found.
func FindSettings(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range SettingsFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (s *Settings) validate(path string) error {
	if s.Surround < 0 {
		return fmt.Errorf("%s: surround must not be negative", path)
	}
	if s.Base != 0 && s.Base != 10 && s.Base != 16 {
		return fmt.Errorf("%s: base must be 10 or 16, got %d", path, s.Base)
	}
	seen := make(map[string]bool)
	for i, m := range s.Modules {
		if m == "" {
			return fmt.Errorf("%s: modules[%d]: empty module name", path, i)
		}
		if seen[m] {
			return fmt.Errorf("%s: modules[%d]: duplicate module %q", path, i, m)
		}
		seen[m] = true
	}
	return nil
}

func (s *Settings) setDefaults() {
	if s.Prompt == "" {
		s.Prompt = DefaultPrompt
	}
	if s.Surround == 0 {
		s.Surround = DefaultSurround
	}
	if s.LoopLimit == 0 {
		s.LoopLimit = DefaultLoopLimit
	}
	if s.Base == 0 {
		s.Base = DefaultBase
	}
}
