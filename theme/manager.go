package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Prefs is the persisted preference file.
type Prefs struct {
	Theme string `yaml:"theme"`
}

// Manager owns the theme preference: it writes the theme attribute on the
// root and saves the choice to a prefs file.
type Manager struct {
	root      *Root
	attribute string
	path      string // empty = not persisted
	current   string
}

// NewManager creates a manager writing attribute on root. If path is empty
// the preference lives only in memory.
func NewManager(root *Root, attribute, path string) *Manager {
	if attribute == "" {
		attribute = DefaultAttribute
	}
	return &Manager{root: root, attribute: attribute, path: path}
}

// Load reads the stored preference and applies it. A missing file applies
// fallback.
func (m *Manager) Load(fallback string) error {
	theme := normalize(fallback)
	if m.path != "" {
		data, err := os.ReadFile(m.path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return fmt.Errorf("reading prefs: %w", err)
		default:
			var p Prefs
			if err := yaml.Unmarshal(data, &p); err != nil {
				return fmt.Errorf("parsing prefs: %w", err)
			}
			if p.Theme != "" {
				theme = normalize(p.Theme)
			}
		}
	}
	m.apply(theme)
	return nil
}

// Current returns the active theme name.
func (m *Manager) Current() string {
	return m.current
}

// Set applies theme and persists it.
func (m *Manager) Set(theme string) error {
	theme = normalize(theme)
	m.apply(theme)
	return m.save()
}

// Toggle switches between light and dark and persists the result.
func (m *Manager) Toggle() error {
	next := Dark
	if m.current == Dark {
		next = Light
	}
	return m.Set(next)
}

func (m *Manager) apply(theme string) {
	m.current = theme
	m.root.SetAttribute(m.attribute, theme)
	slog.Debug("theme applied", "theme", theme)
}

func (m *Manager) save() error {
	if m.path == "" {
		return nil
	}
	data, err := yaml.Marshal(Prefs{Theme: m.current})
	if err != nil {
		return fmt.Errorf("marshaling prefs: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("writing prefs: %w", err)
	}
	return nil
}

func normalize(theme string) string {
	if theme == Dark {
		return Dark
	}
	return Light
}
