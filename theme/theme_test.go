package theme

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRootObserveFiltersAttributes(t *testing.T) {
	root := NewRoot()
	var got []string
	root.Observe(func(name, value string) {
		got = append(got, name+"="+value)
	}, DefaultAttribute)

	root.SetAttribute("lang", "en")
	root.SetAttribute(DefaultAttribute, Dark)

	if len(got) != 1 || got[0] != "data-theme=dark" {
		t.Errorf("observer calls = %v, want [data-theme=dark]", got)
	}
}

func TestRootObserveOnlyOnChange(t *testing.T) {
	root := NewRoot()
	calls := 0
	root.Observe(func(string, string) { calls++ })

	root.SetAttribute(DefaultAttribute, Light)
	root.SetAttribute(DefaultAttribute, Light)
	root.SetAttribute(DefaultAttribute, Dark)

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRootUnsubscribe(t *testing.T) {
	root := NewRoot()
	calls := 0
	stop := root.Observe(func(string, string) { calls++ })

	root.SetAttribute("a", "1")
	stop()
	root.SetAttribute("a", "2")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRootObserverMayReadRoot(t *testing.T) {
	root := NewRoot()
	var seen string
	root.Observe(func(name, _ string) {
		// Must not deadlock
		seen = root.Attribute(name)
	})
	root.SetAttribute(DefaultAttribute, Dark)
	if seen != Dark {
		t.Errorf("seen = %q, want dark", seen)
	}
}

func TestManagerLoadMissingFile(t *testing.T) {
	root := NewRoot()
	m := NewManager(root, "", filepath.Join(t.TempDir(), "prefs.yaml"))

	if err := m.Load(Light); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Current() != Light || root.Attribute(DefaultAttribute) != Light {
		t.Errorf("current = %q, attribute = %q, want light", m.Current(), root.Attribute(DefaultAttribute))
	}
}

func TestManagerTogglePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")

	m := NewManager(NewRoot(), "", path)
	if err := m.Load(Light); err != nil {
		t.Fatal(err)
	}
	if err := m.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if m.Current() != Dark {
		t.Fatalf("current = %q, want dark", m.Current())
	}

	// A fresh manager picks up the saved preference
	root := NewRoot()
	again := NewManager(root, "", path)
	if err := again.Load(Light); err != nil {
		t.Fatal(err)
	}
	if again.Current() != Dark || root.Attribute(DefaultAttribute) != Dark {
		t.Errorf("reloaded theme = %q, want dark", again.Current())
	}

	if err := again.Toggle(); err != nil {
		t.Fatal(err)
	}
	if again.Current() != Light {
		t.Errorf("second toggle = %q, want light", again.Current())
	}
}

func TestManagerUnknownThemeIsLight(t *testing.T) {
	m := NewManager(NewRoot(), "", "")
	if err := m.Set("sepia"); err != nil {
		t.Fatal(err)
	}
	if m.Current() != Light {
		t.Errorf("current = %q, want light", m.Current())
	}
}

func TestManagerBadPrefsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	if err := os.WriteFile(path, []byte("theme: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	m := NewManager(NewRoot(), "", path)
	if err := m.Load(Light); err == nil {
		t.Error("expected parse error")
	}
}
