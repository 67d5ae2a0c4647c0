package terminal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSidebarPrefPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	p := LoadPrefs(path)
	if p.SidebarCollapsed() {
		t.Error("fresh prefs should not be collapsed")
	}

	if err := p.SetSidebarCollapsed(true); err != nil {
		t.Fatal(err)
	}

	reloaded := LoadPrefs(path)
	if !reloaded.SidebarCollapsed() {
		t.Error("collapsed preference lost across reload")
	}
}

func TestSidebarThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	p := LoadPrefs(path)
	if err := p.SetSidebarCollapsed(true); err != nil {
		t.Fatal(err)
	}

	if p.SidebarShouldCollapse(768) {
		t.Error("preference must not apply at or below 768px")
	}
	if !p.SidebarShouldCollapse(1024) {
		t.Error("preference should apply above 768px")
	}
}

func TestCorruptPrefsFileIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	p := LoadPrefs(path)
	if p.SidebarCollapsed() {
		t.Error("corrupt file should yield defaults")
	}
}
