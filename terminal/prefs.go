package terminal

import (
	"encoding/json"
	"os"
)

// The sidebar preference only applies on viewports wider than this; at or
// below the threshold it is ignored and the sidebar stays expanded.
const sidebarMinWidth = 768

// Prefs persists terminal-local UI settings across restarts. Values are
// stored as strings, the sidebar flag as "true"/"false".
type Prefs struct {
	path   string
	values map[string]string
}

// LoadPrefs reads the prefs file; a missing or unreadable file yields empty
// preferences rather than an error.
func LoadPrefs(path string) *Prefs {
	p := &Prefs{path: path, values: map[string]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	if err := json.Unmarshal(data, &p.values); err != nil {
		p.values = map[string]string{}
	}
	return p
}

func (p *Prefs) SidebarCollapsed() bool {
	return p.values["sidebarCollapsed"] == "true"
}

func (p *Prefs) SetSidebarCollapsed(collapsed bool) error {
	if collapsed {
		p.values["sidebarCollapsed"] = "true"
	} else {
		p.values["sidebarCollapsed"] = "false"
	}
	return p.save()
}

// SidebarShouldCollapse applies the stored preference only above the width
// threshold.
func (p *Prefs) SidebarShouldCollapse(viewportWidth int) bool {
	if viewportWidth <= sidebarMinWidth {
		return false
	}
	return p.SidebarCollapsed()
}

func (p *Prefs) save() error {
	data, err := json.MarshalIndent(p.values, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0644)
}
