// Package prefs provides JSON-based viewer preferences.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"mapview/internal/viewport"
)

const prefsFile = "preferences.json"

// Preference keys.
const (
	KeyZoomMin      = "zoom.min"
	KeyZoomMax      = "zoom.max"
	KeyZoomStep     = "zoom.step"
	KeyZoomDefault  = "zoom.default"
	KeyQuality      = "render.quality" // "smooth" or "pixel"
	KeyShowDirty    = "render.showDirty"
	KeyLastScene    = "scene.last"
	QualitySmooth   = "smooth"
	QualityPixelArt = "pixel"
)

// Prefs stores viewer preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Load reads preferences from ~/.config/mapview/preferences.json.
// Returns empty Prefs if the file doesn't exist.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	p, _ := LoadFrom(filepath.Join(configDir, "mapview", prefsFile))
	return p
}

// LoadFrom reads preferences from path. A missing file is not an error; a
// malformed one is reported, and the returned Prefs is empty but usable.
func LoadFrom(path string) (*Prefs, error) {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, fmt.Errorf("read preferences: %w", err)
	}
	if err := json.Unmarshal(data, &p.values); err != nil {
		p.values = make(map[string]interface{})
		return p, fmt.Errorf("parse preferences %s: %w", path, err)
	}
	return p, nil
}

// Path returns the file the preferences are saved to.
func (p *Prefs) Path() string { return p.path }

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// Int returns an int preference, or fallback if not set. JSON numbers
// decode as float64 and are truncated.
func (p *Prefs) Int(key string, fallback int) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	switch n := p.values[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return fallback
}

// SetInt stores an int preference.
func (p *Prefs) SetInt(key string, val int) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// String returns a string preference, or fallback if not set.
func (p *Prefs) String(key, fallback string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if s, ok := p.values[key].(string); ok {
		return s
	}
	return fallback
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if b, ok := p.values[key].(bool); ok {
		return b
	}
	return fallback
}

// SetBool stores a bool preference.
func (p *Prefs) SetBool(key string, val bool) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// ZoomPolicy returns the stored zoom policy, falling back to fallback per
// field.
func (p *Prefs) ZoomPolicy(fallback viewport.ZoomPolicy) viewport.ZoomPolicy {
	return viewport.ZoomPolicy{
		Min:  p.Int(KeyZoomMin, fallback.Min),
		Max:  p.Int(KeyZoomMax, fallback.Max),
		Step: p.Int(KeyZoomStep, fallback.Step),
	}
}

// SetZoomPolicy stores a zoom policy.
func (p *Prefs) SetZoomPolicy(zp viewport.ZoomPolicy) {
	p.SetInt(KeyZoomMin, zp.Min)
	p.SetInt(KeyZoomMax, zp.Max)
	p.SetInt(KeyZoomStep, zp.Step)
}

// PixelArt reports whether maps should be scaled with nearest-neighbour
// sampling.
func (p *Prefs) PixelArt() bool {
	return p.String(KeyQuality, QualitySmooth) == QualityPixelArt
}
