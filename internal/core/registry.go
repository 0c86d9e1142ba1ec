package core

import (
	"fmt"
	"sync"
)

// PlatformField lists the source column synonyms for one target field,
// most specific first.
type PlatformField struct {
	Target   string
	Synonyms []string
}

// PlatformProfile describes the export format of one e-commerce platform.
type PlatformProfile struct {
	Key    string          // Unique identifier: "shopify"
	Label  string          // Display name: "Shopify"
	Fields []PlatformField // Ordered; may include CategorySourceKey

	// Example is a small sample export used for the example download.
	ExampleColumns []string
	ExampleRows    [][]string
}

// Synonyms returns the synonym list for target, or nil.
func (p PlatformProfile) Synonyms(target string) []string {
	for _, f := range p.Fields {
		if f.Target == target {
			return f.Synonyms
		}
	}
	return nil
}

// CategorySources returns the columns that may hold a nested category string.
func (p PlatformProfile) CategorySources() []string {
	return p.Synonyms(CategorySourceKey)
}

var (
	platforms  []PlatformProfile
	platformMu sync.RWMutex
)

// RegisterPlatform adds a profile to the registry.
// Registration order is the detection tie-break order.
// Panics if a profile with the same key is already registered.
func RegisterPlatform(p PlatformProfile) {
	platformMu.Lock()
	defer platformMu.Unlock()

	for _, existing := range platforms {
		if existing.Key == p.Key {
			panic(fmt.Sprintf("platform already registered: %s", p.Key))
		}
	}
	platforms = append(platforms, p)
}

// Platform returns a profile by key.
// Returns false if not found.
func Platform(key string) (PlatformProfile, bool) {
	platformMu.RLock()
	defer platformMu.RUnlock()

	for _, p := range platforms {
		if p.Key == key {
			return p, true
		}
	}
	return PlatformProfile{}, false
}

// Platforms returns all registered profiles in registration order.
func Platforms() []PlatformProfile {
	platformMu.RLock()
	defer platformMu.RUnlock()

	result := make([]PlatformProfile, len(platforms))
	copy(result, platforms)
	return result
}

// PlatformCount returns the number of registered profiles.
func PlatformCount() int {
	platformMu.RLock()
	defer platformMu.RUnlock()
	return len(platforms)
}

// ClearPlatforms removes all registered profiles.
// Primarily useful for testing.
func ClearPlatforms() {
	platformMu.Lock()
	defer platformMu.Unlock()
	platforms = nil
}
