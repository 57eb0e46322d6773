package rules

import (
	"fmt"
	"strings"
	"sync"
)

var (
	registry []Check
	byID     = make(map[string]Check)
	mu       sync.RWMutex
)

// Register appends c to the registry. Checks run and are reported in
// registration order.
func Register(c Check) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := byID[c.ID()]; exists {
		panic(fmt.Sprintf("check %s already registered", c.ID()))
	}
	registry = append(registry, c)
	byID[c.ID()] = c
}

// List returns all checks in registration order.
func List() []Check {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Check, len(registry))
	copy(out, registry)
	return out
}

// IDs returns the IDs of all checks in registration order.
func IDs() []string {
	mu.RLock()
	defer mu.RUnlock()
	ids := make([]string, 0, len(registry))
	for _, c := range registry {
		ids = append(ids, c.ID())
	}
	return ids
}

// Lookup returns the check registered under id.
func Lookup(id string) (Check, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := byID[id]
	return c, ok
}

// Resolve selects checks from a comma-separated list of IDs. The result keeps
// registration order regardless of the order in the selector. An empty
// selector selects every check.
func Resolve(selector string) ([]Check, error) {
	if strings.TrimSpace(selector) == "" {
		return List(), nil
	}

	wanted := make(map[string]bool)
	for _, id := range strings.Split(selector, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := Lookup(id); !ok {
			return nil, fmt.Errorf("check not found: %s", id)
		}
		wanted[id] = true
	}

	var selected []Check
	for _, c := range List() {
		if wanted[c.ID()] {
			selected = append(selected, c)
		}
	}
	return selected, nil
}
