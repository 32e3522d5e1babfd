// Package shortname maps runner and algorithm identifiers to the compact
// labels used to disambiguate experiment results.
package shortname

import (
	"strings"
	"sync"
)

// Separator joins composed labels
const Separator = "_"

// Registry is a lookup table from identifier to display label
type Registry struct {
	mu     sync.RWMutex
	labels map[string]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{labels: make(map[string]string)}
}

// Register associates id with label, replacing any previous label
func (r *Registry) Register(id, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels[id] = label
}

// Lookup returns the label registered for id, or id itself
func (r *Registry) Lookup(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if label, ok := r.labels[id]; ok {
		return label
	}
	return id
}

// Compose joins labels with Separator, skipping empty ones
func Compose(labels ...string) string {
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		if l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, Separator)
}

var defaultRegistry = NewRegistry()

func init() {
	for id, label := range map[string]string{
		"nngs_runner":         "nngs",
		"random_hill_climb":   "rhc",
		"simulated_annealing": "sa",
		"geom_decay":          "geom",
		"arith_decay":         "arith",
		"exp_decay":           "exp",
	} {
		defaultRegistry.Register(id, label)
	}
}

// Register adds id to the default registry
func Register(id, label string) {
	defaultRegistry.Register(id, label)
}

// Lookup resolves id against the default registry
func Lookup(id string) string {
	return defaultRegistry.Lookup(id)
}
