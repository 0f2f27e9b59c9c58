package provider

import (
	"fmt"
	"sort"
)

// Factory creates a provider instance from opaque config (provider-specific).
type Factory func(any) (Provider, error)

var registry = map[string]Factory{}

// Register binds a provider name to its factory.
func Register(name string, f Factory) {
	registry[name] = f
}

// New returns a provider instance by name.
func New(name string, cfg any) (Provider, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", name)
	}
	return f(cfg)
}

// Names lists the registered providers, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
