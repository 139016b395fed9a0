package llm

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ClientFactory builds a generator client from its configuration
type ClientFactory func(config *ClientConfig) (Client, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]ClientFactory)
)

// Register makes a generator backend available under name. Backends call it
// from init, so a nil factory or a repeated name panics like database/sql.Register.
func Register(name string, factory ClientFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if factory == nil {
		panic("llm: Register factory is nil for " + name)
	}
	if _, dup := factories[name]; dup {
		panic("llm: Register called twice for " + name)
	}
	factories[name] = factory
}

// Create builds the backend registered under name. A nil config gets the
// defaults and an unnamed one takes name.
func Create(name string, config *ClientConfig) (Client, error) {
	factoriesMu.RLock()
	factory, ok := factories[name]
	factoriesMu.RUnlock()
	if !ok {
		return nil, NewClientError(name, "create",
			fmt.Sprintf("client %q not registered (known: %v)", name, List()), ErrClientNotAvailable)
	}

	if config == nil {
		config = NewClientConfig(name)
	} else if config.Name == "" {
		config.Name = name
	}
	return factory(config)
}

// List returns the registered backend names, sorted
func List() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	return slices.Sorted(maps.Keys(factories))
}

// IsRegistered reports whether a backend is registered under name
func IsRegistered(name string) bool {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Unregister removes a backend; tests use it to clean up
func Unregister(name string) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	delete(factories, name)
}
