package provider

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/llmkit/logger"
)

// Manager owns initialized providers built from a Registry and tracks
// which one is the default.
type Manager[T Provider] struct {
	mu          sync.RWMutex
	registry    *Registry[T]
	providers   map[string]T
	defaultName string
	log         *logger.Logger
}

// NewManager creates a Manager backed by the given registry.
func NewManager[T Provider](registry *Registry[T]) *Manager[T] {
	return &Manager[T]{
		registry:  registry,
		providers: make(map[string]T),
		log:       logger.Get("provider"),
	}
}

// Registry returns the underlying registry.
func (m *Manager[T]) Registry() *Registry[T] {
	return m.registry
}

// Register adds a factory to the underlying registry.
func (m *Manager[T]) Register(name string, factory Factory[T]) {
	m.registry.RegisterFactory(name, factory)
	m.log.Debug("factory registered", map[string]interface{}{logger.FieldProvider: name})
}

// Initialize creates a provider from its factory and stores it for use.
// The first initialized provider becomes the default.
func (m *Manager[T]) Initialize(name string, cfg map[string]any) error {
	instance, err := m.registry.Create(name, cfg)
	if err != nil {
		return fmt.Errorf("initialize provider %q: %w", name, err)
	}
	m.mu.Lock()
	m.providers[name] = instance
	if m.defaultName == "" {
		m.defaultName = name
	}
	m.mu.Unlock()
	m.registry.Set(name, instance)
	m.log.Info("provider initialized", map[string]interface{}{logger.FieldProvider: name})
	return nil
}

// GetByName returns a specific provider by name.
func (m *Manager[T]) GetByName(name string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.providers[name]; ok {
		return p, nil
	}
	var zero T
	return zero, fmt.Errorf("provider %q not initialized", name)
}

// SetDefault sets the default provider by name.
func (m *Manager[T]) SetDefault(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("provider %q not initialized", name)
	}
	m.defaultName = name
	return nil
}

// Default returns the default provider.
func (m *Manager[T]) Default() (T, error) {
	m.mu.RLock()
	name := m.defaultName
	m.mu.RUnlock()
	if name == "" {
		var zero T
		return zero, fmt.Errorf("no provider initialized")
	}
	return m.GetByName(name)
}

// Available returns the sorted names of all initialized providers.
func (m *Manager[T]) Available() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases every initialized provider that implements Closeable and
// returns the joined errors.
func (m *Manager[T]) Close(ctx context.Context) error {
	m.mu.Lock()
	providers := m.providers
	m.providers = make(map[string]T)
	m.defaultName = ""
	m.mu.Unlock()

	var errs []error
	for name, p := range providers {
		c, ok := any(p).(Closeable)
		if !ok {
			continue
		}
		if err := c.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close provider %q: %w", name, err))
		}
	}
	return stderrors.Join(errs...)
}
