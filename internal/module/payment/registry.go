package payment

import (
	"fmt"
	"sync"

	"github.com/shoutly/server/internal/module/order"
	"github.com/shoutly/server/internal/module/payment/provider"
)

// ProviderRegistry manages the configured payment providers.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]provider.Provider
}

// NewProviderRegistry creates a new provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]provider.Provider),
	}
}

// Register registers a provider under its own name.
func (r *ProviderRegistry) Register(p provider.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns a provider by name.
func (r *ProviderRegistry) Get(name string) (provider.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return p, nil
}

// GetByMethod returns the provider serving the given payment method.
func (r *ProviderRegistry) GetByMethod(method order.PaymentMethod) (provider.Provider, error) {
	switch method {
	case order.PaymentMethodCard:
		return r.Get("stripe")
	case order.PaymentMethodPayPal:
		return r.Get("paypal")
	default:
		return nil, fmt.Errorf("%w: no provider for method %q", ErrProviderNotFound, method)
	}
}

// List returns all registered provider names.
func (r *ProviderRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
