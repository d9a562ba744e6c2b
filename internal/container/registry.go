package container

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/danpasecinic/stackwire/internal/reflect"
)

var (
	ErrTokenConflict  = errors.New("token already bound to a different factory")
	ErrEmptyToken     = errors.New("token cannot be empty")
	ErrInvalidFactory = errors.New("factory must be a non-nil pointer")
)

// TokenRegistry binds capability tokens to the factory that provides them.
// A token is bound at most once; rebinding it to the same factory is a
// no-op.
type TokenRegistry struct {
	mu        sync.RWMutex
	factories map[string]any
}

func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{
		factories: make(map[string]any),
	}
}

func (r *TokenRegistry) Register(token string, factory any) error {
	if token == "" {
		return ErrEmptyToken
	}
	if !reflect.IsIdentityKey(factory) {
		return fmt.Errorf("token %q: %w: got %s", token, ErrInvalidFactory, reflect.TypeName(factory))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.factories[token]; ok {
		if existing == factory {
			return nil
		}
		return fmt.Errorf(
			"token %q: bound to %s, cannot bind %s: %w",
			token, reflect.TypeName(existing), reflect.TypeName(factory), ErrTokenConflict,
		)
	}

	r.factories[token] = factory
	return nil
}

func (r *TokenRegistry) Lookup(token string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[token]
	return factory, ok
}

func (r *TokenRegistry) Tokens() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.factories))
}

func (r *TokenRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.factories)
}
