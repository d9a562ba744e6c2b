// Package outputs records the versioned entries a backend publishes for its
// clients, and accumulates the free-form custom outputs added by callers.
package outputs

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/danpasecinic/stackwire/stack"
)

const (
	PlatformOutputKey = "StackwirePlatformOutput"
	CustomOutputKey   = "StackwireCustomOutput"
)

// MetadataPrefix namespaces output entries among the unit's metadata.
const MetadataPrefix = "stackwire:output:"

var (
	ErrVersionMismatch = errors.New("output version mismatch")
	ErrInvalidVersion  = errors.New("output version must be a string")
)

type Entry struct {
	Version string            `json:"version" yaml:"version"`
	Payload map[string]string `json:"payload" yaml:"payload"`
}

type Storage interface {
	AddBackendOutputEntry(key string, entry Entry) error
}

// UnitMetadataStorage stores each entry as metadata on a deployment unit.
// An entry may be written again under the same version; the new payload
// replaces the old one.
type UnitMetadataStorage struct {
	mu      sync.Mutex
	unit    *stack.Unit
	entries map[string]Entry
	keys    []string
}

func NewUnitMetadataStorage(unit *stack.Unit) *UnitMetadataStorage {
	return &UnitMetadataStorage{
		unit:    unit,
		entries: make(map[string]Entry),
	}
}

func (s *UnitMetadataStorage) AddBackendOutputEntry(key string, entry Entry) error {
	if key == "" {
		return errors.New("output entry key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok {
		if existing.Version != entry.Version {
			return fmt.Errorf("output %s: stored version %q, got %q: %w", key, existing.Version, entry.Version, ErrVersionMismatch)
		}
	} else {
		s.keys = append(s.keys, key)
	}

	stored := Entry{Version: entry.Version, Payload: make(map[string]string, len(entry.Payload))}
	for k, v := range entry.Payload {
		stored.Payload[k] = v
	}
	s.entries[key] = stored
	s.unit.SetMetadata(MetadataPrefix+key, stored)
	return nil
}

func (s *UnitMetadataStorage) Entry(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok
}

// Keys lists the stored keys in the order they were first written.
func (s *UnitMetadataStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.keys)
}
