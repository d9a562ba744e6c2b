// Package stackwiretest provides helpers for testing factories and the
// backends built from them.
package stackwiretest

import (
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/danpasecinic/stackwire"
	"github.com/danpasecinic/stackwire/internal/reflect"
	"github.com/danpasecinic/stackwire/outputs"
	"github.com/danpasecinic/stackwire/stack"
	"github.com/danpasecinic/stackwire/validate"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
}

// Identifier is the sandbox identifier used when no other is given.
var Identifier = stack.Identifier{
	Type:      stack.DeploymentSandbox,
	Namespace: "test",
	Name:      "sandbox",
	Region:    "us-east-1",
}

type TestBackend struct {
	*stackwire.Backend
	Storage *RecordingStorage
	tb      TB
}

// New resolves factories into a backend with a RecordingStorage, import
// verification turned off and logging discarded. opts are applied last and
// may override any of these.
func New(tb TB, factories map[string]stackwire.Factory, opts ...stackwire.Option) *TestBackend {
	tb.Helper()

	storage := NewRecordingStorage()
	b, err := stackwire.New(factories, append(defaults(storage), opts...)...)
	if err != nil {
		tb.Fatalf("failed to resolve backend: %v", err)
	}
	return &TestBackend{Backend: b, Storage: storage, tb: tb}
}

func FromModules(tb TB, modules []*stackwire.Module, opts ...stackwire.Option) *TestBackend {
	tb.Helper()

	storage := NewRecordingStorage()
	b, err := stackwire.NewFromModules(modules, append(defaults(storage), opts...)...)
	if err != nil {
		tb.Fatalf("failed to resolve backend: %v", err)
	}
	return &TestBackend{Backend: b, Storage: storage, tb: tb}
}

func defaults(storage *RecordingStorage) []stackwire.Option {
	return []stackwire.Option{
		stackwire.WithIdentifier(Identifier),
		stackwire.WithOutputStorage(storage),
		stackwire.WithImportPathVerifier(validate.NewToggleableImportPathVerifier(false)),
		stackwire.WithLogger(slog.New(slog.DiscardHandler)),
	}
}

func RequireResource[T any](b *TestBackend, name string) T {
	b.tb.Helper()

	v, err := stackwire.ResourceAs[T](b.Backend, name)
	if err != nil {
		b.tb.Fatalf("failed to get resource %s as %s: %v", name, reflect.TypeKey[T](), err)
	}
	return v
}

func (b *TestBackend) RequireCreateStack(name string) *stack.Unit {
	b.tb.Helper()

	u, err := b.CreateStack(name)
	if err != nil {
		b.tb.Fatalf("failed to create stack %s: %v", name, err)
	}
	return u
}

func (b *TestBackend) RequireOutput(fragment outputs.Fragment) {
	b.tb.Helper()

	if err := b.AddOutput(fragment); err != nil {
		b.tb.Fatalf("failed to add output: %v", err)
	}
}

func (b *TestBackend) AssertToken(token string) {
	b.tb.Helper()

	if !slices.Contains(b.Tokens(), token) {
		b.tb.Fatalf("expected token %q to be registered, have %v", token, b.Tokens())
	}
}

// Call is one AddBackendOutputEntry call seen by a RecordingStorage.
type Call struct {
	Key   string
	Entry outputs.Entry
}

// RecordingStorage keeps every output entry in memory. Set Err to make
// subsequent calls fail.
type RecordingStorage struct {
	mu      sync.Mutex
	calls   []Call
	entries map[string]outputs.Entry

	Err error
}

func NewRecordingStorage() *RecordingStorage {
	return &RecordingStorage{entries: make(map[string]outputs.Entry)}
}

func (s *RecordingStorage) AddBackendOutputEntry(key string, entry outputs.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	entry.Payload = maps.Clone(entry.Payload)
	s.calls = append(s.calls, Call{Key: key, Entry: entry})
	s.entries[key] = entry
	return nil
}

func (s *RecordingStorage) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// Entry returns the last entry written under key.
func (s *RecordingStorage) Entry(key string) (outputs.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok
}

// CountingGenerator is a Generator that counts how often it produced a
// construct.
type CountingGenerator[T any] struct {
	group string
	fn    func(ctx stackwire.GeneratorContext) (T, error)
	calls atomic.Int32
}

func NewCountingGenerator[T any](group string, fn func(ctx stackwire.GeneratorContext) (T, error)) *CountingGenerator[T] {
	return &CountingGenerator[T]{group: group, fn: fn}
}

func (g *CountingGenerator[T]) GroupName() string {
	return g.group
}

func (g *CountingGenerator[T]) Generate(ctx stackwire.GeneratorContext) (any, error) {
	g.calls.Add(1)
	return g.fn(ctx)
}

func (g *CountingGenerator[T]) Calls() int {
	return int(g.calls.Load())
}
