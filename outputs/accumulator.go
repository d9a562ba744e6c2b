package outputs

import (
	"encoding/json"
	"fmt"
	"sync"

	"dario.cat/mergo"
)

// DefaultVersion is applied to fragments that do not carry a version.
const DefaultVersion = "1.1"

const (
	versionKey        = "version"
	customOutputsKey  = "customOutputs"
	customEntryFormat = "1"
)

// Fragment is a partial output document. Nested maps merge key by key.
type Fragment map[string]any

type Accumulator struct {
	mu       sync.Mutex
	storage  Storage
	document Fragment
}

func NewAccumulator(storage Storage) *Accumulator {
	return &Accumulator{
		storage:  storage,
		document: Fragment{},
	}
}

// AddOutput deep-merges fragment into the accumulated document and persists
// the result under CustomOutputKey. Scalars and slices in fragment replace
// earlier values, zero values included; keys absent from fragment are kept.
// A missing or empty version becomes DefaultVersion, and a version that is
// not a string is rejected.
func (a *Accumulator) AddOutput(fragment Fragment) error {
	incoming := deepCopy(fragment)
	if incoming == nil {
		incoming = Fragment{}
	}
	switch v := incoming[versionKey].(type) {
	case nil:
		incoming[versionKey] = DefaultVersion
	case string:
		if v == "" {
			incoming[versionKey] = DefaultVersion
		}
	default:
		return fmt.Errorf("version %v (%T): %w", v, v, ErrInvalidVersion)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if current, ok := a.document[versionKey]; ok && current != incoming[versionKey] {
		return fmt.Errorf("accumulated version %v, fragment version %v: %w", current, incoming[versionKey], ErrVersionMismatch)
	}

	merged := deepCopy(a.document)
	if err := mergo.Merge(&merged, incoming, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge output fragment: %w", err)
	}

	encoded, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode custom outputs: %w", err)
	}

	err = a.storage.AddBackendOutputEntry(CustomOutputKey, Entry{
		Version: customEntryFormat,
		Payload: map[string]string{customOutputsKey: string(encoded)},
	})
	if err != nil {
		return err
	}

	a.document = merged
	return nil
}

// Document returns a copy of the accumulated document.
func (a *Accumulator) Document() Fragment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return deepCopy(a.document)
}

func deepCopy(f Fragment) Fragment {
	if f == nil {
		return nil
	}
	out := make(Fragment, len(f))
	for k, v := range f {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case Fragment:
		return map[string]any(deepCopy(t))
	case map[string]any:
		return map[string]any(deepCopy(t))
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = copyValue(e)
		}
		return s
	case []string:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = e
		}
		return s
	default:
		return v
	}
}
