package reflect

import (
	"strings"
	"testing"
)

type testGenerator struct {
	Name string
}

type stateless struct{}

func TestTypeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"int", TypeKey[int](), "int"},
		{"pointer to struct", TypeKey[*testGenerator](), "*github.com/danpasecinic/stackwire/internal/reflect.testGenerator"},
		{"slice", TypeKey[[]string](), "[]string"},
		{"array", TypeKey[[12]byte](), "[12]uint8"},
		{"map", TypeKey[map[string]int](), "map[string]int"},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				t.Parallel()
				if tt.got != tt.want {
					t.Errorf("TypeKey = %q, want %q", tt.got, tt.want)
				}
			},
		)
	}
}

func TestTypeKeyFromValue(t *testing.T) {
	t.Parallel()

	if got := TypeKeyFromValue(&testGenerator{}); got != TypeKey[*testGenerator]() {
		t.Errorf("TypeKeyFromValue = %q", got)
	}
	if got := TypeKeyFromValue(nil); got != "<nil>" {
		t.Errorf("TypeKeyFromValue(nil) = %q", got)
	}
}

func TestTypeName(t *testing.T) {
	t.Parallel()

	if got := TypeName(&testGenerator{}); got != "*reflect.testGenerator" {
		t.Errorf("TypeName = %q", got)
	}
	if got := TypeName(nil); got != "<nil>" {
		t.Errorf("TypeName(nil) = %q", got)
	}
}

func TestIsIdentityKey(t *testing.T) {
	t.Parallel()

	var nilPtr *testGenerator

	if !IsIdentityKey(&testGenerator{}) {
		t.Error("pointer should be an identity key")
	}
	for _, v := range []any{nil, nilPtr, testGenerator{}, map[string]int{}, func() {}, &stateless{}, &struct{}{}, new([0]int)} {
		if IsIdentityKey(v) {
			t.Errorf("%T should not be an identity key", v)
		}
	}
}

func TestIdentityKeyDistinguishesObjects(t *testing.T) {
	t.Parallel()

	a := &testGenerator{Name: "same"}
	b := &testGenerator{Name: "same"}

	if IdentityKey(a) == IdentityKey(b) {
		t.Error("value-equal objects at different addresses must have different keys")
	}
	if IdentityKey(a) != IdentityKey(a) {
		t.Error("identity key must be stable")
	}
	if !strings.HasPrefix(IdentityKey(a), TypeKey[*testGenerator]()+"@0x") {
		t.Errorf("unexpected key %q", IdentityKey(a))
	}
	if IdentityKey(testGenerator{}) != TypeKey[testGenerator]() {
		t.Error("non-pointer keys fall back to the type key")
	}
}
