package reflect

import (
	"reflect"
	"strconv"
	"sync"
)

var typeKeyCache sync.Map

func TypeKey[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		t = reflect.TypeOf((*T)(nil)).Elem()
	}
	return typeKeyFromReflect(t)
}

func typeKeyFromReflect(t reflect.Type) string {
	if cached, ok := typeKeyCache.Load(t); ok {
		return cached.(string)
	}

	key := buildTypeKey(t)
	typeKeyCache.Store(t, key)
	return key
}

func buildTypeKey(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + buildTypeKey(t.Elem())
	case reflect.Slice:
		return "[]" + buildTypeKey(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + buildTypeKey(t.Elem())
	case reflect.Map:
		return "map[" + buildTypeKey(t.Key()) + "]" + buildTypeKey(t.Elem())
	case reflect.Func:
		return t.String()
	default:
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		return t.Name()
	}
}

// TypeKeyFromValue is TypeKey for the dynamic type of v.
func TypeKeyFromValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	return typeKeyFromReflect(reflect.TypeOf(v))
}

// TypeName is the short, package-qualified name of v's dynamic type, such
// as "*stackwire.tableFactory".
func TypeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}

// IsIdentityKey reports whether v can serve as an identity map key: a
// non-nil pointer to a value of non-zero size, so that equal keys are the
// same object. Pointers to distinct zero-size values may compare equal.
func IsIdentityKey(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return false
	}
	return rv.Type().Elem().Size() > 0
}

// IdentityKey renders a pointer as its type key plus address. Two values
// yield the same key only when they point to the same object.
func IdentityKey(v any) string {
	if !IsIdentityKey(v) {
		return TypeKeyFromValue(v)
	}
	addr := reflect.ValueOf(v).Pointer()
	return TypeKeyFromValue(v) + "@0x" + strconv.FormatUint(uint64(addr), 16)
}
