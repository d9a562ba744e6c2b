package stackwire

import (
	"time"
)

// ComputeHook observes every construct lookup. hit is true when the
// construct came from the cache.
type ComputeHook func(generator, group string, hit bool, duration time.Duration, err error)

type FactoryHook func(resource string, duration time.Duration, err error)

type TokenHook func(token, resource string)

// StackHook observes custom stack creation through Backend.CreateStack.
type StackHook func(name string, err error)

type OutputHook func(err error)
