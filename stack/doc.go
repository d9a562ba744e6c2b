// Package stack models deployment units ("stacks") and resolves resource
// group names to them.
//
// A backend has one root unit. Resources that ask for a group get a nested
// unit created on first request; callers can add custom units for their own
// resources with [NestedResolver.CreateCustomStack]. Unit names are unique
// within a resolver.
package stack
