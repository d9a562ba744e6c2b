// Package stableid derives identifiers that stay the same across every
// synthesis of one deployment and differ between deployments.
package stableid

import (
	"strings"

	"github.com/google/uuid"

	"github.com/danpasecinic/stackwire/stack"
)

const defaultHashLength = 10

// namespaceStackwire is the UUIDv5 namespace for backend hashes.
var namespaceStackwire = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/danpasecinic/stackwire"))

type Identifiers struct {
	id stack.Identifier
}

func New(id stack.Identifier) *Identifiers {
	return &Identifiers{id: id}
}

// BackendHash returns a lowercase hex hash of the deployment identity,
// truncated to length characters (10 when length <= 0, 32 at most).
func (s *Identifiers) BackendHash(length int) string {
	if length <= 0 {
		length = defaultHashLength
	}
	key := strings.Join([]string{s.id.Namespace, s.id.Name, string(s.id.Type)}, "-")
	hash := strings.ReplaceAll(uuid.NewSHA1(namespaceStackwire, []byte(key)).String(), "-", "")
	if length > len(hash) {
		length = len(hash)
	}
	return hash[:length]
}

// ResourceName appends the backend hash to base, for physical names that
// must be globally unique.
func (s *Identifiers) ResourceName(base string) string {
	return base + "-" + s.BackendHash(0)
}
