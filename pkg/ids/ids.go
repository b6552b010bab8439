// Package ids mints and wraps the opaque object identifiers used across the
// design graph and the compiled model.
package ids

import "github.com/google/uuid"

// ObjectID is a stable, opaque identifier for a design-graph entity. It is
// a thin string wrapper rather than a bare string so the compiler and frame
// packages cannot accidentally accept an arbitrary name where an id is
// expected.
type ObjectID string

// New mints a fresh ObjectID backed by a random (v4) UUID. Callers that
// already hold an id from an external store should use that id as-is and
// never call New for it.
func New() ObjectID {
	return ObjectID(uuid.NewString())
}

// Empty reports whether the id is the zero value.
func (id ObjectID) Empty() bool {
	return id == ""
}

func (id ObjectID) String() string {
	return string(id)
}
