package core

import (
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	SnapshotID ID
	RequestID  ID
)

func (id SnapshotID) String() string { return ID(id).String() }
func (id RequestID) String() string  { return ID(id).String() }

// NewSnapshotID identifies one loaded version of the base dataset
func NewSnapshotID() SnapshotID { return SnapshotID(NewID()) }

// ParseRequestID accepts a caller-supplied request ID if it is a UUID,
// otherwise it mints a new one.
func ParseRequestID(s string) RequestID {
	s = strings.TrimSpace(s)
	if _, err := uuid.Parse(s); err == nil {
		return RequestID(s)
	}
	return RequestID(NewID())
}
