package board

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// LocalPrefix marks the textual form of a column id that exists only in memory.
const LocalPrefix = "local-"

// ColumnID identifies a column either in the client-local namespace, before the
// column has been persisted, or by its store-issued UUID. The zero value is
// neither and never matches a column.
type ColumnID struct {
	local  string
	remote uuid.UUID
}

// NewLocalID returns a fresh client-local id.
func NewLocalID() ColumnID {
	return ColumnID{local: uuid.NewString()}
}

// LocalID returns the client-local id with the given key.
func LocalID(key string) ColumnID {
	return ColumnID{local: key}
}

// RemoteID returns the id of a persisted column.
func RemoteID(id uuid.UUID) ColumnID {
	return ColumnID{remote: id}
}

// ParseColumnID accepts either "local-<key>" or a UUID.
func ParseColumnID(s string) (ColumnID, error) {
	if key, ok := strings.CutPrefix(s, LocalPrefix); ok {
		if key == "" {
			return ColumnID{}, fmt.Errorf("invalid column id %q", s)
		}
		return LocalID(key), nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return ColumnID{}, fmt.Errorf("invalid column id %q: %w", s, err)
	}
	return RemoteID(id), nil
}

func (id ColumnID) IsLocal() bool {
	return id.local != ""
}

func (id ColumnID) IsZero() bool {
	return id.local == "" && id.remote == uuid.Nil
}

// Remote returns the store-issued UUID, if the column has one.
func (id ColumnID) Remote() (uuid.UUID, bool) {
	if id.local != "" || id.remote == uuid.Nil {
		return uuid.Nil, false
	}
	return id.remote, true
}

func (id ColumnID) String() string {
	if id.local != "" {
		return LocalPrefix + id.local
	}
	if id.remote == uuid.Nil {
		return ""
	}
	return id.remote.String()
}
