// Package identity produces the public, unguessable identifiers of stored
// entities. Hashes are random and never derived from the stored content.
package identity

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator hands out fresh hashes.
type Generator interface {
	NewHash() (string, error)
}

// UUIDv4 generates random version 4 UUIDs in canonical lowercase form.
type UUIDv4 struct{}

func (UUIDv4) NewHash() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}

// Valid reports whether hash is a canonical lowercase, hyphenated RFC 4122
// version 4 UUID.
func Valid(hash string) bool {
	if len(hash) != 36 {
		return false
	}
	id, err := uuid.Parse(hash)
	if err != nil {
		return false
	}
	return id.Version() == 4 && id.Variant() == uuid.RFC4122 && id.String() == hash
}
