package uid

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// NamespaceUID is the default namespace for name based UIDs.
var NamespaceUID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("2.25"))

// FromName returns the UID derived from the name based (v5) UUID of name in space.
// The same space and name always give the same UID.
func FromName(space uuid.UUID, name []byte) string {
	return Encode(uuid.NewSHA1(space, name))
}

// Derive hashes the JSON form of value into a name based UUID under
// NamespaceUID and returns the UID derived from it.
func Derive(value any) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to marshal value: %w", err)
	}
	return FromName(NamespaceUID, raw), nil
}
