package graphql

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Object type names carried in global ids.
const (
	TypePerson  = "Person"
	TypeFilm    = "Film"
	TypePlanet  = "Planet"
	TypeSpecies = "Species"
)

// ErrInvalidID is returned for ids that are neither a global id nor a UUID.
var ErrInvalidID = errors.New("invalid id")

// ToGlobalID encodes a Relay global id: base64("Type:uuid").
func ToGlobalID(typeName string, id uuid.UUID) string {
	return base64.StdEncoding.EncodeToString([]byte(typeName + ":" + id.String()))
}

// FromGlobalID decodes a Relay global id. A bare UUID is accepted too and
// comes back with an empty type name.
func FromGlobalID(raw string) (string, uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if id, err := uuid.Parse(raw); err == nil {
		return "", id, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	typeName, value, ok := strings.Cut(string(decoded), ":")
	if !ok || typeName == "" {
		return "", uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return typeName, id, nil
}

// parseID decodes raw as an id of typeName. The second result is false when
// raw is a well-formed global id of some other type.
func parseID(typeName, raw string) (uuid.UUID, bool, error) {
	gotType, id, err := FromGlobalID(raw)
	if err != nil {
		return uuid.Nil, false, err
	}
	if gotType != "" && gotType != typeName {
		return uuid.Nil, false, nil
	}
	return id, true, nil
}
