package graphql

import (
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalID_RoundTrip(t *testing.T) {
	id := uuid.New()

	global := ToGlobalID(TypePlanet, id)
	decoded, err := base64.StdEncoding.DecodeString(global)
	require.NoError(t, err)
	assert.Equal(t, "Planet:"+id.String(), string(decoded))

	typeName, got, err := FromGlobalID(global)
	require.NoError(t, err)
	assert.Equal(t, TypePlanet, typeName)
	assert.Equal(t, id, got)
}

func TestFromGlobalID_AcceptsRawUUID(t *testing.T) {
	id := uuid.New()

	typeName, got, err := FromGlobalID(" " + id.String() + " ")
	require.NoError(t, err)
	assert.Empty(t, typeName)
	assert.Equal(t, id, got)
}

func TestFromGlobalID_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"not-an-id",
		base64.StdEncoding.EncodeToString([]byte("Planet")),
		base64.StdEncoding.EncodeToString([]byte(":" + uuid.NewString())),
		base64.StdEncoding.EncodeToString([]byte("Planet:42")),
	} {
		_, _, err := FromGlobalID(raw)
		assert.ErrorIs(t, err, ErrInvalidID, raw)
	}
}

func TestParseID_OtherType(t *testing.T) {
	id := uuid.New()

	_, ok, err := parseID(TypePerson, ToGlobalID(TypeFilm, id))
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err := parseID(TypePerson, ToGlobalID(TypePerson, id))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
