package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		name  string
		input json.RawMessage
		want  string
	}{
		{"string value", json.RawMessage(`"172"`), "172"},
		{"integer value", json.RawMessage(`172`), "172"},
		{"float value", json.RawMessage(`1.5`), "1.5"},
		{"boolean", json.RawMessage(`true`), "true"},
		{"null", json.RawMessage(`null`), ""},
		{"empty", json.RawMessage{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlexibleStringValue(tt.input))
		})
	}
}

func TestFlexFields_InStruct(t *testing.T) {
	var rec struct {
		Height  FlexString `json:"height"`
		Mass    FlexString `json:"mass"`
		Gender  FlexString `json:"gender"`
		Episode FlexInt    `json:"episode_id"`
	}

	err := json.Unmarshal([]byte(`{"height": 172, "mass": "77", "gender": null, "episode_id": "4"}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, "172", rec.Height.String())
	assert.Equal(t, "77", rec.Mass.String())
	assert.Equal(t, "", rec.Gender.String())
	assert.Equal(t, FlexInt(4), rec.Episode)
}

func TestFlexInt_RejectsNonNumeric(t *testing.T) {
	var n FlexInt
	err := json.Unmarshal([]byte(`"four"`), &n)
	require.Error(t, err)
}
