package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeSpec_MarshalScalar(t *testing.T) {
	data, err := json.Marshal(StringType())
	require.NoError(t, err)
	assert.JSONEq(t, `"string"`, string(data))

	data, err = json.Marshal(IntegerType())
	require.NoError(t, err)
	assert.JSONEq(t, `"integer"`, string(data))
}

func TestTypeSpec_MarshalEnum(t *testing.T) {
	gender := EnumOf(TypeString,
		EnumMember{Value: "M", Label: "Male"},
		EnumMember{Value: "F", Label: "Female"},
	)

	data, err := json.Marshal(gender)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind": "enum",
		"value_type": "string",
		"members": [{"value": "M", "label": "Male"}, {"value": "F", "label": "Female"}]
	}`, string(data))
}

func TestTypeSpec_MarshalArrayAndStruct(t *testing.T) {
	spec := StructOf(Schema{
		"symptoms": {Label: "Symptoms", Type: ArrayOf(StringType())},
	}, true)

	data, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind": "struct",
		"open": true,
		"members": {
			"symptoms": {"label": "Symptoms", "type": {"kind": "array", "item_type": "string"}}
		}
	}`, string(data))
}

func TestSchema_Names(t *testing.T) {
	s := Schema{"number": {}, "channel": {}, "address": {}}
	assert.Equal(t, []string{"address", "channel", "number"}, s.Names())
}

func TestTypeSpec_IsScalar(t *testing.T) {
	assert.True(t, StringType().IsScalar())
	assert.True(t, IntegerType().IsScalar())
	assert.False(t, ArrayOf(StringType()).IsScalar())
	assert.False(t, StructOf(nil, true).IsScalar())
}
