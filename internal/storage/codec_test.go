package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali01/graphd/internal/core/value"
)

func TestPropertiesRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	props := map[string]value.Value{
		"name":   value.String("alice"),
		"age":    value.Int(30),
		"score":  value.Float(2.5),
		"active": value.Bool(true),
		"joined": value.DateTime(now),
		"tags":   value.List([]value.Value{value.String("a"), value.String("b")}),
		"meta":   value.Map(map[string]value.Value{"k": value.Int(1)}),
		"blob":   value.Blob([]byte{1, 2, 3}),
		"empty":  value.Null(),
	}

	data, err := encodeProperties(props)
	require.NoError(t, err)

	decoded, err := decodeProperties(data)
	require.NoError(t, err)

	require.Len(t, decoded, len(props))
	for k, v := range props {
		assert.Truef(t, v.Equal(decoded[k]), "property %q round-trip mismatch: %v != %v", k, v, decoded[k])
	}
}

func TestDecodePropertiesEmpty(t *testing.T) {
	decoded, err := decodeProperties(nil)
	require.NoError(t, err)
	assert.NotNil(t, decoded)
	assert.Empty(t, decoded)
}

func TestEncodeValueRejectsVertexKind(t *testing.T) {
	v := value.VertexValue(value.NewVertex(value.String("a"), 0))
	_, err := encodeValue(v)
	assert.Error(t, err)
}

func TestVIDRoundTrip(t *testing.T) {
	kind, text, err := encodeVID(value.String("alice"))
	require.NoError(t, err)
	got, err := decodeVID(kind, text)
	require.NoError(t, err)
	assert.True(t, got.Equal(value.String("alice")))

	kind, text, err = encodeVID(value.Int(42))
	require.NoError(t, err)
	got, err = decodeVID(kind, text)
	require.NoError(t, err)
	assert.True(t, got.Equal(value.Int(42)))
}
