package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPAMarshal(t *testing.T) {
	raw, err := json.Marshal(KnownGPA(8.4))
	require.NoError(t, err)
	assert.Equal(t, "8.4", string(raw))

	raw, err = json.Marshal(GPA{})
	require.NoError(t, err)
	assert.Equal(t, `"--"`, string(raw))

	raw, err = json.Marshal(KnownGPA(0))
	require.NoError(t, err)
	assert.Equal(t, "0", string(raw), "a present zero is a number, not the sentinel")
}

func TestGPAUnmarshalRoundTrip(t *testing.T) {
	var g GPA
	require.NoError(t, json.Unmarshal([]byte(`"--"`), &g))
	assert.False(t, g.Valid)

	require.NoError(t, json.Unmarshal([]byte("7.25"), &g))
	assert.True(t, g.Valid)
	assert.Equal(t, 7.25, g.Value)
}

func TestGPAOf(t *testing.T) {
	assert.False(t, GPAOf(nil).Valid)
	v := 6.5
	assert.Equal(t, KnownGPA(6.5), GPAOf(&v))
}
