package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderPreservesHeaderOrder(t *testing.T) {
	data := Dataset{
		Headers: []string{"Day", "9-10 AM", "10-11 AM"},
		Rows: []map[string]string{
			{"Day": "Mon", "9-10 AM": "Maths"},
		},
	}

	payload, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Day,9-10 AM,10-11 AM\nMon,Maths,\n", string(payload))
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}
