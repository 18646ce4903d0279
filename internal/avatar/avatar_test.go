package avatar

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"two words", "Ada Lovelace", "AL"},
		{"single word", "plato", "P"},
		{"three words capped at two", "John Ronald Reuel", "JR"},
		{"empty", "", "?"},
		{"symbols only", "!!!", "?"},
		{"mixed symbol word", "Ada ***", "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Initials(tt.in))
		})
	}
}

func TestRender(t *testing.T) {
	data, err := Render("Ada Lovelace")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestRenderDeterministic(t *testing.T) {
	a, err := Render("someone")
	require.NoError(t, err)
	b, err := Render("someone")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
