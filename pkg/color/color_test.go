package color

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPaletteIndex_CaseInsensitive(t *testing.T) {
	a := paletteIndex("0xAbCdEf0000000000000000000000000000000001")
	b := paletteIndex("0xabcdef0000000000000000000000000000000001")
	assert.Equal(t, a, b)
	assert.Less(t, a, len(addressPalette))
}

func TestAddress_NoColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	assert.Equal(t, "0xAAA", Address("0xAAA"))
	assert.Equal(t, "", Address(""))
	assert.Equal(t, "done", Severity("success").Sprint("done"))
}
