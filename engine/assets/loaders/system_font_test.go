package loaders

import (
	"testing"

	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestSystemFontParse(t *testing.T) {
	loader := &SystemFontLoader{}
	data, err := loader.Parse("goregular", goregular.TTF)
	require.NoError(t, err)

	assert.Equal(t, metadata.FONT_TYPE_SYSTEM, data.FontType)
	assert.Equal(t, uint32(DefaultSystemFontSize), data.Size)
	assert.Greater(t, data.LineHeight, int32(0))
	assert.Greater(t, data.LineHeight, data.Baseline)
	require.NotNil(t, data.System)

	_, ok := data.System.GlyphAdvance('A')
	assert.True(t, ok)
}

func TestSystemFontParseRejectsGarbage(t *testing.T) {
	loader := &SystemFontLoader{Size: 20}
	_, err := loader.Parse("garbage", []byte("definitely not a font"))
	assert.ErrorIs(t, err, core.ErrInvalidAsset)
}
