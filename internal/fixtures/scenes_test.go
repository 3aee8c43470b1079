package fixtures

import (
	"testing"

	"github.com/couchcryptid/harbinger/internal/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePNG_RoundTripsPixels(t *testing.T) {
	for _, name := range SceneNames() {
		t.Run(name, func(t *testing.T) {
			m, err := Scene(name, 24, 16)
			require.NoError(t, err)

			data, err := EncodePNG(m)
			require.NoError(t, err)

			got, format, err := imaging.DecodeBytes(data)
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, m.Pix, got.Pix)
		})
	}
}

func TestScene_Unknown(t *testing.T) {
	_, err := Scene("volcano", 8, 8)
	assert.ErrorContains(t, err, "volcano")
}

func TestNoise_Deterministic(t *testing.T) {
	assert.Equal(t, Noise(8, 8, 7).Pix, Noise(8, 8, 7).Pix)
	assert.NotEqual(t, Noise(8, 8, 7).Pix, Noise(8, 8, 8).Pix)
}
