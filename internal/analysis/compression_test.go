package analysis

import (
	"testing"

	"github.com/couchcryptid/harbinger/internal/imaging"
	"github.com/stretchr/testify/assert"
)

func grayPlane(w, h int, fn func(x, y int) uint8) []uint8 {
	p := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p[y*w+x] = fn(x, y)
		}
	}
	return p
}

func TestCompressionScore(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		fn   func(x, y int) uint8
		want float64
	}{
		{
			// Only the top-left block is evaluated (no boundary check), out
			// of four whole blocks.
			name: "two constant blocks on 16x16",
			w:    16, h: 16,
			fn: func(x, _ int) uint8 {
				if x < 8 {
					return 40
				}
				return 200
			},
			want: 50,
		},
		{
			// Nine blocks, one flat interior boundary at (8,8).
			name: "uniform 24x24",
			w:    24, h: 24,
			fn:   func(_, _ int) uint8 { return 128 },
			want: (100 - 200.0/9) / 2,
		},
		{
			// Four textured blocks, the (8,8) boundary differs by 255.
			name: "checkerboard 24x24",
			w:    24, h: 24,
			fn: func(x, y int) uint8 {
				if (x+y)%2 == 0 {
					return 255
				}
				return 0
			},
			want: (400.0/9 + 100) / 2,
		},
		{
			name: "single block has nothing to evaluate",
			w:    8, h: 8,
			fn:   func(_, _ int) uint8 { return 9 },
			want: 50,
		},
		{
			name: "smaller than a block is neutral",
			w:    7, h: 20,
			fn:   func(_, _ int) uint8 { return 9 },
			want: 50,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompressionScore(grayPlane(tt.w, tt.h, tt.fn), tt.w, tt.h)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestWaterAuthenticity(t *testing.T) {
	t.Run("single row is neutral", func(t *testing.T) {
		img := uniformImage(10, 1, 10, 20, 200)
		hue, _, _ := imaging.HSV(img)
		assert.Equal(t, neutralScore, WaterAuthenticity(img, hue))
	})

	t.Run("uniform water earns only hue consistency", func(t *testing.T) {
		img := uniformImage(4, 4, 10, 20, 200)
		hue, _, _ := imaging.HSV(img)
		assert.InDelta(t, 30, WaterAuthenticity(img, hue), 1e-9)
	})

	t.Run("varied water earns reflection and texture", func(t *testing.T) {
		img := imaging.NewRGB(8, 8)
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				if (x+y)%2 == 0 {
					img.Set(x, y, 0, 0, 250)
				} else {
					img.Set(x, y, 0, 0, 150)
				}
			}
		}
		hue, _, _ := imaging.HSV(img)
		// Hue is a constant 120, so consistency contributes the full 30.
		assert.InDelta(t, 100, WaterAuthenticity(img, hue), 1e-9)
	})
}

func TestGradients(t *testing.T) {
	p := []float64{
		0, 10, 30,
		4, 14, 34,
	}
	gx, gy := gradients(p, 3, 2)

	assert.Equal(t, []float64{10, 15, 20, 10, 15, 20}, gx)
	assert.Equal(t, []float64{4, 4, 4, 4, 4, 4}, gy)
}

func TestBoundaryDiff_FullStepIsNotWrapped(t *testing.T) {
	// Rows 0 and 2 black, row 1 white: both row pairs differ by 255.
	gray := grayPlane(blockSize, 3, func(_, y int) uint8 {
		if y == 1 {
			return 255
		}
		return 0
	})
	assert.Equal(t, 255.0, boundaryDiff(gray, blockSize, 1, 0))
}
