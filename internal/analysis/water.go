package analysis

import (
	"math"

	"github.com/couchcryptid/harbinger/internal/imaging"
	"gonum.org/v1/gonum/stat"
)

// WaterAuthenticity scores how natural a blue-dominant scene looks. hue is
// the image's 0-179 hue plane. Images with fewer than two rows or columns
// cannot be differentiated and score neutral.
func WaterAuthenticity(img *imaging.RGB, hue []uint8) float64 {
	w, h := img.Width, img.Height
	if w < 2 || h < 2 {
		return neutralScore
	}

	blue := imaging.Floats(img.Plane(2))

	var score float64
	if stat.PopStdDev(blue, nil) > 20 {
		score += 30
	}

	gx, gy := gradients(blue, w, h)
	gradVariance := stat.PopVariance(gx, nil) + stat.PopVariance(gy, nil)
	score += math.Min(gradVariance/10, 40)

	hueConsistency := 100 - imaging.StdDev(hue)
	score += math.Min(hueConsistency/2, 30)

	return clamp(score, 0, 100)
}

// gradients returns first differences along x and y: central in the
// interior and one-sided at the borders. w and h must both be >= 2.
func gradients(p []float64, w, h int) (gx, gy []float64) {
	gx = make([]float64, w*h)
	gy = make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := p[y*w : (y+1)*w]
		gx[y*w] = row[1] - row[0]
		gx[y*w+w-1] = row[w-1] - row[w-2]
		for x := 1; x < w-1; x++ {
			gx[y*w+x] = (row[x+1] - row[x-1]) / 2
		}
	}
	for x := 0; x < w; x++ {
		gy[x] = p[w+x] - p[x]
		gy[(h-1)*w+x] = p[(h-1)*w+x] - p[(h-2)*w+x]
		for y := 1; y < h-1; y++ {
			gy[y*w+x] = (p[(y+1)*w+x] - p[(y-1)*w+x]) / 2
		}
	}
	return gx, gy
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
