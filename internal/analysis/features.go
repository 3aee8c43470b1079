package analysis

import (
	"math"

	"github.com/couchcryptid/harbinger/internal/imaging"
	"gonum.org/v1/gonum/stat"
)

// Canny thresholds for the two extraction passes.
const (
	classifyCannyLow  = 30
	classifyCannyHigh = 100
	authCannyLow      = 30
	authCannyHigh     = 120
)

// defaultRatio is used for every channel when the image carries no intensity.
const defaultRatio = 0.33

// ClassificationFeatures feed the disaster rule table. Hue is on the
// half-degree 0-179 scale; saturation and value are 0-255.
type ClassificationFeatures struct {
	RedRatio        float64    `json:"red_ratio"`
	GreenRatio      float64    `json:"green_ratio"`
	BlueRatio       float64    `json:"blue_ratio"`
	AvgHue          float64    `json:"avg_hue"`
	AvgSaturation   float64    `json:"avg_saturation"`
	AvgValue        float64    `json:"avg_value"`
	EdgeDensity     float64    `json:"edge_density"`
	WaterSmoothness float64    `json:"water_smoothness"`
	ColorStd        [3]float64 `json:"color_std"`

	// Dark is set when the channel means sum to zero and the ratios hold
	// their defaults.
	Dark bool `json:"dark,omitempty"`
}

// MeanColorStd is the mean of the per-channel standard deviations.
func (f ClassificationFeatures) MeanColorStd() float64 {
	return (f.ColorStd[0] + f.ColorStd[1] + f.ColorStd[2]) / 3
}

// AuthenticityFeatures feed the additive authenticity scorer.
type AuthenticityFeatures struct {
	Variance          float64    `json:"variance"`
	StdDev            float64    `json:"std_dev"`
	TextureContrast   float64    `json:"texture_contrast"`
	EdgeDensity       float64    `json:"edge_density"`
	EdgeVariance      float64    `json:"edge_variance"`
	ColorVariance     [3]float64 `json:"color_variance"`
	SaturationMean    float64    `json:"saturation_mean"`
	SaturationStd     float64    `json:"saturation_std"`
	LabVariance       [3]float64 `json:"lab_variance"`
	LuminanceSpread   float64    `json:"luminance_spread"`
	FreqVariance      float64    `json:"freq_variance"`
	FreqPeakCount     int        `json:"freq_peak_count"`
	CompressionScore  float64    `json:"compression_score"`
	WaterAuthenticity float64    `json:"water_authenticity"`
}

// ExtractClassificationFeatures computes colour, HSV, edge and smoothness
// statistics used by the classifier. It never returns a partial result.
func ExtractClassificationFeatures(img *imaging.RGB) (f ClassificationFeatures, err error) {
	if err := validate(img); err != nil {
		return ClassificationFeatures{}, err
	}
	defer func() {
		if err != nil {
			f = ClassificationFeatures{}
		}
	}()
	defer recoverInto("classification", &err)

	var means [3]float64
	for c := 0; c < 3; c++ {
		plane := img.Plane(c)
		means[c], f.ColorStd[c] = stat.PopMeanStdDev(imaging.Floats(plane), nil)
	}
	f.RedRatio, f.GreenRatio, f.BlueRatio, f.Dark = colorRatios(means)

	hue, sat, val := imaging.HSV(img)
	f.AvgHue = imaging.Mean(hue)
	f.AvgSaturation = imaging.Mean(sat)
	f.AvgValue = imaging.Mean(val)

	gray := imaging.Gray(img)
	edges := imaging.Canny(gray, img.Width, img.Height, classifyCannyLow, classifyCannyHigh)
	f.EdgeDensity = float64(imaging.CountAbove(edges, 0)) / float64(img.Area())
	f.WaterSmoothness = imaging.GradientMagnitudeMean(gray, img.Width, img.Height)

	return f, nil
}

func colorRatios(means [3]float64) (r, g, b float64, dark bool) {
	total := means[0] + means[1] + means[2]
	if total <= 0 {
		return defaultRatio, defaultRatio, defaultRatio, true
	}
	return means[0] / total, means[1] / total, means[2] / total, false
}

// ExtractAuthenticityFeatures computes the texture, edge, colour, frequency
// and compression statistics used by the authenticity scorer.
func ExtractAuthenticityFeatures(img *imaging.RGB) (f AuthenticityFeatures, err error) {
	if err := validate(img); err != nil {
		return AuthenticityFeatures{}, err
	}
	defer func() {
		if err != nil {
			f = AuthenticityFeatures{}
		}
	}()
	defer recoverInto("authenticity", &err)

	w, h := img.Width, img.Height
	gray := imaging.Gray(img)

	f.Variance = imagingVariance(gray)
	f.StdDev = math.Sqrt(f.Variance)
	lo, hi := byteRange(gray)
	f.TextureContrast = float64(hi - lo)

	edges := imaging.Canny(gray, w, h, authCannyLow, authCannyHigh)
	f.EdgeDensity = float64(imaging.CountAbove(edges, 0)) / float64(img.Area())
	f.EdgeVariance = imagingVariance(edges)

	for c := 0; c < 3; c++ {
		f.ColorVariance[c] = imagingVariance(img.Plane(c))
	}

	hue, sat, _ := imaging.HSV(img)
	f.SaturationMean, f.SaturationStd = stat.PopMeanStdDev(imaging.Floats(sat), nil)

	l, a, b := imaging.Lab(img)
	f.LabVariance = [3]float64{imagingVariance(l), imagingVariance(a), imagingVariance(b)}
	f.LuminanceSpread = math.Sqrt(f.LabVariance[0])

	spectrum := imaging.LogMagnitudeSpectrum(gray, w, h)
	specMean, specStd := stat.PopMeanStdDev(spectrum, nil)
	f.FreqVariance = specStd * specStd
	threshold := specMean + 2*specStd
	for _, v := range spectrum {
		if v > threshold {
			f.FreqPeakCount++
		}
	}

	f.CompressionScore = CompressionScore(gray, w, h)

	f.WaterAuthenticity = neutralScore
	if imaging.Mean(img.Plane(2)) > imaging.Mean(img.Plane(0)) {
		f.WaterAuthenticity = WaterAuthenticity(img, hue)
	}

	return f, nil
}

func imagingVariance(p []uint8) float64 {
	_, v := imaging.MeanVar(p)
	return v
}

func byteRange(p []uint8) (lo, hi uint8) {
	lo = 255
	for _, v := range p {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}
