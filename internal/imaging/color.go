package imaging

import "math"

// Fixed-point tables for the 8-bit RGB->HSV conversion. Hue uses the
// half-degree convention, so it lies in [0, 180).
const hsvShift = 12

var (
	satDiv [256]int
	hueDiv [256]int
)

func init() {
	for i := 1; i < 256; i++ {
		satDiv[i] = int(math.Round(float64(255<<hsvShift) / float64(i)))
		hueDiv[i] = int(math.Round(float64(180<<hsvShift) / (6 * float64(i))))
	}
}

// hsvPixel converts one pixel to 8-bit HSV.
func hsvPixel(r, g, b int) (h, s, v int) {
	v = max(r, g, b)
	vmin := min(r, g, b)
	diff := v - vmin

	s = (diff*satDiv[v] + 1<<(hsvShift-1)) >> hsvShift

	switch {
	case v == r:
		h = g - b
	case v == g:
		h = b - r + 2*diff
	default:
		h = r - g + 4*diff
	}
	h = (h*hueDiv[diff] + 1<<(hsvShift-1)) >> hsvShift
	if h < 0 {
		h += 180
	}
	return h, s, v
}

// HSV returns the hue, saturation and value planes of m. Hue is in
// [0, 180), saturation and value in [0, 255].
func HSV(m *RGB) (hue, sat, val []uint8) {
	n := m.Area()
	hue = make([]uint8, n)
	sat = make([]uint8, n)
	val = make([]uint8, n)
	for i := 0; i < n; i++ {
		h, s, v := hsvPixel(int(m.Pix[i*3]), int(m.Pix[i*3+1]), int(m.Pix[i*3+2]))
		hue[i], sat[i], val[i] = uint8(h), uint8(s), uint8(v)
	}
	return hue, sat, val
}

// Luma weights in 14-bit fixed point (0.299, 0.587, 0.114).
const (
	grayShift = 14
	grayR     = 4899
	grayG     = 9617
	grayB     = 1868
)

// Gray returns the 8-bit luma plane of m.
func Gray(m *RGB) []uint8 {
	n := m.Area()
	out := make([]uint8, n)
	for i := 0; i < n; i++ {
		r, g, b := int(m.Pix[i*3]), int(m.Pix[i*3+1]), int(m.Pix[i*3+2])
		out[i] = uint8((r*grayR + g*grayG + b*grayB + 1<<(grayShift-1)) >> grayShift)
	}
	return out
}

// D65 reference white.
const (
	whiteX = 0.950456
	whiteZ = 1.088754
)

// Lab returns CIE L*a*b* planes scaled into 8 bits: L*255/100, a+128, b+128.
func Lab(m *RGB) (l, a, b []uint8) {
	n := m.Area()
	l = make([]uint8, n)
	a = make([]uint8, n)
	b = make([]uint8, n)
	for i := 0; i < n; i++ {
		L, A, B := labPixel(m.Pix[i*3], m.Pix[i*3+1], m.Pix[i*3+2])
		l[i] = clampByte(L * 255 / 100)
		a[i] = clampByte(A + 128)
		b[i] = clampByte(B + 128)
	}
	return l, a, b
}

func labPixel(r8, g8, b8 uint8) (L, A, B float64) {
	r := srgbToLinear(float64(r8) / 255)
	g := srgbToLinear(float64(g8) / 255)
	bl := srgbToLinear(float64(b8) / 255)

	x := (0.412453*r + 0.357580*g + 0.180423*bl) / whiteX
	y := 0.212671*r + 0.715160*g + 0.072169*bl
	z := (0.019334*r + 0.119193*g + 0.950227*bl) / whiteZ

	fx, fy, fz := labF(x), labF(y), labF(z)
	if y > 0.008856 {
		L = 116*math.Cbrt(y) - 16
	} else {
		L = 903.3 * y
	}
	return L, 500 * (fx - fy), 200 * (fy - fz)
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func labF(t float64) float64 {
	if t > 0.008856 {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116.0
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
