package imaging

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// LogMagnitudeSpectrum returns log(|F|+1) of the 2-D discrete Fourier
// transform of a grayscale plane, shifted so the zero frequency sits at the
// centre. The result is row-major with the same dimensions as the input.
func LogMagnitudeSpectrum(gray []uint8, w, h int) []float64 {
	n := w * h
	if n == 0 {
		return nil
	}

	data := make([]complex128, n)
	for i, v := range gray[:n] {
		data[i] = complex(float64(v), 0)
	}

	rowFFT := fourier.NewCmplxFFT(w)
	row := make([]complex128, w)
	for y := 0; y < h; y++ {
		rowFFT.Coefficients(row, data[y*w:(y+1)*w])
		copy(data[y*w:(y+1)*w], row)
	}

	colFFT := fourier.NewCmplxFFT(h)
	col := make([]complex128, h)
	colOut := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = data[y*w+x]
		}
		colFFT.Coefficients(colOut, col)
		for y := 0; y < h; y++ {
			data[y*w+x] = colOut[y]
		}
	}

	out := make([]float64, n)
	for y := 0; y < h; y++ {
		sy := (y + h - h/2) % h
		for x := 0; x < w; x++ {
			sx := (x + w - w/2) % w
			out[y*w+x] = math.Log(cmplx.Abs(data[sy*w+sx]) + 1)
		}
	}
	return out
}
