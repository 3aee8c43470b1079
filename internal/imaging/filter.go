package imaging

import "math"

// reflect101 maps an out-of-range index back into [0, n) mirroring about
// the edge pixels without repeating them (gfedcb|abcdefgh|gfedcba).
func reflect101(p, n int) int {
	if n == 1 {
		return 0
	}
	for p < 0 || p >= n {
		if p < 0 {
			p = -p
		} else {
			p = 2*n - 2 - p
		}
	}
	return p
}

// replicate clamps an index into [0, n) (aaaaaa|abcdefgh|hhhhhhh).
func replicate(p, n int) int {
	if p < 0 {
		return 0
	}
	if p >= n {
		return n - 1
	}
	return p
}

// sobel3 computes the 3x3 Sobel derivatives at (x, y). border maps
// out-of-range coordinates back into the image.
func sobel3(gray []uint8, w, h, x, y int, border func(int, int) int) (dx, dy int) {
	xm, xp := border(x-1, w), border(x+1, w)
	ym, yp := border(y-1, h), border(y+1, h)

	p := func(xx, yy int) int { return int(gray[yy*w+xx]) }

	dx = (p(xp, ym) + 2*p(xp, y) + p(xp, yp)) - (p(xm, ym) + 2*p(xm, y) + p(xm, yp))
	dy = (p(xm, yp) + 2*p(x, yp) + p(xp, yp)) - (p(xm, ym) + 2*p(x, ym) + p(xp, ym))
	return dx, dy
}

// GradientMagnitudeMean returns the mean of sqrt(gx^2 + gy^2) over the
// image, using 3x3 Sobel kernels with a reflect-101 border.
func GradientMagnitudeMean(gray []uint8, w, h int) float64 {
	if w*h == 0 {
		return 0
	}
	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := sobel3(gray, w, h, x, y, reflect101)
			sum += math.Sqrt(float64(dx*dx + dy*dy))
		}
	}
	return sum / float64(w*h)
}

// Non-maximum suppression uses tan(22.5deg) in 15-bit fixed point.
const (
	cannyShift = 15
	tg22       = 13573
)

// Canny marks edges with 255 and everything else with 0. Gradients come from
// 3x3 Sobel kernels with a replicated border and are combined with the L1
// norm. Thresholds are floored to integers.
func Canny(gray []uint8, w, h int, low, high float64) []uint8 {
	n := w * h
	out := make([]uint8, n)
	if n == 0 {
		return out
	}
	lo, hi := int(math.Floor(low)), int(math.Floor(high))
	if lo > hi {
		lo, hi = hi, lo
	}

	dxs := make([]int, n)
	dys := make([]int, n)
	mag := make([]int, n)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := sobel3(gray, w, h, x, y, replicate)
			i := y*w + x
			dxs[i], dys[i] = dx, dy
			mag[i] = abs(dx) + abs(dy)
		}
	}

	at := func(x, y int) int {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	const (
		notEdge = iota
		candidate
		strong
	)
	state := make([]uint8, n)
	stack := make([]int, 0, n/8+1)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= lo {
				continue
			}
			xs, ys := dxs[i], dys[i]
			ax := abs(xs)
			ay := abs(ys) << cannyShift
			tg22x := ax * tg22

			var keep bool
			if ay < tg22x {
				keep = m > at(x-1, y) && m >= at(x+1, y)
			} else {
				tg67x := tg22x + ax<<(cannyShift+1)
				if ay > tg67x {
					keep = m > at(x, y-1) && m >= at(x, y+1)
				} else {
					s := 1
					if (xs ^ ys) < 0 {
						s = -1
					}
					keep = m > at(x-s, y-1) && m > at(x+s, y+1)
				}
			}
			if !keep {
				continue
			}
			if m > hi {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = candidate
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for ny := y - 1; ny <= y+1; ny++ {
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == candidate {
					state[j] = strong
					stack = append(stack, j)
				}
			}
		}
	}

	for i, s := range state {
		if s == strong {
			out[i] = 255
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
