// Package fixtures generates deterministic synthetic scene images for tests,
// local demos and mock report generation.
package fixtures

import (
	"bytes"
	"fmt"
	"image/png"
	"math/rand/v2"
	"slices"

	"github.com/couchcryptid/harbinger/internal/imaging"
)

// Uniform returns a w x h image filled with one colour.
func Uniform(w, h int, r, g, b uint8) *imaging.RGB {
	m := imaging.NewRGB(w, h)
	m.Fill(0, 0, w, h, r, g, b)
	return m
}

// Noise returns a w x h image of seeded uniform random pixels.
func Noise(w, h int, seed uint64) *imaging.RGB {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	m := imaging.NewRGB(w, h)
	for i := range m.Pix {
		m.Pix[i] = uint8(rng.IntN(256))
	}
	return m
}

// Water is a flat blue surface.
func Water(w, h int) *imaging.RGB { return Uniform(w, h, 20, 40, 220) }

// Fire is a dark scene with orange flame bands.
func Fire(w, h int) *imaging.RGB {
	m := Uniform(w, h, 60, 20, 10)
	for y := 0; y < h; y += 4 {
		m.Fill(0, y, w, min(y+2, h), 240, 120, 20)
	}
	return m
}

// Landslide is brown earth with a grey rubble diagonal.
func Landslide(w, h int) *imaging.RGB {
	m := Uniform(w, h, 120, 80, 40)
	for y := 0; y < h; y++ {
		x := y * w / max(h, 1)
		m.Fill(max(x-2, 0), y, min(x+3, w), y+1, 110, 110, 110)
	}
	return m
}

// Collapse is a grey urban scene with a hard-edged block grid.
func Collapse(w, h int) *imaging.RGB {
	m := Uniform(w, h, 150, 150, 150)
	for y := 0; y < h; y += 8 {
		for x := (y / 8 % 2) * 8; x < w; x += 16 {
			m.Fill(x, y, min(x+8, w), min(y+8, h), 70, 70, 75)
		}
	}
	return m
}

var scenes = map[string]func(w, h int) *imaging.RGB{
	"water":     Water,
	"fire":      Fire,
	"landslide": Landslide,
	"collapse":  Collapse,
	"noise":     func(w, h int) *imaging.RGB { return Noise(w, h, 1) },
}

// Scene renders a named scene.
func Scene(name string, w, h int) (*imaging.RGB, error) {
	fn, ok := scenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q", name)
	}
	return fn(w, h), nil
}

// SceneNames lists the available scenes in sorted order.
func SceneNames() []string {
	names := make([]string, 0, len(scenes))
	for name := range scenes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// EncodePNG encodes m losslessly so decoding reproduces its exact pixels.
func EncodePNG(m *imaging.RGB) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.ToNRGBA()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// MustPNG is EncodePNG for tests and static fixtures; it panics on error.
func MustPNG(m *imaging.RGB) []byte {
	data, err := EncodePNG(m)
	if err != nil {
		panic(err)
	}
	return data
}
