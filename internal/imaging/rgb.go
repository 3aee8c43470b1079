package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // decoder registration
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp" // decoder registration
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrEmpty is returned for images with zero width or height.
	ErrEmpty = errors.New("image has zero area")

	// ErrMalformed is returned when a pixel buffer does not hold exactly
	// width*height RGB triples or cannot be decoded.
	ErrMalformed = errors.New("malformed pixel buffer")

	// ErrTooLarge is returned when an encoded image declares more pixels
	// than the decoder is allowed to allocate.
	ErrTooLarge = errors.New("image exceeds pixel limit")
)

// DefaultMaxPixels bounds decoded images at 4096x4096.
const DefaultMaxPixels = 4096 * 4096

// RGB is an 8-bit, three-channel image stored row-major as R,G,B triples.
// Analysis code treats it as read-only.
type RGB struct {
	Pix    []uint8
	Width  int
	Height int
}

// NewRGB allocates a black image of the given size.
func NewRGB(width, height int) *RGB {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &RGB{
		Pix:    make([]uint8, width*height*3),
		Width:  width,
		Height: height,
	}
}

// FromPixels wraps an existing interleaved RGB buffer after validating its size.
func FromPixels(width, height int, pix []uint8) (*RGB, error) {
	m := &RGB{Pix: pix, Width: width, Height: height}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate reports whether the buffer describes a usable image.
func (m *RGB) Validate() error {
	if m == nil || m.Width < 0 || m.Height < 0 {
		return ErrMalformed
	}
	if m.Width == 0 || m.Height == 0 {
		return ErrEmpty
	}
	if len(m.Pix) != m.Width*m.Height*3 {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrMalformed, len(m.Pix), m.Width*m.Height*3)
	}
	return nil
}

// Area returns the number of pixels.
func (m *RGB) Area() int { return m.Width * m.Height }

// At returns the channel values of pixel (x, y).
func (m *RGB) At(x, y int) (r, g, b uint8) {
	i := (y*m.Width + x) * 3
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// Set writes the channel values of pixel (x, y).
func (m *RGB) Set(x, y int, r, g, b uint8) {
	i := (y*m.Width + x) * 3
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
}

// Fill paints the rectangle [x0,x1) x [y0,y1) with a single colour.
func (m *RGB) Fill(x0, y0, x1, y1 int, r, g, b uint8) {
	for y := max(y0, 0); y < min(y1, m.Height); y++ {
		for x := max(x0, 0); x < min(x1, m.Width); x++ {
			m.Set(x, y, r, g, b)
		}
	}
}

// Plane copies one channel (0=R, 1=G, 2=B) into a new slice.
func (m *RGB) Plane(c int) []uint8 {
	out := make([]uint8, m.Area())
	for i := range out {
		out[i] = m.Pix[i*3+c]
	}
	return out
}

// FromImage converts any image.Image into an RGB buffer. Alpha is dropped
// after un-premultiplying, so fully opaque images keep their exact values.
func FromImage(img image.Image) (*RGB, error) {
	if img == nil {
		return nil, ErrMalformed
	}
	b := img.Bounds()
	m := NewRGB(b.Dx(), b.Dy())
	if m.Area() == 0 {
		return nil, ErrEmpty
	}

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < m.Height; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < m.Width; x++ {
				m.Set(x, y, row[x*4], row[x*4+1], row[x*4+2])
			}
		}
	default:
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				m.Set(x, y, c.R, c.G, c.B)
			}
		}
	}
	return m, nil
}

// ToNRGBA returns an opaque image.NRGBA copy, suitable for encoding.
func (m *RGB) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r, g, b := m.At(x, y)
			i := out.PixOffset(x, y)
			out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = r, g, b, 0xff
		}
	}
	return out
}

// Decode reads an encoded image (JPEG, PNG, GIF, BMP, TIFF or WebP) and
// returns its RGB pixels together with the detected format name.
func Decode(r io.Reader) (*RGB, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode image: %v", ErrMalformed, err)
	}
	m, err := FromImage(img)
	if err != nil {
		return nil, format, err
	}
	return m, format, nil
}

// DecodeBytes is DecodeBytesLimit with DefaultMaxPixels.
func DecodeBytes(data []byte) (*RGB, string, error) {
	return DecodeBytesLimit(data, DefaultMaxPixels)
}

// DecodeBytesLimit decodes an in-memory image after checking the header
// dimensions against maxPixels. A maxPixels of zero or less disables the check.
func DecodeBytesLimit(data []byte, maxPixels int) (*RGB, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty buffer", ErrMalformed)
	}
	if maxPixels > 0 {
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: decode image header: %v", ErrMalformed, err)
		}
		if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
			return nil, format, fmt.Errorf("%w: %dx%d is over %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
		}
	}
	return Decode(bytes.NewReader(data))
}
