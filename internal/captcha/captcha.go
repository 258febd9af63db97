// Package captcha renders 4-character image challenges. Only the text answer
// takes part in verification; the rendering just has to be awkward enough for
// OCR while staying readable.
package captcha

import (
	"bytes"
	"crypto/rand"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math/big"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Ambiguous glyphs (0/o, 1/l, 9/g) are left out.
const charset = "2345678abcdefhjkmnprstuvwxyz"

const (
	// Length is the fixed challenge size; submissions of any other length can
	// be rejected before touching the store.
	Length = 4

	imgWidth  = 120
	imgHeight = 40
	noiseDots = 90
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns the challenge answer and its PNG rendering.
func (g *Generator) Generate() (string, []byte, error) {
	text, err := randomText(Length)
	if err != nil {
		return "", nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, imgWidth, imgHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{245, 245, 245, 255}}, image.Point{}, draw.Src)

	if err := speckle(img); err != nil {
		return "", nil, err
	}

	face := basicfont.Face7x13
	step := imgWidth / (Length + 1)
	for i, r := range text {
		dx, err := randomInt(10)
		if err != nil {
			return "", nil, err
		}
		dy, err := randomInt(14)
		if err != nil {
			return "", nil, err
		}
		shade, err := randomInt(140)
		if err != nil {
			return "", nil, err
		}
		drawer := font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{color.RGBA{uint8(shade), uint8(shade / 2), uint8(120 + shade%100), 255}},
			Face: face,
			Dot: fixed.P(
				step/2+i*step+dx-5,
				14+dy,
			),
		}
		drawer.DrawString(string(r))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", nil, err
	}
	return text, buf.Bytes(), nil
}

func speckle(img *image.RGBA) error {
	for i := 0; i < noiseDots; i++ {
		x, err := randomInt(imgWidth)
		if err != nil {
			return err
		}
		y, err := randomInt(imgHeight)
		if err != nil {
			return err
		}
		shade, err := randomInt(200)
		if err != nil {
			return err
		}
		img.Set(x, y, color.RGBA{uint8(shade), uint8(shade), uint8(shade), 255})
	}
	return nil
}

func randomText(n int) (string, error) {
	out := make([]byte, n)
	for i := range out {
		idx, err := randomInt(len(charset))
		if err != nil {
			return "", err
		}
		out[i] = charset[idx]
	}
	return string(out), nil
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
