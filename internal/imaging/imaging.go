// Copyright (C) 2025 GameLake Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package imaging holds the raster operations of the formatted and
// trusted zones: decoding (which doubles as the corruption gate), channel
// normalization, histogram equalization, and aspect-preserving padding.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	// Registered decoders; decoding is the corruption check, so every
	// format the CDN can serve must be decodable here.
	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Decode parses image bytes in any registered format. Truncated or invalid
// bytes fail here, which is what keeps corrupt files out of the trusted
// tier.
func Decode(body []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodeJPEG serializes img in the canonical raster format. Metadata does
// not survive re-encoding, which is intended.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ToRGB drops any alpha channel and expands grayscale so every image has
// exactly three color channels.
func ToRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// Equalize applies per-channel histogram equalization to standardize
// contrast. A channel whose histogram is flat (one populated bin, or too
// few pixels to build a step) is left unchanged.
func Equalize(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	copy(out.Pix, img.Pix)

	for ch := 0; ch < 3; ch++ {
		var histo [256]int
		for i := ch; i < len(out.Pix); i += 4 {
			histo[out.Pix[i]]++
		}
		lut := equalizeLUT(histo)
		for i := ch; i < len(out.Pix); i += 4 {
			out.Pix[i] = lut[out.Pix[i]]
		}
	}
	return out
}

// equalizeLUT builds the remapping table for one channel histogram.
func equalizeLUT(histo [256]int) [256]uint8 {
	var lut [256]uint8

	populated := 0
	total := 0
	last := 0
	for _, count := range histo {
		if count > 0 {
			populated++
			last = count
		}
		total += count
	}

	step := (total - last) / 255
	if populated <= 1 || step == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	n := step / 2
	for i := range lut {
		v := n / step
		if v > 255 {
			v = 255
		}
		lut[i] = uint8(v)
		n += histo[i]
	}
	return lut
}

// Pad scales img to fit within a size x size square, preserving aspect
// ratio, and centers it on a black canvas. Nothing is cropped or
// stretched.
func Pad(img image.Image, size int) *image.RGBA {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()

	var scaledW, scaledH int
	if srcW >= srcH {
		scaledW = size
		scaledH = srcH * size / srcW
	} else {
		scaledH = size
		scaledW = srcW * size / srcH
	}
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledH < 1 {
		scaledH = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	x0 := (size - scaledW) / 2
	y0 := (size - scaledH) / 2
	dst := image.Rect(x0, y0, x0+scaledW, y0+scaledH)
	xdraw.CatmullRom.Scale(out, dst, img, b, xdraw.Src, nil)
	return out
}

// Normalize runs the full trusted-zone image treatment: three channels,
// equalized contrast, padded square resolution.
func Normalize(img image.Image, size int) *image.RGBA {
	return Pad(Equalize(ToRGB(img)), size)
}
