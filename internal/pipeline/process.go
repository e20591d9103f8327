// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pipeline

import (
	"math"

	"github.com/valyala/fastrand"
	"gonum.org/v1/gonum/mat"
)

// RGBImage8 is the final output, handed to the external renderer:
// width x height, 3 interleaved bytes per pixel, top-left origin, no
// padding.
type RGBImage8 struct {
	Width, Height int
	Pix           []byte
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// whiteBalanceGains normalizes wb_raw by its max channel, so the
// brightest channel keeps unit gain and the others are scaled down --
// this avoids clipping from gains greater than one.
func whiteBalanceGains(wbRaw [3]float64) [3]float32 {
	max := wbRaw[0]
	if wbRaw[1] > max {
		max = wbRaw[1]
	}
	if wbRaw[2] > max {
		max = wbRaw[2]
	}
	return [3]float32{
		float32(wbRaw[0] / max),
		float32(wbRaw[1] / max),
		float32(wbRaw[2] / max),
	}
}

// whiteBalance multiplies channel c of every pixel by gains[c].
func whiteBalance(pix []float32, width, height int, gains [3]float32) {
	parallelRows(height, func(y0, y1 int) {
		for i := y0 * width * 3; i < y1*width*3; i += 3 {
			pix[i+0] *= gains[0]
			pix[i+1] *= gains[1]
			pix[i+2] *= gains[2]
		}
	})
}

// applyExposure multiplies every channel by a scalar gain.
// Values may exceed 1.0 after this stage; they are clamped later during gamma correction.
func applyExposure(pix []float32, width, height int, exposure float32) {
	parallelRows(height, func(y0, y1 int) {
		for i := y0 * width * 3; i < y1*width*3; i++ {
			pix[i] *= exposure
		}
	})
}

// Tone mapping would sit here, between exposure and the color matrix,
// in a future extension. It is deliberately not implemented: linear
// scene-referred values pass straight through to color conversion.

// applyColorMatrix computes rgb' = rgb_cam . rgb, per pixel, no
// clamping. Each row band is gathered into a channel-major gonum
// mat.Dense, multiplied by the 3x3 camera matrix, and scattered back
// into the interleaved buffer.
func applyColorMatrix(pix []float32, width, height int, m [3][3]float64) {
	a := mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})

	parallelRows(height, func(y0, y1 int) {
		n := (y1 - y0) * width
		if n == 0 {
			return
		}
		x := mat.NewDense(3, n, make([]float64, 3*n))
		base := y0 * width * 3
		for p := 0; p < n; p++ {
			x.Set(0, p, float64(pix[base+p*3+0]))
			x.Set(1, p, float64(pix[base+p*3+1]))
			x.Set(2, p, float64(pix[base+p*3+2]))
		}

		var out mat.Dense
		out.Mul(a, x)

		for p := 0; p < n; p++ {
			pix[base+p*3+0] = float32(out.At(0, p))
			pix[base+p*3+1] = float32(out.At(1, p))
			pix[base+p*3+2] = float32(out.At(2, p))
		}
	})
}

// applyGamma clamps to [0,1] then raises to 1/2.2, an
// approximation of the sRGB OETF.
func applyGamma(pix []float32, width, height int) {
	const invGamma = 1.0 / 2.2
	parallelRows(height, func(y0, y1 int) {
		for i := y0 * width * 3; i < y1*width*3; i++ {
			pix[i] = float32(math.Pow(float64(clamp01(pix[i])), invGamma))
		}
	})
}

// applyContrast applies an affine stretch about midpoint 0.5, clamped.
func applyContrast(pix []float32, width, height int, contrast float32) {
	parallelRows(height, func(y0, y1 int) {
		for i := y0 * width * 3; i < y1*width*3; i++ {
			pix[i] = clamp01((pix[i]-0.5)*contrast + 0.5)
		}
	})
}

// applySaturation scales chromatic distance from per-pixel
// Rec.709 luminance (computed in gamma space).
func applySaturation(pix []float32, width, height int, saturation float32) {
	parallelRows(height, func(y0, y1 int) {
		for i := y0 * width * 3; i < y1*width*3; i += 3 {
			r, g, b := pix[i], pix[i+1], pix[i+2]
			y := 0.2126*r + 0.7152*g + 0.0722*b
			pix[i+0] = clamp01(y + saturation*(r-y))
			pix[i+1] = clamp01(y + saturation*(g-y))
			pix[i+2] = clamp01(y + saturation*(b-y))
		}
	})
}

// ditherMatrix is a 4x4 ordered (Bayer) dither matrix with entries
// 0..15; quantize scales them to [-0.5,0.5) in units of a quantization
// step when Dither is enabled, to break up banding in smooth gradients.
var ditherMatrix = [4][4]float32{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// quantize rounds to [0,255] and packs as interleaved bytes.
// When dither is true, adds a sub-LSB dither before rounding, blending
// the fixed ordered Bayer matrix with a small perturbation from a
// fastrand.RNG. The RNG is reseeded at the start of every row with a
// fixed nonzero value derived from the row index (a zero-state RNG
// would seed itself from the clock), so the jitter does not depend on
// the row-band split or on earlier calls: repeated Process invocations
// with identical Parameters stay byte-identical.
func quantize(pix []float32, width, height int, dither bool) []byte {
	out := make([]byte, width*height*3)

	parallelRows(height, func(y0, y1 int) {
		rng := fastrand.RNG{}
		for y := y0; y < y1; y++ {
			rng.Seed(uint32(y)*2654435761 | 1)
			for x := 0; x < width; x++ {
				base := (y*width + x) * 3
				var bias float32
				if dither {
					ordered := ditherMatrix[y&3][x&3]/16.0 - 0.5
					jitter := float32(rng.Uint32n(16))/16.0 - 0.5
					bias = (0.75*ordered + 0.25*jitter) / 255.0
				}
				for c := 0; c < 3; c++ {
					v := pix[base+c] + bias
					b := int32(math.Round(float64(v) * 255))
					if b < 0 {
						b = 0
					} else if b > 255 {
						b = 255
					}
					out[base+c] = byte(b)
				}
			}
		}
	})
	return out
}

// Process runs the parameter-dependent tail of the pipeline against the
// handle's cached LinearRGB and returns
// a freshly allocated RGBImage8. Deterministic and pure given
// (handle's cache, params). Fails with NotPreprocessed if handle is nil
// or carries no cache (Preprocess failed or was never run), or
// OutOfMemory if the output buffer cannot be allocated.
func Process(h *Handle, p Parameters) (*RGBImage8, error) {
	if h == nil || h.linearRGB == nil {
		return nil, newError(NotPreprocessed, "process called without a successful preprocess")
	}

	width, height := h.linearRGB.Width, h.linearRGB.Height
	outBytes := int64(width) * int64(height) * 3
	if err := checkMemory(outBytes, "output image"); err != nil {
		return nil, err
	}

	pix := make([]float32, len(h.linearRGB.Pix))
	copy(pix, h.linearRGB.Pix)

	gains := whiteBalanceGains(h.raw.WBRaw)
	whiteBalance(pix, width, height, gains)
	applyExposure(pix, width, height, float32(p.Exposure))
	applyColorMatrix(pix, width, height, h.raw.RGBCam)
	applyGamma(pix, width, height)
	applyContrast(pix, width, height, float32(p.Contrast))
	applySaturation(pix, width, height, float32(p.Saturation))

	return &RGBImage8{
		Width:  width,
		Height: height,
		Pix:    quantize(pix, width, height, p.Dither),
	}, nil
}
