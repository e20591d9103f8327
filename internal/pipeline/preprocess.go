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

	"github.com/philipzimmermann/BrightRoom/internal/raw"
)

// LinearRGB is the parameter-independent cache boundary output: a
// demosaiced, normalized, but otherwise undeveloped floating-point RGB
// image. Values are in [0,1] at the point this is produced;
// later stages (exposure) may push them above 1.
type LinearRGB struct {
	Width, Height int
	Pix           []float32 // interleaved, (y*Width+x)*3+c
}

// validate checks the RawInput invariants needed before preprocessing.
func validate(r *raw.Input) error {
	if r.Width <= 0 || r.Height <= 0 {
		return newError(InvalidInput, "non-positive dimensions %dx%d", r.Width, r.Height)
	}
	if r.Width*r.Height != len(r.Bayer) {
		return newError(InvalidInput, "width*height=%d does not match len(bayer)=%d", r.Width*r.Height, len(r.Bayer))
	}
	if r.WhiteLevel == 0 {
		return newError(InvalidInput, "white_level is zero")
	}
	for k, cb := range r.CBlack {
		if r.BlackLevel+cb > 65535 {
			return newError(InvalidInput, "black_level+cblack[%d]=%d exceeds 65535", k, r.BlackLevel+cb)
		}
	}
	for i, w := range r.WBRaw {
		if w <= 0 {
			return newError(InvalidInput, "wb_raw[%d]=%g is not positive", i, w)
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := r.RGBCam[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return newError(InvalidInput, "rgb_cam[%d][%d]=%g is not finite", i, j, v)
			}
		}
	}
	return nil
}

// blackLevelCorrectAndNormalize folds black-level subtraction and
// white-level normalization into one pass over the Bayer plane:
// subtract the per-channel black offset (clamping
// underflow to 0), then divide by the white level and clamp to [0,1].
// Parallelized across row bands since every sample is independent.
func blackLevelCorrectAndNormalize(r *raw.Input) []float32 {
	width, height := r.Width, r.Height
	out := make([]float32, width*height)
	whiteLevel := float32(r.WhiteLevel)

	parallelRows(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				idx := y*width + x
				col := raw.ColorAt(r.Filters, x, y)
				black := r.BlackLevel + r.CBlack[col]
				s := int(r.Bayer[idx]) - black
				if s < 0 {
					s = 0
				}
				n := float32(s) / whiteLevel
				if n < 0 {
					n = 0
				} else if n > 1 {
					n = 1
				}
				out[idx] = n
			}
		}
	})
	return out
}

// clampXY clamps a coordinate to [0,limit-1], implementing the
// edge-replicate boundary condition used by the demosaic.
func clampXY(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v >= limit {
		return limit - 1
	}
	return v
}

// demosaicBilinear reconstructs a 3-channel float image from
// the single-channel normalized Bayer plane using bilinear
// interpolation. Result is not clamped -- its inputs
// are already in [0,1], so outputs are too.
func demosaicBilinear(normalized []float32, width, height int, filters uint32) []float32 {
	out := make([]float32, width*height*3)

	at := func(x, y int) float32 {
		return normalized[clampXY(y, height)*width+clampXY(x, width)]
	}

	parallelRows(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				idx := (y*width + x) * 3
				switch raw.ColorAt(filters, x, y) {
				case raw.Red:
					r := at(x, y)
					g := (at(x, y-1) + at(x, y+1) + at(x-1, y) + at(x+1, y)) / 4
					b := (at(x-1, y-1) + at(x+1, y-1) + at(x-1, y+1) + at(x+1, y+1)) / 4
					out[idx], out[idx+1], out[idx+2] = r, g, b
				case raw.Blue:
					b := at(x, y)
					g := (at(x, y-1) + at(x, y+1) + at(x-1, y) + at(x+1, y)) / 4
					r := (at(x-1, y-1) + at(x+1, y-1) + at(x-1, y+1) + at(x+1, y+1)) / 4
					out[idx], out[idx+1], out[idx+2] = r, g, b
				default: // Green1 or Green2
					g := at(x, y)
					var r, b float32
					if raw.ColorAt(filters, x+1, y) == raw.Red {
						r = (at(x-1, y) + at(x+1, y)) / 2
						b = (at(x, y-1) + at(x, y+1)) / 2
					} else {
						r = (at(x, y-1) + at(x, y+1)) / 2
						b = (at(x-1, y) + at(x+1, y)) / 2
					}
					out[idx], out[idx+1], out[idx+2] = r, g, b
				}
			}
		}
	})
	return out
}

// Preprocess runs the parameter-independent head of the pipeline
// against raw and returns a Handle owning the cached LinearRGB buffer.
// Fails with InvalidInput for malformed
// RawInput, or OutOfMemory if the float cache cannot be allocated
// within the memory budget. Leaves no partial state cached on error.
func Preprocess(r *raw.Input) (*Handle, error) {
	if err := validate(r); err != nil {
		return nil, err
	}

	cacheBytes := int64(r.Width) * int64(r.Height) * 3 * 4
	if err := checkMemory(cacheBytes, "linear RGB cache"); err != nil {
		return nil, err
	}

	normalized := blackLevelCorrectAndNormalize(r)
	pix := demosaicBilinear(normalized, r.Width, r.Height, r.Filters)

	return &Handle{
		raw: r,
		linearRGB: &LinearRGB{
			Width:  r.Width,
			Height: r.Height,
			Pix:    pix,
		},
	}, nil
}
