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

// Package raw describes the sensor-level handoff from an external RAW
// decoder (LibRaw or similar) into the development pipeline: the
// mosaiced Bayer plane plus calibration metadata. Decoding vendor RAW
// containers is out of scope; this package only defines the struct the
// decoder must fill and the CFA addressing function the pipeline needs
// to interpret it.
package raw

// Input is the borrowed handoff from the external RAW decoder. The
// pipeline treats it as read-only for the lifetime of a Preprocess call
// and holds a reference across subsequent Process calls; callers must
// not mutate or drop it while a Handle derived from it is in use.
type Input struct {
	Width, Height int // dimensions of the Bayer plane

	Bayer []uint16 // width*height samples, row-major, nonnegative

	Filters uint32 // 32-bit CFA descriptor, see ColorAt

	BlackLevel int        // global sensor black offset
	CBlack     [4]int     // additional per-Bayer-channel black offsets
	WhiteLevel int         // sensor saturation value

	WBRaw [3]float64 // as-shot camera multipliers for R, G, B

	RGBCam [3][3]float64 // camera-native RGB to linear sRGB
}

// Color is a CFA color index, one of the four two-bit codes packed into
// Filters.
type Color int

const (
	Red Color = iota
	Green1
	Blue
	Green2
)

func (c Color) String() string {
	switch c {
	case Red:
		return "R"
	case Green1:
		return "G1"
	case Blue:
		return "B"
	case Green2:
		return "G2"
	default:
		return "?"
	}
}

// ColorAt returns the CFA color index at Bayer-plane coordinate (x,y)
// for the given 32-bit pattern descriptor. Total and branch-free: every
// (filters,x,y) maps to a color, there is no error case.
//
// For a canonical RGGB filters value, ColorAt(f,0,0)==Red,
// ColorAt(f,1,0)==Green1, ColorAt(f,0,1)==Green2, ColorAt(f,1,1)==Blue.
func ColorAt(filters uint32, x, y int) Color {
	shift := (((y << 1 & 14) | (x & 1)) << 1)
	return Color((filters >> uint(shift)) & 3)
}

// RGGBFilters is the canonical Bayer descriptor for an RGGB CFA, encoded
// as 16 two-bit color codes in the LibRaw layout ColorAt decodes, with
// the green of the blue row coded as Green2.
const RGGBFilters uint32 = 0xB4B4B4B4
