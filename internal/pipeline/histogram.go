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

// Histogram computes a per-channel 256-bin histogram of a rendered
// image, for a UI panel showing the tonal distribution of the
// current render. Uses a simple fixed-size binning approach, specialized
// to the fixed 8-bit output range.
func (img *RGBImage8) Histogram() (r, g, b [256]int) {
	for i := 0; i+2 < len(img.Pix); i += 3 {
		r[img.Pix[i+0]]++
		g[img.Pix[i+1]]++
		b[img.Pix[i+2]]++
	}
	return r, g, b
}
