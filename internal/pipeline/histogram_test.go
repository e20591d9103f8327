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

import "testing"

func TestHistogramCountsEveryPixel(t *testing.T) {
	img := &RGBImage8{
		Width: 2, Height: 1,
		Pix: []byte{10, 20, 30, 10, 40, 30},
	}
	r, g, b := img.Histogram()
	if r[10] != 2 {
		t.Errorf("r[10]=%d, want 2", r[10])
	}
	if g[20] != 1 || g[40] != 1 {
		t.Errorf("g[20]=%d g[40]=%d, want 1 and 1", g[20], g[40])
	}
	if b[30] != 2 {
		t.Errorf("b[30]=%d, want 2", b[30])
	}

	sum := 0
	for _, v := range r {
		sum += v
	}
	if sum != 2 {
		t.Errorf("histogram total=%d, want 2 (one per pixel)", sum)
	}
}
