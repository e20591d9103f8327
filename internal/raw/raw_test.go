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

package raw

import "testing"

func TestColorAtRGGBCanonical(t *testing.T) {
	cases := []struct {
		x, y int
		want Color
	}{
		{0, 0, Red},
		{1, 0, Green1},
		{0, 1, Green2},
		{1, 1, Blue},
	}
	for _, c := range cases {
		if got := ColorAt(RGGBFilters, c.x, c.y); got != c.want {
			t.Errorf("ColorAt(RGGB,%d,%d)=%s, want %s", c.x, c.y, got, c.want)
		}
	}
}

func TestColorAtTiles2x2(t *testing.T) {
	// The 2x2 Bayer tile must repeat exactly every 2 pixels in both axes.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got := ColorAt(RGGBFilters, x, y)
			want := ColorAt(RGGBFilters, x%2, y%2)
			if got != want {
				t.Errorf("ColorAt(%d,%d)=%s, not periodic with (%d,%d)=%s", x, y, got, x%2, y%2, want)
			}
		}
	}
}

func TestColorStringAllKnown(t *testing.T) {
	for c := Red; c <= Green2; c++ {
		if s := c.String(); s == "?" {
			t.Errorf("Color(%d).String() returned the unknown marker", int(c))
		}
	}
}
