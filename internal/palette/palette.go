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

// Package palette summarizes a rendered frame as a single representative
// color, for a UI swatch the original GUI never had. Not part of the
// development core -- purely a diagnostic the REST orchestrator exposes
// alongside the pixel data.
package palette

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/philipzimmermann/BrightRoom/internal/pipeline"
)

// named is a small table of reference colors to name the image's
// average hue against. Perceptual nearest-neighbor matching uses CIE
// Lab distance, as computed by go-colorful's DistanceLab.
var named = []struct {
	name string
	c    colorful.Color
}{
	{"black", colorful.Color{R: 0, G: 0, B: 0}},
	{"white", colorful.Color{R: 1, G: 1, B: 1}},
	{"gray", colorful.Color{R: 0.5, G: 0.5, B: 0.5}},
	{"red", colorful.Color{R: 0.8, G: 0.1, B: 0.1}},
	{"orange", colorful.Color{R: 0.9, G: 0.5, B: 0.1}},
	{"yellow", colorful.Color{R: 0.9, G: 0.9, B: 0.1}},
	{"green", colorful.Color{R: 0.1, G: 0.7, B: 0.2}},
	{"cyan", colorful.Color{R: 0.1, G: 0.7, B: 0.7}},
	{"blue", colorful.Color{R: 0.1, G: 0.2, B: 0.8}},
	{"purple", colorful.Color{R: 0.5, G: 0.1, B: 0.7}},
	{"pink", colorful.Color{R: 0.9, G: 0.5, B: 0.7}},
}

// Summary is a diagnostic description of a rendered frame.
type Summary struct {
	AverageHex  string `json:"averageHex"`
	NearestName string `json:"nearestName"`
}

// Summarize computes the mean sRGB color of img and names the closest
// reference color to it.
func Summarize(img *pipeline.RGBImage8) Summary {
	var sumR, sumG, sumB float64
	n := float64(img.Width * img.Height)
	for i := 0; i+2 < len(img.Pix); i += 3 {
		sumR += float64(img.Pix[i+0])
		sumG += float64(img.Pix[i+1])
		sumB += float64(img.Pix[i+2])
	}
	if n == 0 {
		n = 1
	}
	avg := colorful.Color{R: sumR / n / 255, G: sumG / n / 255, B: sumB / n / 255}

	best := named[0]
	bestDist := avg.DistanceLab(named[0].c)
	for _, cand := range named[1:] {
		d := avg.DistanceLab(cand.c)
		if d < bestDist {
			bestDist = d
			best = cand
		}
	}

	return Summary{
		AverageHex:  avg.Clamped().Hex(),
		NearestName: best.name,
	}
}
