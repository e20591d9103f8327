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

import "math"

// Parameters is an immutable snapshot of the interactively adjustable
// part of the pipeline. The zero value is not valid; use
// DefaultParameters or FromTicks.
type Parameters struct {
	Exposure   float64 // multiplicative gain on linear RGB, default 1
	Contrast   float64 // slope about midpoint 0.5, default 1
	Saturation float64 // chromatic distance scale, default 1

	// Dither enables a deterministic ordered dither in the 8-bit
	// quantization stage to reduce banding in smooth gradients.
	// Off by default so the pipeline reduces to the exact
	// rounding rule; when enabled the RNG is seeded with a fixed value
	// per row, so repeated calls with identical Parameters still satisfy
	// determinism.
	Dither bool
}

// DefaultParameters is the identity parameter set: exposure, contrast
// and saturation all 1.0, the physical development with no interactive
// adjustment.
func DefaultParameters() Parameters {
	return Parameters{Exposure: 1, Contrast: 1, Saturation: 1}
}

// FromTicks maps UI slider ticks in [-100,100] to pipeline scalars.
// A tick of 0 always yields the identity value 1.0 for every parameter.
func FromTicks(exposureTick, contrastTick, saturationTick int) Parameters {
	return Parameters{
		Exposure:   math.Pow(2.0, float64(exposureTick)/33.0),
		Contrast:   math.Pow(1.5, float64(contrastTick)/33.0),
		Saturation: math.Pow(2.0, float64(saturationTick)/33.0),
	}
}
