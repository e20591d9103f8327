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
	"runtime"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
)

// rowBand is a contiguous span of image rows, the unit of work for
// parallel per-stage execution (row bands, no cross-band
// dependencies for every stage but the demosaic, whose 3x3 neighborhood
// is read-only on the input and therefore embarrassingly parallel too).
type rowBand struct {
	y0, y1 int // [y0,y1)
}

// numWorkers returns how many logical cores to split row-band work
// across: runtime.NumCPU(), at least 1. AVX2 presence (HasAVX2) does
// not change the worker count; it is only surfaced so callers can log it.
func numWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	return n
}

// HasAVX2 reports whether the host CPU advertises AVX2, for diagnostic
// logging only -- no stage in this package has a hand-written SIMD path
// yet, so it does not change numWorkers' result today.
func HasAVX2() bool {
	return cpuid.CPU.AVX2()
}

// rowBands splits [0,height) into at most numWorkers() contiguous bands
// of roughly equal size, each covering whole rows.
func rowBands(height int) []rowBand {
	n := numWorkers()
	if n > height {
		n = height
	}
	if n < 1 {
		n = 1
	}
	bands := make([]rowBand, 0, n)
	batch := (height + n - 1) / n
	for y0 := 0; y0 < height; y0 += batch {
		y1 := y0 + batch
		if y1 > height {
			y1 = height
		}
		bands = append(bands, rowBand{y0, y1})
	}
	return bands
}

// parallelRows runs fn(y0,y1) once per row band, across all available
// CPUs, and waits for every band to finish before returning.
func parallelRows(height int, fn func(y0, y1 int)) {
	bands := rowBands(height)
	if len(bands) == 1 {
		fn(bands[0].y0, bands[0].y1)
		return
	}
	done := make(chan struct{}, len(bands))
	for _, b := range bands {
		go func(b rowBand) {
			fn(b.y0, b.y1)
			done <- struct{}{}
		}(b)
	}
	for range bands {
		<-done
	}
}

// checkMemory refuses an allocation of the given byte size if it would
// exceed the free memory reported by the OS, surfacing OutOfMemory
// rather than letting the runtime panic or thrash. A zero/unknown
// report from the memory package (e.g. inside some containers) disables
// the check, degrading gracefully when free memory cannot be determined.
func checkMemory(nbytes int64, what string) error {
	free := int64(memory.FreeMemory())
	if free <= 0 {
		return nil // memory reporting unavailable on this platform/container
	}
	if nbytes > free {
		return newError(OutOfMemory, "allocating %s needs %d bytes, only %d free", what, nbytes, free)
	}
	return nil
}
