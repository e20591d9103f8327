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

package rest

import (
	"sync"
	"time"

	"github.com/philipzimmermann/BrightRoom/internal/pipeline"
)

// debouncer arms a single timer that (re)starts on every Arm call
// and fires Render once the slider has been still for the given delay.
// A burst of ~10Hz slider updates collapses into a single Process call
// per pause, so one worker goroutine keeps up without queuing.
type debouncer struct {
	delay time.Duration
	pl    *pipeline.Pipeline

	mu      sync.Mutex
	timer   *time.Timer
	pending pipeline.Parameters
}

func newDebouncer(pl *pipeline.Pipeline, delay time.Duration) *debouncer {
	return &debouncer{delay: delay, pl: pl}
}

// Arm schedules a render of p after the debounce delay, canceling any
// previously scheduled one. onRendered is invoked from the timer's own
// goroutine once Process completes.
func (d *debouncer) Arm(p pipeline.Parameters, onRendered func(*pipeline.RGBImage8, error)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = p
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		p := d.pending
		d.mu.Unlock()

		img, err := d.pl.Render(p)
		if onRendered != nil {
			onRendered(img, err)
		}
	})
}

// Stop cancels any pending render.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
