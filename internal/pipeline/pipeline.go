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

// Package pipeline implements the two-phase RAW development core:
// Preprocess (the parameter-independent head) and Process
// (the cheap, parameter-dependent tail), split at a cache
// boundary so interactive edits never re-run the expensive demosaic.
package pipeline

import (
	"sync"

	"github.com/philipzimmermann/BrightRoom/internal/raw"
)

// Handle is the opaque result of Preprocess: it owns the cached
// LinearRGB buffer and borrows the RawInput it was built from for the
// lifetime of subsequent Process calls. Callers must not mutate or
// drop the RawInput while a Handle referencing it is in use.
//
// A Handle is exclusive under Preprocess/Release but safe for
// concurrent Process calls against distinct handles; concurrent
// Process calls against the *same* handle are not supported --
// Pipeline below serializes access for exactly this reason.
type Handle struct {
	raw       *raw.Input
	linearRGB *LinearRGB
}

// Release drops the cached float buffer. The handle must not be used
// afterwards.
func Release(h *Handle) {
	if h == nil {
		return
	}
	h.linearRGB = nil
	h.raw = nil
}

// state tags which branch of the PipelineState sum type a Pipeline is
// in. Unexported: callers observe it only through Pipeline's methods.
type state int

const (
	stateEmpty state = iota
	statePreprocessed
	stateRendered
)

// Pipeline is the stateful orchestrator a UI or REST layer drives. It
// models the PipelineState sum type explicitly: Empty,
// Preprocessed{raw,linearRGB}, or Rendered{preprocessed,lastParams,rgb8}.
// All three states are revisitable -- there is no terminal state.
//
// A Pipeline serializes preprocess/process/release against itself so a
// single instance can be driven from a debounced UI timer without the
// caller needing its own lock.
type Pipeline struct {
	mu sync.Mutex

	state      state
	handle     *Handle
	lastParams Parameters
	rendered   *RGBImage8
}

// NewPipeline returns a Pipeline in the Empty state.
func NewPipeline() *Pipeline {
	return &Pipeline{state: stateEmpty}
}

// Load runs Preprocess against r and transitions to Preprocessed on
// success. On failure the Pipeline is left exactly as it was and no
// partial state is cached -- a Rendered pipeline keeps its cached
// buffer and its last render after a failed Load.
func (pl *Pipeline) Load(r *raw.Input) error {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	h, err := Preprocess(r)
	if err != nil {
		return err
	}
	pl.state = statePreprocessed
	pl.handle = h
	pl.rendered = nil
	return nil
}

// Render runs Process with the given parameters against the cached
// LinearRGB buffer and transitions to Rendered. Returns NotPreprocessed
// if called before a successful Load.
func (pl *Pipeline) Render(p Parameters) (*RGBImage8, error) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.state == stateEmpty || pl.handle == nil {
		return nil, newError(NotPreprocessed, "render called before a successful load")
	}

	img, err := Process(pl.handle, p)
	if err != nil {
		return nil, err
	}
	pl.state = stateRendered
	pl.lastParams = p
	pl.rendered = img
	return img, nil
}

// LastRendered returns the most recently rendered image and the
// parameters that produced it, if the Pipeline is in the Rendered
// state.
func (pl *Pipeline) LastRendered() (*RGBImage8, Parameters, bool) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.state != stateRendered {
		return nil, Parameters{}, false
	}
	return pl.rendered, pl.lastParams, true
}

// Release drops the cached float buffer and returns the Pipeline to
// the Empty state.
func (pl *Pipeline) Release() {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	Release(pl.handle)
	pl.handle = nil
	pl.rendered = nil
	pl.state = stateEmpty
}

// IsLoaded reports whether the Pipeline holds a preprocessed or
// rendered frame (i.e. is not Empty).
func (pl *Pipeline) IsLoaded() bool {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.state != stateEmpty
}
