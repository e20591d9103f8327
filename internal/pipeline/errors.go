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

import "fmt"

// Kind classifies pipeline errors so callers (the REST orchestrator, a
// UI) can branch on cause without parsing messages.
type Kind int

const (
	// InvalidInput marks malformed RawInput: dimension mismatch, a zero
	// white level, black levels that overflow 16 bits, or a non-finite
	// color matrix.
	InvalidInput Kind = iota
	// OutOfMemory marks a failed allocation of the float cache or the
	// output byte buffer.
	OutOfMemory
	// NotPreprocessed marks a Process call against a handle whose
	// Preprocess failed or was never run.
	NotPreprocessed
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case OutOfMemory:
		return "OutOfMemory"
	case NotPreprocessed:
		return "NotPreprocessed"
	default:
		return "Unknown"
	}
}

// Error is the error type surfaced by Preprocess and Process.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
