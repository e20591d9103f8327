// +build windows

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

import "github.com/philipzimmermann/BrightRoom/internal/log"

// MakeSandbox is a no-op on Windows: chroot and setuid have no
// equivalent there, so a requested dir or uid is reported and ignored
// rather than silently dropped. Matches the signature of the Unix
// build's MakeSandbox so cmd/brightroom/main.go does not need a build
// tag of its own.
func MakeSandbox(dir string, uid int) error {
	if len(dir) > 0 {
		log.Warnf("ignoring chroot target %s: not supported on Windows\n", dir)
	}
	if uid >= 0 {
		log.Warnf("ignoring setuid target %d: not supported on Windows\n", uid)
	}
	return nil
}
