// +build linux darwin

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
	"fmt"
	"os"
	"syscall"

	"github.com/philipzimmermann/BrightRoom/internal/log"
)

// MakeSandbox secures the current process, for deployments that expose
// internal/rest's HTTP API directly on an untrusted network interface:
// it chroots into dir (requires root) and then drops to an unprivileged
// uid. The chroot step is skipped for an empty dir and the setuid step
// for a negative uid. Returns an error rather than
// panicking, matching the rest of this module's convention of
// surfacing failures to the caller instead of aborting the process
// from inside a library package.
func MakeSandbox(dir string, uid int) error {
	if len(dir) > 0 {
		log.Infof("chrooting to %s before serving\n", dir)
		if err := syscall.Chroot(dir); err != nil {
			return fmt.Errorf("chroot(%s): %w", dir, err)
		}
		if err := os.Chdir(dir); err != nil {
			return fmt.Errorf("chdir(%s): %w", dir, err)
		}
	}
	if uid >= 0 {
		log.Infof("dropping privileges from uid %d/euid %d to uid %d\n", syscall.Getuid(), syscall.Geteuid(), uid)
		if err := syscall.Setuid(uid); err != nil {
			return fmt.Errorf("setuid(%d): %w", uid, err)
		}
	}
	return nil
}
