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

package log

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAlsoToFileMirrorsOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mirror.log")

	if err := AlsoToFile(path); err != nil {
		t.Fatalf("AlsoToFile failed: %v", err)
	}
	Printf("hello %d\n", 42)
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading mirrored log: %v", err)
	}
	if string(data) != "hello 42\n" {
		t.Errorf("got %q, want %q", string(data), "hello 42\n")
	}
}

func TestAlsoToFileReplacesPreviousFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	if err := AlsoToFile(first); err != nil {
		t.Fatalf("AlsoToFile(first) failed: %v", err)
	}
	if err := AlsoToFile(second); err != nil {
		t.Fatalf("AlsoToFile(second) failed: %v", err)
	}
	Printf("to second\n")
	Sync()

	data, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("reading second log: %v", err)
	}
	if string(data) != "to second\n" {
		t.Errorf("got %q, want %q", string(data), "to second\n")
	}
}

func TestInfofTagsLineInfo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "info.log")
	if err := AlsoToFile(path); err != nil {
		t.Fatalf("AlsoToFile failed: %v", err)
	}
	Infof("loaded %d pixels\n", 42)
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading mirrored log: %v", err)
	}
	if want := "INFO: loaded 42 pixels\n"; string(data) != want {
		t.Errorf("got %q, want %q", string(data), want)
	}
}

func TestErrorfTagsLineError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "error.log")
	if err := AlsoToFile(path); err != nil {
		t.Fatalf("AlsoToFile failed: %v", err)
	}
	Errorf("render failed: %s\n", "boom")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading mirrored log: %v", err)
	}
	if want := "ERROR: render failed: boom\n"; string(data) != want {
		t.Errorf("got %q, want %q", string(data), want)
	}
}

func TestWarnfTagsLineWarn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warn.log")
	if err := AlsoToFile(path); err != nil {
		t.Fatalf("AlsoToFile failed: %v", err)
	}
	Warnf("memory reporting unavailable\n")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading mirrored log: %v", err)
	}
	if want := "WARN: memory reporting unavailable\n"; string(data) != want {
		t.Errorf("got %q, want %q", string(data), want)
	}
}
