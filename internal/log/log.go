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

// Package log is a singleton line-oriented logger for the CLI and REST
// orchestrator, mirroring every line to an optional file in addition to
// stdout. The pipeline core itself never calls into this package --
// Preprocess and Process are pure functions; only the surrounding CLI
// and REST layers report progress and failures through it.
package log

import (
	"bufio"
	"fmt"
	"os"
)

// Level tags the severity of a logged line, so a REST handler reporting
// a failed load and a CLI banner reporting a successful render read
// differently at a glance even though both go through the same
// mirrored writer.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) tag() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// The optional additional file to log into
var logFile *bufio.Writer
var logFileOS *os.File

// AlsoToFile enables mirroring all log output to the given file, in
// addition to stdout. Replaces any previously configured file.
func AlsoToFile(fileName string) (err error) {
	if logFile != nil {
		if err = logFile.Flush(); err != nil {
			return err
		}
		if err = logFileOS.Close(); err != nil {
			return err
		}
	}
	logFileOS, err = os.OpenFile(fileName, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	logFile = bufio.NewWriter(logFileOS)
	return nil
}

// Print writes args to stdout, and mirrors them to the log file if one
// is configured. Raw passthrough -- no level tag, no forced newline.
func Print(args ...interface{}) (n int, err error) {
	n, err = fmt.Print(args...)
	if err != nil || logFile == nil {
		return n, err
	}
	return fmt.Fprint(logFile, args...)
}

func Println(args ...interface{}) (n int, err error) {
	n, err = fmt.Println(args...)
	if err != nil || logFile == nil {
		return n, err
	}
	return fmt.Fprintln(logFile, args...)
}

func Printf(format string, args ...interface{}) (n int, err error) {
	n, err = fmt.Printf(format, args...)
	if err != nil || logFile == nil {
		return n, err
	}
	return fmt.Fprintf(logFile, format, args...)
}

// logf writes a level-tagged line through Printf, so it inherits the
// same stdout-plus-mirrored-file behavior.
func logf(level Level, format string, args ...interface{}) {
	Printf("%s: "+format, append([]interface{}{level.tag()}, args...)...)
}

// Infof tags a line INFO: routine progress -- a load completing, a
// render finishing, the server coming up.
func Infof(format string, args ...interface{}) {
	logf(LevelInfo, format, args...)
}

// Info is the non-formatted form of Infof.
func Info(args ...interface{}) {
	logf(LevelInfo, "%s", fmt.Sprint(args...))
}

// Warnf tags a line WARN: a degraded but non-fatal condition, such as
// disabling a check because the platform couldn't report the figure it
// needs.
func Warnf(format string, args ...interface{}) {
	logf(LevelWarn, format, args...)
}

// Warn is the non-formatted form of Warnf.
func Warn(args ...interface{}) {
	logf(LevelWarn, "%s", fmt.Sprint(args...))
}

// Errorf tags a line ERROR: an operation failed but the process
// continues running (e.g. a single REST request's load or render).
func Errorf(format string, args ...interface{}) {
	logf(LevelError, format, args...)
}

// Error is the non-formatted form of Errorf.
func Error(args ...interface{}) {
	logf(LevelError, "%s", fmt.Sprint(args...))
}

// Fatal logs args at ERROR severity and terminates the process.
func Fatal(args ...interface{}) {
	logf(LevelError, "%s", fmt.Sprint(args...))
	if logFile != nil {
		logFile.Flush()
		logFileOS.Close()
	}
	os.Exit(1)
}

// Fatalf logs a formatted ERROR line and terminates the process.
func Fatalf(format string, args ...interface{}) {
	logf(LevelError, format, args...)
	if logFile != nil {
		logFile.Flush()
		logFileOS.Close()
	}
	os.Exit(1)
}

// Sync flushes and syncs the mirrored log file, if one is configured.
func Sync() {
	if logFile == nil {
		return
	}
	logFile.Flush()
	logFileOS.Sync()
}
