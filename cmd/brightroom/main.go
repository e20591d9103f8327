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

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/pbnjay/memory"

	"github.com/philipzimmermann/BrightRoom/internal/log"
	"github.com/philipzimmermann/BrightRoom/internal/palette"
	"github.com/philipzimmermann/BrightRoom/internal/pipeline"
	"github.com/philipzimmermann/BrightRoom/internal/raw"
	"github.com/philipzimmermann/BrightRoom/internal/rest"
)

const version = "0.1.0"

var totalMiBs = memory.TotalMemory() / 1024 / 1024

// avx2Status reports the host AVX2 capability for the startup banner.
// numWorkers doesn't use it to size row bands yet, but operators
// comparing throughput across machines want to see it up front.
func avx2Status() string {
	if pipeline.HasAVX2() {
		return "available"
	}
	return "not available"
}

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var job = flag.String("job", "", "JSON frame description to develop, see loadRequest in internal/rest")
var out = flag.String("out", "out.ppm", "save developed 8-bit image to `file` in binary PPM format")
var logPath = flag.String("log", "%auto", "save log output to `file`. `%auto` replaces suffix of output file with .log")

var exposureTick = flag.Int64("exposureTick", 0, "exposure slider tick in [-100,100], 0=identity")
var contrastTick = flag.Int64("contrastTick", 0, "contrast slider tick in [-100,100], 0=identity")
var saturationTick = flag.Int64("saturationTick", 0, "saturation slider tick in [-100,100], 0=identity")
var dither = flag.Bool("dither", false, "apply ordered dither before 8-bit quantization")

var addr = flag.String("addr", ":8080", "address for serving the HTTP API")
var chroot = flag.String("chroot", "", "directory to chroot and chdir to when serving HTTP. must be run as root")
var setuid = flag.Int64("setuid", -1, "user id number to setuid to when serving HTTP. must be run as root")

func main() {
	var logWriter io.Writer = os.Stdout
	start := time.Now()

	flag.Usage = func() {
		fmt.Fprintf(logWriter, `BrightRoom Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (develop|serve|legal|version)

Commands:
  develop Develop a single RAW frame described by -job into -out
  serve   Serve the interactive HTTP API on -addr
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *logPath == "%auto" {
		if *out != "" {
			*logPath = strings.TrimSuffix(*out, filepath.Ext(*out)) + ".log"
		} else {
			*logPath = ""
		}
	}
	if *logPath != "" {
		if err := log.AlsoToFile(*logPath); err != nil {
			panic(fmt.Sprintf("unable to open log file %s: %s\n", *logPath, err.Error()))
		}
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Fprintf(logWriter, "could not create CPU profile: %s\n", err)
			os.Exit(-1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(logWriter, "could not start CPU profile: %s\n", err)
			os.Exit(-1)
		}
		defer pprof.StopCPUProfile()
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}

	switch args[0] {
	case "develop", "serve":
		log.Infof("%d MiB physical memory detected, AVX2 %s\n", totalMiBs, avx2Status())
		if args[0] == "develop" {
			runDevelop()
		} else {
			runServe()
		}
	case "legal":
		fmt.Fprint(logWriter, legal)
	case "version":
		fmt.Fprintf(logWriter, "BrightRoom version %s, %d MiB physical memory detected, AVX2 %s\n", version, totalMiBs, avx2Status())
	default:
		flag.Usage()
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			fmt.Fprintf(logWriter, "could not create memory profile: %s\n", err)
			os.Exit(-1)
		}
		defer f.Close()
		pprof.WriteHeapProfile(f)
	}

	log.Infof("done after %s\n", time.Since(start))
	log.Sync()
}

// frameFile is the on-disk JSON shape for -job, mirroring the REST
// API's load request so the same frame description works from either
// surface.
type frameFile struct {
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Bayer      []uint16      `json:"bayer"`
	Filters    uint32        `json:"filters"`
	BlackLevel int           `json:"blackLevel"`
	CBlack     [4]int        `json:"cblack"`
	WhiteLevel int           `json:"whiteLevel"`
	WBRaw      [3]float64    `json:"wbRaw"`
	RGBCam     [3][3]float64 `json:"rgbCam"`
}

func runDevelop() {
	if *job == "" {
		log.Fatal("develop requires -job pointing to a frame description\n")
	}
	data, err := ioutil.ReadFile(*job)
	if err != nil {
		log.Fatalf("unable to read %s: %s\n", *job, err.Error())
	}
	var ff frameFile
	if err := json.Unmarshal(data, &ff); err != nil {
		log.Fatalf("unable to parse %s: %s\n", *job, err.Error())
	}

	r := &raw.Input{
		Width:      ff.Width,
		Height:     ff.Height,
		Bayer:      ff.Bayer,
		Filters:    ff.Filters,
		BlackLevel: ff.BlackLevel,
		CBlack:     ff.CBlack,
		WhiteLevel: ff.WhiteLevel,
		WBRaw:      ff.WBRaw,
		RGBCam:     ff.RGBCam,
	}

	pl := pipeline.NewPipeline()
	if err := pl.Load(r); err != nil {
		log.Fatalf("preprocess failed: %s\n", err.Error())
	}

	p := pipeline.FromTicks(int(*exposureTick), int(*contrastTick), int(*saturationTick))
	p.Dither = *dither
	img, err := pl.Render(p)
	if err != nil {
		log.Fatalf("process failed: %s\n", err.Error())
	}

	if err := writePPM(*out, img); err != nil {
		log.Fatalf("unable to write %s: %s\n", *out, err.Error())
	}
	sum := palette.Summarize(img)
	log.Infof("developed %dx%d to %s, average color %s (%s)\n",
		img.Width, img.Height, *out, sum.AverageHex, sum.NearestName)
}

// writePPM saves an RGBImage8 in binary PPM (P6) format, the simplest
// container that round-trips raw interleaved bytes without requiring
// an image codec dependency.
func writePPM(path string, img *pipeline.RGBImage8) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "P6\n%d %d\n255\n", img.Width, img.Height); err != nil {
		return err
	}
	_, err = f.Write(img.Pix)
	return err
}

func runServe() {
	if *chroot != "" || *setuid >= 0 {
		if err := rest.MakeSandbox(*chroot, int(*setuid)); err != nil {
			log.Fatalf("sandboxing failed: %s\n", err.Error())
		}
	}
	log.Infof("serving HTTP API on %s\n", *addr)
	if err := rest.Serve(*addr); err != nil {
		log.Fatalf("serve failed: %s\n", err.Error())
	}
}
