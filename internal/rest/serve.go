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

// Package rest is the interactive orchestrator's HTTP surface: the UI
// shell's window onto the pipeline core. It owns exactly one Pipeline,
// debounces parameter edits at 100ms, and reports errors without
// discarding the last good image, using gin for routing.
package rest

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/philipzimmermann/BrightRoom/internal/log"
	"github.com/philipzimmermann/BrightRoom/internal/palette"
	"github.com/philipzimmermann/BrightRoom/internal/pipeline"
	"github.com/philipzimmermann/BrightRoom/internal/raw"
)

const debounceDelay = 100 * time.Millisecond

// MakeSandbox secures the current process by chrooting (requires root)
// and dropping to an unprivileged uid, for deployments that serve the
// HTTP API directly on an exposed port. Platform-specific implementations
// live in sandbox_unix.go and sandbox_windows.go.

// Server wraps a single Pipeline instance and the debounce/error state
// a stable interactive UI expects: the viewport retains the
// previous image on error, and the error is reported separately rather
// than replacing the last good render.
type Server struct {
	pl  *pipeline.Pipeline
	deb *debouncer

	mu       sync.Mutex
	lastPath string
	lastErr  *pipeline.Error
}

// NewServer constructs a Server around a fresh, Empty Pipeline.
func NewServer() *Server {
	s := &Server{pl: pipeline.NewPipeline()}
	s.deb = newDebouncer(s.pl, debounceDelay)
	return s
}

func (s *Server) setError(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPath = path
	if err == nil {
		s.lastErr = nil
		return
	}
	if pe, ok := err.(*pipeline.Error); ok {
		s.lastErr = pe
	} else {
		s.lastErr = &pipeline.Error{Kind: pipeline.InvalidInput, Message: err.Error()}
	}
}

// loadRequest is the JSON body for POST /api/v1/load. The RAW decoder
// itself is out of scope here; the caller is expected to have
// already decoded the vendor container and fills in exactly the fields
// of raw.Input, plus an optional display-only Path for error reporting.
type loadRequest struct {
	Path       string        `json:"path"`
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

func (s *Server) postLoad(c *gin.Context) {
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := &raw.Input{
		Width:      req.Width,
		Height:     req.Height,
		Bayer:      req.Bayer,
		Filters:    req.Filters,
		BlackLevel: req.BlackLevel,
		CBlack:     req.CBlack,
		WhiteLevel: req.WhiteLevel,
		WBRaw:      req.WBRaw,
		RGBCam:     req.RGBCam,
	}

	start := time.Now()
	err := s.pl.Load(r)
	s.setError(req.Path, err)
	if err != nil {
		log.Errorf("load %s: %s\n", req.Path, err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	log.Infof("loaded %dx%d from %s in %s\n", r.Width, r.Height, req.Path, time.Since(start))
	c.JSON(http.StatusOK, gin.H{"width": r.Width, "height": r.Height})
}

// paramsRequest is the JSON body for POST /api/v1/params. Either the
// float fields or the tick fields may be supplied; tick fields take
// precedence when present.
type paramsRequest struct {
	Exposure   *float64 `json:"exposure"`
	Contrast   *float64 `json:"contrast"`
	Saturation *float64 `json:"saturation"`

	ExposureTick   *int `json:"exposureTick"`
	ContrastTick   *int `json:"contrastTick"`
	SaturationTick *int `json:"saturationTick"`

	Dither bool `json:"dither"`
}

func (s *Server) resolveParams(req paramsRequest) pipeline.Parameters {
	p := pipeline.DefaultParameters()
	if req.ExposureTick != nil || req.ContrastTick != nil || req.SaturationTick != nil {
		et, ct, st := 0, 0, 0
		if req.ExposureTick != nil {
			et = *req.ExposureTick
		}
		if req.ContrastTick != nil {
			ct = *req.ContrastTick
		}
		if req.SaturationTick != nil {
			st = *req.SaturationTick
		}
		p = pipeline.FromTicks(et, ct, st)
	}
	if req.Exposure != nil && req.ExposureTick == nil {
		p.Exposure = *req.Exposure
	}
	if req.Contrast != nil && req.ContrastTick == nil {
		p.Contrast = *req.Contrast
	}
	if req.Saturation != nil && req.SaturationTick == nil {
		p.Saturation = *req.Saturation
	}
	p.Dither = req.Dither
	return p
}

// postParams arms the 100ms debounce timer with the requested
// parameters and returns immediately; the render happens on the
// timer's own goroutine once the slider settles.
func (s *Server) postParams(c *gin.Context) {
	if !s.pl.IsLoaded() {
		c.JSON(http.StatusConflict, gin.H{"error": pipeline.NotPreprocessed.String()})
		return
	}

	var req paramsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := s.resolveParams(req)

	s.deb.Arm(p, func(img *pipeline.RGBImage8, err error) {
		s.setError("", err)
		if err != nil {
			log.Errorf("render: %s\n", err.Error())
		}
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "debounced"})
}

func (s *Server) getImage(c *gin.Context) {
	img, params, ok := s.pl.LastRendered()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no rendered image"})
		return
	}
	c.Header("X-Width", strconv.Itoa(img.Width))
	c.Header("X-Height", strconv.Itoa(img.Height))
	c.Header("X-Exposure", strconv.FormatFloat(params.Exposure, 'g', -1, 64))
	c.Header("X-Contrast", strconv.FormatFloat(params.Contrast, 'g', -1, 64))
	c.Header("X-Saturation", strconv.FormatFloat(params.Saturation, 'g', -1, 64))
	c.Data(http.StatusOK, "application/octet-stream", img.Pix)
}

func (s *Server) getSummary(c *gin.Context) {
	img, _, ok := s.pl.LastRendered()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no rendered image"})
		return
	}
	c.JSON(http.StatusOK, palette.Summarize(img))
}

func (s *Server) getError(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastErr == nil {
		c.JSON(http.StatusOK, gin.H{"path": s.lastPath})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path":    s.lastPath,
		"kind":    s.lastErr.Kind.String(),
		"message": s.lastErr.Message,
	})
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Serve registers the API routes on a fresh gin engine and blocks
// serving HTTP on the given address (":8080" style), mirroring the
// teacher's internal/rest/serve.go entrypoint.
func Serve(addr string) error {
	s := NewServer()
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/load", s.postLoad)
			v1.POST("/params", s.postParams)
			v1.GET("/image", s.getImage)
			v1.GET("/summary", s.getSummary)
			v1.GET("/error", s.getError)
		}
	}
	return r.Run(addr)
}
