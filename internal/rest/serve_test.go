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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/philipzimmermann/BrightRoom/internal/pipeline"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(s *Server) *gin.Engine {
	r := gin.New()
	r.POST("/api/v1/load", s.postLoad)
	r.POST("/api/v1/params", s.postParams)
	r.GET("/api/v1/image", s.getImage)
	r.GET("/api/v1/summary", s.getSummary)
	r.GET("/api/v1/error", s.getError)
	r.GET("/api/v1/ping", getPing)
	return r
}

func testLoadBody(width, height int) []byte {
	bayer := make([]uint16, width*height)
	for i := range bayer {
		bayer[i] = 400
	}
	req := loadRequest{
		Path:       "test.raw",
		Width:      width,
		Height:     height,
		Bayer:      bayer,
		Filters:    0x94949494,
		BlackLevel: 0,
		WhiteLevel: 1023,
		WBRaw:      [3]float64{1, 1, 1},
		RGBCam: [3][3]float64{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
	}
	data, _ := json.Marshal(req)
	return data
}

func TestPing(t *testing.T) {
	s := NewServer()
	r := newTestEngine(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", w.Code)
	}
}

func TestLoadThenImageWithoutRenderIs404(t *testing.T) {
	s := NewServer()
	r := newTestEngine(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/load", bytes.NewReader(testLoadBody(4, 4)))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("load: got %d, want 200, body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/image", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("image before render: got %d, want 404", w.Code)
	}
}

func TestLoadRenderSynchronouslyThenImage(t *testing.T) {
	s := NewServer()
	r := newTestEngine(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/load", bytes.NewReader(testLoadBody(4, 4)))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("load: got %d, want 200", w.Code)
	}

	// Bypass the debounce timer for a deterministic test: render directly.
	if _, err := s.pl.Render(pipeline.DefaultParameters()); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/image", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("image: got %d, want 200", w.Code)
	}
	if w.Header().Get("X-Width") != "4" || w.Header().Get("X-Height") != "4" {
		t.Errorf("got width=%s height=%s, want 4/4", w.Header().Get("X-Width"), w.Header().Get("X-Height"))
	}
	if w.Body.Len() != 4*4*3 {
		t.Errorf("got %d bytes, want %d", w.Body.Len(), 4*4*3)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("summary: got %d, want 200", w.Code)
	}
}

func TestParamsBeforeLoadIsConflict(t *testing.T) {
	s := NewServer()
	r := newTestEngine(s)

	body, _ := json.Marshal(paramsRequest{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/params", bytes.NewReader(body))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("got %d, want 409", w.Code)
	}
}

func TestResolveParamsTicksTakePrecedenceOverExplicitDefaults(t *testing.T) {
	s := NewServer()
	tick := 33
	p := s.resolveParams(paramsRequest{ExposureTick: &tick})
	if p.Exposure <= 1.99 || p.Exposure >= 2.01 {
		t.Errorf("exposure tick 33 should map close to 2.0, got %g", p.Exposure)
	}
	if p.Contrast != 1 || p.Saturation != 1 {
		t.Errorf("unset ticks should default to identity, got %+v", p)
	}
}

func TestGetErrorEmptyBeforeAnyLoad(t *testing.T) {
	s := NewServer()
	r := newTestEngine(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/error", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", w.Code)
	}
}

func TestLoadInvalidInputReportsError(t *testing.T) {
	s := NewServer()
	r := newTestEngine(s)

	reqBody := testLoadBody(2, 2)
	var lr loadRequest
	json.Unmarshal(reqBody, &lr)
	lr.WhiteLevel = 0
	reqBody, _ = json.Marshal(lr)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/load", bytes.NewReader(reqBody))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got %d, want 422", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/error", nil)
	r.ServeHTTP(w, req)
	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["kind"] != "InvalidInput" {
		t.Errorf("got %v, want InvalidInput", body["kind"])
	}
}
