package server

import (
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"MissionRelay/internal/mission"
)

//go:generate go run ./cmd/webbuild

/* ------------------------------ Embeds ------------------------------ */

//go:embed web/index.html
var htmlIndex []byte

//go:embed web/client.js
var jsClient []byte

// Minimal valid gray JPEG served by /video_feed until a real camera stream
// replaces it.
var grayPixelJPEG = []byte(
	"\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00" +
		"\xff\xdb\x00C\x00\x08\x06\x06\x07\x06\x05\x08\x07\x07\x07\t\t" +
		"\x08\n\x0c\x14\r\x0c\x0b\x0b\x0c\x19\x12\x13\x0f\x14\x1d\x1a" +
		"\x1f\x1e\x1d\x1a\x1c\x1c $.' \",#\x1c\x1c(7),01444\x1f'9=82<.342\x1eC" +
		"\x00\x01\x01\x01\x01\x01\x01\x01\x01\x01\x01\x01\x01\x01\x01" +
		"\xff\xc0\x00\x0b\x08\x00\x01\x00\x01\x01\x01\x11\x00\xff\xc4" +
		"\x00\x1f\x00\x00\x01\x05\x01\x01\x01\x01\x01\x01\x00\x00\x00" +
		"\x00\x00\x00\x00\x00\x01\x02\x03\x04\x05\x06\x07\x08\t\n\x0b" +
		"\xff\xc4\x00\xb5\x10\x00\x02\x01\x03\x03\x02\x04\x03\x05\x05" +
		"\xff\xda\x00\x08\x01\x01\x00\x00?\x00\xfb\xff\xd9")

/* ------------------------------- HTTP ------------------------------- */

type api struct {
	store        *mission.Store
	driver       mission.Driver
	hub          *streamHub
	patchEnabled bool
}

func (a *api) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(htmlIndex)
	})
	mux.HandleFunc("/client.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write(jsClient)
	})
	mux.HandleFunc("/api/mission/start", a.handleStart)
	mux.HandleFunc("/api/mission/state", a.handleState)
	mux.HandleFunc("/api/mission/reset", a.handleReset)
	mux.HandleFunc("/api/mission/patch", a.handlePatch)
	mux.HandleFunc("/api/mission/stream", a.serveStream)
	mux.HandleFunc("/video_feed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(grayPixelJPEG)
	})
	return mux
}

func startServer(a *api, addr string) {
	log.Fatal(http.ListenAndServe(addr, a.routes()))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

// handleStart validates the operator position and fires the activation
// sequence. It returns immediately; progress is discovered by polling
// /api/mission/state.
func (a *api) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid start payload"})
		return
	}
	// Coordinates come as a pair or not at all. A lone value means the
	// client is confused; reject before any state change.
	if (req.Lat == nil) != (req.Lon == nil) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lat and lon must both be set or both be null"})
		return
	}

	var gps *mission.Coordinates
	if req.Lat != nil {
		gps = &mission.Coordinates{Lat: *req.Lat, Lon: *req.Lon}
	}

	epoch, err := a.store.StartMission(gps)
	if err != nil {
		if errors.Is(err, mission.ErrMissionActive) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "mission already active"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "start failed"})
		return
	}
	a.driver.Launch(epoch)

	gpsNote := "with GPS"
	if gps == nil {
		gpsNote = "without GPS (unavailable)"
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "SOS received. Drone activating " + gpsNote + "."})
}

func (a *api) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, stateToMsg(a.store.Snapshot()))
}

func (a *api) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	a.driver.Halt()
	a.store.Reset()
	writeJSON(w, http.StatusOK, messageResponse{Message: "Mission reset. System at standby."})
}

// handlePatch writes caller-supplied fields straight into the mission
// record. It exists for the trigger tool during development; the gate is a
// startup flag and the disabled response reveals nothing else.
func (a *api) handlePatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	if !a.patchEnabled {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "disabled"})
		return
	}

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid patch payload"})
		return
	}
	writeJSON(w, http.StatusOK, stateToMsg(a.store.Patch(req.toPatch())))
}
