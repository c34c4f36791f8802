// Package poller implements the operator-side mission loop: acquire a
// position, dispatch the SOS, then poll the state endpoint and re-render
// from each full snapshot until the mission resolves. The embedded web
// client mirrors this logic in TypeScript; this implementation backs the
// trigger tool and the protocol tests.
package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

const (
	DefaultInterval   = 1500 * time.Millisecond
	DefaultGeoTimeout = 8 * time.Second
)

// ErrDispatchInFlight is returned when Dispatch is called while a mission
// loop is already running. Repeated SOS presses must not start a second
// mission.
var ErrDispatchInFlight = errors.New("dispatch already in flight")

// Position is the operator location sent with the start request.
type Position struct {
	Lat float64
	Lon float64
}

// Locator acquires the operator position. Implementations must return
// promptly once ctx is done; a failed or timed-out acquisition degrades to
// a nil position, it never blocks the dispatch.
type Locator interface {
	Locate(ctx context.Context) (*Position, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context) (*Position, error)

func (f LocatorFunc) Locate(ctx context.Context) (*Position, error) { return f(ctx) }

// Snapshot is the polled mission state as it appears on the wire.
type Snapshot struct {
	DroneActive     bool   `json:"drone_active"`
	RecordingActive bool   `json:"recording_active"`
	AIStatus        string `json:"ai_status"`
	GPS             *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"gps"`
	Battery int `json:"battery"`
}

// Renderer consumes a full snapshot. Implementations must recompute
// everything they display from the snapshot alone: snapshots can arrive
// duplicated or out of order, and rendering the same one twice must be
// invisible.
type Renderer interface {
	Render(Snapshot)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(Snapshot)

func (f RendererFunc) Render(s Snapshot) { f(s) }

type Poller struct {
	BaseURL    string
	Client     *http.Client
	Locator    Locator
	Renderer   Renderer
	Interval   time.Duration
	GeoTimeout time.Duration

	mu     sync.Mutex
	active bool
	cancel context.CancelFunc
}

func New(baseURL string) *Poller {
	return &Poller{
		BaseURL:    baseURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
		Interval:   DefaultInterval,
		GeoTimeout: DefaultGeoTimeout,
	}
}

// Dispatch runs one SOS-to-resolution cycle: position, start request, poll
// loop. It blocks until the mission reports a detection, ctx is cancelled,
// or Stop is called. A transient start or poll failure is logged and the
// loop carries on at the next tick.
func (p *Poller) Dispatch(ctx context.Context) error {
	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return ErrDispatchInFlight
	}
	ctx, cancel := context.WithCancel(ctx)
	p.active = true
	p.cancel = cancel
	p.mu.Unlock()
	defer p.Stop()

	pos := p.acquirePosition(ctx)
	if err := p.postStart(ctx, pos); err != nil {
		// The server may already be running the mission, or the request was
		// lost; polling tells us either way.
		log.Printf("start request: %v (polling anyway)", err)
	}

	return p.pollLoop(ctx)
}

// Stop cancels a running loop and clears the dispatch guard, allowing the
// next Dispatch. It is the client-side counterpart of a mission reset.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.active = false
	p.mu.Unlock()
}

func (p *Poller) acquirePosition(ctx context.Context) *Position {
	if p.Locator == nil {
		return nil
	}
	geoCtx, cancel := context.WithTimeout(ctx, p.GeoTimeout)
	defer cancel()
	pos, err := p.Locator.Locate(geoCtx)
	if err != nil {
		log.Printf("position unavailable: %v (dispatching without GPS)", err)
		return nil
	}
	return pos
}

func (p *Poller) postStart(ctx context.Context, pos *Position) error {
	body := struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}{}
	if pos != nil {
		body.Lat = &pos.Lat
		body.Lon = &pos.Lon
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/mission/start", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("start rejected with status %d", resp.StatusCode)
	}
	return nil
}

func (p *Poller) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		snap, err := p.fetchState(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("poll: %v", err)
		} else {
			if p.Renderer != nil {
				p.Renderer.Render(snap)
			}
			if snap.AIStatus == "Human Detected" {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Poller) fetchState(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/api/mission/state", nil)
	if err != nil {
		return snap, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return snap, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("state returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode state: %w", err)
	}
	return snap, nil
}
