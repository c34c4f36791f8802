package mission

import (
	"errors"
	"sync"
)

// ErrMissionActive is returned by StartMission while a mission is already in
// flight. A second SOS never restarts the sequence; the caller surfaces the
// rejection and keeps polling the one that is running.
var ErrMissionActive = errors.New("mission already active")

// Coordinates is the operator position captured at dispatch, in decimal
// degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// MissionState is the full mission record. One instance exists per process,
// owned by a Store; everything the UI renders derives from a copy of it.
type MissionState struct {
	DroneActive     bool
	RecordingActive bool
	AIStatus        AIStatus
	GPS             *Coordinates // nil when capture failed or no mission ran
	Battery         int
}

func defaultState() MissionState {
	return MissionState{
		AIStatus: StatusStandby,
		Battery:  100,
	}
}

// clone deep-copies the record so callers can never reach back into the
// store through the GPS pointer.
func (m MissionState) clone() MissionState {
	out := m
	if m.GPS != nil {
		gps := *m.GPS
		out.GPS = &gps
	}
	return out
}

// StatePatch is a partial overwrite of MissionState. Nil fields are left
// untouched. GPS is deliberately absent: position only ever enters through
// StartMission.
type StatePatch struct {
	DroneActive     *bool
	RecordingActive *bool
	AIStatus        *AIStatus
	Battery         *int
}

// Store owns the single MissionState record. All access goes through its
// mutex; sequence drivers mutate it only via the epoch-checked Advance
// methods, so a timer left over from a reset mission can never write into
// the next one.
type Store struct {
	mu       sync.Mutex
	state    MissionState
	epoch    uint64
	active   bool
	onChange func(MissionState)
}

func NewStore() *Store {
	return &Store{state: defaultState()}
}

// SetOnChange registers a callback invoked with a snapshot after every
// mutation. It fires outside the store lock. Set once at startup, before
// any traffic.
func (s *Store) SetOnChange(fn func(MissionState)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Snapshot returns a copy of the current record. It never mutates state and
// is safe to call at any rate.
func (s *Store) Snapshot() MissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Epoch returns the current mission epoch.
func (s *Store) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// StartMission records the operator position and opens a new mission epoch.
// The returned epoch must be handed to the sequence driver; every later
// mutation carries it. A nil gps means capture failed and the mission
// proceeds without a position.
func (s *Store) StartMission(gps *Coordinates) (uint64, error) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return 0, ErrMissionActive
	}
	s.active = true
	s.epoch++
	epoch := s.epoch
	s.state.DroneActive = false
	s.state.RecordingActive = false
	s.state.AIStatus = StatusInitializing
	if gps != nil {
		c := *gps
		s.state.GPS = &c
	} else {
		s.state.GPS = nil
	}
	snap, notify := s.state.clone(), s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
	return epoch, nil
}

// Reset restores the defaults and invalidates the current epoch, so any
// pending sequence timers from the old mission become no-ops. Calling it
// twice in a row yields the same state both times.
func (s *Store) Reset() {
	s.mu.Lock()
	s.active = false
	s.epoch++
	s.state = defaultState()
	snap, notify := s.state.clone(), s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
}

// Patch overwrites exactly the provided fields and returns the resulting
// record. The developer-mode gate lives at the server boundary; the store
// itself applies whatever it is handed, all fields under one lock hold.
func (s *Store) Patch(p StatePatch) MissionState {
	s.mu.Lock()
	if p.DroneActive != nil {
		s.state.DroneActive = *p.DroneActive
	}
	if p.RecordingActive != nil {
		s.state.RecordingActive = *p.RecordingActive
	}
	if p.AIStatus != nil {
		s.state.AIStatus = *p.AIStatus
	}
	if p.Battery != nil {
		s.state.Battery = clampBattery(*p.Battery)
	}
	snap, notify := s.state.clone(), s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
	return snap
}

func clampBattery(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

/* ---------------------- epoch-checked mutators ---------------------- */

// The sequence drivers only ever touch the store through these. A stale
// epoch (mission reset or restarted since the caller captured it) makes the
// call a silent no-op.

func (s *Store) AdvanceDrone(epoch uint64) {
	s.applyStaged(epoch, func(m *MissionState) {
		m.DroneActive = true
	})
}

func (s *Store) AdvanceRecording(epoch uint64) {
	s.applyStaged(epoch, func(m *MissionState) {
		m.RecordingActive = true
	})
}

func (s *Store) AdvanceAI(epoch uint64, status AIStatus) {
	s.applyStaged(epoch, func(m *MissionState) {
		m.AIStatus = status
	})
}

func (s *Store) applyStaged(epoch uint64, mutate func(*MissionState)) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	mutate(&s.state)
	snap, notify := s.state.clone(), s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
}
