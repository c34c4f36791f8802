package mission

import (
	"log"
	"sync"
	"time"
)

// SequenceTiming holds the offsets, measured from mission start, at which
// the simulated activation sequence advances. Defaults match the demo
// hardware profile: drone airborne at +2s, recording at +5s, detection at
// +8s.
type SequenceTiming struct {
	DroneDelay     time.Duration
	RecordingDelay time.Duration
	DetectDelay    time.Duration
}

func DefaultSequenceTiming() SequenceTiming {
	return SequenceTiming{
		DroneDelay:     2 * time.Second,
		RecordingDelay: 5 * time.Second,
		DetectDelay:    8 * time.Second,
	}
}

// Sanitize enforces positive, strictly increasing offsets. Out-of-order
// values are pushed forward rather than rejected, so a bad config file
// still yields a sequence that completes.
func (t SequenceTiming) Sanitize() SequenceTiming {
	if t.DroneDelay <= 0 {
		t.DroneDelay = DefaultSequenceTiming().DroneDelay
	}
	if t.RecordingDelay <= t.DroneDelay {
		t.RecordingDelay = t.DroneDelay + time.Second
	}
	if t.DetectDelay <= t.RecordingDelay {
		t.DetectDelay = t.RecordingDelay + time.Second
	}
	return t
}

// Window is the maximum time from Launch until the terminal state.
func (t SequenceTiming) Window() time.Duration {
	return t.DetectDelay
}

// Driver advances a mission's state over time after an SOS dispatch. Both
// implementations touch the world only through the Store's epoch-checked
// mutators, so swapping simulation for hardware changes no other code.
type Driver interface {
	// Launch starts the activation sequence for the given epoch. It must
	// not block.
	Launch(epoch uint64)
	// Halt cancels anything pending. Safe to call at any time, including
	// before the first Launch.
	Halt()
}

/* ----------------------------- simulated ----------------------------- */

// SimDriver drives the sequence with wall-clock timers. Halt stops the
// pending timers; even without it, a fired timer holding a stale epoch is
// a no-op at the store.
type SimDriver struct {
	store  *Store
	timing SequenceTiming

	mu     sync.Mutex
	timers []*time.Timer
}

func NewSimDriver(store *Store, timing SequenceTiming) *SimDriver {
	return &SimDriver{store: store, timing: timing.Sanitize()}
}

func (d *SimDriver) Launch(epoch uint64) {
	d.Halt()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timers = []*time.Timer{
		time.AfterFunc(d.timing.DroneDelay, func() {
			d.store.AdvanceDrone(epoch)
		}),
		time.AfterFunc(d.timing.RecordingDelay, func() {
			d.store.AdvanceRecording(epoch)
			d.store.AdvanceAI(epoch, StatusMonitoring)
		}),
		time.AfterFunc(d.timing.DetectDelay, func() {
			d.store.AdvanceAI(epoch, StatusHumanDetected)
		}),
	}
}

func (d *SimDriver) Halt() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.timers {
		t.Stop()
	}
	d.timers = nil
}

/* ----------------------------- hardware ------------------------------ */

// HardwareDriver is the acknowledgement surface for a real drone stack.
// Launch arms it for an epoch; the flight controller, recorder, and
// detection pipeline each call back as they come up. Acknowledgements
// arriving while disarmed, or for an old epoch, are dropped.
type HardwareDriver struct {
	store *Store

	mu    sync.Mutex
	epoch uint64
	armed bool
}

func NewHardwareDriver(store *Store) *HardwareDriver {
	return &HardwareDriver{store: store}
}

func (d *HardwareDriver) Launch(epoch uint64) {
	d.mu.Lock()
	d.epoch = epoch
	d.armed = true
	d.mu.Unlock()
	log.Printf("hardware driver armed (epoch %d), waiting for acknowledgements", epoch)
}

func (d *HardwareDriver) Halt() {
	d.mu.Lock()
	d.armed = false
	d.mu.Unlock()
}

func (d *HardwareDriver) current() (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.epoch, d.armed
}

// DroneReady reports that the drone subsystem acknowledged startup.
func (d *HardwareDriver) DroneReady() {
	if epoch, ok := d.current(); ok {
		d.store.AdvanceDrone(epoch)
	}
}

// RecordingConfirmed reports that the camera/recording system is live.
func (d *HardwareDriver) RecordingConfirmed() {
	if epoch, ok := d.current(); ok {
		d.store.AdvanceRecording(epoch)
		d.store.AdvanceAI(epoch, StatusMonitoring)
	}
}

// HumanDetected reports a positive detection from the vision pipeline.
func (d *HardwareDriver) HumanDetected() {
	if epoch, ok := d.current(); ok {
		d.store.AdvanceAI(epoch, StatusHumanDetected)
	}
}
