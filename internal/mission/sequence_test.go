package mission

import (
	"testing"
	"time"
)

func testTiming() SequenceTiming {
	return SequenceTiming{
		DroneDelay:     10 * time.Millisecond,
		RecordingDelay: 20 * time.Millisecond,
		DetectDelay:    30 * time.Millisecond,
	}
}

// waitFor polls the store until cond holds or the deadline passes.
func waitFor(t *testing.T, store *Store, deadline time.Duration, cond func(MissionState) bool) MissionState {
	t.Helper()
	stop := time.Now().Add(deadline)
	for {
		snap := store.Snapshot()
		if cond(snap) {
			return snap
		}
		if time.Now().After(stop) {
			t.Fatalf("condition not reached before deadline, state: %+v", snap)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestSimDriverCompletesSequence(t *testing.T) {
	store := NewStore()
	driver := NewSimDriver(store, testTiming())

	epoch, err := store.StartMission(&Coordinates{Lat: 37.0, Lon: -122.0})
	if err != nil {
		t.Fatalf("StartMission failed: %v", err)
	}
	driver.Launch(epoch)

	snap := waitFor(t, store, time.Second, func(m MissionState) bool {
		return m.AIStatus == StatusHumanDetected
	})
	if !snap.DroneActive || !snap.RecordingActive {
		t.Errorf("terminal state missing activity flags: %+v", snap)
	}
	if snap.GPS == nil || snap.GPS.Lat != 37.0 {
		t.Errorf("GPS lost during sequence: %+v", snap.GPS)
	}
}

func TestSimDriverOrdering(t *testing.T) {
	store := NewStore()
	// Wide gaps so an observation between stages cannot race the next one.
	driver := NewSimDriver(store, SequenceTiming{
		DroneDelay:     20 * time.Millisecond,
		RecordingDelay: 150 * time.Millisecond,
		DetectDelay:    300 * time.Millisecond,
	})

	epoch, _ := store.StartMission(nil)
	driver.Launch(epoch)

	snap := waitFor(t, store, time.Second, func(m MissionState) bool { return m.DroneActive })
	if snap.RecordingActive {
		t.Error("recording active before drone stage completed the window")
	}

	snap = waitFor(t, store, time.Second, func(m MissionState) bool { return m.RecordingActive })
	if snap.AIStatus != StatusMonitoring && snap.AIStatus != StatusHumanDetected {
		t.Errorf("AIStatus = %q after recording stage", snap.AIStatus)
	}
}

func TestResetMidSequenceStopsAllTransitions(t *testing.T) {
	store := NewStore()
	timing := testTiming()
	driver := NewSimDriver(store, timing)

	epoch, _ := store.StartMission(&Coordinates{Lat: 1, Lon: 1})
	driver.Launch(epoch)

	waitFor(t, store, time.Second, func(m MissionState) bool { return m.DroneActive })
	store.Reset()
	driver.Halt()

	// Sleep past the old sequence's full window; nothing may change.
	time.Sleep(timing.Window() + 20*time.Millisecond)
	snap := store.Snapshot()
	if snap.DroneActive || snap.RecordingActive || snap.AIStatus != StatusStandby {
		t.Errorf("state mutated after reset: %+v", snap)
	}
}

func TestStaleTimersWithoutHaltAreStillNoOps(t *testing.T) {
	store := NewStore()
	timing := testTiming()
	driver := NewSimDriver(store, timing)

	epoch, _ := store.StartMission(nil)
	driver.Launch(epoch)
	// Reset without halting the driver: the epoch guard alone must hold.
	store.Reset()

	time.Sleep(timing.Window() + 20*time.Millisecond)
	snap := store.Snapshot()
	if snap.DroneActive || snap.RecordingActive || snap.AIStatus != StatusStandby {
		t.Errorf("stale timer wrote through epoch guard: %+v", snap)
	}
}

func TestHardwareDriverAcknowledgements(t *testing.T) {
	store := NewStore()
	driver := NewHardwareDriver(store)

	epoch, _ := store.StartMission(&Coordinates{Lat: 2, Lon: 3})
	driver.Launch(epoch)

	driver.DroneReady()
	if !store.Snapshot().DroneActive {
		t.Fatal("DroneReady not applied")
	}
	driver.RecordingConfirmed()
	snap := store.Snapshot()
	if !snap.RecordingActive || snap.AIStatus != StatusMonitoring {
		t.Fatalf("RecordingConfirmed not applied: %+v", snap)
	}
	driver.HumanDetected()
	if store.Snapshot().AIStatus != StatusHumanDetected {
		t.Fatal("HumanDetected not applied")
	}
}

func TestHardwareDriverDropsWhenDisarmed(t *testing.T) {
	store := NewStore()
	driver := NewHardwareDriver(store)

	// Never launched: acknowledgements go nowhere.
	driver.DroneReady()
	if store.Snapshot().DroneActive {
		t.Fatal("acknowledgement applied while disarmed")
	}

	epoch, _ := store.StartMission(nil)
	driver.Launch(epoch)
	driver.Halt()
	driver.DroneReady()
	if store.Snapshot().DroneActive {
		t.Fatal("acknowledgement applied after halt")
	}
}

func TestSanitizeTiming(t *testing.T) {
	got := SequenceTiming{
		DroneDelay:     4 * time.Second,
		RecordingDelay: time.Second,
		DetectDelay:    0,
	}.Sanitize()

	if got.DroneDelay != 4*time.Second {
		t.Errorf("DroneDelay = %v", got.DroneDelay)
	}
	if got.RecordingDelay <= got.DroneDelay {
		t.Errorf("RecordingDelay %v not after DroneDelay %v", got.RecordingDelay, got.DroneDelay)
	}
	if got.DetectDelay <= got.RecordingDelay {
		t.Errorf("DetectDelay %v not after RecordingDelay %v", got.DetectDelay, got.RecordingDelay)
	}
}
