package mission

import (
	"errors"
	"testing"
)

func TestStartMissionStoresCoordinates(t *testing.T) {
	store := NewStore()

	epoch, err := store.StartMission(&Coordinates{Lat: 37.0, Lon: -122.0})
	if err != nil {
		t.Fatalf("StartMission failed: %v", err)
	}
	if epoch == 0 {
		t.Fatal("expected a non-zero epoch")
	}

	snap := store.Snapshot()
	if snap.GPS == nil {
		t.Fatal("expected GPS to be set")
	}
	if snap.GPS.Lat != 37.0 || snap.GPS.Lon != -122.0 {
		t.Errorf("GPS = (%.1f, %.1f), expected (37.0, -122.0)", snap.GPS.Lat, snap.GPS.Lon)
	}
	if snap.AIStatus != StatusInitializing {
		t.Errorf("AIStatus = %q, expected %q", snap.AIStatus, StatusInitializing)
	}
	if snap.DroneActive {
		t.Error("drone must not be active immediately after start")
	}
}

func TestStartMissionWithoutGPS(t *testing.T) {
	store := NewStore()

	if _, err := store.StartMission(nil); err != nil {
		t.Fatalf("StartMission failed: %v", err)
	}
	if snap := store.Snapshot(); snap.GPS != nil {
		t.Errorf("expected nil GPS, got (%.1f, %.1f)", snap.GPS.Lat, snap.GPS.Lon)
	}
}

func TestStartMissionRejectsWhileActive(t *testing.T) {
	store := NewStore()

	first, err := store.StartMission(&Coordinates{Lat: 1, Lon: 2})
	if err != nil {
		t.Fatalf("first StartMission failed: %v", err)
	}
	if _, err := store.StartMission(&Coordinates{Lat: 3, Lon: 4}); !errors.Is(err, ErrMissionActive) {
		t.Fatalf("second StartMission: got %v, expected ErrMissionActive", err)
	}

	// Rejected start must not touch state or epoch.
	if snap := store.Snapshot(); snap.GPS.Lat != 1 || snap.GPS.Lon != 2 {
		t.Errorf("GPS changed by rejected start: (%.1f, %.1f)", snap.GPS.Lat, snap.GPS.Lon)
	}
	if store.Epoch() != first {
		t.Errorf("epoch changed by rejected start: %d != %d", store.Epoch(), first)
	}
}

func TestResetRestoresDefaultsAndIsIdempotent(t *testing.T) {
	store := NewStore()
	epoch, _ := store.StartMission(&Coordinates{Lat: 9, Lon: 9})
	store.AdvanceDrone(epoch)
	store.AdvanceRecording(epoch)
	store.AdvanceAI(epoch, StatusHumanDetected)

	store.Reset()
	first := store.Snapshot()
	store.Reset()
	second := store.Snapshot()

	want := defaultState()
	for i, snap := range []MissionState{first, second} {
		if snap.DroneActive || snap.RecordingActive {
			t.Errorf("reset %d: activity flags not cleared", i+1)
		}
		if snap.AIStatus != want.AIStatus {
			t.Errorf("reset %d: AIStatus = %q, expected %q", i+1, snap.AIStatus, want.AIStatus)
		}
		if snap.GPS != nil {
			t.Errorf("reset %d: GPS not cleared", i+1)
		}
		if snap.Battery != want.Battery {
			t.Errorf("reset %d: Battery = %d, expected %d", i+1, snap.Battery, want.Battery)
		}
	}
}

func TestStaleEpochMutationsAreDropped(t *testing.T) {
	store := NewStore()
	epoch, _ := store.StartMission(&Coordinates{Lat: 5, Lon: 6})
	store.Reset()

	// Everything a leftover timer could do with the old epoch.
	store.AdvanceDrone(epoch)
	store.AdvanceRecording(epoch)
	store.AdvanceAI(epoch, StatusHumanDetected)

	snap := store.Snapshot()
	if snap.DroneActive || snap.RecordingActive || snap.AIStatus != StatusStandby {
		t.Errorf("stale mutations applied: %+v", snap)
	}

	// A fresh mission's epoch must still work.
	next, _ := store.StartMission(nil)
	store.AdvanceDrone(next)
	if !store.Snapshot().DroneActive {
		t.Error("current-epoch mutation was dropped")
	}
}

func TestSnapshotNeverMutates(t *testing.T) {
	store := NewStore()
	if _, err := store.StartMission(&Coordinates{Lat: 10, Lon: 20}); err != nil {
		t.Fatalf("StartMission failed: %v", err)
	}

	first := store.Snapshot()
	for i := 0; i < 10; i++ {
		snap := store.Snapshot()
		if snap.DroneActive != first.DroneActive ||
			snap.RecordingActive != first.RecordingActive ||
			snap.AIStatus != first.AIStatus ||
			snap.Battery != first.Battery {
			t.Fatalf("snapshot %d differs: %+v != %+v", i, snap, first)
		}
	}

	// Writing through a returned snapshot must not reach the store.
	first.GPS.Lat = -1
	if store.Snapshot().GPS.Lat != 10 {
		t.Error("snapshot aliasing: caller mutated stored GPS")
	}
}

func TestPatchAppliesExactlyProvidedFields(t *testing.T) {
	store := NewStore()
	active := true
	status := StatusMonitoring

	got := store.Patch(StatePatch{DroneActive: &active, AIStatus: &status})
	if !got.DroneActive {
		t.Error("DroneActive not applied")
	}
	if got.AIStatus != StatusMonitoring {
		t.Errorf("AIStatus = %q, expected %q", got.AIStatus, StatusMonitoring)
	}
	if got.RecordingActive {
		t.Error("RecordingActive changed without being provided")
	}
	if got.Battery != 100 {
		t.Errorf("Battery changed without being provided: %d", got.Battery)
	}
	if got.GPS != nil {
		t.Error("GPS changed without being provided")
	}
}

func TestPatchClampsBattery(t *testing.T) {
	cases := map[int]int{-5: 0, 0: 0, 42: 42, 100: 100, 250: 100}
	for input, expected := range cases {
		store := NewStore()
		v := input
		if got := store.Patch(StatePatch{Battery: &v}); got.Battery != expected {
			t.Errorf("Patch(battery=%d) = %d, expected %d", input, got.Battery, expected)
		}
	}
}

func TestOnChangeFiresWithSnapshots(t *testing.T) {
	store := NewStore()
	var seen []MissionState
	store.SetOnChange(func(m MissionState) { seen = append(seen, m) })

	epoch, _ := store.StartMission(nil)
	store.AdvanceDrone(epoch)
	store.Reset()
	store.AdvanceDrone(epoch) // stale, must not notify

	if len(seen) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(seen))
	}
	if seen[0].AIStatus != StatusInitializing {
		t.Errorf("first notification: AIStatus = %q", seen[0].AIStatus)
	}
	if !seen[1].DroneActive {
		t.Error("second notification should show the drone active")
	}
	if seen[2].AIStatus != StatusStandby {
		t.Errorf("third notification: AIStatus = %q", seen[2].AIStatus)
	}
}
