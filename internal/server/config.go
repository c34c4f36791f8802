package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"MissionRelay/internal/mission"
)

type sequenceConfig struct {
	DroneDelayS     *float64 `json:"droneDelayS"`
	RecordingDelayS *float64 `json:"recordingDelayS"`
	DetectDelayS    *float64 `json:"detectDelayS"`
}

type missionConfig struct {
	Sequence *sequenceConfig `json:"sequence"`
}

// TimingOverrides represents optional command-line overrides for the
// activation sequence offsets, in seconds.
type TimingOverrides struct {
	DroneDelayS     *float64
	RecordingDelayS *float64
	DetectDelayS    *float64
}

func (o TimingOverrides) apply(base mission.SequenceTiming) mission.SequenceTiming {
	if o.DroneDelayS != nil {
		base.DroneDelay = secondsToDuration(*o.DroneDelayS)
	}
	if o.RecordingDelayS != nil {
		base.RecordingDelay = secondsToDuration(*o.RecordingDelayS)
	}
	if o.DetectDelayS != nil {
		base.DetectDelay = secondsToDuration(*o.DetectDelayS)
	}
	return base.Sanitize()
}

func mergeSequenceConfig(base mission.SequenceTiming, cfg *sequenceConfig) mission.SequenceTiming {
	if cfg == nil {
		return base
	}
	if cfg.DroneDelayS != nil {
		base.DroneDelay = secondsToDuration(*cfg.DroneDelayS)
	}
	if cfg.RecordingDelayS != nil {
		base.RecordingDelay = secondsToDuration(*cfg.RecordingDelayS)
	}
	if cfg.DetectDelayS != nil {
		base.DetectDelay = secondsToDuration(*cfg.DetectDelayS)
	}
	return base.Sanitize()
}

func loadTimingFromFile(path string, base mission.SequenceTiming) (mission.SequenceTiming, error) {
	if path == "" {
		return base.Sanitize(), nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return base.Sanitize(), nil
		}
		return base.Sanitize(), fmt.Errorf("read mission config %q: %w", cleanPath, err)
	}
	var cfg missionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return base.Sanitize(), fmt.Errorf("parse mission config %q: %w", cleanPath, err)
	}
	return mergeSequenceConfig(base, cfg.Sequence), nil
}

func applyTimingOverrides(base mission.SequenceTiming, overrides TimingOverrides) mission.SequenceTiming {
	return overrides.apply(base)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
