package server

import (
	"log"

	"MissionRelay/internal/mission"
)

// Driver modes. Sim advances the mission on wall-clock timers; hardware
// waits for acknowledgement callbacks from the real drone stack.
const (
	ModeSim      = "sim"
	ModeHardware = "hardware"
)

type AppConfig struct {
	ConfigPath      string
	Mode            string
	EnablePatch     bool
	TimingOverrides TimingOverrides
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		ConfigPath: "configs/mission.json",
		Mode:       ModeSim,
	}
}

func resolveTiming(cfg AppConfig) mission.SequenceTiming {
	timing := mission.DefaultSequenceTiming()
	loaded, err := loadTimingFromFile(cfg.ConfigPath, timing)
	if err != nil {
		log.Printf("mission config: %v (using defaults)", err)
	} else {
		timing = loaded
	}
	return applyTimingOverrides(timing, cfg.TimingOverrides)
}

func StartApp(addr string, cfg AppConfig) {
	timing := resolveTiming(cfg)
	store := mission.NewStore()

	var driver mission.Driver
	switch cfg.Mode {
	case ModeHardware:
		driver = mission.NewHardwareDriver(store)
	default:
		cfg.Mode = ModeSim
		driver = mission.NewSimDriver(store, timing)
	}

	hub := newStreamHub()
	store.SetOnChange(hub.Broadcast)

	a := &api{
		store:        store,
		driver:       driver,
		hub:          hub,
		patchEnabled: cfg.EnablePatch,
	}

	log.Printf("mission relay starting on %s (mode %s, patch %v, sequence %v/%v/%v)",
		addr, cfg.Mode, cfg.EnablePatch,
		timing.DroneDelay, timing.RecordingDelay, timing.DetectDelay)
	startServer(a, addr)
}
