package main

import (
	"flag"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"MissionRelay/internal/server"
)

// Env vars provide deployment defaults (a .env file on the field unit);
// flags override them.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("MISSION_ADDR", ":8080"), "address to listen on (e.g., 0.0.0.0:8080)")
	configPath := flag.String("config", envOr("MISSION_CONFIG", "configs/mission.json"), "path to sequence timing JSON")
	mode := flag.String("mode", envOr("MISSION_MODE", server.ModeSim), "sequence driver: sim or hardware")
	enablePatch := flag.Bool("enable-patch", envBool("MISSION_ENABLE_PATCH", false), "allow direct state patches (developer tooling)")
	droneDelay := flag.Float64("drone-delay", math.NaN(), "override drone activation offset in seconds")
	recordingDelay := flag.Float64("recording-delay", math.NaN(), "override recording start offset in seconds")
	detectDelay := flag.Float64("detect-delay", math.NaN(), "override detection offset in seconds")
	flag.Parse()

	cfg := server.DefaultAppConfig()
	cfg.ConfigPath = *configPath
	cfg.Mode = *mode
	cfg.EnablePatch = *enablePatch

	var overrides server.TimingOverrides

	if !math.IsNaN(*droneDelay) {
		val := *droneDelay
		overrides.DroneDelayS = &val
	}
	if !math.IsNaN(*recordingDelay) {
		val := *recordingDelay
		overrides.RecordingDelayS = &val
	}
	if !math.IsNaN(*detectDelay) {
		val := *detectDelay
		overrides.DetectDelayS = &val
	}

	cfg.TimingOverrides = overrides

	server.StartApp(*addr, cfg)
}
