package mission

// AIStatus is the detection pipeline's reported phase. The string values are
// part of the wire contract with the operator UI and must not change.
type AIStatus string

const (
	StatusStandby       AIStatus = "Standby"
	StatusInitializing  AIStatus = "Initializing"
	StatusMonitoring    AIStatus = "Monitoring"
	StatusHumanDetected AIStatus = "Human Detected"
)

// ParseAIStatus types a wire string as a status. Unknown strings pass
// through unchanged so a hardware driver can report intermediate phases;
// the UI renders those with the fallback indicator.
func ParseAIStatus(s string) AIStatus {
	return AIStatus(s)
}

/* --------------------------- UI indicators --------------------------- */

// Indicator values are percentage-like numbers the UI renders as progress
// bars. The mapping is a fixed contract shared with the web client; keep
// web/src/main.ts in sync when changing it.

const (
	indicatorFull           = 100
	indicatorDronePartial   = 30 // drone initializing
	indicatorRecordPartial  = 50 // recording connecting
	indicatorAIMonitoring   = 70
	indicatorAIInitializing = 40
	indicatorAIBase         = 20
)

// AIIndicator returns the progress value for the AI status bar.
func AIIndicator(s AIStatus) int {
	switch s {
	case StatusHumanDetected:
		return indicatorFull
	case StatusMonitoring:
		return indicatorAIMonitoring
	case StatusInitializing:
		return indicatorAIInitializing
	}
	return indicatorAIBase
}

// DroneIndicator returns the progress value for the drone status bar.
func DroneIndicator(active bool) int {
	if active {
		return indicatorFull
	}
	return indicatorDronePartial
}

// RecordingIndicator returns the progress value for the recording status bar.
func RecordingIndicator(active bool) int {
	if active {
		return indicatorFull
	}
	return indicatorRecordPartial
}
