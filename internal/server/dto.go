package server

import (
	"MissionRelay/internal/mission"
)

// Wire field names are a contract with the operator UI and the trigger
// tool; they match the mission state record one to one.

type startRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type gpsDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type stateMsg struct {
	DroneActive     bool    `json:"drone_active"`
	RecordingActive bool    `json:"recording_active"`
	AIStatus        string  `json:"ai_status"`
	GPS             *gpsDTO `json:"gps"`
	Battery         int     `json:"battery"`
}

func stateToMsg(m mission.MissionState) stateMsg {
	msg := stateMsg{
		DroneActive:     m.DroneActive,
		RecordingActive: m.RecordingActive,
		AIStatus:        string(m.AIStatus),
		Battery:         m.Battery,
	}
	if m.GPS != nil {
		msg.GPS = &gpsDTO{Lat: m.GPS.Lat, Lon: m.GPS.Lon}
	}
	return msg
}

type patchRequest struct {
	DroneActive     *bool   `json:"drone_active"`
	RecordingActive *bool   `json:"recording_active"`
	AIStatus        *string `json:"ai_status"`
	Battery         *int    `json:"battery"`
}

func (p patchRequest) toPatch() mission.StatePatch {
	out := mission.StatePatch{
		DroneActive:     p.DroneActive,
		RecordingActive: p.RecordingActive,
		Battery:         p.Battery,
	}
	if p.AIStatus != nil {
		status := mission.ParseAIStatus(*p.AIStatus)
		out.AIStatus = &status
	}
	return out
}
