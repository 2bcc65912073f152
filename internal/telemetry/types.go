package telemetry

import "time"

// #region fix-quality

// GPS fix quality values, matching the autopilot's GPS_FIX_TYPE numbering.
const (
	FixNone = 0
	Fix2D   = 2
	Fix3D   = 3
)

// #endregion

// #region attitude

// Attitude holds vehicle orientation in radians.
type Attitude struct {
	Pitch float64 `json:"p"`
	Roll  float64 `json:"r"`
	Yaw   float64 `json:"y"`
}

// #endregion

// #region frame

// Frame is one raw telemetry message as delivered by the vehicle bridge.
// Optional fields are pointers; nil means the bridge did not report them.
type Frame struct {
	T            float64            `json:"t"` // unix seconds
	GPSFix       *int               `json:"gps_fix,omitempty"`
	Sats         *int               `json:"sats,omitempty"`
	Attitude     *Attitude          `json:"attitude,omitempty"`
	Alt          *float64           `json:"alt,omitempty"` // meters; negative below surface
	HeartbeatAge *float64           `json:"heartbeat_age,omitempty"` // seconds since last link heartbeat
	BatteryV     *float64           `json:"battery_v,omitempty"`
	BatteryPct   *float64           `json:"battery_pct,omitempty"`
	Mode         string             `json:"mode,omitempty"`
	Extras       map[string]float64 `json:"extras,omitempty"`
}

// #endregion

// #region snapshot

// Snapshot is a normalized telemetry sample. Immutable once created;
// owned by the pipeline pass that produced it.
type Snapshot struct {
	Timestamp    time.Time
	GPSFix       int
	Sats         int
	SatsKnown    bool
	Attitude     Attitude
	Alt          float64
	HeartbeatAge time.Duration
	BatteryV     float64
	BatteryPct   float64
	BatteryKnown bool
	Mode         string
	Extras       map[string]float64
}

// Depth returns the depth below surface in meters (0 at or above surface).
func (s Snapshot) Depth() float64 {
	if s.Alt < 0 {
		return -s.Alt
	}
	return 0
}

// #endregion
