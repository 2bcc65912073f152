package command

// #region mode

// Mode is an autopilot flight/dive mode directive.
type Mode string

const (
	ModeAltHold    Mode = "ALT_HOLD"
	ModeLoiter     Mode = "LOITER"
	ModeLand       Mode = "LAND"
	ModeStabilize  Mode = "STABILIZE"
	ModeRTL        Mode = "RTL"
	ModeDepthHold  Mode = "DEPTH_HOLD"
	ModeSurface    Mode = "SURFACE"
	ModeManualHold Mode = "MANUAL_HOLD"
)

// #endregion

// #region rc-override

// RC channel override bounds in microseconds.
const (
	RCPulseMin = 1000
	RCPulseMax = 2000
)

// RCOverride carries emergency channel overrides (roll, pitch, throttle, yaw).
type RCOverride struct {
	Roll     int `json:"roll"`
	Pitch    int `json:"pitch"`
	Throttle int `json:"throttle"`
	Yaw      int `json:"yaw"`
}

// #endregion

// #region command

// Command is one actuator directive: a mode plus optional bounded parameters.
// Only commands whose Mode is on the domain allowlist may ever be dispatched.
type Command struct {
	Mode        Mode        `json:"mode"`
	Override    *RCOverride `json:"override,omitempty"`
	TargetDepth *float64    `json:"target_depth,omitempty"` // meters, underwater only
}

// String renders the command the way manifests record it.
func (c Command) String() string {
	s := string(c.Mode)
	if c.Override != nil {
		s += " +RC_OVERRIDE"
	}
	return s
}

// #endregion
