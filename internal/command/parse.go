package command

import (
	"strconv"
	"strings"
)

// #region parse

// Parse maps the free-text actuator directive proposed by the reasoning
// function onto an enumerated command for the profile's domain. ok is false
// when the text maps to nothing on the allowlist; callers must treat that as
// an unusable proposal, never dispatch the raw text.
func Parse(p Profile, text string) (Command, bool) {
	upper := strings.ToUpper(strings.TrimSpace(text))
	if upper == "" {
		return Command{}, false
	}

	if p.Domain == DomainUnderwater {
		return parseUnderwater(upper)
	}
	return parseAerial(upper)
}

// #endregion parse

// #region aerial

func parseAerial(upper string) (Command, bool) {
	if strings.Contains(upper, "SWITCH_MODE") {
		target := strings.TrimSpace(upper[strings.Index(upper, "SWITCH_MODE")+len("SWITCH_MODE"):])
		switch {
		case strings.Contains(target, "HEADING_HOLD"), strings.Contains(target, "ALT_HOLD"):
			return Command{Mode: ModeAltHold}, true
		case strings.Contains(target, "LAND"):
			return Command{Mode: ModeLand}, true
		case strings.Contains(target, "STABILIZE"):
			return Command{Mode: ModeStabilize}, true
		case strings.Contains(target, "LOITER"):
			return Command{Mode: ModeLoiter}, true
		case strings.Contains(target, "RTL"):
			return Command{Mode: ModeRTL}, true
		}
		return Command{}, false
	}

	if strings.Contains(upper, "RC_OVERRIDE") {
		ov, ok := parseOverride(upper)
		if !ok {
			return Command{}, false
		}
		return Command{Mode: ModeStabilize, Override: ov}, true
	}

	switch {
	case strings.Contains(upper, "SUN_SAFE_ATTITUDE"), strings.Contains(upper, "MAINTAIN_STABILITY"):
		return Command{Mode: ModeAltHold}, true
	case strings.Contains(upper, "EMERGENCY_LAND"):
		return Command{Mode: ModeLand}, true
	case strings.Contains(upper, "STOP"), strings.Contains(upper, "HOVER"), strings.Contains(upper, "HOLD_POSITION"):
		return Command{Mode: ModeLoiter}, true
	case strings.Contains(upper, "ALT_HOLD"):
		return Command{Mode: ModeAltHold}, true
	case strings.Contains(upper, "LOITER"):
		return Command{Mode: ModeLoiter}, true
	case strings.Contains(upper, "STABILIZE"):
		return Command{Mode: ModeStabilize}, true
	case strings.Contains(upper, "RTL"):
		return Command{Mode: ModeRTL}, true
	case strings.Contains(upper, "LAND"):
		return Command{Mode: ModeLand}, true
	}
	return Command{}, false
}

// #endregion aerial

// #region underwater

func parseUnderwater(upper string) (Command, bool) {
	switch {
	case strings.Contains(upper, "SURFACE"):
		return Command{Mode: ModeSurface}, true
	case strings.Contains(upper, "DEPTH_HOLD"), strings.Contains(upper, "STAY"),
		strings.Contains(upper, "HOLD_POSITION"), strings.Contains(upper, "HOLD_DEPTH"):
		cmd := Command{Mode: ModeDepthHold}
		if d, ok := trailingNumber(upper); ok && d > 0 {
			cmd.TargetDepth = &d
		}
		return cmd, true
	case strings.Contains(upper, "STABILIZE"):
		return Command{Mode: ModeStabilize}, true
	case strings.Contains(upper, "MANUAL_HOLD"):
		return Command{Mode: ModeManualHold}, true
	}
	return Command{}, false
}

// #endregion underwater

// #region helpers

// parseOverride extracts "RC_OVERRIDE p r t y" channel values.
func parseOverride(upper string) (*RCOverride, bool) {
	var vals []int
	for _, f := range strings.Fields(upper) {
		if n, err := strconv.Atoi(f); err == nil {
			vals = append(vals, n)
		}
	}
	if len(vals) != 4 {
		return nil, false
	}
	return &RCOverride{Pitch: vals[0], Roll: vals[1], Throttle: vals[2], Yaw: vals[3]}, true
}

// trailingNumber returns the last numeric token in the text, if any.
func trailingNumber(upper string) (float64, bool) {
	fields := strings.Fields(upper)
	for i := len(fields) - 1; i >= 0; i-- {
		if v, err := strconv.ParseFloat(fields[i], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// #endregion helpers
