package reasoning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// #region system

// SystemPrompt returns the system message for the engine. darkWindow adds the
// epistemic-isolation framing.
func SystemPrompt(darkWindow bool) string {
	s := "You are an expert autonomous pilot reasoning engine. Output ONLY raw JSON matching the requested schema."
	if darkWindow {
		s += " CRITICAL: You are in a DARK WINDOW blackout. No external link. Rely solely on onboard sensors."
	}
	return s
}

// #endregion system

// #region prompt

const schemaBlock = `{
    "sensory_synthesis": {
      "inputs": ["list", "of", "sensor", "alerts"],
      "interpretation": "narrative interpretation of sensors"
    },
    "cognitive_load": 0.0-1.0,
    "internal_deliberation": [
      { "thought": "internal agent thought", "confidence": 0.0-1.0, "action_rejected": "string" }
    ],
    "mission_assurance_check": {
      "risk_level": "LOW|MEDIUM|HIGH|CRITICAL",
      "failure_mode_prediction": "prediction of what happens next",
      "mitigation_strategy": "what to do to fix it"
    },
    "decision": {
      "actuator_command": "command string",
      "expected_outcome": "what is expected"
    },
    "self_reflection": "reflection on the event"
}`

// BuildPrompt renders the request into the engine prompt.
func BuildPrompt(req Request) string {
	isolation := ""
	if req.DarkWindow {
		isolation = "CRITICAL: You are isolated. No external link. Use onboard intuition.\n"
	}

	anomalies := make([]string, len(req.Conditions))
	for i, c := range req.Conditions {
		anomalies[i] = string(c)
	}

	snap := map[string]any{
		"t":             req.Snapshot.Timestamp.Unix(),
		"gps_fix":       req.Snapshot.GPSFix,
		"attitude":      req.Snapshot.Attitude,
		"alt":           req.Snapshot.Alt,
		"heartbeat_age": req.Snapshot.HeartbeatAge.Seconds(),
		"mode":          req.Snapshot.Mode,
	}
	if req.Snapshot.BatteryKnown {
		snap["battery_pct"] = req.Snapshot.BatteryPct
	}
	for k, v := range req.Snapshot.Extras {
		snap[k] = v
	}
	telemetryJSON, _ := json.Marshal(snap)

	return fmt.Sprintf(`Analyze the following telemetry and anomaly. Generate a 'Reasoning Manifest' JSON object.
%s
MISSION: %s
ENVIRONMENT: %s
ANOMALY: %s
TELEMETRY: %s

REQUIRED JSON STRUCTURE:
%s
`, isolation, req.MissionID, req.Environment, strings.Join(anomalies, ", "), telemetryJSON, schemaBlock)
}

// #endregion prompt
