package reasoning

import (
	"fmt"
	"strings"

	"github.com/kidcosmo/sovereign-controller/internal/command"
)

// #region fallback

// Fallback builds the deterministic fail-safe response substituted whenever
// the engine times out, errors, or proposes something off the allowlist. The
// manifest still gets a complete interpretation and expected outcome; degraded
// decisions are audited with the same fidelity as reasoned ones.
func Fallback(req Request, profile command.Profile, reason string) Response {
	linkInput := "LINK_STABLE"
	context := "Degraded Mode"
	if req.DarkWindow {
		linkInput = "LINK_STATUS_BLACKOUT"
		context = "Isolated (Dark Window)"
	}

	inputs := []string{"ANOMALY_DETECTED", linkInput}
	anomalies := make([]string, len(req.Conditions))
	for i, c := range req.Conditions {
		anomalies[i] = string(c)
		inputs = append(inputs, string(c))
	}

	cmd := profile.FailSafe(req.Snapshot)

	return Response{
		Inputs: inputs,
		Interpretation: fmt.Sprintf("[%s] System detecting non-nominal state: %s. Reasoning unavailable (%s); conservative action substituted.",
			context, strings.Join(anomalies, ", "), reason),
		CommandText:     string(cmd.Mode),
		Command:         cmd,
		ExpectedOutcome: "Maintain stability and wait for conditions to improve.",
		RiskLevel:       "HIGH",
		CognitiveLoad:   0.85,
		SelfReflection:  fmt.Sprintf("Operating in %s. Physical intuition suggests conservative action.", strings.ToLower(context)),
		Fallback:        true,
	}
}

// #endregion fallback
