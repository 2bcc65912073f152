package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/kidcosmo/sovereign-controller/internal/replay"
	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// #region main

func main() {
	outPath := flag.String("out", "blackout_fixture.json", "output fixture JSON path")
	flag.Parse()

	fixture := buildBlackoutFixture()

	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal fixture: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *outPath, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d bytes, %d frames, %d replies)\n",
		*outPath, len(data), len(fixture.Frames), len(fixture.Replies))
}

// #endregion main

// #region scenario

const baseT = 1764000000 // fixed epoch so runs are reproducible

// buildBlackoutFixture scripts a full aerial blackout cycle at 1 Hz:
// five nominal ticks, a six-tick GPS and heartbeat blackout, then link
// recovery. One reply blocks past the deadline to exercise the fail-safe
// path mid-blackout.
func buildBlackoutFixture() replay.Fixture {
	var frames []telemetry.Frame
	for i := 0; i < 18; i++ {
		blackout := i >= 5 && i <= 10
		fix, sats, hb := 3, 12, 0.4
		if blackout {
			fix, sats, hb = 0, 2, 4.0+float64(i-5)
		}
		frames = append(frames, frame(baseT+float64(i), fix, sats, hb))
	}

	var replies []replay.FixtureReply
	for i := 5; i <= 15; i++ {
		if i == 7 {
			// Simulated provider hang: invoker abandons it at the deadline.
			replies = append(replies, replay.FixtureReply{Block: true})
			continue
		}
		replies = append(replies, replay.FixtureReply{Text: replyText(i <= 10)})
	}

	expected := []replay.FixtureExpected{
		{Tick: 0, State: "NORMAL", Action: "pass"},
		{Tick: 4, State: "NORMAL", Action: "pass"},
		{Tick: 5, State: "ENTERING", Action: "dispatch", Mode: "ALT_HOLD"},
		{Tick: 6, State: "ENTERING", Action: "dispatch", Mode: "ALT_HOLD"},
		{Tick: 7, State: "ENTERING", Action: "dispatch", Mode: "ALT_HOLD", FailSafe: true},
		{Tick: 8, State: "ACTIVE", Action: "dispatch", Mode: "ALT_HOLD"},
		{Tick: 10, State: "ACTIVE", Action: "dispatch", Mode: "ALT_HOLD"},
		{Tick: 11, State: "RECOVERING", Action: "dispatch", Mode: "LOITER"},
		{Tick: 15, State: "RECOVERING", Action: "dispatch", Mode: "LOITER"},
		{Tick: 16, State: "NORMAL", Action: "pass"},
		{Tick: 17, State: "NORMAL", Action: "pass"},
	}

	return replay.Fixture{
		Description: "SITL mock: aerial GPS+heartbeat blackout with mid-window reasoning timeout",
		Domain:      "aerial",
		Config: replay.FixtureConfig{
			Deadline: "50ms", // scripted engine, keep timeout ticks fast
		},
		Frames:   frames,
		Replies:  replies,
		Expected: expected,
	}
}

func frame(t float64, fix, sats int, hb float64) telemetry.Frame {
	alt := 50.0
	batt := 78.0
	return telemetry.Frame{
		T:            t,
		GPSFix:       &fix,
		Sats:         &sats,
		Attitude:     &telemetry.Attitude{Pitch: 0.02, Roll: -0.01, Yaw: 1.57},
		Alt:          &alt,
		HeartbeatAge: &hb,
		BatteryPct:   &batt,
		Mode:         "AUTO",
	}
}

// replyText renders a schema-conforming reasoning reply. During the
// blackout the scripted pilot asks for LOITER, which physics validation
// degrades to ALT_HOLD while the GPS fix is gone.
func replyText(blackout bool) string {
	interp := "Link nominal, holding position while the window drains."
	inputs := []string{"LINK_STABLE"}
	if blackout {
		interp = "GCS heartbeat stale and GPS fix lost. Holding position on remaining sensors."
		inputs = []string{"503_BLACKOUT", "GPS_FIX_LOST"}
	}
	body := map[string]any{
		"sensory_synthesis": map[string]any{
			"inputs":         inputs,
			"interpretation": interp,
		},
		"cognitive_load": 0.55,
		"internal_deliberation": []map[string]any{{
			"thought":         "A position hold preserves recovery options.",
			"confidence":      0.8,
			"action_rejected": "EMERGENCY_LAND",
		}},
		"mission_assurance_check": map[string]any{
			"risk_level":              "MEDIUM",
			"failure_mode_prediction": "drift accumulation without GPS",
			"mitigation_strategy":     "hold attitude, wait for link",
		},
		"decision": map[string]any{
			"actuator_command": "SWITCH_MODE LOITER",
			"expected_outcome": "vehicle holds position until link recovery",
		},
		"self_reflection": "Confidence bounded by stale telemetry.",
	}
	data, _ := json.Marshal(body)
	return string(data)
}

// #endregion scenario
