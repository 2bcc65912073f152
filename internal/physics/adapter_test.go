package physics

import (
	"strings"
	"testing"

	"github.com/kidcosmo/sovereign-controller/internal/command"
	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// permissiveOracle accepts everything; used to isolate the adapter's own
// allowlist layer.
type permissiveOracle struct{}

func (permissiveOracle) Check(command.Command, telemetry.Snapshot) Outcome {
	return Outcome{Disposition: DispositionOK}
}

// wideningOracle adjusts any command onto an off-list mode.
type wideningOracle struct{}

func (wideningOracle) Check(cmd command.Command, _ telemetry.Snapshot) Outcome {
	adj := cmd
	adj.Mode = command.ModeSurface // not on the aerial allowlist
	return Outcome{Disposition: DispositionAdjusted, Adjusted: adj, Reason: "widen"}
}

func aerialSnap(fix int, alt float64) telemetry.Snapshot {
	return telemetry.Snapshot{GPSFix: fix, Alt: alt}
}

// 1. Off-allowlist modes are rejected before the oracle ever runs.
func TestValidate_AllowlistDefenseInDepth(t *testing.T) {
	a := NewAdapter(permissiveOracle{}, command.AerialProfile())

	res := a.Validate(command.Command{Mode: command.ModeDepthHold}, aerialSnap(3, 50))
	if res.Status != StatusRejected {
		t.Fatalf("expected REJECTED, got %s", res.Status)
	}
	if !strings.Contains(res.Reason, "allowlist") {
		t.Errorf("expected allowlist reason, got %q", res.Reason)
	}
}

// 2. An oracle adjustment cannot widen mode legality.
func TestValidate_AdjustedModeRechecked(t *testing.T) {
	a := NewAdapter(wideningOracle{}, command.AerialProfile())

	res := a.Validate(command.Command{Mode: command.ModeLoiter}, aerialSnap(3, 50))
	if res.Status != StatusRejected {
		t.Errorf("expected REJECTED when adjustment leaves the allowlist, got %s", res.Status)
	}
}

// 3. Accepted commands pass through unchanged; Final returns the original.
func TestValidate_Accepted(t *testing.T) {
	a := NewAdapter(NewEnvelopeOracle(DefaultEnvelopeConfig()), command.AerialProfile())

	cmd := command.Command{Mode: command.ModeLoiter}
	res := a.Validate(cmd, aerialSnap(3, 50))
	if res.Status != StatusAccepted {
		t.Fatalf("expected ACCEPTED, got %s (%s)", res.Status, res.Reason)
	}
	if res.Final().Mode != command.ModeLoiter {
		t.Errorf("expected final LOITER, got %s", res.Final().Mode)
	}
}

// 4. GPS degradation: LOITER without a 3D fix is clamped to ALT_HOLD, and
// the dispatched command is the adjusted one.
func TestValidate_GPSDegradation(t *testing.T) {
	a := NewAdapter(NewEnvelopeOracle(DefaultEnvelopeConfig()), command.AerialProfile())

	res := a.Validate(command.Command{Mode: command.ModeLoiter}, aerialSnap(0, 50))
	if res.Status != StatusClamped {
		t.Fatalf("expected CLAMPED, got %s", res.Status)
	}
	if res.Original.Mode != command.ModeLoiter {
		t.Errorf("expected original LOITER preserved, got %s", res.Original.Mode)
	}
	if res.Final().Mode != command.ModeAltHold {
		t.Errorf("expected final ALT_HOLD, got %s", res.Final().Mode)
	}
}

// 5. Holding below the altitude floor lands instead.
func TestValidate_AltitudeFloor(t *testing.T) {
	a := NewAdapter(NewEnvelopeOracle(DefaultEnvelopeConfig()), command.AerialProfile())

	res := a.Validate(command.Command{Mode: command.ModeAltHold}, aerialSnap(3, 1.2))
	if res.Status != StatusClamped {
		t.Fatalf("expected CLAMPED, got %s", res.Status)
	}
	if res.Final().Mode != command.ModeLand {
		t.Errorf("expected final LAND, got %s", res.Final().Mode)
	}
}

// 6. RC override channels clamp to the legal pulse range.
func TestValidate_OverrideClamp(t *testing.T) {
	a := NewAdapter(NewEnvelopeOracle(DefaultEnvelopeConfig()), command.AerialProfile())

	cmd := command.Command{
		Mode:     command.ModeStabilize,
		Override: &command.RCOverride{Roll: 900, Pitch: 1500, Throttle: 2300, Yaw: 1500},
	}
	res := a.Validate(cmd, aerialSnap(3, 50))
	if res.Status != StatusClamped {
		t.Fatalf("expected CLAMPED, got %s", res.Status)
	}
	ov := res.Final().Override
	if ov == nil {
		t.Fatal("expected override preserved")
	}
	if ov.Roll != command.RCPulseMin || ov.Throttle != command.RCPulseMax {
		t.Errorf("expected clamped channels, got roll=%d throttle=%d", ov.Roll, ov.Throttle)
	}
	if cmd.Override.Roll != 900 {
		t.Error("expected original override untouched")
	}
}
