package command

import (
	"strings"
	"testing"
	"time"
)

// 1. Full field round trip through the 32-byte frame.
func TestAcoustic_RoundTrip(t *testing.T) {
	in := AcousticDecision{
		Mode:           ModeDepthHold,
		ConditionMask:  0b101,
		Timestamp:      time.Unix(1764000123, 0).UTC(),
		AltMeters:      -14.2,
		BatteryPct:     63,
		DarkWindow:     true,
		Validation:     AcousticClamped,
		Interpretation: "acoustic gone, holding",
	}
	out := UnpackAcoustic(PackAcoustic(in))

	if out.Mode != in.Mode {
		t.Errorf("mode: expected %s, got %s", in.Mode, out.Mode)
	}
	if out.ConditionMask != in.ConditionMask {
		t.Errorf("mask: expected %b, got %b", in.ConditionMask, out.ConditionMask)
	}
	if !out.Timestamp.Equal(in.Timestamp) {
		t.Errorf("timestamp: expected %v, got %v", in.Timestamp, out.Timestamp)
	}
	if out.AltMeters != -14.2 {
		t.Errorf("alt: expected -14.2, got %f", out.AltMeters)
	}
	if out.BatteryPct != 63 {
		t.Errorf("battery: expected 63, got %d", out.BatteryPct)
	}
	if !out.DarkWindow {
		t.Error("expected dark window flag set")
	}
	if out.Validation != AcousticClamped {
		t.Errorf("validation: expected clamped, got %d", out.Validation)
	}
	if out.Interpretation != in.Interpretation {
		t.Errorf("interpretation: expected %q, got %q", in.Interpretation, out.Interpretation)
	}
}

// 2. Interpretation truncates to the byte budget on a rune boundary.
func TestAcoustic_TruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("a", 19) + "é" // 'é' straddles the 20-byte budget
	in := AcousticDecision{Mode: ModeLoiter, Interpretation: long, BatteryPct: 50, Timestamp: time.Unix(1, 0)}
	out := UnpackAcoustic(PackAcoustic(in))

	if len(out.Interpretation) > AcousticSize-12 {
		t.Fatalf("interpretation exceeds budget: %d bytes", len(out.Interpretation))
	}
	if out.Interpretation != strings.Repeat("a", 19) {
		t.Errorf("expected clean truncation before the split rune, got %q", out.Interpretation)
	}
}

// 3. Unknown battery is the sentinel, altitude clamps at the int16 range.
func TestAcoustic_SentinelsAndClamps(t *testing.T) {
	out := UnpackAcoustic(PackAcoustic(AcousticDecision{
		Mode:       ModeSurface,
		BatteryPct: -1,
		AltMeters:  99999,
		Timestamp:  time.Unix(1, 0),
	}))
	if out.BatteryPct != -1 {
		t.Errorf("expected unknown battery sentinel, got %d", out.BatteryPct)
	}
	if out.AltMeters != 3276.7 {
		t.Errorf("expected altitude clamped to 3276.7, got %f", out.AltMeters)
	}
}
