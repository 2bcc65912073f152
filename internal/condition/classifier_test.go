package condition

import (
	"testing"
	"time"

	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// helper: nominal aerial snapshot at the given second.
func nominalSnap(sec int64) telemetry.Snapshot {
	return telemetry.Snapshot{
		Timestamp:    time.Unix(sec, 0).UTC(),
		GPSFix:       telemetry.Fix3D,
		Alt:          50,
		HeartbeatAge: 300 * time.Millisecond,
		BatteryPct:   80,
		BatteryKnown: true,
	}
}

// helper: snapshot with GPS fix lost.
func gpsLostSnap(sec int64) telemetry.Snapshot {
	s := nominalSnap(sec)
	s.GPSFix = telemetry.FixNone
	return s
}

// helper: snapshot with stale heartbeat as well.
func blackoutSnap(sec int64) telemetry.Snapshot {
	s := gpsLostSnap(sec)
	s.HeartbeatAge = 5 * time.Second
	return s
}

func newAerialClassifier() (*Classifier, *telemetry.History) {
	h := telemetry.NewHistory(16)
	c := NewClassifier(DefaultClassifierConfig(), AerialRules(DefaultTriggerConfig()))
	return c, h
}

func stepThrough(c *Classifier, h *telemetry.History, snaps ...telemetry.Snapshot) []Result {
	results := make([]Result, 0, len(snaps))
	for _, s := range snaps {
		h.Push(s)
		results = append(results, c.Classify(h))
	}
	return results
}

// 1. Nominal telemetry never leaves NORMAL.
func TestClassifier_NominalStaysNormal(t *testing.T) {
	c, h := newAerialClassifier()
	results := stepThrough(c, h, nominalSnap(1), nominalSnap(2), nominalSnap(3))
	for i, r := range results {
		if r.State != StateNormal {
			t.Errorf("tick %d: expected NORMAL, got %s", i, r.State)
		}
		if len(r.Active) != 0 {
			t.Errorf("tick %d: expected no active conditions, got %v", i, r.Kinds())
		}
	}
}

// 2. A single-tick transient enters ENTERING and drops straight back to
// NORMAL; it can never reach ACTIVE inside the debounce window.
func TestClassifier_TransientNeverActivates(t *testing.T) {
	c, h := newAerialClassifier()
	results := stepThrough(c, h,
		nominalSnap(1),
		gpsLostSnap(2), // transient
		nominalSnap(3),
		nominalSnap(4),
	)
	want := []WindowState{StateNormal, StateEntering, StateNormal, StateNormal}
	for i, r := range results {
		if r.State != want[i] {
			t.Errorf("tick %d: expected %s, got %s", i, want[i], r.State)
		}
		if r.State == StateActive {
			t.Fatalf("tick %d: transient reached ACTIVE", i)
		}
	}
}

// 3. Full cycle: sustained trigger debounces into ACTIVE after d_in, clears
// through RECOVERING, and returns to NORMAL only after d_out.
func TestClassifier_FullCycle(t *testing.T) {
	c, h := newAerialClassifier()
	results := stepThrough(c, h,
		nominalSnap(1),  // NORMAL
		gpsLostSnap(2),  // ENTERING, hold anchored at t=2
		gpsLostSnap(3),  // ENTERING (1s)
		gpsLostSnap(4),  // ENTERING (2s)
		gpsLostSnap(5),  // ACTIVE   (3s >= d_in)
		gpsLostSnap(6),  // ACTIVE
		nominalSnap(7),  // RECOVERING, clear anchored at t=7
		nominalSnap(10), // RECOVERING (3s)
		nominalSnap(12), // NORMAL    (5s >= d_out)
	)
	want := []WindowState{
		StateNormal, StateEntering, StateEntering, StateEntering,
		StateActive, StateActive, StateRecovering, StateRecovering, StateNormal,
	}
	for i, r := range results {
		if r.State != want[i] {
			t.Errorf("tick %d: expected %s, got %s", i, want[i], r.State)
		}
	}
}

// 4. Re-trigger during RECOVERING returns straight to ACTIVE with no new
// entry debounce.
func TestClassifier_RetriggerDuringRecovery(t *testing.T) {
	c, h := newAerialClassifier()
	results := stepThrough(c, h,
		gpsLostSnap(1),
		gpsLostSnap(2),
		gpsLostSnap(3),
		gpsLostSnap(4), // ACTIVE
		nominalSnap(5), // RECOVERING
		gpsLostSnap(6), // straight back to ACTIVE
	)
	if got := results[3].State; got != StateActive {
		t.Fatalf("tick 3: expected ACTIVE, got %s", got)
	}
	if got := results[4].State; got != StateRecovering {
		t.Fatalf("tick 4: expected RECOVERING, got %s", got)
	}
	if got := results[5].State; got != StateActive {
		t.Errorf("tick 5: expected immediate ACTIVE on re-trigger, got %s", got)
	}
}

// 5. Multiple simultaneous triggers are all reported; downstream reasoning
// sees the union.
func TestClassifier_MultiConditionUnion(t *testing.T) {
	c, h := newAerialClassifier()
	h.Push(blackoutSnap(1))
	r := c.Classify(h)

	kinds := r.Kinds()
	if len(kinds) != 2 {
		t.Fatalf("expected 2 active conditions, got %v", kinds)
	}
	seen := map[Kind]bool{}
	for _, k := range kinds {
		seen[k] = true
	}
	if !seen[GPSLoss] || !seen[CommsLoss] {
		t.Errorf("expected GPS_LOSS and COMMS_LOSS, got %v", kinds)
	}
}

// 6. A superseding higher-severity condition keeps the running debounce; a
// weaker different condition restarts it.
func TestClassifier_AnchorContinuity(t *testing.T) {
	c, h := newAerialClassifier()
	// GPS loss (Caution) anchors at t=1, then comms loss (Critical) replaces
	// it: debounce must not restart, so ACTIVE lands at t=4.
	results := stepThrough(c, h,
		gpsLostSnap(1),
		func() telemetry.Snapshot {
			s := nominalSnap(2)
			s.HeartbeatAge = 5 * time.Second // comms loss only
			return s
		}(),
		func() telemetry.Snapshot {
			s := nominalSnap(3)
			s.HeartbeatAge = 6 * time.Second
			return s
		}(),
		func() telemetry.Snapshot {
			s := nominalSnap(4)
			s.HeartbeatAge = 7 * time.Second
			return s
		}(),
	)
	want := []WindowState{StateEntering, StateEntering, StateEntering, StateActive}
	for i, r := range results {
		if r.State != want[i] {
			t.Errorf("tick %d: expected %s, got %s", i, want[i], r.State)
		}
	}
}

// 7. Zero entry debounce activates on the first trigger tick.
func TestClassifier_ZeroDebounceIn(t *testing.T) {
	h := telemetry.NewHistory(4)
	cfg := DefaultClassifierConfig()
	cfg.DebounceIn = 0
	c := NewClassifier(cfg, AerialRules(DefaultTriggerConfig()))

	h.Push(gpsLostSnap(1))
	if r := c.Classify(h); r.State != StateActive {
		t.Errorf("expected immediate ACTIVE with zero debounce, got %s", r.State)
	}
}

// 8. Dark covers every non-NORMAL state.
func TestWindowState_Dark(t *testing.T) {
	if StateNormal.Dark() {
		t.Error("NORMAL must not be dark")
	}
	for _, s := range []WindowState{StateEntering, StateActive, StateRecovering} {
		if !s.Dark() {
			t.Errorf("%s must be dark", s)
		}
	}
}

// 9. Bitmask assigns each kind a stable bit.
func TestBitmask_StableBits(t *testing.T) {
	m := Bitmask([]Kind{GPSLoss, CommsLoss})
	if m == 0 {
		t.Fatal("expected nonzero mask")
	}
	if m != Bitmask([]Kind{CommsLoss, GPSLoss}) {
		t.Error("expected order-independent mask")
	}
	if Bitmask([]Kind{GPSLoss})&Bitmask([]Kind{CommsLoss}) != 0 {
		t.Error("expected disjoint bits per kind")
	}
}
