package pilot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kidcosmo/sovereign-controller/internal/command"
	"github.com/kidcosmo/sovereign-controller/internal/condition"
	"github.com/kidcosmo/sovereign-controller/internal/manifest"
	"github.com/kidcosmo/sovereign-controller/internal/physics"
	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// #region fakes

// textEngine returns fixed text, an error, or blocks until cancellation.
type textEngine struct {
	text  string
	err   error
	block bool
	calls int
}

func (f *textEngine) Infer(ctx context.Context, system, prompt string) (string, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

// recordSink records dispatches and optionally fails them.
type recordSink struct {
	commands []command.Command
	fail     error
}

func (s *recordSink) Dispatch(_ context.Context, cmd command.Command) error {
	s.commands = append(s.commands, cmd)
	return s.fail
}

// recordEmitter collects manifests synchronously.
type recordEmitter struct {
	manifests []manifest.Manifest
}

func (e *recordEmitter) Emit(m manifest.Manifest) {
	e.manifests = append(e.manifests, m)
}

// rejectingOracle refuses every command outright.
type rejectingOracle struct{}

func (rejectingOracle) Check(command.Command, telemetry.Snapshot) physics.Outcome {
	return physics.Outcome{Disposition: physics.DispositionRejected, Reason: "envelope violated"}
}

// #endregion fakes

// #region helpers

func wireResponse(actuatorCommand string) string {
	return fmt.Sprintf(`{
		"sensory_synthesis": {"inputs": ["503_BLACKOUT"], "interpretation": "link lost, holding"},
		"cognitive_load": 0.6,
		"mission_assurance_check": {"risk_level": "MEDIUM"},
		"decision": {"actuator_command": %q, "expected_outcome": "position held"}
	}`, actuatorCommand)
}

func rawFrame(sec int64, fix int, hb float64) telemetry.Frame {
	sats, alt, batt := 10, 50.0, 75.0
	return telemetry.Frame{
		T:            float64(sec),
		GPSFix:       &fix,
		Sats:         &sats,
		Attitude:     &telemetry.Attitude{Yaw: 1.0},
		Alt:          &alt,
		HeartbeatAge: &hb,
		BatteryPct:   &batt,
	}
}

func newTestSession(engine *textEngine, oracle physics.Oracle, sink *recordSink, emitter *recordEmitter) *Session {
	profile := command.AerialProfile()
	if oracle == nil {
		oracle = physics.OracleFor(profile)
	}
	cfg := DefaultSessionConfig()
	cfg.Invoker.Deadline = 50 * time.Millisecond
	return NewSession(profile, engine, oracle, sink, emitter, cfg)
}

// run a sustained blackout until the session reaches the wanted state.
func driveToState(t *testing.T, s *Session, want condition.WindowState) {
	t.Helper()
	for sec := int64(1); sec <= 10; sec++ {
		res, err := s.Tick(context.Background(), rawFrame(sec, 0, 6.0))
		if err != nil {
			t.Fatalf("tick %d: %v", sec, err)
		}
		if res.State == want {
			return
		}
	}
	t.Fatalf("never reached %s", want)
}

// #endregion helpers

// 1. Nominal telemetry passes through: no reasoning call, no dispatch, no
// manifest.
func TestTick_NominalPassThrough(t *testing.T) {
	engine := &textEngine{text: wireResponse("SWITCH_MODE LOITER")}
	sink := &recordSink{}
	emitter := &recordEmitter{}
	s := newTestSession(engine, nil, sink, emitter)

	for sec := int64(1); sec <= 5; sec++ {
		res, err := s.Tick(context.Background(), rawFrame(sec, 3, 0.3))
		if err != nil {
			t.Fatalf("tick %d: %v", sec, err)
		}
		if res.State != condition.StateNormal {
			t.Fatalf("tick %d: expected NORMAL, got %s", sec, res.State)
		}
		if res.Dispatched != nil || res.Manifest != nil {
			t.Fatalf("tick %d: expected no action on nominal tick", sec)
		}
	}
	if engine.calls != 0 {
		t.Errorf("expected no reasoning calls, got %d", engine.calls)
	}
	if len(sink.commands) != 0 || len(emitter.manifests) != 0 {
		t.Error("expected no dispatches or manifests")
	}
}

// 2. A malformed frame skips the tick and holds the window state.
func TestTick_MalformedFrameSkips(t *testing.T) {
	engine := &textEngine{text: wireResponse("SWITCH_MODE LOITER")}
	sink := &recordSink{}
	s := newTestSession(engine, nil, sink, &recordEmitter{})

	driveToState(t, s, condition.StateActive)

	bad := rawFrame(20, 0, 6.0)
	bad.Attitude = nil
	res, err := s.Tick(context.Background(), bad)
	if !errors.Is(err, telemetry.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if !res.Skipped {
		t.Error("expected tick skipped")
	}
	if res.State != condition.StateActive {
		t.Errorf("expected window state held at ACTIVE, got %s", res.State)
	}
}

// 3. A dark window with conforming reasoning dispatches the validated
// command and emits one manifest per dark tick.
func TestTick_DarkWindowDispatch(t *testing.T) {
	engine := &textEngine{text: wireResponse("SWITCH_MODE LOITER")}
	sink := &recordSink{}
	emitter := &recordEmitter{}
	s := newTestSession(engine, nil, sink, emitter)

	var darkTicks int
	for sec := int64(1); sec <= 6; sec++ {
		res, err := s.Tick(context.Background(), rawFrame(sec, 0, 6.0))
		if err != nil {
			t.Fatalf("tick %d: %v", sec, err)
		}
		if !res.State.Dark() {
			continue
		}
		darkTicks++
		if res.Dispatched == nil {
			t.Fatalf("tick %d: expected a dispatch", sec)
		}
		// GPS is out, so the LOITER proposal is clamped to ALT_HOLD.
		if res.Dispatched.Mode != command.ModeAltHold {
			t.Errorf("tick %d: expected ALT_HOLD, got %s", sec, res.Dispatched.Mode)
		}
		if res.FailSafe {
			t.Errorf("tick %d: clamped dispatch must not be marked fail-safe", sec)
		}
		if res.Manifest == nil {
			t.Fatalf("tick %d: expected a manifest", sec)
		}
		if res.Manifest.ValidationResult.Status != string(physics.StatusClamped) {
			t.Errorf("tick %d: expected CLAMPED record, got %s", sec, res.Manifest.ValidationResult.Status)
		}
	}
	if darkTicks == 0 {
		t.Fatal("blackout never produced a dark tick")
	}
	if len(emitter.manifests) != darkTicks {
		t.Errorf("expected %d manifests, got %d", darkTicks, len(emitter.manifests))
	}
	if engine.calls != darkTicks {
		t.Errorf("expected one reasoning call per dark tick, got %d for %d ticks", engine.calls, darkTicks)
	}
	for _, m := range emitter.manifests {
		if !manifest.Verify(m) {
			t.Errorf("manifest %s failed proof verification", m.DecisionID)
		}
	}
}

// 4. Reasoning timeout takes the fallback path: the fail-safe command is
// dispatched promptly and the manifest records the fallback.
func TestTick_ReasoningTimeoutFallsBack(t *testing.T) {
	engine := &textEngine{block: true}
	sink := &recordSink{}
	emitter := &recordEmitter{}
	s := newTestSession(engine, nil, sink, emitter)

	var res TickResult
	var err error
	start := time.Now()
	for sec := int64(1); sec <= 2; sec++ {
		res, err = s.Tick(context.Background(), rawFrame(sec, 0, 6.0))
		if err != nil {
			t.Fatalf("tick %d: %v", sec, err)
		}
	}
	if time.Since(start) > 2*time.Second {
		t.Error("expected ticks to return promptly at the deadline")
	}

	if !res.FailSafe {
		t.Fatal("expected fail-safe dispatch")
	}
	// Aerial fail-safe LOITER degrades to ALT_HOLD without a fix.
	if res.Dispatched == nil || res.Dispatched.Mode != command.ModeAltHold {
		t.Errorf("expected ALT_HOLD fail-safe, got %v", res.Dispatched)
	}
	if res.Manifest == nil || !res.Manifest.AgentReasoning.Fallback {
		t.Error("expected manifest to record the fallback response")
	}
}

// 5. Oracle rejection substitutes the fail-safe while the manifest keeps
// the REJECTED validation record for the original proposal.
func TestTick_RejectionSubstitutesFailSafe(t *testing.T) {
	engine := &textEngine{text: wireResponse("SWITCH_MODE LOITER")}
	sink := &recordSink{}
	emitter := &recordEmitter{}
	s := newTestSession(engine, rejectingOracle{}, sink, emitter)

	var res TickResult
	var err error
	for sec := int64(1); sec <= 2; sec++ {
		res, err = s.Tick(context.Background(), rawFrame(sec, 0, 6.0))
		if err != nil {
			t.Fatalf("tick %d: %v", sec, err)
		}
	}

	if !res.FailSafe {
		t.Fatal("expected fail-safe substitution")
	}
	if res.Dispatched == nil || res.Dispatched.Mode != command.ModeAltHold {
		t.Errorf("expected degraded fail-safe ALT_HOLD, got %v", res.Dispatched)
	}
	if res.Manifest.ValidationResult.Status != string(physics.StatusRejected) {
		t.Errorf("expected REJECTED record preserved, got %s", res.Manifest.ValidationResult.Status)
	}
	if res.Manifest.DispatchedCommand != "ALT_HOLD" {
		t.Errorf("expected manifest to record the dispatched fail-safe, got %s", res.Manifest.DispatchedCommand)
	}
}

// 6. Sink failure is surfaced on the result, not retried, and the manifest
// is still emitted.
func TestTick_DispatchFailureSurfaced(t *testing.T) {
	engine := &textEngine{text: wireResponse("SWITCH_MODE LOITER")}
	sink := &recordSink{fail: errors.New("serial port gone")}
	emitter := &recordEmitter{}
	s := newTestSession(engine, nil, sink, emitter)

	var res TickResult
	for sec := int64(1); sec <= 2; sec++ {
		var err error
		res, err = s.Tick(context.Background(), rawFrame(sec, 0, 6.0))
		if err != nil {
			t.Fatalf("tick %d: %v", sec, err)
		}
	}

	if res.DispatchErr == nil || !errors.Is(res.DispatchErr, ErrDispatch) {
		t.Fatalf("expected ErrDispatch surfaced, got %v", res.DispatchErr)
	}
	if len(sink.commands) != 2 {
		t.Errorf("expected one dispatch attempt per dark tick, got %d", len(sink.commands))
	}
	if len(emitter.manifests) != 2 {
		t.Errorf("expected manifests despite dispatch failure, got %d", len(emitter.manifests))
	}
}

// 7. Every manifest in a session carries the session's mission id.
func TestSession_MissionIdentity(t *testing.T) {
	engine := &textEngine{text: wireResponse("SWITCH_MODE LOITER")}
	emitter := &recordEmitter{}
	s := newTestSession(engine, nil, &recordSink{}, emitter)

	if s.MissionID() == "" {
		t.Fatal("expected a mission id")
	}
	for sec := int64(1); sec <= 4; sec++ {
		if _, err := s.Tick(context.Background(), rawFrame(sec, 0, 6.0)); err != nil {
			t.Fatalf("tick %d: %v", sec, err)
		}
	}
	for _, m := range emitter.manifests {
		if m.MissionID != s.MissionID() {
			t.Errorf("expected mission id %s, got %s", s.MissionID(), m.MissionID)
		}
	}
}
