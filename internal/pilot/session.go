package pilot

import (
	"context"
	"errors"
	"log"

	"github.com/kidcosmo/sovereign-controller/internal/command"
	"github.com/kidcosmo/sovereign-controller/internal/condition"
	"github.com/kidcosmo/sovereign-controller/internal/manifest"
	"github.com/kidcosmo/sovereign-controller/internal/physics"
	"github.com/kidcosmo/sovereign-controller/internal/reasoning"
	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// #region config

// SessionConfig collects the tunables for one mission session.
type SessionConfig struct {
	HistoryCapacity int
	Normalizer      telemetry.NormalizerConfig
	Classifier      condition.ClassifierConfig
	Triggers        condition.TriggerConfig
	Invoker         reasoning.InvokerConfig
}

// DefaultSessionConfig returns the tuning used in SITL runs.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		HistoryCapacity: 32,
		Normalizer:      telemetry.DefaultNormalizerConfig(),
		Classifier:      condition.DefaultClassifierConfig(),
		Triggers:        condition.DefaultTriggerConfig(),
		Invoker:         reasoning.DefaultInvokerConfig(),
	}
}

// #endregion config

// #region session

// Session sequences one mission's pipeline: normalize, classify, reason,
// validate, dispatch, emit. Not safe for concurrent Tick calls.
type Session struct {
	missionID  string
	profile    command.Profile
	history    *telemetry.History
	normalizer *telemetry.Normalizer
	classifier *condition.Classifier
	invoker    *reasoning.Invoker
	validator  *physics.Adapter
	builder    *manifest.Builder
	sink       CommandSink
	emitter    ManifestEmitter
}

// NewSession wires a session for the given profile. The engine may be nil
// only if every tick is expected to stay NORMAL; dark ticks with a nil
// engine take the fallback path.
func NewSession(profile command.Profile, engine reasoning.Engine, oracle physics.Oracle, sink CommandSink, emitter ManifestEmitter, cfg SessionConfig) *Session {
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = 32
	}
	history := telemetry.NewHistory(cfg.HistoryCapacity)
	missionID := manifest.NewMissionID(profile.MissionPrefix)
	var rules []condition.Rule
	switch profile.Domain {
	case command.DomainUnderwater:
		rules = condition.UnderwaterRules(cfg.Triggers)
	default:
		rules = condition.AerialRules(cfg.Triggers)
	}
	return &Session{
		missionID:  missionID,
		profile:    profile,
		history:    history,
		normalizer: telemetry.NewNormalizer(cfg.Normalizer, history),
		classifier: condition.NewClassifier(cfg.Classifier, rules),
		invoker:    reasoning.NewInvoker(engine, profile, cfg.Invoker),
		validator:  physics.NewAdapter(oracle, profile),
		builder:    manifest.NewBuilder(missionID, profile.Environment),
		sink:       sink,
		emitter:    emitter,
	}
}

// MissionID returns the session's mission identifier.
func (s *Session) MissionID() string { return s.missionID }

// Tick runs one pipeline pass over a raw telemetry frame.
//
// Malformed frames are logged and skipped; the window state machine holds
// its prior state. NORMAL passes end after classification with no command
// and no manifest. Every dark pass produces exactly one manifest, dispatch
// success or not.
func (s *Session) Tick(ctx context.Context, frame telemetry.Frame) (TickResult, error) {
	snap, err := s.normalizer.Normalize(frame)
	if err != nil {
		log.Printf("[PILOT] dropping malformed frame: %v", err)
		return TickResult{Skipped: true, State: s.classifier.State()}, err
	}

	res := s.classifier.Classify(s.history)
	out := TickResult{State: res.State, Conditions: res.Kinds()}
	if !res.State.Dark() {
		return out, nil
	}

	req := reasoning.Request{
		MissionID:   s.missionID,
		Environment: s.profile.Environment,
		DarkWindow:  res.State == condition.StateActive,
		Conditions:  res.Kinds(),
		Snapshot:    snap,
	}

	resp, rerr := s.invoker.Invoke(ctx, req)
	if rerr != nil {
		if !errors.Is(rerr, reasoning.ErrUnavailable) {
			return out, rerr
		}
		resp = reasoning.Fallback(req, s.profile, unavailableCause(rerr))
		out.FailSafe = true
	}

	val := s.validator.Validate(resp.Command, snap)
	final := val.Final()
	if val.Status == physics.StatusRejected {
		final = s.profile.FailSafe(snap)
		out.FailSafe = true
		log.Printf("[PILOT] proposal %s rejected (%s), dispatching fail-safe %s", resp.Command, val.Reason, final)
	}

	m := s.builder.Build(snap, res, resp, val, final.String())
	out.Manifest = &m
	out.Dispatched = &final

	if derr := s.sink.Dispatch(ctx, final); derr != nil {
		out.DispatchErr = errors.Join(ErrDispatch, derr)
		log.Printf("[PILOT] dispatch of %s failed: %v", final, derr)
	}
	if s.emitter != nil {
		s.emitter.Emit(m)
	}
	return out, nil
}

func unavailableCause(err error) string {
	var ue *reasoning.UnavailableError
	if errors.As(err, &ue) {
		return string(ue.Cause)
	}
	return err.Error()
}

// #endregion session
