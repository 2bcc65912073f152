package replay

import (
	"context"
	"errors"
	"sync"

	"github.com/kidcosmo/sovereign-controller/internal/command"
	"github.com/kidcosmo/sovereign-controller/internal/condition"
	"github.com/kidcosmo/sovereign-controller/internal/manifest"
	"github.com/kidcosmo/sovereign-controller/internal/physics"
	"github.com/kidcosmo/sovereign-controller/internal/pilot"
)

// #region scripted-engine

// ScriptedEngine replays canned reasoning replies in order. It implements
// reasoning.Engine for deterministic offline runs.
type ScriptedEngine struct {
	mu      sync.Mutex
	replies []FixtureReply
	next    int
}

// NewScriptedEngine builds an engine over the fixture's reply script.
func NewScriptedEngine(replies []FixtureReply) *ScriptedEngine {
	return &ScriptedEngine{replies: replies}
}

// Infer pops the next scripted reply. A Block reply holds until the caller's
// deadline cancels the context, scripted errors are returned verbatim, and
// an exhausted script is an error so a fixture missing replies fails loudly.
func (e *ScriptedEngine) Infer(ctx context.Context, system, prompt string) (string, error) {
	e.mu.Lock()
	if e.next >= len(e.replies) {
		e.mu.Unlock()
		return "", errors.New("reply script exhausted")
	}
	reply := e.replies[e.next]
	e.next++
	e.mu.Unlock()

	if reply.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if reply.Err != "" {
		return "", errors.New(reply.Err)
	}
	return reply.Text, nil
}

// Consumed reports how many replies the pipeline pulled.
func (e *ScriptedEngine) Consumed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.next
}

// #endregion scripted-engine

// #region collectors

// CollectorSink records dispatched commands in order.
type CollectorSink struct {
	Commands []command.Command
}

func (s *CollectorSink) Dispatch(_ context.Context, cmd command.Command) error {
	s.Commands = append(s.Commands, cmd)
	return nil
}

// CollectorEmitter records emitted manifests in order.
type CollectorEmitter struct {
	Manifests []manifest.Manifest
}

func (e *CollectorEmitter) Emit(m manifest.Manifest) {
	e.Manifests = append(e.Manifests, m)
}

// #endregion collectors

// #region harness

// TickOutcome captures what one replayed tick did.
type TickOutcome struct {
	Tick     int
	State    condition.WindowState
	Action   string // "pass" | "dispatch" | "skip"
	Mode     string
	FailSafe bool
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalTicks int
	Passes     int
	Dispatches int
	Skips      int
	FailSafes  int
}

// Replay runs a fixture's frames through a freshly wired session and
// returns the per-tick outcomes plus every manifest the run produced.
// Operates entirely in-memory.
func Replay(f *Fixture) ([]TickOutcome, []manifest.Manifest, error) {
	profile := command.ProfileFor(command.Domain(f.Domain))
	cfg, err := f.Config.ToSessionConfig()
	if err != nil {
		return nil, nil, err
	}

	engine := NewScriptedEngine(f.Replies)
	sink := &CollectorSink{}
	emitter := &CollectorEmitter{}
	session := pilot.NewSession(profile, engine, physics.OracleFor(profile), sink, emitter, cfg)

	outcomes := make([]TickOutcome, 0, len(f.Frames))
	for i, frame := range f.Frames {
		res, err := session.Tick(context.Background(), frame)
		out := TickOutcome{Tick: i, State: res.State}
		switch {
		case err != nil:
			out.Action = "skip"
		case res.Dispatched == nil:
			out.Action = "pass"
		default:
			out.Action = "dispatch"
			out.Mode = string(res.Dispatched.Mode)
			out.FailSafe = res.FailSafe
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, emitter.Manifests, nil
}

// Summarize computes aggregate stats from replay outcomes.
func Summarize(outcomes []TickOutcome) Summary {
	s := Summary{TotalTicks: len(outcomes)}
	for _, o := range outcomes {
		switch o.Action {
		case "pass":
			s.Passes++
		case "dispatch":
			s.Dispatches++
		case "skip":
			s.Skips++
		}
		if o.FailSafe {
			s.FailSafes++
		}
	}
	return s
}

// #endregion harness
