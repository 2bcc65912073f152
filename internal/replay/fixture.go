package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kidcosmo/sovereign-controller/internal/condition"
	"github.com/kidcosmo/sovereign-controller/internal/pilot"
	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a scripted
// telemetry trace plus canned reasoning replies, replayed through the full
// pipeline in-memory.
type Fixture struct {
	Description string            `json:"description"`
	Domain      string            `json:"domain"` // "aerial" or "underwater"
	Config      FixtureConfig     `json:"config"`
	Frames      []telemetry.Frame `json:"frames"`
	Replies     []FixtureReply    `json:"replies"` // consumed in order, one per reasoning call
	Expected    []FixtureExpected `json:"expected_results"`
}

// FixtureReply scripts one reasoning-engine response. Block makes the
// engine hold until the invoker's deadline fires, exercising the timeout
// path deterministically.
type FixtureReply struct {
	Text  string `json:"text"`
	Err   string `json:"err"`
	Block bool   `json:"block"`
}

// FixtureExpected captures the expected outcome of one tick.
type FixtureExpected struct {
	Tick     int    `json:"tick"`
	State    string `json:"state"`
	Action   string `json:"action"` // "pass" | "dispatch" | "skip"
	Mode     string `json:"mode"`
	FailSafe bool   `json:"fail_safe"`
}

// FixtureConfig mirrors the session tunables with JSON tags. Durations are
// strings in time.ParseDuration syntax; zero values fall back to defaults.
type FixtureConfig struct {
	HistoryCapacity  int    `json:"history_capacity"`
	DebounceIn       string `json:"debounce_in"`
	DebounceOut      string `json:"debounce_out"`
	Deadline         string `json:"reasoning_deadline"`
	HeartbeatTimeout string `json:"heartbeat_timeout"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToSessionConfig converts a FixtureConfig to a domain SessionConfig.
func (fc *FixtureConfig) ToSessionConfig() (pilot.SessionConfig, error) {
	cfg := pilot.DefaultSessionConfig()
	if fc.HistoryCapacity > 0 {
		cfg.HistoryCapacity = fc.HistoryCapacity
	}
	var err error
	if cfg.Classifier.DebounceIn, err = fixtureDuration(fc.DebounceIn, cfg.Classifier.DebounceIn); err != nil {
		return pilot.SessionConfig{}, err
	}
	if cfg.Classifier.DebounceOut, err = fixtureDuration(fc.DebounceOut, cfg.Classifier.DebounceOut); err != nil {
		return pilot.SessionConfig{}, err
	}
	if cfg.Invoker.Deadline, err = fixtureDuration(fc.Deadline, cfg.Invoker.Deadline); err != nil {
		return pilot.SessionConfig{}, err
	}
	if cfg.Triggers.HeartbeatTimeout, err = fixtureDuration(fc.HeartbeatTimeout, cfg.Triggers.HeartbeatTimeout); err != nil {
		return pilot.SessionConfig{}, err
	}
	return cfg, nil
}

func fixtureDuration(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("bad fixture duration %q: %w", raw, err)
	}
	return d, nil
}

// Mismatch describes one divergence between an expected result and the
// replayed outcome.
type Mismatch struct {
	Tick   int
	Detail string
}

// Verify compares replayed outcomes against the fixture's expected results.
func (f *Fixture) Verify(outcomes []TickOutcome) []Mismatch {
	var ms []Mismatch
	for _, exp := range f.Expected {
		if exp.Tick < 0 || exp.Tick >= len(outcomes) {
			ms = append(ms, Mismatch{exp.Tick, "no outcome for tick"})
			continue
		}
		got := outcomes[exp.Tick]
		if exp.State != "" && got.State != condition.WindowState(exp.State) {
			ms = append(ms, Mismatch{exp.Tick, fmt.Sprintf("state %s, want %s", got.State, exp.State)})
		}
		if exp.Action != "" && got.Action != exp.Action {
			ms = append(ms, Mismatch{exp.Tick, fmt.Sprintf("action %s, want %s", got.Action, exp.Action)})
		}
		if exp.Mode != "" && got.Mode != exp.Mode {
			ms = append(ms, Mismatch{exp.Tick, fmt.Sprintf("mode %s, want %s", got.Mode, exp.Mode)})
		}
		if got.FailSafe != exp.FailSafe {
			ms = append(ms, Mismatch{exp.Tick, fmt.Sprintf("fail_safe %v, want %v", got.FailSafe, exp.FailSafe)})
		}
	}
	return ms
}

// #endregion fixture-loader
