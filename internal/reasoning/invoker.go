package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kidcosmo/sovereign-controller/internal/command"
)

// #region config

// InvokerConfig bounds the reasoning call.
type InvokerConfig struct {
	Deadline time.Duration // hard wall-clock budget per invocation
}

// DefaultInvokerConfig returns the aerial control-loop budget. Underwater
// sessions run a longer deadline; physics there is slower.
func DefaultInvokerConfig() InvokerConfig {
	return InvokerConfig{Deadline: 2 * time.Second}
}

// #endregion config

// #region invoker

// Invoker wraps the engine with a hard deadline and schema validation. This
// is the system's principal trust boundary: the engine is adversarial input,
// not a trusted subroutine, and the only way out is a fully validated
// Response or ErrUnavailable. Fail closed, never fail open.
type Invoker struct {
	engine  Engine
	profile command.Profile
	config  InvokerConfig
}

// NewInvoker creates an invoker validating against the profile's allowlist.
func NewInvoker(engine Engine, profile command.Profile, config InvokerConfig) *Invoker {
	return &Invoker{engine: engine, profile: profile, config: config}
}

// Invoke runs one deadline-bounded reasoning call. On deadline expiry the
// invocation is abandoned; a late result is discarded so the control loop
// cadence is never missed. The call is not retried within a tick.
func (inv *Invoker) Invoke(ctx context.Context, req Request) (Response, error) {
	if inv.engine == nil {
		return Response{}, &UnavailableError{Cause: CauseProvider, Detail: "no reasoning engine configured"}
	}

	cctx, cancel := context.WithTimeout(ctx, inv.config.Deadline)
	defer cancel()

	type inferOut struct {
		text string
		err  error
	}
	out := make(chan inferOut, 1) // buffered: a late writer must not leak

	start := time.Now()
	go func() {
		text, err := inv.engine.Infer(cctx, SystemPrompt(req.DarkWindow), BuildPrompt(req))
		out <- inferOut{text: text, err: err}
	}()

	select {
	case <-cctx.Done():
		log.Printf("[REASON] deadline expired after %v, abandoning invocation", time.Since(start))
		return Response{}, &UnavailableError{Cause: CauseTimeout, Detail: cctx.Err().Error()}
	case o := <-out:
		if o.err != nil {
			return Response{}, &UnavailableError{Cause: CauseProvider, Detail: o.err.Error()}
		}
		return inv.interpret(o.text)
	}
}

// #endregion invoker

// #region interpret

// interpret sanitizes raw engine output into a Response. Any deviation from
// the schema, and any actuator command outside the domain allowlist, is
// ReasoningUnavailable.
func (inv *Invoker) interpret(raw string) (Response, error) {
	jsonStr := stripFences(raw)

	var wire wireReasoning
	if err := json.Unmarshal([]byte(jsonStr), &wire); err != nil {
		return Response{}, &UnavailableError{Cause: CauseSchema, Detail: fmt.Sprintf("unparseable response: %v", err)}
	}
	if strings.TrimSpace(wire.SensorySynthesis.Interpretation) == "" {
		return Response{}, &UnavailableError{Cause: CauseSchema, Detail: "empty interpretation"}
	}
	cmdText := strings.TrimSpace(wire.Decision.ActuatorCommand)
	if cmdText == "" {
		return Response{}, &UnavailableError{Cause: CauseSchema, Detail: "empty actuator_command"}
	}

	cmd, ok := command.Parse(inv.profile, cmdText)
	if !ok || !inv.profile.Allowed(cmd.Mode) {
		return Response{}, &UnavailableError{Cause: CauseSchema, Detail: fmt.Sprintf("actuator_command %q maps to no allowlisted mode", cmdText)}
	}

	return Response{
		Inputs:          wire.SensorySynthesis.Inputs,
		Interpretation:  wire.SensorySynthesis.Interpretation,
		CommandText:     cmdText,
		Command:         cmd,
		ExpectedOutcome: wire.Decision.ExpectedOutcome,
		RiskLevel:       wire.MissionAssuranceCheck.RiskLevel,
		CognitiveLoad:   wire.CognitiveLoad,
		SelfReflection:  wire.SelfReflection,
	}, nil
}

// stripFences removes a ```json code fence if the engine wrapped its output.
func stripFences(raw string) string {
	if i := strings.Index(raw, "```json"); i >= 0 {
		rest := raw[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(raw)
}

// #endregion interpret
