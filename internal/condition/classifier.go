package condition

import (
	"log"
	"time"

	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// #region classifier-struct

// Classifier runs every trigger predicate against the snapshot history and
// drives the dark-window state machine. Debounce is modeled as explicit
// anchor timestamps compared against snapshot time, so the machine is purely
// tick-driven and needs no wall clock.
type Classifier struct {
	config ClassifierConfig
	rules  []Rule

	state      WindowState
	anchorKind Kind          // condition anchoring the entry debounce
	anchorSev  Severity
	holdSince  time.Time     // when the anchor first held
	clearSince time.Time     // when all triggers last cleared
}

// NewClassifier creates a classifier in NORMAL state.
func NewClassifier(config ClassifierConfig, rules []Rule) *Classifier {
	return &Classifier{config: config, rules: rules, state: StateNormal}
}

// State returns the current window state without advancing the machine.
func (c *Classifier) State() WindowState {
	return c.state
}

// #endregion classifier-struct

// #region classify

// Classify evaluates all predicates against the history and advances the
// state machine one tick. The returned set is the union of every predicate
// that currently holds; downstream reasoning receives all of them.
func (c *Classifier) Classify(h *telemetry.History) Result {
	active := c.evaluate(h)

	cur, ok := h.Latest()
	if !ok {
		return Result{Active: active, State: c.state}
	}
	now := cur.Timestamp

	prev := c.state
	switch c.state {
	case StateNormal:
		if len(active) > 0 {
			c.state = StateEntering
			c.anchorKind, c.anchorSev = strongest(active)
			c.holdSince = now
			if c.config.DebounceIn <= 0 {
				c.state = StateActive
			}
		}

	case StateEntering:
		if len(active) == 0 {
			// Transient cleared before the debounce window: never reaches ACTIVE.
			c.state = StateNormal
		} else {
			kind, sev := strongest(active)
			if !holds(active, c.anchorKind) {
				if sev > c.anchorSev {
					// Superseding higher-severity condition keeps the debounce running.
					c.anchorKind, c.anchorSev = kind, sev
				} else {
					// Anchor cleared and only a different, no-stronger trigger
					// remains: restart the debounce on the new condition.
					c.anchorKind, c.anchorSev = kind, sev
					c.holdSince = now
				}
			}
			if now.Sub(c.holdSince) >= c.config.DebounceIn {
				c.state = StateActive
			}
		}

	case StateActive:
		if len(active) == 0 {
			c.state = StateRecovering
			c.clearSince = now
			if c.config.DebounceOut <= 0 {
				c.state = StateNormal
			}
		}

	case StateRecovering:
		if len(active) > 0 {
			// Re-trigger returns straight to ACTIVE; staying cautious costs
			// nothing, flapping back to NORMAL could.
			c.state = StateActive
		} else if now.Sub(c.clearSince) >= c.config.DebounceOut {
			c.state = StateNormal
		}
	}

	if c.state != prev {
		log.Printf("[CLASS] %s -> %s active=%v", prev, c.state, kindsOf(active))
	}

	return Result{Active: active, State: c.state}
}

// #endregion classify

// #region helpers

func (c *Classifier) evaluate(h *telemetry.History) []Active {
	var active []Active
	for _, r := range c.rules {
		if r.Predicate(h) {
			active = append(active, Active{Kind: r.Kind, Severity: r.Severity})
		}
	}
	return active
}

func strongest(active []Active) (Kind, Severity) {
	kind, sev := active[0].Kind, active[0].Severity
	for _, a := range active[1:] {
		if a.Severity > sev {
			kind, sev = a.Kind, a.Severity
		}
	}
	return kind, sev
}

func holds(active []Active, kind Kind) bool {
	for _, a := range active {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

func kindsOf(active []Active) []Kind {
	out := make([]Kind, len(active))
	for i, a := range active {
		out[i] = a.Kind
	}
	return out
}

// #endregion helpers
