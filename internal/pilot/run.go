package pilot

import (
	"context"
	"log"
	"time"

	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// Run consumes raw frames until the channel closes or the context ends.
// Each arriving frame gets a pipeline pass. When frames stall, the cadence
// timer re-runs the pass on the last frame so an ACTIVE window keeps
// re-asserting its command against a silent bridge.
func (s *Session) Run(ctx context.Context, frames <-chan telemetry.Frame, cadence time.Duration) error {
	if cadence <= 0 {
		cadence = time.Second
	}
	ticker := time.NewTicker(cadence)
	defer ticker.Stop()

	var last telemetry.Frame
	var have bool
	lastPass := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			last, have = frame, true
			s.pass(ctx, frame)
			lastPass = time.Now()
		case now := <-ticker.C:
			if !have || now.Sub(lastPass) < cadence {
				continue
			}
			s.pass(ctx, last)
			lastPass = now
		}
	}
}

func (s *Session) pass(ctx context.Context, frame telemetry.Frame) {
	res, err := s.Tick(ctx, frame)
	if err != nil {
		return // already logged by Tick
	}
	if res.Dispatched != nil {
		log.Printf("[PILOT] state=%s dispatched=%s failsafe=%v", res.State, res.Dispatched, res.FailSafe)
	}
}
