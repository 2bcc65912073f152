package telemetry

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// #region errors

// ErrMalformed marks telemetry frames missing a mandatory field or carrying a
// physically implausible value. Callers skip the tick and keep the loop alive.
var ErrMalformed = errors.New("malformed telemetry")

// MalformedError reports which field made a frame unusable.
type MalformedError struct {
	Field  string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed telemetry: %s: %s", e.Field, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformed
}

// #endregion errors

// #region config

// NormalizerConfig bounds the physically plausible telemetry envelope.
type NormalizerConfig struct {
	MaxAltMeters   float64 // greatest plausible altitude above surface
	MaxDepthMeters float64 // greatest plausible depth below surface
	MaxFixQuality  int     // highest defined GPS fix enum value
}

// DefaultNormalizerConfig returns the stock plausibility envelope.
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		MaxAltMeters:   10000,
		MaxDepthMeters: 500,
		MaxFixQuality:  6,
	}
}

// #endregion config

// #region normalizer

// Normalizer converts raw frames into snapshots and maintains the rolling
// history ring used by the condition classifier.
type Normalizer struct {
	config  NormalizerConfig
	history *History
}

// NewNormalizer creates a normalizer writing into history.
func NewNormalizer(config NormalizerConfig, history *History) *Normalizer {
	return &Normalizer{config: config, history: history}
}

// History exposes the rolling snapshot ring.
func (n *Normalizer) History() *History {
	return n.history
}

// Normalize validates a raw frame and pushes the resulting snapshot onto the
// history ring. Mandatory fields: timestamp, GPS fix quality, attitude,
// heartbeat age, and an altitude/depth reading. Everything else is optional;
// partial telemetry is common in denied environments.
func (n *Normalizer) Normalize(frame Frame) (Snapshot, error) {
	if frame.T <= 0 || math.IsNaN(frame.T) {
		return Snapshot{}, &MalformedError{Field: "t", Reason: "missing or non-positive timestamp"}
	}
	if frame.GPSFix == nil {
		return Snapshot{}, &MalformedError{Field: "gps_fix", Reason: "missing"}
	}
	if *frame.GPSFix < 0 || *frame.GPSFix > n.config.MaxFixQuality {
		return Snapshot{}, &MalformedError{Field: "gps_fix", Reason: fmt.Sprintf("value %d outside defined enum", *frame.GPSFix)}
	}
	if frame.Attitude == nil {
		return Snapshot{}, &MalformedError{Field: "attitude", Reason: "missing"}
	}
	if frame.HeartbeatAge == nil {
		return Snapshot{}, &MalformedError{Field: "heartbeat_age", Reason: "missing"}
	}
	if *frame.HeartbeatAge < 0 {
		return Snapshot{}, &MalformedError{Field: "heartbeat_age", Reason: "negative age"}
	}
	if frame.Alt == nil {
		return Snapshot{}, &MalformedError{Field: "alt", Reason: "missing"}
	}
	if *frame.Alt > n.config.MaxAltMeters || -*frame.Alt > n.config.MaxDepthMeters {
		return Snapshot{}, &MalformedError{Field: "alt", Reason: fmt.Sprintf("reading %.1f outside plausible envelope", *frame.Alt)}
	}

	sec := int64(frame.T)
	nsec := int64((frame.T - float64(sec)) * 1e9)
	snap := Snapshot{
		Timestamp:    time.Unix(sec, nsec).UTC(),
		GPSFix:       *frame.GPSFix,
		Attitude:     *frame.Attitude,
		Alt:          *frame.Alt,
		HeartbeatAge: time.Duration(*frame.HeartbeatAge * float64(time.Second)),
		Mode:         frame.Mode,
	}
	if frame.Sats != nil {
		snap.Sats = *frame.Sats
		snap.SatsKnown = true
	}
	if frame.BatteryPct != nil {
		snap.BatteryPct = *frame.BatteryPct
		snap.BatteryKnown = true
	}
	if frame.BatteryV != nil {
		snap.BatteryV = *frame.BatteryV
	}
	if len(frame.Extras) > 0 {
		snap.Extras = make(map[string]float64, len(frame.Extras))
		for k, v := range frame.Extras {
			snap.Extras[k] = v
		}
	}

	n.history.Push(snap)
	return snap, nil
}

// #endregion normalizer
