package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/kidcosmo/sovereign-controller/internal/condition"
	"github.com/kidcosmo/sovereign-controller/internal/physics"
	"github.com/kidcosmo/sovereign-controller/internal/reasoning"
	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// #region builder

// Builder assembles manifests for one mission session. Pure field mapping;
// no conditional decision logic lives here, which keeps the schema stable
// while decision logic changes.
type Builder struct {
	missionID   string
	environment string
}

// NewBuilder creates a builder scoped to one mission.
func NewBuilder(missionID, environment string) *Builder {
	return &Builder{missionID: missionID, environment: environment}
}

// NewMissionID generates a mission identifier like cosmo_1a2b3c4d.
func NewMissionID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// Build assembles the full decision record and assigns a fresh decision
// identifier. Deterministic given its inputs apart from that identifier.
func (b *Builder) Build(
	snap telemetry.Snapshot,
	class condition.Result,
	resp reasoning.Response,
	val physics.Result,
	dispatched string,
) Manifest {
	kinds := class.Kinds()
	conds := make([]string, len(kinds))
	for i, k := range kinds {
		conds[i] = string(k)
	}
	anomaly := ""
	if len(conds) > 0 {
		anomaly = conds[0]
	}

	dark := class.State == condition.StateActive
	epistemic := EpistemicNominal
	if dark {
		epistemic = EpistemicBlackout
	}

	m := Manifest{
		SchemaVersion:    SchemaVersion,
		MissionID:        b.missionID,
		DecisionID:       uuid.New().String(),
		Environment:      b.environment,
		Timestamp:        snap.Timestamp,
		IsDarkWindow:     dark,
		WindowState:      string(class.State),
		EpistemicStatus:  epistemic,
		ActiveConditions: conds,
		AgentReasoning: AgentReasoning{
			SensorySynthesis: SensorySynthesis{
				Inputs:         resp.Inputs,
				Interpretation: resp.Interpretation,
			},
			Decision: Decision{
				ActuatorCommand: resp.CommandText,
				ExpectedOutcome: resp.ExpectedOutcome,
			},
			RiskLevel:      resp.RiskLevel,
			CognitiveLoad:  resp.CognitiveLoad,
			SelfReflection: resp.SelfReflection,
			Fallback:       resp.Fallback,
		},
		ValidationResult:  validationRecord(val),
		DispatchedCommand: dispatched,
		TrajectoryContext: TrajectoryContext{
			AnomalyType:         anomaly,
			TimestepOfDecision:  snap.Timestamp.Unix(),
			TelemetryAtDecision: telemetrySummary(snap),
		},
	}
	m.SHA256Proof = Proof(m)
	return m
}

// #endregion builder

// #region mapping

func validationRecord(val physics.Result) ValidationRecord {
	rec := ValidationRecord{
		Status: string(val.Status),
		Reason: val.Reason,
	}
	if val.Status == physics.StatusClamped {
		rec.Original = val.Original.String()
		rec.Adjusted = val.Adjusted.String()
	}
	if val.Status == physics.StatusRejected {
		rec.Original = val.Original.String()
	}
	return rec
}

func telemetrySummary(snap telemetry.Snapshot) map[string]any {
	out := map[string]any{
		"t":             snap.Timestamp.Unix(),
		"gps_fix":       snap.GPSFix,
		"alt":           snap.Alt,
		"heartbeat_age": snap.HeartbeatAge.Seconds(),
		"pitch":         snap.Attitude.Pitch,
		"roll":          snap.Attitude.Roll,
		"yaw":           snap.Attitude.Yaw,
	}
	if snap.BatteryKnown {
		out["battery_pct"] = snap.BatteryPct
	}
	// Extra sensory inputs pass through opaquely.
	for k, v := range snap.Extras {
		out[k] = v
	}
	return out
}

// #endregion mapping

// #region proof

// Proof computes the integrity hash over the manifest's canonical JSON with
// the proof field empty.
func Proof(m Manifest) string {
	m.SHA256Proof = ""
	data, _ := json.Marshal(m)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the proof and compares it to the stored one.
func Verify(m Manifest) bool {
	return m.SHA256Proof == Proof(m)
}

// #endregion proof
