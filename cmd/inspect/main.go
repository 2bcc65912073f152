package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kidcosmo/sovereign-controller/internal/manifest"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to manifests.db")
	mission := flag.String("mission", "", "filter by mission id")
	environment := flag.String("env", "", "filter by environment")
	anomaly := flag.String("anomaly", "", "filter by anomaly kind")
	darkOnly := flag.Bool("dark", false, "only dark-window manifests")
	last := flag.Int("last", 20, "show N most recent manifests")
	decision := flag.String("decision", "", "show single manifest detail")
	verify := flag.Bool("verify", false, "re-hash stored manifests and flag tamper")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/manifests.db [--mission id] [--env name] [--anomaly kind] [--dark] [--last N] [--decision id] [--verify] [--json]")
		os.Exit(2)
	}

	store, err := manifest.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *decision != "" {
		err = runDetailMode(store, *decision, *jsonOut)
	} else {
		filters := manifest.Filters{
			MissionID:   *mission,
			Environment: *environment,
			Anomaly:     *anomaly,
			Limit:       *last,
		}
		if *darkOnly {
			t := true
			filters.DarkWindow = &t
		}
		err = runListMode(store, filters, *verify, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	DecisionID string `json:"decision_id"`
	MissionID  string `json:"mission_id"`
	Timestamp  string `json:"timestamp"`
	State      string `json:"window_state"`
	Anomalies  string `json:"anomalies"`
	Command    string `json:"dispatched_command"`
	Validation string `json:"validation_status"`
	Proof      string `json:"proof"` // "ok" | "TAMPERED" | "" when not verified
}

func runListMode(store *manifest.Store, filters manifest.Filters, verify, jsonOut bool) error {
	manifests, err := store.Query(filters)
	if err != nil {
		return err
	}
	if len(manifests) == 0 {
		fmt.Fprintln(os.Stderr, "no manifests found")
		return nil
	}

	rows := make([]listRow, len(manifests))
	tampered := 0
	for i, m := range manifests {
		r := listRow{
			DecisionID: m.DecisionID,
			MissionID:  m.MissionID,
			Timestamp:  m.Timestamp.Format("2006-01-02T15:04:05Z"),
			State:      m.WindowState,
			Anomalies:  strings.Join(m.ActiveConditions, ","),
			Command:    m.DispatchedCommand,
			Validation: m.ValidationResult.Status,
		}
		if verify {
			if manifest.Verify(m) {
				r.Proof = "ok"
			} else {
				r.Proof = "TAMPERED"
				tampered++
			}
		}
		rows[i] = r
	}

	if jsonOut {
		if err := printJSON(rows); err != nil {
			return err
		}
	} else {
		printListTable(rows, verify)
	}

	if verify && tampered > 0 {
		return fmt.Errorf("%d manifest(s) failed proof verification", tampered)
	}
	return nil
}

func printListTable(rows []listRow, verify bool) {
	header := fmt.Sprintf("%-10s  %-14s  %-20s  %-10s  %-20s  %-9s  %s",
		"Decision", "Mission", "Time", "State", "Anomalies", "Valid", "Command")
	if verify {
		header += "  Proof"
	}
	fmt.Println(header)
	fmt.Println(strings.Repeat("-", len(header)))

	for _, r := range rows {
		line := fmt.Sprintf("%-10s  %-14s  %-20s  %-10s  %-20s  %-9s  %s",
			shortID(r.DecisionID), r.MissionID, r.Timestamp, r.State, truncate(r.Anomalies, 20), r.Validation, r.Command)
		if verify {
			line += "  " + r.Proof
		}
		fmt.Println(line)
	}
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(store *manifest.Store, decisionID string, jsonOut bool) error {
	m, err := store.Get(decisionID)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(m)
	}

	fmt.Printf("Decision:     %s\n", m.DecisionID)
	fmt.Printf("Mission:      %s\n", m.MissionID)
	fmt.Printf("Environment:  %s\n", m.Environment)
	fmt.Printf("Timestamp:    %s\n", m.Timestamp.Format("2006-01-02T15:04:05Z"))
	fmt.Printf("Window:       %s (dark=%v)\n", m.WindowState, m.IsDarkWindow)
	fmt.Printf("Epistemic:    %s\n", m.EpistemicStatus)
	fmt.Printf("Anomalies:    %s\n", strings.Join(m.ActiveConditions, ", "))
	fmt.Printf("Dispatched:   %s\n", m.DispatchedCommand)

	fmt.Printf("\nReasoning:\n")
	fmt.Printf("  Interpretation: %s\n", m.AgentReasoning.SensorySynthesis.Interpretation)
	fmt.Printf("  Command:        %s\n", m.AgentReasoning.Decision.ActuatorCommand)
	fmt.Printf("  Risk:           %s\n", m.AgentReasoning.RiskLevel)
	fmt.Printf("  Cognitive Load: %.2f\n", m.AgentReasoning.CognitiveLoad)
	fmt.Printf("  Fallback:       %v\n", m.AgentReasoning.Fallback)

	fmt.Printf("\nValidation:\n")
	fmt.Printf("  Status:   %s\n", m.ValidationResult.Status)
	if m.ValidationResult.Reason != "" {
		fmt.Printf("  Reason:   %s\n", m.ValidationResult.Reason)
	}
	if m.ValidationResult.Original != "" {
		fmt.Printf("  Original: %s\n", m.ValidationResult.Original)
	}
	if m.ValidationResult.Adjusted != "" {
		fmt.Printf("  Adjusted: %s\n", m.ValidationResult.Adjusted)
	}

	if manifest.Verify(m) {
		fmt.Printf("\nProof: %s (ok)\n", shortID(m.SHA256Proof))
	} else {
		fmt.Printf("\nProof: %s (TAMPERED)\n", shortID(m.SHA256Proof))
		return fmt.Errorf("manifest %s failed proof verification", decisionID)
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// #endregion output
