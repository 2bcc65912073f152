package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kidcosmo/sovereign-controller/internal/manifest"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to manifests.db")
	mission := flag.String("mission", "", "mission id to export (empty: every mission)")
	outDir := flag.String("out", ".", "output directory")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: sample-export --db path/to/manifests.db [--mission id] [--out dir]")
		os.Exit(2)
	}

	if err := run(*dbPath, *mission, *outDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

// missionSample is the on-disk training-sample format: one file per
// mission, chronological decisions.
type missionSample struct {
	MissionID   string              `json:"mission_id"`
	Environment string              `json:"environment"`
	Decisions   []manifest.Manifest `json:"decisions"`
}

func run(dbPath, mission, outDir string) error {
	store, err := manifest.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	manifests, err := store.Query(manifest.Filters{MissionID: mission, Limit: -1})
	if err != nil {
		return fmt.Errorf("query manifests: %w", err)
	}
	if len(manifests) == 0 {
		return fmt.Errorf("no manifests found")
	}

	// Query returns newest-first; group per mission in chronological order.
	byMission := map[string]*missionSample{}
	var order []string
	for i := len(manifests) - 1; i >= 0; i-- {
		m := manifests[i]
		if !manifest.Verify(m) {
			return fmt.Errorf("manifest %s failed proof verification, refusing to export", m.DecisionID)
		}
		s, ok := byMission[m.MissionID]
		if !ok {
			s = &missionSample{MissionID: m.MissionID, Environment: m.Environment}
			byMission[m.MissionID] = s
			order = append(order, m.MissionID)
		}
		s.Decisions = append(s.Decisions, m)
	}

	for _, id := range order {
		s := byMission[id]
		path := filepath.Join(outDir, id+".reasoning.json")
		if err := writeSample(s, path); err != nil {
			return err
		}
	}
	return nil
}

func writeSample(s *missionSample, path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("Wrote %s (%d bytes, %d decisions)\n", path, len(data), len(s.Decisions))
	return nil
}

// #endregion export
