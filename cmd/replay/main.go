package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kidcosmo/sovereign-controller/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	verbose := flag.Bool("v", false, "print every tick, not just mismatches")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		os.Exit(2)
	}
	os.Exit(run(*fixturePath, *verbose))
}

// #endregion main

// #region run

func run(path string, verbose bool) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	outcomes, manifests, err := replay.Replay(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	if f.Description != "" {
		fmt.Println(f.Description)
	}

	if verbose {
		fmt.Printf("%-6s| %-12s| %-10s| %-12s| %s\n", "Tick", "State", "Action", "Mode", "FailSafe")
		fmt.Printf("%-6s+%-13s+%-11s+%-13s+%s\n",
			"------", "-------------", "-----------", "-------------", "--------")
		for _, o := range outcomes {
			fmt.Printf("%-6d| %-12s| %-10s| %-12s| %v\n", o.Tick, o.State, o.Action, o.Mode, o.FailSafe)
		}
		fmt.Println()
	}

	s := replay.Summarize(outcomes)
	fmt.Printf("Summary: %d ticks, %d pass, %d dispatch, %d skip, %d fail-safe, %d manifests\n",
		s.TotalTicks, s.Passes, s.Dispatches, s.Skips, s.FailSafes, len(manifests))

	mismatches := f.Verify(outcomes)
	if len(mismatches) == 0 {
		if len(f.Expected) > 0 {
			fmt.Printf("All %d expected results match.\n", len(f.Expected))
		}
		return 0
	}
	for _, m := range mismatches {
		fmt.Printf("tick %d: %s\n", m.Tick, m.Detail)
	}
	fmt.Printf("\n%d of %d expected results diverge\n", len(mismatches), len(f.Expected))
	return 1
}

// #endregion run
