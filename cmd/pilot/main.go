package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kidcosmo/sovereign-controller/internal/command"
	"github.com/kidcosmo/sovereign-controller/internal/config"
	"github.com/kidcosmo/sovereign-controller/internal/manifest"
	"github.com/kidcosmo/sovereign-controller/internal/physics"
	"github.com/kidcosmo/sovereign-controller/internal/pilot"
	"github.com/kidcosmo/sovereign-controller/internal/reasoning"
	"github.com/kidcosmo/sovereign-controller/internal/telemetry"
)

// #region main
func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	cadence, err := config.Duration(cfg.Cadence, time.Second)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	sessionCfg, err := sessionConfig(cfg)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := manifest.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open manifest store: %v", err)
	}
	defer store.Close()

	emitter := manifest.NewAsyncEmitter(store, 16)
	defer emitter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := buildEngine(ctx, cfg.Engine)
	if err != nil {
		log.Fatalf("reasoning engine: %v", err)
	}

	profile := command.ProfileFor(command.Domain(cfg.Domain))
	sink := &stdoutSink{}
	session := pilot.NewSession(profile, engine, physics.OracleFor(profile), sink, emitter, sessionCfg)

	fmt.Println("Sovereign pilot ready.")
	fmt.Printf("  mission=%s domain=%s env=%s db=%s\n", session.MissionID(), profile.Domain, profile.Environment, cfg.DBPath)
	fmt.Println("Feed NDJSON telemetry frames on stdin.")

	frames := make(chan telemetry.Frame)
	go readFrames(ctx, frames)

	if err := session.Run(ctx, frames, cadence); err != nil && ctx.Err() == nil {
		log.Fatalf("run: %v", err)
	}
}

// #endregion main

// #region wiring

func sessionConfig(cfg config.Config) (pilot.SessionConfig, error) {
	sc := pilot.DefaultSessionConfig()
	if cfg.HistoryCapacity > 0 {
		sc.HistoryCapacity = cfg.HistoryCapacity
	}
	var err error
	if sc.Classifier.DebounceIn, err = config.Duration(cfg.DebounceIn, sc.Classifier.DebounceIn); err != nil {
		return pilot.SessionConfig{}, err
	}
	if sc.Classifier.DebounceOut, err = config.Duration(cfg.DebounceOut, sc.Classifier.DebounceOut); err != nil {
		return pilot.SessionConfig{}, err
	}
	if sc.Invoker.Deadline, err = config.Duration(cfg.ReasoningDeadline, sc.Invoker.Deadline); err != nil {
		return pilot.SessionConfig{}, err
	}
	if sc.Triggers.HeartbeatTimeout, err = config.Duration(cfg.HeartbeatTimeout, sc.Triggers.HeartbeatTimeout); err != nil {
		return pilot.SessionConfig{}, err
	}
	return sc, nil
}

func buildEngine(ctx context.Context, cfg config.EngineConfig) (reasoning.Engine, error) {
	switch cfg.Provider {
	case "", "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set")
		}
		eng, err := reasoning.NewGeminiEngine(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return eng, nil
	case "none":
		// Every dark tick takes the deterministic fallback path.
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown engine provider %q", cfg.Provider)
	}
}

// readFrames decodes NDJSON frames from stdin. Malformed lines are logged
// and skipped so one bad bridge write cannot stall the loop.
func readFrames(ctx context.Context, out chan<- telemetry.Frame) {
	defer close(out)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var frame telemetry.Frame
		if err := json.Unmarshal(line, &frame); err != nil {
			log.Printf("[BRIDGE] bad frame line: %v", err)
			continue
		}
		select {
		case out <- frame:
		case <-ctx.Done():
			return
		}
	}
}

// stdoutSink prints dispatched commands the way the MAVLink bridge logs
// them, for bench runs without a vehicle attached.
type stdoutSink struct{}

func (stdoutSink) Dispatch(_ context.Context, cmd command.Command) error {
	fmt.Printf("[DISPATCH] %s\n", cmd)
	return nil
}

// #endregion wiring
