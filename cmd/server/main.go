package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/GhanbarT/ball-and-hole/internal/persistence/framelog"
	"github.com/GhanbarT/ball-and-hole/internal/persistence/runindex"
	"github.com/GhanbarT/ball-and-hole/internal/protocol"
	"github.com/GhanbarT/ball-and-hole/internal/sim/tuning"
	"github.com/GhanbarT/ball-and-hole/internal/sim/world"
	"github.com/GhanbarT/ball-and-hole/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		runID      = flag.String("run", "", "run id (default: derived from start time)")
		seed       = flag.Int64("seed", 0, "seed override (0 keeps the tuning value)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite run index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	id := strings.TrimSpace(*runID)
	if id == "" {
		id = time.Now().UTC().Format("20060102_150405")
	}

	cfg := configFromTuning(tune)
	ctrl, err := world.New(cfg)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	logger.Printf("run %s: %dx%d grid, %d holes, %d orbs, %d agents, strategy=%s seed=%d",
		id, cfg.Width, cfg.Height, cfg.NumHoles, cfg.NumOrbs, len(ctrl.Agents()), cfg.Strategy, cfg.Seed)

	// Frame log: the source of truth for replays.
	header := framelog.RunHeader{
		RunID:                id,
		Width:                cfg.Width,
		Height:               cfg.Height,
		NumHoles:             cfg.NumHoles,
		NumOrbs:              cfg.NumOrbs,
		Strategy:             cfg.Strategy.String(),
		TeamMode:             cfg.TeamMode,
		RedistributePermille: cfg.RedistributePermille,
		Seed:                 cfg.Seed,
	}
	for i, a := range ctrl.Agents() {
		header.Agents = append(header.Agents, framelog.RunAgent{
			ID: a.ID, Type: a.Type,
			StartX: a.Pos.X, StartY: a.Pos.Y,
			RandomStart: cfg.Agents[i].Start == nil,
			FieldOfView: a.FieldOfView, Battery: a.Battery,
		})
	}
	logDir := filepath.Join(*dataDir, "runs")
	flog, err := framelog.NewWriter(logDir, header)
	if err != nil {
		logger.Fatalf("frame log: %v", err)
	}
	defer flog.Close()

	// Optional read-model index; the frame log stays authoritative.
	var idx *runindex.SQLiteIndex
	if !*disableDB {
		idx, err = runindex.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("run index: %v", err)
		}
		defer idx.Close()
		idx.RecordRun(id, time.Now().UTC().Format(time.RFC3339Nano),
			cfg.Width, cfg.Height, cfg.NumHoles, cfg.NumOrbs,
			cfg.Strategy.String(), cfg.TeamMode, cfg.Seed, framelog.Path(logDir, id))
	}

	observers := ws.NewServer(protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		RunID:           id,
		RunParams: protocol.RunParams{
			Width:    cfg.Width,
			Height:   cfg.Height,
			NumHoles: cfg.NumHoles,
			NumOrbs:  cfg.NumOrbs,
			MaxScore: ctrl.MaxScore(),
			Strategy: cfg.Strategy.String(),
			TeamMode: cfg.TeamMode,
			Seed:     cfg.Seed,
		},
	}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", observers.Handler())
	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(tune.RoundRateHz))
	defer ticker.Stop()

	var lastFrame world.Frame
loop:
	for {
		select {
		case <-stop:
			logger.Printf("shutting down")
			break loop
		case <-ticker.C:
			f := ctrl.StepRound()
			lastFrame = f

			msg := protocol.BuildFrame(id, f)
			observers.Broadcast(msg)
			if err := flog.WriteFrame(msg); err != nil {
				logger.Printf("frame log: %v", err)
			}
			idx.WriteRound(msg)

			if f.Round%25 == 0 {
				logger.Printf("round %d: orbs=%d filled=%d observers=%d",
					f.Round, f.Orbs, f.FilledHoles, observers.ObserverCount())
			}
			if ctrl.Done() {
				logger.Printf("all agents exhausted at round %d", f.Round)
				break loop
			}
			if tune.RoundLimit > 0 && f.Round >= uint64(tune.RoundLimit) {
				logger.Printf("round limit %d reached", tune.RoundLimit)
				break loop
			}
		}
	}

	idx.FinishRun(id, lastFrame.Round, lastFrame.FilledHoles)
	logger.Printf("run %s finished: rounds=%d score=%d/%d",
		id, lastFrame.Round, lastFrame.FilledHoles, ctrl.MaxScore())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func configFromTuning(t tuning.Tuning) world.Config {
	cfg := world.Config{
		Width:                t.Width,
		Height:               t.Height,
		NumHoles:             t.NumHoles,
		NumOrbs:              t.NumOrbs,
		Strategy:             world.StrategyFromString(t.Strategy),
		TeamMode:             t.TeamMode,
		RedistributePermille: t.RedistributePermille,
		Seed:                 t.Seed,
	}
	for _, a := range t.Agents {
		spec := world.AgentSpec{
			ID:          a.ID,
			Type:        a.Type,
			FieldOfView: a.FieldOfView,
			Battery:     a.Battery,
		}
		if len(a.Start) == 2 {
			spec.Start = &world.Vec2i{X: a.Start[0], Y: a.Start[1]}
		}
		cfg.Agents = append(cfg.Agents, spec)
	}
	for i := len(cfg.Agents); i < len(t.Agents)+t.NumAgents; i++ {
		cfg.Agents = append(cfg.Agents, world.AgentSpec{
			FieldOfView: t.FieldOfView,
			Battery:     t.Battery,
		})
	}
	return cfg
}
