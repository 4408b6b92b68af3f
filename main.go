package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/renderer"
)

var (
	configPath string
	headless   bool
	logStats   bool
	realtime   bool
	outputDir  string
	seed       int64
	maxTicks   int
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "critters",
	Short: "Evolve herbivores and carnivores in a bounded arena",
	Long: `Critters runs a tick-based predator/prey simulation. Agents carry five
heritable traits, steer by a fleeing > mating > foraging state machine,
bounce off each other and the walls, and breed offspring that mutate.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "Run without graphics")
	rootCmd.Flags().BoolVar(&logStats, "log-stats", false, "Output window stats via slog")
	rootCmd.Flags().BoolVar(&realtime, "realtime", false, "Pace headless ticks to sim.tick_rate")
	rootCmd.Flags().StringVar(&outputDir, "output-dir", "", "Base directory for CSV logs and config snapshot")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed (0 = time-based)")
	rootCmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	runID := uuid.NewString()

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With("run_id", runID)
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}
	cfg := config.Cfg()

	rngSeed := seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:     rngSeed,
		LogStats: logStats,
	}
	if outputDir != "" {
		opts.OutputDir = filepath.Join(outputDir, runID)
	}

	if headless {
		return runHeadless(cfg, opts)
	}
	return runWindowed(cfg, opts)
}

// runHeadless steps the engine as fast as possible, or at the configured
// tick rate with --realtime, until max-ticks is reached.
func runHeadless(cfg *config.Config, opts game.Options) error {
	g, err := game.New(cfg, opts)
	if err != nil {
		return fmt.Errorf("creating simulation: %w", err)
	}
	defer closeGame(g)

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_ticks", maxTicks,
		"realtime", realtime,
	)

	budget := time.Duration(cfg.Derived.FrameBudget * float64(time.Second))
	for {
		start := time.Now()
		if err := g.Step(); err != nil {
			slog.Error("tick failed", "tick", g.Tick(), "error", err)
			return err
		}

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			herb, carn := g.Population()
			slog.Info("max ticks reached", "tick", g.Tick(), "herbivores", herb, "carnivores", carn)
			return nil
		}

		if realtime {
			if remaining := budget - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// runWindowed opens an arena-sized window; raylib paces frames at
// screen.target_fps.
func runWindowed(cfg *config.Config, opts game.Options) error {
	w, h := int32(cfg.Arena.Width), int32(cfg.Arena.Height)

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(w, h, "Critters")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.New(cfg, opts)
	if err != nil {
		return fmt.Errorf("creating simulation: %w", err)
	}
	defer closeGame(g)

	r := renderer.New(w, h, cfg.Arena.Width, cfg.Arena.Height)
	snap := g.Snapshot()

	for !rl.WindowShouldClose() {
		r.HandleInput(&snap)

		for i := 0; i < r.StepsPerFrame(); i++ {
			if err := g.Step(); err != nil {
				slog.Error("tick failed", "tick", g.Tick(), "error", err)
				return err
			}
		}
		snap = g.Snapshot()

		if p, changed := r.Draw(&snap); changed {
			g.SetPlantSpawnChance(p)
		}

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			break
		}
	}
	return nil
}

func closeGame(g *game.Game) {
	if err := g.Close(); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}
