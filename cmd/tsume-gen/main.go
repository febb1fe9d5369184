package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Arborescent/wildcat-shogi/app"
	"github.com/Arborescent/wildcat-shogi/app/config"
)

const (
	defaultOutput = "results.sfen"
	defaultCount  = 1000
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tsume-gen [output] [count]",
		Short: "Generate Wild Cat Shogi checkmate puzzles",
		Long: "Plays fairy-stockfish against a deliberately weakened copy of itself\n" +
			"and records the position before each checkmate, one SFEN per line.",
		Args:         cobra.MaximumNArgs(2),
		SilenceUsage: true,
		RunE:         run,
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	outputPath := defaultOutput
	targetCount := defaultCount
	if len(args) > 0 {
		outputPath = args[0]
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid puzzle count %q", args[1])
		}
		targetCount = n
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	eng, err := app.NewUSIEngine(app.USIConfig{
		Path:         cfg.Engine.Path,
		VariantsPath: cfg.Engine.VariantsPath,
		OptionsPath:  cfg.Engine.OptionsPath,
		MultiPV:      cfg.Engine.MultiPV,
		SearchTimeMS: cfg.Engine.SearchTimeMS,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("spawn engine: %w", err)
	}
	defer eng.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	// puzzles are written as they come, so an interrupt keeps partial output
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := app.NewGenerator(app.GeneratorConfig{
		MaxMoves:    cfg.Generator.MaxMoves,
		MaxAttempts: cfg.Generator.MaxAttempts,
		Logger:      logger,
	}, eng)

	accepted, err := gen.Run(ctx, out, targetCount)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().
		Int("accepted", accepted).
		Int("requested", targetCount).
		Str("output", outputPath).
		Msg("done")
	return nil
}
