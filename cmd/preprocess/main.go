package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/freeeve/pgnavro/internal/logx"
	"github.com/freeeve/pgnavro/internal/pipeline"
)

func main() {
	defaultWorkers := 0
	if envWorkers := os.Getenv("PGNAVRO_WORKERS"); envWorkers != "" {
		if w, err := strconv.Atoi(envWorkers); err == nil {
			defaultWorkers = w
		}
	}

	var (
		archivePath   = flag.String("pgn", "", "Path to the compressed archive (.pgn.zst)")
		outDir        = flag.String("out", "./out", "Output directory for record files and manifest")
		workers       = flag.Int("workers", defaultWorkers, "Parse/serialize workers (0 = NumCPU)")
		skipMalformed = flag.Bool("skip-malformed", false, "Skip malformed games after the first instead of aborting")
		validateMoves = flag.Bool("validate-moves", false, "Replay move text and treat illegal games as malformed")
	)
	flag.Parse()

	if *archivePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --pgn <file.pgn.zst> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.NewLogger()
	logger.Info().
		Str("pgn", *archivePath).
		Str("out", *outDir).
		Int("workers", *workers).
		Bool("skip_malformed", *skipMalformed).
		Msg("starting preprocess")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stats, err := pipeline.Run(ctx, pipeline.Config{
		ArchivePath:   *archivePath,
		OutDir:        *outDir,
		Workers:       *workers,
		SkipMalformed: *skipMalformed,
		ValidateMoves: *validateMoves,
		Logger:        logger,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn().
				Int64("games", stats.Games).
				Msg("interrupted, manifest withheld")
			os.Exit(1)
		}
		logger.Fatal().Err(err).Int64("games", stats.Games).Msg("preprocess failed")
	}
}
