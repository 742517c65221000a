package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/freeeve/pgnavro/internal/archive"
	"github.com/freeeve/pgnavro/internal/logx"
)

func main() {
	now := time.Now()
	var (
		year   = flag.Int("year", now.Year(), "Archive year")
		month  = flag.Int("month", int(now.Month()), "Archive month (1-12)")
		outDir = flag.String("out", ".", "Directory to write the archive to")
	)
	flag.Parse()

	if *month < 1 || *month > 12 {
		fmt.Fprintln(os.Stderr, "Usage: fetch --year <yyyy> --month <1-12> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.NewLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	url := archive.URL(*year, *month)
	path := filepath.Join(*outDir, archive.Filename(*year, *month))
	logger.Info().Str("url", url).Str("path", path).Msg("starting download")

	if err := archive.Download(ctx, nil, url, path, logger); err != nil {
		logger.Fatal().Err(err).Msg("download failed")
	}
}
