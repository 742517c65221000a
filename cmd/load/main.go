package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/freeeve/pgnavro/internal/logx"
	"github.com/freeeve/pgnavro/internal/warehouse"
)

func main() {
	var (
		dir        = flag.String("dir", "./out", "Directory of .avro record files to upload")
		stage      = flag.String("stage", "RAW_AVRO_STAGE", "Snowflake stage name")
		pipe       = flag.String("pipe", "AVRO_PIPE", "Snowflake pipe name")
		table      = flag.String("table", "", "Target table; when set, a pipe is created")
		autoIngest = flag.Bool("auto-ingest", true, "Configure the pipe for auto-ingest")
		dsn        = flag.String("dsn", os.Getenv("SNOWFLAKE_DSN"), "Snowflake DSN (defaults to SNOWFLAKE_DSN)")
	)
	flag.Parse()

	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "Usage: load --dsn <snowflake dsn> [options] (or set SNOWFLAKE_DSN)")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.NewLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := warehouse.Open(*dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("open warehouse connection")
	}
	defer db.Close()

	loader := warehouse.New(db, warehouse.Config{
		Stage:      *stage,
		Pipe:       *pipe,
		AutoIngest: *autoIngest,
		Logger:     logger,
	})

	if err := loader.CreateStage(ctx); err != nil {
		logger.Fatal().Err(err).Msg("create stage")
	}
	if *table != "" {
		if err := loader.CreatePipe(ctx, *table); err != nil {
			logger.Fatal().Err(err).Msg("create pipe")
		}
	}

	uploaded, err := loader.UploadDir(ctx, *dir)
	if err != nil {
		logger.Fatal().Err(err).Int("uploaded", len(uploaded)).Msg("upload failed")
	}
}
