// Package warehouse stages and uploads finished Avro record files into
// Snowflake. It registers a stage with an AVRO file format, optionally
// wires a pipe for continuous ingestion into a target table, and PUTs
// every record file from a run's output directory.
//
// SQL goes through the small Execer interface, so everything here is
// testable without a warehouse; Open adapts database/sql with the
// Snowflake driver for real use.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "github.com/snowflakedb/gosnowflake"
)

// Execer is the slice of database/sql the loader needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Config configures a Loader.
type Config struct {
	Stage      string         // Stage name (default RAW_AVRO_STAGE)
	Pipe       string         // Pipe name (default AVRO_PIPE)
	AutoIngest bool           // Configure the pipe for auto-ingest
	Logger     zerolog.Logger // Logger
}

// Loader stages and uploads record files.
type Loader struct {
	db  Execer
	cfg Config
	log zerolog.Logger
}

// New creates a Loader over db.
func New(db Execer, cfg Config) *Loader {
	if cfg.Stage == "" {
		cfg.Stage = "RAW_AVRO_STAGE"
	}
	if cfg.Pipe == "" {
		cfg.Pipe = "AVRO_PIPE"
	}
	return &Loader{db: db, cfg: cfg, log: cfg.Logger}
}

// Open connects to Snowflake with a driver DSN.
func Open(dsn string) (*sql.DB, error) {
	return sql.Open("snowflake", dsn)
}

// CreateStage creates or replaces the stage with an AVRO file format.
func (l *Loader) CreateStage(ctx context.Context) error {
	q := fmt.Sprintf("CREATE OR REPLACE STAGE %s FILE_FORMAT = (TYPE = 'AVRO')", l.cfg.Stage)
	if _, err := l.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("warehouse: create stage %s: %w", l.cfg.Stage, err)
	}
	l.log.Info().Str("stage", l.cfg.Stage).Msg("stage ready")
	return nil
}

// CreatePipe creates or replaces the pipe copying staged files into
// targetTable.
func (l *Loader) CreatePipe(ctx context.Context, targetTable string) error {
	auto := ""
	if l.cfg.AutoIngest {
		auto = "AUTO_INGEST = TRUE "
	}
	q := fmt.Sprintf(
		"CREATE OR REPLACE PIPE %s %sAS COPY INTO %s FROM @%s FILE_FORMAT = (TYPE = 'AVRO')",
		l.cfg.Pipe, auto, targetTable, l.cfg.Stage)
	if _, err := l.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("warehouse: create pipe %s: %w", l.cfg.Pipe, err)
	}
	l.log.Info().Str("pipe", l.cfg.Pipe).Str("table", targetTable).Msg("pipe ready")
	return nil
}

// UploadDir PUTs every .avro file in dir to the stage, returning the
// uploaded paths. The first failed PUT aborts the upload.
func (l *Loader) UploadDir(ctx context.Context, dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.avro"))
	if err != nil {
		return nil, err
	}

	var uploaded []string
	for _, path := range files {
		abs, err := filepath.Abs(path)
		if err != nil {
			return uploaded, err
		}
		q := fmt.Sprintf("PUT file://%s @%s", abs, l.cfg.Stage)
		if _, err := l.db.ExecContext(ctx, q); err != nil {
			return uploaded, fmt.Errorf("warehouse: put %s: %w", path, err)
		}
		uploaded = append(uploaded, path)
	}

	l.log.Info().Int("files", len(uploaded)).Str("stage", l.cfg.Stage).Msg("upload complete")
	return uploaded, nil
}
