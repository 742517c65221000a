// Package pipeline runs the full preprocessing pass: streaming
// decompression, game splitting, parallel parse + serialize, and manifest
// collection.
//
// Execution model: one producer goroutine decompresses and splits (the
// stream has no random access, so that part is sequential), feeding a
// bounded queue of raw segments to a pool of workers that parse and write
// records concurrently. The schema is inferred synchronously from the
// first game before any worker starts, after which the only shared state
// is the manifest collector, fed over a channel by a single goroutine.
// The first fatal error cancels the run; in-flight workers drain and the
// manifest is withheld, so partial output is always distinguishable from
// a successful run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/pgnavro/internal/archive"
	"github.com/freeeve/pgnavro/internal/avrostore"
	"github.com/freeeve/pgnavro/internal/game"
	"github.com/freeeve/pgnavro/internal/manifest"
	"github.com/freeeve/pgnavro/internal/schema"
	"github.com/freeeve/pgnavro/internal/split"
)

// Config configures one preprocessing run.
type Config struct {
	ArchivePath   string         // Path to the .pgn.zst archive
	OutDir        string         // Directory for record files and the manifest
	Workers       int            // Parse/serialize workers (default NumCPU)
	QueueSize     int            // Bounded segment queue (default 4*Workers)
	SkipMalformed bool           // Skip-and-count malformed games after the first
	ValidateMoves bool           // Replay move text and treat illegal games as malformed
	IDs           game.IDSource  // Identifier source (default random UUIDs)
	Logger        zerolog.Logger // Logger
}

// Stats summarizes a run.
type Stats struct {
	Games   int64 // Records serialized and listed in the manifest
	Skipped int64 // Malformed games skipped (SkipMalformed only)
	Elapsed time.Duration
}

// Run executes one preprocessing pass. On success the output directory
// holds one Avro file per game plus the finalized manifest; on any fatal
// error the manifest is withheld and partial record files are left on disk
// for inspection.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 4 * cfg.Workers
	}
	if cfg.IDs == nil {
		cfg.IDs = game.UUIDSource{}
	}
	log := cfg.Logger
	start := time.Now()

	ar, err := archive.OpenReader(cfg.ArchivePath)
	if err != nil {
		return Stats{}, err
	}
	defer ar.Close()

	man, err := manifest.NewWriter(cfg.OutDir)
	if err != nil {
		return Stats{}, err
	}
	finalized := false
	defer func() {
		if !finalized {
			man.Discard()
		}
	}()

	sc := split.NewScanner(ar)

	// The first game blocks everything else: it fixes the run schema, and
	// a malformed first game is always fatal because the schema would be
	// inferred from garbage.
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return Stats{Elapsed: time.Since(start)}, err
		}
		return Stats{Elapsed: time.Since(start)}, schema.ErrEmptySchema
	}
	first, err := game.Parse(sc.Segment(), cfg.IDs)
	if err != nil {
		return Stats{Elapsed: time.Since(start)}, fmt.Errorf("first game: %w", err)
	}
	sch, err := schema.Infer(first)
	if err != nil {
		return Stats{Elapsed: time.Since(start)}, err
	}
	store, err := avrostore.New(cfg.OutDir, sch)
	if err != nil {
		return Stats{Elapsed: time.Since(start)}, err
	}

	log.Info().
		Str("archive", cfg.ArchivePath).
		Str("out", cfg.OutDir).
		Int("workers", cfg.Workers).
		Int("schema_fields", len(sch.Fields())).
		Msg("schema inferred, starting workers")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	segCh := make(chan string, cfg.QueueSize)
	idCh := make(chan string, cfg.QueueSize)
	errCh := make(chan error, cfg.Workers+2)

	var games, skipped atomic.Int64

	// Single collector goroutine owns the manifest writer.
	collectorDone := make(chan error, 1)
	go func() {
		var cerr error
		lastLog := time.Now()
		for id := range idCh {
			if cerr != nil {
				continue // keep draining so workers never block
			}
			if err := man.Add(id); err != nil {
				cerr = err
				cancel()
				continue
			}
			n := games.Add(1)
			if time.Since(lastLog) > 10*time.Second {
				elapsed := time.Since(start)
				log.Info().
					Int64("games", n).
					Int64("skipped", skipped.Load()).
					Float64("games_per_sec", float64(n)/elapsed.Seconds()).
					Msg("preprocess progress")
				lastLog = time.Now()
			}
		}
		collectorDone <- cerr
	}()

	process := func(seg string) error {
		g, perr := game.Parse(seg, cfg.IDs)
		if perr != nil {
			if cfg.SkipMalformed {
				skipped.Add(1)
				log.Warn().Err(perr).Msg("skipping malformed game")
				return nil
			}
			return perr
		}
		if cfg.ValidateMoves {
			if verr := g.ValidateMoves(); verr != nil {
				if cfg.SkipMalformed {
					skipped.Add(1)
					log.Warn().Err(verr).Str("game_id", g.ID).Msg("skipping game with illegal moves")
					return nil
				}
				return verr
			}
		}
		if verr := sch.Validate(g); verr != nil {
			return verr
		}
		if _, werr := store.Write(g); werr != nil {
			return werr
		}
		select {
		case idCh <- g.ID:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// The first game goes through the same path as the rest, before the
	// producer starts feeding workers.
	if err := process(sc.Segment()); err != nil {
		close(idCh)
		<-collectorDone
		return Stats{Skipped: skipped.Load(), Elapsed: time.Since(start)}, err
	}

	// Producer: sequential decompress + split.
	go func() {
		defer close(segCh)
		for sc.Scan() {
			select {
			case segCh <- sc.Segment():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			errCh <- fmt.Errorf("scan archive: %w", err)
			cancel()
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seg := range segCh {
				if ctx.Err() != nil {
					continue // drain after cancellation
				}
				if err := process(seg); err != nil && !errors.Is(err, context.Canceled) {
					errCh <- err
					cancel()
				}
			}
		}()
	}

	wg.Wait()
	close(idCh)
	cerr := <-collectorDone

	var runErr error
	select {
	case runErr = <-errCh:
	default:
	}
	if runErr == nil {
		runErr = cerr
	}
	if runErr == nil {
		runErr = ctx.Err()
	}

	stats := Stats{Games: games.Load(), Skipped: skipped.Load(), Elapsed: time.Since(start)}
	if runErr != nil {
		return stats, runErr
	}

	if err := man.Finalize(); err != nil {
		return stats, err
	}
	finalized = true

	log.Info().
		Int64("games", stats.Games).
		Int64("skipped", stats.Skipped).
		Dur("elapsed", stats.Elapsed).
		Float64("games_per_sec", float64(stats.Games)/stats.Elapsed.Seconds()).
		Str("manifest", man.Path()).
		Msg("preprocess complete")
	return stats, nil
}
