package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/rs/zerolog"
)

// downloadBlockSize is the copy granularity for archive downloads.
const downloadBlockSize = 100 * 1024

// URL returns the lichess standard-rated database URL for a given month.
func URL(year, month int) string {
	return fmt.Sprintf("https://database.lichess.org/standard/lichess_db_standard_rated_%d-%02d.pgn.zst", year, month)
}

// Filename returns the local filename for a given month's archive.
func Filename(year, month int) string {
	return fmt.Sprintf("lichess_%d-%02d.pgn.zst", year, month)
}

// Download streams the archive at url to path, logging progress roughly
// every 10 seconds. The partial file is removed on failure.
func Download(ctx context.Context, client *http.Client, url, path string, log zerolog.Logger) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}

	total := resp.ContentLength
	var written int64
	buf := make([]byte, downloadBlockSize)
	start := time.Now()
	lastLog := time.Now()

	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				out.Close()
				os.Remove(path)
				return werr
			}
			written += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			out.Close()
			os.Remove(path)
			return fmt.Errorf("fetch %s: %w", url, rerr)
		}

		if time.Since(lastLog) > 10*time.Second {
			ev := log.Info().
				Str("file", path).
				Str("downloaded", bytesize.New(float64(written)).String())
			if total > 0 {
				ev = ev.Str("total", bytesize.New(float64(total)).String()).
					Float64("percent", float64(written)/float64(total)*100)
			}
			ev.Msg("download progress")
			lastLog = time.Now()
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(path)
		return err
	}

	log.Info().
		Str("file", path).
		Str("size", bytesize.New(float64(written)).String()).
		Dur("elapsed", time.Since(start)).
		Msg("download complete")
	return nil
}
