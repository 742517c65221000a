// Package archive reads lichess-style .pgn.zst database archives as a
// streaming decompressed byte source, and downloads them from the lichess
// database mirror.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

var (
	// ErrInvalidFormat means the input is not a recognized zstd container.
	// It is reported before any decompressed byte is produced.
	ErrInvalidFormat = errors.New("archive: not a zstd compressed file")

	// ErrDecompression means the zstd stream is corrupt or truncated.
	ErrDecompression = errors.New("archive: decompression failed")
)

// DefaultChunkSize is the read granularity for streaming decompression.
// 16 KiB keeps memory bounded regardless of archive size.
const DefaultChunkSize = 16 * 1024

// zstd frame magic: 0xFD2FB528 little-endian. Skippable frames start with
// 0x184D2A50..0x184D2A5F.
func validMagic(b []byte) bool {
	if len(b) < 4 {
		return false
	}
	if b[0] == 0x28 && b[1] == 0xB5 && b[2] == 0x2F && b[3] == 0xFD {
		return true
	}
	return b[0]&0xF0 == 0x50 && b[1] == 0x2A && b[2] == 0x4D && b[3] == 0x18
}

// Reader streams the decompressed payload of a zstd archive. Multi-frame
// archives decode as one logical stream. Reader implements io.ReadCloser.
type Reader struct {
	f   *os.File
	dec *zstd.Decoder
}

// OpenReader opens a zstd archive for streaming decompression. The file's
// leading magic bytes are checked up front so an unrecognized container
// fails before any game text is processed.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil || !validMagic(magic) {
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, path)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return &Reader{f: f, dec: dec}, nil
}

// NewReader wraps an already-open compressed byte source. The source is not
// closed by Close; it belongs to the caller.
func NewReader(src io.Reader) (*Reader, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return &Reader{dec: dec}, nil
}

// Read decodes the next decompressed bytes. Corrupt or truncated input
// surfaces as ErrDecompression.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.dec.Read(p)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	return n, err
}

// Close releases the decoder and the underlying file, if any.
func (r *Reader) Close() error {
	r.dec.Close()
	if r.f != nil {
		return r.f.Close()
	}
	return nil
}

// Decompress copies the full decompressed payload of src to dst in
// DefaultChunkSize chunks, returning the number of decompressed bytes
// written. Each chunk is forwarded before the next is requested, so memory
// stays bounded for arbitrarily large archives.
func Decompress(dst io.Writer, src io.Reader) (int64, error) {
	r, err := NewReader(src)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	// Read-side failures arrive already wrapped as ErrDecompression;
	// write-side failures pass through untouched.
	buf := make([]byte, DefaultChunkSize)
	return io.CopyBuffer(dst, r, buf)
}
