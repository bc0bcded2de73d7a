// Package readers provides the concrete Reader adapters for directory
// digesting: thin wrappers around OS file APIs dispatched by
// walk.ReadingStrategy.
package readers

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/dirsum/dirsum/internal/walk"
)

// DefaultChunkSize is the buffered reader's chunk size, 64 KiB.
const DefaultChunkSize = 64 * 1024

// Factory opens a walk.Reader for a path under a resolved strategy,
// dispatching to BufferedReader, CompleteReader, or MemoryMappedReader.
type Factory struct {
	ChunkSize int
}

// NewFactory returns a Factory using DefaultChunkSize.
func NewFactory() *Factory { return &Factory{ChunkSize: DefaultChunkSize} }

func (f *Factory) Open(path string, strategy walk.ReadingStrategy) (walk.Reader, error) {
	switch strategy.Kind() {
	case walk.StrategyComplete:
		return openComplete(path)
	case walk.StrategyMemoryMapped:
		return openMemoryMapped(path)
	default:
		chunkSize := f.ChunkSize
		if chunkSize <= 0 {
			chunkSize = DefaultChunkSize
		}
		return openBuffered(path, chunkSize)
	}
}

var _ walk.ReaderFactory = (*Factory)(nil)

// BufferedReader reads fixed-size chunks from an *os.File via bufio until
// EOF.
type BufferedReader struct {
	f         *os.File
	br        *bufio.Reader
	chunkSize int
	buf       []byte
}

func openBuffered(path string, chunkSize int) (*BufferedReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &BufferedReader{
		f:         f,
		br:        bufio.NewReaderSize(f, chunkSize),
		chunkSize: chunkSize,
		buf:       make([]byte, chunkSize),
	}, nil
}

func (r *BufferedReader) NextChunk() ([]byte, bool, error) {
	n, err := r.br.Read(r.buf)
	if n > 0 {
		chunk := make([]byte, n)
		copy(chunk, r.buf[:n])
		return chunk, true, nil
	}
	if err == io.EOF {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return nil, false, nil
}

func (r *BufferedReader) Close() error { return r.f.Close() }

// CompleteReader reads a whole file and yields it as a single chunk.
type CompleteReader struct {
	content []byte
	served  bool
}

func openComplete(path string) (*CompleteReader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &CompleteReader{content: data}, nil
}

func (r *CompleteReader) NextChunk() ([]byte, bool, error) {
	if r.served || len(r.content) == 0 {
		return nil, false, nil
	}
	r.served = true
	return r.content, true, nil
}

func (r *CompleteReader) Close() error { return nil }

// MemoryMappedReader maps a file read-only and yields the mapping as a
// single chunk. Mapping failures (e.g. zero-length files on platforms that
// refuse to map them) surface as UnsupportedStrategy so the walker can
// apply tolerance policy rather than crash.
type MemoryMappedReader struct {
	f      *os.File
	m      mmap.MMap
	served bool
}

func openMemoryMapped(path string) (*MemoryMappedReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		f.Close()
		return nil, walk.ErrUnsupportedReader
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", walk.ErrUnsupportedReader, err)
	}
	return &MemoryMappedReader{f: f, m: m}, nil
}

func (r *MemoryMappedReader) NextChunk() ([]byte, bool, error) {
	if r.served {
		return nil, false, nil
	}
	r.served = true
	return []byte(r.m), true, nil
}

func (r *MemoryMappedReader) Close() error {
	err := r.m.Unmap()
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	return err
}
