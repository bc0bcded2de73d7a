// Package hashers provides the concrete Hasher adapters for directory
// digesting: thin wrappers around a BLAKE3 implementation, the stdlib
// SHA-256 implementation, and a fast non-cryptographic XXH3 hasher for
// change-detection workloads that don't need cryptographic strength.
package hashers

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"

	"github.com/dirsum/dirsum/internal/walk"
)

// Name identifies a built-in hasher selectable from config/CLI.
type Name string

const (
	BLAKE3 Name = "blake3"
	SHA256 Name = "sha256"
	XXH3   Name = "xxh3"
)

// Factory returns the walk.HasherFactory for the named built-in hasher, or
// an error if name is not recognized.
func Factory(name Name) (walk.HasherFactory, error) {
	switch name {
	case BLAKE3, "":
		return walk.HasherFactoryFunc(func() walk.Hasher { return &blake3Hasher{h: blake3.New()} }), nil
	case SHA256:
		return walk.HasherFactoryFunc(func() walk.Hasher { return &stdHasher{h: sha256.New()} }), nil
	case XXH3:
		return walk.HasherFactoryFunc(func() walk.Hasher { return &xxh3Hasher{h: xxh3.New()} }), nil
	default:
		return nil, &unknownHasherError{name: string(name)}
	}
}

type unknownHasherError struct{ name string }

func (e *unknownHasherError) Error() string { return "hashers: unknown hasher " + e.name }

// blake3Hasher adapts zeebo/blake3 to walk.Hasher. Absorb/Finalize satisfy
// the associativity requirement because blake3.Hasher implements io.Writer
// and streams internally.
type blake3Hasher struct {
	h *blake3.Hasher
}

func (b *blake3Hasher) Absorb(chunk []byte) { b.h.Write(chunk) }
func (b *blake3Hasher) Finalize() []byte {
	sum := b.h.Sum(nil)
	return sum
}

// stdHasher adapts any stdlib hash.Hash (used here for crypto/sha256) to
// walk.Hasher.
type stdHasher struct {
	h hash.Hash
}

func (s *stdHasher) Absorb(chunk []byte) { s.h.Write(chunk) }
func (s *stdHasher) Finalize() []byte    { return s.h.Sum(nil) }

// xxh3Hasher adapts zeebo/xxh3's streaming Hasher to walk.Hasher. Finalize
// returns the 64-bit sum as 8 big-endian bytes so it composes as an opaque
// digest like the cryptographic hashers.
type xxh3Hasher struct {
	h *xxh3.Hasher
}

func (x *xxh3Hasher) Absorb(chunk []byte) { x.h.Write(chunk) }
func (x *xxh3Hasher) Finalize() []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], x.h.Sum64())
	return buf[:]
}
